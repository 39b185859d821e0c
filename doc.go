// Package ydev presents one uniform device contract
// (Init/Deinit/Read/Write/Ioctl) over unrelated on-chip peripherals, and
// implements that contract for 25Q-series SPI NOR flash chips.
//
// Drivers are registered in a fixed-order operations table; a handle
// resolves to its driver once at Init and every later call dispatches in
// O(1) through the stored table index. The flash driver speaks the
// standard serial NOR command set (MSB first, mode 0, 3-byte big-endian
// addresses) over a byte-oriented SPI transport supplied by the caller.
//
// # References:
//
// SPI Flash
//   - [W25Q64JV]: Winbond W25Q64JV Serial Flash Memory (https://www.winbond.com/resource-files/w25q64jv%20revj%2003272018%20plus.pdf)
//   - [W25Q128]: W25Q128JV-DTR Winbond Serial Flash Memory (https://www.winbond.com/resource-files/W25Q128JV_DTR%20RevD%2012232024%20Plus.pdf)
//   - [N25Q32]: N25Q032A Micron Serial NOR Flash Memory datasheet (could not find the official public URL)
package ydev
