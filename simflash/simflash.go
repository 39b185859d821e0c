// Package simflash is a software 25Q-series SPI NOR flash chip behind
// the ydev.Bus contract. It decodes command frames at chip-select
// boundaries and models the properties the driver depends on: BUSY
// windows timed against a shared clock, the write-enable latch, and
// NOR programming that can only clear bits.
package simflash

import (
	"errors"

	"github.com/ryaaaaaan96/ydev"
)

// Command opcodes the chip decodes. Frames starting with anything else
// clock out 0xFF and are dropped.
const (
	cmdWriteEnable  = 0x06
	cmdWriteDisable = 0x04
	cmdPageProgram  = 0x02
	cmdReadData     = 0x03
	cmdSectorErase  = 0x20
	cmdBlockErase   = 0xD8
	cmdChipErase    = 0xC7
	cmdReadStatus1  = 0x05
	cmdReadJEDECID  = 0x9F
	cmdPowerDown    = 0xB9
	cmdPowerUp      = 0xAB
)

const (
	pageSize   = 256
	sectorSize = 4096
	blockSize  = 65536
)

// Stats counts the committed operations, for asserting on bus traffic.
type Stats struct {
	PagePrograms int
	SectorErases int
	BlockErases  int
	ChipErases   int
}

// Chip is one simulated flash device. It implements ydev.Bus directly;
// use an Opener to hand it to a driver config.
//
// Latencies are the BUSY window lengths in milliseconds, measured on
// the shared clock from the moment an operation commits (chip-select
// rising edge).
type Chip struct {
	PageProgramMS uint32
	SectorEraseMS uint32
	BlockEraseMS  uint32
	ChipEraseMS   uint32

	Stats Stats

	clock ydev.Clock
	id    uint32
	mem   []byte

	cs        bool
	closed    bool
	wel       bool
	powerDown bool
	busyUntil uint32

	// current frame
	n    int
	cmd  byte
	addr uint32
	data []byte
}

// New builds a chip with the given 24-bit JEDEC id and capacity, fully
// erased. The clock must be the same one the driver polls with.
func New(id uint32, capacity uint32, clock ydev.Clock) *Chip {
	mem := make([]byte, capacity)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &Chip{
		PageProgramMS: 1,
		SectorEraseMS: 5,
		BlockEraseMS:  10,
		ChipEraseMS:   50,
		clock:         clock,
		id:            id,
		mem:           mem,
	}
}

// Busy reports whether the chip is inside a BUSY window.
func (c *Chip) Busy() bool {
	return int32(c.busyUntil-c.clock.NowMS()) > 0
}

// Peek copies memory content at addr into buf, bypassing the bus.
func (c *Chip) Peek(addr uint32, buf []byte) {
	copy(buf, c.mem[addr:])
}

// Poke writes raw memory content at addr, bypassing NOR semantics. Test
// setup only.
func (c *Chip) Poke(addr uint32, data []byte) {
	copy(c.mem[addr:], data)
}

func (c *Chip) AssertCS() error {
	if c.closed {
		return errors.New("simflash: bus closed")
	}
	c.cs = true
	c.n = 0
	c.cmd = 0
	c.addr = 0
	c.data = c.data[:0]
	return nil
}

func (c *Chip) DeassertCS() error {
	if c.closed {
		return errors.New("simflash: bus closed")
	}
	if c.cs {
		c.commit()
	}
	c.cs = false
	return nil
}

func (c *Chip) Close() error {
	c.closed = true
	return nil
}

func (c *Chip) Transfer(tx, rx []byte) (int, error) {
	if c.closed {
		return 0, errors.New("simflash: bus closed")
	}
	n := len(tx)
	if tx == nil {
		n = len(rx)
	}
	if tx != nil && rx != nil && len(tx) != len(rx) {
		return 0, errors.New("simflash: tx/rx length mismatch")
	}
	for i := 0; i < n; i++ {
		in := byte(0xFF)
		if tx != nil {
			in = tx[i]
		}
		out := c.clockByte(in)
		if rx != nil {
			rx[i] = out
		}
	}
	return n, nil
}

// clockByte shifts one byte in and one byte out while selected.
func (c *Chip) clockByte(in byte) byte {
	if !c.cs {
		return 0xFF
	}
	n := c.n
	c.n++

	if n == 0 {
		c.cmd = in
		// In deep power-down only the release command is recognized.
		if c.powerDown && in != cmdPowerUp {
			c.cmd = 0
		}
		// While busy only the status register is readable; every other
		// command is ignored.
		if c.Busy() && in != cmdReadStatus1 {
			c.cmd = 0
		}
		return 0xFF
	}

	switch c.cmd {
	case cmdReadStatus1:
		return c.status()

	case cmdReadJEDECID:
		switch n {
		case 1:
			return byte(c.id >> 16)
		case 2:
			return byte(c.id >> 8)
		case 3:
			return byte(c.id)
		}
		return 0xFF

	case cmdReadData:
		if n <= 3 {
			c.addr = c.addr<<8 | uint32(in)
			return 0xFF
		}
		out := c.mem[c.addr%uint32(len(c.mem))]
		c.addr++
		return out

	case cmdPageProgram:
		if n <= 3 {
			c.addr = c.addr<<8 | uint32(in)
			return 0xFF
		}
		c.data = append(c.data, in)
		return 0xFF

	case cmdSectorErase, cmdBlockErase:
		if n <= 3 {
			c.addr = c.addr<<8 | uint32(in)
		}
		return 0xFF
	}
	return 0xFF
}

func (c *Chip) status() byte {
	var sr byte
	if c.Busy() {
		sr |= 1 << 0
	}
	if c.wel {
		sr |= 1 << 1
	}
	return sr
}

// commit applies the decoded frame at the chip-select rising edge, when
// a real chip latches the operation and raises BUSY.
func (c *Chip) commit() {
	switch c.cmd {
	case cmdWriteEnable:
		c.wel = true

	case cmdWriteDisable:
		c.wel = false

	case cmdPowerDown:
		c.powerDown = true

	case cmdPowerUp:
		c.powerDown = false

	case cmdPageProgram:
		if !c.wel || c.n < 5 {
			return
		}
		// Programming clears bits only; the address wraps within the
		// 256-byte page, as on the real part.
		base := (c.addr &^ (pageSize - 1)) % uint32(len(c.mem))
		offset := c.addr % pageSize
		for i, b := range c.data {
			c.mem[(base+(offset+uint32(i))%pageSize)%uint32(len(c.mem))] &= b
		}
		c.wel = false
		c.Stats.PagePrograms++
		c.startBusy(c.PageProgramMS)

	case cmdSectorErase:
		if !c.wel || c.n < 4 {
			return
		}
		c.eraseRange(c.addr&^(sectorSize-1), sectorSize)
		c.wel = false
		c.Stats.SectorErases++
		c.startBusy(c.SectorEraseMS)

	case cmdBlockErase:
		if !c.wel || c.n < 4 {
			return
		}
		c.eraseRange(c.addr&^(blockSize-1), blockSize)
		c.wel = false
		c.Stats.BlockErases++
		c.startBusy(c.BlockEraseMS)

	case cmdChipErase:
		if !c.wel {
			return
		}
		c.eraseRange(0, uint32(len(c.mem)))
		c.wel = false
		c.Stats.ChipErases++
		c.startBusy(c.ChipEraseMS)
	}
}

func (c *Chip) eraseRange(start, size uint32) {
	if start >= uint32(len(c.mem)) {
		return
	}
	end := start + size
	if end > uint32(len(c.mem)) {
		end = uint32(len(c.mem))
	}
	for i := start; i < end; i++ {
		c.mem[i] = 0xFF
	}
}

func (c *Chip) startBusy(ms uint32) {
	c.busyUntil = c.clock.NowMS() + ms
}

// Opener hands the chip to a driver config as its bus.
type Opener struct {
	Chip *Chip
}

func (o Opener) Open(ydev.BusConfig) (ydev.Bus, error) {
	if o.Chip == nil {
		return nil, errors.New("simflash: no chip attached")
	}
	o.Chip.closed = false
	return o.Chip, nil
}

// StepClock is a deterministic ydev.Clock: every reading advances it by
// a fixed step, so busy-wait loops converge without real sleeping.
type StepClock struct {
	ms   uint32
	step uint32
}

// NewStepClock returns a clock advancing step milliseconds per reading.
func NewStepClock(step uint32) *StepClock {
	return &StepClock{step: step}
}

func (c *StepClock) NowMS() uint32 {
	c.ms += c.step
	return c.ms
}

// Advance moves the clock forward without a reading.
func (c *StepClock) Advance(ms uint32) {
	c.ms += ms
}
