package ydev

import (
	"fmt"
	"strings"
	"time"
)

// Flash commands:
//   - [W25Q64JV|8.1.2 Instruction Set Table 1]
//   - [N25Q32|Table 16: Command Set]
const (
	flashCmdWriteEnable  = 0x06
	flashCmdWriteDisable = 0x04
	flashCmdPageProgram  = 0x02
	flashCmdReadData     = 0x03
	flashCmdSectorErase  = 0x20 // 4KB
	flashCmdBlockErase   = 0xD8 // 64KB
	flashCmdChipErase    = 0xC7 // Bulk Erase
	flashCmdReadStatus1  = 0x05
	flashCmdReadJEDECID  = 0x9F
	flashCmdPowerDown    = 0xB9
	flashCmdPowerUp      = 0xAB // Release Power Down
)

// Physical geometry shared by the whole 25Q family.
const (
	FlashPageSize      = 256
	FlashSectorSize    = 4096
	FlashHalfBlockSize = 32768
	FlashBlockSize     = 65536
)

// Wait-busy ceilings per operation class, in milliseconds. Chips may
// override these in the parameter table; they are never collapsed into
// one global value.
const (
	FlashTimeoutPageProgramMS = 5
	FlashTimeoutSectorEraseMS = 400
	FlashTimeoutBlockEraseMS  = 2000
	FlashTimeoutChipEraseMS   = 40000
)

// tRES1 / tDP: settle time after leaving or entering power-down.
// [W25Q128|9.6 AC Electrical Characteristics]
const flashPowerSettle = 3 * time.Microsecond

// Flash ioctl commands.
const (
	FlashIoctlChipErase     = flashIoctlBase + 1
	FlashIoctlSectorErase   = flashIoctlBase + 2  // arg *FlashEraseRange
	FlashIoctlBlockErase64K = flashIoctlBase + 4  // arg *uint32 address
	FlashIoctlWriteEnable   = flashIoctlBase + 5
	FlashIoctlWriteDisable  = flashIoctlBase + 6
	FlashIoctlPowerDown     = flashIoctlBase + 7
	FlashIoctlPowerUp       = flashIoctlBase + 8
	FlashIoctlReadJEDECID   = flashIoctlBase + 9  // arg *uint32
	FlashIoctlReadStatusReg = flashIoctlBase + 11 // arg *FlashStatusRegister
)

// FlashEraseRange is the argument of FlashIoctlSectorErase. The erased
// window is widened to 4KB boundaries so it always covers
// [Address, Address+Size).
type FlashEraseRange struct {
	Address uint32
	Size    uint32
}

// FlashConfig configures a 25Q flash device: the SPI attachment it sits
// on and the collaborators the driver polls against.
type FlashConfig struct {
	BaseConfig
	Bus    BusConfig
	Opener BusOpener // nil selects the periph.io host registries
	Clock  Clock     // nil selects SystemClock
}

// NewFlashConfig returns a config with the conventional 25Q settings:
// mode 0, 8-bit frames, software chip select, fastest bus class.
func NewFlashConfig() *FlashConfig {
	return &FlashConfig{
		BaseConfig: BaseConfig{Type: TypeFlash},
		Bus: BusConfig{
			Mode:     0,
			DataBits: 8,
			Speed:    SpeedLevel3,
			CS:       CSSoft,
		},
	}
}

// FlashHandle is the live state of one flash device. The address cursor
// advances after every successful Read and Write; Seek repositions it.
//
// Write is read-modify-write without an erase: programming can only
// clear bits (1 to 0), so Write produces the written data only over a
// previously erased region. Writing over differing live data ANDs the
// old and new bytes.
type FlashHandle struct {
	BaseHandle
	bus   Bus
	clock Clock

	addr           uint32
	align          uint32
	size           uint32
	chip           FlashType
	params         flashParams
	jedecID        uint32
	deviceID       uint16
	manufacturerID uint8
}

// Capacity returns the chip size in bytes, fixed at Init.
func (h *FlashHandle) Capacity() uint32 { return h.size }

// Chip returns the identified chip type.
func (h *FlashHandle) Chip() FlashType { return h.chip }

// JEDECID returns the 24-bit id captured at Init.
func (h *FlashHandle) JEDECID() uint32 { return h.jedecID }

// ManufacturerID returns the first JEDEC id byte.
func (h *FlashHandle) ManufacturerID() uint8 { return h.manufacturerID }

// DeviceID returns the low two JEDEC id bytes.
func (h *FlashHandle) DeviceID() uint16 { return h.deviceID }

// Addr returns the current address cursor.
func (h *FlashHandle) Addr() uint32 { return h.addr }

// Seek repositions the address cursor for the next Read or Write.
func (h *FlashHandle) Seek(addr uint32) error {
	if addr > h.size {
		h.setErrno(ErrnoInvalidAddress)
		return ErrInvalidAddress
	}
	h.addr = addr
	return nil
}

func flashInit(cfg Config, h Handle) error {
	fc, ok := cfg.(*FlashConfig)
	if !ok {
		return ErrInvalidParam
	}
	fh, ok := h.(*FlashHandle)
	if !ok {
		return ErrInvalidParam
	}

	opener := fc.Opener
	if opener == nil {
		opener = PeriphOpener{}
	}
	fh.clock = fc.Clock
	if fh.clock == nil {
		fh.clock = SystemClock
	}

	// The 25Q command set is mode 0, MSB first; everything else of the
	// sub-config passes through from the caller.
	busCfg := fc.Bus
	busCfg.Mode = 0
	bus, err := opener.Open(busCfg)
	if err != nil {
		return fmt.Errorf("flash: open SPI sub-device: %w", err)
	}
	fh.bus = bus

	id, err := fh.readJEDECID()
	if err != nil {
		fh.setErrno(ErrnoSPIError)
		bus.Close()
		fh.bus = nil
		return err
	}
	params, ok := identifyFlash(id)
	if !ok {
		fh.setErrno(ErrnoChipNotFound)
		bus.Close()
		fh.bus = nil
		return ErrChipNotFound
	}

	fh.params = params
	fh.chip = params.typ
	fh.size = params.capacity
	fh.align = FlashPageSize
	fh.jedecID = id
	fh.manufacturerID = uint8(id >> 16)
	fh.deviceID = uint16(id)
	fh.addr = 0
	return nil
}

func flashDeinit(h Handle) error {
	fh, ok := h.(*FlashHandle)
	if !ok {
		return ErrInvalidParam
	}
	if fh.bus != nil {
		if err := fh.bus.Close(); err != nil {
			return err
		}
		fh.bus = nil
	}
	fh.chip = FlashUnknown
	fh.size = 0
	fh.addr = 0
	return nil
}

func flashRead(h Handle, buf []byte) (int, error) {
	fh, ok := h.(*FlashHandle)
	if !ok {
		return 0, ErrInvalidParam
	}
	if fh.bus == nil {
		fh.setErrno(ErrnoNotInit)
		return 0, ErrNotInitialized
	}
	if uint64(fh.addr)+uint64(len(buf)) > uint64(fh.size) {
		fh.setErrno(ErrnoInvalidAddress)
		return 0, ErrInvalidAddress
	}

	// A prior program or erase may still be completing internally.
	if err := fh.waitBusy(fh.params.tPageProgram); err != nil {
		fh.setErrno(ErrnoTimeout)
		return 0, err
	}

	if err := fh.bus.AssertCS(); err != nil {
		return 0, err
	}
	cmd := [4]byte{
		flashCmdReadData,
		byte(fh.addr >> 16),
		byte(fh.addr >> 8),
		byte(fh.addr),
	}
	if n, err := fh.bus.Transfer(cmd[:], nil); err != nil || n != len(cmd) {
		fh.bus.DeassertCS()
		fh.setErrno(ErrnoSPIError)
		return 0, ErrSPI
	}

	// Clock the data out one byte at a time against the handle's
	// per-call deadline. A timeout is a short read, not a failure.
	dummy := [1]byte{0xFF}
	start := fh.clock.NowMS()
	index := 0
	for index < len(buf) {
		if fh.clock.NowMS()-start > fh.TimeoutMS {
			fh.bus.DeassertCS()
			fh.addr += uint32(index)
			fh.setErrno(ErrnoTimeout)
			return index, nil
		}
		n, err := fh.bus.Transfer(dummy[:], buf[index:index+1])
		if err != nil {
			fh.bus.DeassertCS()
			fh.addr += uint32(index)
			fh.setErrno(ErrnoSPIError)
			return index, ErrSPI
		}
		index += n
	}
	err := fh.bus.DeassertCS()
	fh.addr += uint32(index)
	return index, err
}

func flashWrite(h Handle, buf []byte) (int, error) {
	fh, ok := h.(*FlashHandle)
	if !ok {
		return 0, ErrInvalidParam
	}
	if fh.bus == nil {
		fh.setErrno(ErrnoNotInit)
		return 0, ErrNotInitialized
	}
	if uint64(fh.addr)+uint64(len(buf)) > uint64(fh.size) {
		fh.setErrno(ErrnoInvalidAddress)
		return 0, ErrInvalidAddress
	}

	current := fh.addr
	total := 0
	for total < len(buf) {
		pageOffset := current % FlashPageSize
		writeSize := FlashPageSize - pageOffset
		if writeSize > uint32(len(buf)-total) {
			writeSize = uint32(len(buf) - total)
		}

		if pageOffset != 0 || writeSize != FlashPageSize {
			// Partial page: read the whole page, overlay the caller's
			// bytes, reprogram. The cursor is parked on the page base
			// for the internal read and restored afterwards.
			var page [FlashPageSize]byte
			pageStart := current &^ (FlashPageSize - 1)
			saved := fh.addr
			fh.addr = pageStart
			n, err := flashRead(h, page[:])
			fh.addr = saved
			if err != nil {
				fh.setErrno(ErrnoWriteFail)
				return total, err
			}
			if n != FlashPageSize {
				// flashRead reports a short count with a nil error only
				// when the per-call deadline elapsed.
				fh.setErrno(ErrnoWriteFail | ErrnoTimeout)
				return total, ErrTimeout
			}
			copy(page[pageOffset:], buf[total:total+int(writeSize)])
			if err := fh.writePage(pageStart, page[:]); err != nil {
				fh.setErrno(ErrnoWriteFail)
				return total, err
			}
		} else {
			if err := fh.writePage(current, buf[total:total+FlashPageSize]); err != nil {
				fh.setErrno(ErrnoWriteFail)
				return total, err
			}
		}

		total += int(writeSize)
		current += writeSize
	}
	fh.addr = current
	return total, nil
}

func flashIoctl(h Handle, cmd uint32, arg any) error {
	fh, ok := h.(*FlashHandle)
	if !ok {
		return ErrInvalidParam
	}
	if fh.bus == nil {
		fh.setErrno(ErrnoNotInit)
		return ErrNotInitialized
	}

	switch cmd {
	case FlashIoctlChipErase:
		if err := fh.erase(0, fh.size); err != nil {
			return err
		}
		// The last erased unit may still be completing; the full-chip
		// path waits with the chip-erase class ceiling.
		if err := fh.waitBusy(fh.params.tChipErase); err != nil {
			fh.setErrno(ErrnoEraseFail)
			return ErrEraseFail
		}
		return nil

	case FlashIoctlSectorErase:
		r, ok := arg.(*FlashEraseRange)
		if !ok || r == nil {
			return ErrInvalidParam
		}
		return fh.erase(r.Address, r.Size)

	case FlashIoctlBlockErase64K:
		addr, ok := arg.(*uint32)
		if !ok || addr == nil {
			return ErrInvalidParam
		}
		return fh.erase(*addr&^(FlashBlockSize-1), FlashBlockSize)

	case FlashIoctlWriteEnable:
		return fh.command(flashCmdWriteEnable)

	case FlashIoctlWriteDisable:
		return fh.command(flashCmdWriteDisable)

	case FlashIoctlPowerDown:
		if err := fh.command(flashCmdPowerDown); err != nil {
			return err
		}
		time.Sleep(flashPowerSettle) // tDP
		return nil

	case FlashIoctlPowerUp:
		if err := fh.command(flashCmdPowerUp); err != nil {
			return err
		}
		time.Sleep(flashPowerSettle) // tRES1
		return nil

	case FlashIoctlReadJEDECID:
		out, ok := arg.(*uint32)
		if !ok || out == nil {
			return ErrInvalidParam
		}
		id, err := fh.readJEDECID()
		if err != nil {
			fh.setErrno(ErrnoSPIError)
			return err
		}
		*out = id
		return nil

	case FlashIoctlReadStatusReg:
		out, ok := arg.(*FlashStatusRegister)
		if !ok || out == nil {
			return ErrInvalidParam
		}
		sr, err := fh.readStatus()
		if err != nil {
			fh.setErrno(ErrnoSPIError)
			return err
		}
		*out = sr
		return nil
	}
	return ErrNotSupported
}

// writePage programs exactly one 256-byte page. The target must start on
// a page boundary; callers guarantee this.
func (h *FlashHandle) writePage(addr uint32, data []byte) error {
	if err := h.waitBusy(h.params.tPageProgram); err != nil {
		h.setErrno(ErrnoTimeout)
		return err
	}
	if err := h.command(flashCmdWriteEnable); err != nil {
		return err
	}

	if err := h.bus.AssertCS(); err != nil {
		return err
	}
	cmd := [4]byte{
		flashCmdPageProgram,
		byte(addr >> 16),
		byte(addr >> 8),
		byte(addr),
	}
	if n, err := h.bus.Transfer(cmd[:], nil); err != nil || n != len(cmd) {
		h.bus.DeassertCS()
		h.setErrno(ErrnoSPIError)
		return ErrSPI
	}
	if n, err := h.bus.Transfer(data, nil); err != nil || n != len(data) {
		h.bus.DeassertCS()
		h.setErrno(ErrnoSPIError)
		return ErrSPI
	}
	if err := h.bus.DeassertCS(); err != nil {
		return err
	}

	// tPP starts at the CS rising edge; confirm completion before the
	// caller issues the next command.
	if err := h.waitBusy(h.params.tPageProgram); err != nil {
		h.setErrno(ErrnoProgramFail)
		return ErrWriteFail
	}
	return nil
}

// erase clears every sector overlapping [start, start+size). The window
// is aligned down and widened up to 4KB boundaries, and 64KB block
// erases are preferred wherever the current address is block-aligned
// with a full block remaining, minimizing bus transactions.
func (h *FlashHandle) erase(start, size uint32) error {
	if size == 0 {
		return ErrInvalidParam
	}
	// Checked as two comparisons: start+size can wrap around uint32 and
	// slip past a single combined bound. With both holding, start+size
	// fits the capacity and the 4KB widening below cannot overflow.
	if start > h.size || size > h.size-start {
		h.setErrno(ErrnoInvalidAddress)
		return ErrInvalidAddress
	}

	current := start &^ (FlashSectorSize - 1)
	remaining := ((start+size+FlashSectorSize-1)&^(FlashSectorSize-1)) - current

	for remaining > 0 {
		opcode := byte(flashCmdSectorErase)
		unit := uint32(FlashSectorSize)
		ceiling := h.params.tSectorErase
		if h.params.has64KErase && remaining >= FlashBlockSize && current%FlashBlockSize == 0 {
			opcode = flashCmdBlockErase
			unit = FlashBlockSize
			ceiling = h.params.tBlockErase
		}

		if err := h.command(flashCmdWriteEnable); err != nil {
			return err
		}
		if err := h.waitBusy(ceiling); err != nil {
			h.setErrno(ErrnoTimeout)
			return err
		}

		if err := h.bus.AssertCS(); err != nil {
			return err
		}
		cmd := [4]byte{
			opcode,
			byte(current >> 16),
			byte(current >> 8),
			byte(current),
		}
		if n, err := h.bus.Transfer(cmd[:], nil); err != nil || n != len(cmd) {
			h.bus.DeassertCS()
			h.setErrno(ErrnoSPIError)
			return ErrSPI
		}
		if err := h.bus.DeassertCS(); err != nil {
			return err
		}

		if err := h.waitBusy(ceiling); err != nil {
			h.setErrno(ErrnoEraseFail)
			return ErrEraseFail
		}

		current += unit
		remaining -= unit
	}
	return nil
}

// waitBusy polls status register bit BUSY until it clears or timeoutMS
// elapses on the monotonic clock.
func (h *FlashHandle) waitBusy(timeoutMS uint32) error {
	start := h.clock.NowMS()
	for {
		sr, err := h.readStatus()
		if err != nil {
			h.setErrno(ErrnoSPIError)
			return ErrSPI
		}
		if byte(sr)&h.params.busyMask == 0 {
			return nil
		}
		if h.clock.NowMS()-start > timeoutMS {
			return ErrTimeout
		}
	}
}

// command sends a single-opcode frame under its own chip select.
func (h *FlashHandle) command(opcode byte) error {
	if err := h.bus.AssertCS(); err != nil {
		return err
	}
	cmd := [1]byte{opcode}
	n, err := h.bus.Transfer(cmd[:], nil)
	csErr := h.bus.DeassertCS()
	if err != nil || n != 1 {
		h.setErrno(ErrnoSPIError)
		return ErrSPI
	}
	return csErr
}

func (h *FlashHandle) readStatus() (FlashStatusRegister, error) {
	if err := h.bus.AssertCS(); err != nil {
		return 0, err
	}
	buf := [2]byte{h.params.busyCmd, 0xFF}
	n, err := h.bus.Transfer(buf[:], buf[:])
	csErr := h.bus.DeassertCS()
	if err != nil || n != len(buf) {
		return 0, ErrSPI
	}
	if csErr != nil {
		return 0, csErr
	}
	return FlashStatusRegister(buf[1]), nil
}

func (h *FlashHandle) readJEDECID() (uint32, error) {
	if err := h.bus.AssertCS(); err != nil {
		return 0, err
	}
	buf := [4]byte{flashCmdReadJEDECID, 0xFF, 0xFF, 0xFF}
	n, err := h.bus.Transfer(buf[:], buf[:])
	csErr := h.bus.DeassertCS()
	if err != nil || n != len(buf) {
		return 0, ErrSPI
	}
	if csErr != nil {
		return 0, csErr
	}
	return uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), nil
}

// FlashStatusRegister is Status Register 1 of a 25Q chip.
//
//	Bits| [W25Q128|7.1 Status Registers]
//	----+-------------------------------
//	7   | SRP: Status Register Protect
//	6   | SEC: Sector protect
//	5   | TB: Top/Bottom protect
//	4:2 | BP2-0: Block Protect bits
//	1   | WEL: Write Enable Latch
//	0   | BUSY: Erase/Write in progress
type FlashStatusRegister byte

func (sr FlashStatusRegister) StatusRegisterProtect() bool { return sr&(1<<7) != 0 }
func (sr FlashStatusRegister) SectorProtect() bool         { return sr&(1<<6) != 0 }
func (sr FlashStatusRegister) TopBottom() bool             { return sr&(1<<5) != 0 }
func (sr FlashStatusRegister) WriteEnabled() bool          { return sr&(1<<1) != 0 }
func (sr FlashStatusRegister) Busy() bool                  { return sr&(1<<0) != 0 }

func (sr FlashStatusRegister) String() string {
	b := fmt.Sprintf("%08b", byte(sr))
	s := []string{}
	if sr.StatusRegisterProtect() {
		s = append(s, "SRP")
	}
	if sr.SectorProtect() {
		s = append(s, "SEC")
	}
	if sr.TopBottom() {
		s = append(s, "TB")
	}
	if sr.WriteEnabled() {
		s = append(s, "WEL")
	}
	if sr.Busy() {
		s = append(s, "BUSY")
	}
	if len(s) == 0 {
		return b
	}
	return b + " " + strings.Join(s, ",")
}
