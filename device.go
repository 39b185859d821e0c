package ydev

// Type tags a device kind. The tag selects the driver at Init; it is the
// only runtime type information the dispatch layer uses.
type Type uint8

const (
	TypeGpio Type = iota
	TypeUsart
	TypeSpi
	TypeFlash
	TypeDma
	typeCount
)

func (t Type) String() string {
	switch t {
	case TypeGpio:
		return "gpio"
	case TypeUsart:
		return "usart"
	case TypeSpi:
		return "spi"
	case TypeFlash:
		return "flash"
	case TypeDma:
		return "dma"
	}
	return "unknown"
}

// Ops binds a device type to its concrete operations. A nil field means
// the driver does not implement that operation: Read and Write then
// transfer nothing, Ioctl reports ErrNotSupported.
type Ops struct {
	Type   Type
	Init   func(cfg Config, h Handle) error
	Deinit func(h Handle) error
	Read   func(h Handle, buf []byte) (int, error)
	Write  func(h Handle, buf []byte) (int, error)
	Ioctl  func(h Handle, cmd uint32, arg any) error
}

// opsTable is the ordered registration table. The position of an entry
// becomes the index stored in every handle of that type, so the order
// must never change while the process runs. It is read-only after
// process start and safe for concurrent lookups.
var opsTable = [...]Ops{
	{Type: TypeGpio, Init: gpioInit, Deinit: gpioDeinit, Read: gpioRead, Write: gpioWrite, Ioctl: gpioIoctl},
	{Type: TypeUsart, Init: usartInit, Deinit: usartDeinit, Read: usartRead, Write: usartWrite},
	{Type: TypeSpi, Init: spiDevInit, Deinit: spiDevDeinit, Read: spiDevRead, Write: spiDevWrite, Ioctl: spiDevIoctl},
	{Type: TypeFlash, Init: flashInit, Deinit: flashDeinit, Read: flashRead, Write: flashWrite, Ioctl: flashIoctl},
	{Type: TypeDma, Init: dmaInit, Deinit: dmaDeinit},
}

// Config is implemented by every driver config struct by embedding
// BaseConfig.
type Config interface {
	Base() *BaseConfig
}

// Handle is implemented by every driver handle struct by embedding
// BaseHandle. A handle is owned by a single caller; the package performs
// no locking, and sharing one handle across goroutines must be
// serialized externally.
type Handle interface {
	Base() *BaseHandle
}

// BaseConfig carries the fields common to every driver config.
type BaseConfig struct {
	Type      Type
	TimeoutMS uint32 // per-call deadline; 0 selects DefaultTimeoutMS
}

func (c *BaseConfig) Base() *BaseConfig { return c }

// DefaultTimeoutMS is applied to handles whose config leaves the
// timeout unset.
const DefaultTimeoutMS = 10

// BaseHandle carries the dispatch state common to every driver handle.
// It is populated by Init, mutated only by the owning driver, and zeroed
// by Deinit.
type BaseHandle struct {
	devType   Type
	index     int
	ops       *Ops
	TimeoutMS uint32
	errno     Errno
}

func (h *BaseHandle) Base() *BaseHandle { return h }

// Type returns the device kind resolved at Init.
func (h *BaseHandle) Type() Type { return h.devType }

// Errno returns the accumulated driver error bits.
func (h *BaseHandle) Errno() Errno { return h.errno }

// ClearErrno resets the accumulated error bits.
func (h *BaseHandle) ClearErrno() { h.errno = 0 }

func (h *BaseHandle) setErrno(bits Errno) { h.errno |= bits }

// TableIndex returns the handle's position in the registration table,
// fixed at Init and stable for the life of the process.
func (h *BaseHandle) TableIndex() int { return h.index }

// Init resolves the driver whose type tag matches cfg, binds it to the
// handle, and invokes its init with (cfg, h). The scan walks the table
// in registration order and the first match wins.
func Init(cfg Config, h Handle) error {
	if cfg == nil || h == nil {
		return ErrInvalidParam
	}
	bc := cfg.Base()
	bh := h.Base()
	for i := range opsTable {
		if opsTable[i].Type != bc.Type {
			continue
		}
		// Bind only after the entry proves initializable, so a rejected
		// handle stays unusable by dispatch.
		if opsTable[i].Init == nil {
			return ErrNotSupported
		}
		bh.devType = bc.Type
		bh.index = i
		bh.ops = &opsTable[i]
		bh.TimeoutMS = bc.TimeoutMS
		if bh.TimeoutMS == 0 {
			bh.TimeoutMS = DefaultTimeoutMS
		}
		bh.errno = 0
		return opsTable[i].Init(cfg, h)
	}
	bh.setErrno(ErrnoNotFound)
	return ErrNotFound
}

// Deinit releases the handle's driver resources and zeroes the base
// handle. The handle must not be used again without a fresh Init.
func Deinit(h Handle) error {
	if h == nil {
		return ErrInvalidParam
	}
	bh := h.Base()
	ops := bh.ops
	if ops == nil {
		return ErrNotInitialized
	}
	if ops.Deinit == nil {
		return ErrNotSupported
	}
	if err := ops.Deinit(h); err != nil {
		return err
	}
	*bh = BaseHandle{}
	return nil
}

// Read transfers up to len(buf) bytes from the device. A count short of
// len(buf) with a nil error is partial completion, not failure; drivers
// record the cause in the handle's errno. A driver without a read
// operation transfers nothing.
func Read(h Handle, buf []byte) (int, error) {
	if h == nil {
		return 0, ErrInvalidParam
	}
	if len(buf) == 0 {
		return 0, nil
	}
	ops := h.Base().ops
	if ops == nil {
		return 0, ErrNotInitialized
	}
	if ops.Read == nil {
		return 0, nil
	}
	return ops.Read(h, buf)
}

// Write transfers up to len(buf) bytes to the device, with the same
// short-count convention as Read.
func Write(h Handle, buf []byte) (int, error) {
	if h == nil {
		return 0, ErrInvalidParam
	}
	if len(buf) == 0 {
		return 0, nil
	}
	ops := h.Base().ops
	if ops == nil {
		return 0, ErrNotInitialized
	}
	if ops.Write == nil {
		return 0, nil
	}
	return ops.Write(h, buf)
}

// Ioctl forwards a driver-specific control command. The command space is
// partitioned per device kind; see the Gpio*, Spi* and Flash* ioctl
// constants.
func Ioctl(h Handle, cmd uint32, arg any) error {
	if h == nil {
		return ErrInvalidParam
	}
	ops := h.Base().ops
	if ops == nil {
		return ErrNotInitialized
	}
	if ops.Ioctl == nil {
		return ErrNotSupported
	}
	return ops.Ioctl(h, cmd, arg)
}

// Ioctl command bases, one block per device kind.
const (
	ioctlBase      = 0x8000
	IoctlGetStatus = ioctlBase + 0
	IoctlReset     = ioctlBase + 1

	gpioIoctlBase  = ioctlBase + 0x100
	flashIoctlBase = ioctlBase + 0x200
	spiIoctlBase   = ioctlBase + 0x300
)
