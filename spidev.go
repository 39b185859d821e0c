package ydev

// Spi ioctl commands.
const (
	SpiIoctlAssertCS   = spiIoctlBase + 1
	SpiIoctlDeassertCS = spiIoctlBase + 2
)

// SpiConfig exposes a raw SPI bus as a device in its own right: the
// same transport the flash driver layers on, reachable standalone.
type SpiConfig struct {
	BaseConfig
	Bus    BusConfig
	Opener BusOpener // nil selects the periph.io host registries
}

// NewSpiConfig returns a mode-0, 8-bit config.
func NewSpiConfig() *SpiConfig {
	return &SpiConfig{
		BaseConfig: BaseConfig{Type: TypeSpi},
		Bus: BusConfig{
			DataBits: 8,
			Speed:    SpeedLevel0,
			CS:       CSSoft,
		},
	}
}

// SpiHandle clocks bytes in on Read and out on Write. Chip select is
// caller-controlled through the ioctls, so multi-transfer frames can be
// bracketed explicitly.
type SpiHandle struct {
	BaseHandle
	bus Bus
}

// Bus returns the opened transport for layering other protocols on top.
func (h *SpiHandle) Bus() Bus { return h.bus }

func spiDevInit(cfg Config, h Handle) error {
	sc, ok := cfg.(*SpiConfig)
	if !ok {
		return ErrInvalidParam
	}
	sh, ok := h.(*SpiHandle)
	if !ok {
		return ErrInvalidParam
	}
	opener := sc.Opener
	if opener == nil {
		opener = PeriphOpener{}
	}
	bus, err := opener.Open(sc.Bus)
	if err != nil {
		return err
	}
	sh.bus = bus
	return nil
}

func spiDevDeinit(h Handle) error {
	sh, ok := h.(*SpiHandle)
	if !ok {
		return ErrInvalidParam
	}
	if sh.bus != nil {
		if err := sh.bus.Close(); err != nil {
			return err
		}
		sh.bus = nil
	}
	return nil
}

func spiDevRead(h Handle, buf []byte) (int, error) {
	sh, ok := h.(*SpiHandle)
	if !ok || sh.bus == nil {
		return 0, ErrInvalidParam
	}
	return sh.bus.Transfer(nil, buf)
}

func spiDevWrite(h Handle, buf []byte) (int, error) {
	sh, ok := h.(*SpiHandle)
	if !ok || sh.bus == nil {
		return 0, ErrInvalidParam
	}
	return sh.bus.Transfer(buf, nil)
}

func spiDevIoctl(h Handle, cmd uint32, arg any) error {
	sh, ok := h.(*SpiHandle)
	if !ok || sh.bus == nil {
		return ErrInvalidParam
	}
	switch cmd {
	case SpiIoctlAssertCS:
		return sh.bus.AssertCS()
	case SpiIoctlDeassertCS:
		return sh.bus.DeassertCS()
	}
	return ErrNotSupported
}
