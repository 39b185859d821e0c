package ydev

import "periph.io/x/conn/v3/gpio"

// GpioMode selects the pin direction.
type GpioMode uint8

const (
	GpioInput GpioMode = iota
	GpioOutput
)

// Gpio ioctl commands.
const (
	GpioIoctlSetMode   = gpioIoctlBase + 1 // arg *GpioMode
	GpioIoctlToggle    = gpioIoctlBase + 2
	GpioIoctlReadLevel = gpioIoctlBase + 3 // arg *bool
)

// GpioConfig attaches one pin. Pull applies in input mode.
type GpioConfig struct {
	BaseConfig
	Pin  gpio.PinIO
	Mode GpioMode
	Pull gpio.Pull
}

// NewGpioConfig returns an input config with no pull.
func NewGpioConfig(pin gpio.PinIO) *GpioConfig {
	return &GpioConfig{
		BaseConfig: BaseConfig{Type: TypeGpio},
		Pin:        pin,
		Pull:       gpio.PullNoChange,
	}
}

// GpioHandle drives a single pin through the device contract: Read
// samples the level, Write drives it.
type GpioHandle struct {
	BaseHandle
	pin  gpio.PinIO
	mode GpioMode
}

func gpioInit(cfg Config, h Handle) error {
	gc, ok := cfg.(*GpioConfig)
	if !ok {
		return ErrInvalidParam
	}
	gh, ok := h.(*GpioHandle)
	if !ok {
		return ErrInvalidParam
	}
	if gc.Pin == nil {
		return ErrInvalidParam
	}
	gh.pin = gc.Pin
	gh.mode = gc.Mode
	switch gc.Mode {
	case GpioInput:
		return gh.pin.In(gc.Pull, gpio.NoEdge)
	case GpioOutput:
		return gh.pin.Out(gpio.Low)
	}
	return ErrInvalidParam
}

func gpioDeinit(h Handle) error {
	gh, ok := h.(*GpioHandle)
	if !ok {
		return ErrInvalidParam
	}
	gh.pin = nil
	return nil
}

// gpioRead samples the pin once per requested byte: 1 for high, 0 for
// low.
func gpioRead(h Handle, buf []byte) (int, error) {
	gh, ok := h.(*GpioHandle)
	if !ok || gh.pin == nil {
		return 0, ErrInvalidParam
	}
	for i := range buf {
		if gh.pin.Read() == gpio.High {
			buf[i] = 1
		} else {
			buf[i] = 0
		}
	}
	return len(buf), nil
}

// gpioWrite drives the pin once per byte, any nonzero byte meaning high.
func gpioWrite(h Handle, buf []byte) (int, error) {
	gh, ok := h.(*GpioHandle)
	if !ok || gh.pin == nil {
		return 0, ErrInvalidParam
	}
	if gh.mode != GpioOutput {
		gh.setErrno(ErrnoInvalidParam)
		return 0, ErrNotSupported
	}
	for i, b := range buf {
		l := gpio.Low
		if b != 0 {
			l = gpio.High
		}
		if err := gh.pin.Out(l); err != nil {
			return i, err
		}
	}
	return len(buf), nil
}

func gpioIoctl(h Handle, cmd uint32, arg any) error {
	gh, ok := h.(*GpioHandle)
	if !ok || gh.pin == nil {
		return ErrInvalidParam
	}
	switch cmd {
	case GpioIoctlSetMode:
		m, ok := arg.(*GpioMode)
		if !ok || m == nil {
			return ErrInvalidParam
		}
		gh.mode = *m
		if *m == GpioOutput {
			return gh.pin.Out(gpio.Low)
		}
		return gh.pin.In(gpio.PullNoChange, gpio.NoEdge)
	case GpioIoctlToggle:
		if gh.mode != GpioOutput {
			return ErrNotSupported
		}
		return gh.pin.Out(!gh.pin.Read())
	case GpioIoctlReadLevel:
		out, ok := arg.(*bool)
		if !ok || out == nil {
			return ErrInvalidParam
		}
		*out = gh.pin.Read() == gpio.High
		return nil
	}
	return ErrNotSupported
}
