package ydev

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// PeriphBus adapts a periph.io SPI connection and a chip-select pin to
// the Bus contract.
type PeriphBus struct {
	conn spi.Conn
	cs   gpio.PinIO
	port spi.PortCloser // owned when opened via PeriphOpener, else nil
}

// NewPeriphBus wraps an already-connected periph.io SPI conn. The CS pin
// is driven low to assert, matching mode 0 NOR flash wiring.
func NewPeriphBus(conn spi.Conn, cs gpio.PinIO) *PeriphBus {
	return &PeriphBus{conn: conn, cs: cs}
}

func (b *PeriphBus) Transfer(tx, rx []byte) (int, error) {
	n := len(tx)
	if tx == nil {
		n = len(rx)
		tx = make([]byte, n)
		for i := range tx {
			tx[i] = 0xFF
		}
	}
	if rx != nil && len(rx) != len(tx) {
		return 0, ErrInvalidParam
	}
	if err := b.conn.Tx(tx, rx); err != nil {
		return 0, err
	}
	return n, nil
}

func (b *PeriphBus) AssertCS() error   { return b.cs.Out(gpio.Low) }
func (b *PeriphBus) DeassertCS() error { return b.cs.Out(gpio.High) }

func (b *PeriphBus) Close() error {
	if b.port == nil {
		return nil
	}
	return b.port.Close()
}

// PeriphOpener opens buses through the periph.io host registries:
// BusID names a spireg port, CSPin a gpioreg pin. host.Init must have
// run first (the cmd tool does this once at startup).
type PeriphOpener struct{}

func (PeriphOpener) Open(cfg BusConfig) (Bus, error) {
	port, err := spireg.Open(cfg.BusID)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %q: %w", cfg.BusID, err)
	}
	bits := int(cfg.DataBits)
	if bits == 0 {
		bits = 8
	}
	conn, err := port.Connect(speedFrequency(cfg.Speed), spi.Mode(cfg.Mode), bits)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("SPI connect failed: %w", err)
	}
	cs := gpioreg.ByName(cfg.CSPin)
	if cs == nil {
		port.Close()
		return nil, errors.New("chip select pin not found: " + cfg.CSPin)
	}
	return &PeriphBus{conn: conn, cs: cs, port: port}, nil
}

func speedFrequency(s SpeedLevel) physic.Frequency {
	switch s {
	case SpeedLevel0:
		return 1 * physic.MegaHertz
	case SpeedLevel1:
		return 5 * physic.MegaHertz
	case SpeedLevel2:
		return 10 * physic.MegaHertz
	default:
		return 30 * physic.MegaHertz // [AN_135 3.2.1 Divisors] upper bound for MPSSE-class adapters
	}
}
