package ydev

import "tinygo.org/x/drivers"

// TinyGoBus adapts the machine-independent drivers.SPI interface from
// tinygo.org/x/drivers to the Bus contract, so the same flash driver
// runs on a TinyGo target with a GPIO-driven chip select.
type TinyGoBus struct {
	spi      drivers.SPI
	assert   func()
	deassert func()
}

// NewTinyGoBus wraps a drivers.SPI bus. assert and deassert drive the
// chip-select line low and high respectively; either may be nil when the
// hardware owns the line.
func NewTinyGoBus(spi drivers.SPI, assert, deassert func()) *TinyGoBus {
	return &TinyGoBus{spi: spi, assert: assert, deassert: deassert}
}

func (b *TinyGoBus) Transfer(tx, rx []byte) (int, error) {
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
	if err := b.spi.Tx(tx, rx); err != nil {
		return 0, err
	}
	return n, nil
}

func (b *TinyGoBus) AssertCS() error {
	if b.assert != nil {
		b.assert()
	}
	return nil
}

func (b *TinyGoBus) DeassertCS() error {
	if b.deassert != nil {
		b.deassert()
	}
	return nil
}

func (b *TinyGoBus) Close() error { return nil }
