package ydev_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryaaaaaan96/ydev"
)

// loopSPI implements drivers.SPI: it records what was clocked out and
// answers with a canned response.
type loopSPI struct {
	sent     []byte
	response []byte
}

func (s *loopSPI) Tx(w, r []byte) error {
	s.sent = append(s.sent, w...)
	for i := range r {
		if i < len(s.response) {
			r[i] = s.response[i]
		} else {
			r[i] = 0xFF
		}
	}
	return nil
}

func (s *loopSPI) Transfer(b byte) (byte, error) {
	s.sent = append(s.sent, b)
	if len(s.response) > 0 {
		return s.response[0], nil
	}
	return 0xFF, nil
}

func TestTinyGoBusTransfer(t *testing.T) {
	spi := &loopSPI{response: []byte{0xFF, 0xEF, 0x40, 0x18}}
	var csLow bool
	bus := ydev.NewTinyGoBus(spi,
		func() { csLow = true },
		func() { csLow = false })

	require.NoError(t, bus.AssertCS())
	assert.True(t, csLow)

	tx := []byte{0x9F, 0xFF, 0xFF, 0xFF}
	rx := make([]byte, 4)
	n, err := bus.Transfer(tx, rx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, tx, spi.sent)
	assert.Equal(t, []byte{0xFF, 0xEF, 0x40, 0x18}, rx)

	require.NoError(t, bus.DeassertCS())
	assert.False(t, csLow)
	assert.NoError(t, bus.Close())
}

func TestTinyGoBusNilTxSendsDummies(t *testing.T) {
	spi := &loopSPI{}
	bus := ydev.NewTinyGoBus(spi, nil, nil)

	rx := make([]byte, 3)
	n, err := bus.Transfer(nil, rx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, spi.sent)

	// Nil chip-select hooks mean the hardware owns the line.
	assert.NoError(t, bus.AssertCS())
	assert.NoError(t, bus.DeassertCS())
}
