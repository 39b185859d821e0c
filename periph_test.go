package ydev_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/ryaaaaaan96/ydev"
)

func playbackConn(t *testing.T, ops []conntest.IO) spi.Conn {
	t.Helper()
	p := &spitest.Playback{
		Playback: conntest.Playback{Ops: ops, DontPanic: true},
	}
	conn, err := p.Connect(physic.MegaHertz, spi.Mode0, 8)
	require.NoError(t, err)
	return conn
}

func TestPeriphBusTransfer(t *testing.T) {
	conn := playbackConn(t, []conntest.IO{
		{W: []byte{0x9F, 0xFF, 0xFF, 0xFF}, R: []byte{0xFF, 0xEF, 0x40, 0x18}},
	})
	cs := &gpiotest.Pin{N: "FLASH_CS"}
	bus := ydev.NewPeriphBus(conn, cs)

	require.NoError(t, bus.AssertCS())
	assert.Equal(t, gpio.Low, cs.L)

	buf := []byte{0x9F, 0xFF, 0xFF, 0xFF}
	n, err := bus.Transfer(buf, buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{0xFF, 0xEF, 0x40, 0x18}, buf)

	require.NoError(t, bus.DeassertCS())
	assert.Equal(t, gpio.High, cs.L)

	// No port was opened through a registry, so Close is a no-op.
	assert.NoError(t, bus.Close())
}

func TestPeriphBusNilTxSendsDummies(t *testing.T) {
	conn := playbackConn(t, []conntest.IO{
		{W: []byte{0xFF, 0xFF}, R: []byte{0xAB, 0xCD}},
	})
	bus := ydev.NewPeriphBus(conn, &gpiotest.Pin{N: "CS"})

	rx := make([]byte, 2)
	n, err := bus.Transfer(nil, rx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0xAB, 0xCD}, rx)
}

func TestPeriphBusLengthMismatch(t *testing.T) {
	conn := playbackConn(t, nil)
	bus := ydev.NewPeriphBus(conn, &gpiotest.Pin{N: "CS"})

	_, err := bus.Transfer(make([]byte, 3), make([]byte, 2))
	assert.ErrorIs(t, err, ydev.ErrInvalidParam)
}
