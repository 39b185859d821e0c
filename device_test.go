package ydev_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/ryaaaaaan96/ydev"
)

func TestInitNilArguments(t *testing.T) {
	h := &ydev.DmaHandle{}
	assert.ErrorIs(t, ydev.Init(nil, h), ydev.ErrInvalidParam)
	assert.ErrorIs(t, ydev.Init(ydev.NewDmaConfig(0), nil), ydev.ErrInvalidParam)
}

func TestInitUnknownType(t *testing.T) {
	cfg := &ydev.BaseConfig{Type: ydev.Type(0xFF)}
	h := &ydev.DmaHandle{}
	err := ydev.Init(cfg, h)
	assert.ErrorIs(t, err, ydev.ErrNotFound)
	assert.True(t, h.Errno().Has(ydev.ErrnoNotFound))
}

func TestDispatchDefaultTimeout(t *testing.T) {
	h := &ydev.DmaHandle{}
	require.NoError(t, ydev.Init(ydev.NewDmaConfig(3), h))
	assert.Equal(t, uint32(ydev.DefaultTimeoutMS), h.TimeoutMS)
	assert.Equal(t, ydev.TypeDma, h.Type())
	assert.Equal(t, int(ydev.TypeDma), h.TableIndex())
	assert.Equal(t, uint8(3), h.Channel())
}

// The DMA kind registers init and deinit only; reads and writes must
// transfer nothing and ioctl must report not-supported without faulting.
func TestDispatchNilOperations(t *testing.T) {
	h := &ydev.DmaHandle{}
	require.NoError(t, ydev.Init(ydev.NewDmaConfig(0), h))

	buf := make([]byte, 8)
	n, err := ydev.Read(h, buf)
	assert.NoError(t, err)
	assert.Zero(t, n)

	n, err = ydev.Write(h, buf)
	assert.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, ydev.Ioctl(h, ydev.IoctlGetStatus, nil), ydev.ErrNotSupported)
}

func TestDispatchUninitializedHandle(t *testing.T) {
	h := &ydev.DmaHandle{}
	_, err := ydev.Read(h, make([]byte, 1))
	assert.ErrorIs(t, err, ydev.ErrNotInitialized)
	assert.ErrorIs(t, ydev.Deinit(h), ydev.ErrNotInitialized)
}

func TestDeinitZeroesHandle(t *testing.T) {
	h := &ydev.DmaHandle{}
	require.NoError(t, ydev.Init(ydev.NewDmaConfig(1), h))
	require.NoError(t, ydev.Deinit(h))

	assert.Zero(t, h.TimeoutMS)
	_, err := ydev.Read(h, make([]byte, 1))
	assert.ErrorIs(t, err, ydev.ErrNotInitialized)
}

func TestUsartForwarding(t *testing.T) {
	var port bytes.Buffer
	port.WriteString("pong")

	cfg := ydev.NewUsartConfig(&port)
	cfg.TimeoutMS = 50
	h := &ydev.UsartHandle{}
	require.NoError(t, ydev.Init(cfg, h))

	buf := make([]byte, 4)
	n, err := ydev.Read(h, buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("pong"), buf)

	// Drained stream is a short read, not a failure.
	n, err = ydev.Read(h, buf)
	assert.NoError(t, err)
	assert.Zero(t, n)

	n, err = ydev.Write(h, []byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "ping", port.String())

	// The kind registers no ioctl.
	assert.ErrorIs(t, ydev.Ioctl(h, ydev.IoctlReset, nil), ydev.ErrNotSupported)
}

func TestGpioDevice(t *testing.T) {
	pin := &gpiotest.Pin{N: "LED1"}
	cfg := ydev.NewGpioConfig(pin)
	cfg.Mode = ydev.GpioOutput
	h := &ydev.GpioHandle{}
	require.NoError(t, ydev.Init(cfg, h))

	n, err := ydev.Write(h, []byte{1})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, gpio.High, pin.L)

	require.NoError(t, ydev.Ioctl(h, ydev.GpioIoctlToggle, nil))
	assert.Equal(t, gpio.Low, pin.L)

	var level bool
	require.NoError(t, ydev.Ioctl(h, ydev.GpioIoctlReadLevel, &level))
	assert.False(t, level)

	buf := make([]byte, 2)
	n, err = ydev.Read(h, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0, 0}, buf)

	require.NoError(t, ydev.Deinit(h))
}
