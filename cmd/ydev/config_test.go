package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryaaaaaan96/ydev"
)

func TestLoadConfig(t *testing.T) {
	doc := `bus: SPI0.0
mode: 0
data_bits: 8
speed: 2
cs_mode: 0
sck: GPIO11
miso: GPIO9
mosi: GPIO10
cs: GPIO8
timeout_ms: 250
sim:
  id: 0xEF4017
  capacity: 4194304
`
	path := filepath.Join(t.TempDir(), "bus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "SPI0.0", cfg.Bus.BusID)
	assert.Equal(t, uint8(0), cfg.Bus.Mode)
	assert.Equal(t, uint8(8), cfg.Bus.DataBits)
	assert.Equal(t, ydev.SpeedLevel2, cfg.Bus.Speed)
	assert.Equal(t, ydev.CSSoft, cfg.Bus.CS)
	assert.Equal(t, "GPIO11", cfg.Bus.SCKPin)
	assert.Equal(t, "GPIO8", cfg.Bus.CSPin)
	assert.Equal(t, uint32(250), cfg.TimeoutMS)
	assert.Equal(t, uint32(0xEF4017), cfg.Sim.ID)
	assert.Equal(t, uint32(4<<20), cfg.Sim.Capacity)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, cliConfig{}, cfg)
}
