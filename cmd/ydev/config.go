package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"periph.io/x/host/v3"

	"github.com/ryaaaaaan96/ydev"
	"github.com/ryaaaaaan96/ydev/simflash"
)

// cliConfig is the YAML file behind -c. Every field is optional; the
// zero value selects the host's default SPI port and the driver's
// conventional bus settings.
type cliConfig struct {
	Bus       ydev.BusConfig `yaml:"bus"`
	TimeoutMS uint32         `yaml:"timeout_ms"`

	// Simulated chip parameters, used with -sim.
	Sim struct {
		ID       uint32 `yaml:"id"`
		Capacity uint32 `yaml:"capacity"`
	} `yaml:"sim"`
}

func loadConfig(path string) (cliConfig, error) {
	var cfg cliConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// commonFlags registers the flags shared by every subcommand.
func commonFlags(fs *flag.FlagSet) (cfgPath *string, sim *bool) {
	cfgPath = fs.String("c", "", "YAML bus configuration file")
	sim = fs.Bool("sim", false, "use a simulated chip instead of hardware")
	return cfgPath, sim
}

// openFlash initializes a flash handle from the common flags. The
// returned func releases the bus.
func openFlash(cfgPath string, sim bool) (*ydev.FlashHandle, func()) {
	cli, err := loadConfig(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	cfg := ydev.NewFlashConfig()
	if cli.Bus != (ydev.BusConfig{}) {
		cfg.Bus = cli.Bus
	}
	cfg.TimeoutMS = cli.TimeoutMS

	if sim {
		id, capacity := cli.Sim.ID, cli.Sim.Capacity
		if id == 0 {
			id = 0xEF4019 // W25Q128, 16MB
		}
		if capacity == 0 {
			capacity = 16 << 20
		}
		cfg.Opener = simflash.Opener{Chip: simflash.New(id, capacity, ydev.SystemClock)}
	} else {
		if _, err := host.Init(); err != nil {
			fatalf("host initialization failed: %v", err)
		}
	}

	h := &ydev.FlashHandle{}
	if err := ydev.Init(cfg, h); err != nil {
		fatalf("flash init failed: %v", err)
	}
	return h, func() {
		if err := ydev.Deinit(h); err != nil {
			fmt.Fprintf(os.Stderr, "flash deinit failed: %v\n", err)
		}
	}
}
