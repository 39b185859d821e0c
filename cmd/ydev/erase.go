package main

import (
	"flag"

	"github.com/ryaaaaaan96/ydev"
)

func eraseCommand(args []string) {
	fs := flag.NewFlagSet("erase", flag.ExitOnError)
	cfgPath, sim := commonFlags(fs)
	var (
		addr  uint
		size  uint
		whole bool
	)
	fs.UintVar(&addr, "a", 0, "start address (widened down to a 4KB boundary)")
	fs.UintVar(&size, "n", 4096, "number of bytes to erase")
	fs.BoolVar(&whole, "chip", false, "erase the entire chip")
	fs.Parse(args)

	h, release := openFlash(*cfgPath, *sim)
	defer release()

	if whole {
		if err := ydev.Ioctl(h, ydev.FlashIoctlChipErase, nil); err != nil {
			fatalf("chip erase failed: %v", err)
		}
		return
	}

	r := ydev.FlashEraseRange{Address: uint32(addr), Size: uint32(size)}
	if err := ydev.Ioctl(h, ydev.FlashIoctlSectorErase, &r); err != nil {
		fatalf("erase failed: %v", err)
	}
}
