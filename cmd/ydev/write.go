package main

import (
	"flag"
	"os"

	"github.com/ryaaaaaan96/ydev"
)

func writeCommand(args []string) {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	cfgPath, sim := commonFlags(fs)
	var (
		addr     uint
		filename string
		erase    bool
	)
	fs.UintVar(&addr, "a", 0, "start address")
	fs.StringVar(&filename, "f", "", "input file")
	fs.BoolVar(&erase, "e", false, "erase the target range first")
	fs.Parse(args)

	if filename == "" {
		fatalUsage("input file is required")
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		fatalf("failed to read file: %v", err)
	}

	h, release := openFlash(*cfgPath, *sim)
	defer release()

	if erase {
		r := ydev.FlashEraseRange{Address: uint32(addr), Size: uint32(len(data))}
		if err := ydev.Ioctl(h, ydev.FlashIoctlSectorErase, &r); err != nil {
			fatalf("erase failed: %v", err)
		}
	}

	if err := h.Seek(uint32(addr)); err != nil {
		fatalf("seek failed: %v", err)
	}
	if _, err := ydev.Write(h, data); err != nil {
		fatalf("write flash failed: %v", err)
	}
}
