package main

import (
	"flag"
	"fmt"

	"github.com/ryaaaaaan96/ydev"
)

func infoCommand(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	cfgPath, sim := commonFlags(fs)
	fs.Parse(args)

	h, release := openFlash(*cfgPath, *sim)
	defer release()

	fmt.Printf("JEDEC ID:      %06X\n", h.JEDECID())
	fmt.Printf("Manufacturer:  %#02x\n", h.ManufacturerID())
	fmt.Printf("Device:        %#04x\n", h.DeviceID())
	fmt.Printf("Chip:          %s\n", h.Chip())
	fmt.Printf("Capacity:      %d bytes (%d MB)\n", h.Capacity(), h.Capacity()>>20)

	var sr ydev.FlashStatusRegister
	if err := ydev.Ioctl(h, ydev.FlashIoctlReadStatusReg, &sr); err != nil {
		fatalf("read status register failed: %v", err)
	}
	fmt.Printf("Status:        %s\n", sr)
}
