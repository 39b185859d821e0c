package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/ryaaaaaan96/ydev"
)

func readCommand(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	cfgPath, sim := commonFlags(fs)
	var (
		addr    uint
		nread   int
		outFile string
	)
	fs.UintVar(&addr, "a", 0, "start address")
	fs.IntVar(&nread, "n", 256, "number of bytes to read")
	fs.StringVar(&outFile, "o", "", "output file (default: hexdump)")
	fs.Parse(args)

	if nread <= 0 {
		fatalUsage("-n must be positive")
	}

	h, release := openFlash(*cfgPath, *sim)
	defer release()

	if err := h.Seek(uint32(addr)); err != nil {
		fatalf("seek failed: %v", err)
	}

	data := make([]byte, nread)
	n, err := ydev.Read(h, data)
	if err != nil {
		fatalf("read flash failed: %v", err)
	}
	if n < nread {
		fmt.Fprintf(os.Stderr, "short read: %d of %d bytes (errno %#x)\n", n, nread, h.Errno())
	}
	data = data[:n]

	if outFile == "" {
		fmt.Println(hex.Dump(data))
		return
	}
	if err := os.WriteFile(outFile, data, 0644); err != nil {
		fatalf("write file failed: %v", err)
	}
}
