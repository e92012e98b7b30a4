package main

import (
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential tells the kernel the whole file is about to be read once.
func adviseSequential(f *os.File) {
	err := unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
	if err != nil {
		slog.Debug("fadviseError", "path", f.Name(), "err", err)
	}
}
