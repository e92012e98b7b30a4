package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var errTooLarge = errors.New("input exceeds HUFFGB memory limit")

// readFile reads a whole file, refusing files that would not fit under memLimit.
func readFile(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() > int64(memLimit) {
		return nil, fmt.Errorf("%s: %w (%d bytes)", name, errTooLarge, st.Size())
	}
	adviseSequential(f)

	data, err := io.ReadAll(io.LimitReader(f, int64(memLimit)+1))
	if err != nil {
		return nil, err
	}
	if len(data) > memLimit {
		return nil, fmt.Errorf("%s: %w", name, errTooLarge)
	}
	return data, nil
}
