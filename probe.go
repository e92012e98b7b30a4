// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"

	"github.com/therootcompany/xz"
)

// expand undoes a gzip, bzip2 or xz wrapper recognised by its magic number.
// Anything else is returned unchanged.
func expand(data []byte) ([]byte, string, error) {
	matchAt := func(s string, offset int) bool {
		return len(data) >= offset+len(s) && string(data[offset:][:len(s)]) == s
	}

	var r io.Reader
	var kind string
	switch {
	case matchAt("\x1f\x8b", 0):
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, "gzip", err
		}
		r, kind = gz, "gzip"
	case matchAt("BZh", 0):
		r, kind = bzip2.NewReader(bytes.NewReader(data)), "bzip2"
	case matchAt("\xfd7zXZ\x00", 0):
		xr, err := xz.NewReader(bytes.NewReader(data), xz.DefaultDictMax)
		if err != nil {
			return nil, "xz", err
		}
		r, kind = xr, "xz"
	default:
		return data, "", nil
	}

	// the expanded form must also fit in memory
	out, err := io.ReadAll(io.LimitReader(r, int64(memLimit)+1))
	if err != nil {
		return nil, kind, err
	}
	if len(out) > memLimit {
		return nil, kind, errTooLarge
	}
	return out, kind, nil
}
