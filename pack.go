// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/elliotnunn/huffpack/internal/container"
	"github.com/elliotnunn/huffpack/internal/huffman"
)

const suffix = ".huf"

func cmdPack(args []string) error {
	fl := flag.NewFlagSet("pack", flag.ContinueOnError)
	expandFlag := fl.Bool("x", false, "expand gzip, bzip2 or xz input before packing")
	outDir := fl.String("o", "", "write .huf files to this directory")
	if err := fl.Parse(args); err != nil || fl.NArg() == 0 {
		return errUsage
	}
	names, err := globAll(fl.Args())
	if err != nil {
		return err
	}

	var errs []error
	for _, name := range names {
		dest := name + suffix
		if *outDir != "" {
			dest = filepath.Join(*outDir, filepath.Base(name)+suffix)
		}
		if err := packFile(name, dest, *expandFlag); err != nil {
			slog.Warn("packError", "path", name, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func packFile(name, dest string, expandInput bool) error {
	data, err := readFile(name)
	if err != nil {
		return err
	}
	if expandInput {
		var kind string
		data, kind, err = expand(data)
		if err != nil {
			return fmt.Errorf("%s: expand %s: %w", name, kind, err)
		}
		if kind != "" {
			slog.Debug("expanded", "path", name, "kind", kind, "size", len(data))
		}
	}

	payload, table, err := huffman.Encode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := writeContainer(dest, payload, table); err != nil {
		return err
	}
	slog.Info("packed", "path", name, "dest", dest,
		"size", len(data), "payload", len(payload), "codewords", len(table.Codes))
	return nil
}

func writeContainer(dest string, payload []byte, table *huffman.CodeTable) error {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	err = container.Write(bw, payload, table)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("%s: %w", dest, err)
	}
	return nil
}

func readContainer(name string) ([]byte, *huffman.CodeTable, error) {
	raw, err := readFile(name)
	if err != nil {
		return nil, nil, err
	}
	payload, table, err := container.Unmarshal(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	return payload, table, nil
}

func cmdUnpack(args []string) error {
	fl := flag.NewFlagSet("unpack", flag.ContinueOnError)
	outDir := fl.String("o", "", "write restored files to this directory")
	if err := fl.Parse(args); err != nil || fl.NArg() == 0 {
		return errUsage
	}
	names, err := globAll(fl.Args())
	if err != nil {
		return err
	}

	var errs []error
	for _, name := range names {
		dest := strings.TrimSuffix(name, suffix)
		if dest == name || filepath.Base(name) == suffix {
			dest = name + ".out"
		}
		if *outDir != "" {
			dest = filepath.Join(*outDir, filepath.Base(dest))
		}
		if err := unpackFile(name, dest); err != nil {
			slog.Warn("unpackError", "path", name, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func unpackFile(name, dest string) error {
	payload, table, err := readContainer(name)
	if err != nil {
		return err
	}
	data, err := huffman.Decode(payload, table)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	slog.Info("unpacked", "path", name, "dest", dest, "size", len(data))
	return nil
}

func cmdInspect(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	names, err := globAll(args)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for _, name := range names {
		payload, table, err := readContainer(name)
		if err != nil {
			return err
		}
		printTable(w, name, payload, table)
	}
	return nil
}

func printTable(w io.Writer, name string, payload []byte, table *huffman.CodeTable) {
	bits := 0
	if len(payload) > 0 {
		bits = 8*(len(payload)-1) + len(table.Tail)
	}
	fmt.Fprintf(w, "%s: %d payload bytes, %d bits, %d codewords\n",
		name, len(payload), bits, len(table.Codes))
	for _, sym := range table.Symbols() {
		fmt.Fprintf(w, "    0x%02x %-6s %s\n", sym, printable(sym), table.Codes[sym])
	}
	fmt.Fprintf(w, "    tail        %s\n", table.Tail)
}

func printable(b byte) string {
	if b < 0x80 && strconv.IsPrint(rune(b)) {
		return strconv.QuoteRune(rune(b))
	}
	return ""
}

// globAll expands each pattern with ** support, in order, without duplicates.
func globAll(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var ret []string
	for _, pat := range patterns {
		matches, err := doublestar.FilepathGlob(pat, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pat, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: no files match", pat)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				ret = append(ret, m)
			}
		}
	}
	return ret, nil
}
