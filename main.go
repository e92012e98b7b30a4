// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Command huffpack compresses files with a static Huffman code.
//
//	huffpack pack [-x] [-o dir] GLOB...     compress each file to NAME.huf
//	huffpack unpack [-o dir] FILE.huf...    restore the original files
//	huffpack inspect FILE.huf...            print the code table
//	huffpack put [-db dir] [-as name] GLOB...
//	huffpack get [-db dir] [-o file] NAME
//	huffpack ls [-db dir] [PREFIX]
//	huffpack rm [-db dir] NAME...
//	huffpack serve [-db dir] [-addr :1993]
//
// HUFFGB limits the size of any one input in gigabytes (default 1),
// HUFFDB sets the default store directory and HUFFDEBUG=1 enables debug logging.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

type command struct {
	run   func(args []string) error
	usage string
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"pack":    {cmdPack, "[-x] [-o dir] GLOB..."},
		"unpack":  {cmdUnpack, "[-o dir] FILE.huf..."},
		"inspect": {cmdInspect, "FILE.huf..."},
		"put":     {cmdPut, "[-db dir] [-as name] GLOB..."},
		"get":     {cmdGet, "[-db dir] [-o file] NAME"},
		"ls":      {cmdList, "[-db dir] [PREFIX]"},
		"rm":      {cmdRemove, "[-db dir] NAME..."},
		"serve":   {cmdServe, "[-db dir] [-addr :1993]"},
		"help":    {cmdHelp, ""},
	}
}

var errUsage = errors.New("usage")

func main() {
	if os.Getenv("HUFFDEBUG") != "" {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if len(os.Args) < 2 {
		cmdHelp(nil)
		os.Exit(2)
	}
	name := os.Args[1]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "huffpack: unknown command %q\n", name)
		cmdHelp(nil)
		os.Exit(2)
	}

	err := cmd.run(os.Args[2:])
	if errors.Is(err, errUsage) {
		fmt.Fprintf(os.Stderr, "usage: huffpack %s %s\n", name, cmd.usage)
		os.Exit(2)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "huffpack: %v\n", err)
		os.Exit(1)
	}
}

func cmdHelp([]string) error {
	fmt.Fprint(os.Stderr, `huffpack compresses files with a static Huffman code.

Compressing a file stores its packed bits together with the code table
needed to restore it. Unpacking needs nothing but the .huf file.

commands:
`)
	for _, name := range []string{"pack", "unpack", "inspect", "put", "get", "ls", "rm", "serve"} {
		fmt.Fprintf(os.Stderr, "  huffpack %s %s\n", name, commands[name].usage)
	}
	return nil
}
