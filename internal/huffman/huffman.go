// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package huffman is a static Huffman coder for fully buffered byte slices.
//
// [Encode] counts byte frequencies, builds a Huffman tree, derives a [CodeTable]
// from the leaf paths and packs the concatenated codewords MSB-first.
// The final packed byte is never trusted on the way back in:
// its literal bits travel in the table's Tail, so the payload and
// its table must always be stored together.
package huffman

import (
	"errors"
	"fmt"
)

var (
	ErrNoSymbols     = errors.New("huffman: no symbols to build a tree from")
	ErrNoTable       = errors.New("huffman: nil code table")
	ErrMissingCode   = errors.New("huffman: byte has no codeword")
	ErrBadCode       = errors.New("huffman: malformed codeword")
	ErrNotPrefixFree = errors.New("huffman: code table is not prefix-free")
	ErrMissingTail   = errors.New("huffman: code table has no tail entry")
	ErrBadTail       = errors.New("huffman: malformed tail entry")
	ErrCorrupt       = errors.New("huffman: bit stream matches no codeword")
	ErrTrailingBits  = errors.New("huffman: bit stream ends inside a codeword")
)

// Encode compresses data, returning the packed payload and the table needed to decode it.
// Empty input gives an empty payload and an empty table without a tail.
func Encode(data []byte) ([]byte, *CodeTable, error) {
	if len(data) == 0 {
		return []byte{}, &CodeTable{Codes: make(map[byte]string)}, nil
	}

	tree, err := BuildTree(CountWeights(data))
	if err != nil {
		return nil, nil, err
	}
	table := NewCodeTable(tree.Leaves())

	payload, tail, err := Pack(data, table)
	if err != nil {
		return nil, nil, fmt.Errorf("pack: %w", err)
	}
	table.Tail = tail
	return payload, table, nil
}

// Decode reverses [Encode]. The table must carry the tail entry produced alongside payload.
func Decode(payload []byte, table *CodeTable) ([]byte, error) {
	if table == nil {
		return nil, ErrNoTable
	}
	d, err := NewDecoder(table)
	if err != nil {
		return nil, err
	}
	bits, err := Unpack(payload, table)
	if err != nil {
		return nil, err
	}
	return d.Decode(bits)
}
