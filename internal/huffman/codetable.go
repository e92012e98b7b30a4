// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package huffman

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// A CodeTable maps each byte value to its codeword, a string of '0' and '1'.
//
// Tail is the entry with no byte value: the literal bits (at most 8) of the final
// packed byte. It is empty only when nothing has been packed.
type CodeTable struct {
	Codes map[byte]string
	Tail  string
}

// NewCodeTable takes each leaf's path as its codeword. The tail is filled in by [Pack].
func NewCodeTable(leaves []Leaf) *CodeTable {
	t := &CodeTable{Codes: make(map[byte]string, len(leaves))}
	for _, l := range leaves {
		t.Codes[l.Value] = l.Path
	}
	return t
}

// Symbols returns the byte values that have codewords, in ascending order.
func (t *CodeTable) Symbols() []byte {
	return slices.Sorted(maps.Keys(t.Codes))
}

func (t *CodeTable) Clone() *CodeTable {
	return &CodeTable{Codes: maps.Clone(t.Codes), Tail: t.Tail}
}

// Equal reports whether both tables hold the same codewords and tail.
func (t *CodeTable) Equal(o *CodeTable) bool {
	return t.Tail == o.Tail && maps.Equal(t.Codes, o.Codes)
}

// Validate checks that every codeword is well formed, the set is prefix-free
// and the tail is no longer than one byte.
func (t *CodeTable) Validate() error {
	if err := checkTail(t.Tail); err != nil {
		return err
	}
	_, err := NewDecoder(t)
	return err
}

// WeightedLength is the number of bits that input with weights w packs into.
func (t *CodeTable) WeightedLength(w Weights) (int, error) {
	n := 0
	for b, c := range w {
		code, ok := t.Codes[b]
		if !ok {
			return 0, fmt.Errorf("%w: %#02x", ErrMissingCode, b)
		}
		n += c * len(code)
	}
	return n, nil
}

func checkTail(tail string) error {
	if len(tail) > 8 {
		return fmt.Errorf("%w: %d bits", ErrBadTail, len(tail))
	}
	if !isBinary(tail) {
		return fmt.Errorf("%w: %q", ErrBadTail, tail)
	}
	return nil
}

func isBinary(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}

// A chunk is up to 64 bits of a codeword, right-aligned.
type chunk struct {
	bits uint64
	n    uint8
}

// compile converts the codewords into chunks ready for a bit writer.
// Codewords longer than 64 bits (possible with very skewed inputs) take several chunks.
func (t *CodeTable) compile() (*[256][]chunk, error) {
	var ret [256][]chunk
	for b, code := range t.Codes {
		if code == "" {
			return nil, fmt.Errorf("%w: empty codeword for %#02x", ErrBadCode, b)
		}
		for s := code; s != ""; {
			piece := s[:min(len(s), 64)]
			s = s[len(piece):]
			v, err := strconv.ParseUint(piece, 2, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q for %#02x", ErrBadCode, code, b)
			}
			ret[b] = append(ret[b], chunk{bits: v, n: uint8(len(piece))})
		}
	}
	return &ret, nil
}
