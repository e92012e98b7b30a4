// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package huffman

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
)

// A Decoder turns bits back into bytes using one code table's codewords.
// It ignores the tail, so one Decoder serves every payload encoded with the same codewords.
// A Decoder is immutable and safe for concurrent use.
type Decoder struct {
	nodes    []trieNode // nodes[0] is the empty prefix
	shortest int        // length of the shortest codeword, 0 if none
}

type trieNode struct {
	child [2]int // by bit, -1 for none
	leaf  bool
	value byte
}

// NewDecoder indexes the codewords of t by prefix,
// rejecting tables where one codeword is a prefix of another.
func NewDecoder(t *CodeTable) (*Decoder, error) {
	if t == nil {
		return nil, ErrNoTable
	}
	d := &Decoder{nodes: make([]trieNode, 1, max(1, 2*len(t.Codes)))}
	d.nodes[0].child = [2]int{-1, -1}
	for _, b := range t.Symbols() {
		if err := d.insert(t.Codes[b], b); err != nil {
			return nil, err
		}
		if l := len(t.Codes[b]); d.shortest == 0 || l < d.shortest {
			d.shortest = l
		}
	}
	return d, nil
}

func (d *Decoder) insert(code string, b byte) error {
	if code == "" {
		return fmt.Errorf("%w: empty codeword for %#02x", ErrBadCode, b)
	}
	n := 0
	for i := 0; i < len(code); i++ {
		if d.nodes[n].leaf {
			return fmt.Errorf("%w: codeword %q for %#02x extends %q",
				ErrNotPrefixFree, code, b, code[:i])
		}
		bit := int(code[i]) - '0'
		if bit != 0 && bit != 1 {
			return fmt.Errorf("%w: %q for %#02x", ErrBadCode, code, b)
		}
		next := d.nodes[n].child[bit]
		if next == -1 {
			next = len(d.nodes)
			d.nodes = append(d.nodes, trieNode{child: [2]int{-1, -1}})
			d.nodes[n].child[bit] = next
		}
		n = next
	}
	if d.nodes[n].leaf || d.nodes[n].child != [2]int{-1, -1} {
		return fmt.Errorf("%w: codeword %q for %#02x collides with another", ErrNotPrefixFree, code, b)
	}
	d.nodes[n].leaf = true
	d.nodes[n].value = b
	return nil
}

// Decode matches bits greedily against the codewords, emitting a byte each time
// the accumulated prefix equals a codeword.
func (d *Decoder) Decode(bits Bits) ([]byte, error) {
	// no codeword is shorter than d.shortest, so this bounds the output
	var out []byte
	if d.shortest > 0 {
		out = make([]byte, 0, bits.Len()/d.shortest)
	}
	r := bitio.NewReader(bytes.NewReader(bits.buf))
	n := 0
	for i := range bits.Len() {
		one, err := r.ReadBool()
		if err != nil {
			return out, err
		}
		bit := 0
		if one {
			bit = 1
		}
		next := d.nodes[n].child[bit]
		if next == -1 {
			return out, fmt.Errorf("%w: at bit %d after %d bytes", ErrCorrupt, i, len(out))
		}
		if d.nodes[next].leaf {
			out = append(out, d.nodes[next].value)
			next = 0
		}
		n = next
	}
	if n != 0 {
		return out, fmt.Errorf("%w: %d bytes decoded", ErrTrailingBits, len(out))
	}
	return out, nil
}

// Len is the number of distinct codewords the decoder knows.
func (d *Decoder) Len() int {
	n := 0
	for _, t := range d.nodes {
		if t.leaf {
			n++
		}
	}
	return n
}
