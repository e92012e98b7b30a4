// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package huffman

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/icza/bitio"
)

// Pack concatenates the codeword of every byte in data and packs the bits
// 8 to a byte, most significant bit first.
//
// The last payload byte is zero-padded on the right. Its literal bits,
// between 1 and 8 of them, are returned as tail and belong in [CodeTable.Tail]:
// the packed bit count is always 8*(len(payload)-1) + len(tail).
func Pack(data []byte, t *CodeTable) (payload []byte, tail string, err error) {
	if t == nil {
		return nil, "", ErrNoTable
	}
	if len(data) == 0 {
		return []byte{}, "", nil
	}
	codes, err := t.compile()
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	nbits := 0
	for i, b := range data {
		if codes[b] == nil {
			return nil, "", fmt.Errorf("%w: %#02x at offset %d", ErrMissingCode, b, i)
		}
		for _, c := range codes[b] {
			if err := w.WriteBits(c.bits, c.n); err != nil {
				return nil, "", err
			}
			nbits += int(c.n)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	payload = buf.Bytes()
	tailLen := nbits - 8*(len(payload)-1)
	tail = formatBits(payload[len(payload)-1]>>(8-tailLen), tailLen)
	return payload, tail, nil
}

// Unpack recovers the logical bit sequence written by [Pack].
// Every payload byte but the last contributes 8 bits, and the last
// is replaced by the table's tail.
func Unpack(payload []byte, t *CodeTable) (Bits, error) {
	if t == nil {
		return Bits{}, ErrNoTable
	}
	if len(payload) != 0 && t.Tail == "" {
		return Bits{}, ErrMissingTail
	}
	if err := checkTail(t.Tail); err != nil {
		return Bits{}, err
	}

	whole := payload[:max(len(payload)-1, 0)]
	buf := bytes.NewBuffer(bytes.Clone(whole))
	w := bitio.NewWriter(buf)
	for i := 0; i < len(t.Tail); i++ {
		if err := w.WriteBool(t.Tail[i] == '1'); err != nil {
			return Bits{}, err
		}
	}
	if err := w.Close(); err != nil {
		return Bits{}, err
	}
	return Bits{buf: buf.Bytes(), n: 8*len(whole) + len(t.Tail)}, nil
}

// Bits is a sequence of bits packed MSB-first.
// Any bits in buf beyond n are zero padding.
type Bits struct {
	buf []byte
	n   int
}

// parseBits converts a string of '0' and '1' characters.
func parseBits(s string) (Bits, error) {
	if !isBinary(s) {
		return Bits{}, fmt.Errorf("%w: %q", ErrBadCode, s)
	}
	buf := make([]byte, (len(s)+7)/8)
	for i := 0; i < len(s); i++ {
		if s[i] == '1' {
			buf[i/8] |= 0x80 >> (i % 8)
		}
	}
	return Bits{buf: buf, n: len(s)}, nil
}

func (b Bits) Len() int { return b.n }

// At returns bit i as 0 or 1.
func (b Bits) At(i int) byte {
	return b.buf[i/8] >> (7 - i%8) & 1
}

func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := range b.n {
		sb.WriteByte('0' + b.At(i))
	}
	return sb.String()
}

func formatBits(v byte, n int) string {
	return fmt.Sprintf("%0*b", n, v)
}
