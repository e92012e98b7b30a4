// Package container persists a Huffman payload together with its code table.
//
// Layout, all integers unsigned varints unless noted:
//
//	"HUFP" version(1 byte)
//	count, then per codeword in ascending byte order:
//	    byte, bit length, bits packed MSB-first and zero-padded to a byte
//	tail bit length (0-8), then one byte of tail bits if non-zero
//	payload length, payload
//	xxhash64 of everything above (8 bytes, big-endian)
package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/elliotnunn/huffpack/internal/huffman"
	"github.com/icza/bitio"
)

const (
	magic   = "HUFP"
	version = 1
)

var (
	ErrBadMagic  = errors.New("container: not a huffpack file")
	ErrVersion   = errors.New("container: unsupported version")
	ErrChecksum  = errors.New("container: checksum mismatch")
	ErrTruncated = errors.New("container: truncated")
	ErrMalformed = errors.New("container: malformed")
)

func Write(w io.Writer, payload []byte, t *huffman.CodeTable) error {
	b, err := Marshal(payload, t)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func Read(r io.Reader) ([]byte, *huffman.CodeTable, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	return Unmarshal(b)
}

func Marshal(payload []byte, t *huffman.CodeTable) ([]byte, error) {
	if t == nil {
		return nil, huffman.ErrNoTable
	}
	table, err := MarshalTable(t)
	if err != nil {
		return nil, err
	}

	b := make([]byte, 0, len(magic)+1+len(table)+binary.MaxVarintLen64+len(payload)+8)
	b = append(b, magic...)
	b = append(b, version)
	b = append(b, table...)
	b = binary.AppendUvarint(b, uint64(len(payload)))
	b = append(b, payload...)
	b = binary.BigEndian.AppendUint64(b, xxhash.Sum64(b))
	return b, nil
}

// MarshalTable encodes only the codewords and tail.
// Equal tables always give equal bytes.
func MarshalTable(t *huffman.CodeTable) ([]byte, error) {
	if len(t.Tail) > 8 {
		return nil, fmt.Errorf("%w: %d bits", huffman.ErrBadTail, len(t.Tail))
	}
	syms := t.Symbols()
	b := binary.AppendUvarint(nil, uint64(len(syms)))
	for _, sym := range syms {
		code := t.Codes[sym]
		packed, err := packString(code)
		if err != nil {
			return nil, fmt.Errorf("%w: codeword for %#02x", err, sym)
		}
		b = append(b, sym)
		b = binary.AppendUvarint(b, uint64(len(code)))
		b = append(b, packed...)
	}
	tail, err := packString(t.Tail)
	if err != nil {
		return nil, fmt.Errorf("%w: tail", err)
	}
	b = binary.AppendUvarint(b, uint64(len(t.Tail)))
	b = append(b, tail...)
	return b, nil
}

func Unmarshal(b []byte) ([]byte, *huffman.CodeTable, error) {
	if len(b) < len(magic)+1+8 {
		return nil, nil, ErrTruncated
	}
	if string(b[:len(magic)]) != magic {
		return nil, nil, ErrBadMagic
	}
	if b[len(magic)] != version {
		return nil, nil, fmt.Errorf("%w: %d", ErrVersion, b[len(magic)])
	}
	body, sum := b[:len(b)-8], binary.BigEndian.Uint64(b[len(b)-8:])
	if xxhash.Sum64(body) != sum {
		return nil, nil, ErrChecksum
	}

	r := bytes.NewReader(body[len(magic)+1:])
	t, err := readTable(r)
	if err != nil {
		return nil, nil, err
	}
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, nil, ErrTruncated
	}
	if n != uint64(r.Len()) {
		return nil, nil, fmt.Errorf("%w: payload length %d with %d bytes left", ErrMalformed, n, r.Len())
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, nil, ErrTruncated
	}
	return payload, t, nil
}

func readTable(r *bytes.Reader) (*huffman.CodeTable, error) {
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, ErrTruncated
	}
	if count > 256 {
		return nil, fmt.Errorf("%w: %d codewords", ErrMalformed, count)
	}
	t := &huffman.CodeTable{Codes: make(map[byte]string, count)}
	for range count {
		sym, err := r.ReadByte()
		if err != nil {
			return nil, ErrTruncated
		}
		if _, dup := t.Codes[sym]; dup {
			return nil, fmt.Errorf("%w: codeword for %#02x repeated", ErrMalformed, sym)
		}
		// a strict binary tree over 256 leaves is at most 255 deep
		code, err := readString(r, 255)
		if err != nil {
			return nil, err
		}
		t.Codes[sym] = code
	}
	t.Tail, err = readString(r, 8)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func packString(s string) ([]byte, error) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return nil, huffman.ErrBadCode
		}
		if err := w.WriteBool(s[i] == '1'); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readString(r *bytes.Reader, limit uint64) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", ErrTruncated
	}
	if n > limit {
		return "", fmt.Errorf("%w: %d bits where at most %d allowed", ErrMalformed, n, limit)
	}
	br := bitio.NewReader(io.LimitReader(r, int64((n+7)/8)))
	s := make([]byte, n)
	for i := range s {
		one, err := br.ReadBool()
		if err != nil {
			return "", ErrTruncated
		}
		s[i] = '0'
		if one {
			s[i] = '1'
		}
	}
	return string(s), nil
}
