package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/elliotnunn/huffpack/internal/huffman"
)

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"aaaaaaaaaa",
		"she sells sea shells by the sea shore",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			payload, table, err := huffman.Encode([]byte(in))
			if err != nil {
				t.Fatal(err)
			}

			var buf bytes.Buffer
			if err := Write(&buf, payload, table); err != nil {
				t.Fatal(err)
			}
			gotPayload, gotTable, err := Read(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(gotPayload, payload) {
				t.Errorf("payload: wanted %x, got %x", payload, gotPayload)
			}
			if !gotTable.Equal(table) {
				t.Errorf("table: wanted %v/%q, got %v/%q", table.Codes, table.Tail, gotTable.Codes, gotTable.Tail)
			}

			out, err := huffman.Decode(gotPayload, gotTable)
			if err != nil {
				t.Fatal(err)
			}
			if string(out) != in {
				t.Errorf("wanted %q, got %q", in, out)
			}
		})
	}
}

func TestLongCodewords(t *testing.T) {
	table := &huffman.CodeTable{Codes: map[byte]string{0: "0"}, Tail: "1"}
	long := ""
	for i := 1; i < 200; i++ {
		long += "1"
		table.Codes[byte(i)] = long + "0"
	}
	b, err := Marshal([]byte{0x80}, table)
	if err != nil {
		t.Fatal(err)
	}
	_, got, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(table) {
		t.Error("long codewords did not survive")
	}
}

func TestMarshalTableCanonical(t *testing.T) {
	a := &huffman.CodeTable{Codes: map[byte]string{'x': "0", 'y': "10", 'z': "11"}, Tail: "01"}
	b := a.Clone()
	ma, err := MarshalTable(a)
	if err != nil {
		t.Fatal(err)
	}
	mb, err := MarshalTable(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ma, mb) {
		t.Errorf("equal tables marshalled differently: %x %x", ma, mb)
	}
}

func TestCorruption(t *testing.T) {
	payload, table, err := huffman.Encode([]byte("corruption is detected before decoding"))
	if err != nil {
		t.Fatal(err)
	}
	good, err := Marshal(payload, table)
	if err != nil {
		t.Fatal(err)
	}

	flip := func(i int) []byte {
		b := bytes.Clone(good)
		b[i] ^= 0x10
		return b
	}
	cases := []struct {
		name string
		data []byte
		err  error
	}{
		{"short", good[:6], ErrTruncated},
		{"magic", flip(0), ErrBadMagic},
		{"version", flip(4), ErrVersion},
		{"body", flip(len(good) / 2), ErrChecksum},
		{"checksum", flip(len(good) - 1), ErrChecksum},
		{"cut", good[:len(good)-3], ErrChecksum},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := Unmarshal(c.data)
			if !errors.Is(err, c.err) {
				t.Errorf("expected error %v, got %v", c.err, err)
			}
		})
	}
}

func TestShortPayload(t *testing.T) {
	_, table, err := huffman.Encode([]byte("abcabc"))
	if err != nil {
		t.Fatal(err)
	}
	tb, err := MarshalTable(table)
	if err != nil {
		t.Fatal(err)
	}
	// claims 5 payload bytes but carries 2, under a valid checksum
	b := append([]byte(magic), version)
	b = append(b, tb...)
	b = binary.AppendUvarint(b, 5)
	b = append(b, 0x5a, 0xc0)
	b = binary.BigEndian.AppendUint64(b, xxhash.Sum64(b))

	payload, _, err := Unmarshal(b)
	if err == nil {
		t.Fatalf("wanted an error, got payload %x", payload)
	}
	if !errors.Is(err, ErrMalformed) && !errors.Is(err, ErrTruncated) {
		t.Errorf("wanted a length error, got %v", err)
	}
}

func TestMarshalRejectsBadTable(t *testing.T) {
	_, err := Marshal(nil, &huffman.CodeTable{Codes: map[byte]string{1: "2"}})
	if !errors.Is(err, huffman.ErrBadCode) {
		t.Errorf("expected %v, got %v", huffman.ErrBadCode, err)
	}
	_, err = Marshal(nil, &huffman.CodeTable{Tail: "101010101"})
	if !errors.Is(err, huffman.ErrBadTail) {
		t.Errorf("expected %v, got %v", huffman.ErrBadTail, err)
	}
}
