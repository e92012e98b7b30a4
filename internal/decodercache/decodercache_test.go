// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package decodercache

import (
	"sync"
	"testing"

	"github.com/elliotnunn/huffpack/internal/huffman"
)

func TestCacheHit(t *testing.T) {
	c := New(4)
	_, table, err := huffman.Encode([]byte("abracadabra"))
	if err != nil {
		t.Fatal(err)
	}

	d1, err := c.Decoder(table)
	if err != nil {
		t.Fatal(err)
	}
	other := table.Clone()
	other.Tail = "1"
	d2, err := c.Decoder(other)
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Error("tables differing only in tail should share a decoder")
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("wanted 1 hit and 1 miss, got %d and %d", hits, misses)
	}
}

func TestFingerprint(t *testing.T) {
	a := &huffman.CodeTable{Codes: map[byte]string{1: "0", 2: "10", 3: "11"}}
	b := &huffman.CodeTable{Codes: map[byte]string{1: "0", 2: "11", 3: "10"}}
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("different codewords gave the same fingerprint")
	}
	if Fingerprint(a) != Fingerprint(a.Clone()) {
		t.Error("fingerprint is not stable")
	}
}

func TestCacheRejectsBadTable(t *testing.T) {
	c := New(1)
	_, err := c.Decoder(&huffman.CodeTable{Codes: map[byte]string{1: "0", 2: "0"}})
	if err == nil {
		t.Error("expected an error for a colliding table")
	}
	_, err = c.Decoder(nil)
	if err != huffman.ErrNoTable {
		t.Errorf("expected %v, got %v", huffman.ErrNoTable, err)
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New(8)
	var tables []*huffman.CodeTable
	var payloads [][]byte
	for _, s := range []string{"one", "two two", "three three three"} {
		p, table, err := huffman.Encode([]byte(s))
		if err != nil {
			t.Fatal(err)
		}
		tables = append(tables, table)
		payloads = append(payloads, p)
	}

	var wg sync.WaitGroup
	for i := range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, payload := tables[i%3], payloads[i%3]
			d, err := c.Decoder(table)
			if err != nil {
				t.Error(err)
				return
			}
			bits, err := huffman.Unpack(payload, table)
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := d.Decode(bits); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}
