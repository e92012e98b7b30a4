// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package decodercache keeps recently used [huffman.Decoder]s,
// so that payloads sharing a code table do not rebuild the same decoder.
package decodercache

import (
	"maps"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"
	"github.com/elliotnunn/huffpack/internal/huffman"
)

// A Cache is safe for concurrent use by multiple goroutines.
type Cache struct {
	mu           sync.Mutex
	lfu          *tinylfu.T[uint64, entry]
	hits, misses uint64
}

type entry struct {
	codes map[byte]string
	dec   *huffman.Decoder
}

// New creates a cache holding about n decoders.
func New(n int) *Cache {
	n = max(n, 1)
	return &Cache{lfu: tinylfu.New[uint64, entry](n, n*10, func(k uint64) uint64 { return k })}
}

// Decoder returns a decoder for the codewords of t, building it on a miss.
// The tail is not part of the key.
func (c *Cache) Decoder(t *huffman.CodeTable) (*huffman.Decoder, error) {
	if t == nil {
		return nil, huffman.ErrNoTable
	}
	key := Fingerprint(t)

	c.mu.Lock()
	e, ok := c.lfu.Get(key)
	if ok && maps.Equal(e.codes, t.Codes) {
		c.hits++
		c.mu.Unlock()
		return e.dec, nil
	}
	c.misses++
	c.mu.Unlock()

	dec, err := huffman.NewDecoder(t)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lfu.Add(key, entry{codes: maps.Clone(t.Codes), dec: dec})
	c.mu.Unlock()
	return dec, nil
}

// Stats reports lookups so far.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Fingerprint hashes the codewords of t in ascending byte order.
func Fingerprint(t *huffman.CodeTable) uint64 {
	var h xxhash.Digest
	h.Reset()
	var scratch []byte
	for _, sym := range t.Symbols() {
		scratch = append(scratch[:0], sym)
		scratch = strconv.AppendInt(scratch, int64(len(t.Codes[sym])), 10)
		scratch = append(scratch, ':')
		h.Write(scratch)
		h.WriteString(t.Codes[sym])
	}
	return h.Sum64()
}
