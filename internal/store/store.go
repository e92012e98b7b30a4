// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package store keeps named, Huffman-compressed blobs in a pebble database.
// Each value is a complete container file, so it can be exported byte for byte.
package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/pebble/v2"
	"github.com/cockroachdb/pebble/v2/vfs"
	"github.com/elliotnunn/huffpack/internal/container"
	"github.com/elliotnunn/huffpack/internal/decodercache"
	"github.com/elliotnunn/huffpack/internal/huffman"
)

const (
	keyPrefix  = "blob/"
	sizePrefix = "size/" // uvarint original length, beside each blob
)

var ErrNotFound = errors.New("store: no such entry")

type Store struct {
	db    *pebble.DB
	cache *decodercache.Cache
}

// Stat describes one stored entry.
type Stat struct {
	Name       string
	Size       int // original bytes
	Packed     int // container bytes
	Codewords  int
	TailLength int
}

type options struct {
	fs    vfs.FS
	cache *decodercache.Cache
}

type Option func(*options)

// WithFS puts the database on another file system, such as [vfs.NewMem].
func WithFS(fs vfs.FS) Option { return func(o *options) { o.fs = fs } }

// WithCache shares a decoder cache between stores.
func WithCache(c *decodercache.Cache) Option { return func(o *options) { o.cache = c } }

func Open(dir string, opts ...Option) (*Store, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cache == nil {
		o.cache = decodercache.New(64)
	}
	popts := &pebble.Options{}
	if o.fs != nil {
		popts.FS = o.fs
	}
	db, err := pebble.Open(dir, popts)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}
	return &Store{db: db, cache: o.cache}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Put compresses data and stores it under name, replacing any earlier entry.
func (s *Store) Put(name string, data []byte) (Stat, error) {
	payload, table, err := huffman.Encode(data)
	if err != nil {
		return Stat{}, err
	}
	blob, err := container.Marshal(payload, table)
	if err != nil {
		return Stat{}, err
	}
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(key(name), blob, nil); err != nil {
		return Stat{}, err
	}
	if err := b.Set(sizeKey(name), binary.AppendUvarint(nil, uint64(len(data))), nil); err != nil {
		return Stat{}, err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return Stat{}, fmt.Errorf("put %s: %w", name, err)
	}
	slog.Debug("storePut", "name", name, "size", len(data), "packed", len(blob))
	return Stat{
		Name:       name,
		Size:       len(data),
		Packed:     len(blob),
		Codewords:  len(table.Codes),
		TailLength: len(table.Tail),
	}, nil
}

// Get returns the original bytes stored under name.
func (s *Store) Get(name string) ([]byte, error) {
	payload, table, err := s.load(name)
	if err != nil {
		return nil, err
	}
	return s.decode(name, payload, table)
}

func (s *Store) decode(name string, payload []byte, table *huffman.CodeTable) ([]byte, error) {
	dec, err := s.cache.Decoder(table)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	bits, err := huffman.Unpack(payload, table)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	data, err := dec.Decode(bits)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return data, nil
}

// Raw returns the container bytes stored under name.
func (s *Store) Raw(name string) ([]byte, error) {
	v, closer, err := s.db.Get(key(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	} else if err != nil {
		return nil, err
	}
	defer closer.Close()
	return bytes.Clone(v), nil
}

// Stat describes an entry without decoding it.
// Only entries missing their recorded size are decoded.
func (s *Store) Stat(name string) (Stat, error) {
	raw, err := s.Raw(name)
	if err != nil {
		return Stat{}, err
	}
	payload, table, err := container.Unmarshal(raw)
	if err != nil {
		return Stat{}, fmt.Errorf("stat %s: %w", name, err)
	}
	size, ok, err := s.size(name)
	if err != nil {
		return Stat{}, err
	}
	if !ok {
		slog.Debug("storeStatDecode", "name", name)
		data, err := s.decode(name, payload, table)
		if err != nil {
			return Stat{}, err
		}
		size = len(data)
	}
	return Stat{
		Name:       name,
		Size:       size,
		Packed:     len(raw),
		Codewords:  len(table.Codes),
		TailLength: len(table.Tail),
	}, nil
}

func (s *Store) size(name string) (int, bool, error) {
	v, closer, err := s.db.Get(sizeKey(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	defer closer.Close()
	n, k := binary.Uvarint(v)
	if k <= 0 {
		return 0, false, nil
	}
	return int(n), true, nil
}

func (s *Store) load(name string) ([]byte, *huffman.CodeTable, error) {
	raw, err := s.Raw(name)
	if err != nil {
		return nil, nil, err
	}
	payload, table, err := container.Unmarshal(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", name, err)
	}
	return payload, table, nil
}

// List returns the names beginning with prefix, in ascending order.
func (s *Store) List(prefix string) ([]string, error) {
	lower := key(prefix)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upperBound(lower),
	})
	if err != nil {
		return nil, err
	}
	var names []string
	for iter.First(); iter.Valid(); iter.Next() {
		names = append(names, string(iter.Key()[len(keyPrefix):]))
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return names, nil
}

func (s *Store) Delete(name string) error {
	if _, err := s.Raw(name); err != nil {
		return err
	}
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Delete(key(name), nil); err != nil {
		return err
	}
	if err := b.Delete(sizeKey(name), nil); err != nil {
		return err
	}
	return b.Commit(pebble.Sync)
}

func key(name string) []byte {
	return append([]byte(keyPrefix), name...)
}

func sizeKey(name string) []byte {
	return append([]byte(sizePrefix), name...)
}

// upperBound is the smallest key greater than every key beginning with prefix.
func upperBound(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
