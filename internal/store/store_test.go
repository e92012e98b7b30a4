// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package store

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/cockroachdb/pebble/v2"
	"github.com/cockroachdb/pebble/v2/vfs"
	"github.com/elliotnunn/huffpack/internal/container"
	"github.com/elliotnunn/huffpack/internal/decodercache"
	"github.com/elliotnunn/huffpack/internal/huffman"
)

func openMem(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open("", append([]Option{WithFS(vfs.NewMem())}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openMem(t)
	entries := map[string][]byte{
		"empty":       {},
		"single":      bytes.Repeat([]byte{'q'}, 17),
		"docs/readme": []byte(strings.Repeat("huffman codes are prefix-free. ", 30)),
	}
	for name, data := range entries {
		st, err := s.Put(name, data)
		if err != nil {
			t.Fatalf("put %s: %v", name, err)
		}
		if st.Size != len(data) {
			t.Errorf("put %s: wanted size %d, got %d", name, len(data), st.Size)
		}
	}
	for name, want := range entries {
		got, err := s.Get(name)
		if err != nil {
			t.Fatalf("get %s: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("get %s: wanted %d bytes, got %d", name, len(want), len(got))
		}
	}
}

func TestStat(t *testing.T) {
	s := openMem(t)
	data := []byte(strings.Repeat("abcabcaab", 100))
	put, err := s.Put("x", data)
	if err != nil {
		t.Fatal(err)
	}
	st, err := s.Stat("x")
	if err != nil {
		t.Fatal(err)
	}
	if st != put {
		t.Errorf("stat %+v disagrees with put %+v", st, put)
	}
	if st.Packed >= st.Size {
		t.Errorf("three symbols should compress: %d packed from %d", st.Packed, st.Size)
	}
}

func TestStatWithoutDecoding(t *testing.T) {
	c := decodercache.New(4)
	s := openMem(t, WithCache(c))
	data := []byte(strings.Repeat("no need to decode for a size. ", 40))
	if _, err := s.Put("sized", data); err != nil {
		t.Fatal(err)
	}
	st, err := s.Stat("sized")
	if err != nil {
		t.Fatal(err)
	}
	if st.Size != len(data) {
		t.Errorf("wanted size %d, got %d", len(data), st.Size)
	}
	if hits, misses := c.Stats(); hits+misses != 0 {
		t.Errorf("stat should not build a decoder, saw %d lookups", hits+misses)
	}

	// an entry without its recorded size still reports one
	if err := s.db.Delete(sizeKey("sized"), pebble.Sync); err != nil {
		t.Fatal(err)
	}
	st, err = s.Stat("sized")
	if err != nil || st.Size != len(data) {
		t.Errorf("wanted size %d from decoding, got %d, %v", len(data), st.Size, err)
	}
}

func TestRawIsContainer(t *testing.T) {
	s := openMem(t)
	if _, err := s.Put("f", []byte("raw export")); err != nil {
		t.Fatal(err)
	}
	raw, err := s.Raw("f")
	if err != nil {
		t.Fatal(err)
	}
	payload, table, err := container.Unmarshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	got, err := huffman.Decode(payload, table)
	if err != nil || string(got) != "raw export" {
		t.Errorf("raw value did not decode: %q %v", got, err)
	}
}

func TestListDelete(t *testing.T) {
	s := openMem(t)
	for _, name := range []string{"a/1", "a/2", "b/1", "a\xff"} {
		if _, err := s.Put(name, []byte(name)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.List("a/")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"a/1", "a/2"}) {
		t.Errorf("list a/: got %q", got)
	}
	all, err := s.List("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("list all: got %q", all)
	}

	if err := s.Delete("a/1"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.size("a/1"); ok {
		t.Error("delete left the recorded size behind")
	}
	if _, err := s.Get("a/1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected %v after delete, got %v", ErrNotFound, err)
	}
	if err := s.Delete("a/1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected %v deleting twice, got %v", ErrNotFound, err)
	}
}

func TestSharedCache(t *testing.T) {
	c := decodercache.New(16)
	s := openMem(t, WithCache(c))
	data := []byte("the same text twice")
	s.Put("one", data)
	s.Put("two", data)
	s.Get("one")
	s.Get("two")
	if hits, _ := c.Stats(); hits != 1 {
		t.Errorf("second get of identical codewords should hit the cache, got %d hits", hits)
	}
}

func TestUpperBound(t *testing.T) {
	cases := map[string]string{
		"a":        "b",
		"a\xff":    "b",
		"\xff\xff": "",
	}
	for in, want := range cases {
		if got := string(upperBound([]byte(in))); got != want {
			t.Errorf("upperBound(%q): wanted %q, got %q", in, want, got)
		}
	}
}
