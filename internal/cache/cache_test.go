package cache

import (
	"path/filepath"
	"testing"

	"github.com/cwbudde/pywalk/pkg/diagnostic"
)

func TestHashIsStableAndContentSensitive(t *testing.T) {
	a, err := Hash([]byte("import os\n"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := Hash([]byte("import os\n"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a != b {
		t.Fatalf("Hash must be deterministic for identical content: %q != %q", a, b)
	}

	c, err := Hash([]byte("import sys\n"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == c {
		t.Fatalf("Hash should differ for different content")
	}
}

func TestStoreThenLookupRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagnostics.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	want := diagnostic.Vector{
		{Code: diagnostic.CodeQuotedAnnotation, Message: "quoted annotation under `from __future__ import annotations`"},
	}
	if err := c.Store("hash-1", "settings-1", want); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, ok, err := c.Lookup("hash-1", "settings-1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatalf("expected a cache hit for the stored row")
	}
	if len(got) != 1 || got[0].Code != want[0].Code {
		t.Fatalf("Lookup returned %+v, want %+v", got, want)
	}
}

func TestLookupMissesOnUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagnostics.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	_, ok, err := c.Lookup("nope", "nope")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Fatalf("expected a cache miss for an unknown key")
	}
}

func TestStoreUpsertsOnRepeatedContentHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagnostics.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	first := diagnostic.Vector{{Code: "bare-except"}}
	second := diagnostic.Vector{{Code: "unused-import"}, {Code: "bare-except"}}

	if err := c.Store("hash-1", "settings-1", first); err != nil {
		t.Fatalf("Store (first): %v", err)
	}
	if err := c.Store("hash-1", "settings-2", second); err != nil {
		t.Fatalf("Store (second): %v", err)
	}

	got, ok, err := c.Lookup("hash-1", "settings-2")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || len(got) != 2 {
		t.Fatalf("Store should upsert the row on a repeated content hash, got %+v", got)
	}
}
