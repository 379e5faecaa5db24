package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStorePut(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir)

	err := s.Put(context.Background(), "families/00.json", strings.NewReader(`{"families":{}}`), 15)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "families", "00.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"families":{}}` {
		t.Errorf("content = %s", data)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Join(dir, "families"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestLocalStorePutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewLocalStore(t.TempDir())
	if err := s.Put(ctx, "doc.json", strings.NewReader("{}"), 2); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Put(context.Background(), "a.json", strings.NewReader("1"), 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(context.Background(), "b.json", strings.NewReader("2"), 1); err != nil {
		t.Fatal(err)
	}

	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	data, ok := s.Get("a.json")
	if !ok || string(data) != "1" {
		t.Errorf("Get(a.json) = %q, %v", data, ok)
	}
	if _, ok := s.Get("missing.json"); ok {
		t.Error("Get(missing.json) reported a blob")
	}
}
