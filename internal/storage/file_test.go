package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, ok, err := store.Get("zapateria-cart-items"); ok || err != nil {
		t.Fatalf("missing key must read as absent, ok=%v err=%v", ok, err)
	}

	if err := store.Set("zapateria-cart-items", []byte(`[{"key":"p1::_::_"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	raw, ok, err := store.Get("zapateria-cart-items")
	if err != nil || !ok {
		t.Fatalf("Get after Set: ok=%v err=%v", ok, err)
	}
	if string(raw) != `[{"key":"p1::_::_"}]` {
		t.Fatalf("unexpected value %s", raw)
	}

	if err := store.Set("zapateria-cart-items", []byte("[]")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	raw, _, _ = store.Get("zapateria-cart-items")
	if string(raw) != "[]" {
		t.Fatalf("overwrite not applied: %s", raw)
	}
}

func TestFileStoreDelete(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := store.Delete("absent"); err != nil {
		t.Fatalf("deleting an absent key must be a no-op, got %v", err)
	}

	if err := store.Set("zapateria_active_user", []byte(`{"id":"u1"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Delete("zapateria_active_user"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get("zapateria_active_user"); ok {
		t.Fatalf("key still readable after delete")
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := store.Set("zapateria_presets_u1", []byte("[]")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	raw, ok, err := reopened.Get("zapateria_presets_u1")
	if err != nil || !ok || string(raw) != "[]" {
		t.Fatalf("value lost across reopen: ok=%v err=%v raw=%s", ok, err, raw)
	}
}

func TestFileStoreConfinesKeysToDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := store.Set("../escape/attempt", []byte("x")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one file inside the store dir, got %d", len(entries))
	}
	if strings.Contains(entries[0].Name(), "/") {
		t.Fatalf("separator survived sanitization: %q", entries[0].Name())
	}
	if _, err := os.Stat(filepath.Join(dir, "..", "escape")); !os.IsNotExist(err) {
		t.Fatalf("key escaped the store directory")
	}

	raw, ok, err := store.Get("../escape/attempt")
	if err != nil || !ok || string(raw) != "x" {
		t.Fatalf("sanitized key must still round-trip: ok=%v err=%v raw=%s", ok, err, raw)
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := store.Set("zapateria-cart-items", []byte("[]")); err != nil {
			t.Fatalf("Set %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}
