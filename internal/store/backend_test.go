package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"devops-topics/internal/model"

	"github.com/google/go-cmp/cmp"
)

func TestSQLiteBackend_GetSet(t *testing.T) {
	t.Parallel()

	b := NewSQLiteBackend(filepath.Join(t.TempDir(), "data"))
	t.Cleanup(func() { _ = b.Close() })
	if !b.Available() {
		t.Fatalf("expected available")
	}
	if _, err := b.Get(StorageKey); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Get on empty db: err = %v, want ErrKeyNotFound", err)
	}
	if err := b.Set(StorageKey, "[]"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := b.Set(StorageKey, `[{"id":"a"}]`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := b.Get(StorageKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != `[{"id":"a"}]` {
		t.Fatalf("Get = %q", got)
	}
	if _, err := os.Stat(b.Path()); err != nil {
		t.Fatalf("expected sqlite file: %v", err)
	}
}

func TestSQLiteBackend_StoreRoundTrip(t *testing.T) {
	t.Parallel()

	b := NewSQLiteBackend(t.TempDir())
	s := New(b, WithIDGenerator(counterIDs()))
	s.AddSubtopic("8", "Modules")
	s.ToggleComplete("8-t1")
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reloaded := New(NewSQLiteBackend(b.Dir))
	t.Cleanup(func() { _ = reloaded.Close() })
	if diff := cmp.Diff(s.Snapshot(), reloaded.Snapshot()); diff != "" {
		t.Fatalf("reload differs (-want +got):\n%s", diff)
	}
}

func TestSQLiteBackend_OpensOnceUntilClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := NewSQLiteBackend(t.TempDir())

	first, err := b.conn(ctx)
	if err != nil {
		t.Fatalf("conn: %v", err)
	}
	if err := b.Set(StorageKey, "[]"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := b.Get(StorageKey); err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := b.conn(ctx)
	if err != nil {
		t.Fatalf("conn: %v", err)
	}
	if first != second {
		t.Fatalf("expected one shared handle across calls")
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := b.Get(StorageKey); err == nil {
		t.Fatalf("expected Get after Close to fail")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestFileBackend_GetSet(t *testing.T) {
	t.Parallel()

	b := FileBackend{Path: filepath.Join(t.TempDir(), "nested", "topics.json")}
	if _, err := b.Get(StorageKey); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Get on missing file: err = %v", err)
	}
	if err := b.Set("other", "x"); err != nil {
		t.Fatalf("Set other: %v", err)
	}
	if err := b.Set(StorageKey, "[]"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := b.Get(StorageKey)
	if err != nil || got != "[]" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	other, err := b.Get("other")
	if err != nil || other != "x" {
		t.Fatalf("other key lost: %q, %v", other, err)
	}
}

func TestFileBackend_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "topics.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	b := FileBackend{Path: path}

	// Reads fail, so the store falls back to defaults.
	if _, err := b.Get(StorageKey); err == nil {
		t.Fatalf("expected parse error")
	}
	s := New(b)
	if diff := cmp.Diff(model.DefaultTopics(), s.Snapshot()); diff != "" {
		t.Fatalf("expected defaults (-want +got):\n%s", diff)
	}

	// Writes replace the unreadable file.
	s.ToggleComplete("1")
	reloaded := New(b)
	if got, _ := reloaded.Find("1"); !got.Completed {
		t.Fatalf("expected write to recover corrupt file")
	}
}

func TestFileBackend_ConcurrentWriters(t *testing.T) {
	t.Parallel()

	b := FileBackend{Path: filepath.Join(t.TempDir(), "topics.json")}

	const n = 32
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := b.Set(fmt.Sprintf("k%d", i), fmt.Sprintf("v%d", i)); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent Set: %v", err)
	}

	for i := 0; i < n; i++ {
		got, err := b.Get(fmt.Sprintf("k%d", i))
		if err != nil || got != fmt.Sprintf("v%d", i) {
			t.Fatalf("k%d = %q, %v", i, got, err)
		}
	}
}

func TestMemoryBackend_ZeroValue(t *testing.T) {
	t.Parallel()

	var b MemoryBackend
	if _, err := b.Get("k"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("err = %v", err)
	}
	if err := b.Set("k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := b.Get("k"); v != "v" || b.Writes() != 1 {
		t.Fatalf("v=%q writes=%d", v, b.Writes())
	}
}
