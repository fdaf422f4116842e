package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const defaultLockTimeout = 3 * time.Second

// FileBackend stores key-value pairs as a single JSON object in Path.
// Access is serialised across processes with a <Path>.lock file.
type FileBackend struct {
	Path        string
	LockTimeout time.Duration
}

func (b FileBackend) Available() bool { return strings.TrimSpace(b.Path) != "" }

func (b FileBackend) Get(key string) (string, error) {
	if !b.Available() {
		return "", errors.New("file backend: missing path")
	}
	unlock, err := b.lock(true)
	if err != nil {
		return "", err
	}
	defer unlock()

	values, err := b.readLocked()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (b FileBackend) Set(key, value string) error {
	if !b.Available() {
		return errors.New("file backend: missing path")
	}
	unlock, err := b.lock(false)
	if err != nil {
		return err
	}
	defer unlock()

	values, err := b.readLocked()
	if err != nil {
		// An unreadable file would otherwise block every future write.
		values = map[string]string{}
	}
	values[key] = value

	out, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(b.Path)
	return atomicWriteFile(dir, filepath.Base(b.Path)+".*.tmp", b.Path, out, 0o600)
}

func (b FileBackend) lock(shared bool) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(b.Path), 0o755); err != nil {
		return nil, err
	}
	timeout := b.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fl := flock.New(b.Path + ".lock")
	var locked bool
	var err error
	if shared {
		locked, err = fl.TryRLockContext(ctx, 25*time.Millisecond)
	} else {
		locked, err = fl.TryLockContext(ctx, 25*time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, errors.New("could not acquire file lock")
	}
	return func() { _ = fl.Unlock() }, nil
}

func (b FileBackend) readLocked() (map[string]string, error) {
	data, err := os.ReadFile(b.Path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return values, nil
}
