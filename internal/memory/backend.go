package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrDocumentMissing signals that the backing document has never been
// initialized. Callers must treat this as fatal and run an explicit
// initialization step; the store never fabricates an empty memory.
var ErrDocumentMissing = errors.New("memory document does not exist")

// Backend is the durable key-value document abstraction the store persists
// through. Implementations read and write the whole document each call; no
// partial or streamed persistence.
type Backend interface {
	// Load returns the raw document. Returns an error wrapping
	// ErrDocumentMissing when it has never been created.
	Load(ctx context.Context) ([]byte, error)

	// Save durably replaces the document. Any failure must surface to the
	// caller; a silently lost write would corrupt the acceptance-rate
	// invariant.
	Save(ctx context.Context, data []byte) error

	// Exists reports whether the document has been created.
	Exists(ctx context.Context) (bool, error)
}

// FileBackend stores the document as a single JSON file with owner-only
// permissions. Writes go through a temp file and rename so a crash cannot
// leave a half-written document behind.
type FileBackend struct {
	path string
}

// NewFileBackend creates a file backend for the given path.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("file backend path cannot be empty")
	}
	return &FileBackend{path: path}, nil
}

// Path returns the backing file path.
func (b *FileBackend) Path() string {
	return b.path
}

// Load reads the whole document file.
func (b *FileBackend) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentMissing, b.path)
		}
		return nil, fmt.Errorf("failed to read memory document: %w", err)
	}
	return data, nil
}

// Save atomically replaces the document file.
func (b *FileBackend) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create memory directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".memory-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write memory document: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set document permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, b.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace memory document: %w", err)
	}
	return nil
}

// Exists reports whether the document file is present.
func (b *FileBackend) Exists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(b.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat memory document: %w", err)
}
