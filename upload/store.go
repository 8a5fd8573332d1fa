// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

var ErrNotFound = errors.New("file not found")

// Store persists uploaded files under their content-addressed names.
// Saving the same name twice must be safe: the bytes are identical.
type Store interface {
	Save(ctx context.Context, name string, data []byte) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// FSStore keeps files in a directory of an afero filesystem.
type FSStore struct {
	fs  afero.Fs
	dir string
}

// NewFSStore creates dir if needed and returns a store rooted there.
func NewFSStore(fsys afero.Fs, dir string) (*FSStore, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &FSStore{fs: fsys, dir: dir}, nil
}

// Save writes to a temporary file and renames it into place so readers
// never see a partially written file.
func (s *FSStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := afero.TempFile(s.fs, s.dir, name+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err := s.fs.Rename(tmpName, path.Join(s.dir, name)); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}

	slog.Debug("file saved", "name", name, "size", humanize.Bytes(uint64(len(data))))
	return nil
}

func (s *FSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := s.fs.Open(path.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}
