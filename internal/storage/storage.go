package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pfrederiksen/event-discovery/internal/event"
)

// Store loads and persists the full record set
type Store interface {
	Load() ([]event.Record, error)
	Save(records []event.Record) error
}

// TableStore handles persistence of the record table in a single file
type TableStore struct {
	path  string
	codec codec
	lock  *flock.Flock
}

// Open creates a TableStore for path, creating its directory if needed.
// The format is chosen by extension (.xlsx or .csv).
func Open(path string) (*TableStore, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &TableStore{
		path:  path,
		codec: c,
		lock:  flock.New(path + ".lock"),
	}, nil
}

// Path returns the resolved store file path
func (s *TableStore) Path() string {
	return s.path
}

// Load reads the table from disk. A missing file is an empty store.
func (s *TableStore) Load() ([]event.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// First run
			return []event.Record{}, nil
		}
		return nil, &CorruptError{Path: s.path, Err: fmt.Errorf("reading file: %w", err)}
	}

	rows, err := s.codec.decode(bytes.NewReader(data))
	if err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}

	records, err := fromRows(rows)
	if err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}

	return records, nil
}

// Save replaces the table on disk with records.
// The new contents are written to a temp file in the same directory, synced,
// then renamed over the old file so readers never observe a partial table.
func (s *TableStore) Save(records []event.Record) (err error) {
	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return &WriteError{Path: s.path, Err: fmt.Errorf("creating temp file: %w", err)}
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()       // nolint:errcheck
			os.Remove(tmpPath) // nolint:errcheck
		}
	}()

	if err = s.codec.encode(tmp, toRows(records)); err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &WriteError{Path: s.path, Err: fmt.Errorf("syncing temp file: %w", err)}
	}
	if err = tmp.Close(); err != nil {
		return &WriteError{Path: s.path, Err: fmt.Errorf("closing temp file: %w", err)}
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return &WriteError{Path: s.path, Err: fmt.Errorf("setting permissions: %w", err)}
	}
	if err = os.Rename(tmpPath, s.path); err != nil {
		return &WriteError{Path: s.path, Err: fmt.Errorf("replacing store: %w", err)}
	}

	return nil
}

// Lock takes the exclusive writer lock for the store without blocking.
// Returns ErrLocked if another process holds it.
func (s *TableStore) Lock() (func(), error) {
	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking store: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", s.lock.Path(), ErrLocked)
	}
	return func() {
		s.lock.Unlock() // nolint:errcheck
	}, nil
}
