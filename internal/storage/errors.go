package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt matches any *CorruptError
	ErrCorrupt = errors.New("store file is corrupt")
	// ErrWrite matches any *WriteError
	ErrWrite = errors.New("store write failed")
	// ErrLocked is returned when another writer holds the store lock
	ErrLocked = errors.New("store is locked by another process")
)

// CorruptError reports a store file that exists but cannot be read as a valid table.
// The file is left untouched.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt store %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }

// WriteError reports a failed save. The previous file, if any, is still intact.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing store %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWrite }
