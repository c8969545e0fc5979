package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSeedMode is returned for mutations while the seed document is displayed.
	ErrSeedMode = errors.New("catalog is showing read-only seed data")
	// ErrNothingToUpload is returned by push when the local catalog is empty.
	ErrNothingToUpload = errors.New("nothing to upload")
	// ErrStaleRemote is returned when a remote overwrite lost the race against a local change.
	ErrStaleRemote = errors.New("local catalog changed while remote data was in flight")
	// ErrRemoteDisabled is returned when no remote endpoint is configured.
	ErrRemoteDisabled = errors.New("remote store is not configured")
	// ErrPushRejected is returned when the remote answered success=false.
	ErrPushRejected = errors.New("remote rejected the upload")
)

// ShapeError reports a document whose navList/operateLog are not arrays.
type ShapeError struct {
	Source string // local, seed, remote, import
	Field  string // navList, operateLog, or empty for the whole document
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid %s document: %s", e.Source, e.Reason)
}

// NetworkError reports a failed remote call.
type NetworkError struct {
	Op     string // fetch, push
	Status int    // 0 when no response was received
	Msg    string
	Err    error
}

func (e *NetworkError) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("remote %s failed (status %d): %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("remote %s failed: %s", e.Op, msg)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError reports a missing or invalid field at mutation time.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// LookupError reports an edit/delete/move target that does not exist.
type LookupError struct {
	ID    string
	Index int
}

func (e *LookupError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("icon not found: id=%q index=%d", e.ID, e.Index)
	}
	return fmt.Sprintf("icon not found: id=%q", e.ID)
}

// StorageError reports a failed write to the local slot.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("local storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// FormatError reports an import file that is not a catalog document.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "unsupported file format: " + e.Reason
}
