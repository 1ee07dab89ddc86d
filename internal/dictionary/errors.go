package dictionary

import (
	"errors"
	"fmt"
)

// Cache errors. Callers treat both as "no usable cache".
var (
	ErrNotFound     = errors.New("dictionary cache not found")
	ErrCorruptCache = errors.New("dictionary cache is corrupt")
)

// NetworkError indicates the remote source could not be read.
type NetworkError struct {
	Source     string
	StatusCode int
	Cause      error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Cause != nil:
		return fmt.Sprintf("network error: %s returned status %d: %v", e.Source, e.StatusCode, e.Cause)
	case e.StatusCode != 0:
		return fmt.Sprintf("network error: %s returned status %d", e.Source, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("network error: %s: %v", e.Source, e.Cause)
	}
	return fmt.Sprintf("network error: %s", e.Source)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// FormatError indicates the remote payload is structurally unparsable.
type FormatError struct {
	Message string
	Cause   error
}

func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("format error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("format error: %s", e.Message)
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}

// UnavailableError means no dataset could be obtained from either the cache or the remote.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("dictionary unavailable: no local cache and the remote could not be fetched: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}
