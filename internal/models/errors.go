package models

import (
	"fmt"
	"strings"
)

// ValidationError reports a submission that is missing or has a malformed
// required field. It is always raised before any network call.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid submission: %s", e.Reason)
	}
	return fmt.Sprintf("invalid submission: missing %s", strings.Join(e.Fields, ", "))
}

// UploadError reports a failed blob transfer. No metadata was written.
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q failed: %v", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// WriteError reports a failed metadata write. The blob named by FileURL was
// already stored and is now unreferenced.
type WriteError struct {
	FileURL string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write achievement record: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError reports a failed listing fetch.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to list achievements: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
