package ingest

import (
	"errors"
	"fmt"
	"io/fs"
)

// MissingSourceError reports a source that could not be opened or read.
// IngestFiles skips such sources and continues with the rest.
type MissingSourceError struct {
	Path string
	Err  error
}

func (e *MissingSourceError) Error() string {
	if errors.Is(e.Err, fs.ErrNotExist) {
		return fmt.Sprintf("%s: file not found", e.Path)
	}
	return fmt.Sprintf("%s: cannot read: %v", e.Path, e.Err)
}

func (e *MissingSourceError) Unwrap() error {
	return e.Err
}

// ReadError wraps a failure reading from the token source, as opposed to a
// failure from the sink.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read tokens: %v", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
