package imagegen

import (
	"errors"
	"fmt"
)

// ErrEmptyResource reports a readable resource that produced no bytes.
var ErrEmptyResource = errors.New("resource produced no data")

// ReadError reports that a raw image resource could not be converted into an
// encoded part. It always occurs before any network activity.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read image resource: %v", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
