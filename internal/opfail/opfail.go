// Package opfail wraps a sentinel error with an operation name and, where
// relevant, a file path. keystore uses it so that its I/O and
// malformed-key-file errors name the operation and the key file involved;
// the CLI driver wraps its own file errors with fmt.Errorf instead.
package opfail

import "fmt"

// Error wraps an underlying error with the operation and path that failed.
type Error struct {
	Op   string // Operation that failed, e.g. "keystore.Load"
	Path string // File or directory path involved, if any
	Err  error  // Underlying sentinel error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("rsafile.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("rsafile.%s: %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap builds an *Error for op acting on path, reporting err.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Path: path, Err: err}
}
