// SPDX-License-Identifier: GPL-2.0-or-later

// Package qerr holds the error kinds shared by the database and geometry
// packages. Callers match them with errors.Is.
package qerr

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

var (
	ErrFormat            = errors.New("format error")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrUnsupportedLayout = errors.New("unsupported layout")
	ErrIO                = errors.New("i/o error")
	// ErrFieldNotFound is a more specific ErrNotFound.
	ErrFieldNotFound error = &fieldNotFound{}
)

type fieldNotFound struct{}

func (*fieldNotFound) Error() string { return "field not found" }

func (*fieldNotFound) Is(target error) bool { return target == ErrNotFound }

func Format(format string, args ...any) error {
	return pkgerrors.Wrapf(ErrFormat, format, args...)
}

func NotFound(format string, args ...any) error {
	return pkgerrors.Wrapf(ErrNotFound, format, args...)
}

func FieldNotFound(path string) error {
	return pkgerrors.Wrap(ErrFieldNotFound, path)
}

func AlreadyExists(format string, args ...any) error {
	return pkgerrors.Wrapf(ErrAlreadyExists, format, args...)
}

func UnsupportedLayout(format string, args ...any) error {
	return pkgerrors.Wrapf(ErrUnsupportedLayout, format, args...)
}

// IOError is a failure of the underlying medium, kept apart from
// validation failures.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// IO wraps err as an IOError. Nil stays nil.
func IO(op string, err error) error {
	if err == nil {
		return nil
	}
	var ioe *IOError
	if errors.As(err, &ioe) {
		return err
	}
	return &IOError{Op: op, Err: err}
}
