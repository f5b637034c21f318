package ffs

import (
	"github.com/jmgilman/go/errors"
)

// Error codes for tree, path and store failures. The generic platform codes are
// reused where they already say the right thing.
const (
	CodeNotFound          = errors.CodeNotFound
	CodeDuplicateName     = errors.CodeAlreadyExists
	CodeMalformedPath     = errors.CodeInvalidInput
	CodeNotAFile          errors.ErrorCode = "NOT_A_FILE"
	CodeNotADirectory     errors.ErrorCode = "NOT_A_DIRECTORY"
	CodeDirectoryNotEmpty errors.ErrorCode = "DIRECTORY_NOT_EMPTY"
	CodeIOFailure         errors.ErrorCode = "IO_FAILURE"
)

// ErrNotFound reports a missing path segment
func ErrNotFound(path string) error {
	return errors.Newf(CodeNotFound, "no such file or directory: %s", path)
}

// ErrDuplicateName reports a create that collides with an existing node
func ErrDuplicateName(path string) error {
	return errors.Newf(CodeDuplicateName, "already exists: %s", path)
}

// ErrNotAFile reports a file operation aimed at a directory
func ErrNotAFile(path string) error {
	return errors.Newf(CodeNotAFile, "not a file: %s", path)
}

// ErrNotADirectory reports a directory operation aimed at a file
func ErrNotADirectory(path string) error {
	return errors.Newf(CodeNotADirectory, "not a directory: %s", path)
}

// ErrDirectoryNotEmpty reports a non-recursive delete of a populated directory
func ErrDirectoryNotEmpty(path string) error {
	return errors.Newf(CodeDirectoryNotEmpty, "directory not empty: %s", path)
}

// ErrMalformedPath reports empty or separator-only input where a name is required
func ErrMalformedPath(input, reason string) error {
	return errors.Newf(CodeMalformedPath, "malformed path %q: %s", input, reason)
}

// WrapIO wraps a flat store failure
func WrapIO(err error, op, name string) error {
	return errors.Wrapf(err, CodeIOFailure, "%s %s", op, name)
}

func IsNotFound(err error) bool          { return errors.GetCode(err) == CodeNotFound }
func IsDuplicateName(err error) bool     { return errors.GetCode(err) == CodeDuplicateName }
func IsMalformedPath(err error) bool     { return errors.GetCode(err) == CodeMalformedPath }
func IsNotAFile(err error) bool          { return errors.GetCode(err) == CodeNotAFile }
func IsNotADirectory(err error) bool     { return errors.GetCode(err) == CodeNotADirectory }
func IsDirectoryNotEmpty(err error) bool { return errors.GetCode(err) == CodeDirectoryNotEmpty }
func IsIOFailure(err error) bool         { return errors.GetCode(err) == CodeIOFailure }

// Describe renders err as the one-line message shown to the shell user.
// Platform errors drop their "[CODE]" prefix; I/O failures keep their cause.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var perr errors.PlatformError
	if !errors.As(err, &perr) {
		return err.Error()
	}
	if perr.Code() == CodeIOFailure && perr.Unwrap() != nil {
		return perr.Message() + ": " + perr.Unwrap().Error()
	}
	return perr.Message()
}
