package discovery

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned when a framework has no registered discoverer.
var ErrUnsupported = errors.New("no discoverer registered")

// DiscoveryError reports the failure of one ecosystem's discoverer.
// Framework tags the ecosystem; Err is that ecosystem's own error, usually
// one of [FileError], [ParseError], [LookupError] or [CommandError].
type DiscoveryError struct {
	Framework Framework
	Err       error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("%s discovery failed: %v", e.Framework, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// FileError reports an I/O failure reading a project file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// ParseError reports a malformed manifest or lockfile.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LookupError reports a failed registry request. A package that simply does
// not exist in the registry is not an error; discoverers skip it.
type LookupError struct {
	Registry string
	Package  string
	Err      error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("look up %s on %s: %v", e.Package, e.Registry, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// CommandError reports a failed external tool invocation (cargo metadata).
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("run %s: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("run %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
