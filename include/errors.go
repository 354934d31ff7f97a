package include

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedInclude is wrapped by every IncludeError.
	ErrUnresolvedInclude = errors.New("include: can not resolve the file")
	// ErrEntryNotFound is returned when the entry file itself does not exist.
	ErrEntryNotFound = errors.New("include: entry file not found")
)

// IncludeError reports a directive whose target does not resolve to a regular file.
type IncludeError struct {
	Directive  string
	File       string
	IncludedBy string
}

func (e *IncludeError) Error() string {
	msg := fmt.Sprintf("[%s] Can not resolve the file: %s", e.Directive, e.File)
	if e.IncludedBy != "" {
		msg += fmt.Sprintf(" (included by: %s)", e.IncludedBy)
	}
	return msg
}

func (e *IncludeError) Unwrap() error {
	return ErrUnresolvedInclude
}
