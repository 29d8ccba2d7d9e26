package errs

import (
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return cr.Wrapf(err, format, args...)
}

func New(msg string) error {
	return cr.New(msg)
}

func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}

// Is also matches marks attached with Mark, which errors.Is does not see.
// Sentinels built by the category helpers carry their category's mark, so
// compare those with errors.Is and use Is for categories.
func Is(err, target error) bool {
	return cr.Is(err, target)
}

// WithCause keeps sentinel in the chain and attaches cause as secondary detail
// that shows up in verbose formatting.
func WithCause(sentinel, cause error) error {
	if cause == nil {
		return cr.WithStack(sentinel)
	}
	return cr.WithSecondaryError(cr.WithStack(sentinel), cause)
}

func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
