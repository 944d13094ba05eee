package service

import (
	"errors"

	"github.com/sakif/violets/internal/apperror"
)

// isNotFound is true for errors that should propagate untouched: a missing
// record is a normal outcome, not something to log.
func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
