package database

import (
	"errors"

	"github.com/lib/pq"
)

// invalidTextRepresentation is raised when a value cannot be cast to the
// column type, such as a malformed uuid.
const invalidTextRepresentation = "22P02"

// IsInvalidTextRepresentation reports whether err is a postgres cast failure.
func IsInvalidTextRepresentation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}
