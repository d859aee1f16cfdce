package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrSlugTaken     = errors.New("slug already in use")
	ErrDatabaseQuery = errors.New("database query failed")
)

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewSlugConflict signals that a slug is already held by a different project.
// Checked before any storage mutation, so a conflicting request leaves both
// the bucket and the database untouched.
func NewSlugConflict(slug string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrSlugTaken,
		Details:    fmt.Sprintf("slug '%s' belongs to another project", slug),
		Field:      "slug",
	}
}

// NewDatabaseError creates a new database error with details about the operation
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	if cause != nil {
		if errors.Is(cause, ErrNotFound) {
			return &ApiErr{
				StatusCode: http.StatusNotFound,
				err:        fmt.Errorf("%s %w", entity, ErrNotFound),
				Cause:      cause,
			}
		}
		if errors.Is(cause, ErrSlugTaken) {
			return &ApiErr{
				StatusCode: http.StatusConflict,
				err:        ErrSlugTaken,
				Details:    fmt.Sprintf("Failed to %s %s", operation, entity),
				Cause:      cause,
			}
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    fmt.Sprintf("Failed to %s %s", operation, entity),
		Cause:      cause,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsSlugTaken(err error) bool {
	return errors.Is(err, ErrSlugTaken)
}
