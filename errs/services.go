package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Blob store & LLM errors
var (
	ErrStoreUnavailable = errors.New("object store unavailable")
	ErrBlobNotFound     = errors.New("blob not found")
	ErrBlobExists       = errors.New("blob already exists")
	ErrLLMUnavailable   = errors.New("language model unavailable")
)

// NewStoreUnavailableError wraps a transport or auth failure from the object
// store. Surfaced before the final database write, so the record never points
// at blobs that were never written.
func NewStoreUnavailableError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStoreUnavailable,
		Details:    fmt.Sprintf("object store failed during %s", operation),
		Cause:      cause,
	}
}

func NewBlobNotFoundError(path string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        ErrBlobNotFound,
		Details:    fmt.Sprintf("no object at '%s'", path),
	}
}

func NewBlobExistsError(path string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrBlobExists,
		Details:    fmt.Sprintf("object already exists at '%s'", path),
	}
}

func NewLLMUnavailableError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrLLMUnavailable,
		Details:    "chat completion failed",
		Cause:      cause,
	}
}

func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

func IsBlobNotFound(err error) bool {
	return errors.Is(err, ErrBlobNotFound)
}

func IsBlobExists(err error) bool {
	return errors.Is(err, ErrBlobExists)
}

func IsLLMUnavailable(err error) bool {
	return errors.Is(err, ErrLLMUnavailable)
}
