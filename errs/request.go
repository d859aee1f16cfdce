package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	Unauthorized = NewApiErr(http.StatusUnauthorized, "unauthorized")
)

// Request & Input-Validation Errors
var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidTags      = errors.New("invalid tags")
	ErrInvalidTitle     = errors.New("invalid title")
)

func Malformed(payloadName string) *ApiErr {
	return NewApiErr(http.StatusBadRequest, payloadName+" malformed")
}

func BadRequest(message string) *ApiErr {
	return NewApiErr(http.StatusBadRequest, message)
}

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMalformedPayload,
		Details:    fmt.Sprintf("Malformed %s payload", payloadType),
		Cause:      cause,
		Field:      "payload",
	}
}

func NewMissingRequiredFieldError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        fmt.Errorf("missing required field: %s", fieldName),
		Field:      fieldName,
	}
}

// NewInvalidCategoryError rejects a category outside the closed set.
func NewInvalidCategoryError(category string, allowed []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidCategory,
		Details:    fmt.Sprintf("category '%s' is not one of %v", category, allowed),
		Field:      "category",
	}
}

func NewInvalidTagsError(reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidTags,
		Details:    reason,
		Field:      "tags",
	}
}

// NewInvalidTitleError rejects a title whose derived slug would be empty.
func NewInvalidTitleError(title string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidTitle,
		Details:    fmt.Sprintf("title '%s' does not produce a usable slug", title),
		Field:      "title",
	}
}

func IsInvalidCategory(err error) bool {
	return errors.Is(err, ErrInvalidCategory)
}

func IsInvalidTags(err error) bool {
	return errors.Is(err, ErrInvalidTags)
}

func IsInvalidTitle(err error) bool {
	return errors.Is(err, ErrInvalidTitle)
}
