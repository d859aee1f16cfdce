package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApiErrUnwrapsToSentinels(t *testing.T) {
	assert.True(t, IsSlugTaken(NewSlugConflict("my-project")))
	assert.True(t, IsNotFound(NewNotFound("project")))
	assert.True(t, IsInvalidCategory(NewInvalidCategoryError("essay", []string{"other"})))
	assert.True(t, IsStoreUnavailable(NewStoreUnavailableError("upload", errors.New("dial tcp"))))
	assert.True(t, IsLLMUnavailable(NewLLMUnavailableError(errors.New("429"))))
}

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusConflict, NewSlugConflict("x").StatusCode)
	assert.Equal(t, http.StatusNotFound, NewNotFound("project").StatusCode)
	assert.Equal(t, http.StatusBadRequest, NewInvalidTagsError("empty").StatusCode)
	assert.Equal(t, http.StatusInternalServerError, NewStoreUnavailableError("copy", nil).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, Unauthorized.StatusCode)
}

func TestNewDatabaseErrorNarrowsRepoSentinels(t *testing.T) {
	notFound := NewDatabaseError("find", "project", ErrNotFound)
	assert.Equal(t, http.StatusNotFound, notFound.StatusCode)
	assert.True(t, IsNotFound(notFound))

	conflict := NewDatabaseError("update", "project", ErrSlugTaken)
	assert.Equal(t, http.StatusConflict, conflict.StatusCode)

	generic := NewDatabaseError("find", "project", errors.New("connection refused"))
	assert.Equal(t, http.StatusInternalServerError, generic.StatusCode)
}

func TestGetFullErrorIncludesCauseChain(t *testing.T) {
	inner := NewStoreUnavailableError("download", errors.New("timeout"))
	outer := NewInternalErrorWithCause("migration failed", inner)
	full := outer.GetFullError()
	assert.Contains(t, full, "migration failed")
	assert.Contains(t, full, "object store unavailable")
	assert.Contains(t, full, "timeout")
}
