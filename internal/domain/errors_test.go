package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	err := NewParseError("not-a-url", "missing host")

	assert.Contains(t, err.Error(), "not-a-url")
	assert.Contains(t, err.Error(), "missing host")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestUnsupportedCategoryError(t *testing.T) {
	err := &UnsupportedCategoryError{Category: "issues"}

	assert.Contains(t, err.Error(), "issues")
	assert.Contains(t, err.Error(), "merge_requests")
}

func TestResolutionError(t *testing.T) {
	ref := &RepoRef{Host: "gitlab.com", Owner: "acme", Repo: "widgets"}
	cause := fmt.Errorf("HTTP 404")

	err := NewResolutionError("commits", ref, "main", cause)
	assert.Contains(t, err.Error(), "commits")
	assert.Contains(t, err.Error(), "acme/widgets@main")
	assert.ErrorIs(t, err, cause)

	// without a ref name the @ref suffix is omitted
	err = NewResolutionError("project", ref, "", cause)
	assert.Contains(t, err.Error(), "acme/widgets")
	assert.NotContains(t, err.Error(), "@")
}

func TestMissingDependencyError(t *testing.T) {
	err := &MissingDependencyError{Dependency: "editor", Err: ErrEditorNotConfigured}

	assert.Contains(t, err.Error(), "editor")
	assert.True(t, errors.Is(err, ErrEditorNotConfigured))

	bare := &MissingDependencyError{Dependency: "tar"}
	assert.Equal(t, "missing dependency tar", bare.Error())
}
