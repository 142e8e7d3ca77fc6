package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrInvalidURL indicates the input does not look like a GitLab web URL
	ErrInvalidURL = errors.New("invalid URL")

	// ErrEditorNotConfigured indicates no editor command is configured
	ErrEditorNotConfigured = errors.New("no editor configured (set EDITOR or the editor config key)")

	// ErrArchiveNotReady indicates GitLab is still preparing the archive
	ErrArchiveNotReady = errors.New("archive not ready")
)

// ParseError indicates the input URL could not be decomposed into a
// repository reference.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidURL
}

// NewParseError creates a new ParseError
func NewParseError(input, reason string) *ParseError {
	return &ParseError{Input: input, Reason: reason}
}

// UnsupportedCategoryError indicates the URL names a category other than
// tree, commit, or merge_requests. It is raised before any API call.
type UnsupportedCategoryError struct {
	Category string
}

func (e *UnsupportedCategoryError) Error() string {
	return fmt.Sprintf("unsupported URL category %q (supported: tree, commit, merge_requests)", e.Category)
}

// ResolutionError indicates a reference-resolution API call failed or
// returned an unexpected shape.
type ResolutionError struct {
	Stage string // "project", "merge_request", or "commits"
	Owner string
	Repo  string
	Ref   string
	Err   error
}

func (e *ResolutionError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("resolving %s for %s/%s@%s: %v", e.Stage, e.Owner, e.Repo, e.Ref, e.Err)
	}
	return fmt.Sprintf("resolving %s for %s/%s: %v", e.Stage, e.Owner, e.Repo, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// NewResolutionError creates a new ResolutionError
func NewResolutionError(stage string, ref *RepoRef, refName string, err error) *ResolutionError {
	return &ResolutionError{
		Stage: stage,
		Owner: ref.Owner,
		Repo:  ref.Repo,
		Ref:   refName,
		Err:   err,
	}
}

// MissingDependencyError indicates a required external capability (such as
// the editor command) is not available on this system.
type MissingDependencyError struct {
	Dependency string
	Err        error
}

func (e *MissingDependencyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("missing dependency %s: %v", e.Dependency, e.Err)
	}
	return fmt.Sprintf("missing dependency %s", e.Dependency)
}

func (e *MissingDependencyError) Unwrap() error {
	return e.Err
}
