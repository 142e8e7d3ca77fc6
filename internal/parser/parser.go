// Package parser turns GitLab web URLs into structured repository
// references. Supported shapes:
//
//	https://host/owner/repo
//	https://host/owner/repo/-/tree/<branch>     (branch may contain "/")
//	https://host/owner/repo/-/commit/<sha>
//	https://host/owner/repo/-/merge_requests/<iid>
package parser

import (
	"net/url"
	"strings"

	"github.com/quantmind-br/glopen/internal/domain"
)

// URL categories recognized after the "-" path separator.
const (
	categoryTree         = "tree"
	categoryCommit       = "commit"
	categoryMergeRequest = "merge_requests"
)

// Parse decomposes a GitLab web URL into a RepoRef. It performs no network
// I/O; every failure is a ParseError or UnsupportedCategoryError.
func Parse(rawURL string) (*domain.RepoRef, error) {
	input := strings.TrimSpace(rawURL)
	if input == "" {
		return nil, domain.NewParseError(rawURL, "empty input")
	}

	// Bare "host/owner/repo" inputs are accepted the same way the browser
	// address bar accepts them.
	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return nil, domain.NewParseError(rawURL, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, domain.NewParseError(rawURL, "unsupported scheme "+u.Scheme)
	}

	// Hostname() strips userinfo and port from the authority.
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, domain.NewParseError(rawURL, "missing host")
	}

	segments := splitPath(u.Path)
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return nil, domain.NewParseError(rawURL, "path must start with owner/repo")
	}

	ref := &domain.RepoRef{
		Host:  host,
		Owner: segments[0],
		Repo:  strings.TrimSuffix(segments[1], ".git"),
		Kind:  domain.RefDefault,
	}

	if len(segments) == 2 {
		return ref, nil
	}

	// GitLab separates the project path from the rest with a literal "-".
	// Anything else (including nested sub-group paths) is a shape this
	// positional mapping cannot safely interpret, so it is rejected
	// instead of mis-extracting owner/repo.
	if segments[2] != "-" {
		return nil, domain.NewParseError(rawURL, "expected \"-\" separator after owner/repo")
	}
	if len(segments) < 5 {
		return nil, domain.NewParseError(rawURL, "missing category identifier")
	}

	category := segments[3]
	switch category {
	case categoryTree:
		// Branch names may contain "/", so the identifier is everything
		// after the tree/ marker rather than a single segment.
		branch := strings.Join(segments[4:], "/")
		if branch == "" {
			return nil, domain.NewParseError(rawURL, "missing branch name")
		}
		ref.Kind = domain.RefBranch
		ref.Value = branch
	case categoryCommit:
		ref.Kind = domain.RefCommit
		ref.Value = segments[4]
	case categoryMergeRequest:
		iid := segments[4]
		if !isDigits(iid) {
			return nil, domain.NewParseError(rawURL, "merge request id must be numeric, got "+iid)
		}
		ref.Kind = domain.RefMergeRequest
		ref.Value = iid
	default:
		return nil, &domain.UnsupportedCategoryError{Category: category}
	}

	return ref, nil
}

// splitPath splits a URL path into segments, dropping empty leading and
// trailing entries produced by surrounding slashes.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
