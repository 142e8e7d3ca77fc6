package domain

import "fmt"

// RefKind identifies how a URL addresses a point in repository history.
// It is a closed set: every consumer switches over all four values.
type RefKind int

const (
	// RefDefault is a bare repository URL; the default branch is resolved
	// via the API before the commit lookup.
	RefDefault RefKind = iota

	// RefBranch is an explicit branch from a /-/tree/<branch> URL.
	RefBranch

	// RefCommit is an explicit commit SHA from a /-/commit/<sha> URL.
	RefCommit

	// RefMergeRequest is a merge request from a /-/merge_requests/<iid>
	// URL; its source branch is resolved via the API.
	RefMergeRequest
)

// String returns the URL category name for the kind.
func (k RefKind) String() string {
	switch k {
	case RefDefault:
		return "default"
	case RefBranch:
		return "tree"
	case RefCommit:
		return "commit"
	case RefMergeRequest:
		return "merge_requests"
	default:
		return fmt.Sprintf("RefKind(%d)", int(k))
	}
}

// RepoRef is the structured form of a GitLab web URL: which instance, which
// project, and which reference within it.
type RepoRef struct {
	Host  string
	Owner string
	Repo  string
	Kind  RefKind

	// Value is the category identifier: branch name for RefBranch, commit
	// SHA for RefCommit, merge request IID for RefMergeRequest. Empty for
	// RefDefault.
	Value string
}

// ProjectID returns the "owner/repo" project identifier used by the GitLab
// API. The API client encodes it as a single path segment.
func (r *RepoRef) ProjectID() string {
	return r.Owner + "/" + r.Repo
}

// ResolvedTarget is the outcome of reference resolution. Both fields are
// always populated before any archive fetch starts.
type ResolvedTarget struct {
	// RefLabel is the human-readable ref (branch name or SHA), used only
	// for naming the destination directory.
	RefLabel string

	// CommitSHA is the concrete commit the archive is fetched at.
	CommitSHA string
}

// Credentials holds the token selected for a host. An empty token is valid
// and means anonymous access to public projects.
type Credentials struct {
	Host  string
	Token string
}
