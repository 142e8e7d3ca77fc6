// Package gitlab resolves repository references to concrete commit SHAs
// through the GitLab v4 REST API.
package gitlab

import (
	"context"
	"fmt"
	"strconv"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/quantmind-br/glopen/internal/domain"
	"github.com/quantmind-br/glopen/internal/utils"
)

// Resolver turns a RepoRef into a ResolvedTarget. Depending on the ref
// kind it needs zero, one, or two sequential API calls.
type Resolver struct {
	client *gitlab.Client
	logger *utils.Logger
}

// NewResolver creates a resolver on top of an API client.
func NewResolver(client *gitlab.Client, logger *utils.Logger) *Resolver {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Resolver{
		client: client,
		logger: logger.WithComponent("resolver"),
	}
}

// Resolve determines the commit SHA and ref label for the given reference.
// RefCommit is a pure identity: label and SHA are the given value and no
// API call is made.
func (r *Resolver) Resolve(ctx context.Context, ref *domain.RepoRef) (*domain.ResolvedTarget, error) {
	switch ref.Kind {
	case domain.RefCommit:
		return &domain.ResolvedTarget{RefLabel: ref.Value, CommitSHA: ref.Value}, nil

	case domain.RefBranch:
		sha, err := r.latestCommit(ctx, ref, ref.Value)
		if err != nil {
			return nil, err
		}
		return &domain.ResolvedTarget{RefLabel: ref.Value, CommitSHA: sha}, nil

	case domain.RefDefault:
		branch, err := r.defaultBranch(ctx, ref)
		if err != nil {
			return nil, err
		}
		sha, err := r.latestCommit(ctx, ref, branch)
		if err != nil {
			return nil, err
		}
		return &domain.ResolvedTarget{RefLabel: branch, CommitSHA: sha}, nil

	case domain.RefMergeRequest:
		branch, err := r.sourceBranch(ctx, ref)
		if err != nil {
			return nil, err
		}
		sha, err := r.latestCommit(ctx, ref, branch)
		if err != nil {
			return nil, err
		}
		return &domain.ResolvedTarget{RefLabel: branch, CommitSHA: sha}, nil

	default:
		return nil, fmt.Errorf("unknown ref kind %v", ref.Kind)
	}
}

// defaultBranch looks up the project's default branch.
func (r *Resolver) defaultBranch(ctx context.Context, ref *domain.RepoRef) (string, error) {
	project, _, err := r.client.Projects.GetProject(ref.ProjectID(), nil, gitlab.WithContext(ctx))
	if err != nil {
		return "", domain.NewResolutionError("project", ref, "", err)
	}
	if project.DefaultBranch == "" {
		return "", domain.NewResolutionError("project", ref, "", fmt.Errorf("project has no default branch"))
	}

	r.logger.Debug().
		Str("project", ref.ProjectID()).
		Str("default_branch", project.DefaultBranch).
		Msg("Resolved default branch")

	return project.DefaultBranch, nil
}

// sourceBranch looks up the source branch of a merge request.
func (r *Resolver) sourceBranch(ctx context.Context, ref *domain.RepoRef) (string, error) {
	iid, err := strconv.Atoi(ref.Value)
	if err != nil {
		return "", domain.NewResolutionError("merge_request", ref, ref.Value, err)
	}

	mr, _, err := r.client.MergeRequests.GetMergeRequest(ref.ProjectID(), iid, nil, gitlab.WithContext(ctx))
	if err != nil {
		return "", domain.NewResolutionError("merge_request", ref, ref.Value, err)
	}
	if mr.SourceBranch == "" {
		return "", domain.NewResolutionError("merge_request", ref, ref.Value, fmt.Errorf("merge request has no source branch"))
	}

	r.logger.Debug().
		Str("project", ref.ProjectID()).
		Str("source_branch", mr.SourceBranch).
		Int("iid", iid).
		Msg("Resolved merge request source branch")

	return mr.SourceBranch, nil
}

// latestCommit looks up the newest commit on a branch.
func (r *Resolver) latestCommit(ctx context.Context, ref *domain.RepoRef, branch string) (string, error) {
	commits, _, err := r.client.Commits.ListCommits(ref.ProjectID(), &gitlab.ListCommitsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 1},
		RefName:     gitlab.Ptr(branch),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return "", domain.NewResolutionError("commits", ref, branch, err)
	}
	if len(commits) == 0 || commits[0].ID == "" {
		return "", domain.NewResolutionError("commits", ref, branch, fmt.Errorf("no commits on ref"))
	}

	r.logger.Debug().
		Str("project", ref.ProjectID()).
		Str("ref", branch).
		Str("sha", commits[0].ID).
		Msg("Resolved latest commit")

	return commits[0].ID, nil
}
