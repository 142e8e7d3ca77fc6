// Package archive downloads repository tarballs at a resolved commit and
// extracts them into a predictably-named temp directory.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/schollz/progressbar/v3"
	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/quantmind-br/glopen/internal/domain"
	"github.com/quantmind-br/glopen/internal/utils"
)

const archiveFormat = "tar.gz"

// Fetcher streams repository archives into local directories.
type Fetcher struct {
	client       *gitlab.Client
	logger       *utils.Logger
	tempDir      string
	showProgress bool
	maxRetries   uint64
	retryInitial time.Duration
}

// FetcherOptions contains options for creating a Fetcher
type FetcherOptions struct {
	Client *gitlab.Client
	Logger *utils.Logger

	// TempDir is the shared temporary-files location destination
	// directories are created under.
	TempDir string

	// ShowProgress draws a byte counter on stderr while downloading.
	// Only useful when the caller waits for completion.
	ShowProgress bool

	// MaxRetries bounds the retries while GitLab prepares the archive
	// (HTTP 202). Zero means the default.
	MaxRetries uint64

	// RetryInitial is the initial backoff interval. Zero means the default.
	RetryInitial time.Duration
}

// NewFetcher creates a new Fetcher
func NewFetcher(opts FetcherOptions) *Fetcher {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 10
	}
	if opts.RetryInitial <= 0 {
		opts.RetryInitial = 1 * time.Second
	}
	return &Fetcher{
		client:       opts.Client,
		logger:       logger.WithComponent("archive"),
		tempDir:      opts.TempDir,
		showProgress: opts.ShowProgress,
		maxRetries:   opts.MaxRetries,
		retryInitial: opts.RetryInitial,
	}
}

// DestDirName builds the deterministic destination directory name for a
// (repository, ref, commit) triple: <repo>-<ref with / replaced by ->-<sha>.
func DestDirName(repo string, target *domain.ResolvedTarget) string {
	return fmt.Sprintf("%s-%s-%s", repo, slugifyRef(target.RefLabel), target.CommitSHA)
}

// slugifyRef makes a ref label safe for use in a directory name.
func slugifyRef(ref string) string {
	return strings.ReplaceAll(ref, "/", "-")
}

// Start creates the destination directory and kicks off download plus
// extraction in a detached goroutine. It returns the destination path
// immediately together with a buffered channel that receives the terminal
// error (or nil). The foreground path is free to ignore the channel; the
// download is fire-and-forget by design.
func (f *Fetcher) Start(ctx context.Context, ref *domain.RepoRef, target *domain.ResolvedTarget) (string, <-chan error, error) {
	destDir := filepath.Join(f.tempDir, DestDirName(ref.Repo, target))
	if err := utils.EnsureDir(destDir); err != nil {
		return "", nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		err := f.download(ctx, ref.ProjectID(), target.CommitSHA, destDir)
		if err != nil {
			f.logger.Error().Err(err).Str("dest", destDir).Msg("Archive download failed")
		} else {
			f.logger.Debug().Str("dest", destDir).Msg("Archive extracted")
		}
		done <- err
	}()

	return destDir, done, nil
}

// download fetches the archive with backoff while GitLab responds 202
// (archive still being prepared). Any other failure is permanent.
func (f *Fetcher) download(ctx context.Context, projectID, sha, destDir string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.retryInitial
	b.MaxInterval = 10 * time.Second

	operation := func() error {
		err := f.attempt(ctx, projectID, sha, destDir)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrArchiveNotReady) {
			f.logger.Debug().Str("project", projectID).Msg("Archive not ready, retrying")
			return err
		}
		return backoff.Permanent(err)
	}

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, f.maxRetries), ctx))
}

// attempt performs one streaming download piped straight into extraction.
func (f *Fetcher) attempt(ctx context.Context, projectID, sha, destDir string) error {
	pr, pw := io.Pipe()

	extractDone := make(chan error, 1)
	go func() {
		err := ExtractTarGz(pr, destDir)
		// unblock the writer if extraction bailed out early
		pr.CloseWithError(err)
		extractDone <- err
	}()

	var w io.Writer = pw
	if f.showProgress {
		bar := progressbar.DefaultBytes(-1, "downloading")
		defer bar.Close()
		w = io.MultiWriter(pw, bar)
	}

	resp, err := f.client.Repositories.StreamArchive(projectID, w, &gitlab.ArchiveOptions{
		Format: gitlab.Ptr(archiveFormat),
		SHA:    gitlab.Ptr(sha),
	}, gitlab.WithContext(ctx))
	pw.CloseWithError(err)
	extractErr := <-extractDone

	if err != nil {
		return fmt.Errorf("archive download failed: %w", err)
	}
	if resp != nil && resp.StatusCode == http.StatusAccepted {
		// the 202 body is a JSON notice, not a tarball; the extraction
		// error it caused is expected and dropped
		return domain.ErrArchiveNotReady
	}
	return extractErr
}
