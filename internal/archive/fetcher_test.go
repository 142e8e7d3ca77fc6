package archive

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	glclient "gitlab.com/gitlab-org/api/client-go"

	"github.com/quantmind-br/glopen/internal/domain"
)

func TestDestDirName(t *testing.T) {
	tests := []struct {
		name     string
		repo     string
		target   domain.ResolvedTarget
		expected string
	}{
		{
			"plain branch",
			"widgets",
			domain.ResolvedTarget{RefLabel: "main", CommitSHA: "deadbeef"},
			"widgets-main-deadbeef",
		},
		{
			"branch with slashes",
			"widgets",
			domain.ResolvedTarget{RefLabel: "feature/foo-bar", CommitSHA: "1234abcd"},
			"widgets-feature-foo-bar-1234abcd",
		},
		{
			"commit identity",
			"widgets",
			domain.ResolvedTarget{RefLabel: "cafef00d", CommitSHA: "cafef00d"},
			"widgets-cafef00d-cafef00d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DestDirName(tt.repo, &tt.target)
			assert.Equal(t, tt.expected, got)
			// deterministic: same triple, same name
			assert.Equal(t, got, DestDirName(tt.repo, &tt.target))
		})
	}
}

func newTestFetcher(t *testing.T, handler http.Handler, tempDir string) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := glclient.NewOAuthClient("", glclient.WithBaseURL(srv.URL+"/api/v4"))
	require.NoError(t, err)

	return NewFetcher(FetcherOptions{
		Client:       client,
		TempDir:      tempDir,
		MaxRetries:   3,
		RetryInitial: 10 * time.Millisecond,
	})
}

func TestFetcher_Start(t *testing.T) {
	archiveData := makeArchive(t, "widgets-main-deadbeef", map[string]string{
		"README.md": "hello",
	})

	var gotSHA atomic.Value
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/projects/acme/widgets/repository/archive.tar.gz", r.URL.Path)
		gotSHA.Store(r.URL.Query().Get("sha"))
		w.Header().Set("Content-Type", "application/gzip")
		w.Write(archiveData)
	})

	tempDir := t.TempDir()
	fetcher := newTestFetcher(t, handler, tempDir)

	ref := &domain.RepoRef{Host: "gitlab.test", Owner: "acme", Repo: "widgets"}
	target := &domain.ResolvedTarget{RefLabel: "main", CommitSHA: "deadbeef"}

	destDir, done, err := fetcher.Start(context.Background(), ref, target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "widgets-main-deadbeef"), destDir)

	// the directory exists before the download finishes
	info, err := os.Stat(destDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, <-done)
	assert.Equal(t, "deadbeef", gotSHA.Load())

	content, err := os.ReadFile(filepath.Join(destDir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestFetcher_RetriesWhileArchiveNotReady(t *testing.T) {
	archiveData := makeArchive(t, "widgets-main-deadbeef", map[string]string{
		"README.md": "ready now",
	})

	var attempts atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			fmt.Fprint(w, `{"message": "202 Accepted"}`)
			return
		}
		w.Header().Set("Content-Type", "application/gzip")
		w.Write(archiveData)
	})

	tempDir := t.TempDir()
	fetcher := newTestFetcher(t, handler, tempDir)

	ref := &domain.RepoRef{Host: "gitlab.test", Owner: "acme", Repo: "widgets"}
	target := &domain.ResolvedTarget{RefLabel: "main", CommitSHA: "deadbeef"}

	destDir, done, err := fetcher.Start(context.Background(), ref, target)
	require.NoError(t, err)
	require.NoError(t, <-done)

	assert.Equal(t, int32(3), attempts.Load())

	content, err := os.ReadFile(filepath.Join(destDir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "ready now", string(content))
}

func TestFetcher_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "404 Not Found"}`)
	})

	fetcher := newTestFetcher(t, handler, t.TempDir())

	ref := &domain.RepoRef{Host: "gitlab.test", Owner: "acme", Repo: "widgets"}
	target := &domain.ResolvedTarget{RefLabel: "main", CommitSHA: "deadbeef"}

	_, done, err := fetcher.Start(context.Background(), ref, target)
	require.NoError(t, err)

	assert.Error(t, <-done)
	assert.Equal(t, int32(1), attempts.Load(), "4xx must not be retried")
}
