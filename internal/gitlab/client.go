package gitlab

import (
	"fmt"
	"net/http"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/quantmind-br/glopen/internal/domain"
)

// NewClient creates an API client for the given host. The token is sent as
// a bearer Authorization header; an empty token makes anonymous calls,
// which is enough for public projects.
func NewClient(creds domain.Credentials, timeout time.Duration) (*gitlab.Client, error) {
	baseURL := fmt.Sprintf("https://%s/api/v4", creds.Host)

	client, err := gitlab.NewOAuthClient(creds.Token,
		gitlab.WithBaseURL(baseURL),
		gitlab.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client for %s: %w", creds.Host, err)
	}
	return client, nil
}
