// Package app wires URL parsing, credential lookup, reference resolution,
// archive download, and editor launch into one run.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	glclient "gitlab.com/gitlab-org/api/client-go"

	"github.com/quantmind-br/glopen/internal/archive"
	"github.com/quantmind-br/glopen/internal/config"
	"github.com/quantmind-br/glopen/internal/domain"
	"github.com/quantmind-br/glopen/internal/editor"
	"github.com/quantmind-br/glopen/internal/gitlab"
	"github.com/quantmind-br/glopen/internal/parser"
	"github.com/quantmind-br/glopen/internal/utils"
)

// ClientFactory builds an API client for the given credentials. Tests swap
// it to point the client at a local server.
type ClientFactory func(creds domain.Credentials, timeout time.Duration) (*glclient.Client, error)

// Orchestrator coordinates one glopen invocation
type Orchestrator struct {
	config        *config.Config
	logger        *utils.Logger
	clientFactory ClientFactory
	editorCmd     string
	wait          bool
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	Config *config.Config

	// Editor overrides the configured editor command when non-empty.
	Editor string

	// Wait blocks on download completion after the editor exits and
	// surfaces download errors instead of dropping them.
	Wait bool

	Verbose       bool
	ClientFactory ClientFactory
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Verbose: opts.Verbose,
	})

	editorCmd := cfg.Editor
	if opts.Editor != "" {
		editorCmd = opts.Editor
	}

	clientFactory := opts.ClientFactory
	if clientFactory == nil {
		clientFactory = gitlab.NewClient
	}

	return &Orchestrator{
		config:        cfg,
		logger:        logger,
		clientFactory: clientFactory,
		editorCmd:     editorCmd,
		wait:          opts.Wait,
	}, nil
}

// Run executes one invocation: parse -> credentials -> resolve -> fetch
// (background) -> launch editor. Resolution always completes before any
// archive fetch starts; the fetch is never awaited unless Wait is set.
func (o *Orchestrator) Run(ctx context.Context, rawURL string) error {
	ref, err := parser.Parse(rawURL)
	if err != nil {
		return err
	}

	o.logger.Debug().
		Str("host", ref.Host).
		Str("project", ref.ProjectID()).
		Str("kind", ref.Kind.String()).
		Str("value", ref.Value).
		Msg("Parsed URL")

	creds := o.config.TokenFor(ref.Host)
	client, err := o.clientFactory(creds, o.config.HTTP.Timeout)
	if err != nil {
		return err
	}

	target, err := gitlab.NewResolver(client, o.logger).Resolve(ctx, ref)
	if err != nil {
		return err
	}

	o.logger.Info().
		Str("project", ref.ProjectID()).
		Str("ref", target.RefLabel).
		Str("sha", target.CommitSHA).
		Msg("Resolved target")

	fetcher := archive.NewFetcher(archive.FetcherOptions{
		Client:       client,
		Logger:       o.logger,
		TempDir:      o.config.TempDir,
		ShowProgress: o.wait,
	})

	destDir, done, err := fetcher.Start(ctx, ref, target)
	if err != nil {
		return err
	}

	fmt.Printf("Opening %s at %s in %s\n",
		color.CyanString(ref.ProjectID()),
		color.YellowString(target.RefLabel),
		color.GreenString(destDir))

	launchErr := editor.NewLauncher(o.editorCmd, o.logger).Open(destDir)

	if o.wait {
		if err := <-done; err != nil {
			return fmt.Errorf("archive download: %w", err)
		}
	}

	return launchErr
}
