package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/glopen/internal/app"
	"github.com/quantmind-br/glopen/internal/config"
	"github.com/quantmind-br/glopen/pkg/version"
)

var (
	cfgFile    string
	verbose    bool
	waitFlag   bool
	editorFlag string
	timeout    time.Duration
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// single-line report on stdout, no stack noise
		fmt.Fprintf(os.Stdout, "glopen: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "glopen [url]",
	Short: "Open a read-only copy of a GitLab repository in your editor",
	Long: `glopen resolves a GitLab web URL (repository, branch, commit, or merge
request) to a commit, downloads the repository archive at that commit into a
temp directory, and opens it in your editor without a full clone.

The archive keeps downloading in the background while the editor is already
open. Tokens come from GITLAB_TOKEN (gitlab.com) or GITLAB_TOKEN_<HOST> for
other instances, read from the environment or ~/.glopen/config.yaml.`,
	Version:       version.Short(),
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.glopen/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.Flags().BoolVar(&waitFlag, "wait", false, "Wait for the download to finish and report its errors")
	rootCmd.Flags().StringVarP(&editorFlag, "editor", "e", "", "Editor command (overrides EDITOR and config)")
	rootCmd.Flags().Duration("timeout", config.DefaultHTTPTimeout, "API request timeout")

	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

func run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("timeout") {
		timeout, _ = cmd.Flags().GetDuration("timeout")
		cfg.HTTP.Timeout = timeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	orchestrator, err := app.NewOrchestrator(app.OrchestratorOptions{
		Config:  cfg,
		Editor:  editorFlag,
		Wait:    waitFlag,
		Verbose: verbose,
	})
	if err != nil {
		return err
	}

	return orchestrator.Run(ctx, args[0])
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and system dependencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Checking glopen setup...")
		allPassed := true

		fmt.Print("  Config file: ")
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Printf("FAILED (%v)\n", err)
			return fmt.Errorf("config is unusable")
		}
		if _, statErr := os.Stat(config.ConfigFilePath()); statErr == nil {
			fmt.Printf("OK (%s)\n", config.ConfigFilePath())
		} else {
			fmt.Println("NOT FOUND (environment variables only)")
		}

		fmt.Print("  Editor: ")
		if cfg.Editor == "" {
			fmt.Println("NOT CONFIGURED (set EDITOR)")
			allPassed = false
		} else if path, lookErr := exec.LookPath(strings.Fields(cfg.Editor)[0]); lookErr != nil {
			fmt.Printf("NOT FOUND (%s)\n", cfg.Editor)
			allPassed = false
		} else {
			fmt.Printf("OK (%s)\n", path)
		}

		fmt.Print("  Temp directory: ")
		if checkWritable(cfg.TempDir) {
			fmt.Printf("OK (%s)\n", cfg.TempDir)
		} else {
			fmt.Printf("NOT WRITABLE (%s)\n", cfg.TempDir)
			allPassed = false
		}

		fmt.Print("  GitLab reachable: ")
		if checkGitLab() {
			fmt.Println("OK")
		} else {
			fmt.Println("FAILED")
			allPassed = false
		}

		fmt.Println()
		if allPassed {
			fmt.Println("All checks passed!")
		} else {
			fmt.Println("Some checks failed. Please resolve the issues above.")
		}
		return nil
	},
}

// checkWritable checks that we can create files under dir
func checkWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".glopen_doctor_*")
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(f.Name())
	return true
}

// checkGitLab checks that the default GitLab host answers
func checkGitLab() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, "https://"+config.DefaultHost, nil)
	if err != nil {
		return false
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}
