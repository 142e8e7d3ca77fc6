// Package editor launches the user's configured editor on a directory.
package editor

import (
	"os"
	"os/exec"
	"strings"

	"github.com/quantmind-br/glopen/internal/domain"
	"github.com/quantmind-br/glopen/internal/utils"
)

// Launcher starts the configured editor process.
type Launcher struct {
	command string
	logger  *utils.Logger
}

// NewLauncher creates a launcher for the given editor command. The command
// may contain arguments, e.g. "code -w".
func NewLauncher(command string, logger *utils.Logger) *Launcher {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Launcher{
		command: strings.TrimSpace(command),
		logger:  logger.WithComponent("editor"),
	}
}

// Open runs the editor with dir as its final argument, attached to the
// current terminal, and waits for it to exit. It does not synchronize with
// any in-flight archive extraction.
func (l *Launcher) Open(dir string) error {
	cmd, err := l.buildCommand(dir)
	if err != nil {
		return err
	}

	l.logger.Debug().Str("editor", cmd.Path).Str("dir", dir).Msg("Launching editor")

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// buildCommand validates the editor configuration and resolves the binary.
func (l *Launcher) buildCommand(dir string) (*exec.Cmd, error) {
	if l.command == "" {
		return nil, &domain.MissingDependencyError{
			Dependency: "editor",
			Err:        domain.ErrEditorNotConfigured,
		}
	}

	parts := strings.Fields(l.command)
	path, err := exec.LookPath(parts[0])
	if err != nil {
		return nil, &domain.MissingDependencyError{Dependency: parts[0], Err: err}
	}

	args := append(parts[1:], dir)
	return exec.Command(path, args...), nil
}
