package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/legl/legl-dev/internal/config"
	"github.com/legl/legl-dev/internal/executor"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// Options holds the root persistent flags.
type Options struct {
	ConfigFile  string // --config, merged after the user and project files
	Verbose     bool   // --verbose; only applied when set explicitly
	LogLevel    string
	LogFormat   string
	FailOnError bool
}

// App carries the process surroundings a command runs in. The zero value
// talks to the real terminal and spawns real processes.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Launcher replaces process spawning, mainly in tests.
	Launcher executor.Launcher
	// HomeDir and WorkDir default to the user's home and the current directory.
	HomeDir string
	WorkDir string
	// Interactive forces the spinner display on or off. Nil means detect
	// from the output stream.
	Interactive *bool

	opts   Options
	config *config.Config
}

func (a *App) stdin() io.Reader {
	if a.In == nil {
		return os.Stdin
	}
	return a.In
}

func (a *App) stdout() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *App) stderr() io.Writer {
	if a.Err == nil {
		return os.Stderr
	}
	return a.Err
}

// ExitError asks main to exit with Code without printing anything further.
type ExitError struct {
	Code    int
	Summary executor.Summary
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%d of %d step(s) failed", e.Summary.Failed, e.Summary.Total)
}
