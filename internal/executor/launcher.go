package executor

import (
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// Launcher starts a prepared command and waits for it to exit.
type Launcher interface {
	Run(cmd *exec.Cmd) error
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(cmd *exec.Cmd) error

func (f LauncherFunc) Run(cmd *exec.Cmd) error { return f(cmd) }

type execLauncher struct{}

func (execLauncher) Run(cmd *exec.Cmd) error { return cmd.Run() }

// DefaultShell returns the interpreter used for shell steps on this platform.
func DefaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"sh", "-c"}
}

// defaultGracePeriod is how long a cancelled process group gets between the
// graceful signal and the forced kill.
const defaultGracePeriod = 5 * time.Second

// Runtime holds everything a step needs from its surroundings. The zero value
// is usable: unset fields fall back to the process's standard streams, a real
// launcher, a line reporter on stdout and logs under DefaultLogDir.
type Runtime struct {
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	Launcher    Launcher
	Logs        *LogStore
	Reporter    Reporter
	Shell       []string
	GracePeriod time.Duration
}

func (rt *Runtime) withDefaults() *Runtime {
	out := Runtime{}
	if rt != nil {
		out = *rt
	}
	if out.Stdin == nil {
		out.Stdin = os.Stdin
	}
	if out.Stdout == nil {
		out.Stdout = os.Stdout
	}
	if out.Stderr == nil {
		out.Stderr = os.Stderr
	}
	if out.Launcher == nil {
		out.Launcher = execLauncher{}
	}
	if out.Logs == nil {
		out.Logs = NewLogStore(DefaultLogDir)
	}
	if out.Reporter == nil {
		out.Reporter = NewLineReporter(out.Stdout)
	}
	if len(out.Shell) == 0 {
		out.Shell = DefaultShell()
	}
	if out.GracePeriod <= 0 {
		out.GracePeriod = defaultGracePeriod
	}
	return &out
}
