package executor

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordingLauncher records argv instead of spawning processes.
type recordingLauncher struct {
	mu     sync.Mutex
	calls  [][]string
	output string
	err    error
}

func (l *recordingLauncher) Run(cmd *exec.Cmd) error {
	l.mu.Lock()
	l.calls = append(l.calls, slices.Clone(cmd.Args))
	l.mu.Unlock()
	if l.output != "" && cmd.Stdout != nil {
		io.WriteString(cmd.Stdout, l.output)
	}
	return l.err
}

func (l *recordingLauncher) Calls() [][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.calls)
}

// fakeExitError mimics *exec.ExitError.
type fakeExitError struct {
	code int
}

func (e *fakeExitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e *fakeExitError) ExitCode() int { return e.code }

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestRuntime(t *testing.T, launcher Launcher) (*Runtime, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	return &Runtime{
		Stdin:       strings.NewReader(""),
		Stdout:      out,
		Stderr:      out,
		Launcher:    launcher,
		Logs:        NewLogStore(t.TempDir()),
		Reporter:    NewLineReporter(out),
		GracePeriod: 500 * time.Millisecond,
	}, out
}

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}
