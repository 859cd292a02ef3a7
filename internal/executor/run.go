package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/legl/legl-dev/internal/ctxlog"
)

// errorMarker flags a soft failure when found, case-insensitively, in captured
// output. Some test runners and build tools print it without setting an exit
// status.
const errorMarker = "error:"

// exitCoder is satisfied by *exec.ExitError.
type exitCoder interface {
	ExitCode() int
}

// Run executes the step once and reports the outcome through rt's reporter.
// It never returns an error: launch failures, non-zero exits and log failures
// are all folded into the returned Result so a pipeline can carry on.
func (s *Step) Run(ctx context.Context, rt *Runtime) Result {
	rt = rt.withDefaults()
	progress := rt.Reporter.Begin(s)

	var result Result
	if s.verbose {
		result = s.runVerbose(ctx, rt)
	} else {
		result = s.runCaptured(ctx, rt)
	}

	finish(progress, result)
	return result
}

// runVerbose streams the child directly on the invoking terminal.
func (s *Step) runVerbose(ctx context.Context, rt *Runtime) Result {
	cmd, kill := s.prepare(ctx, rt)
	cmd.Stdin = rt.Stdin
	cmd.Stdout = rt.Stdout
	cmd.Stderr = rt.Stderr

	result := Result{StartTime: time.Now()}
	err := s.launch(ctx, rt, cmd, kill)
	s.complete(ctx, &result, cmd, err)
	return result
}

// runCaptured redirects combined stdout and stderr into the step's log file
// and an in-memory buffer holding this run's output only.
func (s *Step) runCaptured(ctx context.Context, rt *Runtime) Result {
	result := Result{StartTime: time.Now()}

	var captured bytes.Buffer
	var sink io.Writer = &captured
	if s.logTarget != "" {
		result.LogPath = rt.Logs.Path(s.logTarget)
		f, err := rt.Logs.Open(s.logTarget)
		if err != nil {
			s.fail(&result, -1, err, err.Error())
			return result
		}
		defer f.Close()
		sink = io.MultiWriter(&captured, f)
	}

	cmd, kill := s.prepare(ctx, rt)
	cmd.Stdout = sink
	cmd.Stderr = sink

	err := s.launch(ctx, rt, cmd, kill)
	result.Output = captured.String()
	s.complete(ctx, &result, cmd, err)

	if result.Status == StatusSuccess {
		if line, ok := firstErrorLine(result.Output); ok {
			result.Status = StatusWarning
			result.Detail = "output contains error messages: " + line
		}
	}
	return result
}

// prepare builds the exec.Cmd for one run. Captured children get their own
// process group; verbose children stay in the terminal's foreground group.
func (s *Step) prepare(ctx context.Context, rt *Runtime) (*exec.Cmd, *killTimer) {
	argv := s.Argv(rt.Shell)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if s.workDir != "" {
		cmd.Dir = s.workDir
	}
	if vars := s.environ(); len(vars) > 0 {
		cmd.Env = append(os.Environ(), vars...)
	}
	kill := &killTimer{}
	if s.verbose {
		attachToTerminal(cmd, rt.GracePeriod, kill)
	} else {
		configureProcessGroup(cmd, rt.GracePeriod, kill)
	}
	return cmd, kill
}

func (s *Step) launch(ctx context.Context, rt *Runtime, cmd *exec.Cmd, kill *killTimer) error {
	logger := ctxlog.FromContext(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Debug("Spawning process.", "argv", cmd.Args, "shell", s.shell, "verbose", s.verbose, "dir", cmd.Dir)
	err := rt.Launcher.Run(cmd)
	kill.stop()
	if cmd.ProcessState != nil {
		logger.Debug("Process exited.", "argv", cmd.Args, "pid", cmd.ProcessState.Pid(), "code", cmd.ProcessState.ExitCode())
	}
	return err
}

// complete translates the launch error into a status.
func (s *Step) complete(ctx context.Context, result *Result, cmd *exec.Cmd, err error) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	if err == nil {
		result.Status = StatusSuccess
		result.ExitCode = 0
		return
	}

	workDir := cmd.Dir
	if workDir == "" {
		workDir = "."
	}
	cmdLine := strings.Join(cmd.Args, " ")

	if ctxErr := ctx.Err(); ctxErr != nil {
		s.fail(result, -1, &CommandExecutionError{
			CommandLine: cmdLine, WorkingDir: workDir, ExitCode: -1, OriginalError: ctxErr,
		}, "canceled")
		return
	}

	// The child exited zero but something it left running still holds the
	// output pipe.
	if errors.Is(err, exec.ErrWaitDelay) {
		ctxlog.FromContext(ctx).Debug("Output still open after exit.", "argv", cmd.Args)
		result.Status = StatusSuccess
		result.ExitCode = 0
		result.Detail = "background processes outlived the step"
		return
	}

	var coder exitCoder
	if errors.As(err, &coder) {
		code := coder.ExitCode()
		execErr := &CommandExecutionError{
			CommandLine: cmdLine, WorkingDir: workDir, ExitCode: code, OriginalError: err,
		}
		if !s.strict() {
			result.Status = StatusWarning
			result.ExitCode = code
			result.Err = execErr
			result.Detail = fmt.Sprintf("exited with code %d", code)
			return
		}
		s.fail(result, code, execErr, fmt.Sprintf("exited with code %d", code))
		return
	}

	s.fail(result, -1, &SpawnError{CommandLine: cmdLine, WorkingDir: workDir, OriginalError: err}, err.Error())
}

func (s *Step) fail(result *Result, code int, err error, detail string) {
	if result.EndTime.IsZero() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
	}
	result.Status = StatusFailure
	result.ExitCode = code
	result.Err = err
	result.Detail = detail
}

// maxDetailLen bounds the output line quoted in a warning.
const maxDetailLen = 120

// firstErrorLine returns the first output line carrying the error marker.
func firstErrorLine(output string) (string, bool) {
	for line := range strings.Lines(output) {
		if !strings.Contains(strings.ToLower(line), errorMarker) {
			continue
		}
		line = strings.TrimSpace(line)
		if r := []rune(line); len(r) > maxDetailLen {
			line = string(r[:maxDetailLen]) + "…"
		}
		return line, true
	}
	return "", false
}
