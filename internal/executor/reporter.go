package executor

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Reporter announces steps as they start.
type Reporter interface {
	Begin(step *Step) Progress
}

// Progress is the status line of one running step. Exactly one of its
// methods is called when the step finishes.
type Progress interface {
	Succeed(result Result)
	Warn(result Result)
	Fail(result Result)
}

// SummaryReporter is implemented by reporters that can print a pipeline
// summary once every step has finished.
type SummaryReporter interface {
	ReportSummary(summary Summary)
}

// finish routes a result to the matching Progress state.
func finish(p Progress, result Result) {
	switch result.Status {
	case StatusSuccess:
		p.Succeed(result)
	case StatusWarning:
		p.Warn(result)
	default:
		p.Fail(result)
	}
}

// LineReporter writes plain sequential lines. It is correct for any writer,
// including pipes and CI logs, and is what verbose steps always use.
type LineReporter struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewLineReporter creates a reporter writing to w.
func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{writer: w}
}

// Begin prints the running line.
func (r *LineReporter) Begin(step *Step) Progress {
	r.printf("▸ %s running…\n", step.Label())
	return &lineProgress{reporter: r, step: step}
}

// ReportSummary prints one line with the pipeline totals.
func (r *LineReporter) ReportSummary(s Summary) {
	r.printf("%d step(s): %d succeeded, %d warning(s), %d failed (%s)\n",
		s.Total, s.Succeeded, s.Warnings, s.Failed, formatDuration(s.Duration))
}

func (r *LineReporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.writer, format, args...)
}

type lineProgress struct {
	reporter *LineReporter
	step     *Step
}

func (p *lineProgress) Succeed(result Result) {
	p.reporter.printf("%s\n", successLine(p.step, result))
}

func (p *lineProgress) Warn(result Result) {
	p.reporter.printf("%s\n", warningLine(p.step, result))
}

func (p *lineProgress) Fail(result Result) {
	p.reporter.printf("%s\n", failureLine(p.step, result))
}

func successLine(step *Step, result Result) string {
	return fmt.Sprintf("✓ %s succeeded (%s)", step.Label(), formatDuration(result.Duration))
}

func warningLine(step *Step, result Result) string {
	line := fmt.Sprintf("⚠ %s finished with warnings", step.Label())
	if result.Detail != "" {
		line += ": " + result.Detail
	}
	if result.LogPath != "" {
		line += fmt.Sprintf(" (see %s)", result.LogPath)
	}
	return line
}

func failureLine(step *Step, result Result) string {
	var line string
	if result.ExitCode >= 0 {
		line = fmt.Sprintf("✗ %s exited with code %d", step.Label(), result.ExitCode)
	} else {
		line = fmt.Sprintf("✗ %s failed", step.Label())
		if result.Detail != "" {
			line += ": " + result.Detail
		}
	}
	if result.LogPath != "" {
		line += fmt.Sprintf(" (see %s)", result.LogPath)
	}
	return line
}

// formatDuration formats a duration for human-readable output
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.2fμs", float64(d.Nanoseconds())/1000.0)
	} else if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d.Nanoseconds())/1000000.0)
	} else if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
}
