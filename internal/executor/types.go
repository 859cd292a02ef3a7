package executor

import (
	"time"
)

// Status is the outcome of a single step run.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSuccess
	StatusWarning
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusWarning:
		return "warning"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ExitPolicy decides how a non-zero exit status is reported.
type ExitPolicy string

const (
	// ExitPolicyDefault is strict.
	ExitPolicyDefault ExitPolicy = ""
	// ExitPolicyStrict reports a non-zero exit as a hard failure.
	ExitPolicyStrict ExitPolicy = "strict"
	// ExitPolicyLenient reports a non-zero exit as a warning. It has no effect on
	// captured argv steps, which are always strict.
	ExitPolicyLenient ExitPolicy = "lenient"
)

// ParseExitPolicy converts configuration text into an ExitPolicy.
func ParseExitPolicy(s string) (ExitPolicy, error) {
	switch ExitPolicy(s) {
	case ExitPolicyDefault, ExitPolicyStrict, ExitPolicyLenient:
		return ExitPolicy(s), nil
	default:
		return ExitPolicyDefault, &InvalidPolicyError{Value: s}
	}
}

// Result is the typed outcome of Step.Run.
type Result struct {
	Status    Status        `json:"status"`
	ExitCode  int           `json:"exitCode"`
	Output    string        `json:"output,omitempty"`
	LogPath   string        `json:"logPath,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	Err       error         `json:"-"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`
}

// Succeeded reports whether the run finished without warnings or failures.
func (r Result) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Failed reports whether the run was a hard failure.
func (r Result) Failed() bool {
	return r.Status == StatusFailure
}

// Summary aggregates the results of a pipeline.
type Summary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Warnings  int           `json:"warnings"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Summarize counts results by status. Durations are summed, which is the wall
// time only for sequential pipelines.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			s.Succeeded++
		case StatusWarning:
			s.Warnings++
		case StatusFailure:
			s.Failed++
		}
		s.Duration += r.Duration
	}
	return s
}

// HasFailures reports whether any step hard-failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}
