package executor

import (
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

type spinnerTickMsg struct{}

type spinnerDoneMsg struct {
	line string
}

func spinnerCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg { return spinnerTickMsg{} })
}

// spinnerModel renders one transient status line that animates until the
// step finishes and is then replaced by its final line.
type spinnerModel struct {
	label string
	start time.Time
	tick  int
	final string
	now   func() time.Time
}

func newSpinnerModel(label string) spinnerModel {
	return spinnerModel{label: label, start: time.Now(), now: time.Now}
}

func (m spinnerModel) Init() tea.Cmd {
	return spinnerCmd()
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTickMsg:
		if m.final != "" {
			return m, nil
		}
		m.tick = (m.tick + 1) % len(spinnerFrames)
		return m, spinnerCmd()
	case spinnerDoneMsg:
		m.final = msg.line
		return m, tea.Quit
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.final != "" {
		return m.final + "\n"
	}
	elapsed := m.now().Sub(m.start).Truncate(time.Second)
	return fmt.Sprintf("%c %s (%s)", spinnerFrames[m.tick%len(spinnerFrames)], m.label, elapsed)
}

// SpinnerReporter shows an animated status line for captured steps. Only one
// spinner owns the terminal at a time: verbose steps, and steps that start
// while another spinner is active, are reported as plain lines.
type SpinnerReporter struct {
	mu     sync.Mutex
	out    io.Writer
	lines  *LineReporter
	active bool
}

// NewSpinnerReporter creates a reporter drawing on out, which should be a
// terminal.
func NewSpinnerReporter(out io.Writer) *SpinnerReporter {
	return &SpinnerReporter{out: out, lines: NewLineReporter(out)}
}

// Begin starts a spinner for step, or falls back to a line.
func (r *SpinnerReporter) Begin(step *Step) Progress {
	if step.Verbose() || !r.acquire() {
		return r.lines.Begin(step)
	}

	p := tea.NewProgram(newSpinnerModel(step.Label()),
		tea.WithOutput(r.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	sp := &spinnerProgress{reporter: r, step: step, program: p, done: make(chan struct{})}
	go func() {
		defer close(sp.done)
		// A failed program only loses the animation; the final line is
		// printed by finish in that case.
		if _, err := p.Run(); err != nil {
			sp.runErr = err
		}
	}()
	return sp
}

// ReportSummary prints the pipeline totals as a plain line.
func (r *SpinnerReporter) ReportSummary(s Summary) {
	r.lines.ReportSummary(s)
}

func (r *SpinnerReporter) acquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return false
	}
	r.active = true
	return true
}

func (r *SpinnerReporter) release() {
	r.mu.Lock()
	r.active = false
	r.mu.Unlock()
}

type spinnerProgress struct {
	reporter *SpinnerReporter
	step     *Step
	program  *tea.Program
	done     chan struct{}
	runErr   error
}

func (p *spinnerProgress) Succeed(result Result) { p.finish(successLine(p.step, result)) }
func (p *spinnerProgress) Warn(result Result)    { p.finish(warningLine(p.step, result)) }
func (p *spinnerProgress) Fail(result Result)    { p.finish(failureLine(p.step, result)) }

func (p *spinnerProgress) finish(line string) {
	p.program.Send(spinnerDoneMsg{line: line})
	<-p.done
	if p.runErr != nil {
		p.reporter.lines.printf("%s\n", line)
	}
	p.reporter.release()
}
