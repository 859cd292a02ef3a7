package recipe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/legl/legl-dev/internal/executor"
)

// StartOptions configures Start.
type StartOptions struct {
	HTTPS bool
	// Logs lists services whose logs are followed after the stack is up.
	Logs []string
}

// Start brings the compose stack up. With Logs set the stack is detached and
// the named services' logs are followed concurrently.
func (b *Builder) Start(opts StartOptions) (*Plan, error) {
	var env []executor.Option
	if opts.HTTPS {
		env = append(env, executor.WithEnv(map[string]string{"HTTPS": "true"}))
	}

	services := cleanList(opts.Logs)
	if len(services) == 0 {
		l := b.list(true)
		l.add(b.compose("up"), "Starting containers", "start", env...)
		return l.plan("start")
	}

	up := b.list(false)
	up.add(b.compose("up", "-d"), "Starting containers", "start", env...)
	plan, err := up.plan("start")
	if err != nil {
		return nil, err
	}

	follow := executor.NewSequence(executor.WithConcurrency(true))
	for _, svc := range services {
		step, err := executor.New(b.compose("logs", "-f", svc),
			executor.WithDescription("Following "+svc+" logs"),
			executor.WithVerbose(true),
		)
		if err != nil {
			return nil, fmt.Errorf("building step for service %q: %w", svc, err)
		}
		follow.Add(step)
	}
	plan.Stages = append(plan.Stages, follow)
	return plan, nil
}

// BuildOptions configures Build.
type BuildOptions struct {
	NoCache bool
}

// Build rebuilds the images and reseeds the database from factories.
func (b *Builder) Build(opts BuildOptions) (*Plan, error) {
	noCache := ""
	if opts.NoCache {
		noCache = "--no-cache"
	}

	l := b.list(false)
	l.add(b.compose("build", noCache), "Building images", "build")
	l.add(b.compose("up", "-d"), "Starting containers", "build")
	l.add(b.manage("migrate"), "Running migrations", "build")
	l.add(b.manage("flush", "--noinput"), "Flushing database", "build")
	l.add(b.manage("run_factories"), "Running factories", "build")
	l.add(b.manage("seed_emails"), "Seeding emails", "build")
	l.add(b.compose("stop"), "Stopping containers", "build")

	plan, err := l.plan("build")
	if err != nil {
		return nil, err
	}
	plan.Done = "Build complete 🚀"
	return plan, nil
}

// PytestOptions mirrors the pytest subcommand flags.
type PytestOptions struct {
	FullDiff       bool
	CreateDB       bool
	LastFailed     bool
	Warnings       bool
	GUI            bool
	SnapshotUpdate bool
	ShowCapture    bool
	Parallel       bool
	AllLogs        bool
	// Path selects a test, e.g. "app/tests/test_x.py::TestX::test_y".
	Path string
}

// Pytest runs the backend unit tests and optionally opens the HTML report.
func (b *Builder) Pytest(opts PytestOptions) (*Plan, error) {
	args := []string{"exec", b.cfg.BackendService, "pytest", "--html=unit_test_results.html"}
	if opts.CreateDB {
		args = append(args, "--create-db")
	}
	if opts.FullDiff {
		args = append(args, "-vv")
	}
	if opts.LastFailed {
		args = append(args, "--lf")
	}
	if !opts.Warnings {
		args = append(args, "--disable-warnings")
	}
	if !opts.AllLogs {
		args = append(args, "--show-capture=log")
	}
	if opts.SnapshotUpdate {
		args = append(args, "--snapshot-update")
	}
	if opts.ShowCapture {
		args = append(args, "--show-capture=stdout")
	}
	if opts.Parallel {
		args = append(args, "-n", "auto", "--dist", "loadscope")
	}
	args = append(args, opts.Path)

	l := b.list(false)
	l.add(b.compose(args...), "Running pytest", "pytest")
	if opts.GUI {
		l.add(join(b.cfg.OpenCommand, "./unit_test_results.html"), "Opening test report", "pytest")
	}
	return l.plan("pytest")
}

// FormatOptions configures Format.
type FormatOptions struct {
	Push bool
}

// Format runs isort, black and prettier, then optionally commits and pushes.
func (b *Builder) Format(opts FormatOptions) (*Plan, error) {
	l := b.list(false)
	l.add(b.compose("exec", b.cfg.BackendService, "isort", "."), "Sorting imports", "format")
	l.add(b.compose("exec", b.cfg.BackendService, "black", "."), "Formatting Python", "format")
	l.add(b.compose("exec", b.cfg.FrontendService, "yarn", "run", "format:prettier"), "Formatting JavaScript", "format")
	if opts.Push {
		l.add("git stage .", "Staging changes", "format")
		l.add("git commit -m formatting", "Committing", "format")
		l.add("git push", "Pushing", "format")
	}
	return l.plan("format")
}

// Cypress opens the Cypress runner in the frontend service.
func (b *Builder) Cypress() (*Plan, error) {
	l := b.list(true)
	l.add(b.compose("exec", b.cfg.FrontendService, "yarn", "run", "cypress", "open"), "Opening Cypress", "cypress")
	return l.plan("cypress")
}

// MigrateOptions configures Migrate. Run is normally true.
type MigrateOptions struct {
	Merge bool
	Make  bool
	Run   bool
}

// ErrNothingToDo is returned when the selected options produce no steps.
var ErrNothingToDo = errors.New("nothing to do")

// Migrate merges, makes and applies migrations as selected.
func (b *Builder) Migrate(opts MigrateOptions) (*Plan, error) {
	l := b.list(false)
	if opts.Merge {
		l.add(b.manage("makemigrations", "--merge"), "Merging migrations", "migrate")
	}
	if opts.Make {
		l.add(b.manage("makemigrations"), "Making migrations", "migrate")
	}
	if opts.Run {
		l.add(b.manage("migrate"), "Running migrations", "migrate")
	}
	if l.err == nil && len(l.steps) == 0 {
		return nil, fmt.Errorf("migrate: %w", ErrNothingToDo)
	}
	return l.plan("migrate")
}

// FactoriesOptions configures Factories. Emails is normally true.
type FactoriesOptions struct {
	Emails bool
}

// Factories flushes the database and recreates factory data.
func (b *Builder) Factories(opts FactoriesOptions) (*Plan, error) {
	l := b.list(false)
	l.add(b.manage("flush", "--noinput"), "Flushing database", "factories")
	l.add(b.manage("run_factories"), "Running factories", "factories")
	if opts.Emails {
		l.add(b.manage("seed_emails"), "Seeding emails", "factories")
	}
	return l.plan("factories")
}

// GitClean deletes local branches already merged, keeping protected ones.
func (b *Builder) GitClean() (*Plan, error) {
	keep := append([]string{`^\*`}, b.cfg.ProtectedBranches...)
	command := fmt.Sprintf(`git branch --merged | egrep -v "(%s)" | xargs git branch -d`, strings.Join(keep, "|"))

	l := b.list(false)
	l.add(command, "Cleaning merged branches", "gitclean", executor.WithShell(true))
	return l.plan("gitclean")
}

// JSTest runs the frontend unit tests and opens their report.
func (b *Builder) JSTest() (*Plan, error) {
	l := b.list(true)
	l.add(b.compose("exec", b.cfg.FrontendService, "yarn", "run", "test"), "Running JS tests", "jstest")
	l.add(join(b.cfg.OpenCommand, "js-test-results/index.html"), "Opening test report", "jstest")
	return l.plan("jstest")
}

// InstallOptions configures Install. Exactly one of Pip and Yarn must be set.
type InstallOptions struct {
	Package string
	Pip     bool
	Yarn    bool
	Upgrade bool
}

// Install adds a package to the backend (pip) or frontend (yarn) container.
// Pip installs are pinned into requirements.txt afterwards.
func (b *Builder) Install(opts InstallOptions) (*Plan, error) {
	pkg := strings.TrimSpace(opts.Package)
	if pkg == "" {
		return nil, errors.New("install: a package name is required")
	}
	if strings.ContainsAny(pkg, " \t\n|&;<>()$`\\\"'*?") {
		return nil, fmt.Errorf("install: invalid package name %q", pkg)
	}
	if opts.Pip == opts.Yarn {
		return nil, errors.New("install: choose exactly one of --pip or --yarn")
	}

	l := b.list(false)
	if opts.Pip {
		upgrade := ""
		if opts.Upgrade {
			upgrade = "--upgrade"
		}
		l.add(join("docker exec", b.cfg.BackendService, "pip install", upgrade, pkg), "Installing "+pkg, "install")
		l.add(fmt.Sprintf("docker exec %s pip freeze | grep %s >> requirements.txt", b.cfg.BackendService, pkg),
			"Pinning "+pkg, "install", executor.WithShell(true))
		return l.plan("install")
	}

	verb := "add"
	if opts.Upgrade {
		verb = "up"
	}
	l.add(join("docker exec", b.cfg.FrontendService, "yarn", verb, pkg), "Installing "+pkg, "install")
	return l.plan("install")
}

// Remote opens an interactive shell in a service container.
func (b *Builder) Remote(service string) (*Plan, error) {
	if service = strings.TrimSpace(service); service == "" {
		service = b.cfg.BackendService
	}
	step, err := executor.New(b.compose("exec", service, "bash"),
		executor.WithDescription("Shell in "+service),
		executor.WithVerbose(true),
	)
	if err != nil {
		return nil, err
	}
	return &Plan{Name: "remote", Stages: []*executor.Sequence{executor.NewSequence(executor.WithSteps(step))}}, nil
}

// Pipeline builds a user-defined pipeline from the configuration.
func (b *Builder) Pipeline(name string) (*Plan, error) {
	p, ok := b.cfg.Pipeline(name)
	if !ok {
		return nil, &UnknownPipelineError{Name: name, Available: b.cfg.PipelineNames()}
	}
	seq, err := p.Sequence(b.verbose)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", name, err)
	}
	return &Plan{Name: name, Stages: []*executor.Sequence{seq}}, nil
}

// UnknownPipelineError reports a pipeline name missing from the configuration.
type UnknownPipelineError struct {
	Name      string
	Available []string
}

func (e *UnknownPipelineError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown pipeline %q (no pipelines configured)", e.Name)
	}
	return fmt.Sprintf("unknown pipeline %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
