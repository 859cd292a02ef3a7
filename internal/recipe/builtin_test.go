package recipe

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legl/legl-dev/internal/config"
	"github.com/legl/legl-dev/internal/executor"
)

var testShell = []string{"sh", "-c"}

func argvs(plan *Plan) [][]string {
	var out [][]string
	for _, step := range plan.Steps() {
		out = append(out, step.Argv(testShell))
	}
	return out
}

func assertArgv(t *testing.T, want [][]string, plan *Plan) {
	t.Helper()
	if diff := cmp.Diff(want, argvs(plan)); diff != "" {
		t.Errorf("argv mismatch (-want +got):\n%s", diff)
	}
}

func newBuilder() *Builder {
	return NewBuilder(config.Defaults(), nil)
}

func TestStart(t *testing.T) {
	plan, err := newBuilder().Start(StartOptions{})
	require.NoError(t, err)

	assertArgv(t, [][]string{{"docker", "compose", "up"}}, plan)
	step := plan.Steps()[0]
	assert.True(t, step.Verbose(), "start streams by default")
	assert.Empty(t, step.Env())
}

func TestStart_HTTPS(t *testing.T) {
	plan, err := newBuilder().Start(StartOptions{HTTPS: true})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"HTTPS": "true"}, plan.Steps()[0].Env())
}

func TestStart_FollowLogs(t *testing.T) {
	plan, err := newBuilder().Start(StartOptions{Logs: []string{"backend, frontend", "", "worker"}})
	require.NoError(t, err)

	require.Len(t, plan.Stages, 2)
	assert.False(t, plan.Stages[0].Concurrent())
	assert.True(t, plan.Stages[1].Concurrent())
	assertArgv(t, [][]string{
		{"docker", "compose", "up", "-d"},
		{"docker", "compose", "logs", "-f", "backend"},
		{"docker", "compose", "logs", "-f", "frontend"},
		{"docker", "compose", "logs", "-f", "worker"},
	}, plan)
	for _, step := range plan.Stages[1].Steps() {
		assert.True(t, step.Verbose())
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		opts  BuildOptions
		first []string
	}{
		{name: "cached", first: []string{"docker", "compose", "build"}},
		{name: "no cache", opts: BuildOptions{NoCache: true}, first: []string{"docker", "compose", "build", "--no-cache"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := newBuilder().Build(tt.opts)
			require.NoError(t, err)

			assertArgv(t, [][]string{
				tt.first,
				{"docker", "compose", "up", "-d"},
				{"docker", "compose", "exec", "backend", "python", "manage.py", "migrate"},
				{"docker", "compose", "exec", "backend", "python", "manage.py", "flush", "--noinput"},
				{"docker", "compose", "exec", "backend", "python", "manage.py", "run_factories"},
				{"docker", "compose", "exec", "backend", "python", "manage.py", "seed_emails"},
				{"docker", "compose", "stop"},
			}, plan)
			assert.Equal(t, "Build complete 🚀", plan.Done)
			for _, step := range plan.Steps() {
				assert.False(t, step.Verbose())
				assert.Equal(t, "build", step.LogTarget())
			}
		})
	}
}

func TestPytest(t *testing.T) {
	base := []string{"docker", "compose", "exec", "backend", "pytest", "--html=unit_test_results.html"}
	openReport := []string{"open", "./unit_test_results.html"}

	tests := []struct {
		name string
		opts PytestOptions
		want [][]string
	}{
		{
			name: "defaults",
			opts: PytestOptions{GUI: true},
			want: [][]string{append(slices.Clone(base), "--disable-warnings", "--show-capture=log"), openReport},
		},
		{
			name: "no gui",
			opts: PytestOptions{},
			want: [][]string{append(slices.Clone(base), "--disable-warnings", "--show-capture=log")},
		},
		{
			name: "every flag",
			opts: PytestOptions{
				FullDiff: true, CreateDB: true, LastFailed: true, Warnings: true,
				SnapshotUpdate: true, ShowCapture: true, Parallel: true, AllLogs: true,
				Path: "app/tests/test_views.py::TestViews::test_get",
			},
			want: [][]string{append(slices.Clone(base),
				"--create-db", "-vv", "--lf", "--snapshot-update", "--show-capture=stdout",
				"-n", "auto", "--dist", "loadscope", "app/tests/test_views.py::TestViews::test_get",
			)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := newBuilder().Pytest(tt.opts)
			require.NoError(t, err)
			assertArgv(t, tt.want, plan)
		})
	}
}

func TestFormat(t *testing.T) {
	lint := [][]string{
		{"docker", "compose", "exec", "backend", "isort", "."},
		{"docker", "compose", "exec", "backend", "black", "."},
		{"docker", "compose", "exec", "frontend", "yarn", "run", "format:prettier"},
	}

	plan, err := newBuilder().Format(FormatOptions{})
	require.NoError(t, err)
	assertArgv(t, lint, plan)

	plan, err = newBuilder().Format(FormatOptions{Push: true})
	require.NoError(t, err)
	assertArgv(t, append(slices.Clone(lint),
		[]string{"git", "stage", "."},
		[]string{"git", "commit", "-m", "formatting"},
		[]string{"git", "push"},
	), plan)
}

func TestCypress(t *testing.T) {
	plan, err := newBuilder().Cypress()
	require.NoError(t, err)
	assertArgv(t, [][]string{{"docker", "compose", "exec", "frontend", "yarn", "run", "cypress", "open"}}, plan)
	assert.True(t, plan.Steps()[0].Verbose())
}

func TestMigrate(t *testing.T) {
	manage := []string{"docker", "compose", "exec", "backend", "python", "manage.py"}
	with := func(args ...string) []string { return append(slices.Clone(manage), args...) }

	tests := []struct {
		name string
		opts MigrateOptions
		want [][]string
	}{
		{name: "run only", opts: MigrateOptions{Run: true}, want: [][]string{with("migrate")}},
		{name: "make then run", opts: MigrateOptions{Make: true, Run: true}, want: [][]string{with("makemigrations"), with("migrate")}},
		{
			name: "merge make run",
			opts: MigrateOptions{Merge: true, Make: true, Run: true},
			want: [][]string{with("makemigrations", "--merge"), with("makemigrations"), with("migrate")},
		},
		{name: "make without run", opts: MigrateOptions{Make: true}, want: [][]string{with("makemigrations")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := newBuilder().Migrate(tt.opts)
			require.NoError(t, err)
			assertArgv(t, tt.want, plan)
		})
	}

	_, err := newBuilder().Migrate(MigrateOptions{})
	assert.True(t, errors.Is(err, ErrNothingToDo))
}

func TestFactories(t *testing.T) {
	plan, err := newBuilder().Factories(FactoriesOptions{Emails: true})
	require.NoError(t, err)
	assert.Equal(t, 3, plan.Len())

	plan, err = newBuilder().Factories(FactoriesOptions{})
	require.NoError(t, err)
	assertArgv(t, [][]string{
		{"docker", "compose", "exec", "backend", "python", "manage.py", "flush", "--noinput"},
		{"docker", "compose", "exec", "backend", "python", "manage.py", "run_factories"},
	}, plan)
}

func TestGitClean(t *testing.T) {
	plan, err := newBuilder().GitClean()
	require.NoError(t, err)

	assertArgv(t, [][]string{{"sh", "-c", `git branch --merged | egrep -v "(^\*|master|dev)" | xargs git branch -d`}}, plan)
	assert.True(t, plan.Steps()[0].Shell())

	cfg := config.Defaults()
	cfg.ProtectedBranches = []string{"main"}
	plan, err = NewBuilder(cfg, nil).GitClean()
	require.NoError(t, err)
	assert.Equal(t, `git branch --merged | egrep -v "(^\*|main)" | xargs git branch -d`, plan.Steps()[0].Command())
}

func TestJSTest(t *testing.T) {
	plan, err := newBuilder().JSTest()
	require.NoError(t, err)
	assertArgv(t, [][]string{
		{"docker", "compose", "exec", "frontend", "yarn", "run", "test"},
		{"open", "js-test-results/index.html"},
	}, plan)
}

func TestInstall(t *testing.T) {
	freeze := []string{"sh", "-c", "docker exec backend pip freeze | grep example >> requirements.txt"}

	tests := []struct {
		name string
		opts InstallOptions
		want [][]string
	}{
		{
			name: "pip",
			opts: InstallOptions{Package: "example", Pip: true},
			want: [][]string{{"docker", "exec", "backend", "pip", "install", "example"}, freeze},
		},
		{
			name: "pip upgrade",
			opts: InstallOptions{Package: "example", Pip: true, Upgrade: true},
			want: [][]string{{"docker", "exec", "backend", "pip", "install", "--upgrade", "example"}, freeze},
		},
		{
			name: "yarn",
			opts: InstallOptions{Package: "example", Yarn: true},
			want: [][]string{{"docker", "exec", "frontend", "yarn", "add", "example"}},
		},
		{
			name: "yarn upgrade",
			opts: InstallOptions{Package: "example", Yarn: true, Upgrade: true},
			want: [][]string{{"docker", "exec", "frontend", "yarn", "up", "example"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := newBuilder().Install(tt.opts)
			require.NoError(t, err)
			assertArgv(t, tt.want, plan)
		})
	}
}

func TestInstall_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opts InstallOptions
	}{
		{name: "no package", opts: InstallOptions{Pip: true}},
		{name: "shell metacharacters", opts: InstallOptions{Package: "x; rm -rf /", Pip: true}},
		{name: "neither manager", opts: InstallOptions{Package: "example"}},
		{name: "both managers", opts: InstallOptions{Package: "example", Pip: true, Yarn: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newBuilder().Install(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestRemote(t *testing.T) {
	plan, err := newBuilder().Remote("")
	require.NoError(t, err)
	assertArgv(t, [][]string{{"docker", "compose", "exec", "backend", "bash"}}, plan)

	off := false
	plan, err = NewBuilder(config.Defaults(), &off).Remote("frontend")
	require.NoError(t, err)
	assertArgv(t, [][]string{{"docker", "compose", "exec", "frontend", "bash"}}, plan)
	assert.True(t, plan.Steps()[0].Verbose(), "an interactive shell always streams")
}

func TestCustomCompose(t *testing.T) {
	cfg := config.Defaults()
	cfg.Compose = "docker-compose -f docker-compose.dev.yml"
	cfg.BackendService = "api"

	plan, err := NewBuilder(cfg, nil).Migrate(MigrateOptions{Run: true})
	require.NoError(t, err)
	assertArgv(t, [][]string{{"docker-compose", "-f", "docker-compose.dev.yml", "exec", "api", "python", "manage.py", "migrate"}}, plan)
}

func TestVerboseOverride(t *testing.T) {
	on := true
	plan, err := NewBuilder(config.Defaults(), &on).Build(BuildOptions{})
	require.NoError(t, err)
	for _, step := range plan.Steps() {
		assert.True(t, step.Verbose())
	}

	off := false
	plan, err = NewBuilder(config.Defaults(), &off).JSTest()
	require.NoError(t, err)
	for _, step := range plan.Steps() {
		assert.False(t, step.Verbose())
	}
}

func TestPipeline(t *testing.T) {
	cfg := config.Defaults()
	cfg.Pipelines["lint"] = config.Pipeline{Steps: []config.StepConfig{
		{Command: "docker compose exec backend flake8"},
		{Command: "find . -name '*.pyc' -delete", Shell: true},
	}}

	plan, err := NewBuilder(cfg, nil).Pipeline("lint")
	require.NoError(t, err)
	assertArgv(t, [][]string{
		{"docker", "compose", "exec", "backend", "flake8"},
		{"sh", "-c", "find . -name '*.pyc' -delete"},
	}, plan)

	_, err = NewBuilder(cfg, nil).Pipeline("deploy")
	var unknown *UnknownPipelineError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"lint"}, unknown.Available)
	assert.Contains(t, err.Error(), "available: lint")
}

// Running a plan spawns exactly the argv the recipe describes, in order.
func TestInstall_RunsExpectedCommands(t *testing.T) {
	var mu sync.Mutex
	var calls [][]string
	launcher := executor.LauncherFunc(func(cmd *exec.Cmd) error {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, slices.Clone(cmd.Args))
		return nil
	})

	plan, err := newBuilder().Install(InstallOptions{Package: "example", Pip: true})
	require.NoError(t, err)

	rt := &executor.Runtime{
		Launcher: launcher,
		Logs:     executor.NewLogStore(t.TempDir()),
		Reporter: executor.NewLineReporter(io.Discard),
		Shell:    testShell,
	}
	for _, stage := range plan.Stages {
		stage.Run(context.Background(), rt).Wait()
	}

	assert.Equal(t, [][]string{
		{"docker", "exec", "backend", "pip", "install", "example"},
		{"sh", "-c", "docker exec backend pip freeze | grep example >> requirements.txt"},
	}, calls)
}
