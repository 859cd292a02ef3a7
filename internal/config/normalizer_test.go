package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legl/legl-dev/internal/executor"
)

func TestStepConfig_Step(t *testing.T) {
	verbose := true
	sc := StepConfig{
		Command:     "git push",
		Shell:       true,
		Description: "Pushing",
		Log:         "push",
		Verbose:     &verbose,
		ExitPolicy:  "lenient",
		Env:         map[string]string{"GIT_TRACE": "1"},
		WorkDir:     "frontend",
	}

	step, err := sc.Step()
	require.NoError(t, err)

	assert.Equal(t, "git push", step.Command())
	assert.True(t, step.Shell())
	assert.Equal(t, "Pushing", step.Description())
	assert.Equal(t, "push", step.LogTarget())
	assert.True(t, step.Verbose())
	assert.Equal(t, executor.ExitPolicyLenient, step.ExitPolicy())
	assert.Equal(t, map[string]string{"GIT_TRACE": "1"}, step.Env())
	assert.Equal(t, "frontend", step.WorkDir())
}

func TestStepConfig_VerboseDefault(t *testing.T) {
	step, err := StepConfig{Command: "ls"}.Step()
	require.NoError(t, err)
	assert.False(t, step.Verbose())

	opts := StepConfig{Command: "ls"}.Options(true)
	step, err = executor.New("ls", opts...)
	require.NoError(t, err)
	assert.True(t, step.Verbose())
}

func TestStepConfig_StepInvalid(t *testing.T) {
	_, err := StepConfig{Command: ""}.Step()
	var invalid *executor.InvalidStepError
	assert.ErrorAs(t, err, &invalid)
}

func TestPipeline_Sequence(t *testing.T) {
	off := false
	p := Pipeline{
		Concurrent: true,
		Steps: []StepConfig{
			{Command: "docker compose logs -f backend"},
			{Command: "docker compose logs -f frontend", Verbose: &off},
		},
	}

	seq, err := p.Sequence(nil)
	require.NoError(t, err)
	assert.True(t, seq.Concurrent())
	require.Equal(t, 2, seq.Len())
	assert.Equal(t, "docker compose logs -f backend", seq.Steps()[0].Command())

	on := true
	seq, err = p.Sequence(&on)
	require.NoError(t, err)
	for _, step := range seq.Steps() {
		assert.True(t, step.Verbose(), "override applies to every step")
	}

	_, err = Pipeline{Steps: []StepConfig{{Command: "ls"}, {Command: ""}}}.Sequence(nil)
	assert.Error(t, err)
}
