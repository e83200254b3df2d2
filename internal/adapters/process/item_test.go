package process_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabianoP/spine-engine/internal/adapters/process"
	"github.com/fabianoP/spine-engine/pkg/domain"
)

func TestItem_ForwardRunsCommand(t *testing.T) {
	item := process.New("Echo", "echo", process.Config{
		Command: "sh",
		Args:    []string{"-c", "echo hello"},
	})

	require.True(t, item.Execute(nil, domain.Forward))

	resources := item.OutputResources(domain.Forward)
	require.Len(t, resources, 1)
	out, ok := resources[0].(process.Output)
	require.True(t, ok)
	assert.Equal(t, "echo", out.Item)
	assert.Equal(t, "hello\n", out.Stdout)
}

func TestItem_BackwardIsPassThrough(t *testing.T) {
	item := process.New("Echo", "echo", process.Config{Command: "false"})

	assert.True(t, item.Execute(nil, domain.Backward), "backward pass must not run the command")
	assert.Nil(t, item.OutputResources(domain.Backward))
}

func TestItem_FailingCommand(t *testing.T) {
	item := process.New("Fail", "fail", process.Config{
		Command: "sh",
		Args:    []string{"-c", "exit 3"},
	})

	assert.False(t, item.Execute(nil, domain.Forward))
}

func TestItem_StopKillsRunningCommand(t *testing.T) {
	item := process.New("Sleep", "sleep", process.Config{
		Command: "sh",
		Args:    []string{"-c", "sleep 30"},
	})

	done := make(chan bool, 1)
	go func() { done <- item.Execute(nil, domain.Forward) }()

	// Give the command a moment to start before signalling.
	time.Sleep(100 * time.Millisecond)
	item.StopExecution()

	select {
	case ok := <-done:
		assert.False(t, ok, "a killed command is a failed execution")
	case <-time.After(5 * time.Second):
		t.Fatal("Execute did not return after StopExecution")
	}
}

func TestItem_StopBeforeStartRefusesToRun(t *testing.T) {
	item := process.New("Echo", "echo", process.Config{Command: "true"})
	item.StopExecution()
	assert.False(t, item.Execute(nil, domain.Forward))
}

func TestFromConfig(t *testing.T) {
	t.Run("decodes config", func(t *testing.T) {
		item, err := process.FromConfig("Echo", "echo", map[string]any{
			"command": "echo",
			"args":    []string{"hi"},
		})
		require.NoError(t, err)
		assert.Equal(t, "echo", item.ID())
		assert.Equal(t, "Echo", item.Name())
	})

	t.Run("requires command", func(t *testing.T) {
		_, err := process.FromConfig("Echo", "echo", map[string]any{})
		assert.ErrorContains(t, err, "command is required")
	})
}
