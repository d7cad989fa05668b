package context

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cpiprint/zap-notify/pkg/core"
)

func TestExecution_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetExecution(ctx))

	e := NewExecution(&core.Schedule{ID: 1}, core.NewExecutionResult(1, time.Now()))
	ctx = WithExecution(ctx, e)
	assert.Same(t, e, GetExecution(ctx))
}

func TestExecution_Transition(t *testing.T) {
	e := NewExecution(&core.Schedule{ID: 1}, nil)
	assert.Equal(t, core.StateIdle, e.State())

	e.Transition(core.StateExecuting)
	e.Transition(core.StateCompleted)

	assert.Equal(t, core.StateCompleted, e.State())
	assert.Equal(t, []core.ExecutionState{core.StateIdle, core.StateExecuting, core.StateCompleted}, e.History())
}

func TestFiring_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetFiring(ctx))

	f := &Firing{Type: core.NotifyBefore, NotifyAt: time.Now()}
	assert.Same(t, f, GetFiring(WithFiring(ctx, f)))
}
