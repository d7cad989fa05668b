// Package context provides context helpers for the zap package.
package context

import (
	"context"
	"sync"
	"time"

	"github.com/cpiprint/zap-notify/pkg/core"
)

// ExecutionKey is the key for storing an execution in context.Context.
type ExecutionKey struct{}

// Execution tracks one orchestrated run of a schedule's work.
type Execution struct {
	Schedule *core.Schedule
	Result   *core.ExecutionResult

	mu      sync.Mutex
	state   core.ExecutionState
	history []core.ExecutionState
}

// NewExecution creates an execution in the idle state.
func NewExecution(s *core.Schedule, r *core.ExecutionResult) *Execution {
	return &Execution{
		Schedule: s,
		Result:   r,
		state:    core.StateIdle,
		history:  []core.ExecutionState{core.StateIdle},
	}
}

// State returns the current state.
func (e *Execution) State() core.ExecutionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Transition moves to the next state.
func (e *Execution) Transition(s core.ExecutionState) {
	e.mu.Lock()
	e.state = s
	e.history = append(e.history, s)
	e.mu.Unlock()
}

// History returns every state entered, in order.
func (e *Execution) History() []core.ExecutionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]core.ExecutionState, len(e.history))
	copy(out, e.history)
	return out
}

// GetExecution retrieves the execution from a context.Context.
func GetExecution(ctx context.Context) *Execution {
	if e, ok := ctx.Value(ExecutionKey{}).(*Execution); ok {
		return e
	}
	return nil
}

// WithExecution adds an execution to a context.Context.
func WithExecution(ctx context.Context, e *Execution) context.Context {
	return context.WithValue(ctx, ExecutionKey{}, e)
}

// FiringKey is the key for storing a tick firing in context.Context.
type FiringKey struct{}

// Firing identifies the ledger triple a tick is dispatching.
type Firing struct {
	Schedule *core.Schedule
	Period   *core.SchedulePeriod
	Type     core.NotificationType
	NotifyAt time.Time
}

// GetFiring retrieves the firing from a context.Context.
func GetFiring(ctx context.Context) *Firing {
	if f, ok := ctx.Value(FiringKey{}).(*Firing); ok {
		return f
	}
	return nil
}

// WithFiring adds a firing to a context.Context.
func WithFiring(ctx context.Context, f *Firing) context.Context {
	return context.WithValue(ctx, FiringKey{}, f)
}
