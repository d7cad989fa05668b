package execution

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/events"
	intctx "github.com/cpiprint/zap-notify/pkg/internal/context"
)

// Work is the job wrapped by an execution. Its return value is passed
// through to the caller.
type Work func(ctx context.Context) (any, error)

// Notifier sends the before or after notification of a schedule.
type Notifier interface {
	Notify(ctx context.Context, s *core.Schedule, typ core.NotificationType, exec *core.ExecutionResult) (bool, error)
}

// Batch statuses.
const (
	BatchSuccess = "success"
	BatchFailed  = "failed"
)

// BatchResult is the outcome of one schedule in ExecuteBatch.
type BatchResult struct {
	Status    string
	Result    any
	Error     error
	Execution *core.ExecutionResult
}

// Executor runs work between a schedule's notifications.
// It holds no per-execution state and is safe for concurrent use.
type Executor struct {
	notifier Notifier
	opts     Options

	mu         sync.RWMutex
	onBefore   []func(context.Context, *core.Schedule)
	onComplete []func(context.Context, *core.Schedule, *core.ExecutionResult)
	onFail     []func(context.Context, *core.Schedule, *core.ExecutionResult, error)
}

// New creates an Executor sending notifications through n.
func New(n Notifier, opts ...Option) *Executor {
	o := Options{
		Clock:   core.SystemClock(),
		Emitter: events.Nop,
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt.Apply(&o)
	}
	return &Executor{notifier: n, opts: o}
}

// OnBefore registers a hook called before the before-notification.
func (e *Executor) OnBefore(fn func(context.Context, *core.Schedule)) {
	e.mu.Lock()
	e.onBefore = append(e.onBefore, fn)
	e.mu.Unlock()
}

// OnComplete registers a hook called when work returns without error.
func (e *Executor) OnComplete(fn func(context.Context, *core.Schedule, *core.ExecutionResult)) {
	e.mu.Lock()
	e.onComplete = append(e.onComplete, fn)
	e.mu.Unlock()
}

// OnFail registers a hook called when work fails.
func (e *Executor) OnFail(fn func(context.Context, *core.Schedule, *core.ExecutionResult, error)) {
	e.mu.Lock()
	e.onFail = append(e.onFail, fn)
	e.mu.Unlock()
}

// Execute sends the before-notification, runs work and sends the
// after-notification with the execution details. A nil work is a no-op.
// When work fails the error is returned wrapped in a *core.WorkError.
func (e *Executor) Execute(ctx context.Context, s *core.Schedule, work Work) (any, error) {
	value, _, err := e.execute(ctx, s, work)
	return value, err
}

// ExecuteBatch runs Execute for every schedule. A failure is recorded in
// that schedule's BatchResult and does not stop the others.
//
// Results are keyed by schedule ID, so schedules must be saved and listed
// once. Unsaved schedules are not run and are reported together under ID 0
// with core.ErrUnsavedSchedule. A repeated ID is not run again; its first
// result is kept. Nil entries are ignored.
func (e *Executor) ExecuteBatch(ctx context.Context, schedules []*core.Schedule, work Work) map[uint]BatchResult {
	results := make(map[uint]BatchResult, len(schedules))
	for _, s := range schedules {
		switch {
		case s == nil:
			continue
		case s.ID == 0:
			e.opts.Logger.Warn("unsaved schedule skipped in batch", "schedule", s.Name)
			results[0] = BatchResult{Status: BatchFailed, Error: core.ErrUnsavedSchedule}
			continue
		}
		if _, seen := results[s.ID]; seen {
			e.opts.Logger.Warn("duplicate schedule skipped in batch",
				"schedule_id", s.ID, "error", core.ErrDuplicateSchedule)
			continue
		}
		value, result, err := e.execute(ctx, s, work)
		if err != nil {
			results[s.ID] = BatchResult{Status: BatchFailed, Error: err, Execution: result}
			continue
		}
		results[s.ID] = BatchResult{Status: BatchSuccess, Result: value, Execution: result}
	}
	return results
}

func (e *Executor) execute(ctx context.Context, s *core.Schedule, work Work) (any, *core.ExecutionResult, error) {
	if s == nil {
		return nil, nil, core.ErrNilSchedule
	}

	result := core.NewExecutionResult(s.ID, e.opts.Clock.Now())
	exec := intctx.NewExecution(s, result)
	ctx = intctx.WithExecution(ctx, exec)
	log := e.opts.Logger.With("schedule_id", s.ID, "execution_id", result.ID)

	e.callBeforeHooks(ctx, s)
	e.notify(ctx, log, s, core.NotifyBefore, nil)
	exec.Transition(core.StateBeforeSent)

	result.StartedAt = e.opts.Clock.Now()
	exec.Transition(core.StateExecuting)
	e.opts.Emitter.Emit(&core.ExecutionStarted{ScheduleID: s.ID, Timestamp: result.StartedAt})

	value, err := e.run(ctx, work)
	end := e.opts.Clock.Now()

	if err != nil {
		result.Fail(end, err.Error())
		exec.Transition(core.StateFailed)
		log.Error("schedule work failed", "error", err, "duration", result.Duration)
		e.callFailHooks(ctx, s, result, err)
		e.opts.Emitter.Emit(&core.ExecutionFailed{Result: result, Error: err, Timestamp: end})
	} else {
		result.Complete(end)
		exec.Transition(core.StateCompleted)
		e.callCompleteHooks(ctx, s, result)
		e.opts.Emitter.Emit(&core.ExecutionCompleted{Result: result, Timestamp: end})
	}

	e.notify(ctx, log, s, core.NotifyAfter, result)
	exec.Transition(core.StateAfterSent)
	exec.Transition(core.StateDone)

	if err != nil {
		return value, result, &core.WorkError{ScheduleID: s.ID, Err: err}
	}
	return value, result, nil
}

func (e *Executor) run(ctx context.Context, work Work) (value any, err error) {
	if work == nil {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &core.PanicError{Value: r}
		}
	}()
	return work(ctx)
}

// notify sends one notification, logging and swallowing any failure.
func (e *Executor) notify(ctx context.Context, log *slog.Logger, s *core.Schedule, typ core.NotificationType, result *core.ExecutionResult) {
	if e.notifier == nil {
		return
	}
	sent, err := e.notifier.Notify(ctx, s, typ, result)
	if err != nil {
		log.Error("execution notification failed", "type", typ, "error", err)
		return
	}
	if sent {
		log.Info("execution notification sent", "type", typ)
	}
}

func (e *Executor) callBeforeHooks(ctx context.Context, s *core.Schedule) {
	e.mu.RLock()
	hooks := make([]func(context.Context, *core.Schedule), len(e.onBefore))
	copy(hooks, e.onBefore)
	e.mu.RUnlock()

	for _, fn := range hooks {
		fn(ctx, s)
	}
}

func (e *Executor) callCompleteHooks(ctx context.Context, s *core.Schedule, r *core.ExecutionResult) {
	e.mu.RLock()
	hooks := make([]func(context.Context, *core.Schedule, *core.ExecutionResult), len(e.onComplete))
	copy(hooks, e.onComplete)
	e.mu.RUnlock()

	for _, fn := range hooks {
		fn(ctx, s, r)
	}
}

func (e *Executor) callFailHooks(ctx context.Context, s *core.Schedule, r *core.ExecutionResult, err error) {
	e.mu.RLock()
	hooks := make([]func(context.Context, *core.Schedule, *core.ExecutionResult, error), len(e.onFail))
	copy(hooks, e.onFail)
	e.mu.RUnlock()

	for _, fn := range hooks {
		fn(ctx, s, r, err)
	}
}
