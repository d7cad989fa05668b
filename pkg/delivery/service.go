package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/notification"
)

// Sender delivers one rendered payload on one channel.
type Sender interface {
	Send(ctx context.Context, target core.Target, p notification.Payload) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, target core.Target, p notification.Payload) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, target core.Target, p notification.Payload) error {
	return f(ctx, target, p)
}

// Stats counts deliveries since the service was created.
type Stats struct {
	Sent    int64
	Failed  int64
	Queued  int64
	Pending int
}

type job struct {
	id       string
	target   core.Target
	n        notification.Notification
	queuedAt time.Time
}

// Service routes notifications to channel senders.
type Service struct {
	opts    Options
	logger  *slog.Logger
	limiter *rate.Limiter

	mu      sync.RWMutex
	senders map[core.Channel]Sender
	queue   chan job
	closed  bool
	started bool

	wg     sync.WaitGroup
	sent   atomic.Int64
	failed atomic.Int64
	queued atomic.Int64
}

var _ notification.Delivery = (*Service)(nil)

// NewService creates a Service. Queued deliveries are processed once Start
// is called.
func NewService(opts ...Option) *Service {
	o := defaultOptions()
	for _, opt := range opts {
		opt.Apply(&o)
	}
	s := &Service{
		opts:    o,
		logger:  o.Logger,
		senders: make(map[core.Channel]Sender),
		queue:   make(chan job, o.QueueSize),
	}
	if o.RatePerSec > 0 {
		burst := o.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(o.RatePerSec), burst)
	}
	return s
}

// Register sets the sender for a channel.
func (s *Service) Register(ch core.Channel, sender Sender) {
	s.mu.Lock()
	s.senders[ch] = sender
	s.mu.Unlock()
}

// Channels returns the channels with a registered sender.
func (s *Service) Channels() []core.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Channel, 0, len(s.senders))
	for ch := range s.senders {
		out = append(out, ch)
	}
	return out
}

// SendNow renders and sends n on every channel it declares. Failures on one
// channel do not prevent the others; all failures are joined.
func (s *Service) SendNow(ctx context.Context, target core.Target, n notification.Notification) error {
	var errs []error
	for _, ch := range n.Via(target) {
		if err := s.deliver(ctx, target, n, ch); err != nil {
			errs = append(errs, &core.DeliveryError{Notification: n.Kind(), Channel: ch, Err: err})
		}
	}
	if len(errs) > 0 {
		s.failed.Add(1)
		return errors.Join(errs...)
	}
	s.sent.Add(1)
	return nil
}

// SendQueued enqueues n for the worker pool. It fails fast with
// core.ErrQueueFull or core.ErrDeliveryStopped.
func (s *Service) SendQueued(ctx context.Context, target core.Target, n notification.Notification) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return core.ErrDeliveryStopped
	}
	j := job{id: uuid.New().String(), target: target, n: n, queuedAt: time.Now()}
	select {
	case s.queue <- j:
		s.queued.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return core.ErrQueueFull
	}
}

// Start runs the worker pool. It blocks until ctx is cancelled, then stops
// accepting new deliveries and drains the queue within the drain timeout.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return errors.New("zap: delivery service already started")
	}
	s.started = true
	s.mu.Unlock()

	drainCtx, cancelDrain := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelDrain()

	for i := 0; i < s.opts.Workers; i++ {
		s.wg.Add(1)
		go s.processLoop(drainCtx)
	}
	s.logger.Info("delivery service started", "workers", s.opts.Workers, "queue_size", s.opts.QueueSize)

	<-ctx.Done()

	s.mu.Lock()
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.opts.DrainTimeout):
		cancelDrain()
		<-done
		s.logger.Warn("delivery drain timed out", "timeout", s.opts.DrainTimeout)
	}
	s.logger.Info("delivery service stopped", "sent", s.sent.Load(), "failed", s.failed.Load())
	return ctx.Err()
}

// Stats returns delivery counters.
func (s *Service) Stats() Stats {
	return Stats{
		Sent:    s.sent.Load(),
		Failed:  s.failed.Load(),
		Queued:  s.queued.Load(),
		Pending: len(s.queue),
	}
}

func (s *Service) processLoop(ctx context.Context) {
	defer s.wg.Done()
	for j := range s.queue {
		if err := s.SendNow(ctx, j.target, j.n); err != nil {
			s.logger.Error("queued notification delivery failed",
				"delivery_id", j.id,
				"notification", j.n.Kind(),
				"target", j.target.String(),
				"queued_for", time.Since(j.queuedAt),
				"error", err)
		}
	}
}

func (s *Service) deliver(ctx context.Context, target core.Target, n notification.Notification, ch core.Channel) error {
	s.mu.RLock()
	sender, ok := s.senders[ch]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrNoSender, ch)
	}
	payload, err := n.Render(ch, target)
	if err != nil {
		return err
	}
	return retryWithBackoff(ctx, s.opts.Retry, func() error {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		return sender.Send(ctx, target, payload)
	})
}
