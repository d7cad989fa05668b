package core

import (
	"context"
	"fmt"
)

// Target is an addressable notification recipient, typically the
// schedulable entity that owns a schedule.
type Target struct {
	Type string
	ID   string
	Name string
	// Routes maps a channel to its address, such as an email or chat id.
	Routes map[Channel]string
}

// Route returns the address for a channel, if any.
func (t Target) Route(ch Channel) (string, bool) {
	r, ok := t.Routes[ch]
	return r, ok && r != ""
}

func (t Target) String() string {
	return fmt.Sprintf("%s#%s", t.Type, t.ID)
}

// TargetResolver enriches the target of a schedule, for example with
// channel routes looked up from a user table.
type TargetResolver interface {
	ResolveTarget(ctx context.Context, s *Schedule) (Target, error)
}

// TargetResolverFunc adapts a function to TargetResolver.
type TargetResolverFunc func(ctx context.Context, s *Schedule) (Target, error)

// ResolveTarget implements TargetResolver.
func (f TargetResolverFunc) ResolveTarget(ctx context.Context, s *Schedule) (Target, error) {
	return f(ctx, s)
}
