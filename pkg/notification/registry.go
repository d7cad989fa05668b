package notification

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/security"
)

// ConstructorParamsKey is the payload key holding named constructor arguments.
const ConstructorParamsKey = "constructor_params"

// Factory builds a Notification for a schedule.
type Factory struct {
	// New builds the notification from the schedule and its stored payload.
	New func(s *core.Schedule, data map[string]any) (Notification, error)

	// Params names the arguments FromArgs expects, in order.
	Params []string

	// FromArgs builds the notification from constructor_params. Each name in
	// Params is looked up in the stored object; missing names are nil.
	FromArgs func(args []any) (Notification, error)
}

// Registry maps notification names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f Factory) error {
	if err := security.ValidateNotificationName(name); err != nil {
		return fmt.Errorf("%w: %q", err, name)
	}
	if f.New == nil {
		return fmt.Errorf("zap: factory %q has no New function", name)
	}
	if f.FromArgs == nil && len(f.Params) > 0 {
		return fmt.Errorf("zap: factory %q declares params without FromArgs", name)
	}
	r.mu.Lock()
	r.factories[name] = f
	r.mu.Unlock()
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build constructs the notification registered under name.
func (r *Registry) Build(name string, s *core.Schedule, data map[string]any) (Notification, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &core.NotificationNotFoundError{Name: name}
	}

	if params, ok := constructorParams(data); ok && f.FromArgs != nil {
		args := make([]any, len(f.Params))
		for i, p := range f.Params {
			args[i] = params[p]
		}
		return f.FromArgs(args)
	}
	return f.New(s, data)
}

func constructorParams(data map[string]any) (map[string]any, bool) {
	raw, ok := data[ConstructorParamsKey]
	if !ok || raw == nil {
		return nil, false
	}
	params, ok := raw.(map[string]any)
	return params, ok
}

// Arg converts a positional constructor argument to T. A nil argument yields
// the zero value and no error.
func Arg[T any](args []any, i int) (T, error) {
	var zero T
	if i >= len(args) || args[i] == nil {
		return zero, nil
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("zap: argument %d is %T, want %T", i, args[i], zero)
	}
	return v, nil
}
