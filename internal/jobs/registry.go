package jobs

import "context"

// Handler executes one job type.
type Handler interface {
	Type() string
	Handle(ctx context.Context, env Envelope) error
}

// Registry maps job types to handlers.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry(handlers ...Handler) *Registry {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		r.Register(h)
	}
	return r
}

// Register adds h, replacing any handler for the same type.
func (r *Registry) Register(h Handler) {
	if h == nil {
		return
	}
	r.handlers[h.Type()] = h
}

func (r *Registry) Lookup(jobType string) (Handler, bool) {
	h, ok := r.handlers[jobType]
	return h, ok
}
