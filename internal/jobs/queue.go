package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Queue publishes jobs onto a Redis list.
type Queue struct {
	store redis.JobStore
	name  string
	now   func() time.Time
}

func NewQueue(store redis.JobStore, name string) (*Queue, error) {
	if store == nil {
		return nil, fmt.Errorf("job store required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("queue name required")
	}
	return &Queue{store: store, name: name, now: time.Now}, nil
}

func (q *Queue) Name() string {
	return q.name
}

// Enqueue wraps payload in an envelope and pushes it for immediate delivery.
func (q *Queue) Enqueue(ctx context.Context, jobType string, payload any) error {
	env, err := newEnvelope(jobType, payload, q.now())
	if err != nil {
		return err
	}
	raw, err := env.encode()
	if err != nil {
		return err
	}
	if err := q.store.PushJob(ctx, q.name, raw); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobType, err)
	}
	return nil
}
