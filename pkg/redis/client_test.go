package redis

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func TestSetNXAndGet(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	ok, err := client.SetNX(ctx, "k", "PROCESSING", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first SetNX to succeed, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "k", "PROCESSING", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second SetNX to fail, ok=%v err=%v", ok, err)
	}

	val, err := client.Get(ctx, "k")
	if err != nil || val != "PROCESSING" {
		t.Fatalf("unexpected value %q err=%v", val, err)
	}

	if err := client.Del(ctx, "k"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, "k"); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestJobQueueLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	if err := client.PushJob(ctx, "default", "job-1"); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	payload, ok, err := client.PopJob(ctx, "default", time.Second)
	if err != nil || !ok || payload != "job-1" {
		t.Fatalf("unexpected pop payload=%q ok=%v err=%v", payload, ok, err)
	}
	if inFlight := mock.lists[client.ProcessingJobsKey("default")]; len(inFlight) != 1 || inFlight[0] != "job-1" {
		t.Fatalf("popped job should sit on the processing list, got %v", inFlight)
	}
	if err := client.AckJob(ctx, "default", payload); err != nil {
		t.Fatalf("ack failed: %v", err)
	}
	if inFlight := mock.lists[client.ProcessingJobsKey("default")]; len(inFlight) != 0 {
		t.Fatalf("ack should clear the processing list, got %v", inFlight)
	}

	_, ok, err = client.PopJob(ctx, "default", time.Second)
	if err != nil || ok {
		t.Fatalf("expected empty queue, ok=%v err=%v", ok, err)
	}

	now := time.Now()
	if err := client.ScheduleJob(ctx, "default", "due", now.Add(-time.Second)); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if err := client.ScheduleJob(ctx, "default", "later", now.Add(time.Hour)); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	promoted, err := client.PromoteDueJobs(ctx, "default", now)
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if promoted != 1 {
		t.Fatalf("expected 1 promoted job, got %d", promoted)
	}
	payload, ok, _ = client.PopJob(ctx, "default", time.Second)
	if !ok || payload != "due" {
		t.Fatalf("expected promoted job, got %q", payload)
	}
	if _, stillDelayed := mock.zsets[client.DelayedJobsKey("default")]["later"]; !stillDelayed {
		t.Fatal("future job should remain delayed")
	}
}

func TestRequeueInFlightRestoresUnackedJobs(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	for _, job := range []string{"job-1", "job-2", "job-3"} {
		if err := client.PushJob(ctx, "default", job); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, ok, err := client.PopJob(ctx, "default", time.Second); err != nil || !ok {
			t.Fatalf("pop %d failed ok=%v err=%v", i, ok, err)
		}
	}

	moved, err := client.RequeueInFlight(ctx, "default")
	if err != nil {
		t.Fatalf("requeue failed: %v", err)
	}
	if moved != 2 {
		t.Fatalf("expected 2 requeued jobs, got %d", moved)
	}

	var order []string
	for {
		payload, ok, err := client.PopJob(ctx, "default", time.Second)
		if err != nil {
			t.Fatalf("pop failed: %v", err)
		}
		if !ok {
			break
		}
		order = append(order, payload)
	}
	if fmt.Sprint(order) != "[job-1 job-2 job-3]" {
		t.Fatalf("requeued jobs should run first in original order, got %v", order)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "sf:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.JobQueueKey("default"); got != "sf:jobs:default" {
		t.Fatalf("unexpected queue key %s", got)
	}
	if got := client.DelayedJobsKey("default"); got != "sf:jobs:default:delayed" {
		t.Fatalf("unexpected delayed key %s", got)
	}
	if got := client.ProcessingJobsKey("default"); got != "sf:jobs:default:processing" {
		t.Fatalf("unexpected processing key %s", got)
	}
	if got := client.IdempotencyKey("", "id"); got != "sf:idempotency:id" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error for uninitialized client")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 {
		t.Fatalf("unexpected options db=%d pool=%d", opts.DB, opts.PoolSize)
	}
}

type mockCmdable struct {
	data  map[string]string
	lists map[string][]string
	zsets map[string]map[string]float64
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:  make(map[string]string),
		lists: make(map[string][]string),
		zsets: make(map[string]map[string]float64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) LPush(_ context.Context, key string, values ...any) *redis.IntCmd {
	for _, v := range values {
		m.lists[key] = append([]string{fmt.Sprint(v)}, m.lists[key]...)
	}
	return redis.NewIntResult(int64(len(m.lists[key])), nil)
}

func (m *mockCmdable) LMove(_ context.Context, source, destination, srcpos, destpos string) *redis.StringCmd {
	list := m.lists[source]
	if len(list) == 0 {
		return redis.NewStringResult("", redis.Nil)
	}
	var value string
	if srcpos == "LEFT" {
		value, m.lists[source] = list[0], list[1:]
	} else {
		value, m.lists[source] = list[len(list)-1], list[:len(list)-1]
	}
	if destpos == "LEFT" {
		m.lists[destination] = append([]string{value}, m.lists[destination]...)
	} else {
		m.lists[destination] = append(m.lists[destination], value)
	}
	return redis.NewStringResult(value, nil)
}

func (m *mockCmdable) BLMove(ctx context.Context, source, destination, srcpos, destpos string, _ time.Duration) *redis.StringCmd {
	return m.LMove(ctx, source, destination, srcpos, destpos)
}

func (m *mockCmdable) LRem(_ context.Context, key string, count int64, value any) *redis.IntCmd {
	target := fmt.Sprint(value)
	var kept []string
	removed := int64(0)
	for _, item := range m.lists[key] {
		if item == target && (count == 0 || removed < count) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	m.lists[key] = kept
	return redis.NewIntResult(removed, nil)
}

func (m *mockCmdable) ZAdd(_ context.Context, key string, members ...redis.Z) *redis.IntCmd {
	if m.zsets[key] == nil {
		m.zsets[key] = make(map[string]float64)
	}
	for _, z := range members {
		m.zsets[key][fmt.Sprint(z.Member)] = z.Score
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (m *mockCmdable) ZRangeByScore(_ context.Context, key string, opt *redis.ZRangeBy) *redis.StringSliceCmd {
	var max float64
	fmt.Sscan(opt.Max, &max)
	var out []string
	for member, score := range m.zsets[key] {
		if score <= max {
			out = append(out, member)
		}
	}
	sort.Strings(out)
	return redis.NewStringSliceResult(out, nil)
}

func (m *mockCmdable) ZRem(_ context.Context, key string, members ...any) *redis.IntCmd {
	var removed int64
	for _, member := range members {
		k := fmt.Sprint(member)
		if _, ok := m.zsets[key][k]; ok {
			delete(m.zsets[key], k)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}
