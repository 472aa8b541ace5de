// Package jobs maintains the crawl-job lifecycle and publishes progress
// envelopes on per-job broadcast channels.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProgressEvent is the envelope consumers receive on the job channel.
type ProgressEvent struct {
	TaskID     string  `json:"task_id"`
	LandID     int64   `json:"land_id"`
	JobID      string  `json:"job_id"`
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
	Completed  bool    `json:"completed"`
	Timestamp  string  `json:"timestamp"`
}

// ChannelFor returns the broadcast channel name of a job.
func ChannelFor(jobID string) string {
	return fmt.Sprintf("crawl_progress_%s", jobID)
}

// Broadcaster publishes progress events. Implementations must be safe for
// concurrent use.
type Broadcaster interface {
	Publish(ctx context.Context, channel string, event *ProgressEvent) error
	Close() error
}

// RedisBroadcaster publishes over Redis pub/sub.
type RedisBroadcaster struct {
	client *redis.Client
}

// NewRedisBroadcaster connects to Redis at addr.
func NewRedisBroadcaster(addr string, db int) *RedisBroadcaster {
	return &RedisBroadcaster{
		client: redis.NewClient(&redis.Options{Addr: addr, DB: db}),
	}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, event *ProgressEvent) error {
	event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channel, payload).Err()
}

func (b *RedisBroadcaster) Close() error {
	return b.client.Close()
}

// MemoryBroadcaster records events in memory; used when Redis is disabled
// and in tests.
type MemoryBroadcaster struct {
	mu     sync.Mutex
	events map[string][]*ProgressEvent
}

func NewMemoryBroadcaster() *MemoryBroadcaster {
	return &MemoryBroadcaster{events: make(map[string][]*ProgressEvent)}
}

func (b *MemoryBroadcaster) Publish(_ context.Context, channel string, event *ProgressEvent) error {
	event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	copied := *event
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[channel] = append(b.events[channel], &copied)
	return nil
}

// Events returns the events published on a channel so far.
func (b *MemoryBroadcaster) Events(channel string) []*ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*ProgressEvent(nil), b.events[channel]...)
}

func (b *MemoryBroadcaster) Close() error { return nil }
