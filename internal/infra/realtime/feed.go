package realtime

import (
	"context"
	"encoding/json"
	"sync"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "catalog.changes."

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event is one row-level change notification for a table. The feed carries
// no row data: consumers refetch the full table instead of patching.
type Event struct {
	Table string `json:"table"`
	Op    Op     `json:"op"`
}

// Publisher is the write side of the change feed, used by the gateway
// after successful mutations.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Feed is a Redis pub/sub backed change feed, the transport behind the
// hosted backend's realtime primitive.
type Feed struct {
	client *redis.Client
	log    *zap.Logger
}

func NewFeed(client *redis.Client, log *zap.Logger) *Feed {
	return &Feed{client: client, log: log.Named("realtime")}
}

func (f *Feed) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, channelPrefix+ev.Table, payload).Err()
}

// Subscribe opens a subscription for every event type on the table. The
// caller owns the returned handle and must Close it on teardown.
func (f *Feed) Subscribe(ctx context.Context, table string) (*Subscription, error) {
	pubsub := f.client.Subscribe(ctx, channelPrefix+table)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &Subscription{
		pubsub: pubsub,
		events: make(chan Event),
	}
	go sub.run(f.log)
	return sub, nil
}

// Subscription is a disposable handle on one table's change feed.
type Subscription struct {
	pubsub    *redis.PubSub
	events    chan Event
	closeOnce sync.Once
}

// Events delivers change notifications until the subscription is closed,
// at which point the channel is closed.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close unsubscribes exactly once; further calls are no-ops.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		_ = s.pubsub.Close()
	})
}

func (s *Subscription) run(log *zap.Logger) {
	defer close(s.events)
	for msg := range s.pubsub.Channel() {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Warn("dropping malformed change event",
				zap.String("channel", msg.Channel),
				zap.Error(err))
			continue
		}
		s.events <- ev
	}
}
