package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/notewall/notewall/pkg/logger"
)

// Bridge relays announcements between instances over a Redis channel so a
// client connected to one replica still sees mutations made through another.
// Each published message carries the sender's instance id; a bridge ignores
// its own messages since the local hub already delivered them.
type Bridge struct {
	client   *redis.Client
	channel  string
	instance string
	hub      *Hub
}

type wireEvent struct {
	Instance string `json:"instance"`
	Origin   string `json:"origin,omitempty"`
	Event    Event  `json:"event"`
}

// NewBridge wires a hub to a Redis channel and registers itself as the hub's
// publisher. Call Run to start consuming.
func NewBridge(client *redis.Client, channel string, hub *Hub) *Bridge {
	b := &Bridge{
		client:   client,
		channel:  channel,
		instance: uuid.NewString(),
		hub:      hub,
	}
	hub.SetPublisher(b)
	return b
}

// Publish sends the event to sibling instances. Failures are logged and
// dropped: broadcast delivery is best-effort and must not reach the caller.
func (b *Bridge) Publish(ev Event, origin string) {
	payload, err := json.Marshal(wireEvent{Instance: b.instance, Origin: origin, Event: ev})
	if err != nil {
		logger.Errorf("bridge marshal: %v", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
			logger.Warnf("bridge publish: %v", err)
		}
	}()
}

// Run consumes the Redis channel until ctx is cancelled, re-subscribing with
// a short pause when the pubsub connection drops.
func (b *Bridge) Run(ctx context.Context) {
	for {
		sub := b.client.Subscribe(ctx, b.channel)
		ch := sub.Channel()
	recv:
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break recv
				}
				b.handle(msg.Payload)
			}
		}
		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		logger.Warn("bridge pubsub channel closed, reconnecting")
		time.Sleep(time.Second)
	}
}

func (b *Bridge) handle(payload string) {
	var we wireEvent
	if err := json.Unmarshal([]byte(payload), &we); err != nil {
		logger.Errorf("bridge decode: %v", err)
		return
	}
	if we.Instance == b.instance {
		return
	}
	b.hub.deliver(we.Event, we.Origin)
}
