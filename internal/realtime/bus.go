package realtime

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Publisher fans a payload out to every subscriber of a channel. Delivery is
// best-effort: failures are logged and never surfaced to the operation that
// triggered the publish.
type Publisher interface {
	Publish(ctx context.Context, channel string, v any)
}

// LocalBus feeds the in-process registry directly, skipping Redis. It is
// the Publisher for tests and single-node deployments; the server wires
// RedisBus so fan-out survives running more than one instance.
type LocalBus struct {
	registry *Registry
}

func NewLocalBus(registry *Registry) *LocalBus {
	return &LocalBus{registry: registry}
}

func (b *LocalBus) Publish(_ context.Context, channel string, v any) {
	b.registry.Broadcast(channel, v)
}

const fanoutPrefix = "fanout:"

// RedisBus shares fan-out across instances: Publish goes through Redis
// pub/sub, and Run relays everything published (by any instance, this one
// included) into the local registry. Local subscribers therefore see a
// payload exactly once, via the relay.
type RedisBus struct {
	client   *redis.Client
	registry *Registry
}

func NewRedisBus(client *redis.Client, registry *Registry) *RedisBus {
	return &RedisBus{client: client, registry: registry}
}

func (b *RedisBus) Publish(ctx context.Context, channel string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("bus: marshal for channel %s: %v", channel, err)
		return
	}
	if err := b.client.Publish(ctx, fanoutPrefix+channel, payload).Err(); err != nil {
		log.Printf("bus: publish to channel %s: %v", channel, err)
	}
}

// Run relays the shared fan-out stream into the local registry until ctx is
// cancelled. Blocking; run in a goroutine.
func (b *RedisBus) Run(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, fanoutPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			channel := strings.TrimPrefix(msg.Channel, fanoutPrefix)
			b.registry.BroadcastRaw(channel, []byte(msg.Payload))
		}
	}
}
