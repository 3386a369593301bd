package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

// Presence tracks which users are actively viewing which conversation. It is
// a liveness hint only: a stale absence costs an extra notification, so
// Clear must run promptly on disconnect, but a missed Mark is harmless.
type Presence interface {
	Mark(ctx context.Context, conversationID, userID utils.SixID) error
	Clear(ctx context.Context, conversationID, userID utils.SixID) error
	IsPresent(ctx context.Context, conversationID, userID utils.SixID) (bool, error)
}

func presenceKey(conversationID utils.SixID) string {
	return fmt.Sprintf("chat_users:%s", conversationID)
}

// redisPresence keeps one set per conversation, shared across instances.
type redisPresence struct {
	client *redis.Client
}

func NewRedisPresence(client *redis.Client) Presence {
	return &redisPresence{client: client}
}

func (p *redisPresence) Mark(ctx context.Context, conversationID, userID utils.SixID) error {
	if err := p.client.SAdd(ctx, presenceKey(conversationID), userID.String()).Err(); err != nil {
		return fmt.Errorf("failed to mark presence: %w", err)
	}
	return nil
}

func (p *redisPresence) Clear(ctx context.Context, conversationID, userID utils.SixID) error {
	if err := p.client.SRem(ctx, presenceKey(conversationID), userID.String()).Err(); err != nil {
		return fmt.Errorf("failed to clear presence: %w", err)
	}
	return nil
}

func (p *redisPresence) IsPresent(ctx context.Context, conversationID, userID utils.SixID) (bool, error) {
	present, err := p.client.SIsMember(ctx, presenceKey(conversationID), userID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check presence: %w", err)
	}
	return present, nil
}

// memoryPresence is the single-node implementation, also used in tests.
type memoryPresence struct {
	mu   sync.RWMutex
	sets map[string]map[string]struct{}
}

func NewMemoryPresence() Presence {
	return &memoryPresence{sets: make(map[string]map[string]struct{})}
}

func (p *memoryPresence) Mark(_ context.Context, conversationID, userID utils.SixID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := presenceKey(conversationID)
	set, ok := p.sets[key]
	if !ok {
		set = make(map[string]struct{})
		p.sets[key] = set
	}
	set[userID.String()] = struct{}{}
	return nil
}

func (p *memoryPresence) Clear(_ context.Context, conversationID, userID utils.SixID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := presenceKey(conversationID)
	if set, ok := p.sets[key]; ok {
		delete(set, userID.String())
		if len(set) == 0 {
			delete(p.sets, key)
		}
	}
	return nil
}

func (p *memoryPresence) IsPresent(_ context.Context, conversationID, userID utils.SixID) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	set, ok := p.sets[presenceKey(conversationID)]
	if !ok {
		return false, nil
	}
	_, present := set[userID.String()]
	return present, nil
}
