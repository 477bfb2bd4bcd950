package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"styleme/internal/model"
)

// ConversationKeyPrefix namespaces conversation keys in Redis
const ConversationKeyPrefix = "styleme:chat:"

// ConversationStore persists chat state by conversation id.
// Load returns model.ErrNotFound for unknown or expired ids.
type ConversationStore interface {
	Load(ctx context.Context, id string) (*model.ConversationState, error)
	Save(ctx context.Context, state *model.ConversationState) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryConversationStore keeps encoded conversations in process memory
type MemoryConversationStore struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	entries   map[string]memoryEntry
	nextSweep time.Time
}

// NewMemoryConversationStore creates an in-memory store; ttl <= 0 never expires
func NewMemoryConversationStore(ttl time.Duration) *MemoryConversationStore {
	return &MemoryConversationStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryConversationStore) Load(ctx context.Context, id string) (*model.ConversationState, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok && !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, model.ErrNotFound
	}
	var state model.ConversationState
	if err := json.Unmarshal(entry.data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}
	return &state, nil
}

func (s *MemoryConversationStore) Save(ctx context.Context, state *model.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}
	entry := memoryEntry{data: data}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.sweepLocked()
	s.entries[state.ID] = entry
	s.mu.Unlock()
	return nil
}

// sweepLocked drops expired entries, at most once per ttl
func (s *MemoryConversationStore) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	if now.Before(s.nextSweep) {
		return
	}
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
	s.nextSweep = now.Add(s.ttl)
}

func (s *MemoryConversationStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// RedisConversationStore keeps encoded conversations in Redis with a TTL
type RedisConversationStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisConversationStore creates a Redis-backed store
func NewRedisConversationStore(client redis.UniversalClient, ttl time.Duration) *RedisConversationStore {
	return &RedisConversationStore{client: client, ttl: ttl}
}

func (s *RedisConversationStore) key(id string) string {
	return ConversationKeyPrefix + id
}

func (s *RedisConversationStore) Load(ctx context.Context, id string) (*model.ConversationState, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	var state model.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}
	return &state, nil
}

func (s *RedisConversationStore) Save(ctx context.Context, state *model.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}
	if err := s.client.Set(ctx, s.key(state.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (s *RedisConversationStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}
