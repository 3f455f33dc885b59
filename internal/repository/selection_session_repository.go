package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/uniplanner-api/internal/models"
)

// ErrSelectionSessionNotFound is returned for unknown or expired sessions.
var ErrSelectionSessionNotFound = errors.New("selection session not found")

const selectionKeyPrefix = "selection:session:"

type memorySession struct {
	payload   []byte
	expiresAt time.Time
}

// SelectionSessionRepository keeps selection sessions in Redis with a
// sliding TTL, or in process memory when Redis is disabled.
type SelectionSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	memory map[string]memorySession
}

func NewSelectionSessionRepository(client *redis.Client, ttl time.Duration) *SelectionSessionRepository {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SelectionSessionRepository{
		client: client,
		ttl:    ttl,
		now:    time.Now,
		memory: make(map[string]memorySession),
	}
}

func (r *SelectionSessionRepository) Save(ctx context.Context, session *models.SelectionSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal selection session: %w", err)
	}
	if r.client != nil {
		if err := r.client.Set(ctx, selectionKeyPrefix+session.ID, payload, r.ttl).Err(); err != nil {
			return fmt.Errorf("save selection session: %w", err)
		}
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	r.memory[session.ID] = memorySession{payload: payload, expiresAt: r.now().Add(r.ttl)}
	return nil
}

func (r *SelectionSessionRepository) Get(ctx context.Context, id string) (*models.SelectionSession, error) {
	var payload []byte
	if r.client != nil {
		raw, err := r.client.Get(ctx, selectionKeyPrefix+id).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, ErrSelectionSessionNotFound
			}
			return nil, fmt.Errorf("get selection session: %w", err)
		}
		payload = raw
	} else {
		r.mu.Lock()
		entry, ok := r.memory[id]
		if ok && !r.now().Before(entry.expiresAt) {
			delete(r.memory, id)
			ok = false
		}
		r.mu.Unlock()
		if !ok {
			return nil, ErrSelectionSessionNotFound
		}
		payload = entry.payload
	}

	var session models.SelectionSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode selection session: %w", err)
	}
	return &session, nil
}

func (r *SelectionSessionRepository) Delete(ctx context.Context, id string) error {
	if r.client != nil {
		if err := r.client.Del(ctx, selectionKeyPrefix+id).Err(); err != nil {
			return fmt.Errorf("delete selection session: %w", err)
		}
		return nil
	}
	r.mu.Lock()
	delete(r.memory, id)
	r.mu.Unlock()
	return nil
}

func (r *SelectionSessionRepository) sweepLocked() {
	now := r.now()
	for id, entry := range r.memory {
		if !now.Before(entry.expiresAt) {
			delete(r.memory, id)
		}
	}
}
