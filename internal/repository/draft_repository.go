package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/collegeportal/admission-api/internal/models"
)

// DraftState is the persisted wizard snapshot: the accumulated application
// plus the step pointer. One draft per user.
type DraftState struct {
	Application models.Application `json:"application"`
	Step        int                `json:"step"`
}

// DraftRepository stores in-progress wizard drafts. Find returns nil when no
// draft exists.
type DraftRepository interface {
	Save(ctx context.Context, userID string, state DraftState) error
	Find(ctx context.Context, userID string) (*DraftState, error)
	Delete(ctx context.Context, userID string) error
}

// RedisDraftRepository keeps drafts in Redis with a sliding TTL: every save
// renews the expiry, so abandoned drafts age out on their own.
type RedisDraftRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDraftRepository constructs a Redis-backed draft store.
func NewRedisDraftRepository(client *redis.Client, ttl time.Duration) *RedisDraftRepository {
	return &RedisDraftRepository{client: client, ttl: ttl}
}

func draftKey(userID string) string {
	return "admission:draft:" + userID
}

// Save stores the snapshot and renews its TTL.
func (r *RedisDraftRepository) Save(ctx context.Context, userID string, state DraftState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := r.client.Set(ctx, draftKey(userID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Find loads the user's draft, or nil if none exists.
func (r *RedisDraftRepository) Find(ctx context.Context, userID string) (*DraftState, error) {
	raw, err := r.client.Get(ctx, draftKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("find draft: %w", err)
	}
	var state DraftState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	return &state, nil
}

// Delete removes the draft, typically after submission.
func (r *RedisDraftRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, draftKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// MemoryDraftRepository is the fallback draft store used when Redis is
// disabled, and the store of choice in tests. Drafts expire lazily on read.
type MemoryDraftRepository struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryDraft
}

type memoryDraft struct {
	state     DraftState
	expiresAt time.Time
}

// NewMemoryDraftRepository constructs an in-memory draft store. A zero TTL
// disables expiry.
func NewMemoryDraftRepository(ttl time.Duration) *MemoryDraftRepository {
	return &MemoryDraftRepository{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryDraft),
	}
}

// Save stores the snapshot and renews its expiry.
func (r *MemoryDraftRepository) Save(ctx context.Context, userID string, state DraftState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := memoryDraft{state: state}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.entries[userID] = entry
	return nil
}

// Find loads the user's draft, or nil if absent or expired.
func (r *MemoryDraftRepository) Find(ctx context.Context, userID string) (*DraftState, error) {
	r.mu.RLock()
	entry, ok := r.entries[userID]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		r.mu.Lock()
		delete(r.entries, userID)
		r.mu.Unlock()
		return nil, nil
	}
	state := entry.state
	return &state, nil
}

// Delete removes the draft.
func (r *MemoryDraftRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
	return nil
}
