package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// StateToken correlates an outbound authorize redirect with its callback.
type StateToken struct {
	Value     string
	CreatedAt time.Time
}

// StateStore issues single-use state tokens. Validate consumes the token
// whether or not the rest of the flow succeeds.
type StateStore interface {
	Issue(ctx context.Context) (StateToken, error)
	Validate(ctx context.Context, value string) bool
}

// issueAttempts bounds retries when a generated value collides with a live one.
const issueAttempts = 3

func newStateValue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// MemoryStateStore keeps state tokens in process memory. Expired tokens are
// swept by the cache janitor and are never returned by Validate.
type MemoryStateStore struct {
	mu    sync.Mutex // serializes lookup+delete in Validate
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStateStore creates a store whose tokens live for ttl. A ttl of
// zero or less keeps tokens until they are consumed.
func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	expiration, cleanup := ttl, ttl
	if ttl <= 0 {
		expiration, cleanup = cache.NoExpiration, 0
	}
	return &MemoryStateStore{
		cache: cache.New(expiration, cleanup),
		ttl:   expiration,
		now:   time.Now,
	}
}

func (s *MemoryStateStore) Issue(_ context.Context) (StateToken, error) {
	for i := 0; i < issueAttempts; i++ {
		value, err := newStateValue()
		if err != nil {
			return StateToken{}, err
		}
		token := StateToken{Value: value, CreatedAt: s.now()}
		if err := s.cache.Add(value, token, s.ttl); err == nil {
			return token, nil
		}
	}
	return StateToken{}, fmt.Errorf("generating state: no unique value after %d attempts", issueAttempts)
}

func (s *MemoryStateStore) Validate(_ context.Context, value string) bool {
	if value == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache.Get(value); !ok {
		return false
	}
	s.cache.Delete(value)
	return true
}

// Len reports the number of stored tokens, including expired ones the
// janitor has not swept yet.
func (s *MemoryStateStore) Len() int {
	return s.cache.ItemCount()
}
