// Package tokenstore caches a carrier access token, sealed at rest, and
// refreshes it through an Authenticator when it is missing, expired or was
// rejected by the carrier.
//
// All reads, refreshes and invalidations run in one critical section, so
// concurrent callers sharing a Store never authenticate twice at once.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DefaultTTL applies when the carrier does not report an expiry.
const DefaultTTL = 3599 * time.Second

// ErrCacheMiss is returned by a Cache when the key is absent or expired.
var ErrCacheMiss = errors.New("tokenstore: cache miss")

// AuthToken is an access token issued by the carrier.
type AuthToken struct {
	Value     string
	ExpiresAt time.Time
}

// Authenticator performs the credential exchange with the carrier.
type Authenticator interface {
	Authenticate(ctx context.Context) (*AuthToken, error)
}

// Cache stores string values with a time to live.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Sealer encrypts values before they reach the cache.
type Sealer interface {
	Seal(plaintext []byte) (string, error)
	Open(sealed string) ([]byte, error)
}

// Store is the process-wide token cache for one set of credentials.
type Store struct {
	key    string
	cache  Cache
	sealer Sealer
	auth   Authenticator
	clock  clockwork.Clock
	logger *otelzap.Logger

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to compute time to live.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(logger *otelzap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Store caching under key. A nil sealer stores tokens in the
// clear.
func New(key string, cache Cache, sealer Sealer, auth Authenticator, opts ...Option) *Store {
	s := &Store{
		key:    key,
		cache:  cache,
		sealer: sealer,
		auth:   auth,
		clock:  clockwork.NewRealClock(),
		logger: otelzap.New(zap.NewNop()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetToken returns a valid access token, authenticating if needed.
func (s *Store) GetToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.cached(ctx); ok {
		return token, nil
	}

	s.logger.Ctx(ctx).Debug("Authenticating with carrier", zap.String("key", s.key))

	tok, err := s.auth.Authenticate(ctx)
	if err != nil {
		// Nothing may survive a failed exchange.
		_ = s.cache.Delete(ctx, s.key)
		return "", err
	}

	ttl := tok.ExpiresAt.Sub(s.clock.Now())
	if tok.ExpiresAt.IsZero() || ttl <= 0 {
		ttl = DefaultTTL
	}

	stored := tok.Value
	if s.sealer != nil {
		sealed, err := s.sealer.Seal([]byte(tok.Value))
		if err != nil {
			// Keep the token usable for this call; it just is not cached.
			s.logger.Ctx(ctx).Warn("Failed to seal access token", zap.Error(err))
			return tok.Value, nil
		}
		stored = sealed
	}

	if err := s.cache.Set(ctx, s.key, stored, ttl); err != nil {
		s.logger.Ctx(ctx).Warn("Failed to cache access token", zap.Error(err))
	}

	return tok.Value, nil
}

// Invalidate drops the cached token if it is still the rejected one. An
// empty rejected value drops whatever is cached.
func (s *Store) Invalidate(ctx context.Context, rejected string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rejected != "" {
		if current, ok := s.cached(ctx); ok && current != rejected {
			return
		}
	}

	if err := s.cache.Delete(ctx, s.key); err != nil {
		s.logger.Ctx(ctx).Warn("Failed to delete access token", zap.Error(err))
	}
}

// cached reads and opens the cached token. Callers hold s.mu.
func (s *Store) cached(ctx context.Context) (string, bool) {
	stored, err := s.cache.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Ctx(ctx).Warn("Failed to read access token", zap.Error(err))
		}
		return "", false
	}
	if stored == "" {
		return "", false
	}

	if s.sealer == nil {
		return stored, true
	}

	plain, err := s.sealer.Open(stored)
	if err != nil {
		s.logger.Ctx(ctx).Warn("Discarding unreadable access token", zap.Error(err))
		_ = s.cache.Delete(ctx, s.key)
		return "", false
	}
	return string(plain), true
}

// Key builds the cache key for a set of credentials.
func Key(carrier, clientID string, sandbox bool) string {
	env := "prod"
	if sandbox {
		env = "sandbox"
	}
	return fmt.Sprintf("shiptastic:%s:%s:%s:access_token", carrier, env, clientID)
}
