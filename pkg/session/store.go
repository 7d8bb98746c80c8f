package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/gavel-oj/gavel/pkg/config"
)

const (
	// TokenPrefix identifies Gavel session tokens
	TokenPrefix = "gavel_"
	// TokenLength is the number of random bytes in a token (256 bits)
	TokenLength = 32

	keyPrefix = "session:"
)

// GenerateToken creates a new session token.
// Format: gavel_<base64url(32 random bytes)>
func GenerateToken() (string, error) {
	randomBytes := make([]byte, TokenLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return TokenPrefix + base64.RawURLEncoding.EncodeToString(randomBytes), nil
}

// ValidTokenFormat reports whether token has the expected shape. Used to
// reject garbage before hitting Redis.
func ValidTokenFormat(token string) bool {
	if !strings.HasPrefix(token, TokenPrefix) {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(token, TokenPrefix))
	return err == nil && len(raw) == TokenLength
}

// Store maps session tokens to user UUIDs in Redis
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore connects to Redis and verifies the connection
func NewStore(cfg config.SessionConfig) (*Store, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	opts.DB = cfg.RedisDB
	opts.PoolSize = cfg.RedisPoolSize

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewStoreWithClient(client, cfg.TTL), nil
}

// NewStoreWithClient wraps an existing client. Tests use this with
// miniredis.
func NewStoreWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Close releases the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Client exposes the underlying connection for health checks
func (s *Store) Client() *redis.Client {
	return s.client
}

// Create starts a session for the user and returns its token
func (s *Store) Create(ctx context.Context, userUUID uuid.UUID) (string, error) {
	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, keyPrefix+token, userUUID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Get resolves a token to its user UUID and slides the expiry forward.
// Unknown or malformed tokens return ok=false, not an error.
func (s *Store) Get(ctx context.Context, token string) (uuid.UUID, bool, error) {
	if !ValidTokenFormat(token) {
		return uuid.Nil, false, nil
	}

	value, err := s.client.Get(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to load session: %w", err)
	}

	userUUID, err := uuid.Parse(value)
	if err != nil {
		// corrupt entry; treat as logged out
		s.client.Del(ctx, keyPrefix+token)
		return uuid.Nil, false, nil
	}

	s.client.Expire(ctx, keyPrefix+token, s.ttl)
	return userUUID, true, nil
}

// Delete ends a session. Deleting an unknown token is a no-op.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
