// Package session persists per-session admin state in Redis: the
// bearer token obtained at login and the UI theme preference. The token
// is the sole authorization credential; its absence makes a session
// unauthenticated. Logout clears the token only — the theme survives.
package session

import (
	"context"
	"fmt"
	"time"

	"admin-console/internal/models"

	"github.com/go-redis/redis/v8"
)

// State is the per-session state contract UI components and
// controllers depend on, so tests can substitute an in-memory fake.
type State interface {
	Token(ctx context.Context, sessionID string) (string, error)
	SetToken(ctx context.Context, sessionID, token string) error
	ClearToken(ctx context.Context, sessionID string) error
	Theme(ctx context.Context, sessionID string) (models.Theme, error)
	SetTheme(ctx context.Context, sessionID string, theme models.Theme) error
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ State = (*Store)(nil)

// NewStore creates a session store backed by Redis.
func NewStore(addr, password string, db int, ttl time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Store{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func tokenKey(sessionID string) string {
	return fmt.Sprintf("session:%s:token", sessionID)
}

func themeKey(sessionID string) string {
	return fmt.Sprintf("session:%s:theme", sessionID)
}

// SetToken stores the bearer token for a session.
func (s *Store) SetToken(ctx context.Context, sessionID, token string) error {
	return s.rdb.Set(ctx, tokenKey(sessionID), token, s.ttl).Err()
}

// Token returns the stored token, or "" when the session has none.
func (s *Store) Token(ctx context.Context, sessionID string) (string, error) {
	token, err := s.rdb.Get(ctx, tokenKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	return token, nil
}

// ClearToken removes the token on logout. The theme key is untouched.
func (s *Store) ClearToken(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, tokenKey(sessionID)).Err()
}

// SetTheme stores the theme preference for a session.
func (s *Store) SetTheme(ctx context.Context, sessionID string, theme models.Theme) error {
	return s.rdb.Set(ctx, themeKey(sessionID), string(theme), s.ttl).Err()
}

// Theme returns the stored theme, or the default when none is stored.
func (s *Store) Theme(ctx context.Context, sessionID string) (models.Theme, error) {
	val, err := s.rdb.Get(ctx, themeKey(sessionID)).Result()
	if err == redis.Nil {
		return models.DefaultTheme, nil
	}
	if err != nil {
		return models.DefaultTheme, fmt.Errorf("failed to read theme: %w", err)
	}

	theme := models.Theme(val)
	if theme != models.ThemeLight && theme != models.ThemeDark {
		return models.DefaultTheme, nil
	}
	return theme, nil
}

// Touch extends the TTL of a session's keys on activity.
func (s *Store) Touch(ctx context.Context, sessionID string) error {
	pipe := s.rdb.Pipeline()
	pipe.Expire(ctx, tokenKey(sessionID), s.ttl)
	pipe.Expire(ctx, themeKey(sessionID), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// TokenSource binds the store to one session id so it satisfies the
// backend client's TokenSource interface.
type TokenSource struct {
	Store     *Store
	SessionID string
}

// Token implements backend.TokenSource.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	return ts.Store.Token(ctx, ts.SessionID)
}
