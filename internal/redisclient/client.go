package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

//go:embed scripts/login_throttle.lua
var loginThrottleScript string

// ErrSessionNotFound is returned for unknown or expired session tokens
var ErrSessionNotFound = errors.New("session not found")

const catalogKey = "catalog:active"

type Client struct {
	rdb            *redis.Client
	throttleScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
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

	return &Client{
		rdb:            rdb,
		throttleScript: redis.NewScript(loginThrottleScript),
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks connectivity, used by the readiness probe
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func loginAttemptsKey(email string) string {
	return fmt.Sprintf("login_attempts:%s", strings.ToLower(strings.TrimSpace(email)))
}

// CreateSession stores the principal under a fresh opaque token
func (c *Client) CreateSession(ctx context.Context, p auth.Principal, ttl time.Duration) (string, error) {
	token := uuid.New().String()
	if err := c.SaveSession(ctx, token, p, ttl); err != nil {
		return "", err
	}
	return token, nil
}

// SaveSession overwrites the principal stored under token and resets its TTL
func (c *Client) SaveSession(ctx context.Context, token string, p auth.Principal, ttl time.Duration) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return c.rdb.Set(ctx, sessionKey(token), payload, ttl).Err()
}

// GetSession loads the principal for token
func (c *Client) GetSession(ctx context.Context, token string) (*auth.Principal, error) {
	payload, err := c.rdb.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var p auth.Principal
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &p, nil
}

// DeleteSession removes a session. Deleting an unknown token is not an error.
func (c *Client) DeleteSession(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, sessionKey(token)).Err()
}

// GetCatalog returns the cached storefront listing. ok is false on a miss.
func (c *Client) GetCatalog(ctx context.Context) (products []models.Product, ok bool, err error) {
	payload, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	return products, true, nil
}

// SetCatalog caches the storefront listing
func (c *Client) SetCatalog(ctx context.Context, products []models.Product, ttl time.Duration) error {
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return c.rdb.Set(ctx, catalogKey, payload, ttl).Err()
}

// InvalidateCatalog drops the cached storefront listing
func (c *Client) InvalidateCatalog(ctx context.Context) error {
	return c.rdb.Del(ctx, catalogKey).Err()
}

// AllowLogin atomically counts a login attempt for email and reports
// whether it is within maxAttempts for the current window
func (c *Client) AllowLogin(ctx context.Context, email string, maxAttempts int, window time.Duration) (bool, error) {
	result, err := c.throttleScript.Run(ctx, c.rdb,
		[]string{loginAttemptsKey(email)}, int(window.Seconds()), maxAttempts).Result()
	if err != nil {
		return false, fmt.Errorf("login throttle script failed: %w", err)
	}

	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}

	return allowed == 1, nil
}

// ResetLogin clears the attempt counter after a successful login
func (c *Client) ResetLogin(ctx context.Context, email string) error {
	return c.rdb.Del(ctx, loginAttemptsKey(email)).Err()
}
