package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client wraps a Redis connection for session, SSO-state, name-cache and
// rate-limiting operations.
type Client struct {
	rdb *goredis.Client
}

// NewClient creates a Redis client from a URL and verifies the connection.
func NewClient(redisURL string) (*Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	rdb := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Ping checks the Redis connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

const (
	refreshTokenPrefix = "refresh:"
	ssoStatePrefix     = "sso:state:"
	entityNamePrefix   = "entity:"
	ssoStateTTL        = 5 * time.Minute
	entityNameTTL      = time.Hour
)

// StoreRefreshToken stores a refresh token mapped to an account ID with an expiry.
func (c *Client) StoreRefreshToken(ctx context.Context, token string, accountID int64, expiry time.Duration) error {
	return c.rdb.Set(ctx, refreshTokenPrefix+token, accountID, expiry).Err()
}

// GetRefreshTokenAccountID returns the account ID associated with a refresh token.
func (c *Client) GetRefreshTokenAccountID(ctx context.Context, token string) (int64, error) {
	val, err := c.rdb.Get(ctx, refreshTokenPrefix+token).Result()
	if err == goredis.Nil {
		return 0, fmt.Errorf("refresh token not found")
	}
	if err != nil {
		return 0, fmt.Errorf("getting refresh token: %w", err)
	}

	accountID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing account ID: %w", err)
	}
	return accountID, nil
}

// DeleteRefreshToken removes a refresh token from Redis.
func (c *Client) DeleteRefreshToken(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, refreshTokenPrefix+token).Err()
}

// StoreSSOState records an SSO state nonce for the login round trip.
func (c *Client) StoreSSOState(ctx context.Context, state string) error {
	return c.rdb.Set(ctx, ssoStatePrefix+state, 1, ssoStateTTL).Err()
}

// ConsumeSSOState atomically checks and removes an SSO state nonce. A nonce
// can be consumed at most once; replayed callbacks get false.
func (c *Client) ConsumeSSOState(ctx context.Context, state string) (bool, error) {
	err := c.rdb.GetDel(ctx, ssoStatePrefix+state).Err()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consuming sso state: %w", err)
	}
	return true, nil
}

// CacheEntityName stores a resolved entity name keyed by category and ID.
func (c *Client) CacheEntityName(ctx context.Context, category string, id int64, name string) error {
	key := entityNamePrefix + category + ":" + strconv.FormatInt(id, 10)
	return c.rdb.Set(ctx, key, name, entityNameTTL).Err()
}

// GetEntityName returns a cached entity name, or empty string on a miss.
func (c *Client) GetEntityName(ctx context.Context, category string, id int64) (string, error) {
	key := entityNamePrefix + category + ":" + strconv.FormatInt(id, 10)
	val, err := c.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting entity name: %w", err)
	}
	return val, nil
}

// rateLimitScript atomically increments a counter, sets its TTL on first use,
// and returns the count together with the window's remaining TTL.
var rateLimitScript = goredis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// CheckRateLimit runs a fixed-window counter for key. It reports whether the
// request is allowed, the current count, and the window's remaining TTL in
// milliseconds.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int64, int64, error) {
	res, err := rateLimitScript.Run(ctx, c.rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, 0, fmt.Errorf("checking rate limit: %w", err)
	}
	if len(res) != 2 {
		return false, 0, 0, fmt.Errorf("checking rate limit: unexpected script reply")
	}
	count, ttlMs := res[0], res[1]
	return count <= int64(limit), count, ttlMs, nil
}
