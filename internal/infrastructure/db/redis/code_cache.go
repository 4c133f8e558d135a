package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const codeKeyPrefix = "2fa:code:"

// consumeScript compares the stored code against the candidate and deletes
// the key on match, in a single atomic step, so a code can only ever be
// redeemed once even under concurrent verification attempts.
var consumeScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if v == false then
	return 0
end
if v == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

// CodeCache stores short-lived 2FA codes in Redis, keyed by email.
type CodeCache struct {
	client *redis.Client
}

func NewCodeCache(client *redis.Client) *CodeCache {
	return &CodeCache{client: client}
}

func codeKey(email string) string {
	return codeKeyPrefix + email
}

// Store saves code under the account's email with the given TTL, replacing
// any previously issued code.
func (c *CodeCache) Store(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := c.client.Set(ctx, codeKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("store 2fa code: %w", err)
	}
	return nil
}

// Consume reports whether code matches the cached value for email, deleting
// it on match. A missing or expired key is a non-match, not an error.
func (c *CodeCache) Consume(ctx context.Context, email, code string) (bool, error) {
	n, err := consumeScript.Run(ctx, c.client, []string{codeKey(email)}, code).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("consume 2fa code: %w", err)
	}
	return n == 1, nil
}
