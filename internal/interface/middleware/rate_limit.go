package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-user-orders-api/pkg/response"
)

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP as resolved under the engine's trusted proxies.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + clientIP(c)
	}
}

// hitScript increments the window counter, starts the window on the first hit
// and returns {count, remaining window in ms}.
var hitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// hit records one request under key and returns the count so far in the window
// and the seconds until the window resets.
func hit(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (count, resetSec int, err error) {
	res, err := hitScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	count = toInt(res[0])
	if ms := toInt(res[1]); ms > 0 {
		resetSec = (ms + 999) / 1000
	}
	return count, resetSec, nil
}

// AllowFunc returns true when the request skips the limiter.
type AllowFunc func(*gin.Context) bool

// RateLimit counts requests per key in a fixed window held in redis and answers
// 429 with the error envelope past maxHits. It is a no-op without a redis client and
// fails open when redis errors. OPTIONS requests are never counted.
func RateLimit(rdb *redis.Client, maxHits int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || maxHits <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	limit := strconv.Itoa(maxHits)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		count, resetSec, err := hit(c.Request.Context(), rdb, keyFn(c), window)
		if err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, maxHits-count)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))
		if count > maxHits {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error(c, http.StatusTooManyRequests, "rate limit exceeded", "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}

func toInt(v any) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
