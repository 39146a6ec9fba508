package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"healthcare-booking-api/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimitMiddleware is a fixed-window per-client limiter backed by Redis,
// so the limit holds across API instances. Authenticated requests are keyed
// by user, anonymous ones by client IP.
type RateLimitMiddleware struct {
	redisClient *redis.Client
	log         *logrus.Logger
	perMinute   int
}

func NewRateLimitMiddleware(redisClient *redis.Client, log *logrus.Logger, perMinute int) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		redisClient: redisClient,
		log:         log,
		perMinute:   perMinute,
	}
}

var rateLimitScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return count
`)

func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("ratelimit:%s:%d", m.clientKey(r), time.Now().Unix()/60)

		count, err := rateLimitScript.Run(r.Context(), m.redisClient, []string{key}, 60).Int64()
		if err != nil {
			// Fail open: a broken limiter must not take the API down.
			m.log.Warnf("Rate limit check failed (non-fatal): %+v", err)
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(m.perMinute) {
			response.TooManyRequests(w, "Rate limit exceeded, slow down")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) clientKey(r *http.Request) string {
	if userID, ok := GetUserIDFromContext(r.Context()); ok {
		return "user:" + userID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
