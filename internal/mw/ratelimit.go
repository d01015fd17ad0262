package mw

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long the limiter of a silent client is kept.
const limiterIdleTTL = 10 * time.Minute

// IPRateLimiter stores a rate limiter for each IP address.
type IPRateLimiter struct {
	ips *cache.Cache
	r   rate.Limit
	b   int
}

// NewIPRateLimiter creates a new IPRateLimiter.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: cache.New(limiterIdleTTL, limiterIdleTTL),
		r:   r,
		b:   b,
	}
}

// GetLimiter returns the rate limiter for an IP address, creating it on
// first use. Every lookup extends the limiter's lifetime.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	if v, found := i.ips.Get(ip); found {
		limiter := v.(*rate.Limiter)
		i.ips.SetDefault(ip, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(i.r, i.b)
	if err := i.ips.Add(ip, limiter, cache.DefaultExpiration); err != nil {
		// Another request for the same ip won the race.
		if v, found := i.ips.Get(ip); found {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// RateLimiter is a middleware for IP-based rate limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewIPRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
