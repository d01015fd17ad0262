package mw

import (
	"bytes"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// CacheHeader reports whether a response was served from the cache.
const CacheHeader = "X-Cache"

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache keeps successful GET responses in memory until they expire
// or the cache is flushed.
type ResponseCache struct {
	store *cache.Cache
	ttl   time.Duration
	// generation changes on every Flush; responses rendered across a flush
	// are not stored.
	generation atomic.Uint64
}

// NewResponseCache creates a cache whose entries live for ttl.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		store: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Flush drops every cached response.
func (rc *ResponseCache) Flush() {
	rc.generation.Add(1)
	rc.store.Flush()
}

// ItemCount returns the number of cached responses.
func (rc *ResponseCache) ItemCount() int {
	return rc.store.ItemCount()
}

// Middleware serves GET requests from the cache, filling it on a miss.
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if resp, found := rc.store.Get(key); found {
			cached := resp.(cachedResponse)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set(CacheHeader, "HIT")
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		gen := rc.generation.Load()
		c.Writer.Header().Set(CacheHeader, "MISS")
		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		if blw.Status() < 200 || blw.Status() >= 300 || rc.generation.Load() != gen {
			return
		}
		headers := blw.Header().Clone()
		headers.Del(CacheHeader)
		rc.store.Set(key, cachedResponse{
			status:  blw.Status(),
			headers: headers,
			body:    blw.body.Bytes(),
		}, rc.ttl)
	}
}
