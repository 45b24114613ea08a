// Package ratelimit bounds inbound request rates per client.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter answers whether a client may proceed with one more request.
type Limiter interface {
	Allow(key string) bool
}

// Noop admits everything. Used when rate limiting is disabled.
type Noop struct{}

func (Noop) Allow(string) bool { return true }

// PerClient keeps one token bucket per client key, pruning buckets that have
// been idle for a while.
type PerClient struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	limit   rate.Limit
	burst   int
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const idleEviction = 10 * time.Minute

// NewPerClient creates a limiter admitting requestsPerMinute sustained requests
// with the given burst per client key.
func NewPerClient(requestsPerMinute float64, burst int) *PerClient {
	if burst < 1 {
		burst = 1
	}
	return &PerClient{
		clients: make(map[string]*clientBucket),
		limit:   rate.Limit(requestsPerMinute / 60.0),
		burst:   burst,
	}
}

// Allow reports whether the client identified by key may proceed.
func (p *PerClient) Allow(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	bucket, ok := p.clients[key]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.clients[key] = bucket
	}
	bucket.lastSeen = now

	if len(p.clients) > 1000 {
		p.evictIdle(now)
	}
	return bucket.limiter.Allow()
}

func (p *PerClient) evictIdle(now time.Time) {
	for key, bucket := range p.clients {
		if now.Sub(bucket.lastSeen) > idleEviction {
			delete(p.clients, key)
		}
	}
}
