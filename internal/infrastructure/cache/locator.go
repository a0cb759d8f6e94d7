package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
)

const refreshKey = "locator"

// DefaultResolveTimeout bounds one refresh when no timeout is configured
const DefaultResolveTimeout = time.Minute

// Resolver obtains a fresh stream locator
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// LocatorCache holds the current stream locator and refreshes it on demand.
// Concurrent refreshes collapse into a single Resolver call.
type LocatorCache struct {
	resolver Resolver
	ttl      time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time

	group singleflight.Group

	mu          sync.RWMutex
	current     entities.Locator
	invalidated bool
}

// NewLocatorCache creates an empty locator cache. Each refresh, including
// every resolver in a chain, must finish within timeout.
func NewLocatorCache(resolver Resolver, ttl, timeout time.Duration, logger *zap.Logger) *LocatorCache {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	return &LocatorCache{
		resolver: resolver,
		ttl:      ttl,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the cached locator while it is usable, otherwise refreshes it
func (c *LocatorCache) Get(ctx context.Context) (entities.Locator, error) {
	c.mu.RLock()
	loc, invalidated := c.current, c.invalidated
	c.mu.RUnlock()

	if !invalidated && loc.Usable(c.now(), c.ttl) {
		return loc, nil
	}
	return c.refresh(ctx)
}

// Refresh resolves a new locator regardless of the cached one's age
func (c *LocatorCache) Refresh(ctx context.Context) (entities.Locator, error) {
	return c.refresh(ctx)
}

// Invalidate marks the cached locator unusable; the next Get refreshes
func (c *LocatorCache) Invalidate() {
	c.mu.Lock()
	c.invalidated = true
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("Locator invalidated")
	}
}

// Current returns the cached locator without refreshing
func (c *LocatorCache) Current() (entities.Locator, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.current.URL != ""
}

func (c *LocatorCache) refresh(ctx context.Context) (entities.Locator, error) {
	// the shared resolve outlives any single waiter
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(refreshKey, func() (interface{}, error) {
		rctx, cancel := context.WithTimeout(shared, c.timeout)
		defer cancel()
		return c.resolve(rctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return entities.Locator{}, res.Err
		}
		return res.Val.(entities.Locator), nil
	case <-ctx.Done():
		return entities.Locator{}, ctx.Err()
	}
}

func (c *LocatorCache) resolve(ctx context.Context) (entities.Locator, error) {
	started := c.now()
	url, err := c.resolveWithin(ctx)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("Failed to resolve locator", zap.Error(err))
		}
		if errors.Is(err, entities.ErrResolutionFailed) {
			return entities.Locator{}, err
		}
		return entities.Locator{}, fmt.Errorf("%w: %v", entities.ErrResolutionFailed, err)
	}

	now := c.now()
	loc := entities.NewLocator(url, now)

	c.mu.Lock()
	previous := c.current
	c.current = loc
	c.invalidated = false
	c.mu.Unlock()

	if c.logger != nil {
		fields := []zap.Field{
			zap.Duration("resolve_time", now.Sub(started)),
			zap.Duration("age", 0),
		}
		if previous.URL != "" {
			fields = append(fields, zap.Duration("discarded_age", previous.Age(now)))
		}
		if !loc.ExpiresAt.IsZero() {
			fields = append(fields, zap.Time("expires_at", loc.ExpiresAt))
		}
		c.logger.Info("Locator refreshed", fields...)
	}
	return loc, nil
}

type resolveResult struct {
	url string
	err error
}

// resolveWithin returns when the resolver does or when ctx ends, whichever
// comes first, so a resolver that ignores its context cannot hold the cache
func (c *LocatorCache) resolveWithin(ctx context.Context) (string, error) {
	done := make(chan resolveResult, 1)
	go func() {
		url, err := c.resolver.Resolve(ctx)
		done <- resolveResult{url: url, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() != nil {
			return "", fmt.Errorf("%w: no locator within %s: %w", entities.ErrResolutionFailed, c.timeout, res.err)
		}
		return res.url, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w: no locator within %s: %w", entities.ErrResolutionFailed, c.timeout, ctx.Err())
	}
}
