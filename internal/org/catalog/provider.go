// Package catalog caches the global catalog snapshot shared by every org aggregate in the process.
package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"f3-catalog/backend/internal/org/domain"
	"f3-catalog/backend/internal/platform/logger"
)

// DefaultTTL is used when the configured TTL is not positive.
const DefaultTTL = 300 * time.Second

// Source loads every active global row (no owning org).
type Source interface {
	LoadGlobalCatalog(ctx context.Context) (domain.GlobalCatalog, error)
}

type snapshot struct {
	catalog  domain.GlobalCatalog
	loadedAt time.Time
}

// Provider serves the global catalog from a TTL cache. Reads are lock-free. When the snapshot expires,
// one caller reloads it while concurrent callers keep reading the stale copy; only a cold cache blocks.
type Provider struct {
	src        Source
	ttl        time.Duration
	now        func() time.Time
	log        *logger.Logger
	current    atomic.Pointer[snapshot]
	refreshing atomic.Bool
	cold       singleflight.Group
}

// Option configures a Provider.
type Option func(*Provider)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(p *Provider) { p.now = now } }

// WithLogger sets the logger used for background refresh failures.
func WithLogger(l *logger.Logger) Option { return func(p *Provider) { p.log = l } }

func NewProvider(src Source, ttl time.Duration, opts ...Option) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	p := &Provider{src: src, ttl: ttl, now: time.Now, log: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the snapshot as of the provider's clock.
func (p *Provider) Get(ctx context.Context) (domain.GlobalCatalog, error) {
	return p.Refresh(ctx, p.now())
}

// Refresh returns a snapshot no older than the TTL as of now, reloading it if needed. A failed reload of
// an expired snapshot is logged and the stale snapshot is returned.
func (p *Provider) Refresh(ctx context.Context, now time.Time) (domain.GlobalCatalog, error) {
	snap := p.current.Load()
	if snap == nil {
		return p.loadCold(ctx, now)
	}
	if now.Sub(snap.loadedAt) < p.ttl {
		return snap.catalog, nil
	}
	if !p.refreshing.CompareAndSwap(false, true) {
		return snap.catalog, nil
	}
	defer p.refreshing.Store(false)

	c, err := p.src.LoadGlobalCatalog(ctx)
	if err != nil {
		p.log.Warn("global catalog refresh failed; serving stale snapshot", "error", err, "age", now.Sub(snap.loadedAt))
		return snap.catalog, nil
	}
	p.current.Store(&snapshot{catalog: c, loadedAt: now})
	return c, nil
}

// Invalidate drops the cached snapshot so the next read reloads it.
func (p *Provider) Invalidate() { p.current.Store(nil) }

func (p *Provider) loadCold(ctx context.Context, now time.Time) (domain.GlobalCatalog, error) {
	v, err, _ := p.cold.Do("catalog", func() (any, error) {
		if snap := p.current.Load(); snap != nil {
			return snap.catalog, nil
		}
		c, err := p.src.LoadGlobalCatalog(ctx)
		if err != nil {
			return nil, err
		}
		p.current.Store(&snapshot{catalog: c, loadedAt: now})
		return c, nil
	})
	if err != nil {
		return domain.GlobalCatalog{}, err
	}
	return v.(domain.GlobalCatalog), nil
}
