package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"product-storefront/internal/storefront"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

const (
	defaultExpirySkew      = 30 * time.Second
	defaultExchangeTimeout = 10 * time.Second
	defaultMaxLifetime     = 5 * time.Minute
	defaultMaxEntries      = 1024
	authorizationHeader    = "Authorization"
	bearerPrefix           = "Bearer "
)

// Exchanger obtains a fresh credential for a downstream registration.
// PrincipalKey decides whose identity the credential carries: the caller for
// token relay, a fixed service identity for client-credential exchange.
type Exchanger interface {
	PrincipalKey(principal storefront.Principal) string
	Exchange(ctx context.Context, principal storefront.Principal, registration string) (storefront.Credential, error)
}

type Config struct {
	ExpirySkew      time.Duration
	ExchangeTimeout time.Duration
	// MaxLifetime bounds how long a credential is reused, including one
	// issued without an expiry.
	MaxLifetime time.Duration
	// MaxEntries caps the cache; the oldest entry is evicted past it.
	MaxEntries int
}

type cacheKey struct {
	principal    string
	registration string
}

func (k cacheKey) String() string {
	return k.principal + "\x00" + k.registration
}

type cacheEntry struct {
	cred       storefront.Credential
	storedAt   time.Time
	reuseUntil time.Time
}

// Provider caches credentials per (principal, registration) and allows at
// most one exchange in flight per key; concurrent callers share its result.
type Provider struct {
	exchanger Exchanger
	exchanges *prometheus.CounterVec
	skew        time.Duration
	timeout     time.Duration
	maxLifetime time.Duration
	maxEntries  int
	now         func() time.Time

	mu    sync.RWMutex
	cache map[cacheKey]cacheEntry
	group singleflight.Group
}

func NewProvider(exchanger Exchanger, exchanges *prometheus.CounterVec, cfg Config) *Provider {
	if cfg.ExpirySkew <= 0 {
		cfg.ExpirySkew = defaultExpirySkew
	}
	if cfg.ExchangeTimeout <= 0 {
		cfg.ExchangeTimeout = defaultExchangeTimeout
	}
	if cfg.MaxLifetime <= 0 {
		cfg.MaxLifetime = defaultMaxLifetime
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaultMaxEntries
	}
	return &Provider{
		exchanger:   exchanger,
		exchanges:   exchanges,
		skew:        cfg.ExpirySkew,
		timeout:     cfg.ExchangeTimeout,
		maxLifetime: cfg.MaxLifetime,
		maxEntries:  cfg.MaxEntries,
		now:         time.Now,
		cache:       make(map[cacheKey]cacheEntry),
	}
}

func (p *Provider) Credential(ctx context.Context, principal storefront.Principal, registration string) (storefront.Credential, error) {
	key := cacheKey{principal: p.exchanger.PrincipalKey(principal), registration: registration}
	if key.principal == "" {
		return storefront.Credential{}, fmt.Errorf("%w: no principal for %q", storefront.ErrUnauthorized, registration)
	}

	if cred, ok := p.cached(key); ok {
		return cred, nil
	}

	ch := p.group.DoChan(key.String(), func() (any, error) {
		if cred, ok := p.cached(key); ok {
			return cred, nil
		}
		return p.exchange(ctx, key, principal)
	})

	select {
	case <-ctx.Done():
		return storefront.Credential{}, fmt.Errorf("%w: await credential for %q: %w", storefront.ErrUnreachable, registration, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return storefront.Credential{}, res.Err
		}
		return res.Val.(storefront.Credential), nil
	}
}

// exchange runs detached from the first caller's cancellation since other
// callers may be waiting on the same flight.
func (p *Provider) exchange(ctx context.Context, key cacheKey, principal storefront.Principal) (storefront.Credential, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	cred, err := p.exchanger.Exchange(ctx, principal, key.registration)
	if err != nil {
		if errors.Is(err, storefront.ErrUnauthorized) {
			return storefront.Credential{}, err
		}
		return storefront.Credential{}, fmt.Errorf("%w: exchange for %q: %w", storefront.ErrUnauthorized, key.registration, err)
	}
	if !cred.Valid(p.now()) {
		return storefront.Credential{}, fmt.Errorf("%w: credential for %q expired on issue", storefront.ErrUnauthorized, key.registration)
	}

	p.exchanges.WithLabelValues(key.registration).Inc()
	p.store(key, cred)
	return cred, nil
}

func (p *Provider) cached(key cacheKey) (storefront.Credential, bool) {
	p.mu.RLock()
	entry, ok := p.cache[key]
	p.mu.RUnlock()
	if !ok || !p.now().Before(entry.reuseUntil) {
		return storefront.Credential{}, false
	}
	return entry.cred, true
}

// store caches cred until its expiry less the skew. The skew never exceeds
// half of the remaining lifetime, so short-lived credentials are still reused.
func (p *Provider) store(key cacheKey, cred storefront.Credential) {
	now := p.now()
	end := now.Add(p.maxLifetime)
	if !cred.ExpiresAt.IsZero() && cred.ExpiresAt.Before(end) {
		end = cred.ExpiresAt
	}
	skew := p.skew
	if half := end.Sub(now) / 2; half < skew {
		skew = half
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.cache[key]; !ok && len(p.cache) >= p.maxEntries {
		p.evict(now)
	}
	p.cache[key] = cacheEntry{cred: cred, storedAt: now, reuseUntil: end.Add(-skew)}
}

// evict drops stale entries, then the oldest one if the cache is still full.
// Callers hold p.mu.
func (p *Provider) evict(now time.Time) {
	for k, e := range p.cache {
		if !now.Before(e.reuseUntil) {
			delete(p.cache, k)
		}
	}
	if len(p.cache) < p.maxEntries {
		return
	}

	var (
		oldest    cacheKey
		oldestAt  time.Time
		hasOldest bool
	)
	for k, e := range p.cache {
		if !hasOldest || e.storedAt.Before(oldestAt) {
			oldest, oldestAt, hasOldest = k, e.storedAt, true
		}
	}
	delete(p.cache, oldest)
}

// Attach sets the bearer header on an outbound request. An empty or expired
// credential is refused rather than sent.
func Attach(req *http.Request, cred storefront.Credential) error {
	if !cred.Valid(time.Now()) {
		return fmt.Errorf("%w: refusing to attach invalid credential", storefront.ErrUnauthorized)
	}
	req.Header.Set(authorizationHeader, bearerPrefix+cred.Token)
	return nil
}
