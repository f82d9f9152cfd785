// Package pool owns the bounded set of live device sessions and the manager
// that executes commands through them. Admission control lives here: the
// pool refuses to grow past max_connections instead of queueing forever.
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
	"github.com/ehsaniara/netaudit/internal/netaudit/session"
	"github.com/ehsaniara/netaudit/pkg/config"
	apperrors "github.com/ehsaniara/netaudit/pkg/errors"
	"github.com/ehsaniara/netaudit/pkg/logger"
)

// entry is one pooled session. Exclusively owned by the pool: callers get
// the session, never the entry.
type entry struct {
	session   session.Session
	hostname  string
	createdAt time.Time
	lastUsed  time.Time
}

// Stats is a snapshot of the pool's monotonic counters
type Stats struct {
	TotalCreated int `json:"total_created"`
	TotalReused  int `json:"total_reused"`
	TotalEvicted int `json:"total_evicted"`
}

// Pool is a bounded, identity-keyed session pool. One identity
// (hostname, device_type, username) maps to at most one live session;
// repeated acquisitions for the same identity reuse it.
type Pool struct {
	mu      sync.Mutex
	entries map[domain.IdentityKey]*entry
	pending map[domain.IdentityKey]chan struct{}
	closed  bool

	dialer         session.Dialer
	maxConnections int
	createRetries  int
	retryBackoff   time.Duration

	stats  Stats
	logger *logger.Logger
}

// New creates a pool that dials sessions through the given dialer
func New(dialer session.Dialer, cfg *config.Config) *Pool {
	return &Pool{
		entries:        make(map[domain.IdentityKey]*entry),
		pending:        make(map[domain.IdentityKey]chan struct{}),
		dialer:         dialer,
		maxConnections: cfg.MaxConnections,
		createRetries:  cfg.CreateRetries,
		retryBackoff:   cfg.RetryBackoff,
		logger:         logger.WithField("component", "connection-pool"),
	}
}

// Acquire returns a session for cfg's identity: a reused healthy one when
// present, a freshly dialed one when capacity allows, ErrPoolExhausted
// otherwise. Creation failures are retried up to the configured attempt
// count before a terminal ConnectionError is returned.
//
// The session stays owned by the pool; callers must not Close it.
func (p *Pool) Acquire(ctx context.Context, cfg domain.ConnectionConfig) (session.Session, error) {
	cfg = cfg.Normalize()
	key := cfg.Key()

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, apperrors.ErrPoolClosed
		}

		if e, ok := p.entries[key]; ok {
			if e.session.IsAlive() {
				e.lastUsed = time.Now()
				p.stats.TotalReused++
				s := e.session
				p.mu.Unlock()
				p.logger.Debug("reusing pooled session", "identity", key.String())
				return s, nil
			}
			// The entry went stale since the last cleanup. Evict it so a
			// fresh create can take its slot.
			_ = e.session.Close()
			delete(p.entries, key)
			p.stats.TotalEvicted++
			p.logger.Debug("evicted stale session on acquire", "identity", key.String())
		}

		// Another worker is already dialing this identity: wait for it and
		// re-check, so two workers never both create for the same key.
		if ch, ok := p.pending[key]; ok {
			p.mu.Unlock()
			select {
			case <-ch:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if len(p.entries)+len(p.pending) >= p.maxConnections {
			p.mu.Unlock()
			return nil, fmt.Errorf("acquire %s: %w", key.String(), apperrors.ErrPoolExhausted)
		}

		// Reserve the slot and dial outside the lock
		ch := make(chan struct{})
		p.pending[key] = ch
		p.mu.Unlock()

		s, err := p.dialWithRetry(ctx, cfg)

		p.mu.Lock()
		delete(p.pending, key)
		close(ch)
		if err != nil {
			p.mu.Unlock()
			return nil, err
		}
		if p.closed {
			p.mu.Unlock()
			_ = s.Close()
			return nil, apperrors.ErrPoolClosed
		}

		now := time.Now()
		p.entries[key] = &entry{
			session:   s,
			hostname:  cfg.Hostname,
			createdAt: now,
			lastUsed:  now,
		}
		p.stats.TotalCreated++
		live := len(p.entries)
		p.mu.Unlock()

		p.logger.Debug("created session", "identity", key.String(), "live", live)
		return s, nil
	}
}

// dialWithRetry attempts session creation up to createRetries times.
// Transient failures back off between attempts; context cancellation and
// other non-retryable failures stop immediately.
func (p *Pool) dialWithRetry(ctx context.Context, cfg domain.ConnectionConfig) (session.Session, error) {
	var lastErr error

	for attempt := 1; attempt <= p.createRetries; attempt++ {
		s, err := p.dialer.Dial(ctx, cfg)
		if err == nil {
			return s, nil
		}
		lastErr = err

		if !apperrors.IsRetryable(err) {
			return nil, apperrors.NewConnectionError(cfg.Hostname, attempt, err)
		}
		p.logger.Warn("session creation failed",
			"host", cfg.Hostname,
			"attempt", attempt,
			"of", p.createRetries,
			"error", err)

		if attempt == p.createRetries {
			break
		}

		timer := time.NewTimer(p.retryBackoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, apperrors.NewConnectionError(cfg.Hostname, attempt, ctx.Err())
		}
	}

	return nil, apperrors.NewConnectionError(cfg.Hostname, p.createRetries, lastErr)
}

// CleanupDead probes every live entry and removes the ones whose liveness
// check fails, freeing their capacity. Returns how many were removed.
// This never runs automatically; callers decide when a sweep is worth it.
func (p *Pool) CleanupDead() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for key, e := range p.entries {
		if e.session.IsAlive() {
			continue
		}
		_ = e.session.Close()
		delete(p.entries, key)
		p.stats.TotalEvicted++
		removed++
		p.logger.Info("evicted dead session", "identity", key.String())
	}
	return removed
}

// Stats returns a snapshot of the pool counters
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Live returns the number of live pooled sessions
func (p *Pool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Close tears down every pooled session. The pool is unusable afterwards.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	for key, e := range p.entries {
		if err := e.session.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.entries, key)
	}

	p.logger.Debug("pool closed",
		"created", p.stats.TotalCreated,
		"reused", p.stats.TotalReused,
		"evicted", p.stats.TotalEvicted)
	return firstErr
}
