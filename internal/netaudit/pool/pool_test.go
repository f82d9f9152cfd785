package pool

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
	"github.com/ehsaniara/netaudit/internal/netaudit/session"
	"github.com/ehsaniara/netaudit/internal/netaudit/session/sessiontest"
	"github.com/ehsaniara/netaudit/pkg/config"
	apperrors "github.com/ehsaniara/netaudit/pkg/errors"
)

func testConfig() *config.Config {
	cfg := config.GetDefaults()
	cfg.MaxConnections = 3
	cfg.CreateRetries = 3
	cfg.RetryBackoff = time.Millisecond
	return cfg
}

func connCfg(host string) domain.ConnectionConfig {
	return domain.ConnectionConfig{
		Hostname:   host,
		DeviceType: "cisco_iosxr",
		Username:   "audit",
		Password:   "secret",
	}
}

func TestAcquire_ReusesSameIdentity(t *testing.T) {
	dialer := sessiontest.NewFakeDialer()
	p := New(dialer, testConfig())
	defer p.Close()

	ctx := context.Background()

	first, err := p.Acquire(ctx, connCfg("pe-1"))
	require.NoError(t, err)

	second, err := p.Acquire(ctx, connCfg("pe-1"))
	require.NoError(t, err)

	assert.Same(t, first, second, "same identity must return the same session")
	assert.Equal(t, 1, dialer.Dials("pe-1"))

	stats := p.Stats()
	assert.Equal(t, 1, stats.TotalCreated)
	assert.Equal(t, 1, stats.TotalReused)
	assert.Equal(t, 0, stats.TotalEvicted)
}

func TestAcquire_DifferentIdentityDifferentSession(t *testing.T) {
	dialer := sessiontest.NewFakeDialer()
	p := New(dialer, testConfig())
	defer p.Close()

	ctx := context.Background()

	a, err := p.Acquire(ctx, connCfg("pe-1"))
	require.NoError(t, err)

	// Same host, different username: different identity
	other := connCfg("pe-1")
	other.Username = "readonly"
	b, err := p.Acquire(ctx, other)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, p.Stats().TotalCreated)
	assert.Equal(t, 2, p.Live())
}

func TestAcquire_PoolExhausted(t *testing.T) {
	dialer := sessiontest.NewFakeDialer()
	p := New(dialer, testConfig()) // max 3
	defer p.Close()

	ctx := context.Background()

	for _, host := range []string{"pe-1", "pe-2", "pe-3"} {
		_, err := p.Acquire(ctx, connCfg(host))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, p.Stats().TotalCreated)

	// A fourth distinct identity is refused
	_, err := p.Acquire(ctx, connCfg("pe-4"))
	require.Error(t, err)
	assert.True(t, apperrors.IsPoolExhausted(err))

	// Re-acquiring a known identity still works at capacity
	s, err := p.Acquire(ctx, connCfg("pe-1"))
	require.NoError(t, err)
	assert.Equal(t, "pe-1", s.Hostname())
	assert.Equal(t, 1, p.Stats().TotalReused)
}

func TestAcquire_RetriesThenSucceeds(t *testing.T) {
	dialer := sessiontest.NewFakeDialer()
	dialer.FailuresFor("pe-1", 1) // fail once, then succeed

	p := New(dialer, testConfig())
	defer p.Close()

	s, err := p.Acquire(context.Background(), connCfg("pe-1"))
	require.NoError(t, err)

	assert.Equal(t, "pe-1", s.Hostname())
	assert.Equal(t, 2, dialer.Dials("pe-1"))
	assert.Equal(t, 1, p.Stats().TotalCreated)
}

func TestAcquire_RetriesExhausted(t *testing.T) {
	dialer := sessiontest.NewFakeDialer()
	dialer.AlwaysFail("pe-1", apperrors.New("no route to host"))

	p := New(dialer, testConfig())
	defer p.Close()

	_, err := p.Acquire(context.Background(), connCfg("pe-1"))
	require.Error(t, err)

	var connErr *apperrors.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, 3, connErr.Attempts, "must stop at the retry budget")
	assert.Equal(t, 3, dialer.Dials("pe-1"))
	assert.True(t, apperrors.IsDeviceUnreachable(err))

	// The failed identity consumed no capacity
	assert.Equal(t, 0, p.Live())
	assert.Equal(t, 0, p.Stats().TotalCreated)
}

func TestAcquire_StaleEntryEvictedAndRecreated(t *testing.T) {
	dialer := sessiontest.NewFakeDialer()
	p := New(dialer, testConfig())
	defer p.Close()

	ctx := context.Background()

	first, err := p.Acquire(ctx, connCfg("pe-1"))
	require.NoError(t, err)
	dialer.Sessions["pe-1"].SetAlive(false)

	second, err := p.Acquire(ctx, connCfg("pe-1"))
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	stats := p.Stats()
	assert.Equal(t, 2, stats.TotalCreated)
	assert.Equal(t, 1, stats.TotalEvicted)
	assert.Equal(t, 0, stats.TotalReused)
}

func TestCleanupDead(t *testing.T) {
	dialer := sessiontest.NewFakeDialer()
	p := New(dialer, testConfig())
	defer p.Close()

	ctx := context.Background()

	_, err := p.Acquire(ctx, connCfg("pe-1"))
	require.NoError(t, err)
	_, err = p.Acquire(ctx, connCfg("pe-2"))
	require.NoError(t, err)

	// One of the two goes dead
	dialer.Sessions["pe-2"].SetAlive(false)

	removed := p.CleanupDead()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, p.Live())
	assert.Equal(t, 1, p.Stats().TotalEvicted)
	assert.True(t, dialer.Sessions["pe-2"].Closed, "evicted session must be closed")

	// The survivor is still acquirable and reused
	s, err := p.Acquire(ctx, connCfg("pe-1"))
	require.NoError(t, err)
	assert.Equal(t, "pe-1", s.Hostname())
	assert.Equal(t, 1, p.Stats().TotalReused)

	// Nothing left to sweep
	assert.Equal(t, 0, p.CleanupDead())
}

func TestClose(t *testing.T) {
	dialer := sessiontest.NewFakeDialer()
	p := New(dialer, testConfig())

	_, err := p.Acquire(context.Background(), connCfg("pe-1"))
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, dialer.Sessions["pe-1"].Closed)
	assert.Equal(t, 0, p.Live())

	_, err = p.Acquire(context.Background(), connCfg("pe-2"))
	assert.ErrorIs(t, err, apperrors.ErrPoolClosed)

	// Idempotent
	assert.NoError(t, p.Close())
}

func TestAcquire_ConcurrentSameIdentityCreatesOnce(t *testing.T) {
	dialer := sessiontest.NewFakeDialer()
	cfg := testConfig()
	cfg.MaxConnections = 10
	p := New(dialer, cfg)
	defer p.Close()

	const workers = 16
	var wg sync.WaitGroup
	sessions := make([]session.Session, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := p.Acquire(context.Background(), connCfg("pe-1"))
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, dialer.Dials("pe-1"), "concurrent acquires must dial once")
	assert.Equal(t, 1, p.Stats().TotalCreated)
	assert.Equal(t, workers-1, p.Stats().TotalReused)
	for i := 1; i < workers; i++ {
		assert.Same(t, sessions[0], sessions[i])
	}
}

func TestAcquire_ContextCanceledDuringBackoff(t *testing.T) {
	dialer := sessiontest.NewFakeDialer()
	dialer.AlwaysFail("pe-1", apperrors.New("refused"))

	cfg := testConfig()
	cfg.RetryBackoff = time.Minute // would block without cancellation
	p := New(dialer, cfg)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Acquire(ctx, connCfg("pe-1"))

	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must cut the backoff short")
	var connErr *apperrors.ConnectionError
	assert.ErrorAs(t, err, &connErr)
}
