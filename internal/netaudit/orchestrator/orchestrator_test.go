package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehsaniara/netaudit/internal/netaudit/collectors"
	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
	"github.com/ehsaniara/netaudit/internal/netaudit/output"
	"github.com/ehsaniara/netaudit/internal/netaudit/parsing"
	"github.com/ehsaniara/netaudit/internal/netaudit/pool"
	"github.com/ehsaniara/netaudit/internal/netaudit/session/sessiontest"
	"github.com/ehsaniara/netaudit/pkg/config"
	apperrors "github.com/ehsaniara/netaudit/pkg/errors"
)

type harness struct {
	dialer *sessiontest.FakeDialer
	orch   *Orchestrator
	pool   *pool.Pool
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()

	cfg := config.GetDefaults()
	cfg.CreateRetries = 2
	cfg.RetryBackoff = time.Millisecond
	if mutate != nil {
		mutate(cfg)
	}

	dialer := sessiontest.NewFakeDialer()
	p := pool.New(dialer, cfg)
	t.Cleanup(func() { _ = p.Close() })

	manager := pool.NewManager(p, cfg)
	registry := collectors.NewRegistry(collectors.Deps{
		Manager: manager,
		Parser:  parsing.NewLineParser(),
		Config:  cfg,
	})

	return &harness{
		dialer: dialer,
		orch:   New(manager, registry, output.NopSink{}, cfg),
		pool:   p,
	}
}

func device(host string) domain.Device {
	return domain.Device{
		Hostname: host,
		Platform: "cisco_iosxr",
		Username: "audit",
		Password: "secret",
	}
}

func TestRun_AllDevicesHealthy(t *testing.T) {
	h := newHarness(t, nil)

	report, err := h.orch.Run(context.Background(), []domain.Device{device("pe-1"), device("pe-2")}, []string{"health", "console"})
	require.NoError(t, err)

	assert.Equal(t, []string{"health", "console"}, report.Layers)
	assert.Len(t, report.Devices, 2)
	assert.Empty(t, report.DownDevices)

	for _, host := range []string{"pe-1", "pe-2"} {
		dev := report.Devices[host]
		require.NotNil(t, dev, host)
		assert.False(t, dev.Down)
		assert.Len(t, dev.Layers, 2)

		// 4 health + 2 console commands on IOS XR, all successful
		assert.Equal(t, 6, dev.Totals.Commands)
		assert.Equal(t, 6, dev.Totals.Succeeded)
		assert.Equal(t, 0, dev.Totals.Failed)
		assert.Greater(t, dev.Elapsed, time.Duration(0))
	}

	assert.Equal(t, 12, report.Totals.Commands)
	assert.Equal(t, 12, report.Totals.Succeeded)

	// One connection per device, shared across its layers
	assert.Equal(t, 1, h.dialer.Dials("pe-1"))
	assert.Equal(t, 1, h.dialer.Dials("pe-2"))
	assert.Equal(t, 2, h.pool.Stats().TotalCreated)
}

func TestRun_DownDeviceSkippedAsUnit(t *testing.T) {
	h := newHarness(t, nil)
	h.dialer.AlwaysFail("pe-2", apperrors.New("no route to host"))

	report, err := h.orch.Run(context.Background(), []domain.Device{device("pe-1"), device("pe-2")}, []string{"health", "bgp"})
	require.NoError(t, err, "one bad device must not abort the run")

	assert.Equal(t, []string{"pe-2"}, report.DownDevices)

	down := report.Devices["pe-2"]
	require.NotNil(t, down)
	assert.True(t, down.Down)
	assert.Contains(t, down.DownReason, "after 2 attempts")
	assert.Empty(t, down.Layers, "all layers skipped as a single unit")
	assert.Equal(t, 0, down.Totals.Commands)

	// Retry budget respected, then terminal
	assert.Equal(t, 2, h.dialer.Dials("pe-2"))

	// The healthy device was fully collected
	up := report.Devices["pe-1"]
	require.NotNil(t, up)
	assert.False(t, up.Down)
	assert.Len(t, up.Layers, 2)
}

func TestRun_TransientFailureRecovers(t *testing.T) {
	h := newHarness(t, nil)
	h.dialer.FailuresFor("pe-1", 1) // fail once, then succeed

	report, err := h.orch.Run(context.Background(), []domain.Device{device("pe-1")}, []string{"console"})
	require.NoError(t, err)

	assert.Empty(t, report.DownDevices)
	assert.False(t, report.Devices["pe-1"].Down)
	assert.Equal(t, 2, h.dialer.Dials("pe-1"))
}

func TestRun_CommandFailuresAreAccountedNotFatal(t *testing.T) {
	h := newHarness(t, nil)
	h.dialer.OnDial = func(s *sessiontest.FakeSession) {
		s.Errs["show users"] = apperrors.New("timed out")
	}

	report, err := h.orch.Run(context.Background(), []domain.Device{device("pe-1")}, []string{"console"})
	require.NoError(t, err)

	dev := report.Devices["pe-1"]
	assert.False(t, dev.Down, "a failed command is data, not a down device")
	assert.Equal(t, 2, dev.Totals.Commands)
	assert.Equal(t, 1, dev.Totals.Failed)

	layer := dev.Layers["console"]
	require.NotNil(t, layer)
	assert.Equal(t, []string{"show users"}, layer.CommandsFailed)
}

func TestRun_SessionLostMidDevice(t *testing.T) {
	h := newHarness(t, nil)
	h.dialer.OnDial = func(s *sessiontest.FakeSession) {
		s.DieAfter = 4 // dies at the end of the health layer
	}

	report, err := h.orch.Run(context.Background(), []domain.Device{device("pe-1")}, []string{"health", "console"})
	require.NoError(t, err)

	dev := report.Devices["pe-1"]
	assert.True(t, dev.Down)
	assert.Contains(t, dev.DownReason, "session lost")

	// health completed, console never ran
	assert.Contains(t, dev.Layers, "health")
	assert.NotContains(t, dev.Layers, "console")
	assert.Equal(t, []string{"pe-1"}, report.DownDevices)
}

func TestRun_PoolExhaustionSkipsDevice(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) {
		cfg.MaxConnections = 1
	})

	report, err := h.orch.Run(context.Background(), []domain.Device{device("pe-1"), device("pe-2")}, []string{"console"})
	require.NoError(t, err)

	// With capacity 1 the second device is refused, not queued forever
	require.Len(t, report.DownDevices, 1)
	down := report.Devices[report.DownDevices[0]]
	assert.True(t, down.Down)
	assert.Contains(t, down.DownReason, "pool exhausted")

	// Exactly one device was collected
	collected := 0
	for _, dev := range report.Devices {
		if !dev.Down {
			collected++
			assert.Len(t, dev.Layers, 1)
		}
	}
	assert.Equal(t, 1, collected)
}

func TestRun_RequestShapingErrors(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.orch.Run(context.Background(), []domain.Device{device("pe-1")}, []string{"bogus"})
	assert.ErrorIs(t, err, apperrors.ErrUnknownLayer)

	_, err = h.orch.Run(context.Background(), nil, []string{"health"})
	assert.ErrorIs(t, err, apperrors.ErrEmptyInventory)
}

func TestRun_DefaultsToAllLayers(t *testing.T) {
	h := newHarness(t, nil)

	report, err := h.orch.Run(context.Background(), []domain.Device{device("pe-1")}, nil)
	require.NoError(t, err)

	assert.Len(t, report.Layers, 8)
	assert.Len(t, report.Devices["pe-1"].Layers, 8)
}
