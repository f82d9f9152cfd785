// Package orchestrator drives collection across the fleet: one worker per
// device (bounded by the pool capacity), one shared connection per device,
// layers sequential within a device because a CLI session handles one
// request at a time.
package orchestrator

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ehsaniara/netaudit/internal/netaudit/collectors"
	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
	"github.com/ehsaniara/netaudit/internal/netaudit/output"
	"github.com/ehsaniara/netaudit/internal/netaudit/pool"
	"github.com/ehsaniara/netaudit/internal/netaudit/session"
	"github.com/ehsaniara/netaudit/pkg/config"
	apperrors "github.com/ehsaniara/netaudit/pkg/errors"
	"github.com/ehsaniara/netaudit/pkg/logger"
)

// Orchestrator runs the requested layers against every device and
// aggregates per-device and run-level statistics.
type Orchestrator struct {
	manager  *pool.Manager
	registry *collectors.Registry
	sink     output.Sink
	cfg      *config.Config
	logger   *logger.Logger
}

// New creates an orchestrator
func New(manager *pool.Manager, registry *collectors.Registry, sink output.Sink, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		manager:  manager,
		registry: registry,
		sink:     sink,
		cfg:      cfg,
		logger:   logger.WithField("component", "orchestrator"),
	}
}

// Run audits devices x layers. It always returns a complete report: a bad
// device or command becomes data in the report, never an aborted run. The
// only errors returned are request-shaping ones (unknown layer, empty
// inventory) detected before any connection is attempted.
func (o *Orchestrator) Run(ctx context.Context, devices []domain.Device, layerNames []string) (*domain.RunReport, error) {
	layers, err := o.registry.Resolve(layerNames)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, apperrors.ErrEmptyInventory
	}

	resolved := make([]string, len(layers))
	for i, l := range layers {
		resolved[i] = l.Name()
	}

	report := &domain.RunReport{
		StartedAt: time.Now(),
		Layers:    resolved,
		Devices:   make(map[string]*domain.DeviceReport, len(devices)),
	}

	o.logger.Info("collection run starting",
		"devices", len(devices),
		"layers", resolved,
		"max_connections", o.cfg.MaxConnections)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(o.cfg.MaxConnections)

	for _, dev := range devices {
		dev := dev
		g.Go(func() error {
			devReport := o.collectDevice(ctx, dev, layers)

			mu.Lock()
			report.Devices[dev.Hostname] = devReport
			report.Totals.Merge(devReport.Totals)
			if devReport.Down {
				report.DownDevices = append(report.DownDevices, dev.Hostname)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are report data

	sort.Strings(report.DownDevices)
	report.Elapsed = time.Since(report.StartedAt)

	o.logger.Info("collection run finished",
		"devices", len(devices),
		"down", len(report.DownDevices),
		"commands", report.Totals.Commands,
		"failed", report.Totals.Failed,
		"elapsed", report.Elapsed)

	return report, nil
}

// collectDevice acquires one connection for the device and runs every
// requested layer over it in order. A device whose connection cannot be
// created after the retry budget is recorded as down and all its layers
// are skipped as a unit.
func (o *Orchestrator) collectDevice(ctx context.Context, dev domain.Device, layers []collectors.Collector) *domain.DeviceReport {
	start := time.Now()
	report := &domain.DeviceReport{
		Hostname: dev.Hostname,
		Platform: dev.Platform,
		Layers:   make(map[string]*domain.LayerResult, len(layers)),
	}

	devCtx := ctx
	if o.cfg.DeviceBudget {
		var budget time.Duration
		for _, layer := range layers {
			budget += layer.Info().EstimatedTime
		}
		var cancel context.CancelFunc
		devCtx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	connCfg := domain.ConnectionConfig{
		Hostname:   dev.Hostname,
		DeviceType: dev.Platform,
		Username:   dev.Username,
		Password:   dev.Password,
		Port:       dev.Port,
		Timeout:    o.cfg.ConnectTimeout,
	}

	err := o.manager.WithConnection(devCtx, connCfg, func(s session.Session) error {
		for _, layer := range layers {
			result, collectErr := layer.Collect(devCtx, s, dev.Hostname, dev.Platform, o.sink)
			if collectErr != nil {
				// One broken layer never aborts the device
				o.logger.Error("layer collection failed",
					"host", dev.Hostname, "layer", layer.Name(), "error", collectErr)
				continue
			}

			report.Layers[layer.Name()] = result
			report.Totals.Add(result)

			// A dead session cannot serve the remaining layers
			if !s.IsAlive() {
				report.Down = true
				report.DownReason = "session lost during collection"
				o.logger.Warn("session died mid-device",
					"host", dev.Hostname, "after_layer", layer.Name())
				break
			}
		}
		return nil
	})
	if err != nil {
		// Terminal connection failure or pool refusal: the whole device is
		// one down record, not one failure per layer.
		report.Down = true
		report.DownReason = err.Error()

		if apperrors.IsPoolExhausted(err) {
			o.logger.Warn("device skipped, pool at capacity",
				"host", dev.Hostname, "max_connections", o.cfg.MaxConnections)
		} else {
			o.logger.Error("device unreachable", "host", dev.Hostname, "error", err)
		}
	}

	report.Elapsed = time.Since(start)
	return report
}
