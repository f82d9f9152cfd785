package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ehsaniara/netaudit/internal/netaudit/collectors"
	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
	"github.com/ehsaniara/netaudit/internal/netaudit/inventory"
	"github.com/ehsaniara/netaudit/internal/netaudit/orchestrator"
	"github.com/ehsaniara/netaudit/internal/netaudit/output"
	"github.com/ehsaniara/netaudit/internal/netaudit/parsing"
	"github.com/ehsaniara/netaudit/internal/netaudit/pool"
	"github.com/ehsaniara/netaudit/internal/netaudit/session"
)

func newCollectCmd() *cobra.Command {
	var (
		layers         []string
		maxConnections int
		outputDir      string
		noReport       bool
		deviceBudget   bool
	)

	cmd := &cobra.Command{
		Use:   "collect <inventory-file>",
		Short: "Collect state from every device in an inventory",
		Long: `Collect runs the requested layers against every device in the
inventory file (.csv or .yaml). Devices are audited concurrently up to the
connection pool capacity; a device that cannot be reached is recorded as
down and skipped as a unit.`,
		Example: `  netaudit collect fleet.csv
  netaudit collect fleet.yaml --layers health,bgp
  netaudit collect fleet.csv --max-connections 20 --output /var/lib/netaudit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxConnections > 0 {
				cfg.MaxConnections = maxConnections
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if deviceBudget {
				cfg.DeviceBudget = true
			}

			devices, err := inventory.Load(args[0], cfg.DefaultPlatform)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := pool.New(session.NewSSHDialer(cfg), cfg)
			defer func() { _ = p.Close() }()

			manager := pool.NewManager(p, cfg)
			registry := collectors.NewRegistry(collectors.Deps{
				Manager: manager,
				Parser:  parsing.NewLineParser(),
				Config:  cfg,
			})

			orch := orchestrator.New(manager, registry, output.NewFileSink(cfg.OutputDir), cfg)

			report, err := orch.Run(ctx, devices, layers)
			if err != nil {
				return err
			}

			printSummary(report)

			if !noReport {
				reportPath := filepath.Join(cfg.OutputDir, "run-report.json")
				if err := writeReport(report, reportPath); err != nil {
					return err
				}
				fmt.Printf("\nRun report written to %s\n", reportPath)
			}

			if len(report.DownDevices) == len(devices) {
				return fmt.Errorf("all %d devices were unreachable", len(devices))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&layers, "layers", nil,
		"Comma-separated layers to collect (default: all layers)")
	cmd.Flags().IntVar(&maxConnections, "max-connections", 0,
		"Override the connection pool capacity")
	cmd.Flags().StringVar(&outputDir, "output", "",
		"Directory for raw output and the run report")
	cmd.Flags().BoolVar(&noReport, "no-report", false,
		"Skip writing the JSON run report")
	cmd.Flags().BoolVar(&deviceBudget, "device-budget", false,
		"Bound each device by the sum of its layers' estimated times")

	return cmd
}

func printSummary(report *domain.RunReport) {
	fmt.Printf("\nLayers: %s\n", strings.Join(report.Layers, ", "))
	fmt.Printf("%-24s %-14s %10s %10s %10s  %s\n",
		"DEVICE", "PLATFORM", "COMMANDS", "FAILED", "ELAPSED", "STATUS")

	hostnames := make([]string, 0, len(report.Devices))
	for hostname := range report.Devices {
		hostnames = append(hostnames, hostname)
	}
	sort.Strings(hostnames)

	for _, hostname := range hostnames {
		dev := report.Devices[hostname]
		status := "ok"
		if dev.Down {
			status = "DOWN: " + dev.DownReason
		}
		fmt.Printf("%-24s %-14s %10d %10d %10s  %s\n",
			dev.Hostname, dev.Platform,
			dev.Totals.Commands, dev.Totals.Failed,
			dev.Elapsed.Round(time.Millisecond), status)
	}

	fmt.Printf("\n%d devices, %d down, %d commands (%d failed) in %s\n",
		len(report.Devices), len(report.DownDevices),
		report.Totals.Commands, report.Totals.Failed,
		report.Elapsed.Round(time.Millisecond))
}

func writeReport(report *domain.RunReport, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
