// Package collectors implements the per-layer data collection: each layer
// declares an ordered command list per platform, drives execution through
// the connection manager, and derives its aggregate facts by scanning the
// text it already collected. No fact derivation issues extra commands.
package collectors

import (
	"context"
	"time"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
	"github.com/ehsaniara/netaudit/internal/netaudit/output"
	"github.com/ehsaniara/netaudit/internal/netaudit/session"
)

// DefaultPlatform is what unknown platforms fall back to. The command
// tables are most complete for IOS XR, so an unrecognized platform gets
// the XR list rather than an error.
const DefaultPlatform = "cisco_iosxr"

// Supported platform identifiers
const (
	PlatformIOSXR = "cisco_iosxr"
	PlatformIOSXE = "cisco_iosxe"
	PlatformJunOS = "juniper_junos"
)

// LayerInfo is static metadata about a layer, used for planning and
// reporting only.
type LayerInfo struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Categories    []string      `json:"categories"`
	Platforms     []string      `json:"platforms"`
	EstimatedTime time.Duration `json:"estimated_time"`
}

// Collector is the shared contract every layer implements
type Collector interface {
	// Name returns the layer identifier (health, bgp, ...)
	Name() string

	// CommandsForPlatform returns the ordered command list for a platform.
	// Unknown platforms fall back to DefaultPlatform's list.
	CommandsForPlatform(platform string) []string

	// Collect runs the layer's commands on the session, saves raw output to
	// the sink, parses it, and returns the per-layer result. A broken
	// command is recorded and skipped over, never fatal to the layer.
	Collect(ctx context.Context, s session.Session, hostname, platform string, sink output.Sink) (*domain.LayerResult, error)

	// Info returns the layer's static metadata
	Info() LayerInfo
}
