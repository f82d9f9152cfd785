package collectors

import (
	"context"
	"time"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
	"github.com/ehsaniara/netaudit/internal/netaudit/output"
	"github.com/ehsaniara/netaudit/internal/netaudit/parsing"
	"github.com/ehsaniara/netaudit/internal/netaudit/pool"
	"github.com/ehsaniara/netaudit/internal/netaudit/session"
	"github.com/ehsaniara/netaudit/pkg/config"
	"github.com/ehsaniara/netaudit/pkg/logger"
)

// factScanner derives a layer's aggregate facts from the already-collected
// result. It must only read r; it never talks to the device.
type factScanner func(r *domain.LayerResult)

// base carries the collection loop shared by every layer. Individual layers
// are just a command table, a heavy-command list and a fact scanner on top.
type base struct {
	info     LayerInfo
	commands map[string][]string // platform -> ordered command list
	heavy    []string            // exact match marks a command heavy

	manager *pool.Manager
	parser  parsing.Parser

	defaultTimeout time.Duration
	heavyTimeout   time.Duration

	facts  factScanner
	logger *logger.Logger
}

func newBase(info LayerInfo, commands map[string][]string, heavy []string, deps Deps, facts factScanner) *base {
	platforms := make([]string, 0, len(commands))
	for p := range commands {
		platforms = append(platforms, p)
	}
	info.Platforms = platforms

	return &base{
		info:           info,
		commands:       commands,
		heavy:          heavy,
		manager:        deps.Manager,
		parser:         deps.Parser,
		defaultTimeout: deps.Config.CommandTimeout,
		heavyTimeout:   deps.Config.HeavyTimeout,
		facts:          facts,
		logger:         logger.WithFields("component", "collector", "layer", info.Name),
	}
}

// Deps bundles what every collector needs
type Deps struct {
	Manager *pool.Manager
	Parser  parsing.Parser
	Config  *config.Config
}

func (b *base) Name() string {
	return b.info.Name
}

func (b *base) Info() LayerInfo {
	return b.info
}

func (b *base) CommandsForPlatform(platform string) []string {
	if cmds, ok := b.commands[platform]; ok {
		return cmds
	}
	return b.commands[DefaultPlatform]
}

// commandTimeout is the static classification: heavy commands (routing table
// dumps and the like) get the long timeout, everything else the default.
func (b *base) commandTimeout(command string) time.Duration {
	for _, heavy := range b.heavy {
		if command == heavy {
			return b.heavyTimeout
		}
	}
	return b.defaultTimeout
}

func (b *base) Collect(ctx context.Context, s session.Session, hostname, platform string, sink output.Sink) (*domain.LayerResult, error) {
	result := domain.NewLayerResult(hostname, platform, b.info.Name)
	commands := b.CommandsForPlatform(platform)

	b.logger.Debug("collecting layer",
		"host", hostname,
		"platform", platform,
		"commands", len(commands))

	for _, command := range commands {
		res := b.manager.ExecuteCommand(ctx, s, command, b.commandTimeout(command))

		if res.Success {
			if err := sink.Save(hostname, b.info.Name, command, res.Output); err != nil {
				// Losing the raw file is worth a warning, not a failed command
				b.logger.Warn("failed to save raw output",
					"host", hostname, "command", command, "error", err)
			}
			result.Parsed[command] = b.parser.Parse(command, res.Output, platform)
		}

		result.Record(res)
	}

	if b.facts != nil {
		b.facts(result)
	}

	b.logger.Info("layer collected",
		"host", hostname,
		"succeeded", result.SuccessCount(),
		"failed", result.FailureCount(),
		"success_rate", result.SuccessRate())

	return result, nil
}
