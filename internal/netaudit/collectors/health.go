package collectors

import (
	"strings"
	"time"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
)

// NewHealthCollector gathers platform health: software version, hardware
// inventory, redundancy and CPU state.
func NewHealthCollector(deps Deps) Collector {
	info := LayerInfo{
		Name:          "health",
		Description:   "Software version, hardware and control-plane health",
		Categories:    []string{"system", "hardware"},
		EstimatedTime: 45 * time.Second,
	}

	commands := map[string][]string{
		PlatformIOSXR: {
			"show version",
			"show platform",
			"show redundancy summary",
			"show processes cpu",
		},
		PlatformIOSXE: {
			"show version",
			"show platform",
			"show redundancy",
			"show processes cpu sorted",
		},
		PlatformJunOS: {
			"show version",
			"show chassis hardware",
			"show chassis routing-engine",
			"show system alarms",
		},
	}

	return newBase(info, commands, nil, deps, healthFacts)
}

func healthFacts(r *domain.LayerResult) {
	if out, ok := successfulOutput(r, "show version"); ok {
		if line, found := firstLineContaining(out, "uptime is"); found {
			r.Facts["uptime"] = line
		}
		if line, found := firstLineContaining(out, "Version"); found {
			r.Facts["version_line"] = line
		}
	}

	for _, out := range outputsMatching(r, "alarms") {
		r.Facts["active_alarms"] = !strings.Contains(out, "No alarms")
	}
}
