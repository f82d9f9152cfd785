package collectors

import (
	"strings"
	"time"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
)

// NewStaticCollector gathers static route configuration and state
func NewStaticCollector(deps Deps) Collector {
	info := LayerInfo{
		Name:          "static",
		Description:   "Static route configuration and installed routes",
		Categories:    []string{"routing", "static"},
		EstimatedTime: 30 * time.Second,
	}

	commands := map[string][]string{
		PlatformIOSXR: {
			"show route static",
			"show running-config router static",
		},
		PlatformIOSXE: {
			"show ip route static",
			"show running-config | section ip route",
		},
		PlatformJunOS: {
			"show route protocol static",
			"show configuration routing-options static",
		},
	}

	return newBase(info, commands, nil, deps, staticFacts)
}

func staticFacts(r *domain.LayerResult) {
	routes := 0
	for _, out := range outputsMatching(r, "route") {
		routes += countLines(out, func(line string) bool {
			trimmed := strings.TrimSpace(line)
			return strings.HasPrefix(trimmed, "S ") ||
				strings.HasPrefix(trimmed, "S* ") ||
				strings.Contains(line, "*[Static/")
		})
	}
	r.Facts["static_routes"] = routes
}
