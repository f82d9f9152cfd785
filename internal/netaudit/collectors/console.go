package collectors

import (
	"strings"
	"time"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
)

// NewConsoleCollector gathers terminal line and active user state
func NewConsoleCollector(deps Deps) Collector {
	info := LayerInfo{
		Name:          "console",
		Description:   "Terminal lines and logged-in users",
		Categories:    []string{"access"},
		EstimatedTime: 15 * time.Second,
	}

	commands := map[string][]string{
		PlatformIOSXR: {
			"show users",
			"show line",
		},
		PlatformIOSXE: {
			"show users",
			"show line",
		},
		PlatformJunOS: {
			"show system users",
		},
	}

	return newBase(info, commands, nil, deps, consoleFacts)
}

func consoleFacts(r *domain.LayerResult) {
	users := 0
	for _, out := range outputsMatching(r, "users") {
		users += countLines(out, func(line string) bool {
			return strings.Contains(line, "vty") || strings.Contains(line, "pts/")
		})
	}
	r.Facts["active_users"] = users
}
