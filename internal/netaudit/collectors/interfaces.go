package collectors

import (
	"strings"
	"time"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
)

// NewInterfacesCollector gathers interface state and descriptions. The full
// "show interfaces" dump is the heavy command here.
func NewInterfacesCollector(deps Deps) Collector {
	info := LayerInfo{
		Name:          "interfaces",
		Description:   "Interface state, descriptions and addressing",
		Categories:    []string{"interfaces"},
		EstimatedTime: 60 * time.Second,
	}

	commands := map[string][]string{
		PlatformIOSXR: {
			"show ipv4 interface brief",
			"show interfaces description",
			"show interfaces",
		},
		PlatformIOSXE: {
			"show ip interface brief",
			"show interfaces description",
			"show interfaces",
		},
		PlatformJunOS: {
			"show interfaces terse",
			"show interfaces descriptions",
			"show interfaces extensive",
		},
	}

	return newBase(info, commands, []string{"show interfaces extensive", "show interfaces"}, deps, interfaceFacts)
}

func interfaceFacts(r *domain.LayerResult) {
	brief := outputsMatching(r, "brief")
	brief = append(brief, outputsMatching(r, "terse")...)

	up, down := 0, 0
	for _, out := range brief {
		up += countLines(out, func(line string) bool {
			l := strings.ToLower(line)
			return strings.Contains(l, " up") && !strings.Contains(l, "down")
		})
		down += countLines(out, func(line string) bool {
			return strings.Contains(strings.ToLower(line), "down")
		})
	}

	if len(brief) > 0 {
		r.Facts["interfaces_up"] = up
		r.Facts["interfaces_down"] = down
	}
}
