package collectors

import (
	"strings"
	"time"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
)

// NewIGPCollector gathers interior gateway protocol state (IS-IS and OSPF)
func NewIGPCollector(deps Deps) Collector {
	info := LayerInfo{
		Name:          "igp",
		Description:   "IS-IS and OSPF adjacency and route state",
		Categories:    []string{"routing", "igp"},
		EstimatedTime: 60 * time.Second,
	}

	commands := map[string][]string{
		PlatformIOSXR: {
			"show isis adjacency",
			"show isis interface brief",
			"show ospf neighbor",
			"show route isis",
		},
		PlatformIOSXE: {
			"show isis neighbors",
			"show ip ospf neighbor",
			"show ip route isis",
		},
		PlatformJunOS: {
			"show isis adjacency",
			"show ospf neighbor",
			"show route protocol isis terse",
		},
	}

	heavy := []string{"show route isis", "show ip route isis", "show route protocol isis terse"}

	return newBase(info, commands, heavy, deps, igpFacts)
}

func igpFacts(r *domain.LayerResult) {
	adjacency := 0
	for _, out := range outputsMatching(r, "isis") {
		adjacency += countLines(out, func(line string) bool {
			return strings.Contains(line, " Up ") || strings.HasSuffix(strings.TrimRight(line, " "), " Up")
		})
	}
	r.Facts["isis_adjacencies"] = adjacency
	r.Facts["isis_enabled"] = adjacency > 0

	ospfNeighbors := 0
	for _, out := range outputsMatching(r, "ospf") {
		ospfNeighbors += countLines(out, func(line string) bool {
			return startsWithIP(line) && strings.Contains(line, "FULL")
		})
	}
	r.Facts["ospf_neighbors"] = ospfNeighbors
	r.Facts["ospf_enabled"] = ospfNeighbors > 0
}
