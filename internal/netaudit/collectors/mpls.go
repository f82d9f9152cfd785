package collectors

import (
	"time"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
)

// NewMPLSCollector gathers label distribution and MPLS interface state
func NewMPLSCollector(deps Deps) Collector {
	info := LayerInfo{
		Name:          "mpls",
		Description:   "LDP neighbors and MPLS forwarding state",
		Categories:    []string{"mpls"},
		EstimatedTime: 45 * time.Second,
	}

	commands := map[string][]string{
		PlatformIOSXR: {
			"show mpls ldp neighbor brief",
			"show mpls ldp discovery",
			"show mpls interfaces",
		},
		PlatformIOSXE: {
			"show mpls ldp neighbor",
			"show mpls interfaces",
			"show mpls forwarding-table",
		},
		PlatformJunOS: {
			"show ldp neighbor",
			"show mpls interface",
			"show mpls lsp",
		},
	}

	heavy := []string{"show mpls forwarding-table"}

	return newBase(info, commands, heavy, deps, mplsFacts)
}

func mplsFacts(r *domain.LayerResult) {
	ldpNeighbors := 0
	for _, out := range outputsMatching(r, "ldp neighbor") {
		ldpNeighbors += countLines(out, startsWithIP)
	}
	r.Facts["ldp_neighbors"] = ldpNeighbors
	r.Facts["mpls_enabled"] = ldpNeighbors > 0
}
