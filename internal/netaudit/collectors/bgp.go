package collectors

import (
	"strings"
	"time"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
)

// NewBGPCollector gathers BGP session and table state. Full table dumps are
// the classic heavy commands: they routinely take 2-3x the normal timeout
// on a loaded PE.
func NewBGPCollector(deps Deps) Collector {
	info := LayerInfo{
		Name:          "bgp",
		Description:   "BGP neighbor state and VPNv4 summaries",
		Categories:    []string{"routing", "bgp"},
		EstimatedTime: 90 * time.Second,
	}

	commands := map[string][]string{
		PlatformIOSXR: {
			"show bgp summary",
			"show bgp vpnv4 unicast summary",
			"show bgp neighbors",
			"show route bgp",
		},
		PlatformIOSXE: {
			"show ip bgp summary",
			"show ip bgp vpnv4 all summary",
			"show ip bgp neighbors",
			"show ip route bgp",
		},
		PlatformJunOS: {
			"show bgp summary",
			"show bgp neighbor",
			"show route protocol bgp terse",
		},
	}

	heavy := []string{
		"show route bgp",
		"show ip route bgp",
		"show route protocol bgp terse",
		"show bgp neighbors",
		"show ip bgp neighbors",
	}

	return newBase(info, commands, heavy, deps, bgpFacts)
}

// bgpFacts scans the summary tables: a neighbor row starts with an IP; an
// established neighbor shows a numeric prefix count in the last column,
// anything else (Idle, Active, Connect) is a state word.
func bgpFacts(r *domain.LayerResult) {
	neighbors, established := 0, 0
	vrfs := make(map[string]struct{})

	for _, out := range outputsMatching(r, "summary") {
		for _, line := range strings.Split(out, "\n") {
			if startsWithIP(line) {
				neighbors++
				if lastFieldIsNumber(line) {
					established++
				}
			}
			// XR VPNv4 summaries group neighbors under "VRF: <name>" headers
			if name, ok := strings.CutPrefix(strings.TrimSpace(line), "VRF: "); ok {
				vrfs[strings.TrimSpace(name)] = struct{}{}
			}
		}
	}

	r.Facts["bgp_neighbors"] = neighbors
	r.Facts["bgp_established"] = established
	r.Facts["bgp_enabled"] = neighbors > 0

	if len(vrfs) > 0 {
		names := make([]string, 0, len(vrfs))
		for name := range vrfs {
			names = append(names, name)
		}
		r.Facts["bgp_vrfs"] = names
	}
}
