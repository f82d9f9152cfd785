package collectors

import (
	"sort"
	"strings"
	"time"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
)

// NewVPNCollector gathers L3VPN state: configured VRFs and their route
// table summaries.
func NewVPNCollector(deps Deps) Collector {
	info := LayerInfo{
		Name:          "vpn",
		Description:   "VRF inventory and L3VPN route state",
		Categories:    []string{"vpn", "routing"},
		EstimatedTime: 60 * time.Second,
	}

	commands := map[string][]string{
		PlatformIOSXR: {
			"show vrf all",
			"show bgp vpnv4 unicast summary",
			"show route vrf all summary",
		},
		PlatformIOSXE: {
			"show vrf",
			"show ip bgp vpnv4 all summary",
			"show ip route vrf * summary",
		},
		PlatformJunOS: {
			"show route instance",
			"show route summary",
		},
	}

	heavy := []string{"show route vrf all summary", "show ip route vrf * summary"}

	return newBase(info, commands, heavy, deps, vpnFacts)
}

// vrfTableHeaders are first tokens that mark header rows, not VRF names
var vrfTableHeaders = map[string]bool{
	"VRF":      true,
	"Name":     true,
	"Instance": true,
}

func vpnFacts(r *domain.LayerResult) {
	vrfs := make(map[string]struct{})

	collect := func(out string) {
		for _, line := range strings.Split(out, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || line != strings.TrimLeft(line, " \t") {
				continue // indented lines are attributes of the previous VRF
			}
			fields := strings.Fields(trimmed)
			if len(fields) == 0 || vrfTableHeaders[fields[0]] {
				continue
			}
			vrfs[fields[0]] = struct{}{}
		}
	}

	if out, ok := successfulOutput(r, "show vrf all"); ok {
		collect(out)
	}
	if out, ok := successfulOutput(r, "show vrf"); ok {
		collect(out)
	}
	if out, ok := successfulOutput(r, "show route instance"); ok {
		collect(out)
	}

	names := make([]string, 0, len(vrfs))
	for name := range vrfs {
		names = append(names, name)
	}
	sort.Strings(names)

	r.Facts["vrfs"] = names
	r.Facts["vrf_count"] = len(names)
}
