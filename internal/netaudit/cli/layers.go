package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ehsaniara/netaudit/internal/netaudit/collectors"
	"github.com/ehsaniara/netaudit/internal/netaudit/parsing"
)

func newLayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "List the available collection layers",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Info-only registry: nothing here opens a connection
			registry := collectors.NewRegistry(collectors.Deps{
				Parser: parsing.NewLineParser(),
				Config: cfg,
			})

			fmt.Printf("%-12s %-9s %-28s %s\n", "LAYER", "ESTIMATE", "PLATFORMS", "DESCRIPTION")
			for _, name := range registry.Names() {
				c, err := registry.Get(name)
				if err != nil {
					return err
				}
				info := c.Info()
				fmt.Printf("%-12s %-9s %-28s %s\n",
					info.Name,
					info.EstimatedTime,
					strings.Join(sortedCopy(info.Platforms), ","),
					info.Description)
			}
			return nil
		},
	}
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
