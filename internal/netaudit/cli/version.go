package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ehsaniara/netaudit/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				fmt.Print(version.GetLongVersion())
				return
			}
			fmt.Printf("netaudit %s\n", version.GetShortVersion())
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "Show build details")
	return cmd
}
