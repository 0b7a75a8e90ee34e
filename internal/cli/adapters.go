package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type adapterRow struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Enabled  bool   `json:"enabled"`
}

func (a *app) newAdaptersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List registered adapters in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			sys, err := a.openSystem(cmd)
			if err != nil {
				return err
			}
			defer func() { err = closeWith(sys, err) }()

			var rows []adapterRow
			for _, ad := range sys.GetAdapters() {
				rows = append(rows, adapterRow{Name: ad.Name(), Priority: ad.Priority(), Enabled: ad.Enabled()})
			}
			if a.flags.jsonMode {
				return printJSON(cmd, rows)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPRIORITY\tENABLED")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%d\t%t\n", r.Name, r.Priority, r.Enabled)
			}
			return w.Flush()
		},
	}
}
