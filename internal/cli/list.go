package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Lllllllleong/achievementflow/internal/view"
)

func newListCmd(a *app) *cobra.Command {
	var search, output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded achievements, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, closeFn, err := a.board(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			b.SetFilter(search)
			snap := b.Snapshot()
			out := cmd.OutOrStdout()

			switch output {
			case "table", "":
				return view.WriteText(out, snap.Table)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snap.Visible)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(snap.Visible); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown output format %q (table, json, yaml)", output)
			}
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by title, student name, or description")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json, yaml")
	return cmd
}
