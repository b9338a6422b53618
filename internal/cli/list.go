package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/shivanshkc/p99probe/pkg/workload"
)

// listCmd prints the available workloads.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available workloads.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeWorkloads(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func writeWorkloads(w io.Writer) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Workload", "Description"})

	for _, name := range workload.Names() {
		description, err := workload.Describe(name)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{name, description})
	}

	t.Render()
	return nil
}
