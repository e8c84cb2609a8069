package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List agents and their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTATUS\tINTENTS\tMESSAGE")
			for _, info := range a.Orchestrator.Agents(cmd.Context()) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, info.Status, strings.Join(info.SupportedIntents, ","), info.Message)
			}
			return w.Flush()
		},
	}
}
