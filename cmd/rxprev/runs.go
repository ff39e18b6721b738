package main

import (
	"fmt"
	"text/tabwriter"

	"rxprev/domain/core"

	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	var gene string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List stored runs, or print the report of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd, nil)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			svc, err := c.PrevalenceService(c.Config.Report)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				id, err := core.ParseRunID(args[0])
				if err != nil {
					return err
				}
				run, err := svc.GetRun(cmd.Context(), id)
				if err != nil {
					return err
				}
				writer, _, err := c.ReportWriter("-", cmd.OutOrStdout())
				if err != nil {
					return err
				}
				return writer.WriteReport(run.Table())
			}

			runs, err := svc.ListRuns(cmd.Context(), gene, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tGENE\tTEST\tROWS\tCREATED\tSOURCE")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", r.ID, r.Gene, r.Test, r.RowCount, r.CreatedAt, r.Source)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&gene, "gene", "", "only runs of this gene")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs")
	return cmd
}
