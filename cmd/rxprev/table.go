package main

import (
	"strings"

	"rxprev/app"
	"rxprev/internal/config"

	"github.com/spf13/cobra"
)

func newTableCmd() *cobra.Command {
	var prevalenceFile string
	var outputFile string
	var majorSubtypes []string
	var noSubtype bool
	var test string
	var flagSelection bool

	cmd := &cobra.Command{
		Use:   "table GENE",
		Short: "Create the naive vs treated prevalence table of a gene",
		Long: `Create the naive vs treated prevalence table of a gene from a JSON
array of prevalence observations.

The input may be a JSON file, "-" for stdin, an http(s) URL, or a .csv/.xlsx
sheet with the same columns. The report is TSV unless the output file ends
in .xlsx.

Example: rxprev table RT -i prevalence.json -o rt-prevalence.tsv --major-subtypes B --major-subtypes C`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd, func(cfg *config.Config) error {
				if cmd.Flags().Changed("major-subtypes") {
					cfg.Report.MajorSubtypes = config.SplitList(strings.Join(majorSubtypes, ","))
				}
				if cmd.Flags().Changed("no-subtype") {
					cfg.Report.NoSubtype = noSubtype
				}
				if cmd.Flags().Changed("test") {
					cfg.Report.Test = strings.ToLower(test)
				}
				if cmd.Flags().Changed("flag-selection") {
					cfg.Report.FlagSelection = flagSelection
				}
				return nil
			})
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			gene, err := c.Genes.Validate(args[0])
			if err != nil {
				return err
			}

			reader, err := c.ObservationReader(prevalenceFile)
			if err != nil {
				return err
			}
			batch, err := reader.ReadObservations(cmd.Context())
			if err != nil {
				return err
			}

			svc, err := c.PrevalenceService(c.Config.Report)
			if err != nil {
				return err
			}
			result, err := svc.BuildReport(cmd.Context(), app.ReportRequest{
				Gene:   gene,
				Layout: c.Config.Report.Layout(),
				Batch:  batch,
			})
			if err != nil {
				return err
			}

			writer, closer, err := c.ReportWriter(outputFile, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := svc.Emit(result, writer); err != nil {
				closer.Close()
				return err
			}
			return closer.Close()
		},
	}

	cmd.Flags().StringVarP(&prevalenceFile, "prevalence-file", "i", "-", "input prevalence source")
	cmd.Flags().StringVarP(&outputFile, "output-file", "o", "-", "output target TSV (or .xlsx)")
	cmd.Flags().StringArrayVar(&majorSubtypes, "major-subtypes", nil, "stat for these subtypes, repeatable (default A,B,C,CRF01_AE,CRF02_AG,D,F,G)")
	cmd.Flags().BoolVar(&noSubtype, "no-subtype", false, "don't stat for subtypes")
	cmd.Flags().StringVar(&test, "test", config.TestFisher, "significance test: fisher or chi2")
	cmd.Flags().BoolVar(&flagSelection, "flag-selection", false, "append a Selected column marking rows that meet the selection criteria")

	return cmd
}
