package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cnodash/internal/render"
	"github.com/KaramelBytes/cnodash/internal/utils"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run one pass and write the dashboard as a static HTML page",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := buildPipeline()
		if err != nil {
			return err
		}
		d, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		view, err := render.NewPageView(d.Report, d.RunID, d.GeneratedAt)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := render.RenderPage(&buf, view); err != nil {
			return err
		}
		if reportOutput == "" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := utils.SafeWriteFile(reportOutput, buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote dashboard to %s (%d records)\n", reportOutput, d.Report.Metrics.TotalRecords)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output file (default stdout)")
}
