package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cnodash/internal/render"
)

var (
	summaryPlain bool
	summaryWidth int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print metric cards and summary tables to the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := buildPipeline()
		if err != nil {
			return err
		}
		d, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		out, err := render.Terminal(d.Report, summaryWidth, summaryPlain)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().BoolVar(&summaryPlain, "plain", false, "print raw Markdown without styling")
	summaryCmd.Flags().IntVar(&summaryWidth, "width", 100, "word wrap width")
}
