package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/interfaces/cli/output"
)

func newReportCommand(a *app) *cobra.Command {
	var (
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "report <bomID>",
		Short: "Show the cost report of a BOM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}

			engine, err := a.openEngine()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			bomID := entities.BOMID(args[0])
			if _, err := a.loadBOM(ctx, bomID); err != nil {
				return err
			}
			report, err := engine.BuildReport(ctx, bomID)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer file.Close()
				w = file
			}
			if err := output.WriteReport(w, report, f); err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s\n", outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the report to a file instead of stdout")
	return cmd
}
