package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/bomcost/pkg/application/dto"
	"github.com/vsinha/bomcost/pkg/infrastructure/scenario"
	"github.com/vsinha/bomcost/pkg/interfaces/cli/output"
)

func newLoadCommand(a *app) *cobra.Command {
	var (
		strict      bool
		recalculate bool
	)

	cmd := &cobra.Command{
		Use:   "load <scenario.yaml>",
		Short: "Load a BOM with its costs, operations and machines from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scenario.LoadFile(args[0])
			if err != nil {
				return err
			}

			engine, err := a.openEngine()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			summary, err := s.Apply(ctx, engine.Repository(), time.Now(), strict)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}
			a.logger.Info("scenario loaded",
				zap.String("bom_id", string(summary.BOMID)),
				zap.Int("items", summary.Items),
				zap.Int("costs", summary.Costs),
			)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loaded %s: %d items, %d cost records, %d operations, %d machines\n",
				summary.BOMID, summary.Items, summary.Costs, summary.Operations, summary.Machines)
			for _, e := range summary.Validation.Errors {
				fmt.Fprintf(out, "  warning: %s\n", e)
			}

			if !recalculate {
				return nil
			}
			result, err := engine.Recalculate(ctx, summary.BOMID)
			if err != nil {
				return err
			}
			return output.WriteRecalculation(out, []*dto.RecalculationResult{result}, output.Text)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Refuse files with cycles, missing or cross-BOM parents")
	cmd.Flags().BoolVar(&recalculate, "recalc", false, "Recalculate the BOM after loading")
	return cmd
}
