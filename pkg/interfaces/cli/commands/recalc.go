package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/bomcost/pkg/application/dto"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/interfaces/cli/output"
)

func newRecalcCommand(a *app) *cobra.Command {
	var (
		all    bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "recalc [bomID...]",
		Short: "Roll costs up through one or more BOMs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("give one or more bom ids, or --all")
			}
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
			var results []*dto.RecalculationResult
			if len(args) == 1 {
				if _, err := a.loadBOM(ctx, entities.BOMID(args[0])); err != nil {
					return err
				}
				result, err := engine.Recalculate(ctx, entities.BOMID(args[0]))
				if err != nil {
					return err
				}
				results = append(results, result)
			} else {
				bomIDs := make([]entities.BOMID, len(args))
				for i, arg := range args {
					bomIDs[i] = entities.BOMID(arg)
				}
				// an empty list recalculates every stored BOM
				results, err = engine.RecalculateAll(ctx, bomIDs)
				if err != nil {
					return err
				}
			}

			return output.WriteRecalculation(cmd.OutOrStdout(), results, f)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Recalculate every BOM in the database")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json")
	return cmd
}
