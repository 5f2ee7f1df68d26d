package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/interfaces/cli/output"
)

func newValidateCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate <bomID>",
		Short: "Audit a BOM for cycles, self references and missing or cross-BOM parents",
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
			result, err := engine.ValidateBOM(ctx, bomID)
			if err != nil {
				return err
			}
			if err := output.WriteValidation(cmd.OutOrStdout(), bomID, result, f); err != nil {
				return err
			}
			if !result.IsValid() {
				return fmt.Errorf("bom %s has %d structural problems", bomID, len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json")
	return cmd
}

func newTreeCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tree <bomID>",
		Short: "Print a BOM as an indented tree",
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

			items, err := a.loadBOM(cmd.Context(), entities.BOMID(args[0]))
			if err != nil {
				return err
			}
			return output.WriteTree(cmd.OutOrStdout(), engine.BuildTree(items), f)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json")
	return cmd
}
