package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/services/calculators"
	"github.com/vsinha/bomcost/pkg/interfaces/cli/output"
)

// readInput decodes a YAML engine input, rejecting unknown keys
func readInput[In any](path string) (In, error) {
	var in In
	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("parse %s: %w", path, err)
	}
	return in, nil
}

// calculate runs one engine over an input file
func calculate[In, Out any](path string, engine calculators.Calculator[In, Out]) (Out, error) {
	in, err := readInput[In](path)
	if err != nil {
		var zero Out
		return zero, err
	}
	return engine.Calculate(in)
}

func newCalcCommand(a *app) *cobra.Command {
	var (
		input  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Run a single cost engine on a YAML input file",
	}
	cmd.PersistentFlags().StringVarP(&input, "input", "i", "", "YAML input file")
	cmd.PersistentFlags().StringVar(&format, "format", "text", "Output format: text, json")
	_ = cmd.MarkPersistentFlagRequired("input")

	// engineCommand builds a subcommand for engines whose result is only printed
	engineCommand := func(use, short, title string, run func(path string) (interface{}, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := output.ParseFormat(format)
				if err != nil {
					return err
				}
				res, err := run(input)
				if err != nil {
					return err
				}
				return output.WriteFields(cmd.OutOrStdout(), title, res, f)
			},
		}
	}

	cmd.AddCommand(
		newCalcMHRCommand(a, &input, &format),
		engineCommand("process", "Per-part cost of one manufacturing operation", "Process cost",
			func(path string) (interface{}, error) {
				return calculate[entities.ProcessCostRecord, entities.ProcessCostResult](path, calculators.NewProcessCalculator())
			}),
		engineCommand("shot-weight", "Shot weight of an injection molding tool", "Shot weight",
			func(path string) (interface{}, error) {
				return calculate[entities.ShotWeightRecord, entities.ShotWeightResult](path, calculators.NewShotWeightCalculator())
			}),
		engineCommand("packaging", "Packaging and logistics cost per unit", "Packaging and logistics",
			func(path string) (interface{}, error) {
				return calculate[entities.PackagingLogisticsInput, entities.PackagingLogisticsResult](path, calculators.NewPackagingCalculator())
			}),
		engineCommand("procured", "Landed cost of a bought-out part", "Procured part",
			func(path string) (interface{}, error) {
				return calculate[entities.ProcuredPartInput, entities.ProcuredPartResult](path, calculators.NewProcuredPartCalculator())
			}),
	)
	return cmd
}

func newCalcMHRCommand(a *app, input, format *string) *cobra.Command {
	var saveAs string

	cmd := &cobra.Command{
		Use:   "mhr",
		Short: "Machine hour rate from machine data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(*format)
			if err != nil {
				return err
			}
			res, err := calculate[entities.MHRRecord, entities.MHRResult](*input, calculators.NewMHRCalculator())
			if err != nil {
				return err
			}
			if err := output.WriteFields(cmd.OutOrStdout(), "Machine hour rate", res, f); err != nil {
				return err
			}

			if saveAs == "" {
				return nil
			}
			engine, err := a.openEngine()
			if err != nil {
				return err
			}
			defer a.close()

			if err := engine.SaveMachineRate(cmd.Context(), saveAs, res.TotalMachineHourRate); err != nil {
				return err
			}
			a.logger.Info("machine rate saved",
				zap.String("machine_ref", saveAs),
				zap.String("rate", res.TotalMachineHourRate.String()),
			)
			if f == output.Text {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved rate %s as %s\n", res.TotalMachineHourRate.StringFixed(2), saveAs)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&saveAs, "save-as", "", "Store the resulting rate under this machine reference")
	return cmd
}
