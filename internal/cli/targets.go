package cli

import (
	"github.com/iwvelando/ration-formulator/internal/ration"
	"github.com/spf13/cobra"
)

type targetsOptions struct {
	protein float64
	fiber   float64
	prices  map[string]string
	min     map[string]string
	max     map[string]string
}

func newTargetsCommand(a *app) *cobra.Command {
	opts := &targetsOptions{}

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Formulate the cheapest ration for explicit nutrient targets",
		Long: `Finds the cheapest combination of catalog ingredients supplying at least
the given protein and fiber totals. Both targets are required.`,
		Example: `  ration targets --protein 100000 --fiber 100000
  ration targets --protein 770 --fiber 3300 --min Corn=10 --min "Soybean Meal=5"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ration.TargetRequest{}
			if cmd.Flags().Changed("protein") {
				req.Protein = &opts.protein
			}
			if cmd.Flags().Changed("fiber") {
				req.Fiber = &opts.fiber
			}
			solution, err := a.formulateForTargets(cmd, opts, req)
			return a.writeResults(cmd.OutOrStdout(), []ration.Result{ration.NewResult("targets", solution, err)})
		},
	}

	cmd.Flags().Float64Var(&opts.protein, "protein", 0, "total protein required")
	cmd.Flags().Float64Var(&opts.fiber, "fiber", 0, "total fiber required")
	cmd.Flags().StringToStringVar(&opts.prices, "price", nil, "price override per ingredient, e.g. Corn=55")
	cmd.Flags().StringToStringVar(&opts.min, "min", nil, "minimum purchase quantity per ingredient")
	cmd.Flags().StringToStringVar(&opts.max, "max", nil, "maximum quantity per ingredient")

	return cmd
}

func (a *app) formulateForTargets(cmd *cobra.Command, opts *targetsOptions, req ration.TargetRequest) (*ration.Solution, error) {
	var err error
	if req.PriceOverrides, err = ration.ParsePriceOverrides(opts.prices); err != nil {
		return nil, err
	}
	if req.Minimums, err = ration.ParseQuantities("minimum", opts.min); err != nil {
		return nil, err
	}
	if req.UpperBounds, err = ration.ParseQuantities("upper bound", opts.max); err != nil {
		return nil, err
	}
	return a.engine.FormulateForTargets(cmd.Context(), req)
}
