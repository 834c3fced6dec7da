package cli

import (
	"github.com/iwvelando/ration-formulator/internal/ration"
	"github.com/spf13/cobra"
)

type formulateOptions struct {
	animal   string
	weight   float64
	activity string
	prices   map[string]string
	max      map[string]string
}

func newFormulateCommand(a *app) *cobra.Command {
	opts := &formulateOptions{}

	cmd := &cobra.Command{
		Use:   "formulate",
		Short: "Formulate the cheapest ration for an animal",
		Long: `Scales the animal's baseline requirement by weight and activity and finds
the cheapest combination of catalog ingredients that meets it.`,
		Example: `  ration formulate --animal cattle --weight 500 --activity low
  ration formulate --animal goat --weight 45 --price Corn=55 --max "Soybean Meal=2"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var weight *float64
			if cmd.Flags().Changed("weight") {
				weight = &opts.weight
			}
			solution, err := a.formulateForAnimal(cmd, opts, weight)
			return a.writeResults(cmd.OutOrStdout(), []ration.Result{ration.NewResult(opts.animal, solution, err)})
		},
	}

	cmd.Flags().StringVarP(&opts.animal, "animal", "a", "", "animal category (cattle, poultry, goat)")
	cmd.Flags().Float64VarP(&opts.weight, "weight", "w", 0, "animal weight in mass units")
	cmd.Flags().StringVar(&opts.activity, "activity", "", "activity level (low, moderate, high)")
	cmd.Flags().StringToStringVar(&opts.prices, "price", nil, "price override per ingredient, e.g. Corn=55")
	cmd.Flags().StringToStringVar(&opts.max, "max", nil, "maximum quantity per ingredient")

	return cmd
}

func (a *app) formulateForAnimal(cmd *cobra.Command, opts *formulateOptions, weight *float64) (*ration.Solution, error) {
	prices, err := ration.ParsePriceOverrides(opts.prices)
	if err != nil {
		return nil, err
	}
	upper, err := ration.ParseQuantities("upper bound", opts.max)
	if err != nil {
		return nil, err
	}
	return a.engine.FormulateForAnimal(cmd.Context(), ration.ScalingRequest{
		Animal:         ration.AnimalCategory(opts.animal),
		Weight:         weight,
		Activity:       opts.activity,
		PriceOverrides: prices,
		UpperBounds:    upper,
	})
}
