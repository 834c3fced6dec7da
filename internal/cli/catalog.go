package cli

import (
	"errors"

	"github.com/iwvelando/ration-formulator/internal/ration"
	"github.com/iwvelando/ration-formulator/pkg/constants"
	"github.com/iwvelando/ration-formulator/pkg/output"
	"github.com/spf13/cobra"
)

func newIngredientsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ingredients",
		Short: "List the ingredient catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ingredients, err := a.catalog.Ingredients(cmd.Context())
			if err != nil {
				return commandError("failed to list ingredients", err)
			}
			if err := output.Ingredients(cmd.OutOrStdout(), a.format, ingredients); err != nil {
				return commandError("failed to write output", err)
			}
			return nil
		},
	}
}

type requirementsOptions struct {
	animals  []string
	weight   float64
	activity string
}

func newRequirementsCommand(a *app) *cobra.Command {
	opts := &requirementsOptions{}

	cmd := &cobra.Command{
		Use:   "requirements",
		Short: "Show scaled nutrient requirements",
		Long: `Shows the protein and fiber an animal needs at the given weight and
activity level without formulating a ration. Without --animal every
configured category is listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			animals := opts.animals
			if len(animals) == 0 {
				for _, requirement := range a.catalog.Requirements() {
					animals = append(animals, string(requirement.Animal))
				}
			}

			scaled := make([]ration.ScaledRequirement, 0, len(animals))
			for _, animal := range animals {
				weight := opts.weight
				requirement, err := a.engine.Requirements(cmd.Context(), ration.ScalingRequest{
					Animal:   ration.AnimalCategory(animal),
					Weight:   &weight,
					Activity: opts.activity,
				})
				if err != nil {
					var rationErr *ration.Error
					if errors.As(err, &rationErr) {
						return &ExitError{Code: ExitFailure, Message: rationErr.Message}
					}
					return &ExitError{Code: ExitFailure, Message: "failed to resolve requirement", Err: err}
				}
				scaled = append(scaled, *requirement)
			}

			if err := output.Requirements(cmd.OutOrStdout(), a.format, scaled); err != nil {
				return commandError("failed to write output", err)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&opts.animals, "animal", "a", nil, "animal categories to show")
	cmd.Flags().Float64VarP(&opts.weight, "weight", "w", constants.ReferenceWeight, "animal weight in mass units")
	cmd.Flags().StringVar(&opts.activity, "activity", "", "activity level (low, moderate, high)")

	return cmd
}
