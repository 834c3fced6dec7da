// Package output provides utilities for formatting and displaying ration results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/ration-formulator/internal/ration"
	"github.com/iwvelando/ration-formulator/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Results writes formulation results in the given format.
func Results(w io.Writer, format string, results []ration.Result) error {
	switch format {
	case constants.OutputFormatPretty:
		PrettyFormat(w, results)
		return nil
	case constants.OutputFormatCSV:
		return CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []ration.Result) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		if result.Name != "" {
			_, _ = fmt.Fprintf(w, "--- Ration %s ---\n", result.Name)
		}
		if !result.Success {
			_, _ = fmt.Fprintf(w, "Failed (%s): %s\n", result.Reason, result.Message)
			if result.Hint != "" {
				_, _ = fmt.Fprintf(w, "Hint: %s\n", result.Hint)
			}
		} else {
			_, _ = fmt.Fprintf(w, "Ingredient | Quantity | Unit Cost | Cost\n")
			_, _ = fmt.Fprintf(w, "__________ | ________ | _________ | ____\n")
			for _, allocation := range result.Allocations {
				_, _ = p.Fprintf(w, "%s | %.2f | $%.2f | $%.2f\n",
					allocation.Name, allocation.Quantity, allocation.UnitCost, allocation.Cost)
			}
			if result.TotalCost != nil {
				_, _ = p.Fprintf(w, "Total cost: $%.2f\n", *result.TotalCost)
			}
			if result.Target != nil && result.Supplied != nil {
				_, _ = p.Fprintf(w, "Protein: %.2f supplied / %.2f required\n", result.Supplied.Protein, result.Target.Protein)
				_, _ = p.Fprintf(w, "Fiber: %.2f supplied / %.2f required\n", result.Supplied.Fiber, result.Target.Fiber)
			}
		}
		if len(results) > 1 && i < len(results)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat outputs one row per ingredient allocation, and one row per
// failed result.
func CsvFormat(w io.Writer, results []ration.Result) error {
	records := [][]string{{"ration", "success", "ingredient", "quantity", "unit_cost", "cost", "total_cost", "reason", "message"}}
	for _, result := range results {
		success := strconv.FormatBool(result.Success)
		if !result.Success {
			records = append(records, []string{result.Name, success, "", "", "", "", "", string(result.Reason), result.Message})
			continue
		}
		total := ""
		if result.TotalCost != nil {
			total = formatAmount(*result.TotalCost)
		}
		for _, allocation := range result.Allocations {
			records = append(records, []string{
				result.Name,
				success,
				allocation.Name,
				formatAmount(allocation.Quantity),
				formatAmount(allocation.UnitCost),
				formatAmount(allocation.Cost),
				total,
				"",
				"",
			})
		}
	}
	return writeCSV(w, records)
}

// JSONFormat writes v as indented JSON.
func JSONFormat(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write json output: %w", err)
	}
	return nil
}

// Requirements writes scaled requirement records in the given format.
func Requirements(w io.Writer, format string, requirements []ration.ScaledRequirement) error {
	switch format {
	case constants.OutputFormatPretty:
		p := message.NewPrinter(language.English)
		_, _ = fmt.Fprintf(w, "Animal | Weight | Activity | Protein | Fiber\n")
		_, _ = fmt.Fprintf(w, "______ | ______ | ________ | _______ | _____\n")
		for _, r := range requirements {
			activity := r.Activity
			if activity == "" {
				activity = "-"
			}
			_, _ = p.Fprintf(w, "%s | %.2f | %s | %.2f | %.2f\n", r.Animal, r.Weight, activity, r.Target.Protein, r.Target.Fiber)
		}
		return nil
	case constants.OutputFormatCSV:
		records := [][]string{{"animal", "weight", "activity", "multiplier", "protein", "fiber"}}
		for _, r := range requirements {
			records = append(records, []string{
				string(r.Animal),
				formatAmount(r.Weight),
				r.Activity,
				strconv.FormatFloat(r.Multiplier, 'f', -1, 64),
				formatAmount(r.Target.Protein),
				formatAmount(r.Target.Fiber),
			})
		}
		return writeCSV(w, records)
	case constants.OutputFormatJSON:
		return JSONFormat(w, requirements)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// Ingredients writes the ingredient catalog in the given format.
func Ingredients(w io.Writer, format string, ingredients []ration.Ingredient) error {
	switch format {
	case constants.OutputFormatPretty:
		p := message.NewPrinter(language.English)
		_, _ = fmt.Fprintf(w, "Ingredient | Protein | Fiber | Cost\n")
		_, _ = fmt.Fprintf(w, "__________ | _______ | _____ | ____\n")
		for _, ingredient := range ingredients {
			_, _ = p.Fprintf(w, "%s | %.2f | %.2f | $%.2f\n", ingredient.Name, ingredient.Protein, ingredient.Fiber, ingredient.Cost)
		}
		return nil
	case constants.OutputFormatCSV:
		records := [][]string{{"name", "protein", "fiber", "cost"}}
		for _, ingredient := range ingredients {
			records = append(records, []string{
				ingredient.Name,
				formatAmount(ingredient.Protein),
				formatAmount(ingredient.Fiber),
				formatAmount(ingredient.Cost),
			})
		}
		return writeCSV(w, records)
	case constants.OutputFormatJSON:
		return JSONFormat(w, ingredients)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func writeCSV(w io.Writer, records [][]string) error {
	if err := csv.NewWriter(w).WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv output: %w", err)
	}
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', constants.DecimalPlaces, 64)
}
