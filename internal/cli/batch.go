package cli

import (
	"fmt"
	"os"

	"github.com/iwvelando/ration-formulator/internal/ration"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// BatchFile is the on-disk layout of a batch request file. JSON files are
// accepted as well since they are valid YAML.
type BatchFile struct {
	Requests []ration.BatchRequest `yaml:"requests"`
}

func newBatchCommand(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Formulate several rations from a request file",
		Long: `Reads a YAML or JSON file with a list of requests, each either an animal
request or an explicit target request, and formulates them concurrently.

  requests:
    - name: herd
      animal: {animal: cattle, weight: 500, activity: low}
    - name: custom
      targets: {protein: 770, fiber: 3300, min: {Corn: 10}}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := readBatchFile(file)
			if err != nil {
				return err
			}
			results := a.engine.FormulateBatch(cmd.Context(), requests)
			return a.writeResults(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "request file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readBatchFile(path string) ([]ration.BatchRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, commandError("failed to read batch file", err)
	}
	var batch BatchFile
	if err := yaml.Unmarshal(content, &batch); err != nil {
		return nil, commandError(fmt.Sprintf("failed to parse batch file %s", path), err)
	}
	if len(batch.Requests) == 0 {
		return nil, commandError(fmt.Sprintf("batch file %s has no requests", path), nil)
	}
	return batch.Requests, nil
}
