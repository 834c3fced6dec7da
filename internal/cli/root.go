// Package cli implements the ration command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/iwvelando/ration-formulator/internal/catalog"
	"github.com/iwvelando/ration-formulator/internal/config"
	"github.com/iwvelando/ration-formulator/internal/metrics"
	"github.com/iwvelando/ration-formulator/internal/ration"
	"github.com/iwvelando/ration-formulator/pkg/constants"
	"github.com/iwvelando/ration-formulator/pkg/output"
	"github.com/iwvelando/ration-formulator/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath      string
	LogLevel        string
	Format          string
	MetricsTextfile string
}

// app is the state shared by subcommands once the root has loaded the
// configuration.
type app struct {
	opts     *RootOptions
	logger   *zap.Logger
	conf     *config.Configuration
	catalog  *catalog.Catalog
	engine   *ration.Engine
	registry *prometheus.Registry
	format   string
}

// NewRootCommand creates the root command for the ration CLI.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *app) {
	opts := &RootOptions{}
	a := &app{opts: opts}

	cmd := &cobra.Command{
		Use:   "ration",
		Short: "Least-cost feed ration formulator",
		Long: `Computes the cheapest combination of feed ingredients that meets the
protein and fiber requirements of an animal, scaled by weight and activity.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	cmd.SetGlobalNormalizationFunc(wordSepNormalizeFunc)
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", constants.DefaultConfigFile, "path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "output format override (pretty, csv, json)")
	cmd.PersistentFlags().StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")

	cmd.AddCommand(newRequirementsCommand(a))
	cmd.AddCommand(newFormulateCommand(a))
	cmd.AddCommand(newTargetsCommand(a))
	cmd.AddCommand(newBatchCommand(a))
	cmd.AddCommand(newIngredientsCommand(a))

	return cmd, a
}

// wordSepNormalizeFunc accepts underscores in flag names, so --log_level
// and --log-level are the same flag.
func wordSepNormalizeFunc(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func (a *app) setup(cmd *cobra.Command) error {
	conf, err := a.loadConfiguration(cmd)
	if err != nil {
		return err
	}
	a.conf = conf

	logger, err := InitializeLogger(conf.Logging, a.opts.LogLevel)
	if err != nil {
		return commandError("failed to initialize logger", err)
	}
	a.logger = logger

	a.format = conf.Output.Format
	if a.opts.Format != "" {
		a.format = a.opts.Format
	}
	if err := validation.ValidateOutputFormat(a.format); err != nil {
		return commandError("invalid output format", err)
	}

	a.catalog, err = catalog.FromConfig(conf)
	if err != nil {
		return commandError("invalid catalog", err)
	}

	a.registry = prometheus.NewRegistry()
	a.engine, err = ration.NewEngine(logger, conf, a.catalog, a.catalog,
		ration.WithMetrics(metrics.NewRecorder(a.registry)),
	)
	if err != nil {
		return commandError("failed to create engine", err)
	}
	return nil
}

// loadConfiguration reads the config file. A missing file at the default
// location is not an error; the built-in defaults apply instead.
func (a *app) loadConfiguration(cmd *cobra.Command) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(a.opts.ConfigPath)
	if err == nil {
		return conf, nil
	}
	if !cmd.Flags().Changed("config") {
		if _, statErr := os.Stat(a.opts.ConfigPath); errors.Is(statErr, fs.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return nil, commandError(fmt.Sprintf("failed to load configuration at %s", a.opts.ConfigPath), err)
}

// finish flushes the logger and writes the metrics textfile if requested.
func (a *app) finish() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.opts.MetricsTextfile == "" || a.registry == nil {
		return nil
	}
	if err := metrics.WriteTextfile(a.opts.MetricsTextfile, a.registry); err != nil {
		return commandError("failed to export metrics", err)
	}
	return nil
}

// writeResults renders results and turns any failed result into ExitFailure.
func (a *app) writeResults(w io.Writer, results []ration.Result) error {
	if err := output.Results(w, a.format, results); err != nil {
		return commandError("failed to write output", err)
	}
	failed := 0
	for _, result := range results {
		if !result.Success {
			failed++
		}
	}
	if failed > 0 {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d of %d formulations failed", failed, len(results))}
	}
	return nil
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd, a := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if finishErr := a.finish(); err == nil {
		err = finishErr
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return GetExitCode(err)
}
