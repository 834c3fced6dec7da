// Package validation checks user-facing option values shared by the config
// file and the command line.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/iwvelando/ration-formulator/pkg/constants"
)

var (
	outputFormats = []string{constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON}
	logLevels     = []string{"debug", "info", "warn", "warning", "error"}
	logFormats    = []string{"json", "console"}
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	return oneOf("output format", format, outputFormats)
}

// ValidateLogLevel accepts an empty level, which means the default.
func ValidateLogLevel(level string) error {
	if level == "" {
		return nil
	}
	return oneOf("log level", level, logLevels)
}

// ValidateLogFormat accepts an empty format, which means the default.
func ValidateLogFormat(format string) error {
	if format == "" {
		return nil
	}
	return oneOf("log format", format, logFormats)
}

func oneOf(kind, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("expected %s of %s, got %q", kind, strings.Join(allowed, ", "), value)
}
