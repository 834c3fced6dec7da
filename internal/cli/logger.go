package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iwvelando/ration-formulator/internal/config"
	"github.com/iwvelando/ration-formulator/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
)

// InitializeLogger builds the process logger from the logging section of the
// configuration. A non-empty override, normally --log-level, replaces the
// configured level. Every entry carries a "service" field so ration logs can
// be told apart when shipped alongside other tools.
func InitializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	zapLevel, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}

	zapConfig, err := zapConfigFor(loggingConfig.Format)
	if err != nil {
		return nil, err
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	zapConfig.InitialFields = map[string]any{"service": "ration"}

	if loggingConfig.OutputFile != "" {
		if err := prepareLogFile(loggingConfig.OutputFile); err != nil {
			return nil, err
		}
		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func parseLogLevel(level string) (zapcore.Level, error) {
	if err := validation.ValidateLogLevel(level); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %w", err)
	}
	switch level {
	case "":
		level = defaultLogLevel
	case "warning":
		level = "warn"
	}
	return zapcore.ParseLevel(level)
}

// zapConfigFor maps the configured format onto zap's presets: console is the
// development encoder, json the production one.
func zapConfigFor(format string) (zap.Config, error) {
	if err := validation.ValidateLogFormat(format); err != nil {
		return zap.Config{}, fmt.Errorf("invalid log format: %w", err)
	}
	if format == "" {
		format = defaultLogFormat
	}
	if format == "console" {
		return zap.NewDevelopmentConfig(), nil
	}
	return zap.NewProductionConfig(), nil
}

// prepareLogFile creates the log directory and checks the file is writable
// before zap opens it.
func prepareLogFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file.Close()
}
