// Package cli wires the command surface: score runs the metric
// pipeline over a URL file, auth obtains a GitHub token. All
// diagnostics go to stderr or the log file; stdout carries results
// only.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	urfave "github.com/urfave/cli/v2"

	"github.com/mltrust/mltrust/pkg/config"
	"github.com/mltrust/mltrust/pkg/logging"
)

const (
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}

	workersFlag = &urfave.IntFlag{
		Name:  "workers",
		Usage: "Max concurrent metric evaluations per resource",
		Value: config.WorkersDefault,
	}

	logFileFlag = &urfave.StringFlag{
		Name:    "log-file",
		Usage:   "Write logs to this file instead of stderr",
		EnvVars: []string{"LOG_FILE"},
	}

	logLevelFlag = &urfave.StringFlag{
		Name:    "log-level",
		Usage:   "Log level [debug, info, warn, error, silent]",
		Value:   "warn",
		EnvVars: []string{"LOG_LEVEL"},
	}

	timeoutFlag = &urfave.DurationFlag{
		Name:  "metric-timeout",
		Usage: "Wall-time budget for one metric evaluation",
		Value: config.MetricTimeoutDefault,
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Conf   *config.Context
	Format string
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 "mltrust",
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "Score ML models, datasets, and code repos for trustworthiness",
		Flags: []urfave.Flag{
			debugFlag,
			formatFlag,
			workersFlag,
			logFileFlag,
			logLevelFlag,
			timeoutFlag,
		},
		Commands: []*urfave.Command{
			authCmd,
			scoreCmd,
		},
		Before: func(c *urfave.Context) error {
			level := c.String(logLevelFlag.Name)
			if c.Bool(debugFlag.Name) {
				level = "debug"
			}
			if err := logging.Setup(level, c.String(logFileFlag.Name)); err != nil {
				return fmt.Errorf("initializing logging: %w", err)
			}

			format := formatJSON
			if f := c.String(formatFlag.Name); f == formatYAML || f == "yml" {
				format = formatYAML
			}

			conf := config.Load()
			if w := c.Int(workersFlag.Name); w > 0 {
				conf.Workers = w
			}
			if d := c.Duration(timeoutFlag.Name); d > 0 {
				conf.MetricTimeout = d
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				Conf:   conf,
				Format: format,
			}
			return nil
		},
	}
}
