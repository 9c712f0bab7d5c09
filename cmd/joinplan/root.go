package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/joinplan/internal/cli"
	"github.com/pthm/joinplan/internal/logging"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string

	// Persistent flags
	cfgFile string
	verbose int
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "joinplan",
	Short: "Association preload planner",
	Long: `joinplan - association preload planner

joinplan decides, for every association a query preloads, whether it is
LEFT JOINed into the main query or loaded by a follow-up fetch, and renders
the SQL for both.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}
		return setupLogging()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Command group IDs
const (
	groupPlan    = "plan"
	groupSchema  = "schema"
	groupUtility = "utility"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover joinplan.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (-v debug, -vv trace)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupPlan, Title: "Planning:"},
		&cobra.Group{ID: groupSchema, Title: "Schema:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	planCmd.GroupID = groupPlan
	rootCmd.AddCommand(planCmd)

	validateCmd.GroupID = groupSchema
	introspectCmd.GroupID = groupSchema
	doctorCmd.GroupID = groupSchema
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(introspectCmd)
	rootCmd.AddCommand(doctorCmd)

	configCmd.GroupID = groupUtility
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		cli.ExitWithError(err)
	}
}

// setupLogging installs the process logger from log.* settings. -v flags
// raise the configured level.
func setupLogging() error {
	level := cfg.Log.Level
	switch {
	case verbose >= 2:
		level = "trace"
	case verbose == 1:
		level = "debug"
	}
	logger, err := logging.New(os.Stderr, cfg.Log.Format, level)
	if err != nil {
		return cli.ConfigError("configuring logging", err)
	}
	logging.SetGlobalLogger(logger)
	return nil
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveBool returns true if any of the provided values is true.
func resolveBool(values ...bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}
