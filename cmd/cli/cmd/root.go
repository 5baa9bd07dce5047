package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/covergen/pkg/config"
	"github.com/covergen/pkg/telemetry"
	"github.com/covergen/pkg/utils"
)

var (
	// Global flags
	configFile string
	verbose    bool
	debugMode  bool

	cfg    *config.Config
	logger utils.Logger

	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "covergen",
	Short: "A covering, locating and detecting array generator",
	Long: `covergen builds combinatorial test arrays with provable coverage,
location and detection properties for a set of discrete factors.

Given a factor profile and the parameters t (interaction strength),
d (set cardinality) and δ (separation), it grows a row set greedily until
the requested property holds: t-covering, (d,t)-locating or
(d,t,δ)-detecting.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}

		logLevel := utils.ParseLogLevel(cfg.Log.Level)
		if verbose || debugMode {
			logLevel = utils.LevelDebug
		}
		if cfg.Log.OutputPath != "" {
			logger, err = utils.NewFileLogger(logLevel, cfg.Log.OutputPath)
			if err != nil {
				return err
			}
		} else {
			logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		}

		telemetryShutdown, err = telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("Failed to initialize telemetry: %v", err)
			telemetryShutdown = nil
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if telemetryShutdown != nil {
			_ = telemetryShutdown(context.Background())
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output: score breakdown and heuristic in use")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "D", false, "Debug trace: data structures and lock decisions")

	binName := BinName()
	rootCmd.Example = `  # Build a 2-covering array
  ` + binName + ` generate 2 profile.txt array.txt

  # Build a (1,2)-locating array
  ` + binName + ` generate 1 2 profile.txt array.txt

  # Build a (1,2,2)-detecting array, extending an existing prefix
  ` + binName + ` generate 1 2 2 profile.txt array.txt --partial prefix.txt

  # Print the array to stdout, silently
  ` + binName + ` generate -s 2 profile.txt`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
