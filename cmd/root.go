package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/sherpa/internal/config"
	"github.com/abhisek/sherpa/internal/logging"
	"github.com/abhisek/sherpa/internal/store"
)

var (
	appConfig config.Config
	logger    = slog.Default()
	closeLog  = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "sherpa",
	Short: "Learn ML papers by implementing them",
	Long: "Sherpa writes an exercise file with TODOs for a paper's key idea, watches you " +
		"fill them in from your own editor, and reviews every save.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SHERPA_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/sherpa/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print debug logs to stderr")
	rootCmd.PersistentFlags().String("log-file", "", "Path to the JSON log file (default in the data dir)")

	rootCmd.AddCommand(tutorCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and installs the process logger.
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	appConfig = cfg

	verbose, _ := cmd.Flags().GetBool("verbose")
	logFile, _ := cmd.Flags().GetString("log-file")
	if logFile == "" {
		logFile = cfg.Log.File
	}
	if logFile == "" {
		if logFile, err = logging.DefaultFile(); err != nil {
			return err
		}
	}

	l, closeFn, err := logging.New(logging.Options{
		Verbose:   verbose,
		File:      logFile,
		FileLevel: cfg.Log.Level,
	})
	if err != nil {
		return err
	}
	logger, closeLog = l, closeFn
	slog.SetDefault(logger)
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then SHERPA_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
