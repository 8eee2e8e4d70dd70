package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/cnodash/internal/config"
	"github.com/KaramelBytes/cnodash/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Source flags (override config if set)
	flagAreas     string
	flagRegistry  string
	flagEncoding  string
	flagDelimiter string

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "cnodash",
	Short: "CNO dashboard: construction registry metrics, charts and tables",
	Long: `cnodash joins the CNO area and registry exports, keeps active records and
summarizes them by destination, state and size bucket as a web dashboard,
a static HTML report or a terminal summary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (rootCmd -> loadConfig -> rootCmd).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		level := cfg.LogLevel
		if debug {
			level = "debug"
		}
		l, err := logging.New(level, cfg.LogFormat)
		if err != nil {
			return err
		}
		logger = l
		return nil
	}

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.cnodash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging and the /debug/ page")
	rootCmd.PersistentFlags().StringVar(&flagAreas, "areas", "", "areas CSV path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagRegistry, "registry", "", "registry CSV path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagEncoding, "encoding", "", "source file encoding (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "field delimiter (overrides config)")
}

func loadConfig() error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("areas") && flagAreas != "" {
		cfg.AreasPath = flagAreas
	}
	if f.Changed("registry") && flagRegistry != "" {
		cfg.RegistryPath = flagRegistry
	}
	if f.Changed("encoding") && flagEncoding != "" {
		cfg.Encoding = flagEncoding
	}
	if f.Changed("delimiter") && flagDelimiter != "" {
		cfg.Delimiter = flagDelimiter
	}
	return nil
}
