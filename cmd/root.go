// =============================================================================
// EDI 850 Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (edi850)
//   ├── processCmd  (edi850 process)
//   ├── validateCmd (edi850 validate)
//   ├── watchCmd    (edi850 watch)
//   └── versionCmd  (edi850 version)
//
// CONFIGURATION:
//   Settings are resolved in this order, later sources winning:
//   1. Built-in defaults
//   2. The YAML file named by --config
//   3. EDI850_* environment variables
//   4. Command-line flags
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ginjaninja78/EDI850-converter/internal/config"
	"github.com/ginjaninja78/EDI850-converter/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// EnvPrefix prefixes every environment override, e.g. EDI850_OUTPUT_DIR.
const EnvPrefix = "EDI850"

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging on the console.
var verbose bool

// v collects flag and environment overrides.
var v = viper.New()

// appConfig and logger are set by loadRuntime before a command runs.
var (
	appConfig *config.MainConfig
	zapLogger *zap.Logger
	logger    logging.Logger = logging.Nop()
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "edi850",
	Short: "EDI 850 Converter - Parse purchase orders and export spend reports",
	Long: `EDI 850 Converter reads X12 850 purchase-order documents, extracts the
header and line items, normalizes quantities and prices, and writes spend
statistics in several formats.

Key Features:
  - Tolerant segment parsing with precise errors for malformed segments
  - JSON, XML, CSV, XLSX and SQLite exports per document
  - Validation findings for incomplete purchase orders
  - Concurrent batch processing and directory watching
  - Automatic file archival on successful processing

Example Usage:
  edi850 process                     # Process all files in the input directory
  edi850 process --file order.edi    # Process a single file
  edi850 validate                    # Parse and validate without writing
  edi850 watch                       # Process new files as they arrive`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if code := run(); code != 0 {
		os.Exit(code)
	}
}

// run executes the root command and returns the process exit code. Buffered
// log output is flushed before it returns, since os.Exit skips deferred calls.
func run() int {
	defer syncLogger()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func syncLogger() {
	if zapLogger != nil {
		_ = zapLogger.Sync()
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "config.yaml", "Path to the main configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	flags.String("input-dir", "", "Override the input directory")
	flags.String("output-dir", "", "Override the output directory")
	flags.String("log-level", "", "Override the log level (debug, info, warn, error)")

	_ = v.BindPFlag("input_dir", flags.Lookup("input-dir"))
	_ = v.BindPFlag("output_dir", flags.Lookup("output-dir"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// loadRuntime loads configuration, applies overrides and builds the logger.
// Commands that need configuration call it first.
func loadRuntime() error {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	if err := config.ApplyOverrides(cfg, v); err != nil {
		return fmt.Errorf("invalid configuration override: %w", err)
	}

	zl, err := logging.New(cfg.LogLevel, cfg.LogFile, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	appConfig = cfg
	zapLogger = zl
	logger = logging.Sugar(zl)

	logger.Debug("Loaded configuration from %s", cfgFile)
	return nil
}
