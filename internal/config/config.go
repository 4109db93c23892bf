// =============================================================================
// EDI 850 Converter - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file and
// layers command-line flag and environment overrides on top of it.
//
// PRECEDENCE (highest first):
//   1. Command-line flags bound in cmd/root.go (e.g. --output-dir)
//   2. Environment variables (EDI850_OUTPUT_DIR, EDI850_LOG_LEVEL, ...)
//   3. The YAML file (config.yaml by default)
//   4. Built-in defaults (applyMainConfigDefaults)
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for EDI documents.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives one subdirectory of artifacts per document.
	// Default: "./outputs"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after successful processing.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of each document's summary.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// InputPatterns are glob patterns matched against file names in InputDir.
	// Default: ["*.edi", "*.850", "*.txt"]
	InputPatterns []string `yaml:"input_patterns"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile receives JSON log lines in addition to the console.
	// Empty disables the file sink.
	// Default: "./logs/converter.log"
	LogFile string `yaml:"log_file"`

	// LogLevel is one of "debug", "info", "warn" (or "warning"), "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat names the per-document output directory.
	// Placeholders:
	//   {original}  - input file name without extension
	//   {po}        - PO number (or "unknown")
	//   {uuid}      - a random UUID
	//   {timestamp} - YYYYMMDD_HHMMSS
	//   {date}      - YYYYMMDD
	//   {time}      - HHMMSS
	// Default: "{original}_{timestamp}"
	OutputNameFormat string `yaml:"output_name_format"`

	// Outputs selects which artifacts are written.
	Outputs OutputSettings `yaml:"outputs"`

	// Formats tunes the CSV and XML artifacts.
	Formats FormatSettings `yaml:"formats"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency bounds how many documents are processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps a document going when validation reports errors.
	// Structural parse errors always fail the document.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// ArchiveOnSuccess moves processed inputs to InputArchiveDir.
	// Default: true
	ArchiveOnSuccess *bool `yaml:"archive_on_success"`

	// ArchiveTimestampSubdirs files archived inputs and outputs under
	// YYYY/MM/DD subdirectories of the archive directories.
	// Default: false
	ArchiveTimestampSubdirs bool `yaml:"archive_timestamp_subdirs"`

	// TreatWarningsAsErrors promotes validation warnings to errors.
	// Default: false
	TreatWarningsAsErrors bool `yaml:"treat_warnings_as_errors"`

	// Watch configures the watch command.
	Watch WatchSettings `yaml:"watch"`
}

// OutputSettings toggles individual artifacts.
type OutputSettings struct {
	JSON    bool `yaml:"json"`
	XML     bool `yaml:"xml"`
	CSV     bool `yaml:"csv"`
	XLSX    bool `yaml:"xlsx"`
	SQLite  bool `yaml:"sqlite"`
	Summary bool `yaml:"summary"`
}

// FormatSettings tunes individual artifact encodings.
type FormatSettings struct {
	// CSVDelimiter is a single character. Default: ","
	CSVDelimiter string `yaml:"csv_delimiter"`

	// CSVUseCRLF ends CSV records with \r\n.
	CSVUseCRLF bool `yaml:"csv_crlf"`

	// XMLRootElement names the XML document element. Default: "PurchaseOrder"
	XMLRootElement string `yaml:"xml_root_element"`

	// XMLIndent is the XML indentation string. Default: two spaces
	XMLIndent string `yaml:"xml_indent"`
}

// WatchSettings configures directory watching.
type WatchSettings struct {
	// Debounce coalesces bursts of file events. Default: 500ms
	Debounce time.Duration `yaml:"debounce"`

	// InitialScan processes files already present when watching starts.
	InitialScan bool `yaml:"initial_scan"`
}

// ShouldContinueOnError reports the effective ContinueOnError value.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// ShouldArchive reports the effective ArchiveOnSuccess value.
func (c *MainConfig) ShouldArchive() bool {
	return c.ArchiveOnSuccess == nil || *c.ArchiveOnSuccess
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	cfg := &MainConfig{Outputs: allOutputs()}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// A missing file is not an error: defaults are returned instead. Directories
// are not created here; call EnsureDirectories once overrides are applied.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration bytes and applies defaults.
func Parse(data []byte) (*MainConfig, error) {
	// Outputs default to all-on unless the file has an outputs block.
	var declared struct {
		Outputs *OutputSettings `yaml:"outputs"`
	}
	if err := yaml.Unmarshal(data, &declared); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if declared.Outputs == nil {
		config.Outputs = allOutputs()
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyOverrides copies flag and environment values from v onto cfg.
// Only keys that are set in v are applied.
func ApplyOverrides(cfg *MainConfig, v *viper.Viper) error {
	if v == nil {
		return nil
	}

	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			if s := strings.TrimSpace(v.GetString(key)); s != "" {
				*dst = s
			}
		}
	}

	setString("input_dir", &cfg.InputDir)
	setString("output_dir", &cfg.OutputDir)
	setString("input_archive_dir", &cfg.InputArchiveDir)
	setString("output_archive_dir", &cfg.OutputArchiveDir)
	setString("log_file", &cfg.LogFile)
	setString("log_level", &cfg.LogLevel)
	setString("output_name_format", &cfg.OutputNameFormat)

	if v.IsSet("max_concurrency") {
		if n := v.GetInt("max_concurrency"); n > 0 {
			cfg.MaxConcurrency = n
		}
	}
	if v.IsSet("continue_on_error") {
		b := v.GetBool("continue_on_error")
		cfg.ContinueOnError = &b
	}
	if v.IsSet("archive_on_success") {
		b := v.GetBool("archive_on_success")
		cfg.ArchiveOnSuccess = &b
	}
	if v.IsSet("archive_timestamp_subdirs") {
		cfg.ArchiveTimestampSubdirs = v.GetBool("archive_timestamp_subdirs")
	}

	return validateMainConfig(cfg)
}

// EnsureDirectories creates every directory the configuration refers to.
func (c *MainConfig) EnsureDirectories() error {
	dirs := []string{
		c.InputDir,
		c.OutputDir,
		c.InputArchiveDir,
		c.OutputArchiveDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./outputs"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if len(config.InputPatterns) == 0 {
		config.InputPatterns = []string{"*.edi", "*.850", "*.txt"}
	}
	if config.LogFile == "" {
		config.LogFile = "./logs/converter.log"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{original}_{timestamp}"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.Formats.CSVDelimiter == "" {
		config.Formats.CSVDelimiter = ","
	}
	if config.Formats.XMLRootElement == "" {
		config.Formats.XMLRootElement = "PurchaseOrder"
	}
	if config.Formats.XMLIndent == "" {
		config.Formats.XMLIndent = "  "
	}
	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = 500 * time.Millisecond
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(strings.TrimSpace(config.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, config.LogLevel)
	}

	if utf8.RuneCountInString(config.Formats.CSVDelimiter) != 1 {
		return fmt.Errorf("%w: csv_delimiter must be one character, got %q", ErrInvalidConfig, config.Formats.CSVDelimiter)
	}
	if d := []rune(config.Formats.CSVDelimiter)[0]; d == '"' || d == '\r' || d == '\n' {
		return fmt.Errorf("%w: csv_delimiter %q is not allowed", ErrInvalidConfig, config.Formats.CSVDelimiter)
	}

	if config.MaxConcurrency < 0 {
		return fmt.Errorf("%w: max_concurrency must be positive, got %d", ErrInvalidConfig, config.MaxConcurrency)
	}

	if config.Outputs == (OutputSettings{}) {
		return fmt.Errorf("%w: every output is disabled", ErrInvalidConfig)
	}

	return nil
}

func allOutputs() OutputSettings {
	return OutputSettings{JSON: true, XML: true, CSV: true, XLSX: true, SQLite: true, Summary: true}
}
