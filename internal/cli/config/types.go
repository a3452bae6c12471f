// Package config provides configuration management for the matshell CLI.
//
// Values are layered from built-in defaults, an optional YAML file,
// MATSHELL_ environment variables and explicitly set command-line flags,
// in increasing order of precedence.
package config

// BootstrapConfig describes the matrix created before the first prompt.
type BootstrapConfig struct {
	Name  string `koanf:"name"`
	Rows  uint32 `koanf:"rows"`
	Cols  uint32 `koanf:"cols"`
	Low   uint32 `koanf:"low"`
	High  uint32 `koanf:"high"`
	Write bool   `koanf:"write"`
}

// Config holds all CLI configuration options.
type Config struct {
	Capacity     int             `koanf:"capacity"`
	NameMatch    string          `koanf:"name_match"`
	DataDir      string          `koanf:"data_dir"`
	HistoryFile  string          `koanf:"history_file"`
	Prompt       string          `koanf:"prompt"`
	Seed         uint64          `koanf:"seed"`
	Display      string          `koanf:"display"`
	Bootstrap    BootstrapConfig `koanf:"bootstrap"`
	LogLevel     string          `koanf:"log_level"`
	Verbose      bool            `koanf:"verbose"`
	OutputFormat string          `koanf:"output"`

	// ConfigFile is the YAML file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultCapacity    = 10
	MaxCapacity        = 64
	DefaultNameMatch   = "exact"
	DefaultDataDir     = "."
	DefaultHistoryFile = ".matshell_history"
	DefaultPrompt      = "> "
	DefaultDisplay     = "plain"
	DefaultLogLevel    = "warn"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown

	DefaultBootstrapName = "temp_mat"
	DefaultBootstrapRows = 5
	DefaultBootstrapCols = 5
	DefaultBootstrapLow  = 10
	DefaultBootstrapHigh = 15
)

// EnvPrefix is the prefix for environment overrides, e.g. MATSHELL_DATA_DIR.
const EnvPrefix = "MATSHELL_"

// configFileNames are searched, in order, in the working directory.
var configFileNames = []string{"matshell.yaml", "matshell.yml"}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Capacity:    DefaultCapacity,
		NameMatch:   DefaultNameMatch,
		DataDir:     DefaultDataDir,
		HistoryFile: DefaultHistoryFile,
		Prompt:      DefaultPrompt,
		Display:     DefaultDisplay,
		Bootstrap: BootstrapConfig{
			Name:  DefaultBootstrapName,
			Rows:  DefaultBootstrapRows,
			Cols:  DefaultBootstrapCols,
			Low:   DefaultBootstrapLow,
			High:  DefaultBootstrapHigh,
			Write: true,
		},
		LogLevel:     DefaultLogLevel,
		OutputFormat: DefaultOutput,
	}
}
