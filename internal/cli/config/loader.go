package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Context keys for the values PersistentPreRunE hands to subcommands.
type loggerKey struct{}

type configKey struct{}

// findConfigFile returns the explicit path, else the first of
// configFileNames present in the working directory, else "".
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func defaultsMap() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"capacity":        d.Capacity,
		"name_match":      d.NameMatch,
		"data_dir":        d.DataDir,
		"history_file":    d.HistoryFile,
		"prompt":          d.Prompt,
		"seed":            d.Seed,
		"display":         d.Display,
		"bootstrap.name":  d.Bootstrap.Name,
		"bootstrap.rows":  d.Bootstrap.Rows,
		"bootstrap.cols":  d.Bootstrap.Cols,
		"bootstrap.low":   d.Bootstrap.Low,
		"bootstrap.high":  d.Bootstrap.High,
		"bootstrap.write": d.Bootstrap.Write,
		"log_level":       d.LogLevel,
		"verbose":         d.Verbose,
		"output":          d.OutputFormat,
	}
}

// envKey maps MATSHELL_DATA_DIR to data_dir and MATSHELL_BOOTSTRAP_ROWS to bootstrap.rows.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "bootstrap_"); ok {
		return "bootstrap." + rest
	}
	return key
}

// LoadConfig layers defaults, the YAML file, MATSHELL_* variables and the
// flags the user actually set, in that order, and validates the result.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// --config names the file and is not a key.
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.ConfigFile = used

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger returns the logger stored by WithLogger, or one that discards
// everything.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context.
// Commands run outside the root command (tests, mostly) get the defaults.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return Default()
}
