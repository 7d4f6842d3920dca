// Package config merges defaults, an optional config file, PATHSPEC_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ogdakke/pathspec/internal/gitwildmatch"
	"github.com/ogdakke/pathspec/internal/logger"
	"github.com/ogdakke/pathspec/internal/output"
)

const (
	EnvPrefix  = "PATHSPEC"
	ConfigName = ".pathspec"

	KeyPatterns        = "patterns"
	KeyFrom            = "from"
	KeyStyle           = "style"
	KeyFormat          = "format"
	KeyTemplate        = "template"
	KeyWorkers         = "workers"
	KeyInvert          = "invert"
	KeyMetadata        = "metadata"
	KeyIncludeDotfiles = "include-dotfiles"
	KeyNested          = "nested"
	KeyLogFormat       = "log-format"
)

// scalarKeys are bound to flags of the same name. Pattern lists are not:
// viper reads slice flags back as CSV, which breaks patterns holding commas
// or quotes.
var scalarKeys = []string{
	KeyStyle,
	KeyFormat,
	KeyTemplate,
	KeyWorkers,
	KeyInvert,
	KeyMetadata,
	KeyIncludeDotfiles,
	KeyNested,
	KeyLogFormat,
}

type Config struct {
	Patterns        []string `mapstructure:"patterns"`
	From            []string `mapstructure:"from"`
	Style           string   `mapstructure:"style"`
	Format          string   `mapstructure:"format"`
	Template        string   `mapstructure:"template"`
	Workers         int      `mapstructure:"workers"`
	Invert          bool     `mapstructure:"invert"`
	Metadata        bool     `mapstructure:"metadata"`
	IncludeDotfiles bool     `mapstructure:"include-dotfiles"`
	Nested          bool     `mapstructure:"nested"`
	LogFormat       string   `mapstructure:"log-format"`
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	// Replace - with _; so that environment variables are looked up correctly.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPatterns, []string{})
	v.SetDefault(KeyFrom, []string{})
	v.SetDefault(KeyStyle, gitwildmatch.Name)
	v.SetDefault(KeyFormat, output.FormatTable)
	v.SetDefault(KeyTemplate, "")
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyInvert, false)
	v.SetDefault(KeyMetadata, true)
	v.SetDefault(KeyIncludeDotfiles, false)
	v.SetDefault(KeyNested, false)
	v.SetDefault(KeyLogFormat, "text")
}

// BindFlags binds every scalar key to the flag of the same name on cmd,
// when cmd defines one.
func BindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for _, key := range scalarKeys {
		flag := cmd.Flags().Lookup(key)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", key, err)
		}
	}
	return nil
}

// Load reads file, or ./.pathspec.yaml when file is empty, and decodes the
// merged settings. A missing default config file is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		logger.Debug("No config file found")
	} else {
		logger.Debug("Loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	valid := false
	for _, f := range output.Formats() {
		if c.Format == f {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("unknown format %q, expected one of %s", c.Format, strings.Join(output.Formats(), ", "))
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// EffectiveWorkers resolves 0 to the number of CPUs.
func (c Config) EffectiveWorkers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
