package godbf

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the defaults used to open tables, usually loaded from a yaml
// file with LoadConfig.
type Config struct {
	Charset  string `mapstructure:"charset"`
	Version  string `mapstructure:"version"`
	Create   bool   `mapstructure:"create"`
	LogLevel string `mapstructure:"log_level"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("charset", DefaultCharset)
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := cfg.ParseVersion(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseVersion maps the configured version name to a Version. An empty name
// means detect (or dBase III+ for new tables).
func (c *Config) ParseVersion() (Version, error) {
	return ParseVersion(c.Version)
}

func ParseVersion(name string) (Version, error) {
	switch strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "", ".", "", "+", "").Replace(name)) {
	case "":
		return 0, nil
	case "dbase3", "dbaseiii", "dbase3plus", "dbaseiiiplus":
		return DBase3, nil
	case "dbase4", "dbaseiv":
		return DBase4, nil
	case "dbase5":
		return DBase5, nil
	case "foxpro26", "foxpro":
		return FoxPro26, nil
	case "clipper5", "clipper":
		return Clipper5, nil
	}
	return 0, fmt.Errorf("unknown version %q", name)
}

func (c *Config) IfNonExistent() IfNonExistent {
	if c.Create {
		return IfNonExistentCreate
	}
	return IfNonExistentError
}

func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Options turns the config into table options.
func (c *Config) Options() ([]Option, error) {
	v, err := c.ParseVersion()
	if err != nil {
		return nil, err
	}
	opts := []Option{WithCharset(c.Charset)}
	if v != 0 {
		opts = append(opts, WithVersion(v))
	}
	return opts, nil
}
