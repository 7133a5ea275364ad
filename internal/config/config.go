package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the runtime configuration of the diary tools.
type Config struct {
	Log    LogConfig
	Server ServerConfig
	Diary  DiaryConfig
	Seed   SeedConfig
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DiaryConfig struct {
	MaxWordsPerPage int `mapstructure:"max_words_per_page"`
	SearchLimit     int `mapstructure:"search_limit"`
	CacheSize       int `mapstructure:"cache_size"`
}

// SeedConfig points at the YAML corpus loaded at start. An empty path selects
// the built-in sample corpus.
type SeedConfig struct {
	Path string `mapstructure:"path"`
}

// EnvPrefix prefixes environment overrides, e.g. DIARY_SERVER_ADDR.
const EnvPrefix = "DIARY"

// Load reads defaults, then the optional config file at path, then the
// environment.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("diary.max_words_per_page", 700)
	v.SetDefault("diary.search_limit", 10)
	v.SetDefault("diary.cache_size", 128)
	v.SetDefault("seed.path", "")
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Diary.MaxWordsPerPage <= 0 {
		errs = append(errs, fmt.Errorf("diary.max_words_per_page must be positive, got %d", c.Diary.MaxWordsPerPage))
	}
	if c.Diary.SearchLimit < 1 {
		errs = append(errs, fmt.Errorf("diary.search_limit must be at least 1, got %d", c.Diary.SearchLimit))
	}
	if c.Diary.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("diary.cache_size cannot be negative, got %d", c.Diary.CacheSize))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	return errors.Join(errs...)
}
