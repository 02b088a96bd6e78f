package util

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "90s" or "1h30m"
// can be parsed with time.ParseDuration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = Duration(parsed)
	return nil
}

// Config mirrors the store flags as a YAML file. All fields are optional,
// absent fields keep their built-in defaults. Boolean toggles are pointers
// so "set to false" and "not set" stay distinguishable.
type Config struct {
	Data    string `yaml:"data"`
	Backend string `yaml:"backend"`
	Codec   string `yaml:"codec"`

	Log struct {
		Level string `yaml:"level"`
		JSON  *bool  `yaml:"json"`
	} `yaml:"log"`

	Cache struct {
		MaxMemory     string   `yaml:"max_memory"`
		MaxItems      int      `yaml:"max_items"`
		TTL           Duration `yaml:"ttl"`
		SweepInterval Duration `yaml:"sweep_interval"`
	} `yaml:"cache"`

	Caching  *bool `yaml:"caching"`
	Indexing *bool `yaml:"indexing"`
}

// LoadConfigFile parses a YAML config file and registers its values as
// viper defaults. Defaults rank below flags and environment variables,
// so the file only fills in what the caller did not set explicitly.
func LoadConfigFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var conf Config
	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if conf.Data != "" {
		viper.SetDefault("data", conf.Data)
	}
	if conf.Backend != "" {
		viper.SetDefault("backend", conf.Backend)
	}
	if conf.Codec != "" {
		viper.SetDefault("codec", conf.Codec)
	}
	if conf.Log.Level != "" {
		viper.SetDefault("log-level", conf.Log.Level)
	}
	if conf.Log.JSON != nil {
		viper.SetDefault("log-json", *conf.Log.JSON)
	}
	if conf.Cache.MaxMemory != "" {
		viper.SetDefault("cache-max-memory", conf.Cache.MaxMemory)
	}
	if conf.Cache.MaxItems != 0 {
		viper.SetDefault("cache-max-items", conf.Cache.MaxItems)
	}
	if conf.Cache.TTL != 0 {
		viper.SetDefault("cache-ttl", time.Duration(conf.Cache.TTL))
	}
	if conf.Cache.SweepInterval != 0 {
		viper.SetDefault("cache-sweep-interval", time.Duration(conf.Cache.SweepInterval))
	}
	if conf.Caching != nil {
		viper.SetDefault("caching", *conf.Caching)
	}
	if conf.Indexing != nil {
		viper.SetDefault("indexing", *conf.Indexing)
	}

	return nil
}
