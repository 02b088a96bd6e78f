package util

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/backend"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/codec"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/store"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the flags shared by all commands that operate on a
// store instance to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "data"
	cmd.PersistentFlags().String(key, "bigbase.db", WrapString("Path of the database file (ignored for the memory backend)"))

	key = "backend"
	cmd.PersistentFlags().String(key, "sqlite", WrapString("Storage backend to use (sqlite, memory)"))

	key = "codec"
	cmd.PersistentFlags().String(key, "json", WrapString("Codec for persisted document bodies (json, gob)"))

	key = "config"
	cmd.PersistentFlags().String(key, "", WrapString("Optional YAML config file - flags and environment variables take precedence over it"))

	key = "cache-max-memory"
	cmd.PersistentFlags().String(key, "512MB", WrapString("Memory bound of the document cache, e.g. 64MB or 1GB"))

	key = "cache-max-items"
	cmd.PersistentFlags().Int(key, 10000, WrapString("Maximum number of cached documents"))

	key = "cache-ttl"
	cmd.PersistentFlags().Duration(key, time.Hour, WrapString("Default cache lifetime of a document"))

	key = "cache-sweep-interval"
	cmd.PersistentFlags().Duration(key, time.Minute, WrapString("Interval of the cache maintenance sweep"))

	key = "caching"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to cache point reads"))

	key = "indexing"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to maintain secondary indexes"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("bigbase")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetLogger builds the CLI logger from the log-level and log-json settings.
// Unknown levels fall back to warn so a typo never silences errors.
func GetLogger() zerolog.Logger {
	var logger zerolog.Logger
	if viper.GetBool("log-json") {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		}).With().Timestamp().Logger()
	}

	switch viper.GetString("log-level") {
	case "debug":
		return logger.Level(zerolog.DebugLevel)
	case "info":
		return logger.Level(zerolog.InfoLevel)
	case "error":
		return logger.Level(zerolog.ErrorLevel)
	default:
		return logger.Level(zerolog.WarnLevel)
	}
}

// GetCodec creates a codec based on configuration
func GetCodec() (codec.ICodec, error) {
	switch viper.GetString("codec") {
	case "json":
		return codec.NewJSONCodec(), nil
	case "gob":
		return codec.NewGOBCodec(), nil
	default:
		return nil, fmt.Errorf("invalid codec %s", viper.GetString("codec"))
	}
}

// GetBackend creates a storage backend based on configuration
func GetBackend() (backend.IBackend, error) {
	switch viper.GetString("backend") {
	case "memory":
		return backend.NewMemoryBackend(), nil
	case "sqlite":
		c, err := GetCodec()
		if err != nil {
			return nil, err
		}
		return backend.NewSQLiteBackend(viper.GetString("data"), c)
	default:
		return nil, fmt.Errorf("invalid backend %s", viper.GetString("backend"))
	}
}

// GetStoreOptions reads the store configuration from viper
func GetStoreOptions() *store.Options {
	opts := store.DefaultOptions()
	opts.MaxMemory = viper.GetString("cache-max-memory")
	opts.MaxCacheItems = viper.GetInt("cache-max-items")
	opts.CacheTTL = viper.GetDuration("cache-ttl")
	opts.SweepInterval = viper.GetDuration("cache-sweep-interval")
	opts.Caching = viper.GetBool("caching")
	opts.Indexing = viper.GetBool("indexing")
	opts.Logger = GetLogger()
	return opts
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
