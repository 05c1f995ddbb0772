// Package config loads the YAML configuration shared by the CLI commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/at-ishikawa/subdeck/internal/fsrs"
)

type Config struct {
	FSRS       FSRSConfig       `mapstructure:"fsrs"`
	Session    SessionConfig    `mapstructure:"session"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
	Export     ExportConfig     `mapstructure:"export"`
}

type FSRSConfig struct {
	RequestRetention float64   `mapstructure:"request_retention" validate:"gt=0,lt=1"`
	Params           []float64 `mapstructure:"params" validate:"min=21,weights"`
	ReviewFuzz       bool      `mapstructure:"review_fuzz"`
	MaximumInterval  int       `mapstructure:"maximum_interval" validate:"gte=1,lte=36500"`
}

type SessionConfig struct {
	MaxNewCards    int `mapstructure:"max_new_cards" validate:"gte=0"`
	MaxReviewCards int `mapstructure:"max_review_cards" validate:"gte=0"`
}

type DatabaseConfig struct {
	Path          string `mapstructure:"path" validate:"required"`
	MaxOpenConns  int    `mapstructure:"max_open_conns" validate:"gte=0"`
	BusyTimeoutMs int    `mapstructure:"busy_timeout_ms" validate:"gte=0"`
}

type VocabularyConfig struct {
	File           string `mapstructure:"file" validate:"omitempty,file"`
	AudioDirectory string `mapstructure:"audio_directory"`
}

type ExportConfig struct {
	Format              string `mapstructure:"format" validate:"oneof=legacy transitional latest"`
	DualFormat          bool   `mapstructure:"dual_format"`
	DeckName            string `mapstructure:"deck_name" validate:"required"`
	MaxDecompressedSize int64  `mapstructure:"max_decompressed_size" validate:"gt=0"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/subdeck")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("fsrs.request_retention", 0.9)
	v.SetDefault("fsrs.params", fsrs.DefaultParams)
	v.SetDefault("fsrs.review_fuzz", true)
	v.SetDefault("fsrs.maximum_interval", fsrs.MaxInterval)
	v.SetDefault("session.max_new_cards", 20)
	v.SetDefault("session.max_review_cards", 200)
	v.SetDefault("database.path", defaultDatabasePath())
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.busy_timeout_ms", 5000)
	v.SetDefault("vocabulary.audio_directory", "audio")
	v.SetDefault("export.format", "legacy")
	v.SetDefault("export.dual_format", false)
	v.SetDefault("export.deck_name", "Subtitles")
	v.SetDefault("export.max_decompressed_size", int64(1<<30))

	if err := v.BindEnv("database.path", "SUBDECK_DATABASE_PATH"); err != nil {
		return nil, fmt.Errorf("failed to bind SUBDECK_DATABASE_PATH environment variable: %w", err)
	}
	if err := v.BindEnv("vocabulary.file", "SUBDECK_VOCABULARY_FILE"); err != nil {
		return nil, fmt.Errorf("failed to bind SUBDECK_VOCABULARY_FILE environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("validator.Struct() > %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "subdeck.db"
	}
	return filepath.Join(dir, "subdeck", "subdeck.db")
}
