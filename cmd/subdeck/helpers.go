package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/subdeck/internal/anki"
	"github.com/at-ishikawa/subdeck/internal/config"
	"github.com/at-ishikawa/subdeck/internal/database"
	"github.com/at-ishikawa/subdeck/internal/fsrs"
	"github.com/at-ishikawa/subdeck/internal/learning"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newSessionManager(cfg *config.Config) (*learning.LearningSessionManager, error) {
	opts := []fsrs.Option{fsrs.WithMaximumInterval(cfg.FSRS.MaximumInterval)}
	scheduler, err := fsrs.New(cfg.FSRS.RequestRetention, cfg.FSRS.Params, cfg.FSRS.ReviewFuzz, opts...)
	if err != nil {
		return nil, fmt.Errorf("fsrs.New() > %w", err)
	}
	return learning.NewLearningSessionManager(learning.NewFSRSService(scheduler)), nil
}

// openRepository opens the card store and makes sure its tables exist.
func openRepository(ctx context.Context, cfg *config.Config) (*sqlx.DB, *learning.DBCardRepository, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open() > %w", err)
	}
	repo := learning.NewDBCardRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, repo, nil
}

// audioDirectory resolves a relative audio directory against the vocabulary file.
func audioDirectory(cfg *config.Config) string {
	dir := cfg.Vocabulary.AudioDirectory
	if filepath.IsAbs(dir) || cfg.Vocabulary.File == "" {
		return dir
	}
	return filepath.Join(filepath.Dir(cfg.Vocabulary.File), dir)
}

// formatFlag is a pflag.Value restricted to the apkg format names.
type formatFlag struct {
	value anki.FormatVersion
	set   bool
}

var _ pflag.Value = (*formatFlag)(nil)

func (f *formatFlag) String() string {
	return f.value.String()
}

func (f *formatFlag) Set(s string) error {
	v, err := anki.ParseFormatVersion(s)
	if err != nil {
		return err
	}
	f.value = v
	f.set = true
	return nil
}

func (f *formatFlag) Type() string {
	return "format"
}

// resolve returns the flag value when given on the command line and the configured one otherwise.
func (f *formatFlag) resolve(configured string) (anki.FormatVersion, error) {
	if f.set {
		return f.value, nil
	}
	return anki.ParseFormatVersion(configured)
}
