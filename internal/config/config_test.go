package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/subdeck/internal/fsrs"
)

func TestConfigLoader_Load(t *testing.T) {
	tmpDir := t.TempDir()
	vocabularyFile := filepath.Join(tmpDir, "words.yml")
	require.NoError(t, os.WriteFile(vocabularyFile, []byte("[]\n"), 0644))

	tests := []struct {
		name              string
		configContent     string
		want              func(t *testing.T, cfg *Config)
		wantErrorContains []string
	}{
		{
			name: "custom values",
			configContent: `fsrs:
  request_retention: 0.85
  review_fuzz: false
session:
  max_new_cards: 5
  max_review_cards: 50
database:
  path: ` + filepath.Join(tmpDir, "cards.db") + `
vocabulary:
  file: ` + vocabularyFile + `
export:
  format: latest
  dual_format: true
  deck_name: Friends S01
`,
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 0.85, cfg.FSRS.RequestRetention)
				assert.False(t, cfg.FSRS.ReviewFuzz)
				assert.Equal(t, fsrs.DefaultParams, cfg.FSRS.Params)
				assert.Equal(t, fsrs.MaxInterval, cfg.FSRS.MaximumInterval)
				assert.Equal(t, SessionConfig{MaxNewCards: 5, MaxReviewCards: 50}, cfg.Session)
				assert.Equal(t, filepath.Join(tmpDir, "cards.db"), cfg.Database.Path)
				assert.Equal(t, vocabularyFile, cfg.Vocabulary.File)
				assert.Equal(t, "audio", cfg.Vocabulary.AudioDirectory)
				assert.Equal(t, "latest", cfg.Export.Format)
				assert.True(t, cfg.Export.DualFormat)
				assert.Equal(t, "Friends S01", cfg.Export.DeckName)
				assert.Equal(t, int64(1<<30), cfg.Export.MaxDecompressedSize)
			},
		},
		{
			name:          "empty file uses defaults",
			configContent: "",
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 0.9, cfg.FSRS.RequestRetention)
				assert.True(t, cfg.FSRS.ReviewFuzz)
				assert.Equal(t, 20, cfg.Session.MaxNewCards)
				assert.Equal(t, 200, cfg.Session.MaxReviewCards)
				assert.Equal(t, "legacy", cfg.Export.Format)
				assert.Equal(t, "Subtitles", cfg.Export.DeckName)
				assert.NotEmpty(t, cfg.Database.Path)
			},
		},
		{
			name: "invalid YAML format",
			configContent: `fsrs:
  request_retention: 0.9
  invalid yaml format here [[[
`,
			wantErrorContains: []string{
				"configuration file found but could not be read",
			},
		},
		{
			name: "retention out of range",
			configContent: `fsrs:
  request_retention: 1.5
`,
			wantErrorContains: []string{"invalid configuration", "request_retention"},
		},
		{
			name: "too few weights",
			configContent: `fsrs:
  params: [0.1, 0.2, 0.3]
`,
			wantErrorContains: []string{"invalid configuration", "params"},
		},
		{
			name: "unknown export format",
			configContent: `export:
  format: anki3
`,
			wantErrorContains: []string{"invalid configuration", "format"},
		},
		{
			name: "missing vocabulary file",
			configContent: `vocabulary:
  file: ` + filepath.Join(tmpDir, "missing.yml") + `
`,
			wantErrorContains: []string{"must be an existing and readable file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := filepath.Join(t.TempDir(), "config.yml")
			require.NoError(t, os.WriteFile(configFile, []byte(tt.configContent), 0644))

			loader, err := NewConfigLoader(configFile)
			require.NoError(t, err)
			got, err := loader.Load()
			if len(tt.wantErrorContains) > 0 {
				require.Error(t, err)
				for _, want := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), want)
				}
				return
			}
			require.NoError(t, err)
			tt.want(t, got)
		})
	}
}

func TestConfigLoader_Load_EnvOverride(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("SUBDECK_DATABASE_PATH", dbPath)

	configFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("database:\n  path: other.db\n"), 0644))

	loader, err := NewConfigLoader(configFile)
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, dbPath, cfg.Database.Path)
}
