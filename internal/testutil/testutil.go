// Package testutil provides shared test helpers for config files and vocabulary fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/subdeck/internal/vocabulary"
)

// ConfigOption changes the generated config file.
type ConfigOption func(*testConfig)

type testConfig struct {
	words      []vocabulary.Word
	audioFiles map[string][]byte
	deckName   string
	format     string
}

// WithWords replaces the default vocabulary.
func WithWords(words ...vocabulary.Word) ConfigOption {
	return func(cfg *testConfig) {
		cfg.words = words
	}
}

// WithAudioFile adds a file to the audio directory.
func WithAudioFile(name string, data []byte) ConfigOption {
	return func(cfg *testConfig) {
		cfg.audioFiles[name] = data
	}
}

// WithExport sets the export deck name and format.
func WithExport(deckName, format string) ConfigOption {
	return func(cfg *testConfig) {
		cfg.deckName = deckName
		cfg.format = format
	}
}

// DefaultWords is the vocabulary written when WithWords is not given.
func DefaultWords() []vocabulary.Word {
	return []vocabulary.Word{
		{Word: "eager", Translation: "begierig", Pronunciation: "/ˈiːɡər/", Audio: "eager.mp3"},
		{Word: "naive", Translation: "naiv"},
	}
}

// SetupTestConfig writes a vocabulary file, an audio directory and a config
// file pointing at them and at a card store under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string, opts ...ConfigOption) string {
	t.Helper()

	cfg := testConfig{
		words:      DefaultWords(),
		audioFiles: map[string][]byte{"eager.mp3": []byte("eager-audio")},
		deckName:   "Test Deck",
		format:     "legacy",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	audioDir := filepath.Join(tmpDir, "audio")
	require.NoError(t, os.MkdirAll(audioDir, 0755))
	for name, data := range cfg.audioFiles {
		require.NoError(t, os.WriteFile(filepath.Join(audioDir, name), data, 0644))
	}
	vocabularyFile := filepath.Join(tmpDir, "words.yml")
	require.NoError(t, vocabulary.Write(vocabularyFile, cfg.words))

	configContent := fmt.Sprintf(`database:
  path: %s
vocabulary:
  file: %s
  audio_directory: audio
export:
  deck_name: %s
  format: %s
`,
		DatabasePath(tmpDir),
		vocabularyFile,
		cfg.deckName,
		cfg.format,
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// DatabasePath is the card store location used by SetupTestConfig.
func DatabasePath(tmpDir string) string {
	return filepath.Join(tmpDir, "data", "subdeck.db")
}
