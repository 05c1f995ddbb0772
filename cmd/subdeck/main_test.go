package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/subdeck/internal/anki"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		wantLevel slog.Level
	}{
		{
			name:      "debug mode enabled",
			debugMode: true,
			wantLevel: slog.LevelDebug,
		},
		{
			name:      "debug mode disabled",
			debugMode: false,
			wantLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupLogger(tt.debugMode)
			logger := slog.Default()
			assert.NotNil(t, logger)
			assert.Equal(t, tt.wantLevel <= slog.LevelDebug, logger.Enabled(context.Background(), slog.LevelDebug))
		})
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "subdeck", cmd.Use)
	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"export", "inspect", "import", "review", "stats"}, names)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
}

func TestFormatFlag(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		configured string
		want       anki.FormatVersion
		wantErr    bool
	}{
		{name: "flag wins", input: "latest", configured: "legacy", want: anki.FormatLatest},
		{name: "configured value when flag unset", configured: "transitional", want: anki.FormatTransitional},
		{name: "unknown flag value", input: "anki3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f formatFlag
			assert.Equal(t, "format", f.Type())
			if tt.input != "" {
				err := f.Set(tt.input)
				if tt.wantErr {
					assert.Error(t, err)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.input, f.String())
			}

			got, err := f.resolve(tt.configured)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
