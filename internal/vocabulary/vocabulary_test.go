package vocabulary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/subdeck/internal/anki"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    []Word
		wantErr bool
	}{
		{
			name: "word list",
			content: `- word: eager
  translation: begierig
  pronunciation: /ˈiːɡər/
  audio: eager.mp3
- word: naive
  translation: naiv
  tags: [b2]
`,
			want: []Word{
				{Word: "eager", Translation: "begierig", Pronunciation: "/ˈiːɡər/", Audio: "eager.mp3"},
				{Word: "naive", Translation: "naiv", Tags: []string{"b2"}},
			},
		},
		{
			name:    "empty file",
			content: "",
			want:    nil,
		},
		{
			name:    "not a list",
			content: "word: eager\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.yml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "words.yml")
	words := []Word{
		{Word: "eager", Translation: "begierig", Audio: "eager.mp3"},
		{Word: "naive"},
	}

	require.NoError(t, Write(path, words))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, words, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- word: eager\n")
	assert.NotContains(t, string(data), "pronunciation")
}

func TestToNotes(t *testing.T) {
	audioDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(audioDir, "eager.mp3"), []byte("eager-audio"), 0o644))

	model := anki.CreateWordModel()
	model.ID = 7

	t.Run("word model", func(t *testing.T) {
		notes, media, err := ToNotes([]Word{
			{Word: "eager", Translation: "begierig", Pronunciation: "/ˈiːɡər/", Audio: "eager.mp3", Tags: []string{"b1"}},
			{Word: "again", Translation: "wieder", Audio: "eager.mp3"},
			{Word: "naive", Translation: "naiv"},
		}, model, audioDir)
		require.NoError(t, err)

		assert.Equal(t, []anki.Note{
			{ModelID: 7, Fields: []string{"eager", "begierig", "/ˈiːɡər/", "[sound:eager.mp3]"}, Tags: []string{"b1"}},
			{ModelID: 7, Fields: []string{"again", "wieder", "", "[sound:eager.mp3]"}},
			{ModelID: 7, Fields: []string{"naive", "naiv", "", ""}},
		}, notes)
		assert.Equal(t, []anki.MediaFile{{Name: "eager.mp3", Data: []byte("eager-audio")}}, media)
	})

	t.Run("same audio file under equivalent paths", func(t *testing.T) {
		_, media, err := ToNotes([]Word{
			{Word: "eager", Audio: "eager.mp3"},
			{Word: "keen", Audio: "./eager.mp3"},
		}, model, audioDir)
		require.NoError(t, err)
		assert.Len(t, media, 1)
	})

	t.Run("different audio files with the same name", func(t *testing.T) {
		for _, dir := range []string{"a", "b"} {
			require.NoError(t, os.MkdirAll(filepath.Join(audioDir, dir), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(audioDir, dir, "x.mp3"), []byte(dir), 0o644))
		}
		_, _, err := ToNotes([]Word{
			{Word: "eager", Audio: "a/x.mp3"},
			{Word: "keen", Audio: "b/x.mp3"},
		}, model, audioDir)
		assert.ErrorIs(t, err, ErrMediaNameConflict)
	})

	t.Run("missing audio", func(t *testing.T) {
		_, _, err := ToNotes([]Word{{Word: "naive", Audio: "naive.mp3"}}, model, audioDir)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("model without word fields", func(t *testing.T) {
		_, _, err := ToNotes([]Word{{Word: "naive"}}, anki.CreateBasicModel(), audioDir)
		assert.Error(t, err)
	})
}

func TestFromPackage(t *testing.T) {
	word := anki.CreateWordModel()
	word.ID = 1
	basic := anki.CreateBasicModel()
	basic.ID = 2

	pkg := &anki.Package{
		Models: []anki.Model{word, basic},
		Notes: []anki.Note{
			{ModelID: 1, Fields: []string{"eager", "begierig", "/ˈiːɡər/", "[sound:eager.mp3]"}, Tags: []string{"b1"}},
			{ModelID: 2, Fields: []string{"naive ", "naiv"}},
			{ModelID: 3, Fields: []string{"lonely"}},
		},
	}

	assert.Equal(t, []Word{
		{Word: "eager", Translation: "begierig", Pronunciation: "/ˈiːɡər/", Audio: "eager.mp3", Tags: []string{"b1"}},
		{Word: "naive", Translation: "naiv"},
		{Word: "lonely"},
	}, FromPackage(pkg))
}

func TestExportAudio(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio")
	pkg := &anki.Package{MediaFiles: []anki.MediaFile{
		{Name: "eager.mp3", Data: []byte("eager-audio")},
		{Name: "unused.png", Data: []byte("png")},
	}}

	n, err := ExportAudio(pkg, []Word{{Word: "eager", Audio: "eager.mp3"}, {Word: "naive"}}, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(filepath.Join(dir, "eager.mp3"))
	require.NoError(t, err)
	assert.Equal(t, []byte("eager-audio"), data)
	assert.NoFileExists(t, filepath.Join(dir, "unused.png"))
}

func TestValidate(t *testing.T) {
	audioDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(audioDir, "eager.mp3"), nil, 0o644))

	result := Validate([]Word{
		{Word: "eager", Translation: "begierig", Audio: "eager.mp3"},
		{Word: " "},
		{Word: "Eager", Translation: "gierig"},
		{Word: "naive", Audio: "naive.mp3"},
	}, audioDir)

	assert.True(t, result.HasErrors())
	assert.Equal(t, []ValidationError{
		{Index: 1, Word: " ", Message: "word is empty", Severity: "error"},
		{Index: 2, Word: "Eager", Message: "duplicate of entry #1", Severity: "error"},
	}, result.Errors)
	assert.Equal(t, []ValidationError{
		{Index: 3, Word: "naive", Message: "translation is empty", Severity: "warning"},
		{Index: 3, Word: "naive", Message: "audio file naive.mp3 not found", Severity: "warning"},
	}, result.Warnings)
	assert.Equal(t, `#3 "Eager": duplicate of entry #1`, result.Errors[1].Error())
}
