// Package vocabulary reads and writes the YAML word list that feeds exported decks.
package vocabulary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/subdeck/internal/anki"
)

type Word struct {
	Word          string   `yaml:"word"`
	Translation   string   `yaml:"translation,omitempty"`
	Pronunciation string   `yaml:"pronunciation,omitempty"`
	Audio         string   `yaml:"audio,omitempty"`
	Tags          []string `yaml:"tags,omitempty"`
}

// CardID is the key of the word's flashcard in the card store.
func (w Word) CardID() string {
	return strings.ToLower(strings.TrimSpace(w.Word))
}

// Load reads a word list. A missing file is an error.
func Load(path string) ([]Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile() > %w", err)
	}

	var words []Word
	if err := yaml.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}
	return words, nil
}

func Write(path string, words []Word) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll() > %w", err)
	}
	data, err := yaml.Marshal(words)
	if err != nil {
		return fmt.Errorf("yaml.Marshal() > %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return nil
}

const (
	fieldWord          = "Word"
	fieldTranslation   = "Translation"
	fieldPronunciation = "Pronunciation"
	fieldAudio         = "Audio"
)

var soundRef = regexp.MustCompile(`\[sound:([^\]]+)\]`)

// ErrMediaNameConflict is returned when two different audio files share a base name.
var ErrMediaNameConflict = errors.New("vocabulary: audio files share a name")

// ToNotes fills model's Word, Translation, Pronunciation and Audio fields from
// words. Audio files are read from audioDir and returned as media with a
// [sound:] reference in the Audio field. The returned notes have no IDs yet.
func ToNotes(words []Word, model anki.Model, audioDir string) ([]anki.Note, []anki.MediaFile, error) {
	index := make(map[string]int, len(model.Fields))
	for _, f := range model.Fields {
		index[f.Name] = f.Ord
	}
	for _, name := range []string{fieldWord, fieldTranslation} {
		if _, ok := index[name]; !ok {
			return nil, nil, fmt.Errorf("model %q has no %s field", model.Name, name)
		}
	}

	notes := make([]anki.Note, 0, len(words))
	var media []anki.MediaFile
	// Media names share one flat namespace in a package, keyed by base name.
	sources := map[string]string{}
	for _, w := range words {
		fields := make([]string, len(model.Fields))
		set := func(name, value string) {
			if ord, ok := index[name]; ok && ord < len(fields) {
				fields[ord] = value
			}
		}
		set(fieldWord, w.Word)
		set(fieldTranslation, w.Translation)
		set(fieldPronunciation, w.Pronunciation)

		if w.Audio != "" {
			name := filepath.Base(w.Audio)
			source := filepath.Clean(w.Audio)
			if prev, ok := sources[name]; !ok {
				data, err := os.ReadFile(filepath.Join(audioDir, w.Audio))
				if err != nil {
					return nil, nil, fmt.Errorf("audio for %q > %w", w.Word, err)
				}
				media = append(media, anki.MediaFile{Name: name, Data: data})
				sources[name] = source
			} else if prev != source {
				return nil, nil, fmt.Errorf("%w: %s and %s for %q", ErrMediaNameConflict, prev, source, w.Word)
			}
			set(fieldAudio, "[sound:"+name+"]")
		}

		notes = append(notes, anki.Note{
			ModelID: model.ID,
			Fields:  fields,
			Tags:    w.Tags,
		})
	}
	return notes, media, nil
}

// FromPackage maps notes of word-shaped models back to words. Notes of other
// models use their first two fields as word and translation.
func FromPackage(pkg *anki.Package) []Word {
	models := make(map[int64]anki.Model, len(pkg.Models))
	for _, m := range pkg.Models {
		models[m.ID] = m
	}

	words := make([]Word, 0, len(pkg.Notes))
	for _, n := range pkg.Notes {
		field := fieldReader(models[n.ModelID], n.Fields)
		w := Word{
			Word:          field(fieldWord, 0),
			Translation:   field(fieldTranslation, 1),
			Pronunciation: field(fieldPronunciation, -1),
			Tags:          n.Tags,
		}
		if m := soundRef.FindStringSubmatch(field(fieldAudio, -1)); m != nil {
			w.Audio = m[1]
		}
		words = append(words, w)
	}
	return words
}

// fieldReader looks up a note field by model field name, falling back to a
// position when the model has no field with that name.
func fieldReader(model anki.Model, values []string) func(name string, fallback int) string {
	index := make(map[string]int, len(model.Fields))
	for _, f := range model.Fields {
		index[f.Name] = f.Ord
	}
	return func(name string, fallback int) string {
		ord, ok := index[name]
		if !ok {
			ord = fallback
		}
		if ord < 0 || ord >= len(values) {
			return ""
		}
		return strings.TrimSpace(values[ord])
	}
}

// ExportAudio writes the media of pkg that is referenced by words into dir.
func ExportAudio(pkg *anki.Package, words []Word, dir string) (int, error) {
	wanted := map[string]bool{}
	for _, w := range words {
		if w.Audio != "" {
			wanted[w.Audio] = true
		}
	}
	if len(wanted) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("os.MkdirAll() > %w", err)
	}

	var written int
	for _, m := range pkg.MediaFiles {
		if !wanted[m.Name] {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, filepath.Base(m.Name)), m.Data, 0o644); err != nil {
			return written, fmt.Errorf("os.WriteFile(%s) > %w", m.Name, err)
		}
		written++
	}
	return written, nil
}
