package vocabulary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidationError describes a problem with one entry of a word list.
type ValidationError struct {
	Index    int
	Word     string
	Message  string
	Severity string // "error" or "warning"
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("#%d %q: %s", e.Index+1, e.Word, e.Message)
}

type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r *ValidationResult) addError(err ValidationError) {
	err.Severity = "error"
	r.Errors = append(r.Errors, err)
}

func (r *ValidationResult) addWarning(err ValidationError) {
	err.Severity = "warning"
	r.Warnings = append(r.Warnings, err)
}

// Validate reports empty or duplicated words as errors and missing
// translations or audio files as warnings.
func Validate(words []Word, audioDir string) *ValidationResult {
	result := &ValidationResult{}
	seen := map[string]int{}

	for i, w := range words {
		key := w.CardID()
		if key == "" {
			result.addError(ValidationError{Index: i, Word: w.Word, Message: "word is empty"})
			continue
		}
		if first, ok := seen[key]; ok {
			result.addError(ValidationError{Index: i, Word: w.Word, Message: fmt.Sprintf("duplicate of entry #%d", first+1)})
			continue
		}
		seen[key] = i

		if strings.TrimSpace(w.Translation) == "" {
			result.addWarning(ValidationError{Index: i, Word: w.Word, Message: "translation is empty"})
		}
		if w.Audio != "" {
			if _, err := os.Stat(filepath.Join(audioDir, w.Audio)); err != nil {
				result.addWarning(ValidationError{Index: i, Word: w.Word, Message: fmt.Sprintf("audio file %s not found", w.Audio)})
			}
		}
	}
	return result
}
