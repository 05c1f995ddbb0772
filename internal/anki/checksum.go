package anki

import (
	"crypto/sha1"
	"encoding/binary"
	"html"
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/microcosm-cc/bluemonday"
)

const guidAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!#$%&()*+,-./:;<=>?@[]^_`{|}~"

var (
	tagStripper = bluemonday.StrictPolicy()
	soundMedia  = regexp.MustCompile(`\[sound:[^\]]+\]`)
)

// stripHTML removes tags and media references and decodes entities.
func stripHTML(s string) string {
	s = soundMedia.ReplaceAllString(s, "")
	s = tagStripper.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(s))
}

// fieldChecksum is the integer value of the first 8 hex digits of the SHA-1 of
// the stripped field, which is what Anki uses to detect duplicates.
func fieldChecksum(field string) int64 {
	sum := sha1.Sum([]byte(stripHTML(field)))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

func newGUID() string {
	return gonanoid.MustGenerate(guidAlphabet, 10)
}
