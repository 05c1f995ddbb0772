package anki

import (
	"errors"
	"fmt"
	"time"

	"github.com/at-ishikawa/subdeck/internal/fsrs"
)

var (
	ErrInvalidApkg      = errors.New("anki: invalid apkg")
	ErrBrokenReference  = errors.New("anki: broken reference")
	ErrUnknownModel     = errors.New("anki: unknown model")
	ErrUnknownDeck      = errors.New("anki: unknown deck")
	ErrDecompressedSize = errors.New("anki: decompressed collection exceeds size limit")
)

// FormatVersion selects the collection layout written into a package.
type FormatVersion int

const (
	// FormatLegacy writes collection.anki2 with schema 11.
	FormatLegacy FormatVersion = iota
	// FormatTransitional writes collection.anki21 with schema 11.
	FormatTransitional
	// FormatLatest writes a Zstd-compressed collection.anki21b with schema 18.
	FormatLatest
)

const (
	legacyCollection       = "collection.anki2"
	transitionalCollection = "collection.anki21"
	latestCollection       = "collection.anki21b"
	mediaEntry             = "media"

	legacySchemaVersion = 11
	latestSchemaVersion = 18

	fieldSeparator = "\x1f"
)

var formatNames = map[FormatVersion]string{
	FormatLegacy:       "legacy",
	FormatTransitional: "transitional",
	FormatLatest:       "latest",
}

func (f FormatVersion) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FormatVersion(%d)", int(f))
}

// CollectionName is the zip entry holding the collection database.
func (f FormatVersion) CollectionName() string {
	switch f {
	case FormatTransitional:
		return transitionalCollection
	case FormatLatest:
		return latestCollection
	default:
		return legacyCollection
	}
}

// SchemaVersion is the value stored in col.ver.
func (f FormatVersion) SchemaVersion() int {
	if f == FormatLatest {
		return latestSchemaVersion
	}
	return legacySchemaVersion
}

// Compressed reports whether the collection bytes are Zstd-compressed.
func (f FormatVersion) Compressed() bool {
	return f == FormatLatest
}

func ParseFormatVersion(s string) (FormatVersion, error) {
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown format %q: must be one of legacy, transitional, latest", s)
}

type Deck struct {
	ID          int64
	Name        string
	Description string
	ConfID      int64
}

// ModelType distinguishes standard models from cloze models.
type ModelType int

const (
	ModelStandard ModelType = iota
	ModelCloze
)

type Field struct {
	Name string
	Ord  int
}

type Template struct {
	Name string
	Ord  int
	QFmt string
	AFmt string
}

type Model struct {
	ID        int64
	Name      string
	Type      ModelType
	Fields    []Field
	Templates []Template
	CSS       string
}

// Schedule carries the FSRS state of a note that has already been studied.
// A note without a Schedule is exported as new.
type Schedule struct {
	Due        time.Time
	Interval   int
	Stability  float64
	Difficulty float64
	Reps       int
	Lapses     int
}

// ScheduleFromCard converts a studied card into a Schedule. Unstudied cards return nil.
func ScheduleFromCard(card fsrs.FlashCard) *Schedule {
	if card.Phase == fsrs.PhaseAdded {
		return nil
	}
	s := &Schedule{
		Due:        card.DueDate,
		Interval:   card.Interval,
		Stability:  card.Stability,
		Difficulty: card.Difficulty,
		Reps:       card.ReviewCount,
	}
	if card.Phase == fsrs.PhaseReLearning {
		s.Lapses = 1
	}
	return s
}

type Note struct {
	ID       int64
	GUID     string
	ModelID  int64
	Fields   []string
	Tags     []string
	Schedule *Schedule
}

// Card types and queues share values for the states written here.
const (
	CardTypeNew        = 0
	CardTypeLearning   = 1
	CardTypeReview     = 2
	CardTypeRelearning = 3
)

// FSRSState is the per-card memory state stored by schema 18 collections.
type FSRSState struct {
	State      int
	Difficulty float64
	Stability  float64
	Due        int64
}

type Card struct {
	ID       int64
	NoteID   int64
	DeckID   int64
	Ord      int
	Type     int
	Queue    int
	Due      int64
	Interval int
	Factor   int
	Reps     int
	Lapses   int
	FSRS     *FSRSState
}

type MediaFile struct {
	Name string
	Data []byte
}

// Package is the full content of a parsed apkg.
type Package struct {
	Notes      []Note
	Cards      []Card
	Decks      []Deck
	Models     []Model
	MediaFiles []MediaFile
	Version    int
	CreatedAt  time.Time
}

// Info is the lightweight summary returned by GetApkgInfo.
type Info struct {
	NoteCount int
	CardCount int
	DeckCount int
	Version   int
	CreatedAt time.Time
}

// ToFlashCard rebuilds the scheduling state of a studied card under id.
// New cards and cards without FSRS state report false.
func (c Card) ToFlashCard(id string) (fsrs.FlashCard, bool) {
	if c.FSRS == nil {
		return fsrs.FlashCard{}, false
	}
	var phase fsrs.CardPhase
	switch c.Type {
	case CardTypeReview:
		phase = fsrs.PhaseReview
	case CardTypeLearning, CardTypeRelearning:
		phase = fsrs.PhaseReLearning
	default:
		return fsrs.FlashCard{}, false
	}
	card := fsrs.FlashCard{
		ID:          id,
		Stability:   c.FSRS.Stability,
		Difficulty:  c.FSRS.Difficulty,
		Interval:    c.Interval,
		DueDate:     time.UnixMilli(c.FSRS.Due).UTC(),
		ReviewCount: c.Reps,
		Phase:       phase,
	}
	// Collections keep no review time on the card, the last review is one interval before due.
	if c.Interval > 0 {
		card.LastReview = card.DueDate.AddDate(0, 0, -c.Interval)
	}
	return card, true
}
