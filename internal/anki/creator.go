package anki

import (
	"archive/zip"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/subdeck/internal/database"
	"github.com/at-ishikawa/subdeck/internal/fsrs"
)

const (
	defaultDesiredRetention = 0.9
	reviewFactor            = 2500
)

type pendingNote struct {
	note   Note
	deckID int64
}

// Creator accumulates decks, models, notes and media for a single apkg.
// It is not safe for concurrent use.
type Creator struct {
	now       func() time.Time
	codec     Codec
	retention float64
	weights   []float64
	logger    *slog.Logger
	format    FormatVersion

	decks  []Deck
	models []Model
	notes  []pendingNote
	media  []MediaFile
	lastID int64
}

type CreatorOption func(*Creator)

func WithClock(now func() time.Time) CreatorOption {
	return func(c *Creator) { c.now = now }
}

func WithCodec(codec Codec) CreatorOption {
	return func(c *Creator) { c.codec = codec }
}

// WithDesiredRetention sets the retention written to the deck options.
func WithDesiredRetention(retention float64) CreatorOption {
	return func(c *Creator) { c.retention = retention }
}

// WithFSRSWeights sets the weights written to schema 18 collections.
func WithFSRSWeights(weights []float64) CreatorOption {
	return func(c *Creator) { c.weights = append([]float64(nil), weights...) }
}

func WithLogger(logger *slog.Logger) CreatorOption {
	return func(c *Creator) { c.logger = logger }
}

func NewCreator(opts ...CreatorOption) *Creator {
	c := &Creator{
		now:       time.Now,
		codec:     ZstdCodec{},
		retention: defaultDesiredRetention,
		weights:   append([]float64(nil), fsrs.DefaultParams...),
		logger:    slog.Default(),
		format:    FormatLegacy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Creator) SetFormatVersion(format FormatVersion) {
	c.format = format
}

func (c *Creator) FormatVersion() FormatVersion {
	return c.format
}

// nextID returns millisecond-based IDs that never repeat within the creator.
func (c *Creator) nextID() int64 {
	id := c.now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}

// AddDeck registers deck and returns its ID, assigning one when it is zero.
func (c *Creator) AddDeck(deck Deck) int64 {
	if deck.ID == 0 {
		deck.ID = c.nextID()
	}
	c.decks = append(c.decks, deck)
	return deck.ID
}

// AddModel registers model and returns its ID, assigning one when it is zero.
func (c *Creator) AddModel(model Model) int64 {
	if model.ID == 0 {
		model.ID = c.nextID()
	}
	c.models = append(c.models, model)
	return model.ID
}

// AddNote queues note for deckID. One card per model template is generated on export.
func (c *Creator) AddNote(note Note, deckID int64) error {
	model, ok := c.model(note.ModelID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownModel, note.ModelID)
	}
	if _, ok := c.deck(deckID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownDeck, deckID)
	}
	if len(note.Fields) != len(model.Fields) {
		return fmt.Errorf("note has %d fields but model %q has %d", len(note.Fields), model.Name, len(model.Fields))
	}

	if note.ID == 0 {
		note.ID = c.nextID()
	}
	if note.GUID == "" {
		note.GUID = newGUID()
	}
	note.Fields = append([]string(nil), note.Fields...)
	note.Tags = append([]string(nil), note.Tags...)
	c.notes = append(c.notes, pendingNote{note: note, deckID: deckID})
	return nil
}

// AddMediaFile stores data under name and returns its ticket number.
func (c *Creator) AddMediaFile(name string, data []byte) int {
	c.media = append(c.media, MediaFile{Name: name, Data: data})
	return len(c.media) - 1
}

func (c *Creator) model(id int64) (Model, bool) {
	for _, m := range c.models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

func (c *Creator) deck(id int64) (Deck, bool) {
	for _, d := range c.decks {
		if d.ID == id {
			return d, true
		}
	}
	return Deck{}, false
}

// CreateApkg writes the package to path. With dualFormat the archive carries
// both a legacy collection.anki2 and a compressed collection.anki21b.
func (c *Creator) CreateApkg(ctx context.Context, path string, dualFormat bool) error {
	formats := []FormatVersion{c.format}
	mediaFormat := c.format
	if dualFormat {
		formats = []FormatVersion{FormatLegacy, FormatLatest}
		mediaFormat = FormatLegacy
	}

	now := c.now()
	cards := c.cards(now)

	// The archive is staged next to path so a failed export never leaves a partial file behind.
	f, err := os.CreateTemp(filepath.Dir(path), ".subdeck-*.apkg")
	if err != nil {
		return fmt.Errorf("os.CreateTemp() > %w", err)
	}
	tmpPath := f.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()
	if err := f.Chmod(0o644); err != nil {
		_ = f.Close()
		return fmt.Errorf("os.File.Chmod() > %w", err)
	}
	zw := zip.NewWriter(f)

	if err := c.writeArchive(ctx, zw, formats, mediaFormat, cards, now); err != nil {
		_ = zw.Close()
		_ = f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("zip.Writer.Close() > %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("os.File.Close() > %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("os.Rename() > %w", err)
	}
	committed = true

	c.logger.Info("apkg created",
		"path", path,
		"formats", formats,
		"decks", len(c.decks),
		"models", len(c.models),
		"notes", len(c.notes),
		"cards", len(cards),
		"media", len(c.media))
	return nil
}

func (c *Creator) writeArchive(ctx context.Context, zw *zip.Writer, formats []FormatVersion, mediaFormat FormatVersion, cards []cardRow, now time.Time) error {
	for _, format := range formats {
		data, err := c.buildCollection(ctx, format, cards, now)
		if err != nil {
			return err
		}
		if err := writeZipEntry(zw, format.CollectionName(), data); err != nil {
			return err
		}
	}

	index, err := encodeMediaIndex(c.media, mediaFormat)
	if err != nil {
		return err
	}
	if err := writeZipEntry(zw, mediaEntry, index); err != nil {
		return err
	}
	for i, m := range c.media {
		if err := writeZipEntry(zw, strconv.Itoa(i), m.Data); err != nil {
			return err
		}
	}
	return nil
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("zip.Writer.CreateHeader(%s) > %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s > %w", name, err)
	}
	return nil
}

// buildCollection writes the collection to a temporary SQLite file and returns its bytes,
// compressed when the format requires it.
func (c *Creator) buildCollection(ctx context.Context, format FormatVersion, cards []cardRow, now time.Time) ([]byte, error) {
	tmp, err := os.CreateTemp("", "subdeck-*.anki2")
	if err != nil {
		return nil, fmt.Errorf("os.CreateTemp() > %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("os.File.Close() > %w", err)
	}

	db, err := database.OpenPath(tmpPath, 0)
	if err != nil {
		return nil, err
	}
	if err := c.populate(ctx, db, format, cards, now); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("db.Close() > %w", err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile() > %w", err)
	}
	if !format.Compressed() {
		return data, nil
	}
	compressed, err := c.codec.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("anki.Codec.Compress() > %w", err)
	}
	return compressed, nil
}

func (c *Creator) populate(ctx context.Context, db *sqlx.DB, format FormatVersion, cards []cardRow, now time.Time) error {
	if _, err := db.ExecContext(ctx, baseSchema); err != nil {
		return fmt.Errorf("create schema > %w", err)
	}
	latest := format == FormatLatest
	if latest {
		if _, err := db.ExecContext(ctx, latestSchema); err != nil {
			return fmt.Errorf("create schema 18 tables > %w", err)
		}
	}

	col, err := c.colRow(format, now)
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, insertCol, col); err != nil {
		return fmt.Errorf("insert col > %w", err)
	}

	noteStmt, err := tx.PrepareNamedContext(ctx, insertNote)
	if err != nil {
		return fmt.Errorf("prepare notes > %w", err)
	}
	defer noteStmt.Close()
	mod := now.Unix()
	for _, n := range c.notes {
		if _, err := noteStmt.ExecContext(ctx, newNoteRow(n.note, mod)); err != nil {
			return fmt.Errorf("insert note %d > %w", n.note.ID, err)
		}
	}

	query := insertCard
	if latest {
		query = insertLatestCard
	}
	cardStmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare cards > %w", err)
	}
	defer cardStmt.Close()
	for _, card := range cards {
		if _, err := cardStmt.ExecContext(ctx, card); err != nil {
			return fmt.Errorf("insert card %d > %w", card.ID, err)
		}
	}

	if latest {
		if err := c.insertLatestMeta(ctx, tx, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}

func (c *Creator) insertLatestMeta(ctx context.Context, tx *sqlx.Tx, now time.Time) error {
	weights, err := marshalJSON(c.weights)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO mediaMeta (dirMod, lastUsn) VALUES (?, ?)`, now.UnixMilli(), 0); err != nil {
		return fmt.Errorf("insert mediaMeta > %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO fsrsWeights (id, weights) VALUES (?, ?)`, defaultConfID, weights); err != nil {
		return fmt.Errorf("insert fsrsWeights > %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO fsrsParams (id, desiredRetention, maximumInterval) VALUES (?, ?, ?)`,
		defaultConfID, c.retention, fsrs.MaxInterval); err != nil {
		return fmt.Errorf("insert fsrsParams > %w", err)
	}
	return nil
}

// creationDay is the start of the UTC day the collection is created on.
func creationDay(now time.Time) time.Time {
	return now.UTC().Truncate(24 * time.Hour)
}

func (c *Creator) colRow(format FormatVersion, now time.Time) (colRow, error) {
	mod := now.Unix()

	var firstDeck int64 = 1
	if len(c.decks) > 0 {
		firstDeck = c.decks[0].ID
	}
	curModel := ""
	if len(c.models) > 0 {
		curModel = strconv.FormatInt(c.models[0].ID, 10)
	}

	conf, err := marshalJSON(colConf{
		NextPos:      len(c.notes) + 1,
		EstTimes:     true,
		ActiveDecks:  []int64{firstDeck},
		SortType:     "noteFld",
		AddToCur:     true,
		CurDeck:      firstDeck,
		NewBury:      true,
		DueCounts:    true,
		CurModel:     curModel,
		CollapseTime: 1200,
	})
	if err != nil {
		return colRow{}, err
	}

	decks := make([]deckJSON, 0, len(c.decks))
	for _, d := range c.decks {
		decks = append(decks, newDeckJSON(d, mod))
	}
	decksJSON, err := marshalByID(decks, func(d deckJSON) int64 { return d.ID })
	if err != nil {
		return colRow{}, err
	}

	models := make([]modelJSON, 0, len(c.models))
	for _, m := range c.models {
		models = append(models, newModelJSON(m, firstDeck, mod))
	}
	modelsJSON, err := marshalByID(models, func(m modelJSON) int64 { return m.ID })
	if err != nil {
		return colRow{}, err
	}

	var weights []float64
	if format == FormatLatest {
		weights = c.weights
	}
	dconf := newDconfJSON(mod, c.retention, weights)
	dconfJSON, err := marshalByID([]dconfJSON{dconf}, func(d dconfJSON) int64 { return d.ID })
	if err != nil {
		return colRow{}, err
	}

	return colRow{
		ID:     1,
		Crt:    creationDay(now).Unix(),
		Mod:    now.UnixMilli(),
		Scm:    now.UnixMilli(),
		Ver:    format.SchemaVersion(),
		Usn:    0,
		Ls:     0,
		Conf:   conf,
		Models: modelsJSON,
		Decks:  decksJSON,
		Dconf:  dconfJSON,
		Tags:   "{}",
	}, nil
}

func newNoteRow(n Note, mod int64) noteRow {
	var first string
	if len(n.Fields) > 0 {
		first = n.Fields[0]
	}
	tags := ""
	if len(n.Tags) > 0 {
		tags = " " + strings.Join(n.Tags, " ") + " "
	}
	return noteRow{
		ID:   n.ID,
		GUID: n.GUID,
		Mid:  n.ModelID,
		Mod:  mod,
		Usn:  -1,
		Tags: tags,
		Flds: strings.Join(n.Fields, fieldSeparator),
		Sfld: first,
		Csum: fieldChecksum(first),
	}
}

// cards derives one card per template for every queued note. Card IDs are
// assigned once so every collection in a dual-format archive agrees.
func (c *Creator) cards(now time.Time) []cardRow {
	crt := creationDay(now)
	mod := now.Unix()

	var rows []cardRow
	for pos, n := range c.notes {
		model, _ := c.model(n.note.ModelID)
		for _, tmpl := range model.Templates {
			row := cardRow{
				ID:  c.nextID(),
				Nid: n.note.ID,
				Did: n.deckID,
				Ord: tmpl.Ord,
				Mod: mod,
				Usn: -1,
			}
			applySchedule(&row, n.note.Schedule, pos+1, crt, now)
			rows = append(rows, row)
		}
	}
	return rows
}

func applySchedule(row *cardRow, s *Schedule, position int, crt, now time.Time) {
	if s == nil {
		row.Type = CardTypeNew
		row.Queue = CardTypeNew
		row.Due = int64(position)
		row.FSRSState = ptr(int64(CardTypeNew))
		row.FSRSDifficulty = ptr(fsrs.DefaultDifficulty)
		row.FSRSStability = ptr(fsrs.DefaultStability)
		row.FSRSDue = ptr(now.UnixMilli())
		return
	}

	row.Reps = s.Reps
	row.Lapses = s.Lapses
	row.Ivl = s.Interval
	row.Factor = reviewFactor
	if s.Interval == 0 {
		// Sub-day relearning steps are due by timestamp.
		row.Type = CardTypeRelearning
		row.Queue = CardTypeLearning
		row.Due = s.Due.Unix()
	} else {
		row.Type = CardTypeReview
		row.Queue = CardTypeReview
		row.Due = int64(math.Floor(s.Due.Sub(crt).Hours() / 24))
	}
	row.FSRSState = ptr(int64(row.Type))
	row.FSRSDifficulty = ptr(s.Difficulty)
	row.FSRSStability = ptr(s.Stability)
	row.FSRSDue = ptr(s.Due.UnixMilli())
}

func ptr[T any](v T) *T {
	return &v
}
