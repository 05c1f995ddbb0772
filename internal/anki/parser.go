package anki

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/subdeck/internal/database"
)

const defaultMaxDecompressedSize int64 = 1 << 30

// collectionPreference lists collection entries from newest to oldest.
var collectionPreference = []string{latestCollection, transitionalCollection, legacyCollection}

// Parser reads apkg files. It holds no per-file state and may be shared.
type Parser struct {
	codec   Codec
	maxSize int64
	tempDir string
	logger  *slog.Logger
}

type ParserOption func(*Parser)

func WithParserCodec(codec Codec) ParserOption {
	return func(p *Parser) { p.codec = codec }
}

// WithMaxDecompressedSize bounds the size of a collection after decompression.
func WithMaxDecompressedSize(size int64) ParserOption {
	return func(p *Parser) { p.maxSize = size }
}

// WithTempDir sets where extracted collections are written.
func WithTempDir(dir string) ParserOption {
	return func(p *Parser) { p.tempDir = dir }
}

func WithParserLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) { p.logger = logger }
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		codec:   ZstdCodec{},
		maxSize: defaultMaxDecompressedSize,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsValidApkg reports whether path is a zip holding a collection that is an
// SQLite database once decompressed.
func (p *Parser) IsValidApkg(path string) bool {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	defer zr.Close()

	_, _, err = p.readCollection(&zr.Reader)
	return err == nil
}

func (p *Parser) GetApkgInfo(ctx context.Context, path string) (Info, error) {
	var info Info
	err := p.withCollection(ctx, path, func(zr *zip.Reader, db *sqlx.DB) error {
		col, err := readCol(ctx, db)
		if err != nil {
			return err
		}
		var decks map[string]json.RawMessage
		if err := json.Unmarshal([]byte(col.Decks), &decks); err != nil {
			return fmt.Errorf("%w: decode decks > %w", ErrInvalidApkg, err)
		}

		if err := db.GetContext(ctx, &info.NoteCount, `SELECT COUNT(*) FROM notes`); err != nil {
			return fmt.Errorf("%w: count notes > %w", ErrInvalidApkg, err)
		}
		if err := db.GetContext(ctx, &info.CardCount, `SELECT COUNT(*) FROM cards`); err != nil {
			return fmt.Errorf("%w: count cards > %w", ErrInvalidApkg, err)
		}
		info.DeckCount = len(decks)
		info.Version = col.Ver
		info.CreatedAt = time.Unix(col.Crt, 0).UTC()
		return nil
	})
	if err != nil {
		return Info{}, err
	}
	return info, nil
}

// ParseApkg reads every note, card, deck, model and media file of path and
// checks that all references between them resolve.
func (p *Parser) ParseApkg(ctx context.Context, path string) (*Package, error) {
	var pkg *Package
	err := p.withCollection(ctx, path, func(zr *zip.Reader, db *sqlx.DB) error {
		var err error
		pkg, err = readPackage(ctx, db)
		if err != nil {
			return err
		}
		pkg.MediaFiles, err = p.readMedia(zr)
		if err != nil {
			return err
		}
		return validateReferences(pkg)
	})
	if err != nil {
		return nil, err
	}

	p.logger.Debug("apkg parsed",
		"path", path,
		"version", pkg.Version,
		"notes", len(pkg.Notes),
		"cards", len(pkg.Cards),
		"media", len(pkg.MediaFiles))
	return pkg, nil
}

// withCollection extracts the collection to a temporary file, opens it and
// calls fn. The file is removed and the connection closed before returning.
func (p *Parser) withCollection(ctx context.Context, path string, fn func(*zip.Reader, *sqlx.DB) error) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: zip.OpenReader() > %w", ErrInvalidApkg, err)
	}
	defer zr.Close()

	name, data, err := p.readCollection(&zr.Reader)
	if err != nil {
		return err
	}
	p.logger.Debug("collection found", "path", path, "entry", name, "size", len(data))

	tmp, err := os.CreateTemp(p.tempDir, "subdeck-parse-*.anki2")
	if err != nil {
		return fmt.Errorf("os.CreateTemp() > %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("os.File.Write() > %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("os.File.Close() > %w", err)
	}

	db, err := database.OpenPath(tmpPath, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidApkg, err)
	}
	defer db.Close()

	return fn(&zr.Reader, db)
}

// readCollection returns the preferred collection entry, decompressed if it
// carries the Zstd magic.
func (p *Parser) readCollection(zr *zip.Reader) (string, []byte, error) {
	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	for _, name := range collectionPreference {
		f, ok := entries[name]
		if !ok {
			continue
		}
		data, err := p.readEntry(f)
		if err != nil {
			return "", nil, err
		}
		if isZstd(data) {
			data, err = p.codec.Decompress(data, p.maxSize)
			if err != nil {
				return "", nil, fmt.Errorf("%w: decompress %s > %w", ErrInvalidApkg, name, err)
			}
		}
		if !isSQLite(data) {
			return "", nil, fmt.Errorf("%w: %s is not an SQLite database", ErrInvalidApkg, name)
		}
		return name, data, nil
	}
	return "", nil, fmt.Errorf("%w: no collection entry", ErrInvalidApkg)
}

func (p *Parser) readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s > %w", ErrInvalidApkg, f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, p.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s > %w", ErrInvalidApkg, f.Name, err)
	}
	if int64(len(data)) > p.maxSize {
		return nil, fmt.Errorf("%w: %s > %w", ErrInvalidApkg, f.Name, ErrDecompressedSize)
	}
	return data, nil
}

func (p *Parser) readMedia(zr *zip.Reader) ([]MediaFile, error) {
	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	files := []MediaFile{}
	index, ok := entries[mediaEntry]
	if !ok {
		return files, nil
	}
	raw, err := p.readEntry(index)
	if err != nil {
		return nil, err
	}
	tickets, err := decodeMediaIndex(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: media index > %w", ErrInvalidApkg, err)
	}

	for _, t := range tickets {
		f, ok := entries[strconv.Itoa(t.ID)]
		if !ok {
			return nil, fmt.Errorf("%w: media %q has no entry %d", ErrBrokenReference, t.Name, t.ID)
		}
		data, err := p.readEntry(f)
		if err != nil {
			return nil, err
		}
		files = append(files, MediaFile{Name: t.Name, Data: data})
	}
	return files, nil
}

func readCol(ctx context.Context, db *sqlx.DB) (colRow, error) {
	var col colRow
	if err := db.GetContext(ctx, &col, `SELECT id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags FROM col LIMIT 1`); err != nil {
		return colRow{}, fmt.Errorf("%w: read col > %w", ErrInvalidApkg, err)
	}
	return col, nil
}

func readPackage(ctx context.Context, db *sqlx.DB) (*Package, error) {
	col, err := readCol(ctx, db)
	if err != nil {
		return nil, err
	}
	pkg := &Package{
		Notes:     []Note{},
		Cards:     []Card{},
		Decks:     []Deck{},
		Models:    []Model{},
		Version:   col.Ver,
		CreatedAt: time.Unix(col.Crt, 0).UTC(),
	}

	var decks map[string]deckJSON
	if err := json.Unmarshal([]byte(col.Decks), &decks); err != nil {
		return nil, fmt.Errorf("%w: decode decks > %w", ErrInvalidApkg, err)
	}
	for _, d := range decks {
		pkg.Decks = append(pkg.Decks, d.deck())
	}
	sort.Slice(pkg.Decks, func(i, j int) bool { return pkg.Decks[i].ID < pkg.Decks[j].ID })

	var models map[string]modelJSON
	if err := json.Unmarshal([]byte(col.Models), &models); err != nil {
		return nil, fmt.Errorf("%w: decode models > %w", ErrInvalidApkg, err)
	}
	for _, m := range models {
		pkg.Models = append(pkg.Models, m.model())
	}
	sort.Slice(pkg.Models, func(i, j int) bool { return pkg.Models[i].ID < pkg.Models[j].ID })

	var notes []noteRow
	if err := db.SelectContext(ctx, &notes, `SELECT id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data FROM notes ORDER BY id`); err != nil {
		return nil, fmt.Errorf("%w: read notes > %w", ErrInvalidApkg, err)
	}
	for _, n := range notes {
		pkg.Notes = append(pkg.Notes, Note{
			ID:      n.ID,
			GUID:    n.GUID,
			ModelID: n.Mid,
			Fields:  strings.Split(n.Flds, fieldSeparator),
			Tags:    strings.Fields(n.Tags),
		})
	}

	hasFSRS, err := hasFSRSColumns(ctx, db)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data FROM cards ORDER BY id`
	if hasFSRS {
		query = `SELECT id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data,
    fsrsState, fsrsDifficulty, fsrsStability, fsrsDue FROM cards ORDER BY id`
	}
	var cards []cardRow
	if err := db.SelectContext(ctx, &cards, query); err != nil {
		return nil, fmt.Errorf("%w: read cards > %w", ErrInvalidApkg, err)
	}
	for _, c := range cards {
		pkg.Cards = append(pkg.Cards, c.card())
	}
	return pkg, nil
}

func hasFSRSColumns(ctx context.Context, db *sqlx.DB) (bool, error) {
	var columns []string
	if err := db.SelectContext(ctx, &columns, `SELECT name FROM pragma_table_info('cards')`); err != nil {
		return false, fmt.Errorf("%w: inspect cards > %w", ErrInvalidApkg, err)
	}
	for _, c := range columns {
		if c == "fsrsState" {
			return true, nil
		}
	}
	return false, nil
}

func (r cardRow) card() Card {
	card := Card{
		ID:       r.ID,
		NoteID:   r.Nid,
		DeckID:   r.Did,
		Ord:      r.Ord,
		Type:     r.Type,
		Queue:    r.Queue,
		Due:      r.Due,
		Interval: r.Ivl,
		Factor:   r.Factor,
		Reps:     r.Reps,
		Lapses:   r.Lapses,
	}
	if r.FSRSState != nil {
		card.FSRS = &FSRSState{State: int(*r.FSRSState)}
		if r.FSRSDifficulty != nil {
			card.FSRS.Difficulty = *r.FSRSDifficulty
		}
		if r.FSRSStability != nil {
			card.FSRS.Stability = *r.FSRSStability
		}
		if r.FSRSDue != nil {
			card.FSRS.Due = *r.FSRSDue
		}
	}
	return card
}

func validateReferences(pkg *Package) error {
	var errs []error

	models := make(map[int64]bool, len(pkg.Models))
	for _, m := range pkg.Models {
		models[m.ID] = true
	}
	decks := make(map[int64]bool, len(pkg.Decks))
	for _, d := range pkg.Decks {
		decks[d.ID] = true
	}
	notes := make(map[int64]bool, len(pkg.Notes))
	for _, n := range pkg.Notes {
		notes[n.ID] = true
		if !models[n.ModelID] {
			errs = append(errs, fmt.Errorf("note %d references missing model %d", n.ID, n.ModelID))
		}
	}
	for _, c := range pkg.Cards {
		if !notes[c.NoteID] {
			errs = append(errs, fmt.Errorf("card %d references missing note %d", c.ID, c.NoteID))
		}
		if !decks[c.DeckID] {
			errs = append(errs, fmt.Errorf("card %d references missing deck %d", c.ID, c.DeckID))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrBrokenReference, errors.Join(errs...))
	}
	return nil
}
