package anki

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/subdeck/internal/database"
)

var testNow = time.Date(2025, 4, 10, 18, 30, 0, 0, time.UTC)

func newTestCreator(opts ...CreatorOption) *Creator {
	return NewCreator(append([]CreatorOption{WithClock(func() time.Time { return testNow })}, opts...)...)
}

// basicCreator builds a creator with one deck, the basic model and n notes.
func basicCreator(t *testing.T, n int, opts ...CreatorOption) (*Creator, int64, int64) {
	t.Helper()
	c := newTestCreator(opts...)
	deckID := c.AddDeck(Deck{Name: "Subtitles"})
	modelID := c.AddModel(CreateBasicModel())
	for i := 0; i < n; i++ {
		require.NoError(t, c.AddNote(Note{
			ModelID: modelID,
			Fields:  []string{"front " + string(rune('a'+i)), "back " + string(rune('a'+i))},
			Tags:    []string{"subdeck"},
		}, deckID))
	}
	return c, deckID, modelID
}

func readZipEntries(t *testing.T, path string) map[string][]byte {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	entries := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = data
	}
	return entries
}

func entryNames(entries map[string][]byte) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func openCollection(t *testing.T, data []byte) *sqlx.DB {
	t.Helper()
	if isZstd(data) {
		var err error
		data, err = ZstdCodec{}.Decompress(data, defaultMaxDecompressedSize)
		require.NoError(t, err)
	}
	path := filepath.Join(t.TempDir(), "collection.db")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	db, err := database.OpenPath(path, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// assertBasicCollection checks the shape of a collection holding one deck and notes basic notes.
func assertBasicCollection(t *testing.T, db *sqlx.DB, notes, wantVer int) {
	t.Helper()

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM notes`))
	assert.Equal(t, notes, count)
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM cards`))
	assert.Equal(t, notes, count)

	var col colRow
	require.NoError(t, db.Get(&col, `SELECT * FROM col`))
	assert.Equal(t, wantVer, col.Ver)

	var decks map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(col.Decks), &decks))
	assert.Len(t, decks, 1)

	var orphans int
	require.NoError(t, db.Get(&orphans, `SELECT COUNT(*) FROM cards WHERE nid NOT IN (SELECT id FROM notes)`))
	assert.Zero(t, orphans)
}

func TestCreator_AddNote(t *testing.T) {
	c := newTestCreator()
	deckID := c.AddDeck(Deck{Name: "Subtitles"})
	modelID := c.AddModel(CreateBasicModel())

	tests := []struct {
		name    string
		note    Note
		deckID  int64
		wantErr error
	}{
		{
			name:   "valid note",
			note:   Note{ModelID: modelID, Fields: []string{"eager", "begierig"}},
			deckID: deckID,
		},
		{
			name:    "unknown model",
			note:    Note{ModelID: 42, Fields: []string{"eager", "begierig"}},
			deckID:  deckID,
			wantErr: ErrUnknownModel,
		},
		{
			name:    "unknown deck",
			note:    Note{ModelID: modelID, Fields: []string{"eager", "begierig"}},
			deckID:  42,
			wantErr: ErrUnknownDeck,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.AddNote(tt.note, tt.deckID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	t.Run("field count mismatch", func(t *testing.T) {
		assert.Error(t, c.AddNote(Note{ModelID: modelID, Fields: []string{"only one"}}, deckID))
	})
	t.Run("ids and guid are assigned", func(t *testing.T) {
		before := len(c.notes)
		require.NoError(t, c.AddNote(Note{ModelID: modelID, Fields: []string{"a", "b"}}, deckID))
		require.NoError(t, c.AddNote(Note{ModelID: modelID, Fields: []string{"c", "d"}}, deckID))

		first, second := c.notes[before].note, c.notes[before+1].note
		assert.NotZero(t, first.ID)
		assert.Greater(t, second.ID, first.ID)
		assert.Len(t, first.GUID, 10)
		assert.NotEqual(t, first.GUID, second.GUID)
	})
}

func TestCreator_AddMediaFile(t *testing.T) {
	c := newTestCreator()
	assert.Equal(t, 0, c.AddMediaFile("a.mp3", []byte("a")))
	assert.Equal(t, 1, c.AddMediaFile("b.mp3", []byte("b")))
}

func TestCreator_CreateApkg_Basic(t *testing.T) {
	c, _, _ := basicCreator(t, 5)
	path := filepath.Join(t.TempDir(), "deck.apkg")

	require.NoError(t, c.CreateApkg(context.Background(), path, false))

	entries := readZipEntries(t, path)
	assert.Equal(t, []string{"collection.anki2", "media"}, entryNames(entries))
	assert.JSONEq(t, `{}`, string(entries["media"]))

	db := openCollection(t, entries["collection.anki2"])
	assertBasicCollection(t, db, 5, 11)

	var notes []noteRow
	require.NoError(t, db.Select(&notes, `SELECT * FROM notes ORDER BY id`))
	require.Len(t, notes, 5)
	assert.Equal(t, "front a\x1fback a", notes[0].Flds)
	assert.Equal(t, "front a", notes[0].Sfld)
	assert.Equal(t, fieldChecksum("front a"), notes[0].Csum)
	assert.Equal(t, " subdeck ", notes[0].Tags)

	var cards []cardRow
	require.NoError(t, db.Select(&cards, `SELECT id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data FROM cards ORDER BY id`))
	for i, card := range cards {
		assert.Equal(t, CardTypeNew, card.Type)
		assert.Equal(t, CardTypeNew, card.Queue)
		assert.Equal(t, int64(i+1), card.Due)
	}

	var col colRow
	require.NoError(t, db.Get(&col, `SELECT * FROM col`))
	assert.Equal(t, time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC).Unix(), col.Crt)

	var conf map[string]any
	require.NoError(t, json.Unmarshal([]byte(col.Conf), &conf))
	for _, key := range []string{"nextPos", "estTimes", "activeDecks", "sortType", "timeLim", "sortBackwards",
		"addToCur", "curDeck", "newBury", "newSpread", "dueCounts", "curModel", "collapseTime"} {
		assert.Contains(t, conf, key)
	}

	var dconf map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(col.Dconf), &dconf))
	require.Contains(t, dconf, "1")
	assert.Equal(t, 0.9, dconf["1"]["desiredRetention"])
	assert.NotContains(t, dconf["1"], "fsrsWeights")

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	assert.Equal(t, []string{"cards", "col", "graves", "notes", "revlog"}, tables)
}

func TestCreator_CreateApkg_DualFormat(t *testing.T) {
	c, _, _ := basicCreator(t, 5)
	path := filepath.Join(t.TempDir(), "deck.apkg")

	require.NoError(t, c.CreateApkg(context.Background(), path, true))

	entries := readZipEntries(t, path)
	assert.Equal(t, []string{"collection.anki2", "collection.anki21b", "media"}, entryNames(entries))

	assert.False(t, isZstd(entries["collection.anki2"]))
	assertBasicCollection(t, openCollection(t, entries["collection.anki2"]), 5, 11)

	assert.True(t, isZstd(entries["collection.anki21b"]))
	assertBasicCollection(t, openCollection(t, entries["collection.anki21b"]), 5, 18)
}

func TestCreator_CreateApkg_Formats(t *testing.T) {
	tests := []struct {
		format    FormatVersion
		wantEntry string
		wantZstd  bool
		wantVer   int
		wantMedia string
	}{
		{format: FormatLegacy, wantEntry: "collection.anki2", wantVer: 11, wantMedia: `{"0":"eager.mp3","1":"naive.mp3"}`},
		{format: FormatTransitional, wantEntry: "collection.anki21", wantVer: 11, wantMedia: `{"0":"eager.mp3","1":"naive.mp3"}`},
		{format: FormatLatest, wantEntry: "collection.anki21b", wantZstd: true, wantVer: 18, wantMedia: `[{"id":0,"name":"eager.mp3"},{"id":1,"name":"naive.mp3"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			c, _, _ := basicCreator(t, 2)
			c.SetFormatVersion(tt.format)
			c.AddMediaFile("eager.mp3", []byte("eager-audio"))
			c.AddMediaFile("naive.mp3", []byte("naive-audio"))
			path := filepath.Join(t.TempDir(), "deck.apkg")

			require.NoError(t, c.CreateApkg(context.Background(), path, false))

			entries := readZipEntries(t, path)
			assert.Equal(t, []string{"0", "1", tt.wantEntry, "media"}, entryNames(entries))
			assert.Equal(t, tt.wantZstd, isZstd(entries[tt.wantEntry]))
			assert.Equal(t, !tt.wantZstd, isSQLite(entries[tt.wantEntry]))
			assert.JSONEq(t, tt.wantMedia, string(entries["media"]))
			assert.Equal(t, []byte("eager-audio"), entries["0"])

			assertBasicCollection(t, openCollection(t, entries[tt.wantEntry]), 2, tt.wantVer)
		})
	}
}

func TestCreator_CreateApkg_Schedule(t *testing.T) {
	c := newTestCreator(WithDesiredRetention(0.85))
	c.SetFormatVersion(FormatLatest)
	deckID := c.AddDeck(Deck{Name: "Subtitles"})
	modelID := c.AddModel(CreateWordModel())

	due := testNow.Add(3 * 24 * time.Hour)
	require.NoError(t, c.AddNote(Note{
		ModelID: modelID,
		Fields:  []string{"eager", "begierig", "/ˈiːɡər/", "[sound:eager.mp3]"},
		Schedule: &Schedule{
			Due:        due,
			Interval:   3,
			Stability:  3.2,
			Difficulty: 5.1,
			Reps:       2,
		},
	}, deckID))
	require.NoError(t, c.AddNote(Note{
		ModelID: modelID,
		Fields:  []string{"naive", "naiv", "", ""},
	}, deckID))
	path := filepath.Join(t.TempDir(), "deck.apkg")

	require.NoError(t, c.CreateApkg(context.Background(), path, false))

	db := openCollection(t, readZipEntries(t, path)["collection.anki21b"])
	var cards []cardRow
	require.NoError(t, db.Select(&cards, `SELECT * FROM cards ORDER BY id`))
	require.Len(t, cards, 2)

	reviewed := cards[0]
	assert.Equal(t, CardTypeReview, reviewed.Type)
	assert.Equal(t, CardTypeReview, reviewed.Queue)
	assert.Equal(t, 3, reviewed.Ivl)
	assert.Equal(t, int64(3), reviewed.Due)
	assert.Equal(t, 2, reviewed.Reps)
	require.NotNil(t, reviewed.FSRSStability)
	assert.Equal(t, 3.2, *reviewed.FSRSStability)
	assert.Equal(t, 5.1, *reviewed.FSRSDifficulty)
	assert.Equal(t, int64(CardTypeReview), *reviewed.FSRSState)
	assert.Equal(t, due.UnixMilli(), *reviewed.FSRSDue)

	fresh := cards[1]
	assert.Equal(t, CardTypeNew, fresh.Type)
	assert.Equal(t, int64(2), fresh.Due)
	assert.Equal(t, int64(CardTypeNew), *fresh.FSRSState)

	var retention float64
	require.NoError(t, db.Get(&retention, `SELECT desiredRetention FROM fsrsParams WHERE id = 1`))
	assert.Equal(t, 0.85, retention)

	var weights string
	require.NoError(t, db.Get(&weights, `SELECT weights FROM fsrsWeights WHERE id = 1`))
	var w []float64
	require.NoError(t, json.Unmarshal([]byte(weights), &w))
	assert.Len(t, w, 21)
}

func TestCreator_CreateApkg_OutputError(t *testing.T) {
	c, _, _ := basicCreator(t, 1)
	path := filepath.Join(t.TempDir(), "missing", "deck.apkg")

	err := c.CreateApkg(context.Background(), path, false)
	assert.ErrorContains(t, err, "os.CreateTemp()")
}

type failingCodec struct{}

func (failingCodec) Compress([]byte) ([]byte, error) {
	return nil, errors.New("compress failed")
}

func (failingCodec) Decompress([]byte, int64) ([]byte, error) {
	return nil, errors.New("decompress failed")
}

func TestCreator_CreateApkg_LeavesNoPartialFile(t *testing.T) {
	tests := []struct {
		name     string
		existing []byte
	}{
		{name: "new file"},
		{name: "existing file is kept", existing: []byte("previous export")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "deck.apkg")
			if tt.existing != nil {
				require.NoError(t, os.WriteFile(path, tt.existing, 0o644))
			}

			c := newTestCreator(WithCodec(failingCodec{}))
			c.SetFormatVersion(FormatLatest)
			deckID := c.AddDeck(Deck{Name: "Subtitles"})
			modelID := c.AddModel(CreateBasicModel())
			require.NoError(t, c.AddNote(Note{ModelID: modelID, Fields: []string{"q", "a"}}, deckID))

			err := c.CreateApkg(context.Background(), path, false)
			assert.ErrorContains(t, err, "compress failed")

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			if tt.existing == nil {
				assert.Empty(t, entries)
				return
			}
			require.Len(t, entries, 1)
			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.existing, got)
		})
	}
}
