package learning

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/subdeck/internal/fsrs"
	"github.com/at-ishikawa/subdeck/schemas"
)

//go:generate mockgen -source=repository.go -destination=../mocks/learning/mock_repository.go -package=mock_learning

// CardRepository stores flashcards and finished review sessions.
type CardRepository interface {
	FindAll(ctx context.Context) ([]fsrs.FlashCard, error)
	FindByID(ctx context.Context, id string) (*fsrs.FlashCard, error)
	Save(ctx context.Context, card fsrs.FlashCard) error
	SaveSession(ctx context.Context, summary SessionSummary) error
	FindRecentSessions(ctx context.Context, limit int) ([]SessionSummary, error)
}

// DBCardRepository implements CardRepository using SQLite.
type DBCardRepository struct {
	db *sqlx.DB
}

// NewDBCardRepository creates a new DBCardRepository.
func NewDBCardRepository(db *sqlx.DB) *DBCardRepository {
	return &DBCardRepository{db: db}
}

// Migrate applies the embedded migrations in file name order.
// Every migration is idempotent.
func (r *DBCardRepository) Migrate(ctx context.Context) error {
	entries, err := fs.ReadDir(schemas.Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("fs.ReadDir(migrations) > %w", err)
	}
	for _, entry := range entries {
		content, err := fs.ReadFile(schemas.Migrations, "migrations/"+entry.Name())
		if err != nil {
			return fmt.Errorf("fs.ReadFile(%s) > %w", entry.Name(), err)
		}
		if _, err := r.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("db.ExecContext(%s) > %w", entry.Name(), err)
		}
	}
	return nil
}

// FindAll returns every stored card.
func (r *DBCardRepository) FindAll(ctx context.Context) ([]fsrs.FlashCard, error) {
	var records []cardRecord
	if err := r.db.SelectContext(ctx, &records, "SELECT * FROM flashcards ORDER BY id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(flashcards) > %w", err)
	}
	cards := make([]fsrs.FlashCard, 0, len(records))
	for _, record := range records {
		cards = append(cards, record.toFlashCard())
	}
	return cards, nil
}

// FindByID returns the card with the given ID, or nil if not found.
func (r *DBCardRepository) FindByID(ctx context.Context, id string) (*fsrs.FlashCard, error) {
	var record cardRecord
	err := r.db.GetContext(ctx, &record, "SELECT * FROM flashcards WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(flashcard) > %w", err)
	}
	card := record.toFlashCard()
	return &card, nil
}

// Save inserts the card or replaces its scheduling state.
func (r *DBCardRepository) Save(ctx context.Context, card fsrs.FlashCard) error {
	record := newCardRecord(card)
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO flashcards (id, stability, difficulty, interval_days, due_at, review_count, last_review_at, phase)
		VALUES (:id, :stability, :difficulty, :interval_days, :due_at, :review_count, :last_review_at, :phase)
		ON CONFLICT(id) DO UPDATE SET
			stability = excluded.stability,
			difficulty = excluded.difficulty,
			interval_days = excluded.interval_days,
			due_at = excluded.due_at,
			review_count = excluded.review_count,
			last_review_at = excluded.last_review_at,
			phase = excluded.phase`,
		record)
	if err != nil {
		return fmt.Errorf("db.NamedExecContext(upsert flashcard) > %w", err)
	}
	return nil
}

// SaveSession stores a finished session.
func (r *DBCardRepository) SaveSession(ctx context.Context, summary SessionSummary) error {
	record := newSessionRecord(summary)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO review_sessions (id, started_at, finished_at, total_cards, completed_count, correct_count, accuracy)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.StartedAt, record.FinishedAt, record.TotalCards,
		record.CompletedCount, record.CorrectCount, record.Accuracy)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert review_session) > %w", err)
	}
	return nil
}

// FindRecentSessions returns up to limit sessions, newest first.
func (r *DBCardRepository) FindRecentSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	var records []sessionRecord
	if err := r.db.SelectContext(ctx, &records,
		"SELECT * FROM review_sessions ORDER BY started_at DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("db.SelectContext(review_sessions) > %w", err)
	}
	summaries := make([]SessionSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, record.toSummary())
	}
	return summaries, nil
}
