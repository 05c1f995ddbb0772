package learning

import (
	"time"

	"github.com/at-ishikawa/subdeck/internal/fsrs"
)

// cardRecord is the row layout of the flashcards table. Timestamps are stored
// as unix milliseconds, zero meaning unset.
type cardRecord struct {
	ID           string  `db:"id"`
	Stability    float64 `db:"stability"`
	Difficulty   float64 `db:"difficulty"`
	IntervalDays int     `db:"interval_days"`
	DueAt        int64   `db:"due_at"`
	ReviewCount  int     `db:"review_count"`
	LastReviewAt int64   `db:"last_review_at"`
	Phase        int     `db:"phase"`
}

// sessionRecord is the row layout of the review_sessions table.
type sessionRecord struct {
	ID             string  `db:"id"`
	StartedAt      int64   `db:"started_at"`
	FinishedAt     int64   `db:"finished_at"`
	TotalCards     int     `db:"total_cards"`
	CompletedCount int     `db:"completed_count"`
	CorrectCount   int     `db:"correct_count"`
	Accuracy       float64 `db:"accuracy"`
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func newCardRecord(card fsrs.FlashCard) cardRecord {
	return cardRecord{
		ID:           card.ID,
		Stability:    card.Stability,
		Difficulty:   card.Difficulty,
		IntervalDays: card.Interval,
		DueAt:        toMillis(card.DueDate),
		ReviewCount:  card.ReviewCount,
		LastReviewAt: toMillis(card.LastReview),
		Phase:        int(card.Phase),
	}
}

func (r cardRecord) toFlashCard() fsrs.FlashCard {
	return fsrs.FlashCard{
		ID:          r.ID,
		Stability:   r.Stability,
		Difficulty:  r.Difficulty,
		Interval:    r.IntervalDays,
		DueDate:     fromMillis(r.DueAt),
		ReviewCount: r.ReviewCount,
		LastReview:  fromMillis(r.LastReviewAt),
		Phase:       fsrs.CardPhase(r.Phase),
	}
}

func newSessionRecord(s SessionSummary) sessionRecord {
	return sessionRecord{
		ID:             s.ID,
		StartedAt:      toMillis(s.StartedAt),
		FinishedAt:     toMillis(s.FinishedAt),
		TotalCards:     s.TotalCards,
		CompletedCount: s.CompletedCount,
		CorrectCount:   s.CorrectCount,
		Accuracy:       s.Accuracy,
	}
}

func (r sessionRecord) toSummary() SessionSummary {
	return SessionSummary{
		ID:             r.ID,
		StartedAt:      fromMillis(r.StartedAt),
		FinishedAt:     fromMillis(r.FinishedAt),
		TotalCards:     r.TotalCards,
		CompletedCount: r.CompletedCount,
		CorrectCount:   r.CorrectCount,
		Accuracy:       r.Accuracy,
	}
}
