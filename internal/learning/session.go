package learning

import (
	"errors"
	"sort"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/at-ishikawa/subdeck/internal/fsrs"
)

var ErrSessionCompleted = errors.New("learning: session has no cards left")

// Session is a bounded, ordered run through due and new cards.
// Values are treated as immutable; ProcessCardReview returns an updated copy.
type Session struct {
	ID             string
	StartedAt      time.Time
	Queue          []fsrs.FlashCard
	Cursor         int
	CompletedCount int
	CorrectCount   int
	Accuracy       float64
	Completed      bool
}

// SessionSummary is what is kept of a session once it is over.
type SessionSummary struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	TotalCards     int
	CompletedCount int
	CorrectCount   int
	Accuracy       float64
}

// Duration is how long the session ran.
func (s SessionSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// CurrentCard returns the card waiting to be reviewed.
func (s Session) CurrentCard() (fsrs.FlashCard, bool) {
	if s.Completed || s.Cursor >= len(s.Queue) {
		return fsrs.FlashCard{}, false
	}
	return s.Queue[s.Cursor], true
}

// Remaining is the number of cards not reviewed yet.
func (s Session) Remaining() int {
	return max(len(s.Queue)-s.Cursor, 0)
}

// Progress is the completed fraction of the queue; an empty session is fully done.
func (s Session) Progress() float64 {
	if len(s.Queue) == 0 {
		return 1
	}
	return float64(s.CompletedCount) / float64(len(s.Queue))
}

// Summary condenses the session for storage.
func (s Session) Summary(finishedAt time.Time) SessionSummary {
	return SessionSummary{
		ID:             s.ID,
		StartedAt:      s.StartedAt,
		FinishedAt:     finishedAt,
		TotalCards:     len(s.Queue),
		CompletedCount: s.CompletedCount,
		CorrectCount:   s.CorrectCount,
		Accuracy:       s.Accuracy,
	}
}

// LearningSessionManager builds sessions and applies grades within them.
type LearningSessionManager struct {
	service *FSRSService
}

func NewLearningSessionManager(service *FSRSService) *LearningSessionManager {
	return &LearningSessionManager{service: service}
}

// Service returns the underlying FSRSService.
func (m *LearningSessionManager) Service() *FSRSService {
	return m.service
}

// StartSession queues at most maxReviewCards due cards, most overdue first,
// followed by at most maxNewCards unreviewed cards in their given order.
func (m *LearningSessionManager) StartSession(cards []fsrs.FlashCard, maxNewCards, maxReviewCards int) Session {
	now := m.service.now()

	var due, fresh []fsrs.FlashCard
	for _, card := range cards {
		switch {
		case card.Phase == fsrs.PhaseAdded:
			if len(fresh) < maxNewCards {
				fresh = append(fresh, card)
			}
		case card.IsDue(now):
			due = append(due, card)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DueDate.Before(due[j].DueDate)
	})
	if len(due) > maxReviewCards {
		due = due[:max(maxReviewCards, 0)]
	}

	queue := make([]fsrs.FlashCard, 0, len(due)+len(fresh))
	queue = append(queue, due...)
	queue = append(queue, fresh...)

	session := Session{
		ID:        gonanoid.Must(),
		StartedAt: now,
		Queue:     queue,
		Completed: len(queue) == 0,
	}
	m.service.logger.Info("learning session started",
		"session_id", session.ID,
		"review_cards", len(due),
		"new_cards", len(fresh))
	return session
}

// GetGradeOptions returns the grades for the session's current card.
func (m *LearningSessionManager) GetGradeOptions(session Session) ([4]fsrs.Grade, error) {
	card, ok := session.CurrentCard()
	if !ok {
		return [4]fsrs.Grade{}, ErrSessionCompleted
	}
	return m.service.GetGradeOptions(card), nil
}

// ProcessCardReview applies grade to the current card and moves to the next one.
func (m *LearningSessionManager) ProcessCardReview(session Session, grade fsrs.Grade) (Session, fsrs.FlashCard, error) {
	card, ok := session.CurrentCard()
	if !ok {
		return session, fsrs.FlashCard{}, ErrSessionCompleted
	}

	updated := m.service.apply(card, grade)

	next := session
	next.Queue = append([]fsrs.FlashCard(nil), session.Queue...)
	next.Queue[session.Cursor] = updated
	next.Cursor++
	next.CompletedCount++
	if grade.Choice.IsCorrect() {
		next.CorrectCount++
	}
	next.Accuracy = float64(next.CorrectCount) / float64(next.CompletedCount)
	next.Completed = next.Cursor >= len(next.Queue)
	return next, updated, nil
}
