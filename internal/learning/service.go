// Package learning turns the FSRS scheduler into study sessions: it creates
// cards, aggregates statistics, runs bounded review sessions and persists
// their outcome.
package learning

import (
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/at-ishikawa/subdeck/internal/fsrs"
)

// LearningStat summarises a collection of cards.
type LearningStat struct {
	TotalCards        int
	NewCards          int
	ReviewCards       int
	DueCards          int
	AverageDifficulty float64
	AverageStability  float64
}

// FSRSService wraps a scheduler with card creation and statistics helpers.
type FSRSService struct {
	scheduler *fsrs.FSRS
	now       func() time.Time
	logger    *slog.Logger
}

// ServiceOption customises an FSRSService.
type ServiceOption func(*FSRSService)

// WithServiceClock overrides the time source used for due checks and reviews.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *FSRSService) { s.now = now }
}

// WithServiceLogger sets the logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *FSRSService) { s.logger = logger }
}

func NewFSRSService(scheduler *fsrs.FSRS, opts ...ServiceOption) *FSRSService {
	s := &FSRSService{
		scheduler: scheduler,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNewCard returns an unreviewed card. An empty seed gets a random ID.
func (s *FSRSService) CreateNewCard(seed string) fsrs.FlashCard {
	id := seed
	if id == "" {
		id = gonanoid.Must()
	}
	return fsrs.NewFlashCard(id)
}

// GetGradeOptions returns the four possible outcomes of reviewing card now.
func (s *FSRSService) GetGradeOptions(card fsrs.FlashCard) [4]fsrs.Grade {
	return s.scheduler.Calculate(card)
}

// GetLearningStat counts cards per phase and averages their memory state.
func (s *FSRSService) GetLearningStat(cards []fsrs.FlashCard) LearningStat {
	if len(cards) == 0 {
		return LearningStat{}
	}

	now := s.now()
	stat := LearningStat{TotalCards: len(cards)}
	var difficulty, stability float64
	for _, card := range cards {
		switch card.Phase {
		case fsrs.PhaseAdded:
			stat.NewCards++
		case fsrs.PhaseReview:
			stat.ReviewCards++
		case fsrs.PhaseReLearning:
		}
		if card.IsDue(now) {
			stat.DueCards++
		}
		difficulty += card.Difficulty
		stability += card.Stability
	}
	stat.AverageDifficulty = difficulty / float64(len(cards))
	stat.AverageStability = stability / float64(len(cards))
	return stat
}

// apply records grade against card at the service's current time.
func (s *FSRSService) apply(card fsrs.FlashCard, grade fsrs.Grade) fsrs.FlashCard {
	card.Apply(grade, s.now())
	s.logger.Debug("card reviewed",
		"card_id", card.ID,
		"choice", grade.Choice.String(),
		"phase", card.Phase.String(),
		"interval", card.Interval,
		"due", card.DueDate)
	return card
}
