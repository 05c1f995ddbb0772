package fsrs

import "time"

const (
	DefaultStability  = 2.5
	DefaultDifficulty = 2.5
)

// FlashCard is the scheduling state of a single flashcard.
type FlashCard struct {
	ID          string
	Stability   float64
	Difficulty  float64
	Interval    int
	DueDate     time.Time
	ReviewCount int
	LastReview  time.Time
	Phase       CardPhase
}

// NewFlashCard returns a card that has never been reviewed.
func NewFlashCard(id string) FlashCard {
	return FlashCard{
		ID:         id,
		Stability:  DefaultStability,
		Difficulty: DefaultDifficulty,
		Phase:      PhaseAdded,
	}
}

// Apply records that the learner picked grade at now.
func (c *FlashCard) Apply(grade Grade, now time.Time) {
	c.Stability = grade.Stability
	c.Difficulty = grade.Difficulty
	c.Interval = grade.Interval
	c.ReviewCount++
	c.LastReview = now
	c.DueDate = now.Add(grade.Duration())
	c.Phase = c.Phase.next(grade.Choice)
}

// IsDue reports whether a card that has been studied at least once is due at now.
func (c FlashCard) IsDue(now time.Time) bool {
	return c.Phase != PhaseAdded && !c.DueDate.After(now)
}
