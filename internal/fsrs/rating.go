package fsrs

import "fmt"

// Rating is the recall quality reported by the learner.
type Rating int

const (
	Again Rating = iota + 1
	Hard
	Good
	Easy
)

// Ratings lists every rating in the order Calculate returns grades.
var Ratings = [4]Rating{Again, Hard, Good, Easy}

func (r Rating) String() string {
	switch r {
	case Again:
		return "Again"
	case Hard:
		return "Hard"
	case Good:
		return "Good"
	case Easy:
		return "Easy"
	default:
		return fmt.Sprintf("Rating(%d)", int(r))
	}
}

// IsValid reports whether r is one of Again, Hard, Good or Easy.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// IsCorrect reports whether the rating counts as a confident recall.
func (r Rating) IsCorrect() bool {
	return r == Good || r == Easy
}

// ParseRating converts "1".."4" or a rating name into a Rating.
func ParseRating(s string) (Rating, error) {
	switch s {
	case "1", "again", "Again":
		return Again, nil
	case "2", "hard", "Hard":
		return Hard, nil
	case "3", "good", "Good":
		return Good, nil
	case "4", "easy", "Easy":
		return Easy, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
}

// CardPhase is the position of a card in its learning lifecycle.
type CardPhase int

const (
	PhaseAdded CardPhase = iota
	PhaseReLearning
	PhaseReview
)

func (p CardPhase) String() string {
	switch p {
	case PhaseAdded:
		return "Added"
	case PhaseReLearning:
		return "ReLearning"
	case PhaseReview:
		return "Review"
	default:
		return fmt.Sprintf("CardPhase(%d)", int(p))
	}
}

// next returns the phase a card moves to after being rated.
// Again always sends the card back to relearning; anything else promotes it to review.
func (p CardPhase) next(r Rating) CardPhase {
	if r == Again {
		return PhaseReLearning
	}
	return PhaseReview
}
