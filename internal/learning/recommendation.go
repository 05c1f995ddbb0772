package learning

import (
	"fmt"
	"sort"
	"time"

	"github.com/at-ishikawa/subdeck/internal/fsrs"
)

const (
	maxSuggestedReviews = 200
	maxPriorityCards    = 10
	hardDifficulty      = 7.0
	recentSessionCount  = 5

	reviewCardTime = 8 * time.Second
	newCardTime    = 20 * time.Second
)

type StudyLoadLevel string

const (
	StudyLoadLight    StudyLoadLevel = "light"
	StudyLoadModerate StudyLoadLevel = "moderate"
	StudyLoadHeavy    StudyLoadLevel = "heavy"
)

type StudyLoad struct {
	Today int
	Level StudyLoadLevel
}

// Recommendation is advisory; the scheduler remains the source of truth for due dates.
type Recommendation struct {
	SuggestedNewCards    int
	SuggestedReviewCards int
	EstimatedStudyTime   time.Duration
	Tips                 []string
	PriorityCards        []fsrs.FlashCard
	StudyLoad            StudyLoad
}

// GetLearningRecommendations suggests how much to study today from the cards'
// state and the accuracy of the most recent sessions.
func (m *LearningSessionManager) GetLearningRecommendations(cards []fsrs.FlashCard, pastSessions []SessionSummary) Recommendation {
	now := m.service.now()

	var dueCount, newCount, overdueWeek int
	for _, card := range cards {
		switch {
		case card.Phase == fsrs.PhaseAdded:
			newCount++
		case card.IsDue(now):
			dueCount++
			if now.Sub(card.DueDate) > 7*24*time.Hour {
				overdueWeek++
			}
		}
	}

	accuracy, hasHistory := recentAccuracy(pastSessions)
	suggestedReview := min(dueCount, maxSuggestedReviews)
	suggestedNew := min(newCardAllowance(accuracy, hasHistory, dueCount), newCount)

	rec := Recommendation{
		SuggestedNewCards:    suggestedNew,
		SuggestedReviewCards: suggestedReview,
		EstimatedStudyTime:   time.Duration(suggestedReview)*reviewCardTime + time.Duration(suggestedNew)*newCardTime,
		PriorityCards:        priorityCards(cards, now),
		StudyLoad:            studyLoad(suggestedReview + suggestedNew),
	}

	switch {
	case len(cards) == 0:
		rec.Tips = append(rec.Tips, "Add some words to start learning.")
	case dueCount == 0 && newCount == 0:
		rec.Tips = append(rec.Tips, "All caught up. Come back when cards are due.")
	}
	lowAccuracy := hasHistory && accuracy < 0.7
	if lowAccuracy {
		rec.Tips = append(rec.Tips, fmt.Sprintf("Recent accuracy is %.0f%%. Focus on reviews before adding new words.", accuracy*100))
	}
	if overdueWeek > 0 {
		rec.Tips = append(rec.Tips, fmt.Sprintf("%d cards are more than a week overdue. Review them first.", overdueWeek))
	}
	if dueCount > maxSuggestedReviews {
		rec.Tips = append(rec.Tips, fmt.Sprintf("Backlog of %d due cards. Spread them over several days.", dueCount))
	}
	if !lowAccuracy && rec.StudyLoad.Level == StudyLoadLight && newCount > suggestedNew && suggestedNew > 0 {
		rec.Tips = append(rec.Tips, "Light day. A good time to learn new words.")
	}
	return rec
}

// recentAccuracy averages the accuracy of the latest sessions that reviewed at least one card.
func recentAccuracy(sessions []SessionSummary) (float64, bool) {
	sorted := append([]SessionSummary(nil), sessions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartedAt.After(sorted[j].StartedAt)
	})

	var sum float64
	var n int
	for _, s := range sorted {
		if s.CompletedCount == 0 {
			continue
		}
		sum += s.Accuracy
		n++
		if n == recentSessionCount {
			break
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func newCardAllowance(accuracy float64, hasHistory bool, dueCount int) int {
	switch {
	case dueCount > 100:
		return 0
	case !hasHistory:
		return 20
	case accuracy < 0.7:
		return 5
	case accuracy < 0.85:
		return 10
	default:
		return 20
	}
}

// priorityCards lists overdue cards, most overdue first, then the hardest
// remaining studied cards.
func priorityCards(cards []fsrs.FlashCard, now time.Time) []fsrs.FlashCard {
	var overdue, hard []fsrs.FlashCard
	for _, card := range cards {
		switch {
		case card.Phase == fsrs.PhaseAdded:
		case card.DueDate.Before(now):
			overdue = append(overdue, card)
		case card.Difficulty >= hardDifficulty:
			hard = append(hard, card)
		}
	}
	sort.SliceStable(overdue, func(i, j int) bool {
		if !overdue[i].DueDate.Equal(overdue[j].DueDate) {
			return overdue[i].DueDate.Before(overdue[j].DueDate)
		}
		return overdue[i].Difficulty > overdue[j].Difficulty
	})
	sort.SliceStable(hard, func(i, j int) bool {
		return hard[i].Difficulty > hard[j].Difficulty
	})

	result := append(overdue, hard...)
	if len(result) > maxPriorityCards {
		result = result[:maxPriorityCards]
	}
	return result
}

func studyLoad(today int) StudyLoad {
	level := StudyLoadHeavy
	switch {
	case today < 50:
		level = StudyLoadLight
	case today < 150:
		level = StudyLoadModerate
	}
	return StudyLoad{Today: today, Level: level}
}
