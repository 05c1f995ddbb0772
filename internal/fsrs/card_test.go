package fsrs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewFlashCard(t *testing.T) {
	card := NewFlashCard("abc")

	assert.Equal(t, "abc", card.ID)
	assert.Equal(t, 2.5, card.Stability)
	assert.Equal(t, 2.5, card.Difficulty)
	assert.Equal(t, PhaseAdded, card.Phase)
	assert.Zero(t, card.ReviewCount)
	assert.False(t, card.IsDue(time.Now()))
}

func TestFlashCard_Apply(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		phase     CardPhase
		choice    Rating
		wantPhase CardPhase
	}{
		{name: "added again", phase: PhaseAdded, choice: Again, wantPhase: PhaseReLearning},
		{name: "added good", phase: PhaseAdded, choice: Good, wantPhase: PhaseReview},
		{name: "review again", phase: PhaseReview, choice: Again, wantPhase: PhaseReLearning},
		{name: "review hard", phase: PhaseReview, choice: Hard, wantPhase: PhaseReview},
		{name: "relearning hard", phase: PhaseReLearning, choice: Hard, wantPhase: PhaseReview},
		{name: "relearning easy", phase: PhaseReLearning, choice: Easy, wantPhase: PhaseReview},
		{name: "relearning again", phase: PhaseReLearning, choice: Again, wantPhase: PhaseReLearning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := NewFlashCard("c")
			card.Phase = tt.phase
			card.ReviewCount = 2

			card.Apply(Grade{
				Choice:         tt.choice,
				Stability:      7.5,
				Difficulty:     4.25,
				Interval:       3,
				DurationMillis: (72 * time.Hour).Milliseconds(),
			}, now)

			assert.Equal(t, tt.wantPhase, card.Phase)
			assert.Equal(t, 3, card.ReviewCount)
			assert.Equal(t, 7.5, card.Stability)
			assert.Equal(t, 4.25, card.Difficulty)
			assert.Equal(t, 3, card.Interval)
			assert.Equal(t, now, card.LastReview)
			assert.Equal(t, now.Add(72*time.Hour), card.DueDate)
			assert.True(t, card.IsDue(now.Add(73*time.Hour)))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: time.Minute, want: "< 3 Min"},
		{in: 3 * time.Minute, want: "3 Min"},
		{in: 10 * time.Minute, want: "10 Min"},
		{in: time.Hour, want: "1 Hour"},
		{in: 5 * time.Hour, want: "5 Hours"},
		{in: 24 * time.Hour, want: "1 day"},
		{in: 12 * 24 * time.Hour, want: "12 days"},
		{in: 45 * 24 * time.Hour, want: "1.5 months"},
		{in: 730 * 24 * time.Hour, want: "2.0 years"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.in))
		})
	}
}

func TestParseRating(t *testing.T) {
	for _, r := range Ratings {
		got, err := ParseRating(r.String())
		assert.NoError(t, err)
		assert.Equal(t, r, got)
	}
	got, err := ParseRating("3")
	assert.NoError(t, err)
	assert.Equal(t, Good, got)

	_, err = ParseRating("5")
	assert.ErrorIs(t, err, ErrInvalidRating)
}
