package fsrs

import (
	"fmt"
	"math"
	"time"
)

// Grade is one candidate outcome of a review.
type Grade struct {
	Color          string
	Title          string
	DurationMillis int64
	Interval       int
	Txt            string
	Choice         Rating
	Stability      float64
	Difficulty     float64
}

// Duration returns the time until the card becomes due after choosing this grade.
func (g Grade) Duration() time.Duration {
	return time.Duration(g.DurationMillis) * time.Millisecond
}

const day = 24 * time.Hour

var gradeColors = map[Rating]string{
	Again: "#E53935",
	Hard:  "#FB8C00",
	Good:  "#43A047",
	Easy:  "#1E88E5",
}

func newGrade(r Rating, d time.Duration, interval int, stability, difficulty float64) Grade {
	return Grade{
		Color:          gradeColors[r],
		Title:          r.String(),
		DurationMillis: d.Milliseconds(),
		Interval:       interval,
		Txt:            formatDuration(d),
		Choice:         r,
		Stability:      stability,
		Difficulty:     difficulty,
	}
}

// formatDuration renders a review delay the way it is shown on grade buttons.
func formatDuration(d time.Duration) string {
	switch {
	case d < 3*time.Minute:
		return "< 3 Min"
	case d < time.Hour:
		return fmt.Sprintf("%d Min", int(d.Minutes()))
	case d < day:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 Hour"
		}
		return fmt.Sprintf("%d Hours", hours)
	}

	days := d.Hours() / 24
	switch {
	case days < 30:
		n := int(math.Round(days))
		if n == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", n)
	case days < 365:
		return fmt.Sprintf("%.1f months", days/30)
	default:
		return fmt.Sprintf("%.1f years", days/365)
	}
}
