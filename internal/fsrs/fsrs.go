// Package fsrs implements the Free Spaced Repetition Scheduler used to decide
// when a flashcard should be reviewed again.
package fsrs

import (
	"fmt"
	"math"
	"time"
)

const (
	// MinParams is the number of weights the forgetting-curve model needs.
	MinParams = 21
	// MaxInterval is the longest interval, in days, a card can be scheduled for.
	MaxInterval = 36500

	againStep = time.Minute
	hardStep  = 5 * time.Minute
	goodStep  = 10 * time.Minute
	lapseStep = 5 * time.Minute
)

// DefaultParams are the canonical FSRS-6 weights.
var DefaultParams = []float64{
	0.212, 1.2931, 2.3065, 8.2956,
	6.4133, 0.8334, 3.0194, 0.001,
	1.8722, 0.1666, 0.796, 1.4835,
	0.0614, 0.2629, 1.6483, 0.6014,
	1.8729, 0.5425, 0.0912, 0.0658,
	0.1542,
}

// FSRS computes the four possible outcomes of reviewing a card.
// It holds no mutable state and can be shared between goroutines.
type FSRS struct {
	requestRetention float64
	weights          weights
	isReview         bool
	fuzz             bool
	maxInterval      int
	random           Random
	now              func() time.Time
}

// Option customises a scheduler created by New.
type Option func(*FSRS)

// WithRandom sets the source used for interval fuzzing.
func WithRandom(r Random) Option { return func(f *FSRS) { f.random = r } }

// WithSeed makes interval fuzzing deterministic.
func WithSeed(seed int64) Option { return WithRandom(NewSeededRandom(seed)) }

// WithoutFuzz disables interval fuzzing.
func WithoutFuzz() Option { return func(f *FSRS) { f.fuzz = false } }

// WithClock overrides the time source used to measure elapsed days.
func WithClock(now func() time.Time) Option { return func(f *FSRS) { f.now = now } }

// WithMaximumInterval caps scheduled intervals at days.
func WithMaximumInterval(days int) Option {
	return func(f *FSRS) {
		if days > 0 && days < MaxInterval {
			f.maxInterval = days
		}
	}
}

// New creates a scheduler targeting requestRetention with the given model weights.
// isReview widens the fuzz applied to review intervals.
func New(requestRetention float64, params []float64, isReview bool, opts ...Option) (*FSRS, error) {
	if len(params) < MinParams {
		return nil, fmt.Errorf("%w: got %d", ErrParamsOutOfRange, len(params))
	}
	for i, p := range params[:MinParams] {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: w[%d] = %v", ErrInvalidParameters, i, p)
		}
	}
	if !(requestRetention > 0 && requestRetention < 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRetention, requestRetention)
	}

	f := &FSRS{
		requestRetention: requestRetention,
		weights:          newWeights(params),
		isReview:         isReview,
		fuzz:             true,
		maxInterval:      MaxInterval,
		random:           globalRandom{},
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// RequestRetention returns the recall probability the scheduler aims for.
func (f *FSRS) RequestRetention() float64 {
	return f.requestRetention
}

// Params returns a copy of the model weights.
func (f *FSRS) Params() []float64 {
	out := make([]float64, MinParams)
	copy(out, f.weights.w[:])
	return out
}

// Calculate returns one grade per rating, in the order Again, Hard, Good, Easy.
// The card is not modified.
func (f *FSRS) Calculate(card FlashCard) [4]Grade {
	card = f.sanitize(card)
	switch card.Phase {
	case PhaseReLearning:
		return f.relearning(card)
	case PhaseReview:
		return f.review(card, f.now())
	default:
		return f.added()
	}
}

// Next calculates the grades for card and applies the one matching rating.
func (f *FSRS) Next(card FlashCard, rating Rating) (FlashCard, Grade, error) {
	if !rating.IsValid() {
		return card, Grade{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}
	grade := f.Calculate(card)[rating-1]
	card.Apply(grade, f.now())
	return card, grade, nil
}

// Retrievability estimates the probability of recalling card at now.
func (f *FSRS) Retrievability(card FlashCard, now time.Time) float64 {
	if card.Phase == PhaseAdded || card.LastReview.IsZero() {
		return 0
	}
	card = f.sanitize(card)
	return f.weights.retrievability(elapsedDays(card, now), card.Stability)
}

func (f *FSRS) added() [4]Grade {
	steps := [4]time.Duration{againStep, hardStep, goodStep, day}
	var grades [4]Grade
	for i, r := range Ratings {
		interval := 0
		if r == Easy {
			interval = 1
		}
		grades[i] = newGrade(r, steps[i], interval,
			f.weights.initStability(r), f.weights.initDifficulty(r, true))
	}
	return grades
}

func (f *FSRS) relearning(card FlashCard) [4]Grade {
	var grades [4]Grade
	for i, r := range Ratings {
		s := f.weights.shortTermStability(card.Stability, r)
		d := f.weights.nextDifficulty(card.Difficulty, r)
		switch r {
		case Again:
			grades[i] = newGrade(r, againStep, 0, s, d)
		case Hard:
			grades[i] = newGrade(r, hardStep, 0, s, d)
		case Good:
			grades[i] = newGrade(r, goodStep, 0, s, d)
		case Easy:
			ivl := f.fuzzed(f.weights.interval(s, f.requestRetention, f.maxInterval))
			grades[i] = newGrade(r, time.Duration(ivl)*day, ivl, s, d)
		}
	}
	return grades
}

func (f *FSRS) review(card FlashCard, now time.Time) [4]Grade {
	r := f.weights.retrievability(elapsedDays(card, now), card.Stability)

	var stability, difficulty [4]float64
	var intervals [4]int
	for i, rating := range Ratings {
		stability[i] = f.weights.nextStability(card.Difficulty, card.Stability, r, rating)
		difficulty[i] = f.weights.nextDifficulty(card.Difficulty, rating)
		if rating != Again {
			intervals[i] = f.fuzzed(f.weights.interval(stability[i], f.requestRetention, f.maxInterval))
		}
	}

	hard, good, easy := intervals[Hard-1], intervals[Good-1], intervals[Easy-1]
	hard = min(hard, good)
	good = min(max(good, hard+1), f.maxInterval)
	easy = min(max(easy, good+1), f.maxInterval)
	intervals[Hard-1], intervals[Good-1], intervals[Easy-1] = hard, good, easy

	var grades [4]Grade
	for i, rating := range Ratings {
		if rating == Again {
			grades[i] = newGrade(rating, lapseStep, 0, stability[i], difficulty[i])
			continue
		}
		grades[i] = newGrade(rating, time.Duration(intervals[i])*day, intervals[i], stability[i], difficulty[i])
	}
	return grades
}

func (f *FSRS) fuzzed(interval int) int {
	if !f.fuzz {
		return interval
	}
	return fuzzInterval(interval, f.maxInterval, f.isReview, f.random)
}

// sanitize replaces values that would otherwise poison the model with NaN.
func (f *FSRS) sanitize(card FlashCard) FlashCard {
	if math.IsNaN(card.Stability) || math.IsInf(card.Stability, 0) || card.Stability <= 0 {
		card.Stability = f.weights.initStability(Good)
	}
	if math.IsNaN(card.Difficulty) {
		card.Difficulty = f.weights.initDifficulty(Good, true)
	}
	card.Difficulty = clampDifficulty(card.Difficulty)
	return card
}

// elapsedDays measures days since the last review, falling back to the
// scheduled interval for cards imported without a review timestamp.
func elapsedDays(card FlashCard, now time.Time) float64 {
	if card.LastReview.IsZero() {
		return float64(card.Interval)
	}
	return math.Max(now.Sub(card.LastReview).Hours()/24, 0)
}
