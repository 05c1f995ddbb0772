package fsrs

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Random is the source of uniform numbers in [0, 1) used to fuzz intervals.
// Implementations must be safe for concurrent use.
type Random interface {
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) Float64() float64 {
	return rand.Float64()
}

type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeededRandom returns a deterministic Random, mainly for tests.
func NewSeededRandom(seed int64) Random {
	return &lockedRandom{rnd: rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))}
}

func (l *lockedRandom) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Float64()
}

type fuzzBand struct {
	start, end float64
	factor     float64
}

var fuzzBands = []fuzzBand{
	{2.5, 7.0, 0.15},
	{7.0, 20.0, 0.10},
	{20.0, math.Inf(1), 0.05},
}

func fuzzDelta(interval float64) float64 {
	delta := 1.0
	for _, b := range fuzzBands {
		delta += b.factor * math.Max(math.Min(interval, b.end)-b.start, 0)
	}
	return delta
}

// fuzzInterval spreads interval uniformly over a band around it so that cards
// learned together do not all fall due on the same day.
func fuzzInterval(interval, maxInterval int, strong bool, rnd Random) int {
	ivl := float64(interval)
	if ivl < 2.5 {
		return interval
	}
	delta := fuzzDelta(ivl)
	if !strong {
		delta /= 2
	}
	lo := max(2, int(math.Round(ivl-delta)))
	hi := min(int(math.Round(ivl+delta)), maxInterval)
	lo = min(lo, hi)

	fuzzed := lo + int(rnd.Float64()*float64(hi-lo+1))
	return min(fuzzed, hi)
}
