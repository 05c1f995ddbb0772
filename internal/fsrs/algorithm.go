package fsrs

import "math"

const (
	minStability  = 0.001
	minDifficulty = 1.0
	maxDifficulty = 10.0
)

// weights holds the 21 model weights together with the constants derived from them.
type weights struct {
	w      [21]float64
	decay  float64
	factor float64
}

func newWeights(params []float64) weights {
	var w [21]float64
	copy(w[:], params)
	decay := -w[20]
	return weights{
		w:      w,
		decay:  decay,
		factor: math.Pow(0.9, 1/decay) - 1,
	}
}

// retrievability is the probability of recall after elapsedDays for a memory of the given stability.
func (m *weights) retrievability(elapsedDays, stability float64) float64 {
	return math.Pow(1+m.factor*elapsedDays/stability, m.decay)
}

func (m *weights) initStability(r Rating) float64 {
	return clampStability(m.w[r-1])
}

func (m *weights) initDifficulty(r Rating, clamp bool) float64 {
	d := m.w[4] - math.Exp(m.w[5]*float64(r-1)) + 1
	if clamp {
		return clampDifficulty(d)
	}
	return d
}

// interval solves the forgetting curve for the day at which recall drops to retention.
func (m *weights) interval(stability, retention float64, maxInterval int) int {
	ivl := stability / m.factor * (math.Pow(retention, 1/m.decay) - 1)
	days := int(math.Round(ivl))
	return min(max(days, 1), maxInterval)
}

// nextDifficulty moves difficulty up for Again and down for Easy, then reverts
// it slightly toward the initial Easy difficulty.
func (m *weights) nextDifficulty(d float64, r Rating) float64 {
	delta := -m.w[6] * (float64(r) - 3)
	damped := d + (10-d)*delta/9
	anchor := m.initDifficulty(Easy, false)
	return clampDifficulty(m.w[7]*anchor + (1-m.w[7])*damped)
}

func (m *weights) shortTermStability(s float64, r Rating) float64 {
	inc := math.Exp(m.w[17]*(float64(r)-3+m.w[18])) * math.Pow(s, -m.w[19])
	if r.IsCorrect() {
		inc = math.Max(inc, 1)
	}
	return clampStability(s * inc)
}

func (m *weights) nextStability(d, s, retrievability float64, r Rating) float64 {
	if r == Again {
		return m.forgetStability(d, s, retrievability)
	}
	return m.recallStability(d, s, retrievability, r)
}

func (m *weights) recallStability(d, s, retrievability float64, r Rating) float64 {
	hardPenalty := 1.0
	if r == Hard {
		hardPenalty = m.w[15]
	}
	easyBonus := 1.0
	if r == Easy {
		easyBonus = m.w[16]
	}
	growth := math.Exp(m.w[8]) *
		(11 - d) *
		math.Pow(s, -m.w[9]) *
		(math.Exp((1-retrievability)*m.w[10]) - 1) *
		hardPenalty * easyBonus
	return clampStability(s * (1 + growth))
}

func (m *weights) forgetStability(d, s, retrievability float64) float64 {
	long := m.w[11] *
		math.Pow(d, -m.w[12]) *
		(math.Pow(s+1, m.w[13]) - 1) *
		math.Exp((1-retrievability)*m.w[14])
	short := s / math.Exp(m.w[17]*m.w[18])
	return clampStability(math.Min(long, short))
}

func clampStability(s float64) float64 {
	if math.IsNaN(s) {
		return minStability
	}
	return math.Max(s, minStability)
}

func clampDifficulty(d float64) float64 {
	if math.IsNaN(d) {
		return maxDifficulty
	}
	return math.Min(math.Max(d, minDifficulty), maxDifficulty)
}
