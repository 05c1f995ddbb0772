package fsrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzDelta(t *testing.T) {
	assert.InDelta(t, 1.075, fuzzDelta(3), 1e-9)
	assert.InDelta(t, 1.975, fuzzDelta(10), 1e-9)
	assert.InDelta(t, 4.475, fuzzDelta(50), 1e-9)
}

func TestFuzzInterval(t *testing.T) {
	rnd := NewSeededRandom(42)

	tests := []struct {
		name     string
		interval int
		strong   bool
		wantMin  int
		wantMax  int
	}{
		{name: "short intervals are untouched", interval: 2, strong: true, wantMin: 2, wantMax: 2},
		{name: "review fuzz", interval: 10, strong: true, wantMin: 8, wantMax: 12},
		{name: "learning fuzz is narrower", interval: 10, strong: false, wantMin: 9, wantMax: 11},
		{name: "maximum interval", interval: MaxInterval, strong: true, wantMin: MaxInterval - 1827, wantMax: MaxInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				got := fuzzInterval(tt.interval, MaxInterval, tt.strong, rnd)
				assert.GreaterOrEqual(t, got, tt.wantMin)
				assert.LessOrEqual(t, got, tt.wantMax)
			}
		})
	}
}

func TestNewSeededRandom(t *testing.T) {
	a, b := NewSeededRandom(3), NewSeededRandom(3)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}
