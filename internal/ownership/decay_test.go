package ownership

import (
	"math"
	"testing"
	"time"
)

func TestNoDecay(t *testing.T) {
	scores := map[string]float64{"a": 0.7, "b": 0.3}
	got := NoDecay(scores, nil, time.Now())
	if got["a"] != 0.7 || got["b"] != 0.3 {
		t.Errorf("NoDecay changed scores: %v", got)
	}
}

func TestHalfLifeDecay(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	halfLife := 30 * 24 * time.Hour
	decay := HalfLifeDecay(halfLife, func() time.Time { return now })

	contributors := []Contributor{
		{ID: "fresh", Stat: ContributorStat{LastCommit: now}},
		{ID: "stale", Stat: ContributorStat{LastCommit: now.Add(-halfLife)}},
		{ID: "unknown"},
	}
	scores := map[string]float64{"fresh": 1.0 / 3, "stale": 1.0 / 3, "unknown": 1.0 / 3}

	got := decay(scores, contributors, now.AddDate(-1, 0, 0))

	// weights 1, 0.5, 1 -> 0.4, 0.2, 0.4
	want := map[string]float64{"fresh": 0.4, "stale": 0.2, "unknown": 0.4}
	for id, w := range want {
		if math.Abs(got[id]-w) > 1e-9 {
			t.Errorf("%s = %v, want %v", id, got[id], w)
		}
	}
	if scores["stale"] != 1.0/3 {
		t.Error("input map must not be mutated")
	}
}

func TestHalfLifeDecay_Degenerate(t *testing.T) {
	scores := map[string]float64{"a": 1}
	if got := HalfLifeDecay(0, nil)(scores, nil, time.Time{}); got["a"] != 1 {
		t.Errorf("zero half-life should be a passthrough, got %v", got)
	}
	if got := HalfLifeDecay(time.Hour, nil)(map[string]float64{}, nil, time.Time{}); len(got) != 0 {
		t.Errorf("empty scores should stay empty, got %v", got)
	}
}
