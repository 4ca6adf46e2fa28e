package ownership

import (
	"math"
	"time"
)

// DecayFunc adjusts the commits component of the weighted strategy.
// reference is the start of the analyzed window. Implementations must not
// mutate scores and should return a distribution that still sums to 1.
type DecayFunc func(scores map[string]float64, contributors []Contributor, reference time.Time) map[string]float64

// DefaultHalfLifeDays is the half-life used by HalfLifeDecay when none is configured.
const DefaultHalfLifeDays = 90

// NoDecay returns scores unchanged.
func NoDecay(scores map[string]float64, _ []Contributor, _ time.Time) map[string]float64 {
	return scores
}

// HalfLifeDecay down-weights contributors whose last commit is old:
// weight = 0.5^(age/halfLife), age measured from LastCommit to now.
// Contributors without a LastCommit keep full weight. The result is
// re-normalized; if every weight collapses to zero the input is returned.
func HalfLifeDecay(halfLife time.Duration, now func() time.Time) DecayFunc {
	if now == nil {
		now = time.Now
	}
	return func(scores map[string]float64, contributors []Contributor, _ time.Time) map[string]float64 {
		if halfLife <= 0 || len(scores) == 0 {
			return scores
		}
		at := now()

		lastCommit := make(map[string]time.Time, len(contributors))
		for _, c := range contributors {
			if c.Stat.LastCommit.After(lastCommit[c.ID]) {
				lastCommit[c.ID] = c.Stat.LastCommit
			}
		}

		decayed := make(map[string]float64, len(scores))
		total := 0.0
		for id, score := range scores {
			weight := 1.0
			if last := lastCommit[id]; !last.IsZero() {
				age := at.Sub(last)
				if age < 0 {
					age = 0
				}
				weight = math.Pow(0.5, float64(age)/float64(halfLife))
			}
			decayed[id] = score * weight
			total += decayed[id]
		}
		if total == 0 {
			return scores
		}
		for id := range decayed {
			decayed[id] /= total
		}
		return decayed
	}
}
