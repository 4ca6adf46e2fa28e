package ownership

import (
	"math"
	"testing"
	"time"

	"ownergen/internal/errors"
)

func contributors(stats ...Contributor) []Contributor { return stats }

func stat(id string, commits, added uint) Contributor {
	return Contributor{ID: id, Stat: ContributorStat{Commits: commits, LinesAdded: added}}
}

func sumScores(scores map[string]float64) float64 {
	total := 0.0
	for _, s := range scores {
		total += s
	}
	return total
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"commits", StrategyCommits, false},
		{"LINES", StrategyLines, false},
		{" recent ", StrategyRecent, false},
		{"Weighted", StrategyWeighted, false},
		{"blame", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				if !errors.HasCode(err, errors.InvalidArgument) {
					t.Fatalf("ParseStrategy(%q) error = %v, want InvalidArgument", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScore_SumsToOne(t *testing.T) {
	inputs := map[string][]Contributor{
		"single":       contributors(stat("a@x.io", 3, 10)),
		"three":        contributors(stat("a@x.io", 5, 100), stat("b@x.io", 3, 20), stat("c@x.io", 1, 1)),
		"zero lines":   contributors(stat("a@x.io", 2, 0), stat("b@x.io", 7, 0)),
		"zero commits": contributors(stat("a@x.io", 0, 5), stat("b@x.io", 1, 0)),
	}

	for _, strategy := range Strategies {
		for name, input := range inputs {
			t.Run(string(strategy)+"/"+name, func(t *testing.T) {
				opts := DefaultScoreOptions()
				opts.Strategy = strategy
				scores, err := Score(input, opts)
				if err != nil {
					t.Fatalf("Score: %v", err)
				}
				if len(scores) == 0 {
					t.Fatal("expected scores")
				}
				if got := sumScores(scores); math.Abs(got-1) > 1e-9 {
					t.Errorf("scores sum to %v, want 1", got)
				}
				for id, s := range scores {
					if s < 0 || s > 1 {
						t.Errorf("score[%s] = %v out of [0,1]", id, s)
					}
				}
			})
		}
	}
}

func TestScore_Empty(t *testing.T) {
	for _, strategy := range Strategies {
		opts := DefaultScoreOptions()
		opts.Strategy = strategy
		scores, err := Score(nil, opts)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", strategy, err)
		}
		if len(scores) != 0 {
			t.Errorf("%s: expected empty scores, got %v", strategy, scores)
		}
	}
}

func TestScore_AllZeroCommits(t *testing.T) {
	input := contributors(stat("a@x.io", 0, 0), stat("b@x.io", 0, 0))
	scores, err := Score(input, ScoreOptions{Strategy: StrategyCommits})
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 0 {
		t.Errorf("expected empty scores for zero commits, got %v", scores)
	}
}

func TestScore_Commits(t *testing.T) {
	input := contributors(stat("a@x.io", 3, 0), stat("b@x.io", 1, 0))
	scores, err := Score(input, ScoreOptions{Strategy: StrategyCommits})
	if err != nil {
		t.Fatal(err)
	}
	if scores["a@x.io"] != 0.75 || scores["b@x.io"] != 0.25 {
		t.Errorf("scores = %v, want a=0.75 b=0.25", scores)
	}
}

func TestScore_LinesFallsBackToCommits(t *testing.T) {
	input := contributors(stat("a@x.io", 3, 0), stat("b@x.io", 1, 0), stat("c@x.io", 4, 0))

	lines, err := Score(input, ScoreOptions{Strategy: StrategyLines})
	if err != nil {
		t.Fatal(err)
	}
	commits, err := Score(input, ScoreOptions{Strategy: StrategyCommits})
	if err != nil {
		t.Fatal(err)
	}

	if len(lines) != len(commits) {
		t.Fatalf("lines = %v, commits = %v", lines, commits)
	}
	for id, want := range commits {
		if lines[id] != want {
			t.Errorf("lines[%s] = %v, want %v", id, lines[id], want)
		}
	}
}

func TestScore_Lines(t *testing.T) {
	input := contributors(stat("a@x.io", 1, 90), stat("b@x.io", 9, 10))
	scores, err := Score(input, ScoreOptions{Strategy: StrategyLines})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(scores["a@x.io"]-0.9) > 1e-12 {
		t.Errorf("a = %v, want 0.9", scores["a@x.io"])
	}
}

func TestScore_Weighted(t *testing.T) {
	// commits: a=0.5 b=0.5; lines: a=1.0 b=0
	input := contributors(stat("a@x.io", 1, 10), stat("b@x.io", 1, 0))

	tests := []struct {
		name    string
		cw, lw  float64
		wantA   float64
		wantErr bool
	}{
		{"defaults", 0.4, 0.6, 0.5*0.4 + 1.0*0.6, false},
		{"unnormalized weights", 2, 6, (0.5*2 + 1.0*6) / 8, false},
		{"commits only", 1, 0, 0.5, false},
		{"both zero", 0, 0, 0, true},
		{"negative", -1, 2, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores, err := Score(input, ScoreOptions{Strategy: StrategyWeighted, CommitsWeight: tt.cw, LinesWeight: tt.lw})
			if tt.wantErr {
				if !errors.HasCode(err, errors.InvalidArgument) {
					t.Fatalf("error = %v, want InvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(scores["a@x.io"]-tt.wantA) > 1e-12 {
				t.Errorf("a = %v, want %v", scores["a@x.io"], tt.wantA)
			}
			if math.Abs(sumScores(scores)-1) > 1e-9 {
				t.Errorf("sum = %v, want 1", sumScores(scores))
			}
		})
	}
}

func TestScore_WeightedDecayHook(t *testing.T) {
	input := contributors(stat("a@x.io", 1, 1), stat("b@x.io", 1, 1))
	called := false
	spy := func(scores map[string]float64, _ []Contributor, reference time.Time) map[string]float64 {
		called = true
		if reference.IsZero() {
			t.Error("decay called without reference")
		}
		return scores
	}

	opts := ScoreOptions{Strategy: StrategyWeighted, CommitsWeight: 1, LinesWeight: 1, TimeDecay: true, Decay: spy}
	if _, err := Score(input, opts); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("decay must not run without a reference date")
	}

	opts.Since = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := Score(input, opts); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("decay should run when enabled with a reference date")
	}

	called = false
	opts.TimeDecay = false
	if _, err := Score(input, opts); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("decay must not run when disabled")
	}
}

func TestScore_UnknownStrategy(t *testing.T) {
	_, err := Score(contributors(stat("a@x.io", 1, 1)), ScoreOptions{Strategy: "blame"})
	if !errors.HasCode(err, errors.InvalidArgument) {
		t.Errorf("error = %v, want InvalidArgument", err)
	}
}

func TestRecentCutoff(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	opts := ScoreOptions{Strategy: StrategyRecent, Now: func() time.Time { return now }}

	if got, want := RecentCutoff(opts), now.Add(-180*24*time.Hour); !got.Equal(want) {
		t.Errorf("RecentCutoff = %v, want %v", got, want)
	}

	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	opts.Since = since
	if got := RecentCutoff(opts); !got.Equal(since) {
		t.Errorf("RecentCutoff with since = %v, want %v", got, since)
	}
}
