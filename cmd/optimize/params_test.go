package main

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/telemetry"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: got %g, want %g", pv.Specs[i].Name, back[i], def[i])
		}
	}
}

func TestClampRoundsIntegers(t *testing.T) {
	pv := NewParamVector()
	got := pv.Clamp([]float64{0.9, 2.6, 9, 1.2, 7.4})
	want := []float64{0.5, 3, 4, 1, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: got %g, want %g", pv.Specs[i].Name, got[i], want[i])
		}
	}
}

func TestApplyToConfigValidates(t *testing.T) {
	pv := NewParamVector()
	for _, x := range [][]float64{
		pv.DefaultVector(),
		{0, 1, 0, 1, 4},
		{0.5, 6, 4, 4, 12},
	} {
		cfg := config.Default()
		pv.ApplyToConfig(cfg, x)
		if err := cfg.Validate(); err != nil {
			t.Fatalf("ApplyToConfig(%v): %v", x, err)
		}
		got := pv.ExtractFromConfig(cfg)
		clamped := pv.Clamp(x)
		for i := range clamped {
			if pv.Specs[i].Name == "cell_capacity" {
				continue // raised to board.cell_capacity when below it
			}
			if got[i] != clamped[i] {
				t.Errorf("%s: extracted %g, want %g", pv.Specs[i].Name, got[i], clamped[i])
			}
		}
	}
}

func TestComputeBalance(t *testing.T) {
	tests := []struct {
		name string
		wins telemetry.Wins
		want float64
	}{
		{"no decided rounds", telemetry.Wins{Tie: 4}, 1},
		{"even", telemetry.Wins{Predator: 3, Prey: 3, Tie: 1}, 1},
		{"one sided", telemetry.Wins{Prey: 5}, 0},
		{"three to one", telemetry.Wins{Predator: 3, Prey: 1}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeBalance(tt.wins); got != tt.want {
				t.Errorf("computeBalance = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestEvaluateRewardsCoexistence(t *testing.T) {
	base := config.Default()
	base.Game.Rounds = 5
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, []int64{1, 2}, base)

	fitness := fe.Evaluate(pv.DefaultVector())
	if fitness > 0 {
		t.Fatalf("fitness = %g, want <= 0", fitness)
	}
	if fitness < -2*float64(base.Game.Rounds) {
		t.Fatalf("fitness = %g below the best possible score", fitness)
	}
	if fe.BestRecord() == nil {
		t.Fatal("expected a best record after the first evaluation")
	}
	if b := fe.LastBalance(); b < 0 || b > 1 {
		t.Errorf("balance = %g, want within [0, 1]", b)
	}
}

func TestEvalLogTracksBest(t *testing.T) {
	pv := NewParamVector()
	path := filepath.Join(t.TempDir(), "optimize_log.csv")
	l, err := newEvalLog(path, pv)
	if err != nil {
		t.Fatal(err)
	}
	l.record(-4, 0.5, pv.DefaultVector())
	l.record(-9, 1, pv.Clamp([]float64{0.2, 3, 2, 2, 8}))
	l.record(-6, 0, pv.DefaultVector())
	l.close()

	if l.evals != 3 || l.bestFitness != -9 || l.best[1] != 3 {
		t.Errorf("evals/best = %d/%g/%v, want 3/-9 with satiety 3", l.evals, l.bestFitness, l.best)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "eval,fitness,balance,encounter_weight") {
		t.Errorf("log = %q, want header + 3 rows", lines)
	}
}
