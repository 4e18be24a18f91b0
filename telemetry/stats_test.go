package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/game"
)

// board builds a one-cell snapshot holding the given animals.
func board(predators, prey []components.Animal) game.GridSnapshot {
	return game.GridSnapshot{
		Size:      1,
		Predators: len(predators),
		Prey:      len(prey),
		Cells:     []game.CellView{{Predators: predators, Prey: prey}},
	}
}

func predators(skills ...int) []components.Animal {
	out := make([]components.Animal, len(skills))
	for i, s := range skills {
		out[i] = components.Animal{Species: components.SpeciesPredator, Skill: s, Satiety: 1 + i%2}
	}
	return out
}

func prey(skills ...int) []components.Animal {
	out := make([]components.Animal, len(skills))
	for i, s := range skills {
		out[i] = components.NewPrey(s, 0)
	}
	return out
}

func TestSkillStats(t *testing.T) {
	tests := []struct {
		name     string
		animals  []components.Animal
		wantMean float64
		wantStd  float64
	}{
		{"empty", nil, 0, 0},
		{"single", prey(7), 7, 0},
		{"spread", prey(2, 3, 4), 3, 1},
		{"rounded", prey(1, 1, 2), 1.3, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std := SkillStats(tt.animals)
			if math.Abs(mean-tt.wantMean) > 1e-9 || math.Abs(std-tt.wantStd) > 1e-9 {
				t.Errorf("SkillStats = %v, %v, want %v, %v", mean, std, tt.wantMean, tt.wantStd)
			}
		})
	}
}

func TestRound1(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{3.14, 3.1},
		{3.16, 3.2},
		{5, 5},
		{0.04, 0},
	}
	for _, tt := range tests {
		if got := Round1(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStartingStats(t *testing.T) {
	s := StartingStats(board(predators(4, 6), prey(1, 2, 3)))

	if s.Round != 0 || s.Winner != game.WinnerNone {
		t.Errorf("round/winner = %d/%s, want 0/n/a", s.Round, s.Winner)
	}
	if s.Predators != 2 || s.Prey != 3 {
		t.Errorf("populations = %d/%d, want 2/3", s.Predators, s.Prey)
	}
	if s.AvgPredatorSkill != 5 || s.AvgPreySkill != 2 {
		t.Errorf("averages = %v/%v, want 5/2", s.AvgPredatorSkill, s.AvgPreySkill)
	}
	if s.AvgPredatorSatiety != 1.5 {
		t.Errorf("avg satiety = %v, want 1.5", s.AvgPredatorSatiety)
	}
}

func TestNewRoundStats(t *testing.T) {
	report := game.RoundReport{
		Round:           3,
		Winner:          game.WinnerPredator,
		PredatorBirths:  4,
		PredatorDeaths:  2,
		PreyDeaths:      3,
		Eaten:           2,
		Starved:         1,
		PredatorsCulled: 1,
		PreyCulled:      1,
		PredatorCells:   2,
		NeutralCells:    14,
	}
	s := NewRoundStats(report, board(predators(5), nil))

	if s.Round != 3 || s.Winner != game.WinnerPredator {
		t.Errorf("round/winner = %d/%s", s.Round, s.Winner)
	}
	if s.Culled != 2 || s.Eaten != 2 || s.Starved != 1 {
		t.Errorf("events = culled %d eaten %d starved %d", s.Culled, s.Eaten, s.Starved)
	}
	if s.Prey != 0 || s.AvgPreySkill != 0 {
		t.Errorf("empty prey stats = %d/%v, want zeros", s.Prey, s.AvgPreySkill)
	}
	if s.PredatorCells != 2 || s.NeutralCells != 14 {
		t.Errorf("cell tallies = %d/%d", s.PredatorCells, s.NeutralCells)
	}
}
