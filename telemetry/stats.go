package telemetry

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/game"
)

// RoundStats holds the statistics of one round. Round 0 is the starting board.
type RoundStats struct {
	Round            int         `csv:"Round" json:"round"`
	Predators        int         `csv:"Predator Population" json:"predators"`
	Prey             int         `csv:"Prey Population" json:"prey"`
	AvgPredatorSkill float64     `csv:"Average Predator Level" json:"avg_predator_skill"`
	AvgPreySkill     float64     `csv:"Average Prey Level" json:"avg_prey_skill"`
	Winner           game.Winner `csv:"Animal Team Winner" json:"winner"`

	// Spread and hunger, sampled at round end
	PredatorSkillStd   float64 `csv:"Predator Level Spread" json:"predator_skill_std"`
	PreySkillStd       float64 `csv:"Prey Level Spread" json:"prey_skill_std"`
	AvgPredatorSatiety float64 `csv:"Average Predator Hunger Level" json:"avg_predator_satiety"`

	// Events during the round
	PredatorBirths int `csv:"Predator Births" json:"predator_births"`
	PredatorDeaths int `csv:"Predator Deaths" json:"predator_deaths"`
	PreyBirths     int `csv:"Prey Births" json:"prey_births"`
	PreyDeaths     int `csv:"Prey Deaths" json:"prey_deaths"`
	Eaten          int `csv:"Prey Eaten" json:"eaten"`
	Starved        int `csv:"Predators Starved" json:"starved"`
	Culled         int `csv:"Culled" json:"culled"`

	// Cell tags
	PredatorCells int `csv:"Predator Cells" json:"predator_cells"`
	PreyCells     int `csv:"Prey Cells" json:"prey_cells"`
	NeutralCells  int `csv:"Neutral Cells" json:"neutral_cells"`
}

// NewRoundStats builds the statistics for a resolved round from its report
// and the board after it.
func NewRoundStats(report game.RoundReport, snap game.GridSnapshot) RoundStats {
	s := sampleBoard(snap)
	s.Round = report.Round
	s.Winner = report.Winner
	s.PredatorBirths = report.PredatorBirths
	s.PredatorDeaths = report.PredatorDeaths
	s.PreyBirths = report.PreyBirths
	s.PreyDeaths = report.PreyDeaths
	s.Eaten = report.Eaten
	s.Starved = report.Starved
	s.Culled = report.PredatorsCulled + report.PreyCulled
	s.PredatorCells = report.PredatorCells
	s.PreyCells = report.PreyCells
	s.NeutralCells = report.NeutralCells
	return s
}

// StartingStats builds the round 0 row for a freshly placed board.
func StartingStats(snap game.GridSnapshot) RoundStats {
	s := sampleBoard(snap)
	s.Round = 0
	s.Winner = game.WinnerNone
	return s
}

func sampleBoard(snap game.GridSnapshot) RoundStats {
	predators := snap.Animals(components.SpeciesPredator)
	prey := snap.Animals(components.SpeciesPrey)

	var s RoundStats
	s.Predators = len(predators)
	s.Prey = len(prey)
	s.AvgPredatorSkill, s.PredatorSkillStd = SkillStats(predators)
	s.AvgPreySkill, s.PreySkillStd = SkillStats(prey)

	satiety := make([]float64, len(predators))
	for i, a := range predators {
		satiety[i] = float64(a.Satiety)
	}
	if len(satiety) > 0 {
		s.AvgPredatorSatiety = Round1(stat.Mean(satiety, nil))
	}
	return s
}

// SkillStats returns the mean and standard deviation of the animals' skill,
// rounded to one decimal. An empty population yields zeros.
func SkillStats(animals []components.Animal) (mean, std float64) {
	if len(animals) == 0 {
		return 0, 0
	}
	skills := make([]float64, len(animals))
	for i, a := range animals {
		skills[i] = float64(a.Skill)
	}
	if len(skills) == 1 {
		return Round1(skills[0]), 0
	}
	mean, std = stat.MeanStdDev(skills, nil)
	return Round1(mean), Round1(std)
}

// Round1 rounds to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// LogValue implements slog.LogValuer for structured logging.
func (s RoundStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("round", s.Round),
		slog.Int("predators", s.Predators),
		slog.Int("prey", s.Prey),
		slog.Float64("avg_predator_skill", s.AvgPredatorSkill),
		slog.Float64("avg_prey_skill", s.AvgPreySkill),
		slog.String("winner", string(s.Winner)),
		slog.Float64("avg_predator_satiety", s.AvgPredatorSatiety),
		slog.Int("eaten", s.Eaten),
		slog.Int("starved", s.Starved),
		slog.Int("culled", s.Culled),
	)
}

// LogStats logs the round stats using slog.
func (s RoundStats) LogStats() {
	slog.Info("stats",
		"round", s.Round,
		"predators", s.Predators,
		"prey", s.Prey,
		"avg_predator_skill", s.AvgPredatorSkill,
		"avg_prey_skill", s.AvgPreySkill,
		"predator_skill_std", s.PredatorSkillStd,
		"prey_skill_std", s.PreySkillStd,
		"avg_predator_satiety", s.AvgPredatorSatiety,
		"predator_births", s.PredatorBirths,
		"predator_deaths", s.PredatorDeaths,
		"prey_births", s.PreyBirths,
		"prey_deaths", s.PreyDeaths,
		"eaten", s.Eaten,
		"starved", s.Starved,
		"culled", s.Culled,
		"predator_cells", s.PredatorCells,
		"prey_cells", s.PreyCells,
		"neutral_cells", s.NeutralCells,
		"winner", string(s.Winner),
	)
}
