package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/systems"
)

// Status tells whether a round was played.
type Status string

const (
	StatusOK       Status = "ok"
	StatusFinished Status = "finished" // round limit reached, nothing changed
)

// Winner names the species that came out ahead in a round.
type Winner string

const (
	WinnerPredator Winner = "predator"
	WinnerPrey     Winner = "prey"
	WinnerTie      Winner = "tie"
	WinnerNone     Winner = "n/a" // no round played, e.g. the starting row
)

// RoundReport aggregates every cell outcome of one round.
// Deaths include culled animals.
type RoundReport struct {
	Round  int    `json:"round"`
	Status Status `json:"status"`
	Winner Winner `json:"winner"`

	PredatorsBefore int `json:"predators_before"`
	PreyBefore      int `json:"prey_before"`
	PredatorsAfter  int `json:"predators_after"`
	PreyAfter       int `json:"prey_after"`

	PredatorBirths  int `json:"predator_births"`
	PredatorDeaths  int `json:"predator_deaths"`
	PreyBirths      int `json:"prey_births"`
	PreyDeaths      int `json:"prey_deaths"`
	PredatorsCulled int `json:"predators_culled"`
	PreyCulled      int `json:"prey_culled"`
	Eaten           int `json:"eaten"`
	Starved         int `json:"starved"`

	// Cell tag tallies
	PredatorCells int `json:"predator_cells"`
	PreyCells     int `json:"prey_cells"`
	NeutralCells  int `json:"neutral_cells"`

	Outcomes []systems.CellOutcome `json:"outcomes,omitempty"`
}

// PredatorChange is the net change of the predator population.
func (r RoundReport) PredatorChange() int { return r.PredatorBirths - r.PredatorDeaths }

// PreyChange is the net change of the prey population.
func (r RoundReport) PreyChange() int { return r.PreyBirths - r.PreyDeaths }

// CellScore sums the cell tags: negative favors predators, positive prey.
func (r RoundReport) CellScore() int { return r.PreyCells - r.PredatorCells }

func (r *RoundReport) add(o systems.CellOutcome) {
	r.PredatorBirths += o.PredatorBirths
	r.PredatorDeaths += o.PredatorDeaths
	r.PreyBirths += o.PreyBirths
	r.PreyDeaths += o.PreyDeaths
	r.Eaten += o.Eaten
	r.Starved += o.Starved
	switch o.Favor {
	case systems.FavorPredator:
		r.PredatorCells++
	case systems.FavorPrey:
		r.PreyCells++
	default:
		r.NeutralCells++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// DecideWinner applies a round winner rule to a report.
func DecideWinner(rule string, r RoundReport) Winner {
	var score int // positive favors prey
	switch rule {
	case config.WinnerCellMajority:
		score = r.CellScore()
	default:
		score = r.PreyChange() - r.PredatorChange()
	}
	switch {
	case score > 0:
		return WinnerPrey
	case score < 0:
		return WinnerPredator
	}
	return WinnerTie
}

// ResolveRound plays one round: placement, every cell in row-major order,
// then the population cap.
//
// Once the configured number of rounds has been played it returns a report
// with StatusFinished and leaves the grid untouched. An error wraps
// systems.ErrInvariant; the board may be half resolved, so every later call
// returns the same error until Reset.
func (g *Grid) ResolveRound() (RoundReport, error) {
	if g.err != nil {
		return RoundReport{}, g.err
	}
	predators := g.registry.Count(components.SpeciesPredator)
	prey := g.registry.Count(components.SpeciesPrey)
	if g.Finished() {
		return RoundReport{
			Round:           g.round,
			Status:          StatusFinished,
			Winner:          WinnerNone,
			PredatorsBefore: predators,
			PreyBefore:      prey,
			PredatorsAfter:  predators,
			PreyAfter:       prey,
		}, nil
	}

	report := RoundReport{
		Round:           g.round + 1,
		Status:          StatusOK,
		PredatorsBefore: predators,
		PreyBefore:      prey,
		Outcomes:        make([]systems.CellOutcome, 0, len(g.arena)),
	}

	start := time.Now()
	if !g.placed {
		if err := g.replace(); err != nil {
			g.err = fmt.Errorf("round %d placement: %w", report.Round, err)
			return RoundReport{}, g.err
		}
	}
	g.perf.Record(PhasePlacement, time.Since(start))

	start = time.Now()
	for i := range g.arena {
		out, err := g.arena[i].Resolve(g.registry, g.rules, report.Round, g.rng)
		if err != nil {
			g.err = fmt.Errorf("round %d: %w", report.Round, err)
			return RoundReport{}, g.err
		}
		report.add(out)
	}
	g.perf.Record(PhaseResolve, time.Since(start))

	start = time.Now()
	report.PredatorsCulled = g.cull(components.SpeciesPredator)
	report.PreyCulled = g.cull(components.SpeciesPrey)
	report.PredatorDeaths += report.PredatorsCulled
	report.PreyDeaths += report.PreyCulled
	g.perf.Record(PhaseCull, time.Since(start))

	report.PredatorsAfter = g.registry.Count(components.SpeciesPredator)
	report.PreyAfter = g.registry.Count(components.SpeciesPrey)
	report.Winner = DecideWinner(g.cfg.Scoring.RoundWinner, report)

	g.round++
	g.placed = false

	slog.Debug("round_resolved",
		"round", report.Round,
		"predators", report.PredatorsAfter,
		"prey", report.PreyAfter,
		"eaten", report.Eaten,
		"starved", report.Starved,
		"winner", string(report.Winner),
	)
	return report, nil
}
