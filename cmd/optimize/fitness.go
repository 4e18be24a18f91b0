package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/game"
	"github.com/pthm-cable/predprey/telemetry"
)

// FitnessEvaluator plays headless games and scores them.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestRecord  *telemetry.GameRecord
	lastBalance float64 // balance from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestRecord returns the game record of the best seed of the best evaluation.
func (fe *FitnessEvaluator) BestRecord() *telemetry.GameRecord {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestRecord
}

// LastBalance returns the balance score from the most recent evaluation.
func (fe *FitnessEvaluator) LastBalance() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastBalance
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	balance float64
	record  *telemetry.GameRecord
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative coexistence rounds, boosted by how evenly round wins
// were split.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	if err := cfg.Validate(); err != nil {
		return 0 // worst possible: no rounds of coexistence
	}

	// Each seed gets its own grid, so seeds run in parallel.
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			rec, coexisted := playGame(cfg, s)
			if rec == nil {
				return
			}
			balance := computeBalance(rec.Wins)
			results[idx] = seedResult{
				fitness: computeFitness(coexisted, balance),
				balance: balance,
				record:  rec,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalBalance float64
	bestSeed := math.Inf(1)
	var bestSeedRecord *telemetry.GameRecord
	for _, r := range results {
		totalFitness += r.fitness
		totalBalance += r.balance
		if r.record != nil && r.fitness < bestSeed {
			bestSeed = r.fitness
			bestSeedRecord = r.record
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestRecord = bestSeedRecord
	}
	fe.lastBalance = totalBalance / n
	fe.mu.Unlock()

	return avgFitness
}

// playGame plays one game until the round limit or until a species dies out.
// It returns the record and the number of rounds both species survived.
func playGame(cfg *config.Config, seed int64) (*telemetry.GameRecord, int) {
	g, err := game.New(cfg, seed)
	if err != nil {
		return nil, 0
	}
	rec := telemetry.NewRecorder()
	rec.RecordGameStart(cfg, seed, g.Snapshot())

	coexisted := 0
	for !g.Finished() {
		report, err := g.ResolveRound()
		if err != nil {
			return nil, 0
		}
		snap := g.Snapshot()
		if _, err := rec.RecordRound(report, snap); err != nil {
			return nil, 0
		}
		if snap.Predators == 0 || snap.Prey == 0 {
			break
		}
		coexisted++
	}

	if err := rec.RecordGameEnd(g.Snapshot()); err != nil {
		return nil, 0
	}
	last, _ := rec.LastCompleted()
	return last, coexisted
}

// computeBalance is 1 when predators and prey won equally often, 0 when one
// side won every decided round.
func computeBalance(w telemetry.Wins) float64 {
	decided := w.Predator + w.Prey
	if decided == 0 {
		return 1
	}
	return 1 - math.Abs(float64(w.Predator-w.Prey))/float64(decided)
}

func computeFitness(coexisted int, balance float64) float64 {
	return -float64(coexisted) * (1 + balance)
}
