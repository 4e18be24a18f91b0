package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/telemetry"
)

type options struct {
	config     string
	rounds     int
	seeds      int
	maxEvals   int
	population int
	out        string
}

func main() {
	var opts options
	flag.StringVar(&opts.config, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&opts.rounds, "rounds", 50, "Rounds per game")
	flag.IntVar(&opts.seeds, "seeds", 5, "Games per evaluation, one per seed")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Evaluation budget")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population (0 = 4 + 1.5*dim)")
	flag.StringVar(&opts.out, "output", "", "Directory for the log, best config and best game")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(opts); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.out == "" {
		return fmt.Errorf("-output is required")
	}
	if err := os.MkdirAll(opts.out, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	base, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	base.Game.Rounds = opts.rounds

	params := NewParamVector()
	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(42 + 1000*i)
	}
	evaluator := NewFitnessEvaluator(params, seeds, base)

	elog, err := newEvalLog(filepath.Join(opts.out, "optimize_log.csv"), params)
	if err != nil {
		return err
	}
	defer elog.close()

	pop := opts.population
	if pop == 0 {
		pop = 4 + 3*params.Dim()/2
	}
	slog.Info("optimize_start",
		"params", params.Dim(),
		"population", pop,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"rounds", opts.rounds,
	)

	started := time.Now()
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			values := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(values)
			elog.record(fitness, evaluator.LastBalance(), values)
			slog.Info("eval",
				"n", elog.evals,
				"fitness", fitness,
				"balance", evaluator.LastBalance(),
				"best", elog.bestFitness,
				"elapsed", time.Since(started).Round(time.Second).String(),
			)
			return fitness
		},
	}
	// Sequential evaluations; each one already plays its seeds in parallel.
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: pop}

	if _, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method); err != nil {
		slog.Warn("optimizer stopped", "error", err)
	}
	if elog.best == nil {
		return fmt.Errorf("no evaluation completed")
	}

	attrs := []any{"evals", elog.evals, "fitness", elog.bestFitness}
	for i, spec := range params.Specs {
		attrs = append(attrs, spec.Path, elog.best[i])
	}
	slog.Info("optimize_done", attrs...)

	best := base.Clone()
	params.ApplyToConfig(best, elog.best)
	if err := best.WriteYAML(filepath.Join(opts.out, "best_config.yaml")); err != nil {
		return err
	}

	exporter, err := telemetry.NewExporter(filepath.Join(opts.out, "best_game"))
	if err != nil {
		return err
	}
	return exporter.WriteGame(evaluator.BestRecord())
}

// evalLog appends one CSV row per evaluation and tracks the best one.
type evalLog struct {
	f *os.File
	w *csv.Writer

	evals       int
	bestFitness float64
	best        []float64
}

func newEvalLog(path string, params *ParamVector) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	header := []string{"eval", "fitness", "balance"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing eval log header: %w", err)
	}
	return &evalLog{f: f, w: w}, nil
}

func (l *evalLog) record(fitness, balance float64, values []float64) {
	l.evals++
	if l.best == nil || fitness < l.bestFitness {
		l.bestFitness = fitness
		l.best = values
	}

	row := []string{
		strconv.Itoa(l.evals),
		strconv.FormatFloat(fitness, 'f', 3, 64),
		strconv.FormatFloat(balance, 'f', 3, 64),
	}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 4, 64))
	}
	if err := l.w.Write(row); err != nil {
		slog.Warn("eval log write failed", "error", err)
	}
	l.w.Flush()
}

func (l *evalLog) close() {
	l.w.Flush()
	l.f.Close()
}
