package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/game"
	"github.com/pthm-cable/predprey/server"
	"github.com/pthm-cable/predprey/telemetry"
)

// settings collects repeated -set key=value flags.
type settings []string

func (s *settings) String() string { return strings.Join(*s, ",") }

func (s *settings) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	rounds := flag.Int("rounds", 0, "Rounds per game (0 = use config)")
	games := flag.Int("games", 1, "Games to play in headless mode")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output per-round stats via slog")
	serveAddr := flag.String("serve", "", "Serve the websocket driver on this address instead of playing headless")
	var overrides settings
	flag.Var(&overrides, "set", "Override a setting, e.g. -set board.length=6 (repeatable)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	for _, kv := range overrides {
		if err := cfg.SetString(kv); err != nil {
			slog.Error("failed to apply setting", "setting", kv, "error", err)
			os.Exit(1)
		}
	}
	if *rounds > 0 {
		cfg.Game.Rounds = *rounds
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	exporter, err := telemetry.NewExporter(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer exporter.Close()

	if *serveAddr != "" {
		srv := server.New(cfg, rngSeed, exporter)
		if err := srv.ListenAndServe(*serveAddr); err != nil {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	slog.Info("starting headless lab",
		"seed", rngSeed,
		"board", cfg.Board.Length,
		"rounds", cfg.Game.Rounds,
		"games", *games,
	)

	recorder := telemetry.NewRecorder()
	for i := 0; i < *games; i++ {
		if err := playGame(cfg, rngSeed+int64(i), recorder, exporter, *logStats); err != nil {
			slog.Error("game failed", "game", i+1, "error", err)
			os.Exit(1)
		}
	}

	if rec, ok := recorder.LastCompleted(); ok {
		slog.Info("last game",
			"seed", rec.Seed,
			"predator_wins", rec.Wins.Predator,
			"prey_wins", rec.Wins.Prey,
			"ties", rec.Wins.Tie,
			"bookmarks", len(rec.Bookmarks),
		)
	}
}

// playGame plays one game from start to end, recording and exporting it.
func playGame(cfg *config.Config, seed int64, recorder *telemetry.Recorder, exporter *telemetry.Exporter, logStats bool) error {
	g, err := game.New(cfg, seed)
	if err != nil {
		return err
	}
	if err := exporter.BeginGame(); err != nil {
		return err
	}

	snap := g.Snapshot()
	recorder.RecordGameStart(cfg, seed, snap)
	if cur, ok := recorder.Current(); ok {
		if err := exporter.WriteRound(cur.Rounds[0]); err != nil {
			return err
		}
	}

	for !g.Finished() {
		report, err := g.ResolveRound()
		if err != nil {
			return fmt.Errorf("resolving round: %w", err)
		}
		snap = g.Snapshot()
		stats, err := recorder.RecordRound(report, snap)
		if err != nil {
			return err
		}
		if logStats {
			stats.LogStats()
		}
		if err := exporter.WriteRound(stats); err != nil {
			return err
		}
	}

	if err := recorder.RecordGameEnd(snap); err != nil {
		return err
	}
	rec, _ := recorder.LastCompleted()
	if err := exporter.WriteGame(rec); err != nil {
		return err
	}

	slog.Info("game finished",
		"seed", seed,
		"rounds", g.Round(),
		"predators", snap.Predators,
		"prey", snap.Prey,
	)
	if logStats {
		slog.LogAttrs(context.Background(), slog.LevelInfo, "perf", g.Perf().LogAttrs()...)
	}
	return nil
}
