package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// Output file names.
const (
	RoundLogFile   = "round_log.csv"
	StartHistFile  = "start_of_game.csv"
	EndHistFile    = "end_of_game.csv"
	BookmarksFile  = "bookmarks.csv"
	ConfigFile     = "config.yaml"
	LastGameSubdir = "last_game"
)

// Exporter writes game records to an output directory.
//
// The round log of the game in progress is streamed to dir/round_log.csv.
// A completed game is written to dir/last_game/, replacing the previous one.
type Exporter struct {
	dir           string
	roundLog      *os.File
	headerWritten bool
}

// NewExporter creates the output directory.
// Returns nil if dir is empty (output disabled); every method of a nil
// exporter is a no-op.
func NewExporter(dir string) (*Exporter, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Exporter{dir: dir}, nil
}

// BeginGame truncates the streamed round log.
func (e *Exporter) BeginGame() error {
	if e == nil {
		return nil
	}
	if e.roundLog != nil {
		if err := e.roundLog.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", RoundLogFile, err)
		}
	}
	f, err := os.Create(filepath.Join(e.dir, RoundLogFile))
	if err != nil {
		return fmt.Errorf("creating %s: %w", RoundLogFile, err)
	}
	e.roundLog = f
	e.headerWritten = false
	return nil
}

// WriteRound appends one row to the streamed round log.
func (e *Exporter) WriteRound(stats RoundStats) error {
	if e == nil {
		return nil
	}
	if e.roundLog == nil {
		if err := e.BeginGame(); err != nil {
			return err
		}
	}

	records := []RoundStats{stats}
	if !e.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, e.roundLog); err != nil {
			return fmt.Errorf("writing round log: %w", err)
		}
		e.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, e.roundLog); err != nil {
		return fmt.Errorf("writing round log: %w", err)
	}
	return nil
}

// WriteGame replaces the last_game directory with a completed game.
func (e *Exporter) WriteGame(record *GameRecord) error {
	if e == nil || record == nil {
		return nil
	}
	dir := filepath.Join(e.dir, LastGameSubdir)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing %s: %w", LastGameSubdir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", LastGameSubdir, err)
	}

	if err := writeCSV(filepath.Join(dir, RoundLogFile), record.Rounds); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, StartHistFile), []HistogramRow(record.Start)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, EndHistFile), []HistogramRow(record.End)); err != nil {
		return err
	}
	if len(record.Bookmarks) > 0 {
		if err := writeCSV(filepath.Join(dir, BookmarksFile), record.Bookmarks); err != nil {
			return err
		}
	}
	if record.Board != nil {
		if err := SaveBoard(filepath.Join(dir, BoardFileName), record.Seed, *record.Board); err != nil {
			return err
		}
	}
	if record.Config != nil {
		if err := record.Config.WriteYAML(filepath.Join(dir, ConfigFile)); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV[T any](path string, records []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if err := gocsv.Marshal(records, f); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// Dir returns the output directory path.
func (e *Exporter) Dir() string {
	if e == nil {
		return ""
	}
	return e.dir
}

// Close closes the streamed round log.
func (e *Exporter) Close() error {
	if e == nil || e.roundLog == nil {
		return nil
	}
	err := e.roundLog.Close()
	e.roundLog = nil
	return err
}
