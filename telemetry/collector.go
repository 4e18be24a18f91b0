package telemetry

import (
	"errors"
	"slices"

	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/game"
)

// ErrNoGame is returned when rounds are recorded before a game has started.
var ErrNoGame = errors.New("no game in progress")

// Wins tallies round winners over a game.
type Wins struct {
	Predator int `json:"predator"`
	Prey     int `json:"prey"`
	Tie      int `json:"tie"`
}

func (w *Wins) add(winner game.Winner) {
	switch winner {
	case game.WinnerPredator:
		w.Predator++
	case game.WinnerPrey:
		w.Prey++
	case game.WinnerTie:
		w.Tie++
	}
}

// GameRecord is the log of one game.
type GameRecord struct {
	Seed      int64          `json:"seed"`
	Config    *config.Config `json:"-"`
	Rounds    []RoundStats   `json:"rounds"` // Rounds[0] is the starting board
	Start     Histogram      `json:"start"`
	End       Histogram      `json:"end,omitempty"`
	Wins      Wins           `json:"wins"`
	Bookmarks []Bookmark     `json:"bookmarks,omitempty"`

	Board *game.GridSnapshot `json:"-"` // end-of-game board
}

// Clone returns a deep copy of the record.
func (r *GameRecord) Clone() *GameRecord {
	out := *r
	if r.Config != nil {
		out.Config = r.Config.Clone()
	}
	out.Rounds = slices.Clone(r.Rounds)
	out.Start = slices.Clone(r.Start)
	out.End = slices.Clone(r.End)
	out.Bookmarks = slices.Clone(r.Bookmarks)
	if r.Board != nil {
		board := r.Board.Clone()
		out.Board = &board
	}
	return &out
}

// Recorder accumulates the current game's log and keeps the last completed one.
type Recorder struct {
	current  *GameRecord
	last     *GameRecord
	detector *BookmarkDetector
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordGameStart begins a new game log with the starting board as round 0.
// A game already in progress is discarded without touching the last completed game.
func (r *Recorder) RecordGameStart(cfg *config.Config, seed int64, snap game.GridSnapshot) {
	r.current = &GameRecord{
		Seed:   seed,
		Config: cfg.Clone(),
		Rounds: []RoundStats{StartingStats(snap)},
		Start:  NewHistogram(snap),
	}
	r.detector = NewBookmarkDetector()
	r.detector.Check(r.current.Rounds[0])
}

// RecordRound appends a resolved round. Reports of finished games are ignored.
func (r *Recorder) RecordRound(report game.RoundReport, snap game.GridSnapshot) (RoundStats, error) {
	if r.current == nil {
		return RoundStats{}, ErrNoGame
	}
	if report.Status == game.StatusFinished {
		return RoundStats{}, nil
	}

	stats := NewRoundStats(report, snap)
	r.current.Rounds = append(r.current.Rounds, stats)
	r.current.Wins.add(stats.Winner)
	for _, b := range r.detector.Check(stats) {
		b.LogBookmark()
		r.current.Bookmarks = append(r.current.Bookmarks, b)
	}
	return stats, nil
}

// RecordGameEnd stores the end-of-game histogram and seals the game.
func (r *Recorder) RecordGameEnd(snap game.GridSnapshot) error {
	if r.current == nil {
		return ErrNoGame
	}
	r.current.End = NewHistogram(snap)
	board := snap.Clone()
	r.current.Board = &board
	return r.FinalizeGame()
}

// FinalizeGame seals the current game as the last completed one.
func (r *Recorder) FinalizeGame() error {
	if r.current == nil {
		return ErrNoGame
	}
	r.last = r.current
	r.current = nil
	r.detector = nil
	return nil
}

// Current returns a copy of the game in progress.
func (r *Recorder) Current() (*GameRecord, bool) {
	if r.current == nil {
		return nil, false
	}
	return r.current.Clone(), true
}

// LastCompleted returns a copy of the most recently finalized game.
func (r *Recorder) LastCompleted() (*GameRecord, bool) {
	if r.last == nil {
		return nil, false
	}
	return r.last.Clone(), true
}
