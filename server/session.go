package server

import (
	"fmt"

	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/game"
	"github.com/pthm-cable/predprey/telemetry"
)

// Client operations.
const (
	OpStart    = "start"
	OpRound    = "round"
	OpReset    = "reset"
	OpSnapshot = "snapshot"
	OpLastGame = "last_game"
)

// Reply types.
const (
	TypeStarted  = "started"
	TypeRound    = "round"
	TypeGameOver = "game_over"
	TypeSnapshot = "snapshot"
	TypeLastGame = "last_game"
	TypeError    = "error"
)

// Command is one client message.
type Command struct {
	Op   string `json:"op"`
	Seed *int64 `json:"seed,omitempty"` // start only
}

// Reply is one server message.
type Reply struct {
	Type     string                `json:"type"`
	Report   *game.RoundReport     `json:"report,omitempty"`
	Snapshot *game.GridSnapshot    `json:"snapshot,omitempty"`
	Record   *telemetry.GameRecord `json:"record,omitempty"`
	Error    string                `json:"error,omitempty"`
}

func errorReply(format string, args ...any) Reply {
	return Reply{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}

// Session is one client's lab: a grid, its recorder and the shared exporter.
// Commands are handled one at a time.
type Session struct {
	cfg      *config.Config
	seed     int64
	grid     *game.Grid
	recorder *telemetry.Recorder
	export   func(*telemetry.GameRecord) error
}

// NewSession creates a session that has not started a game yet.
// export is called with every completed game; it may be nil.
func NewSession(cfg *config.Config, seed int64, export func(*telemetry.GameRecord) error) *Session {
	return &Session{
		cfg:      cfg.Clone(),
		seed:     seed,
		recorder: telemetry.NewRecorder(),
		export:   export,
	}
}

// Handle runs one command and returns the replies to send, in order.
func (s *Session) Handle(cmd Command) []Reply {
	switch cmd.Op {
	case OpStart:
		return s.start(cmd.Seed)
	case OpReset:
		if s.grid == nil {
			return []Reply{errorReply("no game started")}
		}
		return s.start(nil)
	case OpRound:
		return s.round()
	case OpSnapshot:
		if s.grid == nil {
			return []Reply{errorReply("no game started")}
		}
		snap := s.grid.Snapshot()
		return []Reply{{Type: TypeSnapshot, Snapshot: &snap}}
	case OpLastGame:
		rec, ok := s.recorder.LastCompleted()
		if !ok {
			return []Reply{errorReply("no completed game")}
		}
		return []Reply{{Type: TypeLastGame, Record: rec}}
	}
	return []Reply{errorReply("unknown op %q", cmd.Op)}
}

// start builds a fresh game, or resets the current one to its seed.
func (s *Session) start(seed *int64) []Reply {
	if seed != nil || s.grid == nil {
		if seed != nil {
			s.seed = *seed
		}
		g, err := game.New(s.cfg, s.seed)
		if err != nil {
			return []Reply{errorReply("%v", err)}
		}
		s.grid = g
	} else if err := s.grid.Reset(); err != nil {
		return []Reply{errorReply("%v", err)}
	}

	snap := s.grid.Snapshot()
	s.recorder.RecordGameStart(s.cfg, s.seed, snap)
	return []Reply{{Type: TypeStarted, Snapshot: &snap}}
}

func (s *Session) round() []Reply {
	if s.grid == nil {
		return []Reply{errorReply("no game started")}
	}
	report, err := s.grid.ResolveRound()
	if err != nil {
		return []Reply{errorReply("%v", err)}
	}
	snap := s.grid.Snapshot()
	replies := []Reply{{Type: TypeRound, Report: &report, Snapshot: &snap}}
	if report.Status == game.StatusFinished {
		return replies
	}

	if _, err := s.recorder.RecordRound(report, snap); err != nil {
		return append(replies, errorReply("%v", err))
	}
	if !s.grid.Finished() {
		return replies
	}

	if err := s.recorder.RecordGameEnd(snap); err != nil {
		return append(replies, errorReply("%v", err))
	}
	rec, _ := s.recorder.LastCompleted()
	if s.export != nil {
		if err := s.export(rec); err != nil {
			return append(replies, errorReply("exporting game: %v", err))
		}
	}
	return append(replies, Reply{Type: TypeGameOver, Record: rec})
}
