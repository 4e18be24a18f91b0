package telemetry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pthm-cable/predprey/game"
)

// BoardVersion is incremented when the board file format changes.
const BoardVersion = 1

// BoardFile is a saved board with the seed that produced it.
type BoardFile struct {
	Version int               `json:"version"`
	Seed    int64             `json:"seed"`
	Board   game.GridSnapshot `json:"board"`
}

// BoardFileName is the end-of-game board written next to the CSV files.
const BoardFileName = "board.json"

// SaveBoard writes a board file to path.
func SaveBoard(path string, seed int64, snap game.GridSnapshot) error {
	data, err := json.MarshalIndent(BoardFile{Version: BoardVersion, Seed: seed, Board: snap}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write board: %w", err)
	}
	return nil
}

// LoadBoard reads a board file from disk.
func LoadBoard(path string) (*BoardFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}

	var f BoardFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal board: %w", err)
	}
	if f.Version != BoardVersion {
		return nil, fmt.Errorf("board version %d, want %d", f.Version, BoardVersion)
	}
	return &f, nil
}
