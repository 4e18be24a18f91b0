package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPredatorExtinction BookmarkType = "predator_extinction"
	BookmarkPreyExtinction     BookmarkType = "prey_extinction"
	BookmarkPredatorRecovery   BookmarkType = "predator_recovery"
	BookmarkPreyCrash          BookmarkType = "prey_crash"
	BookmarkStablePopulations  BookmarkType = "stable_populations"
)

// Bookmark marks a notable round of a game.
type Bookmark struct {
	Type        BookmarkType `csv:"Type" json:"type"`
	Round       int          `csv:"Round" json:"round"`
	Description string       `csv:"Description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"round", b.Round,
		"description", b.Description,
	)
}

// stableRounds is how many consecutive unchanged-ish rounds count as stable.
const stableRounds = 3

// BookmarkDetector watches the round log of one game for notable moments.
type BookmarkDetector struct {
	prev    *RoundStats
	predMin int // lowest predator count since the last recovery
	preyMax int // highest prey count since the last crash
	stable  int // consecutive rounds with both populations within 10%
}

// NewBookmarkDetector creates a detector for a new game.
func NewBookmarkDetector() *BookmarkDetector {
	return &BookmarkDetector{predMin: -1}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats RoundStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.prev != nil {
		if b := bd.checkExtinction(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPredatorRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPreyCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStable(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	if bd.predMin < 0 || stats.Predators < bd.predMin {
		bd.predMin = stats.Predators
	}
	bd.preyMax = max(bd.preyMax, stats.Prey)
	bd.prev = &stats
	return bookmarks
}

func (bd *BookmarkDetector) checkExtinction(stats RoundStats) *Bookmark {
	switch {
	case stats.Predators == 0 && bd.prev.Predators > 0:
		return &Bookmark{
			Type:        BookmarkPredatorExtinction,
			Round:       stats.Round,
			Description: fmt.Sprintf("Last %d predators died", bd.prev.Predators),
		}
	case stats.Prey == 0 && bd.prev.Prey > 0:
		return &Bookmark{
			Type:        BookmarkPreyExtinction,
			Round:       stats.Round,
			Description: fmt.Sprintf("Last %d prey died", bd.prev.Prey),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPredatorRecovery(stats RoundStats) *Bookmark {
	if bd.predMin <= 0 {
		return nil
	}
	if stats.Predators >= bd.predMin*2 && stats.Predators >= bd.predMin+4 {
		oldMin := bd.predMin
		bd.predMin = stats.Predators
		return &Bookmark{
			Type:        BookmarkPredatorRecovery,
			Round:       stats.Round,
			Description: fmt.Sprintf("Predator population recovered from %d to %d", oldMin, stats.Predators),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPreyCrash(stats RoundStats) *Bookmark {
	if bd.preyMax == 0 || stats.Prey == 0 {
		return nil
	}
	drop := 1.0 - float64(stats.Prey)/float64(bd.preyMax)
	if drop > 0.5 {
		oldPeak := bd.preyMax
		bd.preyMax = stats.Prey
		return &Bookmark{
			Type:        BookmarkPreyCrash,
			Round:       stats.Round,
			Description: fmt.Sprintf("Prey crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Prey),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStable(stats RoundStats) *Bookmark {
	if stats.Predators == 0 || stats.Prey == 0 {
		bd.stable = 0
		return nil
	}
	if within10(bd.prev.Predators, stats.Predators) && within10(bd.prev.Prey, stats.Prey) {
		bd.stable++
	} else {
		bd.stable = 0
	}
	if bd.stable == stableRounds { // once per stable stretch
		return &Bookmark{
			Type:        BookmarkStablePopulations,
			Round:       stats.Round,
			Description: fmt.Sprintf("Stable at %d predators, %d prey for %d rounds", stats.Predators, stats.Prey, stableRounds),
		}
	}
	return nil
}

func within10(prev, cur int) bool {
	if prev == 0 {
		return cur == 0
	}
	d := float64(cur-prev) / float64(prev)
	return d >= -0.1 && d <= 0.1
}
