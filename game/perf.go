package game

import (
	"log/slog"
	"slices"
	"time"
)

// Round phases, in the order ResolveRound runs them.
const (
	PhasePlacement = "placement"
	PhaseResolve   = "resolve"
	PhaseCull      = "cull"
)

// perfWindow is the number of recent rounds averaged per phase.
const perfWindow = 100

// phaseTimes is a ring of the most recent durations of one phase.
type phaseTimes struct {
	ring []time.Duration
	next int
	sum  time.Duration
}

func (t *phaseTimes) add(d time.Duration) {
	if len(t.ring) < perfWindow {
		t.ring = append(t.ring, d)
	} else {
		t.sum -= t.ring[t.next]
		t.ring[t.next] = d
		t.next = (t.next + 1) % perfWindow
	}
	t.sum += d
}

func (t *phaseTimes) mean() time.Duration {
	if len(t.ring) == 0 {
		return 0
	}
	return t.sum / time.Duration(len(t.ring))
}

// PerfStats keeps rolling per-phase round timings.
type PerfStats struct {
	phases map[string]*phaseTimes
	order  []string // first-recorded order
}

// NewPerfStats returns an empty collector.
func NewPerfStats() *PerfStats {
	return &PerfStats{phases: make(map[string]*phaseTimes)}
}

// Record adds one timing for a phase.
func (p *PerfStats) Record(phase string, d time.Duration) {
	t, ok := p.phases[phase]
	if !ok {
		t = &phaseTimes{}
		p.phases[phase] = t
		p.order = append(p.order, phase)
	}
	t.add(d)
}

// Avg is the mean of a phase over the window; 0 for an unknown phase.
func (p *PerfStats) Avg(phase string) time.Duration {
	if t, ok := p.phases[phase]; ok {
		return t.mean()
	}
	return 0
}

// Total is the mean time of a whole round.
func (p *PerfStats) Total() time.Duration {
	var total time.Duration
	for _, t := range p.phases {
		total += t.mean()
	}
	return total
}

// Phases lists the recorded phases in the order they first ran.
func (p *PerfStats) Phases() []string {
	return slices.Clone(p.order)
}

// LogAttrs renders the averages for slog.LogAttrs.
func (p *PerfStats) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.Duration("round", p.Total())}
	for _, phase := range p.order {
		attrs = append(attrs, slog.Duration(phase, p.Avg(phase)))
	}
	return attrs
}
