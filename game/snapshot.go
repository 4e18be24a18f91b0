package game

import (
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/systems"
)

// CellView is a read-only copy of one cell's residents.
type CellView struct {
	Row       int                 `json:"row"`
	Col       int                 `json:"col"`
	Predators []components.Animal `json:"predators"`
	Prey      []components.Animal `json:"prey"`
}

// GridSnapshot is a deep copy of the board at one moment.
// Mutating it never affects the grid.
type GridSnapshot struct {
	Round     int        `json:"round"`
	Rounds    int        `json:"rounds"`
	Size      int        `json:"size"`
	Predators int        `json:"predators"`
	Prey      int        `json:"prey"`
	Cells     []CellView `json:"cells"` // row-major
}

// Snapshot copies the current board.
func (g *Grid) Snapshot() GridSnapshot {
	s := GridSnapshot{
		Round:     g.round,
		Rounds:    g.cfg.Game.Rounds,
		Size:      g.size,
		Predators: g.registry.Count(components.SpeciesPredator),
		Prey:      g.registry.Count(components.SpeciesPrey),
		Cells:     make([]CellView, len(g.arena)),
	}
	for i := range g.arena {
		s.Cells[i] = g.view(&g.arena[i])
	}
	return s
}

func (g *Grid) view(c *systems.Cell) CellView {
	return CellView{
		Row:       c.Row,
		Col:       c.Col,
		Predators: g.animals(c.Predators),
		Prey:      g.animals(c.Prey),
	}
}

func (g *Grid) animals(entities []ecs.Entity) []components.Animal {
	out := make([]components.Animal, len(entities))
	for i, e := range entities {
		out[i] = *g.registry.Get(e)
	}
	return out
}

// Cell returns the view at (row, col).
func (s GridSnapshot) Cell(row, col int) CellView {
	return s.Cells[row*s.Size+col]
}

// Animals returns every animal of a species, in row-major cell order.
func (s GridSnapshot) Animals(species components.Species) []components.Animal {
	var out []components.Animal
	for _, c := range s.Cells {
		if species == components.SpeciesPredator {
			out = append(out, c.Predators...)
		} else {
			out = append(out, c.Prey...)
		}
	}
	return out
}

// Rows returns the cells row by row.
func (s GridSnapshot) Rows() [][]CellView {
	rows := make([][]CellView, s.Size)
	for r := range rows {
		rows[r] = s.Cells[r*s.Size : (r+1)*s.Size : (r+1)*s.Size]
	}
	return rows
}

// Columns returns the cells column by column, each top to bottom.
func (s GridSnapshot) Columns() [][]CellView {
	cols := make([][]CellView, s.Size)
	for c := range cols {
		cols[c] = make([]CellView, s.Size)
		for r := range s.Size {
			cols[c][r] = s.Cell(r, c)
		}
	}
	return cols
}

// Diagonals returns the anti-diagonals: diagonal k holds the cells with
// row+col == k, ordered by column.
func (s GridSnapshot) Diagonals() [][]CellView {
	if s.Size == 0 {
		return nil
	}
	diags := make([][]CellView, 2*s.Size-1)
	for c := range s.Size {
		for r := range s.Size {
			diags[r+c] = append(diags[r+c], s.Cell(r, c))
		}
	}
	return diags
}

// RowMajor returns the current board row by row.
func (g *Grid) RowMajor() [][]CellView { return g.Snapshot().Rows() }

// ColumnMajor returns the current board column by column.
func (g *Grid) ColumnMajor() [][]CellView { return g.Snapshot().Columns() }

// Diagonals returns the current board's anti-diagonals.
func (g *Grid) Diagonals() [][]CellView { return g.Snapshot().Diagonals() }

// Clone returns a deep copy of the snapshot.
func (s GridSnapshot) Clone() GridSnapshot {
	out := s
	out.Cells = make([]CellView, len(s.Cells))
	for i, c := range s.Cells {
		out.Cells[i] = CellView{
			Row:       c.Row,
			Col:       c.Col,
			Predators: slices.Clone(c.Predators),
			Prey:      slices.Clone(c.Prey),
		}
	}
	return out
}
