package tetris

import "github.com/kamstrup/intmap"

const (
	Cols = 10
	Rows = 20

	SpawnX = 5
	SpawnY = 0
)

// Grid is a rows x cols snapshot of the board. An empty Shape is an empty cell.
type Grid [Rows][Cols]Shape

type cellKey uint32

func packCell(x, y int) cellKey {
	return cellKey(uint32(uint16(int16(y)))<<16 | uint32(uint16(int16(x))))
}

func (k cellKey) point() Point {
	return Point{X: int(int16(uint16(k))), Y: int(int16(uint16(k >> 16)))}
}

// Stack holds the locked cells, the settled part of the board.
// It is the only source of truth for the board; grids are derived from it.
type Stack struct {
	cells      *intmap.Map[cellKey, Shape]
	cols, rows int
}

// NewStack returns an empty stack for the Cols x Rows board.
func NewStack() *Stack {
	return newStackSize(Cols, Rows)
}

func newStackSize(cols, rows int) *Stack {
	return &Stack{
		cells: intmap.New[cellKey, Shape](cols * rows),
		cols:  cols,
		rows:  rows,
	}
}

// Get returns the shape locked at x, y.
func (s *Stack) Get(x, y int) (Shape, bool) {
	return s.cells.Get(packCell(x, y))
}

// Set locks a cell. Cells outside the board are ignored.
func (s *Stack) Set(x, y int, shape Shape) {
	if !s.inBounds(x, y) {
		return
	}
	s.cells.Put(packCell(x, y), shape)
}

// Len returns the number of locked cells.
func (s *Stack) Len() int { return s.cells.Len() }

// Cells returns every locked cell with its shape. Order is not defined.
func (s *Stack) Cells() map[Point]Shape {
	out := make(map[Point]Shape, s.cells.Len())
	s.cells.ForEach(func(k cellKey, v Shape) bool {
		out[k.point()] = v
		return true
	})
	return out
}

// Grid rebuilds a board snapshot from the locked cells.
func (s *Stack) Grid() Grid {
	var g Grid
	s.cells.ForEach(func(k cellKey, v Shape) bool {
		if p := k.point(); s.inBounds(p.X, p.Y) {
			g[p.Y][p.X] = v
		}
		return true
	})
	return g
}

func (s *Stack) has(x, y int) bool {
	_, ok := s.cells.Get(packCell(x, y))
	return ok
}

func (s *Stack) inBounds(x, y int) bool {
	return x >= 0 && x < s.cols && y >= 0 && y < s.rows
}
