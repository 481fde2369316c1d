package tetris

// ClearFullRows removes every full row and compacts the stack.
// It returns the number of rows removed.
//
// Row indexes grow downward, so a remaining cell at row y falls by the
// number of cleared rows with an index greater than y.
//
//	before      after
//	0 O . . .   0 . . . .
//	1 O O O O   1 . . . .
//	2 O . . .   2 O . . .
//	3 O O O O   3 O . . .
func (s *Stack) ClearFullRows() int {
	var full []int
	for y := s.rows - 1; y >= 0; y-- {
		if s.isFull(y) {
			full = append(full, y)
		}
	}
	if len(full) == 0 {
		return 0
	}

	for _, y := range full {
		for x := range s.cols {
			s.cells.Del(packCell(x, y))
		}
	}

	// the map can't be written while we range over it, so the
	// survivors are collected first and re-inserted shifted.
	type cell struct {
		p     Point
		shape Shape
	}
	var remaining []cell
	s.cells.ForEach(func(k cellKey, v Shape) bool {
		remaining = append(remaining, cell{p: k.point(), shape: v})
		return true
	})
	for _, c := range remaining {
		s.cells.Del(packCell(c.p.X, c.p.Y))
	}
	for _, c := range remaining {
		var drop int
		for _, r := range full {
			if r > c.p.Y {
				drop++
			}
		}
		s.cells.Put(packCell(c.p.X, c.p.Y+drop), c.shape)
	}

	return len(full)
}

func (s *Stack) isFull(y int) bool {
	for x := range s.cols {
		if !s.has(x, y) {
			return false
		}
	}
	return true
}
