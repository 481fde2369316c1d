package tetris

// IsValid reports whether the tetromino can sit where it is.
//
// Every visible cell must be on the board and not locked. Cells above the
// ceiling (y < 0) are always accepted so pieces can spawn partially hidden.
func (s *Stack) IsValid(t *Tetromino) bool {
	for _, c := range t.Cells() {
		if c.Y < 0 {
			continue
		}
		if !s.inBounds(c.X, c.Y) || s.has(c.X, c.Y) {
			return false
		}
	}
	return true
}

// ExceedsCeiling reports whether the stack reached the top row.
func (s *Stack) ExceedsCeiling() bool {
	var lost bool
	s.cells.ForEach(func(k cellKey, _ Shape) bool {
		if k.point().Y < 1 {
			lost = true
			return false
		}
		return true
	})
	return lost
}

// dropDistance returns how many rows t can fall and still be valid.
func (s *Stack) dropDistance(t *Tetromino) int {
	test := t.copy()
	var d int
	for {
		test.move(0, 1)
		if !s.IsValid(test) {
			return d
		}
		d++
	}
}
