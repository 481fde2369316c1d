package tetris

// Point is a cell coordinate on the board.
// X grows left to right, Y grows top to bottom.
type Point struct {
	X, Y int
}

// Tetromino is the falling (or previewed) piece.
//
// X and Y locate the center of its 5x5 mask on the board, so a mask cell at
// (col, row) lands on (X+col-2, Y+row-2).
//
//	.	Spawn Location			.	Shape (J, rotation 0)
//	.	0 1 2 3 4 5 6 7 8 9		.	0 1 2 3 4
//	-1	X X X X O X X X X X		0	X X X X X
//	0	X X X X O O O X X X		1	X O X X X
//	1	X X X X X X X X X X		2	X O O O X
//	.					.	3	X X X X X
//
// Cells above row 0 are hidden until the piece falls into view.
type Tetromino struct {
	Shape    Shape
	X, Y     int
	Rotation int
}

func newTetromino(s Shape) *Tetromino {
	return &Tetromino{Shape: s, X: SpawnX, Y: SpawnY}
}

// Mask returns the mask of the current rotation.
func (t *Tetromino) Mask() Mask {
	masks := t.Shape.Masks()
	r := t.Rotation % len(masks)
	if r < 0 {
		r += len(masks)
	}
	return masks[r]
}

// Cells returns the board cells the tetromino occupies, top row first.
func (t *Tetromino) Cells() []Point {
	cells := make([]Point, 0, 4)
	m := t.Mask()
	for ir, row := range m {
		for ic, c := range row {
			if c {
				cells = append(cells, Point{X: t.X + ic - 2, Y: t.Y + ir - 2})
			}
		}
	}
	return cells
}

func (t *Tetromino) move(dx, dy int) {
	t.X += dx
	t.Y += dy
}

func (t *Tetromino) rotate() {
	t.Rotation = (t.Rotation + 1) % t.Shape.Rotations()
}

func (t *Tetromino) copy() *Tetromino {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
