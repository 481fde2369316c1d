package tetris

import (
	"fmt"
	"image/color"
	"math/rand/v2"
)

// Shape identifies one of the seven tetrominoes.
// The empty Shape is an empty cell in the stack.
type Shape string

const (
	S Shape = "S"
	Z Shape = "Z"
	I Shape = "I"
	O Shape = "O"
	J Shape = "J"
	L Shape = "L"
	T Shape = "T"
)

// Shapes lists every shape in catalog order.
var Shapes = []Shape{S, Z, I, O, J, L, T}

const maskSize = 5

// Mask is one orientation of a shape. Mask[row][col] is true for an
// occupied cell. The cell at (2,2) is the tetromino's anchor.
type Mask [maskSize][maskSize]bool

type shapeDef struct {
	masks []Mask
	color color.RGBA
}

// Rotations are read top row first. O marks an occupied cell.
//
//	. . . . .
//	. . O O .
//	. O O . .     <- S, rotation 0, anchor at the center
//	. . . . .
var catalog = map[Shape]shapeDef{
	S: newShapeDef(color.RGBA{80, 220, 100, 255},
		[]string{".....", ".....", "..OO.", ".OO..", "....."},
		[]string{".....", "..O..", "..OO.", "...O.", "....."},
	),
	Z: newShapeDef(color.RGBA{220, 60, 70, 255},
		[]string{".....", ".....", ".OO..", "..OO.", "....."},
		[]string{".....", "..O..", ".OO..", ".O...", "....."},
	),
	I: newShapeDef(color.RGBA{80, 200, 220, 255},
		[]string{"..O..", "..O..", "..O..", "..O..", "....."},
		[]string{".....", "OOOO.", ".....", ".....", "....."},
	),
	O: newShapeDef(color.RGBA{240, 230, 90, 255},
		[]string{".....", ".....", ".OO..", ".OO..", "....."},
	),
	J: newShapeDef(color.RGBA{70, 80, 200, 255},
		[]string{".....", ".O...", ".OOO.", ".....", "....."},
		[]string{".....", "..OO.", "..O..", "..O..", "....."},
		[]string{".....", ".....", ".OOO.", "...O.", "....."},
		[]string{".....", "..O..", "..O..", ".OO..", "....."},
	),
	L: newShapeDef(color.RGBA{240, 160, 60, 255},
		[]string{".....", "...O.", ".OOO.", ".....", "....."},
		[]string{".....", "..O..", "..O..", "..OO.", "....."},
		[]string{".....", ".....", ".OOO.", ".O...", "....."},
		[]string{".....", ".OO..", "..O..", "..O..", "....."},
	),
	T: newShapeDef(color.RGBA{180, 80, 200, 255},
		[]string{".....", "..O..", ".OOO.", ".....", "....."},
		[]string{".....", "..O..", "..OO.", "..O..", "....."},
		[]string{".....", ".....", ".OOO.", "..O..", "....."},
		[]string{".....", "..O..", ".OO..", "..O..", "....."},
	),
}

// newShapeDef parses the rotation drawings once. A malformed drawing is a
// programming error and panics during package initialization.
func newShapeDef(c color.RGBA, rotations ...[]string) shapeDef {
	def := shapeDef{color: c}
	for ir, rows := range rotations {
		m, err := parseMask(rows)
		if err != nil {
			panic(fmt.Sprintf("rotation %d: %v", ir, err))
		}
		def.masks = append(def.masks, m)
	}
	if len(def.masks) == 0 {
		panic("shape without rotations")
	}
	return def
}

func parseMask(rows []string) (Mask, error) {
	var m Mask
	if len(rows) != maskSize {
		return m, fmt.Errorf("want %d rows, got %d", maskSize, len(rows))
	}
	var count int
	for ir, r := range rows {
		if len(r) != maskSize {
			return m, fmt.Errorf("row %d: want %d columns, got %d", ir, maskSize, len(r))
		}
		for ic, c := range r {
			switch c {
			case 'O':
				m[ir][ic] = true
				count++
			case '.':
			default:
				return m, fmt.Errorf("row %d: unexpected character %q", ir, c)
			}
		}
	}
	if count != 4 {
		return m, fmt.Errorf("want 4 cells, got %d", count)
	}
	return m, nil
}

// Masks returns the rotation masks of the shape in rotation order.
func (s Shape) Masks() []Mask { return catalog[s].masks }

// Rotations returns how many distinct orientations the shape has.
func (s Shape) Rotations() int { return len(catalog[s].masks) }

// Color returns the display color of the shape.
func (s Shape) Color() color.RGBA { return catalog[s].color }

// RandomShape draws a shape uniformly at random.
func RandomShape(r *rand.Rand) Shape {
	return Shapes[r.IntN(len(Shapes))]
}

// Generator supplies the shape of every spawned tetromino.
type Generator interface {
	Next() Shape
}

type randomGenerator struct {
	rand *rand.Rand
}

func newRandomGenerator(seed uint64) *randomGenerator {
	return &randomGenerator{rand: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

func (g *randomGenerator) Next() Shape { return RandomShape(g.rand) }
