// Package tetris contains the rules of the game: the stack, the falling
// tetromino, collisions, line clears, scoring and the speed ramp.
//
// The board is Cols x Rows. Row 0 is the top row and Y grows downward.
// The engine is driven one tick at a time with Step and never blocks.
package tetris

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
)

type State int

const (
	Falling State = iota // A tetromino is live and descending.
	Locking              // The tetromino is being committed to the stack.
	GameOver             // Terminal state.
)

func (s State) String() string {
	switch s {
	case Falling:
		return "falling"
	case Locking:
		return "locking"
	case GameOver:
		return "game over"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Tetris struct {
	ID string

	Stack         *Stack
	Tetromino     *Tetromino
	NextTetromino *Tetromino

	Score      int
	Level      int
	LinesClear int
	FallSpeed  time.Duration
	State      State
	Quit       bool

	fallTime  time.Duration
	levelTime time.Duration
	cfg       *config
	logger    *slog.Logger
}

// New starts a session with an empty stack and the first two tetrominoes drawn.
func New(opts ...Option) (*Tetris, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to configure tetris: %w", err)
	}
	return newTetris(cfg), nil
}

func newTetris(cfg *config) *Tetris {
	id := uuid.NewString()
	t := &Tetris{
		ID:        id,
		Stack:     NewStack(),
		Level:     1,
		FallSpeed: cfg.fallSpeed,
		State:     Falling,
		cfg:       cfg,
		logger:    cfg.logger.With(slog.String("session", id)),
	}
	t.Tetromino = newTetromino(cfg.generator.Next())
	t.NextTetromino = newTetromino(cfg.generator.Next())
	t.logger.Debug("session started",
		slog.String("tetromino", string(t.Tetromino.Shape)),
		slog.String("next", string(t.NextTetromino.Shape)),
	)
	return t
}

// Step advances the session by one tick: elapsed is the play time since the
// previous tick and actions are the commands received during it, in order.
//
// A Quit anywhere in actions ends the session before anything is mutated.
func (t *Tetris) Step(elapsed time.Duration, actions ...Action) {
	if t.IsOver() {
		return
	}
	if slices.Contains(actions, Quit) {
		t.quit()
		return
	}
	if elapsed > 0 {
		t.ramp(elapsed)
		t.gravity(elapsed)
	}
	for _, a := range actions {
		t.Apply(a)
	}
}

// Apply resolves a single action against the stack. Invalid moves are rolled
// back, so the tetromino always ends in a valid position.
func (t *Tetris) Apply(a Action) {
	if t.IsOver() {
		return
	}
	switch a {
	case MoveLeft:
		t.shift(-1, 0)
	case MoveRight:
		t.shift(1, 0)
	case SoftDrop:
		t.shift(0, 1)
	case Rotate:
		t.rotate()
	case HardDrop:
		t.drop()
	case Quit:
		t.quit()
	}
}

// GameOver reports whether the stack topped out.
func (t *Tetris) GameOver() bool { return t.State == GameOver }

// IsOver reports whether the session accepts no more ticks or actions.
func (t *Tetris) IsOver() bool { return t.State == GameOver || t.Quit }

// Grid returns the locked cells with the falling tetromino drawn on top.
func (t *Tetris) Grid() Grid {
	g := t.Stack.Grid()
	if t.Tetromino == nil {
		return g
	}
	for _, c := range t.Tetromino.Cells() {
		if c.X >= 0 && c.X < Cols && c.Y >= 0 && c.Y < Rows {
			g[c.Y][c.X] = t.Tetromino.Shape
		}
	}
	return g
}

// GhostY returns the Y the tetromino would land at if dropped now.
func (t *Tetris) GhostY() int {
	return t.Tetromino.Y + t.Stack.dropDistance(t.Tetromino)
}

// ramp speeds the game up once per level interval of play time.
func (t *Tetris) ramp(elapsed time.Duration) {
	t.levelTime += elapsed
	for t.levelTime >= t.cfg.levelInterval {
		t.levelTime -= t.cfg.levelInterval
		t.FallSpeed = max(t.FallSpeed-t.cfg.speedStep, t.cfg.minFallSpeed)
		t.Level++
		t.logger.Debug("level up", slog.Int("level", t.Level), slog.Duration("fall_speed", t.FallSpeed))
	}
}

// gravity moves the tetromino one row down every FallSpeed. When it can't
// move any further it is locked.
func (t *Tetris) gravity(elapsed time.Duration) {
	t.fallTime += elapsed
	if t.fallTime < t.FallSpeed {
		return
	}
	t.fallTime = 0

	t.Tetromino.move(0, 1)
	if t.Stack.IsValid(t.Tetromino) {
		return
	}
	landed := t.Tetromino.Y > 0
	t.Tetromino.move(0, -1)
	if landed {
		t.lock()
	}
}

func (t *Tetris) shift(dx, dy int) bool {
	t.Tetromino.move(dx, dy)
	if t.Stack.IsValid(t.Tetromino) {
		return true
	}
	t.Tetromino.move(-dx, -dy)
	return false
}

// wallKicks are the column offsets tried, in order, after a rotation.
var wallKicks = []int{0, 1, -1}

func (t *Tetris) rotate() {
	prev := *t.Tetromino
	t.Tetromino.rotate()
	for _, dx := range wallKicks {
		t.Tetromino.X = prev.X + dx
		if t.Stack.IsValid(t.Tetromino) {
			return
		}
	}
	*t.Tetromino = prev
}

// drop moves the tetromino down as far as it goes and locks it. A tetromino
// that already overlaps the stack can't fall through it: it steps back up a
// row and locks there, above the ceiling.
func (t *Tetris) drop() {
	if !t.Stack.IsValid(t.Tetromino) {
		t.Tetromino.move(0, -1)
		t.lock()
		return
	}
	t.Tetromino.move(0, t.Stack.dropDistance(t.Tetromino))
	t.lock()
}

// lock commits the tetromino to the stack, clears lines, scores them and
// spawns the next tetromino.
func (t *Tetris) lock() {
	t.State = Locking
	cells := t.Tetromino.Cells()
	for _, c := range cells {
		if c.Y < 0 {
			// the tetromino locked above the ceiling: the stack is left untouched.
			t.State = GameOver
			t.logger.Debug("game over", slog.String("reason", "locked above ceiling"), slog.Int("score", t.Score))
			return
		}
	}
	if !t.Stack.IsValid(t.Tetromino) {
		// a tetromino spawned on top of the stack never overwrites locked cells.
		t.State = GameOver
		t.logger.Debug("game over", slog.String("reason", "locked over the stack"), slog.Int("score", t.Score))
		return
	}
	for _, c := range cells {
		t.Stack.Set(c.X, c.Y, t.Tetromino.Shape)
	}

	lines := t.Stack.ClearFullRows()
	t.Score += lines * lines * 100
	t.LinesClear += lines
	t.logger.Debug("tetromino locked",
		slog.String("shape", string(t.Tetromino.Shape)),
		slog.Int("lines", lines),
		slog.Int("score", t.Score),
	)

	t.Tetromino = t.NextTetromino
	t.NextTetromino = newTetromino(t.cfg.generator.Next())

	if t.Stack.ExceedsCeiling() {
		t.State = GameOver
		t.logger.Debug("game over", slog.String("reason", "stack reached the ceiling"), slog.Int("score", t.Score))
		return
	}
	t.State = Falling
}

func (t *Tetris) quit() {
	t.Quit = true
	t.logger.Debug("session quit", slog.Int("score", t.Score))
}

// Snapshot is a detached copy of a session, safe to hand to a renderer.
type Snapshot struct {
	ID            string
	Stack         Grid // locked cells only
	Grid          Grid // locked cells and the falling tetromino
	Tetromino     *Tetromino
	NextTetromino *Tetromino
	GhostY        int
	Score         int
	Level         int
	LinesClear    int
	FallSpeed     time.Duration
	State         State
	GameOver      bool
	Quit          bool
}

func (t *Tetris) Snapshot() *Snapshot {
	s := &Snapshot{
		ID:            t.ID,
		Stack:         t.Stack.Grid(),
		Grid:          t.Grid(),
		Tetromino:     t.Tetromino.copy(),
		NextTetromino: t.NextTetromino.copy(),
		Score:         t.Score,
		Level:         t.Level,
		LinesClear:    t.LinesClear,
		FallSpeed:     t.FallSpeed,
		State:         t.State,
		GameOver:      t.GameOver(),
		Quit:          t.Quit,
	}
	if t.Tetromino != nil {
		s.GhostY = t.GhostY()
	}
	return s
}
