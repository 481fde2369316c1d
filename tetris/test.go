package tetris

import (
	"sync"
	"time"
)

// MockTicker is a manual implementation of the Ticker interface.
type MockTicker struct {
	ch          chan time.Time
	now         time.Time
	stop, reset bool
	mu          sync.Mutex
}

func NewMockTicker() *MockTicker {
	return &MockTicker{ch: make(chan time.Time), now: time.Unix(0, 0)}
}

func (m *MockTicker) C() <-chan time.Time { return m.ch }

func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}

func (m *MockTicker) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = true
	m.stop = false
}

// Tick sends a tick d after the previous one.
func (m *MockTicker) Tick(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now
	m.mu.Unlock()
	m.ch <- now
}

func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}

func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// Sequence is a Generator that cycles through a fixed list of shapes.
type Sequence struct {
	shapes []Shape
	i      int
}

func NewSequence(shapes ...Shape) *Sequence {
	return &Sequence{shapes: shapes}
}

func (s *Sequence) Next() Shape {
	shape := s.shapes[s.i%len(s.shapes)]
	s.i++
	return shape
}

// NewTestTetris creates a session where every tetromino has the given shape.
func NewTestTetris(shape Shape) *Tetris {
	cfg, err := newConfig(WithGenerator(NewSequence(shape)))
	if err != nil {
		panic(err)
	}
	return newTetris(cfg)
}

// NewTestGame creates a game around a specific Tetris and returns it with a manual ticker.
// The first Start plays t as is, later ones start new sessions.
func NewTestGame(t *Tetris) (*Game, *MockTicker) {
	ticker := NewMockTicker()
	return newGame(t, ticker), ticker
}
