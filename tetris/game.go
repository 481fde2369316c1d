package tetris

import (
	"log/slog"
	"sync"
	"time"
)

type Action string

const (
	MoveLeft  Action = "left"   // Moves the Tetromino one step to the left.
	MoveRight Action = "right"  // Moves the Tetromino one step to the right.
	SoftDrop  Action = "down"   // Moves the Tetromino one step down.
	Rotate    Action = "rotate" // Rotates the Tetromino to its next orientation.
	HardDrop  Action = "drop"   // Drops the Tetromino down the stack and locks it.
	Quit      Action = "quit"   // Ends the session.
)

// FrameRate is how often a Game steps its session.
const FrameRate = 16 * time.Millisecond

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	return &wrappedTicker{ticker: time.NewTicker(d)}
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// Game runs a Tetris session in real time. Actions are queued as they arrive
// and applied on the next tick together with the time elapsed since the
// previous one. Every tick publishes a Snapshot on GetUpdate.
//
// Only the game loop goroutine mutates the session.
type Game struct {
	updateCh chan *Snapshot
	actionCh chan Action
	doneCh   chan struct{}
	stopCh   chan struct{} // closed when the current game loop returns

	tetris *Tetris
	fresh  bool // tetris hasn't been played yet
	ticker Ticker
	cfg    *config
	logger *slog.Logger
	mu     sync.RWMutex
}

func NewGame(opts ...Option) (*Game, error) {
	return NewConfigurableGame(newWrappedTicker(1*time.Hour), opts...)
}

func NewConfigurableGame(ticker Ticker, opts ...Option) (*Game, error) {
	t, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return newGame(t, ticker), nil
}

func newGame(t *Tetris, ticker Ticker) *Game {
	stopped := make(chan struct{})
	close(stopped)
	return &Game{
		updateCh: make(chan *Snapshot),
		actionCh: make(chan Action),
		doneCh:   make(chan struct{}, 1),
		stopCh:   stopped,
		tetris:   t,
		fresh:    true,
		ticker:   ticker,
		cfg:      t.cfg,
		logger:   t.cfg.logger,
	}
}

// Start begins a session and returns immediately. The first Start plays the
// session the Game was created with, every later one starts a new session.
func (g *Game) Start() {
	g.Stop()

	g.mu.Lock()
	if !g.fresh {
		g.tetris = newTetris(g.cfg)
	}
	g.fresh = false
	g.stopCh = make(chan struct{})
	stop := g.stopCh
	// a Stop() issued while no loop was running must not end this one.
	select {
	case <-g.doneCh:
	default:
	}
	id := g.tetris.ID
	g.mu.Unlock()

	go g.listen(id, stop)
}

// Stop ends the running session, if any, and waits for its loop to return.
func (g *Game) Stop() {
	g.mu.RLock()
	stop := g.stopCh
	g.mu.RUnlock()

	select {
	case g.doneCh <- struct{}{}:
	default:
	}
	<-stop
}

// Action queues an action for the next tick. It is dropped if no session is running.
func (g *Game) Action(a Action) {
	g.mu.RLock()
	stop := g.stopCh
	g.mu.RUnlock()

	select {
	case g.actionCh <- a:
	case <-stop:
	}
}

func (g *Game) GetUpdate() <-chan *Snapshot {
	return g.updateCh
}

// Read returns a copy of the current session that's safe to read concurrently.
func (g *Game) Read() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tetris.Snapshot()
}

func (g *Game) listen(id string, stop chan struct{}) {
	logger := g.logger.With(slog.String("session", id))
	logger.Debug("game loop started")
	defer func() {
		close(stop)
		logger.Debug("game loop stopped")
	}()
	g.ticker.Reset(FrameRate)
	defer g.ticker.Stop()

	if !g.publish() {
		return
	}

	var (
		pending []Action
		last    time.Time
	)
	for {
		select {
		case now := <-g.ticker.C():
			var elapsed time.Duration
			if !last.IsZero() && now.After(last) {
				elapsed = now.Sub(last)
			}
			last = now

			g.mu.Lock()
			g.tetris.Step(elapsed, pending...)
			over := g.tetris.IsOver()
			g.mu.Unlock()
			pending = pending[:0]

			if !g.publish() || over {
				return
			}
		case a := <-g.actionCh:
			pending = append(pending, a)
		case <-g.doneCh:
			return
		}
	}
}

// publish hands the current snapshot to the reader. It returns false if the
// game was stopped while waiting.
func (g *Game) publish() bool {
	select {
	case g.updateCh <- g.Read():
		return true
	case <-g.doneCh:
		return false
	}
}
