// Package client plays tetris in the terminal: it turns key presses into
// tetris actions and renders every snapshot the game publishes.
package client

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"stacker/tetris"

	"github.com/eiannone/keyboard"
)

type clientState int

const (
	lobby clientState = iota
	playing
)

type state struct {
	current clientState
	mu      sync.Mutex
}

func (s *state) get() clientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *state) set(c clientState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
}

type tetrisGame interface {
	Start()
	GetUpdate() <-chan *tetris.Snapshot
	Action(tetris.Action)
	Stop()
}

type renderer interface {
	local(*tetris.Snapshot)
	lobby(lobbyMessage)
	reset()
}

type Client struct {
	tetris tetrisGame
	render renderer
	logger *slog.Logger
	kbCh   <-chan keyboard.KeyEvent
	state  *state
}

type Options struct {
	NoGhost bool
	Writer  io.Writer
	Game    []tetris.Option
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	r, err := newRender(l, o.Writer, o.NoGhost)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	g, err := tetris.NewGame(append([]tetris.Option{tetris.WithLogger(l)}, o.Game...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	return &Client{
		tetris: g,
		render: r,
		logger: l,
		kbCh:   kb,
		state:  &state{current: lobby},
	}, nil
}

// Start shows the lobby and blocks until the player leaves.
func (c *Client) Start() {
	c.render.reset()
	c.render.lobby(defaultLobby())
	var wg sync.WaitGroup
	wg.Add(1)
	go c.listenKB(&wg)
	wg.Wait()
}

func (c *Client) listenKB(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			c.tetris.Stop()
			return
		}
		switch c.state.get() {
		case lobby:
			switch event.Rune {
			case 'p':
				c.state.set(playing)
				go c.listenTetris()
			case 'q':
				return
			}
		case playing:
			if a, ok := keyAction(event); ok {
				c.tetris.Action(a)
			}
		}
	}
}

func keyAction(event keyboard.KeyEvent) (tetris.Action, bool) {
	switch {
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		return tetris.MoveLeft, true
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		return tetris.MoveRight, true
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		return tetris.SoftDrop, true
	case event.Key == keyboard.KeyArrowUp || event.Rune == 'w' || event.Rune == 'e':
		return tetris.Rotate, true
	case event.Key == keyboard.KeySpace:
		return tetris.HardDrop, true
	case event.Key == keyboard.KeyEsc || event.Rune == 'q':
		return tetris.Quit, true
	}
	return "", false
}

func (c *Client) listenTetris() {
	c.render.reset()
	c.tetris.Start()
	for u := range c.tetris.GetUpdate() {
		c.render.local(u)
		switch {
		case u.GameOver:
			c.logger.Debug("game over", slog.String("session", u.ID), slog.Int("score", u.Score))
			c.state.set(lobby)
			c.render.lobby(gameOver(u.Score))
			return
		case u.Quit:
			c.logger.Debug("game quit", slog.String("session", u.ID), slog.Int("score", u.Score))
			c.state.set(lobby)
			c.render.lobby(defaultLobby())
			return
		}
	}
}
