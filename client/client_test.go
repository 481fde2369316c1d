package client

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"stacker/tetris"

	"github.com/eiannone/keyboard"
)

type mockTetris struct {
	updateCh chan *tetris.Snapshot
	start    int
	stop     bool
	action   tetris.Action
	mu       sync.Mutex
}

func newMockTetris() *mockTetris {
	return &mockTetris{updateCh: make(chan *tetris.Snapshot, 10)}
}

func (m *mockTetris) GetUpdate() <-chan *tetris.Snapshot { return m.updateCh }

func (m *mockTetris) Start() {
	m.mu.Lock()
	m.start++
	m.mu.Unlock()
	m.updateCh <- &tetris.Snapshot{}
}

func (m *mockTetris) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}

func (m *mockTetris) Action(a tetris.Action) {
	m.mu.Lock()
	m.action = a
	m.mu.Unlock()
	m.updateCh <- &tetris.Snapshot{Quit: a == tetris.Quit}
}

func (m *mockTetris) sendGameOver() { m.updateCh <- &tetris.Snapshot{GameOver: true, Score: 300} }

func (m *mockTetris) lastAction() tetris.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.action
}

func (m *mockTetris) starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start
}

type mockRender struct {
	localCount int
	lobbies    []lobbyMessage
	mu         sync.Mutex
}

func (m *mockRender) reset() {}

func (m *mockRender) local(*tetris.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.localCount++
}

func (m *mockRender) lobby(l lobbyMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lobbies = append(m.lobbies, l)
}

func (m *mockRender) locals() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.localCount
}

func (m *mockRender) lastLobby() (lobbyMessage, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.lobbies) == 0 {
		return lobbyMessage{}, 0
	}
	return m.lobbies[len(m.lobbies)-1], len(m.lobbies)
}

func newTestClient() (*Client, *mockTetris, *mockRender, chan keyboard.KeyEvent) {
	render := &mockRender{}
	tts := newMockTetris()
	kCh := make(chan keyboard.KeyEvent)
	cl := &Client{
		tetris: tts,
		render: render,
		logger: slog.New(slog.DiscardHandler),
		kbCh:   kCh,
		state:  &state{current: lobby},
	}
	return cl, tts, render, kCh
}

func waitDone(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	wgDone := make(chan struct{})
	go func() { wg.Wait(); close(wgDone) }()
	select {
	case <-time.After(time.Second):
		t.Errorf("timeout waiting for the client to return")
	case <-wgDone:
	}
}

func TestClient(t *testing.T) {
	cl, tts, render, kCh := newTestClient()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() { cl.Start(); wg.Done() }()
	time.Sleep(10 * time.Millisecond)
	if l, n := render.lastLobby(); n != 1 || l != defaultLobby() {
		t.Errorf("wanted the default lobby to be rendered once, got %d %v", n, l)
	}

	// key presses in the lobby other than 'p' and 'q' are ignored.
	kCh <- keyboard.KeyEvent{Rune: 'x'}
	kCh <- keyboard.KeyEvent{Key: keyboard.KeySpace}
	time.Sleep(10 * time.Millisecond)
	if tts.starts() != 0 || tts.lastAction() != "" {
		t.Errorf("wanted lobby keys to be ignored")
	}

	// 'p' would call tetris.Start(), leave the lobby and render.local() once.
	kCh <- keyboard.KeyEvent{Rune: 'p'}
	time.Sleep(10 * time.Millisecond)
	if tts.starts() != 1 {
		t.Errorf("wanted tetris.Start() to be called once, got %d", tts.starts())
	}
	if cl.state.get() != playing {
		t.Errorf("wanted to be playing after 'p' key press")
	}
	wantLocalCount := 1
	if render.locals() != wantLocalCount {
		t.Errorf("wanted render.local() to be called once, got %d", render.locals())
	}

	// while in game, keys should direct to tetris actions.
	actions := []struct {
		key    keyboard.KeyEvent
		action tetris.Action
	}{
		{key: keyboard.KeyEvent{Rune: 's'}, action: tetris.SoftDrop},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowDown}, action: tetris.SoftDrop},
		{key: keyboard.KeyEvent{Rune: 'a'}, action: tetris.MoveLeft},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowLeft}, action: tetris.MoveLeft},
		{key: keyboard.KeyEvent{Rune: 'd'}, action: tetris.MoveRight},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowRight}, action: tetris.MoveRight},
		{key: keyboard.KeyEvent{Rune: 'e'}, action: tetris.Rotate},
		{key: keyboard.KeyEvent{Rune: 'w'}, action: tetris.Rotate},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowUp}, action: tetris.Rotate},
		{key: keyboard.KeyEvent{Key: keyboard.KeySpace}, action: tetris.HardDrop},
	}
	for _, a := range actions {
		wantLocalCount++
		t.Run(fmt.Sprintf("key %v", a.key), func(t *testing.T) {
			kCh <- a.key
			time.Sleep(10 * time.Millisecond)
			if render.locals() != wantLocalCount {
				t.Errorf("wanted render.local() to be %d times, got %d", wantLocalCount, render.locals())
			}
			if tts.lastAction() != a.action {
				t.Errorf("wanted action %v, got %v", a.action, tts.lastAction())
			}
		})
	}

	// 'q' quits the game back to the default lobby.
	kCh <- keyboard.KeyEvent{Rune: 'q'}
	time.Sleep(10 * time.Millisecond)
	if tts.lastAction() != tetris.Quit {
		t.Errorf("wanted action %v, got %v", tetris.Quit, tts.lastAction())
	}
	if cl.state.get() != lobby {
		t.Errorf("wanted to be back in the lobby after quitting")
	}
	if l, n := render.lastLobby(); n != 2 || l != defaultLobby() {
		t.Errorf("wanted the default lobby to be rendered again, got %d %v", n, l)
	}

	// a game over renders the score in the lobby.
	kCh <- keyboard.KeyEvent{Rune: 'p'}
	time.Sleep(10 * time.Millisecond)
	if tts.starts() != 2 {
		t.Errorf("wanted tetris.Start() to be called twice, got %d", tts.starts())
	}
	tts.sendGameOver()
	time.Sleep(10 * time.Millisecond)
	if l, n := render.lastLobby(); n != 3 || l != gameOver(300) {
		t.Errorf("wanted the game over lobby, got %d %v", n, l)
	}
	if cl.state.get() != lobby {
		t.Errorf("wanted to be back in the lobby after game over")
	}

	// 'q' in the lobby leaves the client.
	kCh <- keyboard.KeyEvent{Rune: 'q'}
	waitDone(t, &wg)
}

func TestClientCtrlC(t *testing.T) {
	cl, tts, _, kCh := newTestClient()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() { cl.Start(); wg.Done() }()
	kCh <- keyboard.KeyEvent{Rune: 'p'}
	time.Sleep(10 * time.Millisecond)

	kCh <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC}
	waitDone(t, &wg)
	tts.mu.Lock()
	defer tts.mu.Unlock()
	if !tts.stop {
		t.Errorf("wanted tetris.Stop() to be called on ctrl-c")
	}
}

func TestKeyAction(t *testing.T) {
	tests := []struct {
		name   string
		key    keyboard.KeyEvent
		action tetris.Action
		ok     bool
	}{
		{name: "esc quits", key: keyboard.KeyEvent{Key: keyboard.KeyEsc}, action: tetris.Quit, ok: true},
		{name: "q quits", key: keyboard.KeyEvent{Rune: 'q'}, action: tetris.Quit, ok: true},
		{name: "space hard drops", key: keyboard.KeyEvent{Key: keyboard.KeySpace}, action: tetris.HardDrop, ok: true},
		{name: "unknown rune", key: keyboard.KeyEvent{Rune: 'z'}},
		{name: "unknown key", key: keyboard.KeyEvent{Key: keyboard.KeyEnter}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := keyAction(tt.key)
			if ok != tt.ok || a != tt.action {
				t.Errorf("wanted %q %t, got %q %t", tt.action, tt.ok, a, ok)
			}
		})
	}
}
