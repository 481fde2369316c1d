package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/template"

	"stacker/tetris"
)

const (
	resetPos    = "\033[H"       // Reset cursor position to 0,0
	clearScreen = "\033[2J\033[H" // Clear the screen and reset the cursor
	clearEOL    = "\033[K"       // Clear from the cursor to the end of the line

	emptyCell = "  "
	ghostCell = "[]"

	lobbyWidth = 18
)

//go:embed "layout.tmpl"
var layout string

type templateData struct {
	Local   *tetris.Snapshot
	NoGhost bool
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	*templateData
}

func newRender(l *slog.Logger, w io.Writer, noGhost bool) (*render, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if w == nil {
		w = os.Stdout
	}
	return &render{
		writer:   w,
		logger:   l,
		template: tmp,
		templateData: &templateData{
			NoGhost: noGhost,
		},
	}, nil
}

func (r *render) reset() {
	fmt.Fprint(r.writer, clearScreen)
}

func (r *render) local(s *tetris.Snapshot) {
	r.templateData.Local = s
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, r.templateData); err != nil {
		r.logger.Error("unable to execute template in local()", slog.String("error", err.Error()))
	}
}

type lobbyMessage [3]string

func defaultLobby() lobbyMessage {
	return lobbyMessage{"Terminal Tetris", "", "(p)lay   (q)uit"}
}

func gameOver(score int) lobbyMessage {
	return lobbyMessage{"Game Over :)", "score " + strconv.Itoa(score), "(p)lay   (q)uit"}
}

// lobby draws a message box on top of the board.
func (r *render) lobby(m lobbyMessage) {
	border := "+" + strings.Repeat("-", lobbyWidth) + "+"
	fmt.Fprintf(r.writer, "\033[10;2H%s", border)
	for i, line := range m {
		fmt.Fprintf(r.writer, "\033[%d;2H|%s|", 11+i, center(line, lobbyWidth))
	}
	fmt.Fprintf(r.writer, "\033[14;2H%s", border)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"stack": stack,
		"side":  side,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", clearEOL+"\r\n")
	l = strings.ReplaceAll(l, "Terminal Tetris", "\033[1mTerminal Tetris\033[0m")
	return template.New("layout").Funcs(funcMap).Parse(l)
}

func cell(s tetris.Shape) string {
	c := s.Color()
	return fmt.Sprintf("\x1b[7m\x1b[38;2;%d;%d;%dm[]\x1b[0m", c.R, c.G, c.B)
}

// stack renders the board top row first: the locked cells, the ghost
// tetromino and the falling tetromino on top.
func stack(t *templateData) [tetris.Rows][tetris.Cols]string {
	rendered := [tetris.Rows][tetris.Cols]string{}
	for y := range rendered {
		for x := range rendered[y] {
			rendered[y][x] = emptyCell
		}
	}
	if t == nil || t.Local == nil {
		return rendered
	}

	for y, row := range t.Local.Stack {
		for x, s := range row {
			if s != "" {
				rendered[y][x] = cell(s)
			}
		}
	}

	tm := t.Local.Tetromino
	if tm == nil {
		return rendered
	}
	if !t.NoGhost {
		ghost := *tm
		ghost.Y = t.Local.GhostY
		for _, c := range ghost.Cells() {
			if inBoard(c) && t.Local.Stack[c.Y][c.X] == "" {
				rendered[c.Y][c.X] = ghostCell
			}
		}
	}
	for _, c := range tm.Cells() {
		if inBoard(c) {
			rendered[c.Y][c.X] = cell(tm.Shape)
		}
	}
	return rendered
}

func inBoard(p tetris.Point) bool {
	return p.X >= 0 && p.X < tetris.Cols && p.Y >= 0 && p.Y < tetris.Rows
}

// nextPiece renders the top-left 4x4 corner of the next tetromino's mask.
// The last row and column of every mask are empty.
func nextPiece(t *templateData) []string {
	rendered := make([]string, 4)
	for i := range rendered {
		rendered[i] = strings.Repeat(emptyCell, 4)
	}
	if t == nil || t.Local == nil || t.Local.NextTetromino == nil {
		return rendered
	}
	next := t.Local.NextTetromino
	m := next.Mask()
	for i := range rendered {
		row := []string{emptyCell, emptyCell, emptyCell, emptyCell}
		for j := range row {
			if m[i][j] {
				row[j] = cell(next.Shape)
			}
		}
		rendered[i] = strings.Join(row, "")
	}
	return rendered
}

// side renders the panel to the right of board row i.
func side(t *templateData, i int) string {
	if t == nil || t.Local == nil {
		return ""
	}
	switch i {
	case 1:
		return "NEXT"
	case 2, 3, 4, 5:
		return nextPiece(t)[i-2]
	case 8:
		return "SCORE"
	case 9:
		return strconv.Itoa(t.Local.Score)
	case 11:
		return "LEVEL"
	case 12:
		return strconv.Itoa(t.Local.Level)
	case 14:
		return "LINES"
	case 15:
		return strconv.Itoa(t.Local.LinesClear)
	}
	return ""
}
