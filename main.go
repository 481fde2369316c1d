package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"stacker/client"
	"stacker/tetris"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[24;0H\n\r\033[?25h"

	minWidth  = 36
	minHeight = 23
)

func main() {
	noGhost := flag.Bool("noghost", false, "disable the ghost piece")
	seed := flag.Uint64("seed", 0, "seed for the tetromino generator, 0 picks a random one")
	logFile := flag.String("log", "", "write JSON debug logs to this file")
	fall := flag.Duration("fall", tetris.DefaultFallSpeed, "initial fall speed")
	minFall := flag.Duration("minfall", tetris.DefaultMinFallSpeed, "fastest fall speed")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Fatal("stacker needs an interactive terminal")
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && (w < minWidth || h < minHeight) {
		fmt.Fprintf(os.Stderr, "terminal is %dx%d, the board needs at least %dx%d\n", w, h, minWidth, minHeight)
	}

	logger, closeLog := newLogger(*logFile)
	defer closeLog()

	opts := []tetris.Option{
		tetris.WithFallSpeed(*fall),
		tetris.WithMinFallSpeed(*minFall),
	}
	if *seed != 0 {
		opts = append(opts, tetris.WithSeed(*seed))
	}

	c, err := client.New(logger, &client.Options{NoGhost: *noGhost, Game: opts})
	if err != nil {
		log.Fatalf("unable to start: %v", err)
	}
	defer func() {
		if err := keyboard.Close(); err != nil {
			logger.Error("unable to close keyboard", slog.String("error", err.Error()))
		}
	}()

	fmt.Print(hideCursor)
	defer fmt.Print(showCursor)
	c.Start()
}

func newLogger(path string) (*slog.Logger, func()) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("unable to open log file: %v", err)
	}
	l := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return l, func() { f.Close() }
}
