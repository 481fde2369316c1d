package tetris

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrInvalidConfig is returned by New when an option is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	DefaultFallSpeed     = 500 * time.Millisecond
	DefaultMinFallSpeed  = 150 * time.Millisecond
	DefaultSpeedStep     = 20 * time.Millisecond
	DefaultLevelInterval = 30 * time.Second
)

type config struct {
	fallSpeed     time.Duration
	minFallSpeed  time.Duration
	speedStep     time.Duration
	levelInterval time.Duration
	generator     Generator
	seed          uint64
	logger        *slog.Logger
}

// Option configures a Tetris session.
type Option func(*config)

// WithFallSpeed sets the initial time between automatic downward steps.
func WithFallSpeed(d time.Duration) Option {
	return func(c *config) { c.fallSpeed = d }
}

// WithMinFallSpeed sets the fastest fall speed the difficulty ramp reaches.
func WithMinFallSpeed(d time.Duration) Option {
	return func(c *config) { c.minFallSpeed = d }
}

// WithSpeedStep sets how much the fall speed decreases on every level.
func WithSpeedStep(d time.Duration) Option {
	return func(c *config) { c.speedStep = d }
}

// WithLevelInterval sets how much play time passes between levels.
func WithLevelInterval(d time.Duration) Option {
	return func(c *config) { c.levelInterval = d }
}

// WithGenerator replaces the uniform random shape generator.
func WithGenerator(g Generator) Option {
	return func(c *config) { c.generator = g }
}

// WithSeed seeds the default random generator.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seed = seed }
}

// WithLogger sets the logger for session and game loop events.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

func newConfig(opts ...Option) (*config, error) {
	c := &config{
		fallSpeed:     DefaultFallSpeed,
		minFallSpeed:  DefaultMinFallSpeed,
		speedStep:     DefaultSpeedStep,
		levelInterval: DefaultLevelInterval,
		seed:          uint64(time.Now().UnixNano()), //nolint:gosec
	}
	for _, o := range opts {
		o(c)
	}

	switch {
	case c.fallSpeed <= 0:
		return nil, fmt.Errorf("fall speed %v: %w", c.fallSpeed, ErrInvalidConfig)
	case c.minFallSpeed <= 0:
		return nil, fmt.Errorf("min fall speed %v: %w", c.minFallSpeed, ErrInvalidConfig)
	case c.minFallSpeed > c.fallSpeed:
		return nil, fmt.Errorf("min fall speed %v above fall speed %v: %w", c.minFallSpeed, c.fallSpeed, ErrInvalidConfig)
	case c.speedStep < 0:
		return nil, fmt.Errorf("speed step %v: %w", c.speedStep, ErrInvalidConfig)
	case c.levelInterval <= 0:
		return nil, fmt.Errorf("level interval %v: %w", c.levelInterval, ErrInvalidConfig)
	}

	if c.generator == nil {
		c.generator = newRandomGenerator(c.seed)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c, nil
}
