package collab

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// XdotoolActuator drives the X11 desktop through the xdotool program.
type XdotoolActuator struct {
	path   string
	delay  time.Duration
	run    Runner
	logger zerolog.Logger
}

// NewXdotoolActuator locates xdotool (default "xdotool" on PATH). It fails
// when the program is missing so callers can disable the capability.
func NewXdotoolActuator(path string, typeDelay time.Duration, logger zerolog.Logger) (*XdotoolActuator, error) {
	if path == "" {
		path = "xdotool"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("desktop control unavailable: %w", err)
	}
	return newXdotool(resolved, typeDelay, ExecRunner, logger), nil
}

func newXdotool(path string, delay time.Duration, run Runner, logger zerolog.Logger) *XdotoolActuator {
	return &XdotoolActuator{
		path:   path,
		delay:  delay,
		run:    run,
		logger: logger.With().Str("component", "xdotool").Logger(),
	}
}

func (a *XdotoolActuator) exec(ctx context.Context, args ...string) error {
	a.logger.Debug().Strs("args", args).Msg("xdotool")
	if _, err := a.run(ctx, a.path, args...); err != nil {
		return fmt.Errorf("xdotool %s: %w", args[0], err)
	}
	return nil
}

func (a *XdotoolActuator) TypeText(ctx context.Context, text string) error {
	ms := strconv.FormatInt(a.delay.Milliseconds(), 10)
	return a.exec(ctx, "type", "--delay", ms, "--", text)
}

func (a *XdotoolActuator) Click(ctx context.Context, p *Point) error {
	if p == nil {
		return a.exec(ctx, "click", "1")
	}
	return a.exec(ctx, "mousemove", strconv.Itoa(p.X), strconv.Itoa(p.Y), "click", "1")
}

func (a *XdotoolActuator) MoveMouse(ctx context.Context, p Point) error {
	return a.exec(ctx, "mousemove", strconv.Itoa(p.X), strconv.Itoa(p.Y))
}
