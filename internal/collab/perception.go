package collab

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CommandScreenReader runs a configured OCR command, e.g.
// "scrot -o /tmp/s.png && tesseract /tmp/s.png -", and returns its output.
type CommandScreenReader struct {
	command string
	run     Runner
}

// NewCommandScreenReader creates a reader for command.
func NewCommandScreenReader(command string) *CommandScreenReader {
	return &CommandScreenReader{command: command, run: ExecRunner}
}

func (r *CommandScreenReader) ReadScreenText(ctx context.Context) (string, error) {
	return shell(ctx, r.run, r.command)
}

// NullScene is a SceneDescriber without a camera.
type NullScene struct{}

func (NullScene) SceneDescription(context.Context) string { return NoScene }

// ScenePoller refreshes a scene description in the background by running a
// describe command on an interval. Readers get the most recent result.
type ScenePoller struct {
	command  string
	interval time.Duration
	run      Runner
	logger   zerolog.Logger

	mu     sync.Mutex
	latest string

	stop chan struct{}
	done chan struct{}
}

// NewScenePoller creates a poller. Call Start to begin polling.
func NewScenePoller(command string, interval time.Duration, logger zerolog.Logger) *ScenePoller {
	return newScenePoller(command, interval, ExecRunner, logger)
}

func newScenePoller(command string, interval time.Duration, run Runner, logger zerolog.Logger) *ScenePoller {
	if interval <= 0 {
		interval = time.Second
	}
	return &ScenePoller{
		command:  command,
		interval: interval,
		run:      run,
		logger:   logger.With().Str("component", "scene").Logger(),
	}
}

// Start polls until ctx is done or Stop is called. It refreshes once before
// returning so the first reader sees a description if the command works.
func (p *ScenePoller) Start(ctx context.Context) {
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.refresh(ctx)

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			case <-ticker.C:
				p.refresh(ctx)
			}
		}
	}()
}

// Stop ends polling and waits for the loop to exit.
func (p *ScenePoller) Stop() {
	if p.stop == nil {
		return
	}
	select {
	case <-p.stop:
	default:
		close(p.stop)
	}
	<-p.done
}

func (p *ScenePoller) refresh(ctx context.Context) {
	rctx, cancel := context.WithTimeout(ctx, p.interval*5)
	defer cancel()
	desc, err := shell(rctx, p.run, p.command)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.logger.Debug().Err(err).Msg("scene description failed")
		}
		return
	}
	p.mu.Lock()
	p.latest = desc
	p.mu.Unlock()
}

func (p *ScenePoller) SceneDescription(context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.latest == "" {
		return NoScene
	}
	return p.latest
}
