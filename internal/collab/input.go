package collab

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LineListener yields trimmed, non-empty lines from a reader.
type LineListener struct {
	r io.Reader
}

// NewLineListener reads from r (usually os.Stdin).
func NewLineListener(r io.Reader) *LineListener {
	return &LineListener{r: r}
}

// Listen starts reading. The channel closes at EOF or when ctx is done.
func (l *LineListener) Listen(ctx context.Context) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(l.r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case out <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// CommandListener runs a speech-to-text command once per utterance and
// yields each non-empty transcript.
type CommandListener struct {
	command string
	run     Runner
	pause   time.Duration
	logger  zerolog.Logger
}

// NewCommandListener creates a listener for command.
func NewCommandListener(command string, logger zerolog.Logger) *CommandListener {
	return &CommandListener{
		command: command,
		run:     ExecRunner,
		pause:   500 * time.Millisecond,
		logger:  logger.With().Str("component", "listener").Logger(),
	}
}

func (l *CommandListener) Listen(ctx context.Context) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for ctx.Err() == nil {
			text, err := shell(ctx, l.run, l.command)
			if err != nil {
				l.logger.Debug().Err(err).Msg("transcription failed")
				select {
				case <-time.After(l.pause):
				case <-ctx.Done():
					return
				}
				continue
			}
			if text == "" {
				continue
			}
			select {
			case out <- text:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// ChannelConfirmer prints a prompt and reads the answer from a line channel
// shared with the turn loop, so questions and commands come from one input.
type ChannelConfirmer struct {
	lines <-chan string
	w     io.Writer
}

// NewChannelConfirmer creates a confirmer reading answers from lines.
func NewChannelConfirmer(lines <-chan string, w io.Writer) *ChannelConfirmer {
	return &ChannelConfirmer{lines: lines, w: w}
}

// Confirm returns true for an answer starting with "y".
func (c *ChannelConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintln(c.w, prompt)
	select {
	case answer, ok := <-c.lines:
		if !ok {
			return false, io.EOF
		}
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y"), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// AutoConfirmer answers every question the same way.
type AutoConfirmer bool

func (a AutoConfirmer) Confirm(context.Context, string) (bool, error) { return bool(a), nil }
