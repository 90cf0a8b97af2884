// Package assistant runs the turn loop: classify, act, ground, generate,
// speak and remember.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/rcliao/deskmate/internal/collab"
	"github.com/rcliao/deskmate/internal/composer"
	"github.com/rcliao/deskmate/internal/intent"
	"github.com/rcliao/deskmate/internal/llm"
	"github.com/rcliao/deskmate/internal/memory"
)

// ErrNoGenerator is returned by New without a response generator.
var ErrNoGenerator = errors.New("no response generator configured")

// DefaultHistoryTurns is how many buffered turns the generator sees.
const DefaultHistoryTurns = 10

// Options wires an Assistant. Only Generator is required.
type Options struct {
	Router    *intent.Router
	Validator *intent.Validator
	Memory    *memory.Manager
	Composer  *composer.Composer
	Generator llm.Generator
	Collab    collab.Set

	SystemPrompt string
	HistoryTurns int
	// ConfirmActions asks before every desktop action; RequireConfirmationFor
	// lists actions that always ask.
	ConfirmActions         bool
	RequireConfirmationFor []string
	// ScreenMaxChars truncates OCR text in the tool result.
	ScreenMaxChars int
	VoiceProfile   string
	// TurnTimeout bounds one turn's collaborator and generator calls.
	TurnTimeout time.Duration

	Out    io.Writer
	Logger zerolog.Logger
}

// Assistant handles one turn at a time.
type Assistant struct {
	router    *intent.Router
	validator *intent.Validator
	mem       *memory.Manager
	composer  *composer.Composer
	gen       llm.Generator
	collab    collab.Set

	systemPrompt string
	historyTurns int
	confirmAll   bool
	confirmFor   []string
	screenMax    int
	profile      string
	turnTimeout  time.Duration

	out    io.Writer
	logger zerolog.Logger
}

// New creates an Assistant, filling unset collaborators with defaults: the
// default catalog, a degraded memory manager and a composer over it.
func New(o Options) (*Assistant, error) {
	if o.Generator == nil {
		return nil, ErrNoGenerator
	}
	if o.Router == nil {
		o.Router = intent.NewRouter(nil)
	}
	if o.Validator == nil {
		o.Validator = intent.NewValidator(nil, intent.DefaultLimits())
	}
	if o.Memory == nil {
		o.Memory = memory.New(memory.Options{Logger: o.Logger})
	}
	if o.Composer == nil {
		o.Composer = composer.New(o.Memory, o.Router, composer.DefaultOptions(), o.Logger)
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = DefaultSystemPrompt
	}
	if o.HistoryTurns <= 0 {
		o.HistoryTurns = DefaultHistoryTurns
	}
	if o.ScreenMaxChars <= 0 {
		o.ScreenMaxChars = 2000
	}
	if o.VoiceProfile == "" {
		o.VoiceProfile = collab.DefaultProfile
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}

	a := &Assistant{
		router:       o.Router,
		validator:    o.Validator,
		mem:          o.Memory,
		composer:     o.Composer,
		gen:          o.Generator,
		collab:       o.Collab,
		systemPrompt: o.SystemPrompt,
		historyTurns: o.HistoryTurns,
		confirmAll:   o.ConfirmActions,
		confirmFor:   o.RequireConfirmationFor,
		screenMax:    o.ScreenMaxChars,
		profile:      o.VoiceProfile,
		turnTimeout:  o.TurnTimeout,
		out:          o.Out,
		logger:       o.Logger.With().Str("component", "assistant").Logger(),
	}
	a.logger.Info().Str("capabilities", a.Capabilities().String()).Msg("assistant ready")
	return a, nil
}

// Capabilities reports which collaborators are wired.
func (a *Assistant) Capabilities() collab.Capabilities {
	return a.collab.Capabilities()
}

// Turn records what happened during one turn.
type Turn struct {
	Input      string                  `json:"input"`
	Intent     intent.Record           `json:"intent"`
	Validation intent.ValidationResult `json:"validation"`
	ToolResult string                  `json:"tool_result,omitempty"`
	Context    string                  `json:"context"`
	Response   string                  `json:"response"`
	Err        error                   `json:"-"`
}

// HandleTurn classifies input, executes the intent, builds grounding,
// generates and speaks a reply, and records the exchange. A generation
// failure yields ErrorReply and nothing is remembered.
func (a *Assistant) HandleTurn(ctx context.Context, input string) Turn {
	if a.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.turnTimeout)
		defer cancel()
	}

	t := Turn{Input: input}
	t.Intent = a.router.Classify(input)
	fmt.Fprintf(a.out, "[Intent]: %s (confidence: %.2f)\n", t.Intent.Kind, t.Intent.Confidence)

	t.Validation = a.validator.Validate(t.Intent)
	for _, w := range t.Validation.Warnings {
		fmt.Fprintf(a.out, "[Warning]: %s\n", w)
	}

	t.ToolResult = a.execute(ctx, t.Intent)

	var observation string
	if a.collab.Scene != nil && t.Intent.Kind != intent.KindWebcamAnalyze {
		observation = a.collab.Scene.SceneDescription(ctx)
	}
	t.Context = a.composer.Build(ctx, composer.Turn{
		Query:       input,
		Kind:        t.Intent.Kind,
		Observation: observation,
		ToolResult:  t.ToolResult,
	})

	response, err := a.gen.Generate(ctx, a.systemPrompt, a.history(input), t.Context)
	if err != nil {
		a.logger.Error().Err(err).Str("intent", string(t.Intent.Kind)).Msg("turn failed")
		t.Err = err
		t.Response = ErrorReply
		a.speak(ErrorReply)
		fmt.Fprintf(a.out, "[Error]: Error processing input: %v\n", err)
		return t
	}
	t.Response = response

	a.speak(response)
	fmt.Fprintf(a.out, "[Assistant]: %s\n", response)

	if err := a.mem.AddConversation(ctx, input, response); err != nil {
		a.logger.Warn().Err(err).Msg("failed to store conversation")
	}
	return t
}

// history maps the newest buffered turns to chat messages and appends the
// current input.
func (a *Assistant) history(input string) []llm.Message {
	msgs := lo.Map(a.mem.Buffer(a.historyTurns), func(e memory.BufferEntry, _ int) llm.Message {
		if e.Speaker() == "assistant" {
			return llm.Message{Role: llm.RoleAssistant, Content: strings.TrimPrefix(e.Content, "Assistant: ")}
		}
		return llm.Message{Role: llm.RoleUser, Content: strings.TrimPrefix(e.Content, "User: ")}
	})
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: input})
}

func (a *Assistant) speak(text string) {
	if a.collab.Speaker != nil {
		a.collab.Speaker.Speak(text, a.profile)
	}
}

// Run handles lines until the channel closes, ctx ends, or the user types
// quit or exit. prompt is printed before waiting for each line.
func (a *Assistant) Run(ctx context.Context, lines <-chan string, prompt string) error {
	for {
		if prompt != "" {
			fmt.Fprint(a.out, prompt)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			switch strings.ToLower(line) {
			case "quit", "exit":
				return nil
			}
			a.HandleTurn(ctx, line)
		}
	}
}
