package collab

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"

	"github.com/rcliao/deskmate/internal/chunker"
)

// VoiceProfile sets the speaking rate (words per minute) and volume (0-1).
type VoiceProfile struct {
	Name   string  `json:"name"`
	Rate   int     `json:"rate"`
	Volume float64 `json:"volume"`
}

// DefaultProfile is used for unknown profile names.
const DefaultProfile = "jarvis"

// Profiles are the built-in voice profiles.
var Profiles = map[string]VoiceProfile{
	"jarvis":   {Name: "jarvis", Rate: 160, Volume: 0.9},
	"friendly": {Name: "friendly", Rate: 180, Volume: 0.8},
	"news":     {Name: "news", Rate: 140, Volume: 0.95},
	"whisper":  {Name: "whisper", Rate: 120, Volume: 0.6},
}

// Profile returns the named profile, falling back to DefaultProfile.
func Profile(name string) VoiceProfile {
	if p, ok := Profiles[name]; ok {
		return p
	}
	return Profiles[DefaultProfile]
}

// ProfileForEmotion maps an emotion to a voice profile name.
func ProfileForEmotion(emotion string) string {
	switch emotion {
	case "happy", "excited":
		return "friendly"
	case "sad":
		return "whisper"
	case "serious":
		return "news"
	default:
		return DefaultProfile
	}
}

// Voice renders one segment of speech synchronously.
type Voice interface {
	Say(ctx context.Context, text string, p VoiceProfile) error
}

// CommandVoice runs an espeak-compatible program:
// <command> -s <rate> -a <amplitude> <text>, amplitude in 0-200.
type CommandVoice struct {
	command string
	run     Runner
}

// NewCommandVoice creates a voice backed by command.
func NewCommandVoice(command string) *CommandVoice {
	return &CommandVoice{command: command, run: ExecRunner}
}

func (v *CommandVoice) Say(ctx context.Context, text string, p VoiceProfile) error {
	amplitude := int(math.Round(math.Max(0, math.Min(1, p.Volume)) * 200))
	_, err := v.run(ctx, v.command, "-s", strconv.Itoa(p.Rate), "-a", strconv.Itoa(amplitude), text)
	return err
}

// NotifyVoice shows each segment as a desktop notification.
type NotifyVoice struct {
	Title string
}

func (v NotifyVoice) Say(_ context.Context, text string, _ VoiceProfile) error {
	title := v.Title
	if title == "" {
		title = "Deskmate"
	}
	return beeep.Notify(title, text, "")
}

// ConsoleVoice prints segments to a writer.
type ConsoleVoice struct {
	W io.Writer
}

func (v ConsoleVoice) Say(_ context.Context, text string, _ VoiceProfile) error {
	_, err := fmt.Fprintf(v.W, "[TTS]: %s\n", text)
	return err
}

type utterance struct {
	text    string
	profile VoiceProfile
}

// QueuedSpeaker speaks on its own goroutine. Speak enqueues text split into
// segments; segments play in order. Close drains the queue.
type QueuedSpeaker struct {
	voice  Voice
	queue  chan utterance
	logger zerolog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewQueuedSpeaker starts the speech worker.
func NewQueuedSpeaker(voice Voice, logger zerolog.Logger) *QueuedSpeaker {
	s := &QueuedSpeaker{
		voice:  voice,
		queue:  make(chan utterance, 64),
		logger: logger.With().Str("component", "speaker").Logger(),
		done:   make(chan struct{}),
	}
	go s.worker()
	return s
}

func (s *QueuedSpeaker) worker() {
	defer close(s.done)
	for u := range s.queue {
		if err := s.voice.Say(context.Background(), u.text, u.profile); err != nil {
			s.logger.Warn().Err(err).Msg("speech failed")
		}
	}
}

// Speak enqueues text with the named profile. Empty text is ignored.
func (s *QueuedSpeaker) Speak(text, profile string) {
	p := Profile(profile)
	for _, seg := range chunker.ForSpeech(text, chunker.DefaultOptions()) {
		s.queue <- utterance{text: seg, profile: p}
	}
}

// Close stops accepting speech and waits for queued segments to finish.
func (s *QueuedSpeaker) Close() error {
	s.closeOnce.Do(func() { close(s.queue) })
	<-s.done
	return nil
}
