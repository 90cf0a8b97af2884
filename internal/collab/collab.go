// Package collab holds the assistant's collaborators: screen capture, scene
// description, desktop input, speech output and input listening. Each is an
// interface with a process-backed implementation.
package collab

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// NoScene is reported by a SceneDescriber that has no camera frame.
const NoScene = "No webcam feed available"

// ScreenReader captures the screen and returns its text.
type ScreenReader interface {
	ReadScreenText(ctx context.Context) (string, error)
}

// SceneDescriber returns the latest scene description, or NoScene.
type SceneDescriber interface {
	SceneDescription(ctx context.Context) string
}

// Point is a screen coordinate.
type Point struct {
	X, Y int
}

// Actuator injects keyboard and mouse input.
type Actuator interface {
	TypeText(ctx context.Context, text string) error
	// Click clicks at p, or at the current pointer position when p is nil.
	Click(ctx context.Context, p *Point) error
	MoveMouse(ctx context.Context, p Point) error
}

// Speaker voices text. Speak enqueues and returns immediately.
type Speaker interface {
	Speak(text, profile string)
	Close() error
}

// Listener yields user utterances until ctx is done or input ends.
type Listener interface {
	Listen(ctx context.Context) <-chan string
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Set bundles the collaborators available to the assistant. Nil fields are
// unavailable capabilities.
type Set struct {
	Screen    ScreenReader
	Scene     SceneDescriber
	Actuator  Actuator
	Speaker   Speaker
	Listener  Listener
	Confirmer Confirmer
}

// Capabilities records which collaborators are present.
type Capabilities struct {
	Screen   bool `json:"screen"`
	Scene    bool `json:"scene"`
	Actuator bool `json:"actuator"`
	Speech   bool `json:"speech"`
	Listen   bool `json:"listen"`
	Confirm  bool `json:"confirm"`
}

// Capabilities reports which collaborators in s are set.
func (s Set) Capabilities() Capabilities {
	return Capabilities{
		Screen:   s.Screen != nil,
		Scene:    s.Scene != nil,
		Actuator: s.Actuator != nil,
		Speech:   s.Speaker != nil,
		Listen:   s.Listener != nil,
		Confirm:  s.Confirmer != nil,
	}
}

func (c Capabilities) String() string {
	var on []string
	for _, f := range []struct {
		name string
		ok   bool
	}{
		{"screen", c.Screen},
		{"webcam", c.Scene},
		{"desktop", c.Actuator},
		{"speech", c.Speech},
		{"listen", c.Listen},
		{"confirm", c.Confirm},
	} {
		if f.ok {
			on = append(on, f.name)
		}
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ", ")
}

// Runner executes a program and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the program with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	//nolint:gosec // G204: commands come from the user's config
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func shell(ctx context.Context, run Runner, command string) (string, error) {
	out, err := run(ctx, "sh", "-c", command)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
