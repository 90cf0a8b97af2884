package assistant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/rcliao/deskmate/internal/collab"
	"github.com/rcliao/deskmate/internal/composer"
	"github.com/rcliao/deskmate/internal/intent"
	"github.com/rcliao/deskmate/internal/memory"
	"github.com/rcliao/deskmate/internal/model"
)

var (
	errNoScreen  = errors.New("screen reading is not available")
	errNoDesktop = errors.New("desktop control is not available")
)

// execute runs the intent's tool and returns its result for grounding. Kinds
// without a tool return "". Tool failures become an error string rather
// than failing the turn.
func (a *Assistant) execute(ctx context.Context, rec intent.Record) string {
	result, err := a.dispatch(ctx, rec)
	if err != nil {
		a.logger.Error().Err(err).Str("intent", string(rec.Kind)).Msg("intent execution failed")
		return fmt.Sprintf("Error executing %s: %v", rec.Kind, err)
	}
	return result
}

func (a *Assistant) dispatch(ctx context.Context, rec intent.Record) (string, error) {
	switch rec.Kind {
	case intent.KindScreenRead:
		return a.readScreen(ctx)
	case intent.KindWebcamAnalyze:
		return a.describeScene(ctx)
	case intent.KindTypeText:
		return a.typeText(ctx, rec)
	case intent.KindClick:
		return a.click(ctx, rec)
	case intent.KindMoveMouse:
		return a.moveMouse(ctx, rec)
	case intent.KindHelpRequest:
		return helpText, nil
	case intent.KindMemoryQuery:
		return a.memoryQuery(ctx, rec.RawText)
	default:
		return "", nil
	}
}

func (a *Assistant) readScreen(ctx context.Context) (string, error) {
	if a.collab.Screen == nil {
		return "", errNoScreen
	}
	text, err := a.collab.Screen.ReadScreenText(ctx)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "No text detected.", nil
	}
	result := "Screen OCR:\n" + composer.Preview(text, a.screenMax)
	a.remember(a.mem.AddObservation(ctx, result, "screen"))
	return result, nil
}

func (a *Assistant) describeScene(ctx context.Context) (string, error) {
	if a.collab.Scene == nil {
		return "Webcam is not available", nil
	}
	desc := a.collab.Scene.SceneDescription(ctx)
	a.remember(a.mem.AddObservation(ctx, desc, "webcam"))
	return desc, nil
}

func (a *Assistant) typeText(ctx context.Context, rec intent.Record) (string, error) {
	text, _ := rec.Slots.String(intent.SlotText)
	if text == "" {
		return "No text specified for typing", nil
	}
	if a.collab.Actuator == nil {
		return "", errNoDesktop
	}
	if !a.confirm(ctx, "type_text", fmt.Sprintf("[Confirm] Type this? -> '%s'  (y/n)", text)) {
		return "User cancelled typing.", nil
	}
	if err := a.collab.Actuator.TypeText(ctx, text); err != nil {
		return "", err
	}
	result := "Typed: " + text
	a.remember(a.mem.AddAction(ctx, "type_text", result))
	return result, nil
}

func (a *Assistant) click(ctx context.Context, rec intent.Record) (string, error) {
	if a.collab.Actuator == nil {
		return "", errNoDesktop
	}
	x, okX := rec.Slots.Int(intent.SlotX)
	y, okY := rec.Slots.Int(intent.SlotY)
	if !okX || !okY {
		if err := a.collab.Actuator.Click(ctx, nil); err != nil {
			return "", err
		}
		result := "Clicked at current position"
		a.remember(a.mem.AddAction(ctx, "click", result))
		return result, nil
	}

	if !a.confirm(ctx, "click", fmt.Sprintf("[Confirm] Click at (%d, %d)? (y/n)", x, y)) {
		return "User cancelled click.", nil
	}
	if err := a.collab.Actuator.Click(ctx, &collab.Point{X: x, Y: y}); err != nil {
		return "", err
	}
	result := fmt.Sprintf("Clicked at (%d, %d)", x, y)
	a.remember(a.mem.AddAction(ctx, "click", result))
	return result, nil
}

func (a *Assistant) moveMouse(ctx context.Context, rec intent.Record) (string, error) {
	x, okX := rec.Slots.Int(intent.SlotX)
	y, okY := rec.Slots.Int(intent.SlotY)
	if !okX || !okY {
		return "", nil
	}
	if a.collab.Actuator == nil {
		return "", errNoDesktop
	}
	if err := a.collab.Actuator.MoveMouse(ctx, collab.Point{X: x, Y: y}); err != nil {
		return "", err
	}
	result := fmt.Sprintf("Moved mouse to (%d, %d)", x, y)
	a.remember(a.mem.AddAction(ctx, "move_mouse", result))
	return result, nil
}

// confirm asks when the action is listed or confirmation is on for all
// actions. Without a confirmer, or when asking fails, the answer is no.
func (a *Assistant) confirm(ctx context.Context, action, prompt string) bool {
	if !a.confirmAll && !lo.Contains(a.confirmFor, action) {
		return true
	}
	if a.collab.Confirmer == nil {
		a.logger.Warn().Str("action", action).Msg("confirmation required but no confirmer; declining")
		return false
	}
	ok, err := a.collab.Confirmer.Confirm(ctx, prompt)
	if err != nil {
		a.logger.Warn().Err(err).Str("action", action).Msg("confirmation failed; declining")
		return false
	}
	return ok
}

func (a *Assistant) remember(_ string, err error) {
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to store memory")
	}
}

// memoryQuery answers "memory stats", "search/find ..." and otherwise lists
// the newest memories.
func (a *Assistant) memoryQuery(ctx context.Context, raw string) (string, error) {
	q := strings.ToLower(raw)
	switch {
	case strings.Contains(q, "stats") || strings.Contains(q, "statistics"):
		st, err := a.mem.Stats(ctx)
		if err != nil {
			return "", err
		}
		return "Memory Statistics: " + formatStats(st), nil

	case strings.Contains(q, "search") || strings.Contains(q, "find"):
		terms := strings.TrimSpace(strings.NewReplacer("search", "", "find", "").Replace(q))
		if terms == "" {
			return "", nil
		}
		results, err := a.mem.Search(ctx, terms, "", 3)
		if err != nil {
			return "", err
		}
		if len(results) == 0 {
			return "No relevant memories found.", nil
		}
		lines := make([]string, 0, len(results))
		for _, r := range results {
			lines = append(lines, "- "+composer.Preview(r.Content, 100)+"...")
		}
		return fmt.Sprintf("Found %d relevant memories:\n%s", len(results), strings.Join(lines, "\n")), nil

	default:
		recent, err := a.mem.Recent(ctx, "", 5)
		if err != nil {
			return "", err
		}
		if len(recent) == 0 {
			return "No recent memories found.", nil
		}
		lines := lo.Map(recent, func(m model.Memory, _ int) string {
			return "- " + composer.Preview(m.Content, 100) + "..."
		})
		return "Recent memories:\n" + strings.Join(lines, "\n"), nil
	}
}

func formatStats(st *memory.Stats) string {
	cats := lo.MapToSlice(st.Categories, func(k string, v int) string { return fmt.Sprintf("%s=%d", k, v) })
	sort.Strings(cats)
	return fmt.Sprintf("total=%d, categories={%s}, buffer_size=%d, database_path=%s",
		st.TotalMemories, strings.Join(cats, ", "), st.BufferSize, st.DatabasePath)
}
