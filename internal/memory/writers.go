package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/rcliao/deskmate/internal/model"
	"github.com/rcliao/deskmate/internal/store"
)

const preferencePrefix = "User preference:"

// AddConversation records one exchange as two conversation entries, the user
// line first.
func (m *Manager) AddConversation(ctx context.Context, userInput, response string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeLocked(ctx, "User: "+userInput, model.CategoryConversation, map[string]string{
		model.MetaSpeaker: "user",
		model.MetaTurn:    "input",
		model.MetaSession: m.session,
	})
	m.writeLocked(ctx, "Assistant: "+response, model.CategoryConversation, map[string]string{
		model.MetaSpeaker: "assistant",
		model.MetaTurn:    "response",
		model.MetaSession: m.session,
	})
	return nil
}

// AddObservation records what was seen, tagged with its source
// (screen, webcam).
func (m *Manager) AddObservation(ctx context.Context, observation, source string) (string, error) {
	return m.Add(ctx, observation, model.CategoryObservation, map[string]string{
		model.MetaSource: source,
		model.MetaType:   "visual",
	})
}

// AddAction records an action the assistant performed and its outcome.
func (m *Manager) AddAction(ctx context.Context, action, result string) (string, error) {
	content := "Action: " + action
	if result != "" {
		content += " | Result: " + result
	}
	return m.Add(ctx, content, model.CategoryAction, map[string]string{
		model.MetaType: "system_action",
	})
}

// AddUserPreference records key = value as a preference.
func (m *Manager) AddUserPreference(ctx context.Context, key, value string) (string, error) {
	content := fmt.Sprintf("%s %s = %s", preferencePrefix, key, value)
	return m.Add(ctx, content, model.CategoryUserPreference, map[string]string{
		model.MetaType: "setting",
	})
}

// UserPreferences parses stored preferences into a map. When a key was set
// more than once the newest value wins. Malformed entries are skipped.
func (m *Manager) UserPreferences(ctx context.Context) (map[string]string, error) {
	results, err := m.Search(ctx, "user preference", model.CategoryUserPreference, 50)
	if err != nil {
		return nil, err
	}
	mems := lo.Map(results, func(r store.SearchResult, _ int) model.Memory { return r.Memory })
	// Oldest first so later writes overwrite earlier ones.
	sort.SliceStable(mems, func(i, j int) bool { return mems[i].CreatedAt.Before(mems[j].CreatedAt) })

	prefs := map[string]string{}
	for _, mem := range mems {
		key, value, ok := parsePreference(mem.Content)
		if !ok {
			m.logger.Debug().Str("id", mem.ID).Msg("skipping malformed preference")
			continue
		}
		prefs[key] = value
	}
	return prefs, nil
}

func parsePreference(content string) (string, string, bool) {
	_, rest, found := strings.Cut(content, preferencePrefix)
	if !found {
		return "", "", false
	}
	parts := strings.Split(strings.TrimSpace(rest), " = ")
	if len(parts) != 2 {
		return "", "", false
	}
	key := strings.TrimSpace(parts[0])
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(parts[1]), true
}
