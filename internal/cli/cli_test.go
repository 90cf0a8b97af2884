package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcliao/deskmate/internal/config"
	"github.com/rcliao/deskmate/internal/intent"
)

func TestBuildRouter_Default(t *testing.T) {
	cfg := config.Defaults()
	router, validator, err := buildRouter(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	rec := router.Classify("click 5000 100")
	if rec.Kind != intent.KindClick {
		t.Fatalf("kind = %s", rec.Kind)
	}
	if v := validator.Validate(rec); len(v.Warnings) == 0 {
		t.Error("expected an out-of-range warning")
	}
}

func TestBuildRouter_CatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	catalog := `
exact:
  - text: lights out
    kind: system_control
keywords:
  - kind: open_app
    keywords: [launch]
descriptions:
  system_control: Control the system
`
	if err := os.WriteFile(path, []byte(catalog), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Defaults()
	cfg.Intent.CatalogFile = path
	cfg.Intent.MaxX = 100
	router, _, err := buildRouter(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	rec := router.Classify("Lights out")
	if rec.Kind != intent.KindSystemControl || rec.Tier != intent.TierExact {
		t.Errorf("got %s via %s", rec.Kind, rec.Tier)
	}
	if got := router.Describe(intent.KindSystemControl); got != "Control the system" {
		t.Errorf("Describe = %q", got)
	}
	if rec := router.Classify("what's on my screen"); rec.Kind == intent.KindScreenRead {
		t.Error("catalog file should replace the built-in catalog")
	}
}

func TestBuildRouter_BadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("patterns:\n  - kind: click\n    patterns: ['(']\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := config.Defaults()
	cfg.Intent.CatalogFile = path
	if _, _, err := buildRouter(&cfg); err == nil {
		t.Error("expected compile error")
	}

	cfg.Intent.CatalogFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, _, err := buildRouter(&cfg); err == nil {
		t.Error("expected read error")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := [][]string{
		{"chat"}, {"classify"}, {"entities"}, {"intents"}, {"context"},
		{"memory", "add"}, {"memory", "search"}, {"memory", "recent"},
		{"memory", "stats"}, {"memory", "cleanup"}, {"memory", "export"},
		{"memory", "import"}, {"memory", "prefs"}, {"memory", "prefs", "set"},
		{"config", "init"}, {"config", "show"},
	}
	for _, path := range want {
		cmd, _, err := RootCmd.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not registered", path)
		}
	}
}
