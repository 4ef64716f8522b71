package firefox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mvens/tubefrage/internal/types"
)

func writeSessionStub(t *testing.T, profileDir string) {
	t.Helper()
	backups := filepath.Join(profileDir, "sessionstore-backups")
	if err := os.MkdirAll(backups, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(backups, "recovery.jsonlz4"), []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseProfilesINI(t *testing.T) {
	dir := t.TempDir()

	// Only "work" has a session store; "stale" should be filtered out.
	writeSessionStub(t, filepath.Join(dir, "work.profile"))

	ini := `[Install4F96D1932A9F858E]
Default=work.profile

[Profile1]
Name=work
IsRelative=1
Path=work.profile
Default=1

[Profile0]
Name=stale
IsRelative=1
Path=stale.profile
`
	iniPath := filepath.Join(dir, "profiles.ini")
	if err := os.WriteFile(iniPath, []byte(ini), 0o644); err != nil {
		t.Fatal(err)
	}

	profiles, err := ParseProfilesINI(iniPath, dir)
	if err != nil {
		t.Fatalf("ParseProfilesINI returned error: %v", err)
	}

	if len(profiles) != 1 {
		t.Fatalf("expected 1 usable profile, got %d", len(profiles))
	}
	p := profiles[0]
	if p.Name != "work" {
		t.Errorf("Name = %q, want work", p.Name)
	}
	if !p.IsDefault {
		t.Error("expected IsDefault=true")
	}
	if p.Path != filepath.Join(dir, "work.profile") {
		t.Errorf("Path = %q, want absolute path under %q", p.Path, dir)
	}
}

func TestResolveProfile(t *testing.T) {
	profiles := []types.Profile{
		{Name: "first"},
		{Name: "main", IsDefault: true},
	}

	t.Run("by name", func(t *testing.T) {
		p, err := ResolveProfile(profiles, "first")
		if err != nil {
			t.Fatal(err)
		}
		if p.Name != "first" {
			t.Errorf("got %q, want first", p.Name)
		}
	})

	t.Run("default when unnamed", func(t *testing.T) {
		p, err := ResolveProfile(profiles, "")
		if err != nil {
			t.Fatal(err)
		}
		if p.Name != "main" {
			t.Errorf("got %q, want main", p.Name)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		if _, err := ResolveProfile(profiles, "nope"); err == nil {
			t.Error("expected error for unknown profile")
		}
	})

	t.Run("empty list", func(t *testing.T) {
		if _, err := ResolveProfile(nil, ""); err == nil {
			t.Error("expected error for empty profile list")
		}
	})
}
