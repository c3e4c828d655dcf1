package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveConfigPath(t *testing.T) {
	t.Run("uses explicit flag first", func(t *testing.T) {
		got, err := resolveConfigPath("./custom.yaml", "/tmp/active.yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "./custom.yaml" {
			t.Fatalf("expected explicit config path, got %q", got)
		}
	})

	t.Run("uses active config when flag is empty", func(t *testing.T) {
		got, err := resolveConfigPath("", "/tmp/active.yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "/tmp/active.yaml" {
			t.Fatalf("expected active config path, got %q", got)
		}
	})

	t.Run("falls back to home config path", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		got, err := resolveConfigPath("", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := filepath.Join(home, ".catalogrecon.yaml")
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})
}

func TestEnsureConfigFileWithTemplate(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "myconfig.yaml")

	created, err := ensureConfigFileWithTemplate(configPath)
	if err != nil {
		t.Fatalf("unexpected error creating template config: %v", err)
	}
	if !created {
		t.Fatalf("expected file to be created")
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("unexpected error stat config file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected config file mode 0600, got %o", info.Mode().Perm())
	}

	created, err = ensureConfigFileWithTemplate(configPath)
	if err != nil {
		t.Fatalf("unexpected error on existing config file: %v", err)
	}
	if created {
		t.Fatalf("did not expect existing file to be recreated")
	}
}

func TestValidateEditedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	previous := []byte("output:\n  format: csv\n")

	t.Run("keeps valid edits", func(t *testing.T) {
		if err := os.WriteFile(path, []byte("output:\n  format: excel\n"), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		rejected, err := validateEditedConfig(path, previous)
		if err != nil || rejected != "" {
			t.Fatalf("expected edit to be accepted, got %q, %v", rejected, err)
		}
	})

	t.Run("restores previous content on invalid edits", func(t *testing.T) {
		edited := "output:\n  format: json\n"
		if err := os.WriteFile(path, []byte(edited), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		rejected, err := validateEditedConfig(path, previous)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rejected != path+".invalid" {
			t.Fatalf("unexpected rejected path: %q", rejected)
		}

		restored, _ := os.ReadFile(path)
		if string(restored) != string(previous) {
			t.Fatalf("expected previous content restored, got:\n%s", restored)
		}
		kept, _ := os.ReadFile(rejected)
		if !strings.Contains(string(kept), "json") {
			t.Fatalf("expected rejected edit to be kept, got:\n%s", kept)
		}
	})
}

func TestResolveEditorValue(t *testing.T) {
	tests := []struct {
		name   string
		visual string
		editor string
		want   string
	}{
		{name: "visual wins", visual: "code --wait", editor: "nano", want: "code --wait"},
		{name: "editor fallback", visual: "", editor: "nano", want: "nano"},
		{name: "default vi", visual: " ", editor: "", want: "vi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveEditorValue(tt.visual, tt.editor); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildEditorCommand(t *testing.T) {
	cmd, err := buildEditorCommand("code --wait", "/tmp/cfg.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmd.Args) != 3 || cmd.Args[0] != "code" || cmd.Args[1] != "--wait" || cmd.Args[2] != "/tmp/cfg.yaml" {
		t.Fatalf("unexpected command args: %#v", cmd.Args)
	}

	if _, err := buildEditorCommand("   ", "/tmp/cfg.yaml"); err == nil {
		t.Fatalf("expected error for empty editor")
	}
}
