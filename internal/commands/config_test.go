package commands

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/mcosta/helpchat/internal/config"
)

// captureStdout runs fn and returns everything it printed to stdout.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), runErr
}

func TestConfigCommandStructure(t *testing.T) {
	for _, name := range []string{"show", "set", "path"} {
		found := false
		for _, cmd := range configCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestRunConfigShow_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := captureStdout(t, func() error {
		return runConfigShow(configShowCmd, nil)
	})
	if err != nil {
		t.Fatalf("runConfigShow failed: %v", err)
	}

	if !strings.Contains(out, config.DefaultConfig().DefaultModel) {
		t.Errorf("output should show default model, got: %s", out)
	}
	if !strings.Contains(out, "support-url") {
		t.Errorf("output should list support-url, got: %s", out)
	}
}

func TestRunConfigSet_Model(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := captureStdout(t, func() error {
		return runConfigSet(configSetCmd, []string{"model", "qa-gpt-4o-mini"})
	})
	if err != nil {
		t.Fatalf("runConfigSet failed: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DefaultModel != "qa-gpt-4o-mini" {
		t.Errorf("DefaultModel = %s, want qa-gpt-4o-mini", cfg.DefaultModel)
	}
}

func TestRunConfigSet_Bool(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := captureStdout(t, func() error {
		return runConfigSet(configSetCmd, []string{"copy-to-clipboard", "true"})
	}); err != nil {
		t.Fatalf("runConfigSet failed: %v", err)
	}

	cfg, _ := config.LoadConfig()
	if !cfg.CopyToClipboard {
		t.Error("CopyToClipboard should be true after set")
	}

	if _, err := captureStdout(t, func() error {
		return runConfigSet(configSetCmd, []string{"verbose", "maybe"})
	}); err == nil {
		t.Error("expected error for non-boolean value")
	}
}

func TestRunConfigSet_UnknownKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := captureStdout(t, func() error {
		return runConfigSet(configSetCmd, []string{"nonsense", "value"})
	})
	if err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestRunConfigSet_UnknownTheme(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := captureStdout(t, func() error {
		return runConfigSet(configSetCmd, []string{"theme", "solarized-unicorn"})
	})
	if err == nil {
		t.Error("expected error for unknown theme")
	}

	if _, err := captureStdout(t, func() error {
		return runConfigSet(configSetCmd, []string{"theme", "nord"})
	}); err != nil {
		t.Errorf("setting a known theme failed: %v", err)
	}
}
