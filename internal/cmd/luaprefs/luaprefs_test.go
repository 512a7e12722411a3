package luaprefs

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("luaprefs", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "luaprefs.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Script != "" {
		t.Fatalf("expected empty script, got %q", cfg.Script)
	}
	if cfg.Verbose {
		t.Fatal("expected verbose to default to false")
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("LUAPREFS_DB", "env.db")
	fs := flag.NewFlagSet("luaprefs", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-db", "flag.db", "-script", "run.lua"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "flag.db" {
		t.Fatalf("expected flag db path, got %q", cfg.DBPath)
	}
	if cfg.Script != "run.lua" {
		t.Fatalf("expected script from flag, got %q", cfg.Script)
	}
}

func TestParseConfigPositionalScript(t *testing.T) {
	fs := flag.NewFlagSet("luaprefs", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"setup.lua"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Script != "setup.lua" {
		t.Fatalf("expected positional script, got %q", cfg.Script)
	}
}

func TestRunRequiresScript(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), Config{DBPath: filepath.Join(t.TempDir(), "prefs.db")}, nil, nil)
	if err == nil {
		t.Fatal("expected missing script error")
	}
}

func TestRunExecutesScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "setup.lua")
	source := `
prefs.write_integer("com.example.app", "retryCount", 3)
prefs.write_string("com.example.app", "greeting", "hello")
`
	if err := os.WriteFile(scriptPath, []byte(source), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	cfg := Config{
		DBPath: filepath.Join(dir, "prefs.db"),
		Script: scriptPath,
	}
	var out, errOut bytes.Buffer
	if err := Run(context.Background(), cfg, &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunReportsScriptError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "bad.lua")
	if err := os.WriteFile(scriptPath, []byte(`error("prefs misuse")`), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	cfg := Config{
		DBPath: filepath.Join(dir, "prefs.db"),
		Script: scriptPath,
	}
	err := Run(context.Background(), cfg, nil, nil)
	if err == nil {
		t.Fatal("expected script error")
	}
	if !strings.Contains(err.Error(), "prefs misuse") {
		t.Fatalf("error = %v, want message containing prefs misuse", err)
	}
}

func TestRunPersistsAcrossRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "prefs.db")

	writeScript := filepath.Join(dir, "write.lua")
	if err := os.WriteFile(writeScript, []byte(`prefs.write_boolean("com.example.app", "seeded", true)`), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	checkScript := filepath.Join(dir, "check.lua")
	check := `
if not prefs.read_boolean("com.example.app", "seeded") then
  error("seeded preference missing")
end
`
	if err := os.WriteFile(checkScript, []byte(check), 0o600); err != nil {
		t.Fatalf("write check script: %v", err)
	}

	if err := Run(context.Background(), Config{DBPath: dbPath, Script: writeScript}, nil, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := Run(context.Background(), Config{DBPath: dbPath, Script: checkScript}, nil, nil); err != nil {
		t.Fatalf("second run: %v", err)
	}
}
