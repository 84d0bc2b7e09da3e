package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindConfig_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	os.WriteFile(path, []byte("command_char: \"!\"\n"), 0o600)

	got, err := FindConfig(path)
	if err != nil {
		t.Fatalf("FindConfig(%q) error: %v", path, err)
	}
	if got != path {
		t.Errorf("FindConfig(%q) = %q, want %q", path, got, path)
	}
}

func TestFindConfig_ExplicitMissing(t *testing.T) {
	_, err := FindConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("FindConfig with missing explicit path should error")
	}
}

func TestFindConfig_CWD(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("command_char: \"!\"\n"), 0o600)

	orig, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(orig)

	got, err := FindConfig("")
	if err != nil {
		t.Fatalf("FindConfig(\"\") error: %v", err)
	}
	if got != "config.yaml" {
		t.Errorf("FindConfig(\"\") = %q, want %q", got, "config.yaml")
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("sources:\n  irc1:\n    type: irc\n    config:\n      nickname: ${CHATBOT_TEST_NICK}\n"), 0o600)
	os.Setenv("CHATBOT_TEST_NICK", "robo")
	defer os.Unsetenv("CHATBOT_TEST_NICK")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	var irc struct {
		Nickname string `yaml:"nickname"`
	}
	if err := cfg.Sources["irc1"].Decode(&irc); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if irc.Nickname != "robo" {
		t.Errorf("nickname = %q, want %q", irc.Nickname, "robo")
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("{}\n"), 0o600)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.CommandChar != "!" {
		t.Errorf("command_char = %q, want %q", cfg.CommandChar, "!")
	}
	if cfg.LogFolder != "./logs" {
		t.Errorf("log_folder = %q, want %q", cfg.LogFolder, "./logs")
	}
}

func TestValidate_RejectsReservedSourceId(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("sources:\n  core:\n    type: console\n"), 0o600)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for reserved source id \"core\"")
	}
	if !strings.Contains(err.Error(), "core") {
		t.Errorf("error should mention the reserved id, got: %v", err)
	}
}

func TestValidate_RejectsBadLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("log_level: obnoxious\n"), 0o600)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid log_level")
	}
}

func TestValidate_RejectsMissingSourceType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("sources:\n  irc1:\n    config: {}\n"), 0o600)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for source missing a type tag")
	}
}
