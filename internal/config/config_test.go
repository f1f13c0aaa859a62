package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsRuleEnabledIgnoreWinsOverSelect(t *testing.T) {
	s := New(File{
		Select: []string{"unused-import", "bare-except"},
		Ignore: []string{"bare-except"},
	})

	if !s.IsRuleEnabled("unused-import") {
		t.Fatalf("unused-import is selected and not ignored, should be enabled")
	}
	if s.IsRuleEnabled("bare-except") {
		t.Fatalf("ignore must win over select")
	}
	if s.IsRuleEnabled("some-other-rule") {
		t.Fatalf("a non-empty select list is an allow-list: unlisted rules must be disabled")
	}
}

func TestIsRuleEnabledWithoutSelectEnablesEverythingExceptIgnored(t *testing.T) {
	s := New(File{Ignore: []string{"bare-except"}})

	if !s.IsRuleEnabled("unused-import") {
		t.Fatalf("with no select list, unlisted rules should default to enabled")
	}
	if s.IsRuleEnabled("bare-except") {
		t.Fatalf("ignored rule should stay disabled")
	}
}

func TestLoadDefaultsTargetVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pywalk.yaml")
	writeFile(t, path, "select: [\"unused-import\"]\n")

	s, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.TargetVersion() != "3.12" {
		t.Fatalf("TargetVersion should default to 3.12, got %q", s.TargetVersion())
	}
}

func TestLoadAppliesOverridePatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pywalk.yaml")
	writeFile(t, path, "target-version: \"3.9\"\npreview: false\n")

	s, err := Load(path, map[string]string{"preview": "true"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.Preview() {
		t.Fatalf("override patch should have flipped preview to true")
	}
	if s.TargetVersion() != "3.9" {
		t.Fatalf("override should not disturb fields it doesn't touch, got %q", s.TargetVersion())
	}
}

func TestSupportsMatchStatementGatesOnTargetVersion(t *testing.T) {
	old := New(File{TargetVersion: "3.9"})
	if old.SupportsMatchStatement() {
		t.Fatalf("3.9 predates PEP 634 match statements")
	}

	new := New(File{TargetVersion: "3.10"})
	if !new.SupportsMatchStatement() {
		t.Fatalf("3.10 should support match statements")
	}

	newer := New(File{TargetVersion: "3.12"})
	if !newer.SupportsMatchStatement() {
		t.Fatalf("3.12 should support match statements")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
