// Package config implements the YAML-backed hostapi.Settings used by
// cmd/pywalk: rule toggles, extra builtins, typing-module aliases, preview
// features, and the Python target version gating annotation-context
// defaults (§2.3 of the design).
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/sjson"
	"golang.org/x/mod/semver"

	"github.com/cwbudde/pywalk/pkg/hostapi"
)

// File is the on-disk shape of a pywalk.yaml configuration file.
type File struct {
	Select              []string `yaml:"select"`
	Ignore              []string `yaml:"ignore"`
	ExtraBuiltins       []string `yaml:"extra-builtins"`
	TypingModuleAliases []string `yaml:"typing-modules"`
	ExtendGenerics      []string `yaml:"extend-generics"`
	Preview             bool     `yaml:"preview"`
	TargetVersion       string   `yaml:"target-version"`
}

// Settings implements hostapi.Settings over a loaded File, precomputing the
// rule-enablement lookup so IsRuleEnabled stays O(1) per call.
type Settings struct {
	file     File
	selected map[string]bool
	ignored  map[string]bool
}

// Load reads path as YAML and applies patch (a JSON-pointer-ish list of
// `key=value` overrides, applied with tidwall/sjson before unmarshal) on
// top of it. cmd/pywalk always passes a nil patch; no CLI flag sets one.
func Load(path string, patch map[string]string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(patch) > 0 {
		asJSON, err := yaml.YAMLToJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("config: converting %s to JSON for override: %w", path, err)
		}
		doc := string(asJSON)
		for key, value := range patch {
			if isJSONLiteral(value) {
				doc, err = sjson.SetRaw(doc, key, value)
			} else {
				doc, err = sjson.Set(doc, key, value)
			}
			if err != nil {
				return nil, fmt.Errorf("config: applying override %s: %w", key, err)
			}
		}
		raw = []byte(doc)
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if f.TargetVersion == "" {
		f.TargetVersion = "3.12"
	}
	return New(f), nil
}

// isJSONLiteral reports whether an override value should be spliced in
// verbatim (bools, numbers, arrays) rather than quoted as a JSON string, so
// `--config-override preview=true` lands in the bool field it targets.
func isJSONLiteral(v string) bool {
	if v == "true" || v == "false" || v == "null" {
		return true
	}
	if len(v) > 0 && (v[0] == '[' || v[0] == '{') {
		return true
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

// New builds a Settings directly from an already-decoded File, used by
// tests and by Load.
func New(f File) *Settings {
	s := &Settings{file: f}
	if len(f.Select) > 0 {
		s.selected = make(map[string]bool, len(f.Select))
		for _, code := range f.Select {
			s.selected[code] = true
		}
	}
	s.ignored = make(map[string]bool, len(f.Ignore))
	for _, code := range f.Ignore {
		s.ignored[code] = true
	}
	return s
}

// IsRuleEnabled implements hostapi.Settings: a non-empty Select list is an
// allow-list, Ignore always wins regardless of Select.
func (s *Settings) IsRuleEnabled(code string) bool {
	if s.ignored[code] {
		return false
	}
	if s.selected != nil {
		return s.selected[code]
	}
	return true
}

func (s *Settings) ExtraBuiltins() []string       { return s.file.ExtraBuiltins }
func (s *Settings) TypingModuleAliases() []string { return s.file.TypingModuleAliases }
func (s *Settings) Preview() bool                 { return s.file.Preview }
func (s *Settings) ExtendGenerics() []string       { return s.file.ExtendGenerics }
func (s *Settings) TargetVersion() string          { return s.file.TargetVersion }

// SupportsMatchStatement reports whether the configured target version is
// new enough for PEP 634 structural pattern matching (3.10+), gating
// whether a `match` statement is itself a syntax error rather than a
// walkable construct — using golang.org/x/mod/semver's comparator on a
// "v"-prefixed rendering of the dotted Python version (§2.3, §3 domain
// stack: semver gating).
func (s *Settings) SupportsMatchStatement() bool {
	return semver.Compare("v"+s.file.TargetVersion, "v3.10") >= 0
}

var _ hostapi.Settings = (*Settings)(nil)
