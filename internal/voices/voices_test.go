package voices

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinVoiceLookup(t *testing.T) {
	tab := Builtin()
	v, err := tab.Voice("es-US", TierNeural)
	if err != nil {
		t.Fatalf("Voice() error = %v", err)
	}
	if v.ID != "es-US-Neural2-A" {
		t.Fatalf("voice id = %q, want %q", v.ID, "es-US-Neural2-A")
	}
	if _, err := tab.Voice("xx-XX", TierNeural); err == nil {
		t.Fatalf("Voice() expected error for unknown language")
	}
	if _, err := tab.Voice("es-US", Tier("premium")); err == nil {
		t.Fatalf("Voice() expected error for unknown tier")
	}
}

func TestLanguageNameFallbacks(t *testing.T) {
	tab := Builtin()
	cases := []struct {
		tag  string
		want string
	}{
		{"es-US", "Spanish"},
		{"es-MX", "Spanish"}, // base subtag match
		{"zz-ZZ", "zz-ZZ"},   // unknown falls back to the tag
	}
	for _, tc := range cases {
		if got := tab.LanguageName(tc.tag); got != tc.want {
			t.Fatalf("LanguageName(%q) = %q, want %q", tc.tag, got, tc.want)
		}
	}
}

func TestLoadMergesOverYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voices.yaml")
	doc := `languages:
  es-US:
    name: Spanish
    voices:
      neural: {id: es-US-Neural2-B, gender: male}
  nl-NL:
    name: Dutch
    voices:
      neural: {id: nl-NL-Wavenet-B, gender: male}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write voices file: %v", err)
	}

	tab, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	v, err := tab.Voice("es-US", TierNeural)
	if err != nil {
		t.Fatalf("Voice() error = %v", err)
	}
	if v.ID != "es-US-Neural2-B" {
		t.Fatalf("override voice id = %q, want %q", v.ID, "es-US-Neural2-B")
	}

	if _, err := tab.Voice("nl-NL", TierNeural); err != nil {
		t.Fatalf("Voice() for added language error = %v", err)
	}
	if got := tab.LanguageName("nl-NL"); got != "Dutch" {
		t.Fatalf("LanguageName = %q, want Dutch", got)
	}

	// Untouched built-ins survive the merge.
	if _, err := tab.Voice("fr-FR", TierStandard); err != nil {
		t.Fatalf("Voice() for builtin language error = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("Load() expected error for missing file")
	}
}
