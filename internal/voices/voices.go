package voices

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tier selects the quality class of a dedicated-TTS voice.
type Tier string

const (
	TierNeural   Tier = "neural"
	TierStandard Tier = "standard"
)

// Voice identifies one provider-side voice.
type Voice struct {
	ID     string `yaml:"id"`
	Gender string `yaml:"gender"`
}

// Language describes one supported language tag: its human-readable name
// (embedded in the primary provider's spoken-language instruction) and its
// per-tier voice identifiers.
type Language struct {
	Name   string         `yaml:"name"`
	Voices map[Tier]Voice `yaml:"voices"`
}

// Table maps BCP-47-like language tags to language metadata.
type Table struct {
	languages map[string]Language
}

// Built-in coverage for the word lists the tool was written for. A YAML
// file can extend or override any entry (see Load).
var builtins = map[string]Language{
	"es-US": {Name: "Spanish", Voices: map[Tier]Voice{
		TierNeural:   {ID: "es-US-Neural2-A", Gender: "female"},
		TierStandard: {ID: "es-US-Standard-A", Gender: "female"},
	}},
	"es-ES": {Name: "Spanish", Voices: map[Tier]Voice{
		TierNeural:   {ID: "es-ES-Neural2-C", Gender: "female"},
		TierStandard: {ID: "es-ES-Standard-C", Gender: "female"},
	}},
	"en-US": {Name: "English", Voices: map[Tier]Voice{
		TierNeural:   {ID: "en-US-Neural2-F", Gender: "female"},
		TierStandard: {ID: "en-US-Standard-C", Gender: "female"},
	}},
	"en-GB": {Name: "English", Voices: map[Tier]Voice{
		TierNeural:   {ID: "en-GB-Neural2-A", Gender: "female"},
		TierStandard: {ID: "en-GB-Standard-A", Gender: "female"},
	}},
	"fr-FR": {Name: "French", Voices: map[Tier]Voice{
		TierNeural:   {ID: "fr-FR-Neural2-A", Gender: "female"},
		TierStandard: {ID: "fr-FR-Standard-A", Gender: "female"},
	}},
	"de-DE": {Name: "German", Voices: map[Tier]Voice{
		TierNeural:   {ID: "de-DE-Neural2-F", Gender: "female"},
		TierStandard: {ID: "de-DE-Standard-A", Gender: "female"},
	}},
	"it-IT": {Name: "Italian", Voices: map[Tier]Voice{
		TierNeural:   {ID: "it-IT-Neural2-A", Gender: "female"},
		TierStandard: {ID: "it-IT-Standard-A", Gender: "female"},
	}},
	"pt-BR": {Name: "Portuguese", Voices: map[Tier]Voice{
		TierNeural:   {ID: "pt-BR-Neural2-A", Gender: "female"},
		TierStandard: {ID: "pt-BR-Standard-A", Gender: "female"},
	}},
	"ja-JP": {Name: "Japanese", Voices: map[Tier]Voice{
		TierNeural:   {ID: "ja-JP-Neural2-B", Gender: "female"},
		TierStandard: {ID: "ja-JP-Standard-A", Gender: "female"},
	}},
}

// Builtin returns the compiled-in table.
func Builtin() *Table {
	langs := make(map[string]Language, len(builtins))
	for tag, l := range builtins {
		langs[tag] = l
	}
	return &Table{languages: langs}
}

// Load reads a YAML override file and merges it over the built-in table.
// File entries win per language tag.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voices file: %w", err)
	}
	var doc struct {
		Languages map[string]Language `yaml:"languages"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse voices file: %w", err)
	}
	t := Builtin()
	for tag, l := range doc.Languages {
		t.languages[tag] = l
	}
	return t, nil
}

// LanguageName returns the human-readable name for a language tag. Unknown
// tags fall back to the base subtag's entry if one exists, then to the tag
// itself so the primary provider still gets a usable instruction.
func (t *Table) LanguageName(tag string) string {
	if l, ok := t.languages[tag]; ok && l.Name != "" {
		return l.Name
	}
	if base, _, found := strings.Cut(tag, "-"); found {
		for known, l := range t.languages {
			if strings.HasPrefix(known, base+"-") && l.Name != "" {
				return l.Name
			}
		}
	}
	return tag
}

// Voice resolves the voice id for a language tag and tier.
func (t *Table) Voice(tag string, tier Tier) (Voice, error) {
	l, ok := t.languages[tag]
	if !ok {
		return Voice{}, fmt.Errorf("no voices configured for language %q", tag)
	}
	v, ok := l.Voices[tier]
	if !ok || v.ID == "" {
		return Voice{}, fmt.Errorf("no %s voice configured for language %q", tier, tag)
	}
	return v, nil
}
