package skeleton

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownLanguage is returned for a language name with no marker syntax.
var ErrUnknownLanguage = errors.New("unknown language")

// Language holds the per-language syntax used by markers and placeholders.
type Language struct {
	Name        string
	Comment     string
	Placeholder string
	Ext         string
}

var (
	Python = Language{Name: "python", Comment: "#", Placeholder: "pass", Ext: ".py"}
	Go     = Language{Name: "go", Comment: "//", Placeholder: `panic("TODO")`, Ext: ".go"}
)

var languages = map[string]Language{
	"python": Python,
	"py":     Python,
	"go":     Go,
	"golang": Go,
}

// LookupLanguage resolves a language by name or common alias.
func LookupLanguage(name string) (Language, error) {
	if l, ok := languages[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l, nil
	}
	return Language{}, fmt.Errorf("%w %q (supported: %s)", ErrUnknownLanguage, name, strings.Join(LanguageNames(), ", "))
}

// LanguageNames returns the canonical supported language names, sorted.
func LanguageNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, l := range languages {
		if !seen[l.Name] {
			seen[l.Name] = true
			names = append(names, l.Name)
		}
	}
	sort.Strings(names)
	return names
}
