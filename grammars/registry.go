// Package grammars ships hand-built languages for the canopy runtime and
// a registry that maps names and file extensions to them. The tables are
// written by hand in the same shape a grammar compiler would emit.
package grammars

import (
	"fmt"
	"strings"

	"github.com/odvcencio/canopy"
)

// LangEntry holds a registered language with its extensions and an
// optional highlight capture map (symbol name -> capture name).
type LangEntry struct {
	Name       string
	Extensions []string
	Language   func() *canopy.Language // lazy loader
	Captures   map[string]string
}

var registry []LangEntry

// Register adds a language to the registry.
func Register(entry LangEntry) {
	registry = append(registry, entry)
}

// ByName returns the entry registered under the given name.
func ByName(name string) (*LangEntry, error) {
	for i := range registry {
		if registry[i].Name == name {
			return &registry[i], nil
		}
	}
	return nil, fmt.Errorf("grammars: unknown language %q", name)
}

// DetectLanguage returns the entry for a filename, matching by
// extension, or nil if unknown.
func DetectLanguage(filename string) *LangEntry {
	for i := range registry {
		for _, ext := range registry[i].Extensions {
			if strings.HasSuffix(filename, ext) {
				return &registry[i]
			}
		}
	}
	return nil
}

// AllLanguages returns all registered languages.
func AllLanguages() []LangEntry {
	return registry
}
