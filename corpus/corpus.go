// Package corpus runs grammar test corpora: YAML files pairing inputs
// with the S-expression of the tree they must parse to.
package corpus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/odvcencio/canopy"
	"github.com/odvcencio/canopy/grammars"
)

// File is one corpus file: a language name and its test cases.
type File struct {
	Language string `yaml:"language"`
	Cases    []Case `yaml:"cases"`
}

// Case pairs an input with the expected S-expression rendering of its
// parse tree.
type Case struct {
	Name   string `yaml:"name"`
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// Result is the outcome of running one case.
type Result struct {
	Case   Case
	Actual string
	Passed bool
}

// Parse decodes a corpus file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("corpus: decode: %w", err)
	}
	if f.Language == "" {
		return nil, fmt.Errorf("corpus: missing language")
	}
	return &f, nil
}

// Load reads and decodes a corpus file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", path, err)
	}
	return Parse(data)
}

// Run parses every case with the file's language and compares the
// S-expression output.
func (f *File) Run() ([]Result, error) {
	entry, err := grammars.ByName(f.Language)
	if err != nil {
		return nil, err
	}
	lang := entry.Language()
	parser := canopy.NewParser(lang)

	results := make([]Result, 0, len(f.Cases))
	for _, c := range f.Cases {
		tree := parser.Parse(canopy.NewStringInput(c.Input), nil)
		actual := ""
		if tree != nil {
			actual = tree.StringWithNames(lang)
		}
		results = append(results, Result{
			Case:   c,
			Actual: actual,
			Passed: actual == c.Output,
		})
	}
	return results, nil
}
