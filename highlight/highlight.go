// Package highlight turns parse trees into styled source ranges. It maps
// symbol names to capture names ("keyword", "string", "number") through a
// per-language capture map, the lightweight stand-in for a full query
// language: the tree walk does the structural work and the map names the
// results.
package highlight

import (
	"sort"

	"github.com/odvcencio/canopy"
)

// Range is a styled span of source code. Captures are the conventional
// highlight names an editor maps to style classes.
type Range struct {
	StartByte uint32
	EndByte   uint32
	Capture   string
}

// Highlighter produces Ranges from parse trees of one language.
type Highlighter struct {
	lang     *canopy.Language
	captures map[string]string
}

// New creates a highlighter for a language with the given capture map
// (symbol name -> capture name). Symbols absent from the map produce no
// range; error nodes always capture as "error".
func New(lang *canopy.Language, captures map[string]string) *Highlighter {
	return &Highlighter{lang: lang, captures: captures}
}

// Highlight walks the tree and returns the captured ranges sorted by
// start byte.
func (h *Highlighter) Highlight(tree *canopy.Tree) []Range {
	if tree == nil {
		return nil
	}
	var ranges []Range
	h.walk(tree, 0, &ranges)
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].StartByte != ranges[j].StartByte {
			return ranges[i].StartByte < ranges[j].StartByte
		}
		return ranges[i].EndByte > ranges[j].EndByte
	})
	return ranges
}

// walk visits a node whose span (padding included) begins at start.
func (h *Highlighter) walk(t *canopy.Tree, start uint32, ranges *[]Range) {
	textStart := start + t.Padding.Bytes

	capture := ""
	if t.IsError() {
		capture = "error"
	} else if name := h.lang.SymbolName(t.Symbol); name != "" {
		capture = h.captures[name]
	}
	if capture != "" && t.Size.Bytes > 0 {
		*ranges = append(*ranges, Range{
			StartByte: textStart,
			EndByte:   textStart + t.Size.Bytes,
			Capture:   capture,
		})
	}

	// Children cover the node's whole span, the padding included: the
	// first child's padding is the node's padding.
	pos := start
	for _, child := range t.Children {
		h.walk(child, pos, ranges)
		pos += child.TotalBytes()
	}
}
