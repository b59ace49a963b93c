package highlight

import (
	"testing"

	"github.com/odvcencio/canopy"
	"github.com/odvcencio/canopy/grammars"
)

func TestHighlightPairs(t *testing.T) {
	entry, err := grammars.ByName("pairs")
	if err != nil {
		t.Fatal(err)
	}
	lang := entry.Language()
	tree := canopy.NewParser(lang).Parse(canopy.NewStringInput("a  b"), nil)

	ranges := New(lang, entry.Captures).Highlight(tree)
	if len(ranges) != 2 {
		t.Fatalf("got %d ranges, want 2", len(ranges))
	}

	if ranges[0].Capture != "keyword" || ranges[0].StartByte != 0 || ranges[0].EndByte != 1 {
		t.Errorf("first range wrong: %+v", ranges[0])
	}
	// Whitespace shifts the second token, padding excluded from its range.
	if ranges[1].Capture != "string" || ranges[1].StartByte != 3 || ranges[1].EndByte != 4 {
		t.Errorf("second range wrong: %+v", ranges[1])
	}
}

func TestHighlightErrorCapture(t *testing.T) {
	entry, err := grammars.ByName("pairs")
	if err != nil {
		t.Fatal(err)
	}
	lang := entry.Language()
	tree := canopy.NewParser(lang).Parse(canopy.NewStringInput("axb"), nil)

	ranges := New(lang, entry.Captures).Highlight(tree)

	var errRange *Range
	for i := range ranges {
		if ranges[i].Capture == "error" {
			errRange = &ranges[i]
		}
	}
	if errRange == nil {
		t.Fatal("no error capture emitted")
	}
	if errRange.StartByte != 1 || errRange.EndByte != 2 {
		t.Errorf("error range = [%d,%d), want [1,2)", errRange.StartByte, errRange.EndByte)
	}
}

func TestHighlightSortedByStart(t *testing.T) {
	entry, err := grammars.ByName("expr")
	if err != nil {
		t.Fatal(err)
	}
	lang := entry.Language()
	tree := canopy.NewParser(lang).Parse(canopy.NewStringInput("n+n*n"), nil)

	ranges := New(lang, entry.Captures).Highlight(tree)
	if len(ranges) != 5 {
		t.Fatalf("got %d ranges, want 5 tokens", len(ranges))
	}
	for i := 1; i < len(ranges); i++ {
		if ranges[i].StartByte < ranges[i-1].StartByte {
			t.Fatal("ranges not sorted")
		}
	}
	if ranges[1].Capture != "operator" {
		t.Errorf("second range capture = %q", ranges[1].Capture)
	}
}

func TestHighlightNilTree(t *testing.T) {
	if got := New(&canopy.Language{}, nil).Highlight(nil); got != nil {
		t.Errorf("nil tree should produce no ranges, got %v", got)
	}
}
