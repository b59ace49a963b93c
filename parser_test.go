package canopy

import "testing"

// buildAmbiguousLanguage creates a grammar where the input "x" reduces
// two ways, forcing a GLR fork:
//
//	S -> A | B
//	A -> x   (dynamic precedence 0)
//	B -> x   (dynamic precedence 5)
//
// Both stacks converge on the same state and position, so the fork
// resolves through a merge and the tree selector must pick B.
func buildAmbiguousLanguage() *Language {
	return &Language{
		Name:        "ambiguous",
		SymbolCount: 4,
		SymbolNames: []SymbolName{
			{}, {Internal: "x"}, {Internal: "A"}, {Internal: "B"},
		},
		SymbolMetadata: []SymbolMetadata{
			{},
			{Visible: true, Named: true, Structural: true},
			{Visible: true, Named: true, Structural: true},
			{Visible: true, Named: true, Structural: true},
		},
		ParseActions: []ParseActionEntry{
			{},
			{Actions: []ParseAction{{Type: ParseActionShift, State: 1}}},
			{Actions: []ParseAction{
				{Type: ParseActionReduce, Symbol: 2, ChildCount: 1, Fragile: true},
				{Type: ParseActionReduce, Symbol: 3, ChildCount: 1, Fragile: true, DynamicPrecedence: 5},
			}},
			{Actions: []ParseAction{{Type: ParseActionShift, State: 2}}},
			{Actions: []ParseAction{{Type: ParseActionAccept}}},
		},
		ParseTable: [][]uint16{
			// state 0: shift x, goto 2 for either nonterminal
			{0, 1, 3, 3},
			// state 1: after x, the ambiguous double reduction
			{2, 0, 0, 0},
			// state 2: accept at end of input
			{4, 0, 0, 0},
		},
		ErrorActions: []uint16{0, 0, 0},
		LexStates:    []StateID{0, 0, 0},
		LexDFA: []LexDFAState{
			{
				Default:     -1,
				Transitions: []LexTransition{{Lo: 'x', Hi: 'x', NextState: 1}},
			},
			{AcceptSymbol: 1, Default: -1},
		},
	}
}

func TestGLRForkPicksHigherDynamicPrecedence(t *testing.T) {
	parser := NewParser(buildAmbiguousLanguage())

	tree := parser.Parse(NewStringInput("x"), nil)
	if tree == nil {
		t.Fatal("Parse returned nil tree")
	}

	// B (symbol 3) carries the higher dynamic precedence.
	if tree.Symbol != 3 {
		t.Errorf("selected symbol %d, want B (3)", tree.Symbol)
	}
	if tree.TotalChars() != 1 {
		t.Errorf("TotalChars = %d, want 1", tree.TotalChars())
	}
}

func TestGLRForkMarksWinnerFragile(t *testing.T) {
	parser := NewParser(buildAmbiguousLanguage())
	tree := parser.Parse(NewStringInput("x"), nil)

	// Both reductions happened while two heads were alive.
	if !tree.IsFragile() {
		t.Error("tree built under ambiguity should be fragile")
	}
}

func TestParseTotalityOnJunk(t *testing.T) {
	parser := NewParser(buildAmbiguousLanguage())

	tree := parser.Parse(NewStringInput("???"), nil)
	if tree == nil {
		t.Fatal("junk input must still produce a tree")
	}
	if tree.ErrorCount() == 0 {
		t.Error("junk input should yield error nodes")
	}
	if tree.TotalChars() != 3 {
		t.Errorf("TotalChars = %d, want 3", tree.TotalChars())
	}
}

func TestParseEmptyInputOnNonEmptyGrammar(t *testing.T) {
	parser := NewParser(buildAmbiguousLanguage())

	tree := parser.Parse(NewStringInput(""), nil)
	if tree == nil {
		t.Fatal("empty input must still produce a tree")
	}
	if tree.TotalChars() != 0 {
		t.Errorf("TotalChars = %d, want 0", tree.TotalChars())
	}
}

func TestParserDebugEvents(t *testing.T) {
	parser := NewParser(buildAmbiguousLanguage())

	var events []string
	parser.SetDebugger(Debugger{
		Callback: func(debugType DebugType, message string) {
			events = append(events, message)
		},
	})

	parser.Parse(NewStringInput("x"), nil)
	if len(events) == 0 {
		t.Fatal("no debug events emitted")
	}

	found := map[string]bool{}
	for _, event := range events {
		for _, want := range []string{"new_parse", "split_action", "shift", "accept"} {
			if len(event) >= len(want) && event[:len(want)] == want {
				found[want] = true
			}
		}
	}
	for _, want := range []string{"new_parse", "split_action", "shift", "accept"} {
		if !found[want] {
			t.Errorf("missing %q event", want)
		}
	}
}

func TestParserReusableAcrossParses(t *testing.T) {
	parser := NewParser(buildAmbiguousLanguage())

	first := parser.Parse(NewStringInput("x"), nil)
	second := parser.Parse(NewStringInput("x"), nil)
	if first == nil || second == nil {
		t.Fatal("reused parser failed")
	}
	if first.String() != second.String() {
		t.Errorf("parses differ: %s vs %s", first, second)
	}
}
