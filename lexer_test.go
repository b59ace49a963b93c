package canopy

import "testing"

// testLexLanguage builds a minimal language whose DFA accepts runs of
// lowercase letters as symbol 1 and treats spaces as skipped padding.
func testLexLanguage() *Language {
	return &Language{
		Name: "lex-test",
		SymbolMetadata: []SymbolMetadata{
			{},
			{Visible: true, Named: true, Structural: true},
		},
		SymbolNames: []SymbolName{{}, {Internal: "word"}},
		LexDFA: []LexDFAState{
			{
				Default: -1,
				Transitions: []LexTransition{
					{Lo: 'a', Hi: 'z', NextState: 1},
					{Lo: ' ', Hi: ' ', NextState: 2},
				},
			},
			{
				AcceptSymbol: 1,
				Default:      -1,
				Transitions:  []LexTransition{{Lo: 'a', Hi: 'z', NextState: 1}},
			},
			{
				Skip:        true,
				Default:     -1,
				Transitions: []LexTransition{{Lo: ' ', Hi: ' ', NextState: 2}},
			},
		},
	}
}

func lexAll(lang *Language, input Input) []*Tree {
	l := NewLexer()
	l.SetInput(input)
	var trees []*Tree
	for {
		tree := l.lexDFA(lang, 0, false)
		trees = append(trees, tree)
		if tree.Symbol == SymbolEnd {
			return trees
		}
	}
}

func TestLexerTokens(t *testing.T) {
	trees := lexAll(testLexLanguage(), NewStringInput("ab cd"))

	if len(trees) != 3 {
		t.Fatalf("lexed %d trees, want word, word, end", len(trees))
	}
	first, second := trees[0], trees[1]

	if first.Symbol != 1 || first.Size.Chars != 2 || first.Padding.Chars != 0 {
		t.Errorf("first token wrong: sym=%d size=%d padding=%d",
			first.Symbol, first.Size.Chars, first.Padding.Chars)
	}
	// The skipped space becomes padding of the second token.
	if second.Symbol != 1 || second.Size.Chars != 2 || second.Padding.Chars != 1 {
		t.Errorf("second token wrong: sym=%d size=%d padding=%d",
			second.Symbol, second.Size.Chars, second.Padding.Chars)
	}
}

func TestLexerRowColumnTracking(t *testing.T) {
	lang := testLexLanguage()
	lang.LexDFA[0].Transitions = append(lang.LexDFA[0].Transitions,
		LexTransition{Lo: '\n', Hi: '\n', NextState: 2})
	lang.LexDFA[2].Transitions = append(lang.LexDFA[2].Transitions,
		LexTransition{Lo: '\n', Hi: '\n', NextState: 2})

	trees := lexAll(lang, NewStringInput("ab\ncd"))
	second := trees[1]
	if second.Padding.Extent.Row != 1 || second.Padding.Extent.Column != 0 {
		t.Errorf("padding extent = %+v, want row 1", second.Padding.Extent)
	}
	if second.Size.Extent.Row != 0 || second.Size.Extent.Column != 2 {
		t.Errorf("size extent = %+v", second.Size.Extent)
	}
}

func TestLexerErrorChar(t *testing.T) {
	l := NewLexer()
	l.SetInput(NewStringInput("!ab"))
	lang := testLexLanguage()

	tree := l.lexDFA(lang, 0, true)
	if tree.Symbol != SymbolLexerError {
		t.Fatalf("symbol = %d, want lexer error", tree.Symbol)
	}
	if tree.Size.Chars != 1 {
		t.Errorf("error size = %d, want a single character", tree.Size.Chars)
	}

	tree = l.lexDFA(lang, 0, false)
	if tree.Symbol != 1 || tree.Size.Chars != 2 {
		t.Errorf("lexer did not resume after error: sym=%d size=%d",
			tree.Symbol, tree.Size.Chars)
	}
}

func TestLexerEndPadding(t *testing.T) {
	trees := lexAll(testLexLanguage(), NewStringInput("ab  "))
	end := trees[len(trees)-1]
	if end.Symbol != SymbolEnd {
		t.Fatalf("last tree is %d, want end", end.Symbol)
	}
	if end.Padding.Chars != 2 {
		t.Errorf("trailing whitespace should pad the end token, got %d", end.Padding.Chars)
	}
}

func TestLexerReset(t *testing.T) {
	l := NewLexer()
	l.SetInput(NewStringInput("ab cd"))
	lang := testLexLanguage()

	l.lexDFA(lang, 0, false)
	first := l.Position()

	l.lexDFA(lang, 0, false)
	l.Reset(first)
	if !l.Position().Eq(first) {
		t.Errorf("position after reset = %+v, want %+v", l.Position(), first)
	}

	tree := l.lexDFA(lang, 0, false)
	if tree.Symbol != 1 || tree.Padding.Chars != 1 {
		t.Errorf("relex after reset wrong: sym=%d padding=%d",
			tree.Symbol, tree.Padding.Chars)
	}
}

func TestLexerUTF16(t *testing.T) {
	trees := lexAll(testLexLanguage(), NewUTF16Input("ab cd"))
	first := trees[0]
	if first.Size.Chars != 2 {
		t.Errorf("chars = %d, want 2 code units", first.Size.Chars)
	}
	if first.Size.Bytes != 4 {
		t.Errorf("bytes = %d, want 4 (two UTF-16 code units)", first.Size.Bytes)
	}
}

func TestLexerMultibyteRuneToken(t *testing.T) {
	lang := testLexLanguage()
	lang.LexDFA[0].Transitions = append(lang.LexDFA[0].Transitions,
		LexTransition{Lo: 'é', Hi: 'é', NextState: 1})
	lang.LexDFA[1].Transitions = append(lang.LexDFA[1].Transitions,
		LexTransition{Lo: 'é', Hi: 'é', NextState: 1})

	trees := lexAll(lang, NewStringInput("éa b"))
	first := trees[0]
	if first.Size.Chars != 2 {
		t.Errorf("chars = %d, want 2 code points", first.Size.Chars)
	}
	if first.Size.Bytes != 3 {
		t.Errorf("bytes = %d, want 3 (two-byte rune plus ascii)", first.Size.Bytes)
	}
}
