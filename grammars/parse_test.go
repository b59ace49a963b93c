package grammars

import (
	"testing"

	"github.com/odvcencio/canopy"
)

func parsePairs(t *testing.T, input string) (*canopy.Tree, *canopy.Language) {
	t.Helper()
	lang := Pairs()
	tree := canopy.NewParser(lang).Parse(canopy.NewStringInput(input), nil)
	if tree == nil {
		t.Fatalf("Parse(%q) returned nil", input)
	}
	if err := tree.CheckInvariants(); err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return tree, lang
}

func TestPairsSimple(t *testing.T) {
	tree, lang := parsePairs(t, "ab")

	if got := tree.StringWithNames(lang); got != "(S (a) (b))" {
		t.Errorf("tree = %s", got)
	}
	if tree.ErrorCount() != 0 {
		t.Errorf("errors = %d, want 0", tree.ErrorCount())
	}
	if tree.TotalChars() != 2 {
		t.Errorf("consumed = %d, want 2", tree.TotalChars())
	}
}

func TestPairsTrailingJunk(t *testing.T) {
	tree, _ := parsePairs(t, "ax")

	// Nothing after the junk lets the parser re-anchor, so recovery
	// folds the tail into a single error node; the accepted 'a' leaf
	// survives inside it.
	if tree.ErrorCount() == 0 {
		t.Fatal("expected error nodes")
	}
	if tree.TotalChars() != 2 {
		t.Errorf("consumed = %d, want 2", tree.TotalChars())
	}

	var aLeaf *canopy.Tree
	var stack []*canopy.Tree
	stack = append(stack, tree)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Symbol == pairsSymA {
			aLeaf = n
		}
		stack = append(stack, n.Children...)
	}
	if aLeaf == nil {
		t.Error("accepted 'a' token was lost during recovery")
	}
}

func TestPairsRecoveryBetweenTokens(t *testing.T) {
	tree, lang := parsePairs(t, "axb")

	// The table can shift an error node after 'a', so recovery wraps
	// just the junk and the parse of 'b' resumes.
	if got := tree.StringWithNames(lang); got != "(S (a) (ERROR) (b))" {
		t.Errorf("tree = %s", got)
	}
	if tree.TotalChars() != 3 {
		t.Errorf("consumed = %d, want 3", tree.TotalChars())
	}

	s := tree
	if s.Symbol != pairsSymS || len(s.Children) != 3 {
		t.Fatalf("unexpected shape: %s", tree.StringWithNames(lang))
	}
	errNode := s.Children[1]
	if errNode.Symbol != canopy.SymbolError {
		t.Fatal("middle child is not an error node")
	}
	if errNode.TotalChars() != 1 {
		t.Errorf("error node spans %d chars, want just the junk", errNode.TotalChars())
	}
}

func TestPairsExtraBetweenTokens(t *testing.T) {
	tree, lang := parsePairs(t, "a  b")

	if got := tree.StringWithNames(lang); got != "(S (a) (b))" {
		t.Errorf("tree = %s", got)
	}
	if tree.TotalChars() != 4 {
		t.Errorf("consumed = %d, want 4", tree.TotalChars())
	}

	var ws *canopy.Tree
	for _, child := range tree.Children {
		if child.Symbol == pairsSymWS {
			ws = child
		}
	}
	if ws == nil {
		t.Fatal("whitespace token missing from the tree")
	}
	if !ws.Extra {
		t.Error("whitespace not marked extra")
	}
}

func TestPairsTrailingExtraStaysOutsideProduction(t *testing.T) {
	tree, lang := parsePairs(t, "ab ")

	if got := tree.StringWithNames(lang); got != "(S (a) (b))" {
		t.Errorf("tree = %s", got)
	}
	if tree.TotalChars() != 3 {
		t.Errorf("consumed = %d, want 3", tree.TotalChars())
	}

	// The trailing whitespace was re-pushed above the S reduction, then
	// spliced under the root at accept; it must not sit between a and b.
	last := tree.Children[len(tree.Children)-1]
	if last.Symbol != pairsSymWS || !last.Extra {
		t.Error("trailing whitespace should be the last extra under the root")
	}
	if tree.Children[0].Symbol != pairsSymA || tree.Children[1].Symbol != pairsSymB {
		t.Error("the production's own children were disturbed")
	}
}

func TestExprPrecedence(t *testing.T) {
	lang := Expr()
	tree := canopy.NewParser(lang).Parse(canopy.NewStringInput("n+n*n"), nil)
	if tree == nil {
		t.Fatal("Parse returned nil")
	}

	want := "(E (E (num)) (+) (E (E (num)) (*) (E (num))))"
	if got := tree.StringWithNames(lang); got != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
	if tree.ErrorCount() != 0 {
		t.Errorf("errors = %d", tree.ErrorCount())
	}
}

func TestExprLeftAssociativity(t *testing.T) {
	lang := Expr()
	tree := canopy.NewParser(lang).Parse(canopy.NewStringInput("n+n+n"), nil)

	want := "(E (E (E (num)) (+) (E (num))) (+) (E (num)))"
	if got := tree.StringWithNames(lang); got != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
}

func TestExprPrecedenceBothDirections(t *testing.T) {
	lang := Expr()
	tree := canopy.NewParser(lang).Parse(canopy.NewStringInput("n*n+n"), nil)

	want := "(E (E (E (num)) (*) (E (num))) (+) (E (num)))"
	if got := tree.StringWithNames(lang); got != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
}

func TestExprMultiDigit(t *testing.T) {
	lang := Expr()
	tree := canopy.NewParser(lang).Parse(canopy.NewStringInput("12+345"), nil)

	want := "(E (E (num)) (+) (E (num)))"
	if got := tree.StringWithNames(lang); got != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
	if tree.TotalChars() != 6 {
		t.Errorf("consumed = %d, want 6", tree.TotalChars())
	}
}

func TestEpsilonEmptyInput(t *testing.T) {
	lang := Epsilon()
	tree := canopy.NewParser(lang).Parse(canopy.NewStringInput(""), nil)
	if tree == nil {
		t.Fatal("Parse returned nil")
	}
	if tree.Symbol != epsilonSymS {
		t.Errorf("root symbol = %d, want S", tree.Symbol)
	}
	if len(tree.Children) != 0 {
		t.Errorf("children = %d, want 0", len(tree.Children))
	}
	if tree.TotalChars() != 0 {
		t.Errorf("TotalChars = %d, want 0", tree.TotalChars())
	}
}

func TestDeterminism(t *testing.T) {
	for _, tc := range []struct {
		lang  func() *canopy.Language
		input string
	}{
		{Pairs, "ab"},
		{Pairs, "a  b"},
		{Pairs, "axb"},
		{Expr, "n+n*n+n"},
		{Expr, "n*n*n"},
	} {
		lang := tc.lang()
		first := canopy.NewParser(lang).Parse(canopy.NewStringInput(tc.input), nil)
		second := canopy.NewParser(lang).Parse(canopy.NewStringInput(tc.input), nil)
		if first.StringWithNames(lang) != second.StringWithNames(lang) {
			t.Errorf("%s: nondeterministic parse of %q", lang.Name, tc.input)
		}
	}
}

func TestRegistry(t *testing.T) {
	entry, err := ByName("pairs")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Language().Name != "pairs" {
		t.Error("wrong language loaded")
	}

	if DetectLanguage("test.expr") == nil {
		t.Error("extension detection failed")
	}
	if DetectLanguage("test.unknown") != nil {
		t.Error("unknown extension matched")
	}
	if _, err := ByName("nope"); err == nil {
		t.Error("unknown name should error")
	}

	if len(AllLanguages()) < 3 {
		t.Errorf("registry has %d languages", len(AllLanguages()))
	}
}
