package grammars

import "github.com/odvcencio/canopy"

// Symbols of the expr language.
const (
	exprSymNum  canopy.Symbol = 1
	exprSymPlus canopy.Symbol = 2
	exprSymStar canopy.Symbol = 3
	exprSymE    canopy.Symbol = 4
)

// Expr is an arithmetic grammar whose table keeps its shift/reduce
// conflicts: after E op E both reducing and shifting the next operator
// are offered, so the parser forks a stack version for each reading.
// The competing finished trees differ only in how operators nest, and
// the tree selector resolves them through the precedence and
// associativity recorded on the reduce actions: '*' binds tighter than
// '+', both are left-associative.
//
// Grammar:
//
//	E -> E '+' E   (prec 1, left)
//	E -> E '*' E   (prec 2, left)
//	E -> num
func Expr() *canopy.Language {
	b := newLanguage("expr", 5, 7)

	b.symbol(exprSymNum, "num", canopy.SymbolMetadata{Visible: true, Named: true, Structural: true})
	b.symbol(exprSymPlus, "+", canopy.SymbolMetadata{Visible: true, Structural: true})
	b.symbol(exprSymStar, "*", canopy.SymbolMetadata{Visible: true, Structural: true})
	b.symbol(exprSymE, "E", canopy.SymbolMetadata{Visible: true, Named: true, Structural: true})

	reducePlus := withPrecedence(fragile(reduce(exprSymE, 3)), 1, canopy.AssocLeft)
	reduceStar := withPrecedence(fragile(reduce(exprSymE, 3)), 2, canopy.AssocLeft)
	reduceNum := reduce(exprSymE, 1)

	// State 0: start.
	b.on(0, exprSymNum, shift(1))
	b.on(0, exprSymE, shift(2))

	// State 1: after num.
	b.on(1, canopy.SymbolEnd, reduceNum)
	b.on(1, exprSymPlus, reduceNum)
	b.on(1, exprSymStar, reduceNum)

	// State 2: E as the whole input so far.
	b.on(2, canopy.SymbolEnd, accept())
	b.on(2, exprSymPlus, shift(3))
	b.on(2, exprSymStar, shift(4))

	// State 3: after E '+'.
	b.on(3, exprSymNum, shift(1))
	b.on(3, exprSymE, shift(5))

	// State 4: after E '*'.
	b.on(4, exprSymNum, shift(1))
	b.on(4, exprSymE, shift(6))

	// State 5: after E '+' E. Reduce/shift conflicts are kept: the GLR
	// driver explores both and the selector picks the nesting that
	// respects precedence.
	b.on(5, canopy.SymbolEnd, reducePlus)
	b.on(5, exprSymPlus, reducePlus, shift(3))
	b.on(5, exprSymStar, reducePlus, shift(4))

	// State 6: after E '*' E.
	b.on(6, canopy.SymbolEnd, reduceStar)
	b.on(6, exprSymPlus, reduceStar, shift(3))
	b.on(6, exprSymStar, reduceStar, shift(4))

	b.dfa(
		canopy.LexDFAState{
			Default: -1,
			Transitions: []canopy.LexTransition{
				transition('0', '9', 1),
				transition('n', 'n', 1),
				transition('+', '+', 2),
				transition('*', '*', 3),
			},
		},
		canopy.LexDFAState{
			AcceptSymbol: exprSymNum,
			Default:      -1,
			Transitions: []canopy.LexTransition{
				transition('0', '9', 1),
			},
		},
		canopy.LexDFAState{AcceptSymbol: exprSymPlus, Default: -1},
		canopy.LexDFAState{AcceptSymbol: exprSymStar, Default: -1},
	)

	return b.build()
}

func init() {
	Register(LangEntry{
		Name:       "expr",
		Extensions: []string{".expr"},
		Language:   Expr,
		Captures: map[string]string{
			"num": "number",
			"+":   "operator",
			"*":   "operator",
		},
	})
}
