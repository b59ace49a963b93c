package grammars

import "github.com/odvcencio/canopy"

// Symbols of the pairs language.
const (
	pairsSymA  canopy.Symbol = 1
	pairsSymB  canopy.Symbol = 2
	pairsSymWS canopy.Symbol = 3
	pairsSymS  canopy.Symbol = 4
)

// Pairs is a deliberately small language: a document is the token 'a'
// followed by the token 'b', with whitespace as an extra token between
// them. The table carries recovery states so junk between 'a' and 'b'
// folds into an error node while both tokens survive.
//
// Grammar:
//
//	S  -> 'a' 'b'
//	S  -> 'a' ERROR 'b'
//	extras: ws
func Pairs() *canopy.Language {
	b := newLanguage("pairs", 5, 6)

	b.symbol(pairsSymA, "a", canopy.SymbolMetadata{Visible: true, Named: true, Structural: true})
	b.symbol(pairsSymB, "b", canopy.SymbolMetadata{Visible: true, Named: true, Structural: true})
	b.symbol(pairsSymWS, "ws", canopy.SymbolMetadata{})
	b.symbol(pairsSymS, "S", canopy.SymbolMetadata{Visible: true, Named: true, Structural: true})

	// State 0: start.
	b.on(0, pairsSymA, shift(1))
	b.on(0, pairsSymS, shift(3))
	b.on(0, pairsSymWS, shiftExtra())

	// State 1: after 'a'.
	b.on(1, pairsSymB, shift(2))
	b.on(1, pairsSymWS, shiftExtra())
	b.onError(1, shift(4))

	// State 2: after 'a' 'b'.
	b.on(2, canopy.SymbolEnd, reduce(pairsSymS, 2))
	b.on(2, pairsSymWS, shiftExtra())

	// State 3: after S.
	b.on(3, canopy.SymbolEnd, accept())
	b.on(3, pairsSymWS, shiftExtra())

	// State 4: after 'a' ERROR.
	b.on(4, pairsSymB, shift(5))
	b.on(4, pairsSymWS, shiftExtra())

	// State 5: after 'a' ERROR 'b'.
	b.on(5, canopy.SymbolEnd, reduce(pairsSymS, 3))
	b.on(5, pairsSymWS, shiftExtra())

	b.dfa(
		canopy.LexDFAState{
			Default: -1,
			Transitions: []canopy.LexTransition{
				transition('a', 'a', 1),
				transition('b', 'b', 2),
				transition(' ', ' ', 3),
				transition('\t', '\t', 3),
				transition('\n', '\n', 3),
			},
		},
		canopy.LexDFAState{AcceptSymbol: pairsSymA, Default: -1},
		canopy.LexDFAState{AcceptSymbol: pairsSymB, Default: -1},
		canopy.LexDFAState{
			AcceptSymbol: pairsSymWS,
			Default:      -1,
			Transitions: []canopy.LexTransition{
				transition(' ', ' ', 3),
				transition('\t', '\t', 3),
				transition('\n', '\n', 3),
			},
		},
	)

	return b.build()
}

func init() {
	Register(LangEntry{
		Name:       "pairs",
		Extensions: []string{".pairs"},
		Language:   Pairs,
		Captures: map[string]string{
			"a": "keyword",
			"b": "string",
		},
	})
}
