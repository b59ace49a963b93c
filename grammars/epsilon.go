package grammars

import "github.com/odvcencio/canopy"

const epsilonSymS canopy.Symbol = 1

// Epsilon accepts exactly the empty input: the start symbol reduces from
// zero children. It exists to exercise the runtime's handling of empty
// productions and empty documents.
func Epsilon() *canopy.Language {
	b := newLanguage("epsilon", 2, 2)

	b.symbol(epsilonSymS, "S", canopy.SymbolMetadata{Visible: true, Named: true, Structural: true})

	b.on(0, canopy.SymbolEnd, reduce(epsilonSymS, 0))
	b.on(0, epsilonSymS, shift(1))
	b.on(1, canopy.SymbolEnd, accept())

	// A single non-accepting lex state: any character is a lex error.
	b.dfa(canopy.LexDFAState{Default: -1})

	return b.build()
}

func init() {
	Register(LangEntry{
		Name:     "epsilon",
		Language: Epsilon,
	})
}
