package grammars

import "github.com/odvcencio/canopy"

// languageBuilder assembles a canopy.Language table by table. It exists
// so the hand-built grammars below read like grammar descriptions rather
// than index bookkeeping: action entries are interned on demand and the
// dense table rows are sized up front.
type languageBuilder struct {
	lang canopy.Language
}

func newLanguage(name string, symbolCount, stateCount int) *languageBuilder {
	b := &languageBuilder{
		lang: canopy.Language{
			Name:           name,
			SymbolCount:    uint32(symbolCount),
			SymbolNames:    make([]canopy.SymbolName, symbolCount),
			SymbolMetadata: make([]canopy.SymbolMetadata, symbolCount),
			ParseTable:     make([][]uint16, stateCount),
			ParseActions:   []canopy.ParseActionEntry{{}},
			ErrorActions:   make([]uint16, stateCount),
			LexStates:      make([]canopy.StateID, stateCount),
		},
	}
	for i := range b.lang.ParseTable {
		b.lang.ParseTable[i] = make([]uint16, symbolCount)
	}
	return b
}

func (b *languageBuilder) symbol(sym canopy.Symbol, name string, metadata canopy.SymbolMetadata) {
	b.lang.SymbolNames[sym] = canopy.SymbolName{Internal: name, External: name}
	b.lang.SymbolMetadata[sym] = metadata
}

func (b *languageBuilder) intern(actions ...canopy.ParseAction) uint16 {
	b.lang.ParseActions = append(b.lang.ParseActions, canopy.ParseActionEntry{Actions: actions})
	return uint16(len(b.lang.ParseActions) - 1)
}

// on sets the action list for a state/symbol pair.
func (b *languageBuilder) on(state canopy.StateID, sym canopy.Symbol, actions ...canopy.ParseAction) {
	b.lang.ParseTable[state][sym] = b.intern(actions...)
}

// onError sets the action list for the reserved error symbol, which has
// its own table column.
func (b *languageBuilder) onError(state canopy.StateID, actions ...canopy.ParseAction) {
	b.lang.ErrorActions[state] = b.intern(actions...)
}

func (b *languageBuilder) dfa(states ...canopy.LexDFAState) {
	b.lang.LexDFA = states
}

func (b *languageBuilder) build() *canopy.Language {
	return &b.lang
}

func shift(to canopy.StateID) canopy.ParseAction {
	return canopy.ParseAction{Type: canopy.ParseActionShift, State: to}
}

func shiftExtra() canopy.ParseAction {
	return canopy.ParseAction{Type: canopy.ParseActionShift, Extra: true}
}

func reduce(sym canopy.Symbol, childCount int) canopy.ParseAction {
	return canopy.ParseAction{Type: canopy.ParseActionReduce, Symbol: sym, ChildCount: childCount}
}

func accept() canopy.ParseAction {
	return canopy.ParseAction{Type: canopy.ParseActionAccept}
}

func fragile(action canopy.ParseAction) canopy.ParseAction {
	action.Fragile = true
	return action
}

func withPrecedence(action canopy.ParseAction, precedence int16, assoc canopy.Associativity) canopy.ParseAction {
	action.Precedence = precedence
	action.Assoc = assoc
	return action
}

func transition(lo, hi rune, next int) canopy.LexTransition {
	return canopy.LexTransition{Lo: lo, Hi: hi, NextState: next}
}
