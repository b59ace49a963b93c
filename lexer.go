package canopy

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Lexer reads characters from an Input and assembles leaf trees. Skipped
// whitespace accumulates as padding on the next accepted token. The
// parser drives one lexer per parse; it is not reentrant.
type Lexer struct {
	input    Input
	debugger Debugger

	chunk      []byte
	chunkStart uint32
	atEOF      bool

	currentPosition    Length
	tokenStartPosition Length
	tokenEndPosition   Length

	lookahead     rune
	lookaheadSize uint32

	startingLexState StateID
}

// NewLexer creates a lexer; call SetInput before lexing.
func NewLexer() *Lexer {
	return &Lexer{}
}

// SetInput attaches an input and rewinds to the start.
func (l *Lexer) SetInput(input Input) {
	l.input = input
	l.hardReset(ZeroLength())
}

// Reset repositions the lexer. A reset to the current position is free.
func (l *Lexer) Reset(position Length) {
	if !position.Eq(l.currentPosition) {
		l.hardReset(position)
	}
}

// Position returns the lexer's current position.
func (l *Lexer) Position() Length { return l.currentPosition }

// rewind repositions mid-token without touching the token bookkeeping,
// so the pending token's start and the previous token's end survive a
// DFA overrun.
func (l *Lexer) rewind(position Length) {
	tokenStart, tokenEnd := l.tokenStartPosition, l.tokenEndPosition
	l.hardReset(position)
	l.tokenStartPosition = tokenStart
	l.tokenEndPosition = tokenEnd
}

func (l *Lexer) hardReset(position Length) {
	l.currentPosition = position
	l.tokenStartPosition = position
	l.tokenEndPosition = position
	l.chunk = nil
	l.chunkStart = 0
	l.atEOF = false
	l.lookahead = 0
	l.lookaheadSize = 0
}

func (l *Lexer) getChunk() {
	if l.chunk == nil || l.currentPosition.Bytes != l.chunkStart+uint32(len(l.chunk)) {
		l.input.Seek(l.currentPosition.Chars, l.currentPosition.Bytes)
	}
	l.chunkStart = l.currentPosition.Bytes
	l.chunk = l.input.Read()
	l.atEOF = len(l.chunk) == 0
}

func (l *Lexer) getLookahead() {
	if l.atEOF {
		l.lookahead = 0
		l.lookaheadSize = 0
		return
	}
	offset := l.currentPosition.Bytes - l.chunkStart
	rest := l.chunk[offset:]
	if l.input.Encoding() == InputEncodingUTF16 {
		l.lookahead, l.lookaheadSize = decodeUTF16(rest)
	} else {
		r, size := utf8.DecodeRune(rest)
		l.lookahead, l.lookaheadSize = r, uint32(size)
	}
	l.debugger.logf(DebugTypeLex, "lookahead char:%q", l.lookahead)
}

// start prepares lexing a token in the given lex state, filling the
// chunk buffer and lookahead on first use.
func (l *Lexer) start(lexState StateID) {
	l.startingLexState = lexState
	l.debugger.logf(DebugTypeLex, "start_lex state:%d, pos:%d", lexState, l.currentPosition.Chars)
	if l.chunk == nil && !l.atEOF {
		l.getChunk()
	}
	if l.lookaheadSize == 0 {
		l.getLookahead()
	}
}

func (l *Lexer) startToken() {
	l.tokenStartPosition = l.currentPosition
}

// advance consumes the current lookahead character. It reports false at
// end of input.
func (l *Lexer) advance() bool {
	if l.atEOF {
		return false
	}
	if l.lookaheadSize > 0 {
		l.currentPosition.Bytes += l.lookaheadSize
		l.currentPosition.Chars += l.charWidth()
		if l.lookahead == '\n' {
			l.currentPosition.Extent.Row++
			l.currentPosition.Extent.Column = 0
		} else {
			l.currentPosition.Extent.Column++
		}
	}
	if l.currentPosition.Bytes >= l.chunkStart+uint32(len(l.chunk)) {
		l.getChunk()
	}
	l.getLookahead()
	return true
}

// charWidth returns how many characters the lookahead counts for: one
// per code point in UTF-8, one per code unit in UTF-16.
func (l *Lexer) charWidth() uint32 {
	if l.input.Encoding() == InputEncodingUTF16 {
		return l.lookaheadSize / 2
	}
	return 1
}

// accept builds a leaf tree for the token between tokenStart and the
// current position, attaching the padding skipped since the last token.
func (l *Lexer) accept(sym Symbol, metadata SymbolMetadata, stateSensitive bool) *Tree {
	size := l.currentPosition.Sub(l.tokenStartPosition)
	padding := l.tokenStartPosition.Sub(l.tokenEndPosition)
	l.tokenEndPosition = l.currentPosition

	l.debugger.logf(DebugTypeLex, "accept_token sym:%d size:%d", sym, size.Chars)
	tree := MakeLeaf(sym, padding, size, metadata)
	if stateSensitive {
		tree.LexState = l.startingLexState
	}
	return tree
}

// acceptError builds a one-character error leaf for input no token rule
// matches.
func (l *Lexer) acceptError() *Tree {
	lookahead := l.lookahead
	l.startToken()
	l.advance()
	size := l.currentPosition.Sub(l.tokenStartPosition)
	padding := l.tokenStartPosition.Sub(l.tokenEndPosition)
	l.tokenEndPosition = l.currentPosition

	l.debugger.logf(DebugTypeLex, "error_char:%q", lookahead)
	return MakeError(size, padding, lookahead)
}

// lexDFA is the built-in LexFunc: it walks the language's lexer DFA from
// the given start state. States marked Skip turn their text into padding
// for the following token. When no rule matches, the offending character
// becomes a SymbolLexerError leaf so the caller always receives a tree.
func (l *Lexer) lexDFA(lang *Language, lexState StateID, failOnError bool) *Tree {
	l.start(lexState)

	for {
		if l.atEOF {
			l.startToken()
			return l.accept(SymbolEnd, SymbolMetadata{}, false)
		}

		l.startToken()
		sym, skip, matched := l.scanDFA(lang, lexState)
		if !matched {
			return l.acceptError()
		}
		if l.currentPosition.Eq(l.tokenStartPosition) {
			// A zero-width match cannot make progress.
			return l.acceptError()
		}
		if skip {
			// The skipped span becomes padding of the next token.
			continue
		}
		return l.accept(sym, lang.Metadata(sym), lang.StateSensitiveLex)
	}
}

// scanDFA runs the DFA greedily from the current position, leaving the
// lexer at the last accepting position. It reports the accepted symbol,
// whether that symbol is a skip (padding) match, and whether anything
// was accepted at all.
func (l *Lexer) scanDFA(lang *Language, lexState StateID) (Symbol, bool, bool) {
	state := int(lexState)

	acceptPosition := Length{}
	acceptSymbol := Symbol(0)
	acceptSkip := false
	accepted := false

	record := func() {
		st := &lang.LexDFA[state]
		if st.AcceptSymbol != 0 || st.Skip {
			acceptPosition = l.currentPosition
			acceptSymbol = st.AcceptSymbol
			acceptSkip = st.Skip
			accepted = true
		}
	}
	record()

	for !l.atEOF {
		st := &lang.LexDFA[state]
		next := -1
		for i := range st.Transitions {
			tr := &st.Transitions[i]
			if l.lookahead >= tr.Lo && l.lookahead <= tr.Hi {
				next = tr.NextState
				break
			}
		}
		if next < 0 {
			next = st.Default
		}
		if next < 0 {
			break
		}
		l.advance()
		state = next
		record()
	}

	if !accepted {
		l.rewind(l.tokenStartPosition)
		l.start(lexState)
		return 0, false, false
	}
	if !acceptPosition.Eq(l.currentPosition) {
		l.rewind(acceptPosition)
		l.start(lexState)
	}
	return acceptSymbol, acceptSkip, true
}

// decodeUTF16 decodes one character from little-endian UTF-16 bytes.
func decodeUTF16(b []byte) (rune, uint32) {
	if len(b) < 2 {
		return utf8.RuneError, uint32(len(b))
	}
	u := uint16(b[0]) | uint16(b[1])<<8
	if utf16.IsSurrogate(rune(u)) && len(b) >= 4 {
		u2 := uint16(b[2]) | uint16(b[3])<<8
		if r := utf16.DecodeRune(rune(u), rune(u2)); r != utf8.RuneError {
			return r, 4
		}
	}
	return rune(u), 2
}
