package canopy

// lookaheadState tracks one head's cursor into the previous parse's
// tree. reusableSubtree is the next candidate for reuse and
// reusableSubtreePos its character position; isVerifying marks that the
// head just shifted a reused internal node whose validity the next
// action must confirm.
type lookaheadState struct {
	reusableSubtree    *Tree
	reusableSubtreePos uint32
	isVerifying        bool
}

// popReusableSubtree advances the cursor past the current subtree to its
// next right neighbor, climbing toward the root when a node is the last
// child of its parent.
func (ls *lookaheadState) popReusableSubtree() {
	ls.reusableSubtreePos += ls.reusableSubtree.TotalChars()

	for ls.reusableSubtree != nil {
		parent := ls.reusableSubtree.parent
		nextIndex := int(ls.reusableSubtree.childIndex) + 1
		if parent != nil && nextIndex < len(parent.Children) {
			ls.reusableSubtree = parent.Children[nextIndex]
			return
		}
		ls.reusableSubtree = parent
	}
}

// breakdownReusableSubtree replaces the cursor's subtree with its first
// non-fragile descendant; leaves and error nodes cannot be entered and
// are skipped instead.
func (ls *lookaheadState) breakdownReusableSubtree() {
	for {
		if ls.reusableSubtree.IsError() || len(ls.reusableSubtree.Children) == 0 {
			ls.popReusableSubtree()
			return
		}
		ls.reusableSubtree = ls.reusableSubtree.Children[0]
		if !ls.reusableSubtree.IsFragile() {
			return
		}
	}
}

// canReuse decides whether a tree can serve as the next lookahead for a
// head. Error nodes never can; fragile trees only in the parse state
// they were built in; state-sensitive tokens only under the same lex
// state; and the table must have a real action for the tree's symbol,
// one that neither hides an inlined split nor disagrees about the
// tree's extra flag.
func (p *Parser) canReuse(head int, subtree *Tree) bool {
	if subtree.IsError() {
		return false
	}

	state := p.stack.TopState(head)

	if subtree.IsFragile() && subtree.ParseState != state {
		return false
	}

	if subtree.LexState != LexStateIndependent &&
		subtree.LexState != p.language.LexStateFor(state) {
		return false
	}

	action := p.language.LastAction(state, subtree.Symbol)
	if action.Type == ParseActionError || action.CanHideSplit {
		return false
	}

	if subtree.Extra && !action.Extra {
		return false
	}

	return true
}

// nextLookahead produces the next lookahead tree for a head: a subtree
// reused from the previous parse when the cursor lines up with the
// head's position and the subtree survives the reuse checks, otherwise
// a fresh token from the lexer. Changed or unreusable subtrees are
// broken down into their children until something fits.
func (p *Parser) nextLookahead(head int) *Tree {
	ls := &p.lookaheadStates[head]
	position := p.stack.TopPosition(head)

	for ls.reusableSubtree != nil {
		if ls.reusableSubtreePos > position.Chars {
			break
		}

		if ls.reusableSubtreePos < position.Chars {
			p.debugger.logf(DebugTypeParse, "past_reusable sym:%s",
				p.language.SymbolName(ls.reusableSubtree.Symbol))
			ls.popReusableSubtree()
			continue
		}

		if ls.reusableSubtree.HasChanges {
			if ls.isVerifying && len(ls.reusableSubtree.Children) == 0 {
				p.breakdownTopOfStack(head)
				ls = &p.lookaheadStates[head]
				ls.isVerifying = false
			}
			p.debugger.logf(DebugTypeParse, "breakdown_changed sym:%s",
				p.language.SymbolName(ls.reusableSubtree.Symbol))
			ls.breakdownReusableSubtree()
			continue
		}

		if !p.canReuse(head, ls.reusableSubtree) {
			p.debugger.logf(DebugTypeParse, "breakdown_unreusable sym:%s",
				p.language.SymbolName(ls.reusableSubtree.Symbol))
			ls.breakdownReusableSubtree()
			continue
		}

		result := ls.reusableSubtree
		p.debugger.logf(DebugTypeParse, "reuse sym:%s size:%d",
			p.language.SymbolName(result.Symbol), result.TotalChars())
		ls.popReusableSubtree()
		result.Retain()
		return result
	}

	p.lexer.Reset(position)
	parseState := p.stack.TopState(head)
	lexState := p.language.LexStateFor(parseState)
	p.debugger.logf(DebugTypeParse, "lex state:%d", lexState)
	return p.language.lex(p.lexer, lexState, false)
}
