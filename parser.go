package canopy

// parseActionResult reports how executing an action changed a stack head.
type parseActionResult uint8

const (
	updatedStackHead parseActionResult = iota
	removedStackHead
	failedToUpdateStackHead
)

// Parser drives a Language's tables over an Input, maintaining one GLR
// stack and one lookahead state per live head. A parser can be reused
// for any number of parses of the same language; it is not safe for
// concurrent use.
type Parser struct {
	language        *Language
	lexer           *Lexer
	stack           *Stack
	lookaheadStates []lookaheadState
	reduceParents   []*Tree
	finishedTree    *Tree
	debugger        Debugger
	isSplit         bool
}

// NewParser creates a parser for the given language.
func NewParser(lang *Language) *Parser {
	return &Parser{
		language: lang,
		lexer:    NewLexer(),
		stack:    NewStack(),
	}
}

// Language returns the language this parser was created for.
func (p *Parser) Language() *Language { return p.language }

// SetDebugger installs a debug sink for parse and lex events.
func (p *Parser) SetDebugger(debugger Debugger) {
	p.debugger = debugger
	p.lexer.debugger = debugger
}

// Debugger returns the current debug sink.
func (p *Parser) Debugger() Debugger { return p.debugger }

// Parse consumes the input and returns the finished tree, never nil for
// well-formed tables: malformed input surfaces as error nodes inside the
// tree. Passing the (edited) tree of a previous parse of the same input
// lets the parser reuse unchanged subtrees.
//
// Heads advance in a deterministic least-position-first schedule, so the
// result for a given language, input, and previous tree is always
// identical.
func (p *Parser) Parse(input Input, previousTree *Tree) *Tree {
	p.start(input, previousTree)
	maxPosition := uint32(0)

	for {
		var lookahead *Tree
		lastPosition, position := uint32(0), uint32(0)

		p.isSplit = p.stack.HeadCount() > 1

		for head := 0; head < p.stack.HeadCount(); {
			for removed := false; !removed; {
				lastPosition = position
				newPosition := p.stack.TopPosition(head).Chars

				if newPosition > maxPosition {
					maxPosition = newPosition
					head++
					break
				} else if newPosition == maxPosition && head > 0 {
					head++
					break
				}

				position = newPosition

				p.debugger.logf(DebugTypeParse,
					"process head:%d, head_count:%d, state:%d, pos:%d",
					head, p.stack.HeadCount(), p.stack.TopState(head), position)

				if lookahead == nil || position != lastPosition || !p.canReuse(head, lookahead) {
					lookahead.Release()
					lookahead = p.nextLookahead(head)
					if lookahead == nil {
						return nil
					}
				}

				p.debugger.logf(DebugTypeParse, "lookahead sym:%s, size:%d",
					p.language.SymbolName(lookahead.Symbol), lookahead.TotalChars())

				switch p.consumeLookahead(head, lookahead) {
				case failedToUpdateStackHead:
					lookahead.Release()
					return nil
				case removedStackHead:
					removed = true
				}
			}
		}

		lookahead.Release()

		if p.stack.HeadCount() == 0 {
			p.stack.Clear()
			AssignParents(p.finishedTree)
			return p.finishedTree
		}
	}
}

func (p *Parser) start(input Input, previousTree *Tree) {
	if previousTree != nil {
		p.debugger.logf(DebugTypeParse, "parse_after_edit")
	} else {
		p.debugger.logf(DebugTypeParse, "new_parse")
	}

	p.lexer.SetInput(input)
	p.stack.Clear()
	p.stack.SetTreeSelectionCallback(p.selectTree)

	p.lookaheadStates = p.lookaheadStates[:0]
	p.lookaheadStates = append(p.lookaheadStates, lookaheadState{
		reusableSubtree: previousTree,
	})
	p.finishedTree = nil
}

func (p *Parser) selectTree(left, right *Tree) int {
	if left == nil {
		return 1
	}
	if right == nil {
		return -1
	}
	comparison := Compare(left, right)
	switch comparison {
	case -1:
		p.debugger.logf(DebugTypeParse, "select tree:%s, over_tree:%s",
			p.language.SymbolName(left.Symbol), p.language.SymbolName(right.Symbol))
	case 1:
		p.debugger.logf(DebugTypeParse, "select tree:%s, over_tree:%s",
			p.language.SymbolName(right.Symbol), p.language.SymbolName(left.Symbol))
	}
	return comparison
}

func (p *Parser) split(head int) int {
	result := p.stack.Split(head)
	p.lookaheadStates = append(p.lookaheadStates, p.lookaheadStates[head])
	return result
}

func (p *Parser) removeHead(head int) {
	p.removeLookaheadState(head)
	p.stack.RemoveHead(head)
}

func (p *Parser) removeLookaheadState(head int) {
	p.lookaheadStates = append(p.lookaheadStates[:head], p.lookaheadStates[head+1:]...)
}

// consumeLookahead performs parse actions on one head until the lookahead
// is shifted or the head dies. When a state/symbol pair has several
// actions, every action but the last runs on a fresh split of the head;
// a Shift, always last, runs on the original.
func (p *Parser) consumeLookahead(head int, lookahead *Tree) parseActionResult {
	for {
		state := p.stack.TopState(head)
		actions := p.language.Actions(state, lookahead.Symbol)

		if len(actions) == 0 {
			return p.handleErrorAction(head, lookahead)
		}

		for i, action := range actions {
			currentHead := head
			if i != len(actions)-1 {
				currentHead = p.split(head)
				p.debugger.logf(DebugTypeParse, "split_action from_head:%d, new_head:%d",
					head, currentHead)
			}

			switch action.Type {
			case ParseActionError:
				return p.handleErrorAction(currentHead, lookahead)

			case ParseActionShift:
				if action.Extra {
					p.debugger.logf(DebugTypeParse, "shift_extra")
					return p.shiftExtra(currentHead, state, lookahead)
				}
				p.debugger.logf(DebugTypeParse, "shift state:%d", action.State)
				p.lookaheadStates[currentHead].isVerifying = len(lookahead.Children) > 0
				return p.shift(currentHead, action.State, lookahead)

			case ParseActionReduce:
				p.lookaheadStates[currentHead].isVerifying = false

				if action.Extra {
					p.debugger.logf(DebugTypeParse, "reduce_extra sym:%s",
						p.language.SymbolName(action.Symbol))
					p.reduce(currentHead, action.Symbol, 1, true, false, false, action)
				} else {
					p.debugger.logf(DebugTypeParse, "reduce sym:%s, child_count:%d",
						p.language.SymbolName(action.Symbol), action.ChildCount)
					switch p.reduce(currentHead, action.Symbol, action.ChildCount,
						false, action.Fragile, false, action) {
					case failedToUpdateStackHead:
						return failedToUpdateStackHead
					case removedStackHead:
						if currentHead == head {
							return removedStackHead
						}
					}
				}

			case ParseActionAccept:
				p.debugger.logf(DebugTypeParse, "accept")
				return p.accept(currentHead)
			}
		}
	}
}

// handleErrorAction resolves a lookahead no action covers: a verifying
// head breaks its reused subtree back down and retries, a lone head
// enters error recovery, and any other head simply dies since a sibling
// parse is still alive.
func (p *Parser) handleErrorAction(head int, lookahead *Tree) parseActionResult {
	p.debugger.logf(DebugTypeParse, "error_sym")

	if p.lookaheadStates[head].isVerifying {
		p.breakdownTopOfStack(head)
		p.lookaheadStates[head].isVerifying = false
		return removedStackHead
	}

	if p.stack.HeadCount() == 1 {
		switch p.handleError(head, lookahead) {
		case failedToUpdateStackHead:
			return failedToUpdateStackHead
		case updatedStackHead:
			return updatedStackHead
		default:
			return p.accept(head)
		}
	}

	p.debugger.logf(DebugTypeParse, "bail head:%d", head)
	p.removeHead(head)
	return removedStackHead
}

func (p *Parser) shift(head int, state StateID, lookahead *Tree) parseActionResult {
	switch p.stack.Push(head, lookahead, state) {
	case PushFailed:
		return failedToUpdateStackHead
	case PushMerged:
		p.debugger.logf(DebugTypeParse, "merge head:%d", head)
		p.removeLookaheadState(head)
		return removedStackHead
	default:
		return updatedStackHead
	}
}

// shiftExtra shifts a lookahead without changing state, marking it extra.
// The lookahead is copied first when anything else holds a reference to
// it, and structural extras are also copied when other heads could still
// see the original.
func (p *Parser) shiftExtra(head int, state StateID, lookahead *Tree) parseActionResult {
	metadata := p.language.Metadata(lookahead.Symbol)
	if lookahead.refCount > 1 || (metadata.Structural && p.stack.HeadCount() > 1) {
		copied := lookahead.MakeCopy()
		copied.Extra = true
		result := p.shift(head, state, copied)
		copied.Release()
		return result
	}
	lookahead.Extra = true
	return p.shift(head, state, lookahead)
}

// reduce pops childCount trees (all trees when childCount is negative)
// and pushes a new parent over each path the pop enumerated. Trailing
// extras in a popped path do not become children; they are re-pushed
// above the parent so comments and whitespace stay between tokens
// instead of inside productions.
func (p *Parser) reduce(head int, sym Symbol, childCount int, extra, fragile, countExtra bool, action ParseAction) parseActionResult {
	p.reduceParents = p.reduceParents[:0]
	metadata := p.language.Metadata(sym)
	popResults := p.stack.Pop(head, childCount, countExtra)

	removedHeads := 0

	for i, popResult := range popResults {
		trees := popResult.Trees

		trailingExtraCount := 0
		for j := len(trees) - 1; j >= 0; j-- {
			if !trees[j].Extra {
				break
			}
			trailingExtraCount++
		}

		parent := MakeNode(sym, len(trees)-trailingExtraCount, trees, metadata, action)
		p.reduceParents = append(p.reduceParents, parent)

		newHead := popResult.HeadIndex - removedHeads

		if i > 0 {
			if sym == SymbolError {
				removedHeads++
				p.stack.RemoveHead(newHead)
				continue
			}

			// The stack split during the pop: the new head inherits this
			// head's lookahead state.
			p.debugger.logf(DebugTypeParse, "split_during_reduce new_head:%d", newHead)
			p.lookaheadStates = append(p.lookaheadStates, p.lookaheadStates[head])
		}

		topState := p.stack.TopState(newHead)
		if parent.ParseState != treeStateFragile {
			parent.ParseState = topState
		}

		var state StateID
		if extra {
			parent.Extra = true
			state = topState
		} else if childCount < 0 {
			state = 0
		} else {
			state = p.language.LastAction(topState, sym).State
		}

		switch p.stack.Push(newHead, parent, state) {
		case PushFailed:
			parent.Release()
			return failedToUpdateStackHead
		case PushMerged:
			p.debugger.logf(DebugTypeParse, "merge_during_reduce head:%d", newHead)
			p.removeLookaheadState(newHead)
			removedHeads++
			continue
		}

		for j := 0; j < trailingExtraCount; j++ {
			tree := trees[len(trees)-trailingExtraCount+j]
			result := p.stack.Push(newHead, tree, state)
			tree.Release()
			if result == PushFailed {
				return failedToUpdateStackHead
			}
			if result == PushMerged {
				p.removeLookaheadState(newHead)
				removedHeads++
				break
			}
		}
	}

	for _, parent := range p.reduceParents {
		if fragile || p.isSplit || p.stack.HeadCount() > 1 {
			parent.FragileLeft = true
			parent.FragileRight = true
			parent.ParseState = treeStateFragile
		}
		parent.Release()
	}

	if removedHeads < len(popResults) {
		return updatedStackHead
	}
	return removedStackHead
}

// reduceError folds the given number of stack entries into one error
// node, then moves the offending lookahead's padding onto that node so
// positions keep lining up when the lookahead is shifted afterwards.
func (p *Parser) reduceError(head, childCount int, lookahead *Tree) parseActionResult {
	switch p.reduce(head, SymbolError, childCount, false, true, true, ParseAction{}) {
	case failedToUpdateStackHead:
		return failedToUpdateStackHead
	case removedStackHead:
		return removedStackHead
	default:
		entry := p.stack.head(head)
		entry.position = entry.position.Add(lookahead.Padding)
		tree := p.reduceParents[0]
		tree.Size = tree.Size.Add(lookahead.Padding)
		lookahead.Padding = ZeroLength()
		return updatedStackHead
	}
}

// handleError unwinds the stack looking for a state where an error shift
// followed by the current lookahead is legal. Failing that it shifts the
// lookahead as-is and force-lexes the next token, so recovery always
// makes progress; reaching end of input folds everything into a single
// error node and retires the head.
func (p *Parser) handleError(head int, lookahead *Tree) parseActionResult {
	errorTokenCount := 1
	entryBeforeError := p.stack.head(head)
	lookahead.Retain()

	for {
		i := -1
		for entry := entryBeforeError; ; entry, i = entryBelow(entry), i+1 {
			var stackState StateID
			if entry != nil {
				stackState = entry.state
			}
			actionOnError := p.language.LastAction(stackState, SymbolError)

			if actionOnError.Type == ParseActionShift {
				stateAfterError := actionOnError.State
				actionAfterError := p.language.LastAction(stateAfterError, lookahead.Symbol)

				if actionAfterError.Type != ParseActionError {
					p.debugger.logf(DebugTypeParse, "recover state:%d, count:%d",
						stateAfterError, errorTokenCount+i)
					p.reduceError(head, errorTokenCount+i, lookahead)
					lookahead.Release()
					return updatedStackHead
				}
			}

			if entry == nil {
				break
			}
		}

		p.debugger.logf(DebugTypeParse, "skip token:%s",
			p.language.SymbolName(lookahead.Symbol))
		state := p.stack.TopState(head)
		if p.shift(head, state, lookahead) == failedToUpdateStackHead {
			return failedToUpdateStackHead
		}
		lookahead.Release()

		p.lexer.Reset(p.stack.TopPosition(head))
		lookahead = p.language.lex(p.lexer, 0, true)
		if lookahead == nil {
			return failedToUpdateStackHead
		}
		errorTokenCount++

		if lookahead.Symbol == SymbolEnd {
			p.debugger.logf(DebugTypeParse, "fail_to_recover")
			p.reduceError(head, -1, lookahead)
			lookahead.Release()
			return removedStackHead
		}
	}
}

// breakdownTopOfStack replaces the tree at the top of a head with its
// children, repeating until the new top is a leaf. The replacement
// re-derives each child's state from the table, so the head ends up as
// if the children had been shifted individually.
func (p *Parser) breakdownTopOfStack(head int) parseActionResult {
	var lastChild *Tree

	for {
		popResults := p.stack.Pop(head, 1, false)
		if len(popResults) == 0 {
			return failedToUpdateStackHead
		}

		for _, popResult := range popResults {
			trees := popResult.Trees
			if len(trees) == 0 {
				continue
			}
			parent := trees[0]
			headIndex := popResult.HeadIndex
			p.debugger.logf(DebugTypeParse, "breakdown_pop sym:%s, size:%d",
				p.language.SymbolName(parent.Symbol), parent.TotalChars())

			state := p.stack.TopState(headIndex)
			for _, child := range parent.Children {
				lastChild = child
				if !child.Extra {
					state = p.language.LastAction(state, child.Symbol).State
				}
				p.debugger.logf(DebugTypeParse, "breakdown_push sym:%s",
					p.language.SymbolName(child.Symbol))
				if p.stack.Push(headIndex, child, state) == PushFailed {
					return failedToUpdateStackHead
				}
			}

			for _, tree := range trees[1:] {
				if p.stack.Push(headIndex, tree, state) == PushFailed {
					return failedToUpdateStackHead
				}
			}

			for _, tree := range trees {
				tree.Release()
			}
		}

		if lastChild == nil || len(lastChild.Children) == 0 {
			return updatedStackHead
		}
	}
}

// accept retires a head whose parse covered the whole input. The root's
// children are spliced up so extras at the outermost level hang directly
// off the root, and the finished tree is kept only if the selector
// prefers it over a finished tree from another head.
func (p *Parser) accept(head int) parseActionResult {
	popResults := p.stack.Pop(head, -1, true)

	removedHeads := 0
	for _, popResult := range popResults {
		trees := popResult.Trees
		headIndex := popResult.HeadIndex - removedHeads

		for i, tree := range trees {
			if tree.Extra {
				continue
			}
			root := tree
			spliced := make([]*Tree, 0, len(trees)-1+len(root.Children))
			spliced = append(spliced, trees[:i]...)
			spliced = append(spliced, root.Children...)
			spliced = append(spliced, trees[i+1:]...)
			root.SetChildren(spliced)

			p.removeHead(headIndex)
			removedHeads++

			if p.selectTree(p.finishedTree, root) > 0 {
				p.finishedTree.Release()
				p.finishedTree = root
			} else {
				root.Release()
			}
			break
		}
	}

	return removedStackHead
}
