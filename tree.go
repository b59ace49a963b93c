package canopy

import (
	"fmt"
	"strings"
)

// treeStateFragile is the parse state recorded on trees built inside an
// ambiguous or error context. Such trees only match by re-verification.
const treeStateFragile StateID = 0xFFFF

// Tree is a node of a concrete syntax tree. Leading whitespace that the
// lexer skipped is stored as Padding, separate from the node's own Size;
// an internal node takes its first child's padding as its own Padding,
// and its Size is the first child's Size plus the total sizes of the
// remaining children.
//
// Trees are shared: the previous tree's nodes are reused across parses,
// and GSS entries share subtrees between stack versions. The reference
// count tracks that sharing so flag mutations during a parse can copy
// first when a node is visible to anyone else.
type Tree struct {
	Symbol       Symbol
	Padding      Length
	Size         Length
	Children     []*Tree
	ParseState   StateID
	LexState     StateID
	Extra        bool
	FragileLeft  bool
	FragileRight bool
	HasChanges   bool

	Visible    bool
	Named      bool
	Structural bool

	parent     *Tree
	childIndex uint32
	refCount   int32

	// lookaheadChar is the character the lexer was stuck on when it
	// produced a SymbolLexerError leaf.
	lookaheadChar rune

	// Aggregates consumed by Compare. ownDynamicPrecedence is the
	// production's contribution alone, so SetChildren can recompute the
	// subtree sum from scratch.
	nodeCount            uint32
	errorCount           uint32
	dynamicPrecedence    int32
	ownDynamicPrecedence int32
	violations           uint32
	precedence           int16
	assoc                Associativity
}

// MakeLeaf creates a terminal tree for a matched token.
func MakeLeaf(sym Symbol, padding, size Length, metadata SymbolMetadata) *Tree {
	return &Tree{
		Symbol:     sym,
		Padding:    padding,
		Size:       size,
		ParseState: treeStateFragile,
		LexState:   LexStateIndependent,
		Visible:    metadata.Visible,
		Named:      metadata.Named,
		Structural: metadata.Structural,
		refCount:   1,
		nodeCount:  1,
	}
}

// MakeError creates a leaf for a character the lexer could not match.
// The leaf itself is invisible; the error node recovery wraps around it
// is what shows up in renderings.
func MakeError(size, padding Length, lookaheadChar rune) *Tree {
	t := MakeLeaf(SymbolLexerError, padding, size, SymbolMetadata{})
	t.FragileLeft = true
	t.FragileRight = true
	t.errorCount = 1
	t.lookaheadChar = lookaheadChar
	return t
}

// MakeNode creates an internal tree from the first childCount entries of
// children. Size, fragility, and selector aggregates are derived from
// the children; the remaining entries (trailing extras popped alongside
// the production) do not become children.
func MakeNode(sym Symbol, childCount int, children []*Tree, metadata SymbolMetadata, action ParseAction) *Tree {
	t := &Tree{
		Symbol:               sym,
		LexState:             LexStateIndependent,
		Visible:              metadata.Visible,
		Named:                metadata.Named,
		Structural:           metadata.Structural,
		refCount:             1,
		ownDynamicPrecedence: action.DynamicPrecedence,
		precedence:           action.Precedence,
		assoc:                action.Assoc,
	}
	if sym == SymbolError {
		t.FragileLeft = true
		t.FragileRight = true
		t.ParseState = treeStateFragile
	}
	t.SetChildren(children[:childCount])
	return t
}

// MakeCopy returns a shallow clone sharing the receiver's children, used
// to mutate flags on a tree another stack version can still see.
func (t *Tree) MakeCopy() *Tree {
	copied := *t
	copied.refCount = 1
	copied.parent = nil
	copied.childIndex = 0
	for _, child := range copied.Children {
		child.Retain()
	}
	return &copied
}

// Retain increments the tree's reference count.
func (t *Tree) Retain() {
	if t != nil {
		t.refCount++
	}
}

// Release decrements the tree's reference count, releasing the children
// when it reaches zero. Memory is reclaimed by the garbage collector; the
// count exists so the parser knows when a node is shared.
func (t *Tree) Release() {
	if t == nil {
		return
	}
	t.refCount--
	if t.refCount == 0 {
		for _, child := range t.Children {
			child.Release()
		}
	}
}

// SetChildren replaces the node's children, recomputing its size and the
// aggregates the tree selector reads. Fragility propagates inward from
// the outermost children.
func (t *Tree) SetChildren(children []*Tree) {
	t.Children = children
	t.Size = ZeroLength()
	t.nodeCount = 1
	t.errorCount = 0
	t.violations = 0
	t.dynamicPrecedence = t.ownDynamicPrecedence
	if t.Symbol == SymbolError {
		t.errorCount = 1
	}

	for i, child := range children {
		if i == 0 {
			t.Padding = child.Padding
			t.Size = child.Size
		} else {
			t.Size = t.Size.Add(child.TotalSize())
		}
		t.nodeCount += child.nodeCount
		t.errorCount += child.errorCount
		t.dynamicPrecedence += child.dynamicPrecedence
		t.violations += child.violations
		t.violations += t.childViolation(i, child)
	}

	if len(children) > 0 {
		first := children[0]
		last := children[len(children)-1]
		if first.FragileLeft {
			t.FragileLeft = true
		}
		if last.FragileRight {
			t.FragileRight = true
		}
	}
}

// childViolation reports whether a child's own production may not nest in
// this position under the parent's production: a strictly lower
// precedence always violates, and equal precedence violates on the side
// the associativity forbids.
func (t *Tree) childViolation(index int, child *Tree) uint32 {
	if t.precedence == 0 || child.precedence == 0 || !child.Visible {
		return 0
	}
	if child.precedence < t.precedence {
		return 1
	}
	if child.precedence == t.precedence {
		switch t.assoc {
		case AssocLeft:
			if index > 0 {
				return 1
			}
		case AssocRight:
			if index < len(t.Children)-1 {
				return 1
			}
		}
	}
	return 0
}

// TotalSize returns padding plus size.
func (t *Tree) TotalSize() Length {
	return t.Padding.Add(t.Size)
}

// TotalChars returns the number of characters the tree spans, padding
// included.
func (t *Tree) TotalChars() uint32 {
	return t.Padding.Chars + t.Size.Chars
}

// TotalBytes returns the number of bytes the tree spans, padding included.
func (t *Tree) TotalBytes() uint32 {
	return t.Padding.Bytes + t.Size.Bytes
}

// IsFragile reports whether either fragile flag is set.
func (t *Tree) IsFragile() bool {
	return t.FragileLeft || t.FragileRight
}

// IsError reports whether this node is an error node or unmatched token.
func (t *Tree) IsError() bool {
	return t.Symbol == SymbolError || t.Symbol == SymbolLexerError
}

// ErrorCount returns the number of error nodes in the subtree.
func (t *Tree) ErrorCount() uint32 { return t.errorCount }

// Parent returns the node's parent after AssignParents has run, or nil.
func (t *Tree) Parent() *Tree { return t.parent }

// ChildIndex returns the node's index within its parent's children.
func (t *Tree) ChildIndex() uint32 { return t.childIndex }

// AssignParents resolves the non-owning parent back-references throughout
// the tree. It runs once, after parsing completes, so the back-references
// never participate in sharing decisions mid-parse.
func AssignParents(t *Tree) {
	if t == nil {
		return
	}
	stack := []*Tree{t}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i, child := range node.Children {
			child.parent = node
			child.childIndex = uint32(i)
			stack = append(stack, child)
		}
	}
}

// String renders the tree as an S-expression of its visible nodes, the
// format the corpus runner and the determinism tests compare.
func (t *Tree) String() string {
	var b strings.Builder
	t.write(&b, nil, false)
	return b.String()
}

// StringWithNames is String with symbol names resolved via the language.
func (t *Tree) StringWithNames(lang *Language) string {
	var b strings.Builder
	t.write(&b, lang, false)
	return b.String()
}

func (t *Tree) name(lang *Language) string {
	if lang != nil {
		return lang.SymbolName(t.Symbol)
	}
	if t.IsError() {
		return "ERROR"
	}
	return fmt.Sprintf("sym%d", t.Symbol)
}

// write renders t and reports whether anything was emitted. Invisible
// nodes splice their visible descendants into the parent's child list.
func (t *Tree) write(b *strings.Builder, lang *Language, needSpace bool) bool {
	if !t.Visible {
		wrote := false
		for _, child := range t.Children {
			if child.write(b, lang, needSpace || wrote) {
				wrote = true
			}
		}
		return wrote
	}
	if needSpace {
		b.WriteByte(' ')
	}
	b.WriteByte('(')
	b.WriteString(t.name(lang))
	for _, child := range t.Children {
		child.write(b, lang, true)
	}
	b.WriteByte(')')
	return true
}
