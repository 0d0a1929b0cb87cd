// Package query holds the AST produced by the (external, out-of-scope)
// query parser: the input to the normalizer (C7).
//
// Per spec.md §9 "Design Notes", shared ownership of parsed query units is
// unnecessary at evaluation time — this tree is immutable and owned by the
// request. Provenance is a numeric index (Node.Pos), not a parent pointer.
package query

import "github.com/netspeak/netspeak-go/pkg/phrase"

// Kind identifies the tag of an AST node.
type Kind int

const (
	// Terminals
	Word Kind = iota
	QMark
	Star
	Plus
	Regex
	DictSet

	// Non-terminals
	Concat
	Alternation
	OptionSet
	OrderSet
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "WORD"
	case QMark:
		return "QMARK"
	case Star:
		return "STAR"
	case Plus:
		return "PLUS"
	case Regex:
		return "REGEX"
	case DictSet:
		return "DICTSET"
	case Concat:
		return "CONCAT"
	case Alternation:
		return "ALTERNATION"
	case OptionSet:
		return "OPTIONSET"
	case OrderSet:
		return "ORDERSET"
	default:
		return "UNKNOWN"
	}
}

func (k Kind) IsTerminal() bool {
	return k <= DictSet
}

// Node is one node of the query AST. Terminals carry Text (and, for REGEX,
// min/max bounds on the words it may expand to); non-terminals carry
// Children. Pos is the node's position in a stable left-to-right,
// depth-first traversal of the tree it was built from — the provenance
// value carried through normalization instead of a parent pointer.
type Node struct {
	Kind     Kind
	Text     string // WORD text, REGEX pattern, DICTSET head word
	Children []*Node
	Pos      int

	// RegexMinLen/RegexMaxLen bound candidate word length for REGEX nodes;
	// zero means unbounded.
	RegexMinLen, RegexMaxLen int
}

// LengthRange computes the range of phrase lengths this node can
// (theoretically) match, per spec.md §3's CONCAT-adds / ALTERNATION-unions
// rule and original_source's LengthRange.hpp semantics.
func (n *Node) LengthRange() phrase.LengthRange {
	switch n.Kind {
	case Word, Regex, DictSet:
		return phrase.Exactly(1)
	case QMark:
		return phrase.Exactly(1)
	case Star:
		return phrase.AtLeast(0)
	case Plus:
		return phrase.AtLeast(1)
	case Concat:
		out := phrase.Exactly(0)
		for _, c := range n.Children {
			out = out.Concat(c.LengthRange())
		}
		return out
	case Alternation:
		out := phrase.EmptyRange()
		for _, c := range n.Children {
			out = out.Union(c.LengthRange())
		}
		return out
	case OptionSet, OrderSet:
		// Every permutation of children is itself a CONCAT of all of them,
		// so the range is the same as concatenating them in any order.
		out := phrase.Exactly(0)
		for _, c := range n.Children {
			out = out.Concat(c.LengthRange())
		}
		return out
	default:
		return phrase.EmptyRange()
	}
}

// NewWord builds a WORD terminal.
func NewWord(text string, pos int) *Node { return &Node{Kind: Word, Text: text, Pos: pos} }

// NewQMark builds a QMARK terminal.
func NewQMark(pos int) *Node { return &Node{Kind: QMark, Pos: pos} }

// NewConcat builds a CONCAT non-terminal over children, in order.
func NewConcat(pos int, children ...*Node) *Node {
	return &Node{Kind: Concat, Pos: pos, Children: children}
}

// NewAlternation builds an ALTERNATION non-terminal over children.
func NewAlternation(pos int, children ...*Node) *Node {
	return &Node{Kind: Alternation, Pos: pos, Children: children}
}
