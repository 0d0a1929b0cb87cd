package query

import "testing"

func TestLengthRangeConcatOfWords(t *testing.T) {
	n := NewConcat(0, NewWord("a", 0), NewWord("b", 1), NewWord("c", 2))
	r := n.LengthRange()
	if r.Min != 3 || r.Max != 3 {
		t.Fatalf("CONCAT of 3 words = %+v, want [3,3]", r)
	}
}

func TestLengthRangeAlternation(t *testing.T) {
	n := NewAlternation(0,
		NewConcat(0, NewWord("a", 0), NewWord("b", 1)),
		NewWord("c", 2),
	)
	r := n.LengthRange()
	if r.Min != 1 || r.Max != 2 {
		t.Fatalf("ALTERNATION([ab],[c]) = %+v, want [1,2]", r)
	}
}

func TestLengthRangeOptionSet(t *testing.T) {
	// OPTIONSET{a, b, c} always contributes all three words, regardless of order.
	n := &Node{
		Kind:     OptionSet,
		Children: []*Node{NewWord("a", 0), NewWord("b", 1), NewWord("c", 2)},
	}
	r := n.LengthRange()
	if r.Min != 3 || r.Max != 3 {
		t.Fatalf("OPTIONSET of 3 words = %+v, want [3,3]", r)
	}
}

func TestKindIsTerminal(t *testing.T) {
	for _, k := range []Kind{Word, QMark, Star, Plus, Regex, DictSet} {
		if !k.IsTerminal() {
			t.Fatalf("%v should be terminal", k)
		}
	}
	for _, k := range []Kind{Concat, Alternation, OptionSet, OrderSet} {
		if k.IsTerminal() {
			t.Fatalf("%v should not be terminal", k)
		}
	}
}

func TestKindString(t *testing.T) {
	if Word.String() != "WORD" || DictSet.String() != "DICTSET" || OrderSet.String() != "ORDERSET" {
		t.Fatal("Kind.String() mismatch")
	}
}
