package phrase

import "testing"

func TestLengthRangeEmpty(t *testing.T) {
	r := EmptyRange()
	if !r.Empty() {
		t.Fatal("EmptyRange() must be empty")
	}
	if r.Accepts(0) || r.Accepts(5) {
		t.Fatal("empty range must accept nothing")
	}
}

func TestLengthRangeConcat(t *testing.T) {
	a := Exactly(2)
	b := Exactly(3)
	got := a.Concat(b)
	if got.Min != 5 || got.Max != 5 {
		t.Fatalf("Concat(2,3) = %+v, want [5,5]", got)
	}

	unbounded := AtLeast(1)
	got2 := a.Concat(unbounded)
	if got2.Min != 3 || got2.Max != unboundedMax {
		t.Fatalf("Concat with unbounded = %+v, want min=3, unbounded max", got2)
	}

	got3 := EmptyRange().Concat(b)
	if !got3.Empty() {
		t.Fatal("Concat with an empty operand must be empty")
	}
}

func TestLengthRangeUnion(t *testing.T) {
	a := NewLengthRange(2, 4)
	b := NewLengthRange(3, 6)
	got := a.Union(b)
	if got.Min != 2 || got.Max != 6 {
		t.Fatalf("Union = %+v, want [2,6]", got)
	}

	got2 := EmptyRange().Union(a)
	if got2 != a {
		t.Fatalf("Union(empty, a) must equal a, got %+v", got2)
	}
}

func TestLengthRangeUnbounded(t *testing.T) {
	r := AtLeast(2)
	if !r.Unbounded() {
		t.Fatal("AtLeast must be unbounded")
	}
	if !r.Accepts(1000) {
		t.Fatal("unbounded range must accept arbitrarily large lengths")
	}
	if r.Accepts(1) {
		t.Fatal("unbounded range must still respect its minimum")
	}
}
