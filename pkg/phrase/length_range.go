package phrase

import "math"

// emptyMin is the sentinel used by LengthRange.min to mean "this range
// matches nothing", carried over bit-for-bit from
// original_source/src/netspeak/internal/LengthRange.hpp.
const emptyMin = math.MaxUint32
const unboundedMax = math.MaxUint32

// LengthRange is an inclusive [Min, Max] interval of phrase lengths.
// Concatenating two nodes of a query AST adds their ranges; alternating
// them unions the ranges (spec.md §3 "Query AST").
type LengthRange struct {
	Min uint32
	Max uint32
}

// NewLengthRange returns the range [min, max].
func NewLengthRange(min, max uint32) LengthRange {
	return LengthRange{Min: min, Max: max}
}

// Exactly returns the single-length range [n, n].
func Exactly(n uint32) LengthRange {
	return LengthRange{Min: n, Max: n}
}

// AtLeast returns the unbounded range [n, ∞).
func AtLeast(n uint32) LengthRange {
	return LengthRange{Min: n, Max: unboundedMax}
}

// EmptyRange is the empty set of lengths.
func EmptyRange() LengthRange {
	return LengthRange{Min: emptyMin, Max: 0}
}

// Empty reports whether this range matches no length at all.
func (r LengthRange) Empty() bool {
	return r.Min == emptyMin
}

// Unbounded reports whether this range accepts all lengths >= Min.
func (r LengthRange) Unbounded() bool {
	return r.Min != emptyMin && r.Max == unboundedMax
}

// Accepts reports whether length is within this range.
func (r LengthRange) Accepts(length uint32) bool {
	return !r.Empty() && r.Min <= length && length <= r.Max
}

// Concat returns the range of a CONCAT(lhs, rhs) node: the sum of the two
// ranges' endpoints, propagating emptiness and unboundedness.
func (r LengthRange) Concat(o LengthRange) LengthRange {
	if r.Empty() || o.Empty() {
		return EmptyRange()
	}
	out := LengthRange{Min: r.Min + o.Min}
	if r.Max == unboundedMax || o.Max == unboundedMax {
		out.Max = unboundedMax
	} else {
		out.Max = r.Max + o.Max
	}
	return out
}

// Union returns the range of an ALTERNATION(lhs, rhs) node.
func (r LengthRange) Union(o LengthRange) LengthRange {
	if o.Empty() {
		return r
	}
	if r.Empty() {
		return o
	}
	out := r
	if o.Min < out.Min {
		out.Min = o.Min
	}
	if o.Max > out.Max {
		out.Max = o.Max
	}
	return out
}

func (r LengthRange) String() string {
	switch {
	case r.Empty():
		return "LengthRange(empty)"
	case r.Unbounded():
		return "LengthRange(" + itoa(r.Min) + ", unbounded)"
	default:
		return "LengthRange(" + itoa(r.Min) + ", " + itoa(r.Max) + ")"
	}
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
