// Package cell implements typed partial-information values ("cells") ordered
// by an entailment lattice. A cell stores everything known about a value so
// far; merging adds information and fails on contradiction, never silently
// dropping what was already known.
package cell

// Cell is the contract every cell variant implements.
//
// Merge combines the receiver with another cell of the same variant (or a
// value coercible to it) into the least upper bound, mutating the receiver in
// place. A failed merge leaves the receiver unchanged.
//
// Entails reports whether the receiver is at least as specific as other;
// IsEntailedBy is the inverse. Both return TypeMismatch for values that
// cannot be coerced to the receiver's variant.
type Cell interface {
	Merge(other any) error
	Entails(other any) (bool, error)
	IsEntailedBy(other any) (bool, error)
	IsEqual(other any) (bool, error)
	Copy() Cell
	// Stem returns a fresh, information-free cell of the same variant,
	// sharing the receiver's domain.
	Stem() Cell
}

// Entails reports whether a is at least as specific as b.
func Entails(a Cell, b any) (bool, error) {
	return a.Entails(b)
}

// IsEntailedBy reports whether b is at least as specific as a.
func IsEntailedBy(a Cell, b any) (bool, error) {
	return a.IsEntailedBy(b)
}

// IsEqual reports mutual entailment.
func IsEqual(a Cell, b any) (bool, error) {
	return a.IsEqual(b)
}

// Copy returns a structural copy of c. Immutable sub-structure (symbol
// domains, taxonomies) is shared by reference; mutable values are copied.
func Copy(c Cell) Cell {
	return c.Copy()
}
