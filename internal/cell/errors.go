package cell

import (
	"errors"
	"fmt"
)

var (
	// ErrContradiction means a merge would reduce a cell below the lattice
	// bottom (empty interval, disjoint sets, true vs false). Recoverable:
	// callers exploring successors discard the branch.
	ErrContradiction = errors.New("contradiction")

	// ErrTypeMismatch means two cells of incompatible variants were merged
	// or compared with no coercion rule between them.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrPathNotFound means a merge path traversed a field that does not
	// exist on a non-extensible cell. Indicates caller error.
	ErrPathNotFound = errors.New("path not found")

	// ErrCycleDetected means a taxonomy edge list is not acyclic.
	ErrCycleDetected = errors.New("cycle detected")
)

func contradictionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContradiction, fmt.Sprintf(format, args...))
}

func mismatchf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTypeMismatch, fmt.Sprintf(format, args...))
}
