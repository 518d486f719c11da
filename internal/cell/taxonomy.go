package cell

import (
	"fmt"
	"sort"
)

// TaxonomyEdge is a parent -> child generalization edge ("child IS-A parent").
type TaxonomyEdge struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// Taxonomy is an explicit registry for a fixed partial order of kind symbols:
// a single-rooted DAG built once from a node/edge list and shared by every
// PartialOrderedCell that references it. Immutable after construction.
type Taxonomy struct {
	nodes    []string // sorted, for deterministic iteration
	parents  map[string][]string
	children map[string][]string
	root     string
	// desc[n] is the set of nodes reachable from n, n included.
	desc map[string]map[string]struct{}
}

// NewTaxonomy builds and validates a taxonomy from named nodes and edges.
// Edges may mention nodes absent from the node list. Fails with
// ErrCycleDetected when the edges are not acyclic, and with a plain error
// when the graph is empty or has no unique root.
func NewTaxonomy(nodes []string, edges []TaxonomyEdge) (*Taxonomy, error) {
	seen := make(map[string]struct{})
	for _, n := range nodes {
		seen[n] = struct{}{}
	}
	for _, e := range edges {
		seen[e.Parent] = struct{}{}
		seen[e.Child] = struct{}{}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("taxonomy has no nodes")
	}

	t := &Taxonomy{
		parents:  make(map[string][]string),
		children: make(map[string][]string),
		desc:     make(map[string]map[string]struct{}),
	}
	for n := range seen {
		t.nodes = append(t.nodes, n)
	}
	sort.Strings(t.nodes)

	edgeSeen := make(map[TaxonomyEdge]struct{}, len(edges))
	for _, e := range edges {
		if e.Parent == e.Child {
			return nil, fmt.Errorf("%w: self edge on %q", ErrCycleDetected, e.Parent)
		}
		if _, dup := edgeSeen[e]; dup {
			continue
		}
		edgeSeen[e] = struct{}{}
		t.children[e.Parent] = append(t.children[e.Parent], e.Child)
		t.parents[e.Child] = append(t.parents[e.Child], e.Parent)
	}
	for n := range t.children {
		sort.Strings(t.children[n])
	}
	for n := range t.parents {
		sort.Strings(t.parents[n])
	}

	if err := t.checkAcyclic(); err != nil {
		return nil, err
	}
	roots := t.findRoots()
	if len(roots) != 1 {
		return nil, fmt.Errorf("taxonomy must have exactly one root, found %d", len(roots))
	}
	t.root = roots[0]

	for _, n := range t.nodes {
		t.desc[n] = t.computeDescendants(n)
	}
	return t, nil
}

func (t *Taxonomy) checkAcyclic() error {
	indeg := make(map[string]int, len(t.nodes))
	for _, n := range t.nodes {
		indeg[n] = len(t.parents[n])
	}
	queue := make([]string, 0, len(t.nodes))
	for _, n := range t.nodes {
		if indeg[n] == 0 {
			queue = append(queue, n)
		}
	}
	visited := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visited++
		for _, c := range t.children[n] {
			indeg[c]--
			if indeg[c] == 0 {
				queue = append(queue, c)
			}
		}
	}
	if visited != len(t.nodes) {
		return fmt.Errorf("%w: taxonomy edges form a cycle", ErrCycleDetected)
	}
	return nil
}

func (t *Taxonomy) findRoots() []string {
	var roots []string
	for _, n := range t.nodes {
		if len(t.parents[n]) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

func (t *Taxonomy) computeDescendants(n string) map[string]struct{} {
	out := map[string]struct{}{n: {}}
	agenda := []string{n}
	for len(agenda) > 0 {
		cur := agenda[0]
		agenda = agenda[1:]
		for _, c := range t.children[cur] {
			if _, ok := out[c]; !ok {
				out[c] = struct{}{}
				agenda = append(agenda, c)
			}
		}
	}
	return out
}

// Root returns the unique most-general node.
func (t *Taxonomy) Root() string { return t.root }

// Nodes returns all node names in sorted order.
func (t *Taxonomy) Nodes() []string {
	out := make([]string, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Contains reports whether n is a node of the taxonomy.
func (t *Taxonomy) Contains(n string) bool {
	_, ok := t.desc[n]
	return ok
}

// Reaches reports whether b is a (possibly equal) descendant of a.
func (t *Taxonomy) Reaches(a, b string) bool {
	d, ok := t.desc[a]
	if !ok {
		return false
	}
	_, ok = d[b]
	return ok
}

// Children returns the direct specializations of n in sorted order.
func (t *Taxonomy) Children(n string) []string {
	out := make([]string, len(t.children[n]))
	copy(out, t.children[n])
	return out
}

// Parents returns the direct generalizations of n in sorted order.
func (t *Taxonomy) Parents(n string) []string {
	out := make([]string, len(t.parents[n]))
	copy(out, t.parents[n])
	return out
}

// Meet returns the unique most specific common descendant of a and b: the
// element of desc(a) ∩ desc(b) from which every other common descendant is
// reachable. ok is false when no bound exists or when the meet is ambiguous.
func (t *Taxonomy) Meet(a, b string) (string, bool) {
	da, oka := t.desc[a]
	db, okb := t.desc[b]
	if !oka || !okb {
		return "", false
	}
	var common []string
	for n := range da {
		if _, ok := db[n]; ok {
			common = append(common, n)
		}
	}
	if len(common) == 0 {
		return "", false
	}
	sort.Strings(common)
	for _, m := range common {
		covers := true
		for _, x := range common {
			if !t.Reaches(m, x) {
				covers = false
				break
			}
		}
		if covers {
			return m, true
		}
	}
	return "", false
}

// PartialOrderedCell is a position in a taxonomy. The empty position is the
// lattice bottom (nothing known); merging moves the position to the unique
// meet of the two nodes and fails when the nodes sit on incomparable
// branches with no unique common descendant.
type PartialOrderedCell struct {
	tax  *Taxonomy // shared
	node string    // "" means unknown
}

// NewPartialOrderedCell returns an unconstrained cell over tax.
func NewPartialOrderedCell(tax *Taxonomy) *PartialOrderedCell {
	return &PartialOrderedCell{tax: tax}
}

// NewPartialOrdered returns a cell positioned at node.
func NewPartialOrdered(tax *Taxonomy, node string) (*PartialOrderedCell, error) {
	if !tax.Contains(node) {
		return nil, fmt.Errorf("node %q not in taxonomy", node)
	}
	return &PartialOrderedCell{tax: tax, node: node}, nil
}

// Node returns the current position, or "" when unknown.
func (c *PartialOrderedCell) Node() string { return c.node }

// Taxonomy returns the shared order registry.
func (c *PartialOrderedCell) Taxonomy() *Taxonomy { return c.tax }

func (c *PartialOrderedCell) coerce(v any) (*PartialOrderedCell, error) {
	switch o := v.(type) {
	case *PartialOrderedCell:
		if o.tax != c.tax {
			return nil, mismatchf("partial orders built on different taxonomies")
		}
		return o, nil
	case string:
		if !c.tax.Contains(o) {
			return nil, mismatchf("node %q not in taxonomy", o)
		}
		return &PartialOrderedCell{tax: c.tax, node: o}, nil
	default:
		return nil, mismatchf("cannot coerce %T to PartialOrderedCell", v)
	}
}

// entailedBy reports whether o's position is at or below c's.
func (c *PartialOrderedCell) entailedBy(o *PartialOrderedCell) bool {
	if c.node == "" {
		return true
	}
	if o.node == "" {
		return false
	}
	return c.tax.Reaches(c.node, o.node)
}

func (c *PartialOrderedCell) Merge(other any) error {
	o, err := c.coerce(other)
	if err != nil {
		return err
	}
	switch {
	case o.node == "" || c.node == o.node:
		return nil
	case c.node == "":
		c.node = o.node
		return nil
	case c.tax.Reaches(o.node, c.node):
		// already at or below the incoming node
		return nil
	case c.tax.Reaches(c.node, o.node):
		c.node = o.node
		return nil
	default:
		meet, ok := c.tax.Meet(c.node, o.node)
		if !ok {
			return contradictionf("no common descendant of %q and %q", c.node, o.node)
		}
		c.node = meet
		return nil
	}
}

func (c *PartialOrderedCell) Entails(other any) (bool, error) {
	o, err := c.coerce(other)
	if err != nil {
		return false, err
	}
	return o.entailedBy(c), nil
}

func (c *PartialOrderedCell) IsEntailedBy(other any) (bool, error) {
	o, err := c.coerce(other)
	if err != nil {
		return false, err
	}
	return c.entailedBy(o), nil
}

func (c *PartialOrderedCell) IsEqual(other any) (bool, error) {
	o, err := c.coerce(other)
	if err != nil {
		return false, err
	}
	return c.node == o.node, nil
}

func (c *PartialOrderedCell) Copy() Cell {
	return &PartialOrderedCell{tax: c.tax, node: c.node}
}

func (c *PartialOrderedCell) Stem() Cell {
	return &PartialOrderedCell{tax: c.tax}
}

// Refinements returns the possible specializations of the current position.
func (c *PartialOrderedCell) Refinements() []string {
	if c.node == "" {
		return c.tax.Children(c.tax.Root())
	}
	return c.tax.Children(c.node)
}

// Relaxations returns the possible generalizations of the current position.
func (c *PartialOrderedCell) Relaxations() []string {
	if c.node == "" {
		return nil
	}
	return c.tax.Parents(c.node)
}

func (c *PartialOrderedCell) String() string {
	if c.node == "" {
		return "<" + c.tax.root + ">"
	}
	return c.node
}
