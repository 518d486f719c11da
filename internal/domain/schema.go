package domain

import (
	"fmt"

	"github.com/Harshitk-cp/coref/internal/cell"
)

// AttributeType names the cell variant backing a declared attribute.
type AttributeType string

const (
	AttributeBool     AttributeType = "bool"
	AttributeInterval AttributeType = "interval"
	AttributeSet      AttributeType = "set"
	AttributeLinear   AttributeType = "linear"
	AttributePrefix   AttributeType = "prefix"
	AttributeString   AttributeType = "string"
)

func ValidAttributeType(t string) bool {
	switch AttributeType(t) {
	case AttributeBool, AttributeInterval, AttributeSet, AttributeLinear, AttributePrefix, AttributeString:
		return true
	}
	return false
}

// TaxonomySpec declares the kind order as explicit nodes and IS-A edges.
type TaxonomySpec struct {
	Nodes []string            `json:"nodes,omitempty"`
	Edges []cell.TaxonomyEdge `json:"edges"`
}

// AttributeSpec declares one typed attribute every entity of the set
// carries. Domain is required for set and linear attributes and ignored
// otherwise.
type AttributeSpec struct {
	Name   string        `json:"name"`
	Type   AttributeType `json:"type"`
	Domain []string      `json:"domain,omitempty"`
}

// EntitySpec declares one entity: its kind node plus initial attribute
// values, keyed by attribute name.
type EntitySpec struct {
	Kind   string         `json:"kind"`
	Values map[string]any `json:"values,omitempty"`
}

// Spec is the serializable description of a context set. Compile turns it
// into live cells; the store persists it as-is.
type Spec struct {
	Name       string          `json:"name"`
	Taxonomy   TaxonomySpec    `json:"taxonomy"`
	Attributes []AttributeSpec `json:"attributes,omitempty"`
	Entities   []EntitySpec    `json:"entities"`
}

// Compile validates the spec and builds the context set: one shared
// taxonomy, and per entity a record cell with every declared attribute at
// its stem, narrowed by the entity's declared values.
func Compile(spec Spec) (*ContextSet, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("context set spec has no name")
	}
	tax, err := cell.NewTaxonomy(spec.Taxonomy.Nodes, spec.Taxonomy.Edges)
	if err != nil {
		return nil, fmt.Errorf("compiling taxonomy: %w", err)
	}

	attrSeen := make(map[string]struct{}, len(spec.Attributes))
	for _, a := range spec.Attributes {
		if a.Name == KindField {
			return nil, fmt.Errorf("attribute name %q is reserved", KindField)
		}
		if _, dup := attrSeen[a.Name]; dup {
			return nil, fmt.Errorf("duplicate attribute %q", a.Name)
		}
		attrSeen[a.Name] = struct{}{}
		if !ValidAttributeType(string(a.Type)) {
			return nil, fmt.Errorf("attribute %q has unknown type %q", a.Name, a.Type)
		}
	}

	props := make([]*cell.DictCell, len(spec.Entities))
	for i, e := range spec.Entities {
		p, err := compileEntity(tax, spec.Attributes, e)
		if err != nil {
			return nil, fmt.Errorf("compiling entity %d: %w", i, err)
		}
		props[i] = p
	}

	cs, err := NewContextSet(spec.Name, tax, props)
	if err != nil {
		return nil, err
	}
	cs.Spec = spec
	return cs, nil
}

func compileEntity(tax *cell.Taxonomy, attrs []AttributeSpec, e EntitySpec) (*cell.DictCell, error) {
	props := cell.NewDictCell()

	kind, err := cell.NewPartialOrdered(tax, e.Kind)
	if err != nil {
		return nil, err
	}
	props.Put(KindField, kind)

	for _, a := range attrs {
		stem, err := attributeStem(a)
		if err != nil {
			return nil, err
		}
		props.Put(a.Name, stem)
		v, ok := e.Values[a.Name]
		if !ok {
			continue
		}
		if err := stem.Merge(NormalizeValue(v)); err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
	}
	for name := range e.Values {
		if !props.ContainsPath([]string{name}) {
			return nil, fmt.Errorf("value for undeclared attribute %q", name)
		}
	}
	return props, nil
}

func attributeStem(a AttributeSpec) (cell.Cell, error) {
	switch a.Type {
	case AttributeBool:
		return cell.NewBoolCell(), nil
	case AttributeInterval:
		return cell.NewIntervalCell(), nil
	case AttributeSet:
		return cell.NewSetIntersectionCell(a.Domain)
	case AttributeLinear:
		return cell.NewLinearOrderedCell(a.Domain)
	case AttributePrefix:
		return cell.NewPrefixCell(), nil
	case AttributeString:
		return cell.NewStringCell(), nil
	default:
		return nil, fmt.Errorf("unknown attribute type %q", a.Type)
	}
}

// NormalizeValue maps JSON-decoded values onto the shapes the cell
// coercions accept: bools become Truth values and []any element lists
// become []string or []float64.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case bool:
		if t {
			return cell.True
		}
		return cell.False
	case []any:
		return normalizeList(t)
	default:
		return v
	}
}

func normalizeList(list []any) any {
	if len(list) == 0 {
		return list
	}
	switch list[0].(type) {
	case string:
		out := make([]string, 0, len(list))
		for _, el := range list {
			s, ok := el.(string)
			if !ok {
				return list
			}
			out = append(out, s)
		}
		return out
	case float64:
		out := make([]float64, 0, len(list))
		for _, el := range list {
			f, ok := el.(float64)
			if !ok {
				return list
			}
			out = append(out, f)
		}
		return out
	default:
		return list
	}
}
