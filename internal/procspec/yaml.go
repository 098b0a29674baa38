package procspec

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (n *Names) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*n = Names{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*n = list
		return nil
	default:
		return fmt.Errorf("line %d: expected a column name or list of names", node.Line)
	}
}

// UnmarshalYAML decodes
//
//	filter_by:
//	  status: active          # eq
//	  tech: [coal, gas]       # in
//	  year: {ge: 2020, le: "{solve_year}"}
func (f *Filters) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: filter_by must be a mapping", node.Line)
	}
	var out Filters
	for i := 0; i+1 < len(node.Content); i += 2 {
		field := node.Content[i].Value
		val := node.Content[i+1]
		switch val.Kind {
		case yaml.MappingNode:
			for j := 0; j+1 < len(val.Content); j += 2 {
				v, err := decodeValue(val.Content[j+1])
				if err != nil {
					return err
				}
				out = append(out, Constraint{Field: field, Op: Op(val.Content[j].Value), Value: v})
			}
		case yaml.SequenceNode:
			v, err := decodeValue(val)
			if err != nil {
				return err
			}
			out = append(out, Constraint{Field: field, Op: OpIn, Value: v})
		default:
			v, err := decodeValue(val)
			if err != nil {
				return err
			}
			out = append(out, Constraint{Field: field, Op: OpEq, Value: v})
		}
	}
	*f = out
	return nil
}

// UnmarshalYAML decodes an ordered `column: function` mapping.
func (a *Aggregations) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: aggregate_on must be a mapping of column to function", node.Line)
	}
	var out Aggregations
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, ColumnAgg{
			Column:   node.Content[i].Value,
			Function: strings.ToLower(node.Content[i+1].Value),
		})
	}
	*a = out
	return nil
}

// UnmarshalYAML decodes an ordered `column: asc|desc` mapping, a list of
// columns, or a single column. The last two sort ascending.
func (s *SortKeys) UnmarshalYAML(node *yaml.Node) error {
	var out SortKeys
	switch node.Kind {
	case yaml.ScalarNode:
		out = SortKeys{{Column: node.Value}}
	case yaml.SequenceNode:
		for _, c := range node.Content {
			out = append(out, SortKey{Column: c.Value})
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			dir := strings.ToLower(node.Content[i+1].Value)
			var desc bool
			switch dir {
			case "asc", "ascending", "":
			case "desc", "descending":
				desc = true
			default:
				return fmt.Errorf("line %d: sort direction must be asc or desc, got %q", node.Content[i+1].Line, dir)
			}
			out = append(out, SortKey{Column: node.Content[i].Value, Descending: desc})
		}
	default:
		return fmt.Errorf("line %d: invalid sort_by", node.Line)
	}
	*s = out
	return nil
}

// UnmarshalYAML decodes either `{old: new}` (global) or `{column: {old: new}}`.
func (r *Replace) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: replace_values must be a mapping", node.Line)
	}
	var out Replace
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind == yaml.MappingNode {
			pairs, err := decodePairs(v)
			if err != nil {
				return err
			}
			out.Columns = append(out.Columns, ColumnSubstitutions{Column: k.Value, Pairs: pairs})
			continue
		}
		pair, err := decodePair(k, v)
		if err != nil {
			return err
		}
		out.Global = append(out.Global, pair)
	}
	if len(out.Global) > 0 && len(out.Columns) > 0 {
		return fmt.Errorf("line %d: replace_values mixes global and per-column substitutions", node.Line)
	}
	*r = out
	return nil
}

// UnmarshalYAML decodes a scalar (global default) or a `column: value` mapping.
func (f *Fill) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		v, err := decodeValue(node)
		if err != nil {
			return err
		}
		*f = Fill{Global: v, HasGlobal: true}
		return nil
	case yaml.MappingNode:
		var out Fill
		for i := 0; i+1 < len(node.Content); i += 2 {
			v, err := decodeValue(node.Content[i+1])
			if err != nil {
				return err
			}
			out.Columns = append(out.Columns, ColumnFill{Column: node.Content[i].Value, Value: v})
		}
		*f = out
		return nil
	default:
		return fmt.Errorf("line %d: fill_null must be a scalar or a mapping", node.Line)
	}
}

func decodePairs(node *yaml.Node) ([]Substitution, error) {
	var pairs []Substitution
	for i := 0; i+1 < len(node.Content); i += 2 {
		p, err := decodePair(node.Content[i], node.Content[i+1])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func decodePair(k, v *yaml.Node) (Substitution, error) {
	oldV, err := decodeValue(k)
	if err != nil {
		return Substitution{}, err
	}
	newV, err := decodeValue(v)
	if err != nil {
		return Substitution{}, err
	}
	return Substitution{Old: oldV, New: newV}, nil
}

func decodeValue(node *yaml.Node) (any, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return frame.Normalize(v), nil
}
