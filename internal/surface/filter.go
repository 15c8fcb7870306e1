package surface

import (
	"encoding/json"
	"fmt"
	"sort"
)

type filterKind int

const (
	selectNone filterKind = iota
	selectAll
	selectIn
)

// Filter is a declarative feature predicate for a layer. The zero value
// selects nothing.
type Filter struct {
	kind     filterKind
	property string
	values   []string
}

// SelectNone matches no feature. It is serialized as the literal `false`
// expression rather than an absent filter.
func SelectNone() Filter {
	return Filter{kind: selectNone}
}

// SelectAll matches every feature; serialized as null.
func SelectAll() Filter {
	return Filter{kind: selectAll}
}

// SelectIn matches features whose property is one of values. An empty
// value list degrades to SelectNone.
func SelectIn(property string, values []string) Filter {
	if len(values) == 0 {
		return SelectNone()
	}
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return Filter{kind: selectIn, property: property, values: sorted}
}

func (f Filter) IsNone() bool { return f.kind == selectNone }
func (f Filter) IsAll() bool  { return f.kind == selectAll }

// Values returns the ids selected by a SelectIn filter.
func (f Filter) Values() []string {
	return append([]string(nil), f.values...)
}

// Matches evaluates the filter against a feature's properties.
func (f Filter) Matches(properties map[string]interface{}) bool {
	switch f.kind {
	case selectAll:
		return true
	case selectIn:
		v, ok := properties[f.property].(string)
		if !ok {
			return false
		}
		i := sort.SearchStrings(f.values, v)
		return i < len(f.values) && f.values[i] == v
	default:
		return false
	}
}

// Expression returns the renderer expression for the filter.
func (f Filter) Expression() interface{} {
	switch f.kind {
	case selectAll:
		return nil
	case selectIn:
		return []interface{}{
			"in",
			[]interface{}{"get", f.property},
			[]interface{}{"literal", f.values},
		}
	default:
		return false
	}
}

func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Expression())
}

// UnmarshalJSON accepts the expressions MarshalJSON produces.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*f = SelectAll()
		return nil
	case bool:
		if v {
			*f = SelectAll()
		} else {
			*f = SelectNone()
		}
		return nil
	}

	var expr []json.RawMessage
	if err := json.Unmarshal(data, &expr); err != nil || len(expr) != 3 {
		return fmt.Errorf("unsupported filter expression %s", data)
	}
	var (
		op      string
		get     []string
		literal []json.RawMessage
		values  []string
	)
	if err := json.Unmarshal(expr[0], &op); err != nil || op != "in" {
		return fmt.Errorf("unsupported filter operator in %s", data)
	}
	if err := json.Unmarshal(expr[1], &get); err != nil || len(get) != 2 || get[0] != "get" {
		return fmt.Errorf("malformed property accessor in %s", data)
	}
	if err := json.Unmarshal(expr[2], &literal); err != nil || len(literal) != 2 {
		return fmt.Errorf("malformed literal in %s", data)
	}
	if err := json.Unmarshal(literal[1], &values); err != nil {
		return fmt.Errorf("malformed literal values in %s: %w", data, err)
	}
	*f = SelectIn(get[1], values)
	return nil
}

func (f Filter) String() string {
	switch f.kind {
	case selectAll:
		return "all"
	case selectIn:
		return fmt.Sprintf("%s in %v", f.property, f.values)
	default:
		return "none"
	}
}
