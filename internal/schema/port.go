package schema

import "fmt"

// ValueType is the advisory type tag of a value port
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeArray   ValueType = "array"
	TypeObject  ValueType = "object"
	TypeAny     ValueType = "any"
)

// Valid reports whether t is one of the known value types.
func (t ValueType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject, TypeAny:
		return true
	}
	return false
}

// Compatible reports whether a value of type from may feed a port of type to.
// The check is advisory; the graph store never rejects an edge because of it.
func Compatible(from, to ValueType) bool {
	return from == TypeAny || to == TypeAny || from == to
}

// PortSpec declares a single value socket
type PortSpec struct {
	Name string    `json:"name" yaml:"name"`
	Type ValueType `json:"type" yaml:"type"`
}

func (p PortSpec) String() string {
	return fmt.Sprintf("%s:%s", p.Name, p.Type)
}

// Values maps port names to values
type Values map[string]any

// Clone returns a shallow copy of v. A nil map clones to an empty one.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
