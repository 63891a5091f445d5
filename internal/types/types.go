// Package types defines tesc's value types and the structural equality and
// display rules shared by the analyser and the evaluator.
package types

import "fmt"

// Kind tags which variant of Type a value is.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindRegex
	KindNone
	KindList
	KindFunction
)

// Type is a tagged variant covering every type tesc's analyser can assign
// to an expression. List and Function carry nested Types; every other kind
// is a plain leaf.
type Type struct {
	Kind Kind

	// Elem is the element type, set only when Kind == KindList.
	Elem *Type

	// Params and Return describe a function signature, set only when
	// Kind == KindFunction.
	Params []Type
	Return *Type
}

var (
	String = Type{Kind: KindString}
	Int    = Type{Kind: KindInt}
	Float  = Type{Kind: KindFloat}
	Bool   = Type{Kind: KindBool}
	Regex  = Type{Kind: KindRegex}
	None   = Type{Kind: KindNone}
)

// List builds a list type with the given element type.
func List(elem Type) Type {
	return Type{Kind: KindList, Elem: &elem}
}

// Function builds a function type with the given parameter and return
// types.
func Function(params []Type, ret Type) Type {
	return Type{Kind: KindFunction, Params: params, Return: &ret}
}

// Equal reports whether t and other describe the same type, recursing into
// List element types and Function signatures.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindList:
		return t.Elem.Equal(*other.Elem)
	case KindFunction:
		if len(t.Params) != len(other.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(other.Params[i]) {
				return false
			}
		}
		return t.Return.Equal(*other.Return)
	default:
		return true
	}
}

// String renders the type the way it appears in diagnostics and error
// messages: scalar types use their lowercase source keyword, while list
// types render as list<T> rather than the source spelling [T].
func (t Type) String() string {
	switch t.Kind {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindRegex:
		return "regex"
	case KindNone:
		return "none"
	case KindList:
		return "list<" + t.Elem.String() + ">"
	case KindFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("fn(%s) : %s", joinComma(parts), t.Return.String())
	default:
		return "?"
	}
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// FromName maps a source-level type name ("string", "int", "float",
// "bool", "regex", "none", or a bracketed list type like "[int]") to its
// Type. The bool name parses successfully here even though casting *to*
// bool is disallowed elsewhere — FromName is used for parameter/return
// type annotations, not for the `as` cast target list, and tesc does
// allow bool-typed parameters and let/const bindings.
func FromName(name string) (Type, bool) {
	switch name {
	case "string":
		return String, true
	case "int":
		return Int, true
	case "float":
		return Float, true
	case "bool":
		return Bool, true
	case "regex":
		return Regex, true
	case "none":
		return None, true
	default:
		if len(name) >= 2 && name[0] == '[' && name[len(name)-1] == ']' {
			elem, ok := FromName(name[1 : len(name)-1])
			if !ok {
				return Type{}, false
			}
			return List(elem), true
		}
		return Type{}, false
	}
}
