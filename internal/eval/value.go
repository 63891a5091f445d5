// Package eval implements tesc's tree-walking evaluator: Value, the
// lexical Environment, and the Evaluator that walks an *ast.Program.
package eval

import (
	"fmt"
	"strconv"

	"github.com/tesc-lang/tesc/internal/types"
)

// Value is a tagged runtime value. Exactly one of the fields matching
// Type.Kind is meaningful at a time.
type Value struct {
	Type Type

	Str   string
	Int   int64
	Flt   float64
	Bool  bool
	Regex string // the raw pattern text, for regex-typed values
	List  []Value
}

// Type is an alias so eval's public API reads as eval.Type rather than
// forcing every caller to import internal/types directly.
type Type = types.Type

func StringValue(s string) Value  { return Value{Type: types.String, Str: s} }
func IntValue(i int64) Value      { return Value{Type: types.Int, Int: i} }
func FloatValue(f float64) Value  { return Value{Type: types.Float, Flt: f} }
func BoolValue(b bool) Value      { return Value{Type: types.Bool, Bool: b} }
func RegexValue(pat string) Value { return Value{Type: types.Regex, Regex: pat} }
func NoneValue() Value            { return Value{Type: types.None} }
func ListValue(elem types.Type, items []Value) Value {
	return Value{Type: types.List(elem), List: items}
}

// String renders v the way println/output print it: strings unquoted,
// everything else in its literal source form.
func (v Value) String() string {
	switch v.Type.Kind {
	case types.KindString:
		return v.Str
	case types.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case types.KindFloat:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	case types.KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case types.KindRegex:
		return "`" + v.Regex + "`"
	case types.KindNone:
		return "none"
	case types.KindList:
		out := "["
		for i, item := range v.List {
			if i > 0 {
				out += ", "
			}
			out += item.String()
		}
		return out + "]"
	default:
		return fmt.Sprintf("<%s>", v.Type)
	}
}

// Equal reports structural equality, used by the evaluator's == and !=
// operators and by `in` against a list.
func (v Value) Equal(other Value) bool {
	if !v.Type.Equal(other.Type) {
		return false
	}
	switch v.Type.Kind {
	case types.KindString:
		return v.Str == other.Str
	case types.KindInt:
		return v.Int == other.Int
	case types.KindFloat:
		return v.Flt == other.Flt
	case types.KindBool:
		return v.Bool == other.Bool
	case types.KindRegex:
		return v.Regex == other.Regex
	case types.KindNone:
		return true
	case types.KindList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
