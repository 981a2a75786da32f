package calc

import (
	"fmt"
	"strconv"

	"github.com/pflow-xyz/stpn/errs"
)

// Kind enumerates the runtime types a Lello expression can produce.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindReal
	KindString
)

// Value is a tagged union over Lello's runtime types, following C-style
// coercions (spec.md §4.4: "Types: nil, boolean, integer, real, string,
// following C-style coercions").
type Value struct {
	Kind Kind
	B    bool
	I    int64
	R    float64
	S    string
}

func Nil() Value              { return Value{Kind: KindNil} }
func Bool(b bool) Value       { return Value{Kind: KindBool, B: b} }
func Int(i int64) Value       { return Value{Kind: KindInt, I: i} }
func Real(r float64) Value    { return Value{Kind: KindReal, R: r} }
func StringV(s string) Value  { return Value{Kind: KindString, S: s} }

func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindInt:
		return strconv.FormatInt(v.I, 10)
	case KindReal:
		return strconv.FormatFloat(v.R, 'g', -1, 64)
	case KindString:
		return v.S
	default:
		return "?"
	}
}

// AsFloat coerces a numeric value to float64; non-numeric values error.
func (v Value) AsFloat() (float64, error) {
	switch v.Kind {
	case KindInt:
		return float64(v.I), nil
	case KindReal:
		return v.R, nil
	default:
		return 0, errs.NewRuntimeValueError("expected numeric value, got %s", v.kindName())
	}
}

// AsBool coerces a boolean value; C-style, non-zero numerics are truthy.
func (v Value) AsBool() (bool, error) {
	switch v.Kind {
	case KindBool:
		return v.B, nil
	case KindInt:
		return v.I != 0, nil
	case KindReal:
		return v.R != 0, nil
	default:
		return false, errs.NewRuntimeValueError("expected boolean value, got %s", v.kindName())
	}
}

// AsInt coerces to int64; a real value must be integral.
func (v Value) AsInt() (int64, error) {
	switch v.Kind {
	case KindInt:
		return v.I, nil
	case KindReal:
		if v.R != float64(int64(v.R)) {
			return 0, errs.NewRuntimeValueError("value %v is not an integer", v.R)
		}
		return int64(v.R), nil
	default:
		return 0, errs.NewRuntimeValueError("expected integer value, got %s", v.kindName())
	}
}

func (v Value) kindName() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", v.Kind)
	}
}

func isNumeric(v Value) bool { return v.Kind == KindInt || v.Kind == KindReal }
