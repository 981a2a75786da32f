package calc

import (
	"math"

	"github.com/pflow-xyz/stpn/errs"
)

// Bindings resolves identifiers (place names, feature-scoped names) to
// runtime Values during evaluation.
type Bindings interface {
	Lookup(name string) (Value, bool)
}

// MapBindings is the common case: a flat name->Value table.
type MapBindings map[string]Value

func (m MapBindings) Lookup(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}

// builtins are the function names Call nodes may invoke. All operate on
// numeric (int/real) arguments and return a real, following the same
// coercion rules as the binary arithmetic operators.
var builtins = map[string]func(args []float64) (float64, error){
	"min": func(args []float64) (float64, error) {
		if len(args) == 0 {
			return 0, errs.NewRuntimeValueError("min requires at least one argument")
		}
		m := args[0]
		for _, a := range args[1:] {
			if a < m {
				m = a
			}
		}
		return m, nil
	},
	"max": func(args []float64) (float64, error) {
		if len(args) == 0 {
			return 0, errs.NewRuntimeValueError("max requires at least one argument")
		}
		m := args[0]
		for _, a := range args[1:] {
			if a > m {
				m = a
			}
		}
		return m, nil
	},
	"abs": func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, errs.NewRuntimeValueError("abs requires exactly one argument")
		}
		return math.Abs(args[0]), nil
	},
	"floor": func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, errs.NewRuntimeValueError("floor requires exactly one argument")
		}
		return math.Floor(args[0]), nil
	},
	"ceil": func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, errs.NewRuntimeValueError("ceil requires exactly one argument")
		}
		return math.Ceil(args[0]), nil
	},
	"sqrt": func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, errs.NewRuntimeValueError("sqrt requires exactly one argument")
		}
		return math.Sqrt(args[0]), nil
	},
}

// Eval evaluates expr against bindings, following C-style numeric promotion:
// an operation on two ints stays an int (except '/' and '^', which promote
// to real), and any real operand promotes the whole operation to real.
func Eval(expr Expr, bindings Bindings) (Value, error) {
	switch e := expr.(type) {
	case Literal:
		return e.Value, nil
	case Ident:
		v, ok := bindings.Lookup(e.Name)
		if !ok {
			return Value{}, errs.NewRuntimeValueError("undefined identifier %q", e.Name)
		}
		return v, nil
	case Unary:
		return evalUnary(e, bindings)
	case Binary:
		return evalBinary(e, bindings)
	case Call:
		return evalCall(e, bindings)
	default:
		return Value{}, errs.NewRuntimeValueError("unknown expression node %T", expr)
	}
}

func evalUnary(e Unary, bindings Bindings) (Value, error) {
	operand, err := Eval(e.Operand, bindings)
	if err != nil {
		return Value{}, err
	}
	switch e.Op {
	case "!":
		b, err := operand.AsBool()
		if err != nil {
			return Value{}, err
		}
		return Bool(!b), nil
	case "-":
		if !isNumeric(operand) {
			return Value{}, errs.NewRuntimeValueError("unary '-' requires a numeric operand, got %s", operand.kindName())
		}
		if operand.Kind == KindInt {
			return Int(-operand.I), nil
		}
		return Real(-operand.R), nil
	case "+":
		if !isNumeric(operand) {
			return Value{}, errs.NewRuntimeValueError("unary '+' requires a numeric operand, got %s", operand.kindName())
		}
		return operand, nil
	default:
		return Value{}, errs.NewRuntimeValueError("unknown unary operator %q", e.Op)
	}
}

func evalBinary(e Binary, bindings Bindings) (Value, error) {
	// && and || short-circuit; evaluate right only as needed.
	switch e.Op {
	case "&&":
		left, err := Eval(e.Left, bindings)
		if err != nil {
			return Value{}, err
		}
		lb, err := left.AsBool()
		if err != nil {
			return Value{}, err
		}
		if !lb {
			return Bool(false), nil
		}
		right, err := Eval(e.Right, bindings)
		if err != nil {
			return Value{}, err
		}
		rb, err := right.AsBool()
		if err != nil {
			return Value{}, err
		}
		return Bool(rb), nil
	case "||":
		left, err := Eval(e.Left, bindings)
		if err != nil {
			return Value{}, err
		}
		lb, err := left.AsBool()
		if err != nil {
			return Value{}, err
		}
		if lb {
			return Bool(true), nil
		}
		right, err := Eval(e.Right, bindings)
		if err != nil {
			return Value{}, err
		}
		rb, err := right.AsBool()
		if err != nil {
			return Value{}, err
		}
		return Bool(rb), nil
	}

	left, err := Eval(e.Left, bindings)
	if err != nil {
		return Value{}, err
	}
	right, err := Eval(e.Right, bindings)
	if err != nil {
		return Value{}, err
	}

	switch e.Op {
	case "==":
		return Bool(valuesEqual(left, right)), nil
	case "!=":
		return Bool(!valuesEqual(left, right)), nil
	case "<", "<=", ">", ">=":
		return evalRelational(e.Op, left, right)
	case "+", "-", "*", "%":
		return evalArith(e.Op, left, right)
	case "/":
		lf, err := left.AsFloat()
		if err != nil {
			return Value{}, err
		}
		rf, err := right.AsFloat()
		if err != nil {
			return Value{}, err
		}
		if rf == 0 {
			return Value{}, errs.NewDomainError("division by zero")
		}
		return Real(lf / rf), nil
	case "^":
		lf, err := left.AsFloat()
		if err != nil {
			return Value{}, err
		}
		rf, err := right.AsFloat()
		if err != nil {
			return Value{}, err
		}
		return Real(math.Pow(lf, rf)), nil
	default:
		return Value{}, errs.NewRuntimeValueError("unknown binary operator %q", e.Op)
	}
}

func evalRelational(op string, left, right Value) (Value, error) {
	if left.Kind == KindString && right.Kind == KindString {
		var r bool
		switch op {
		case "<":
			r = left.S < right.S
		case "<=":
			r = left.S <= right.S
		case ">":
			r = left.S > right.S
		case ">=":
			r = left.S >= right.S
		}
		return Bool(r), nil
	}
	lf, err := left.AsFloat()
	if err != nil {
		return Value{}, err
	}
	rf, err := right.AsFloat()
	if err != nil {
		return Value{}, err
	}
	var r bool
	switch op {
	case "<":
		r = lf < rf
	case "<=":
		r = lf <= rf
	case ">":
		r = lf > rf
	case ">=":
		r = lf >= rf
	}
	return Bool(r), nil
}

func evalArith(op string, left, right Value) (Value, error) {
	if left.Kind == KindString || right.Kind == KindString {
		if op == "+" && left.Kind == KindString && right.Kind == KindString {
			return StringV(left.S + right.S), nil
		}
		return Value{}, errs.NewRuntimeValueError("operator %q not defined for string operands", op)
	}
	if left.Kind == KindInt && right.Kind == KindInt {
		switch op {
		case "+":
			return Int(left.I + right.I), nil
		case "-":
			return Int(left.I - right.I), nil
		case "*":
			return Int(left.I * right.I), nil
		case "%":
			if right.I == 0 {
				return Value{}, errs.NewDomainError("modulus by zero")
			}
			return Int(left.I % right.I), nil
		}
	}
	lf, err := left.AsFloat()
	if err != nil {
		return Value{}, err
	}
	rf, err := right.AsFloat()
	if err != nil {
		return Value{}, err
	}
	switch op {
	case "+":
		return Real(lf + rf), nil
	case "-":
		return Real(lf - rf), nil
	case "*":
		return Real(lf * rf), nil
	case "%":
		return Real(math.Mod(lf, rf)), nil
	default:
		return Value{}, errs.NewRuntimeValueError("unknown arithmetic operator %q", op)
	}
}

func valuesEqual(a, b Value) bool {
	if isNumeric(a) && isNumeric(b) {
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		return af == bf
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.B == b.B
	case KindString:
		return a.S == b.S
	default:
		return false
	}
}

func evalCall(e Call, bindings Bindings) (Value, error) {
	fn, ok := builtins[e.Func]
	if !ok {
		return Value{}, errs.NewRuntimeValueError("undefined function %q", e.Func)
	}
	args := make([]float64, len(e.Args))
	for i, a := range e.Args {
		v, err := Eval(a, bindings)
		if err != nil {
			return Value{}, err
		}
		f, err := v.AsFloat()
		if err != nil {
			return Value{}, err
		}
		args[i] = f
	}
	r, err := fn(args)
	if err != nil {
		return Value{}, err
	}
	return Real(r), nil
}
