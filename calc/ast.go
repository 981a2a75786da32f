package calc

// Expr is any node of a parsed Lello expression. Small, immutable value
// types throughout (design note §9: "prefer stack-allocated variants with
// value semantics").
type Expr interface {
	isExpr()
}

// Literal is a nil/bool/int/real/string constant.
type Literal struct {
	Value Value
}

func (Literal) isExpr() {}

// Ident is a bare identifier, resolved against Bindings at eval time. May
// be dotted (e.g. "place.sub") per spec.md §4.4's identifier grammar; the
// dotted form is passed through to Bindings verbatim.
type Ident struct {
	Name string
}

func (Ident) isExpr() {}

// Unary is a prefix operator applied to a single operand: "+", "-", "!".
type Unary struct {
	Op      string
	Operand Expr
}

func (Unary) isExpr() {}

// Binary is an infix operator applied to two operands.
type Binary struct {
	Op          string
	Left, Right Expr
}

func (Binary) isExpr() {}

// Call is a named function applied to an argument list, e.g. "min(a, b)".
type Call struct {
	Func string
	Args []Expr
}

func (Call) isExpr() {}
