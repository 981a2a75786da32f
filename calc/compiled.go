package calc

// Compiled is a pre-parsed Lello expression, kept around for repeated
// evaluation against different Bindings (enabling predicates and rate
// expressions are re-evaluated on every succession).
type Compiled struct {
	src  string
	expr Expr
}

// Compile lexes and parses src once, returning a reusable Compiled.
func Compile(src string) (*Compiled, error) {
	expr, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return &Compiled{src: src, expr: expr}, nil
}

// String returns the original source text.
func (c *Compiled) String() string { return c.src }

// Expr exposes the parsed AST, e.g. for structural equality checks.
func (c *Compiled) Expr() Expr { return c.expr }

// Eval evaluates the compiled expression against bindings.
func (c *Compiled) Eval(bindings Bindings) (Value, error) {
	return Eval(c.expr, bindings)
}
