package calc

import (
	"strconv"

	"github.com/pflow-xyz/stpn/errs"
)

// Parser is a recursive-descent parser over Lello's precedence chain
// (spec.md §4.4, low to high): || < && < prefix ! < relational < additive
// < multiplicative/modulus < prefix +/- < power ^ < atom.
type Parser struct {
	lex  *Lexer
	tok  Token
	peek Token
	err  error
}

// NewParser creates a parser over src.
func NewParser(src string) (*Parser, error) {
	p := &Parser{lex: NewLexer(src)}
	var err error
	p.tok, err = p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	p.peek, err = p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.tok = p.peek
	next, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.peek = next
	return nil
}

func (p *Parser) expect(t TokenType, what string) error {
	if p.tok.Type != t {
		return &errs.ParseError{Pos: errs.Position{Row: p.tok.Row, Col: p.tok.Col}, Message: "expected " + what}
	}
	return p.advance()
}

// Parse parses src as a single Lello expression and returns its AST.
func Parse(src string) (Expr, error) {
	p, err := NewParser(src)
	if err != nil {
		return nil, err
	}
	expr, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenEOF {
		return nil, &errs.ParseError{Pos: errs.Position{Row: p.tok.Row, Col: p.tok.Col}, Message: "unexpected trailing input " + p.tok.Text}
	}
	return expr, nil
}

// ParseExpr parses one expression starting at the parser's current token.
func (p *Parser) ParseExpr() (Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: "||", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: "&&", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.tok.Type == TokenNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Unary{Op: "!", Operand: operand}, nil
	}
	return p.parseRelational()
}

var relOps = map[TokenType]string{
	TokenLt: "<", TokenLe: "<=", TokenGt: ">", TokenGe: ">=", TokenEq: "==", TokenNe: "!=",
}

func (p *Parser) parseRelational() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := relOps[p.tok.Type]
		if !ok {
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenPlus || p.tok.Type == TokenMinus {
		op := "+"
		if p.tok.Type == TokenMinus {
			op = "-"
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnaryPM()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenStar || p.tok.Type == TokenSlash || p.tok.Type == TokenPercent {
		var op string
		switch p.tok.Type {
		case TokenStar:
			op = "*"
		case TokenSlash:
			op = "/"
		default:
			op = "%"
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnaryPM()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnaryPM() (Expr, error) {
	if p.tok.Type == TokenPlus || p.tok.Type == TokenMinus {
		op := "+"
		if p.tok.Type == TokenMinus {
			op = "-"
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnaryPM()
		if err != nil {
			return nil, err
		}
		return Unary{Op: op, Operand: operand}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.tok.Type == TokenCaret {
		if err := p.advance(); err != nil {
			return nil, err
		}
		exponent, err := p.parseUnaryPM()
		if err != nil {
			return nil, err
		}
		return Binary{Op: "^", Left: base, Right: exponent}, nil
	}
	return base, nil
}

func (p *Parser) parseAtom() (Expr, error) {
	tok := p.tok
	switch tok.Type {
	case TokenInt:
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, &errs.ParseError{Pos: errs.Position{Row: tok.Row, Col: tok.Col}, Message: "invalid integer literal " + tok.Text}
		}
		return Literal{Value: Int(n)}, nil
	case TokenReal:
		if err := p.advance(); err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, &errs.ParseError{Pos: errs.Position{Row: tok.Row, Col: tok.Col}, Message: "invalid real literal " + tok.Text}
		}
		return Literal{Value: Real(f)}, nil
	case TokenString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Literal{Value: StringV(tok.Text)}, nil
	case TokenTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Literal{Value: Bool(true)}, nil
	case TokenFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Literal{Value: Bool(false)}, nil
	case TokenNil:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Literal{Value: Nil()}, nil
	case TokenIdent:
		name := tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Type == TokenLParen {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return Call{Func: name, Args: args}, nil
		}
		return Ident{Name: name}, nil
	case TokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, &errs.ParseError{Pos: errs.Position{Row: tok.Row, Col: tok.Col}, Message: "unexpected token " + tok.Text}
	}
}

func (p *Parser) parseArgs() ([]Expr, error) {
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	var args []Expr
	if p.tok.Type == TokenRParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return args, nil
	}
	for {
		arg, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.tok.Type == TokenComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expect(TokenRParen, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}
