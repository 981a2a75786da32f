package calc

import "github.com/pflow-xyz/stpn/errs"

// Assignment is one "place = expr" pair of a post-updater assignment list
// (spec.md §6). Assignments are evaluated against the pre-firing marking
// and applied simultaneously, never against each other's results.
type Assignment struct {
	Place string
	Expr  Expr
}

// AssignmentList is an ordered sequence of Assignments; order is preserved
// for diagnostics only, since evaluation-and-apply is simultaneous.
type AssignmentList []Assignment

// ParseAssignments parses a post-updater body: "place1 = expr1; place2 =
// expr2, place3 = expr3" — ';' and ',' are interchangeable separators.
func ParseAssignments(src string) (AssignmentList, error) {
	p, err := NewParser(src)
	if err != nil {
		return nil, err
	}
	var list AssignmentList
	for {
		if p.tok.Type == TokenEOF {
			break
		}
		if p.tok.Type != TokenIdent {
			return nil, &errs.ParseError{Pos: errs.Position{Row: p.tok.Row, Col: p.tok.Col}, Message: "expected place name in assignment"}
		}
		place := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Type != TokenAssign {
			return nil, &errs.ParseError{Pos: errs.Position{Row: p.tok.Row, Col: p.tok.Col}, Message: "expected '=' after place name " + place}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		list = append(list, Assignment{Place: place, Expr: expr})

		if p.tok.Type == TokenComma || p.tok.Type == TokenSemicolon {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.tok.Type == TokenEOF {
			break
		}
		return nil, &errs.ParseError{Pos: errs.Position{Row: p.tok.Row, Col: p.tok.Col}, Message: "expected ';' or ',' between assignments"}
	}
	return list, nil
}
