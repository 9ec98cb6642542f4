package parser

import (
	"fmt"
	"io"

	"github.com/iley/stackc/internal/ast"
	"github.com/iley/stackc/internal/lexer"
)

// SyntaxError is reported for the first lexeme that does not fit the grammar.
// Parsing stops there; no partial program is returned.
type SyntaxError struct {
	Loc      lexer.Location
	Expected string
	Got      lexer.Lexeme
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Loc, e.Expected, e.Got)
}

/*
Grammar:

	program    = statement*
	statement  = "return" expr ";" | expr ";"
	expr       = equality
	equality   = relational ("==" relational | "!=" relational)*
	relational = additive ("<" additive | "<=" additive | ">" additive | ">=" additive)*
	additive   = term ("+" term | "-" term)*
	term       = unary ("*" unary | "/" unary)*
	unary      = ("+" | "-") unary | primary
	primary    = number | "(" expr ")"
*/
type Parser struct {
	cur *Cursor
}

func New(lexemes []lexer.Lexeme) *Parser {
	return &Parser{cur: NewCursor(lexemes)}
}

// Parse tokenizes the input and parses it as a program.
func Parse(input io.Reader, filename string) (*ast.Program, error) {
	lexemes, err := lexer.Tokenize(input, filename)
	if err != nil {
		return nil, err
	}
	return New(lexemes).ParseProgram()
}

// consume advances past the current lexeme if it is the keyword or punctuation op.
func (p *Parser) consume(op string) bool {
	lex := p.cur.Peek()
	if lex.Type != lexer.LEX_KEYWORD && lex.Type != lexer.LEX_PUNCTUATION {
		return false
	}
	if lex.Str != op {
		return false
	}
	p.cur.Advance()
	return true
}

func (p *Parser) expect(op string) error {
	if !p.consume(op) {
		return p.errorf(fmt.Sprintf("'%s'", op))
	}
	return nil
}

func (p *Parser) expectNumber() (int64, error) {
	lex := p.cur.Peek()
	if lex.Type != lexer.LEX_NUMBER {
		return 0, p.errorf("number")
	}
	p.cur.Advance()
	return lex.Val, nil
}

func (p *Parser) atEnd() bool {
	return p.cur.AtEnd()
}

func (p *Parser) errorf(expected string) error {
	lex := p.cur.Peek()
	return &SyntaxError{Loc: lex.Loc, Expected: expected, Got: lex}
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{Statements: []*ast.Node{}}
	for !p.atEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program, nil
}

func (p *Parser) parseStatement() (*ast.Node, error) {
	loc := p.cur.Peek().Loc

	kind := ast.NODE_EXPR_STMT
	if p.consume("return") {
		kind = ast.NODE_RETURN
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return ast.NewUnary(loc, kind, expr), nil
}

func (p *Parser) parseExpression() (*ast.Node, error) {
	return p.parseEquality()
}

func (p *Parser) parseEquality() (*ast.Node, error) {
	node, err := p.parseRelational()
	if err != nil {
		return nil, err
	}

	for {
		loc := p.cur.Peek().Loc
		var kind ast.NodeKind
		if p.consume("==") {
			kind = ast.NODE_EQ
		} else if p.consume("!=") {
			kind = ast.NODE_NE
		} else {
			return node, nil
		}

		rhs, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		node = ast.NewBinary(loc, kind, node, rhs)
	}
}

func (p *Parser) parseRelational() (*ast.Node, error) {
	node, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for {
		loc := p.cur.Peek().Loc
		var kind ast.NodeKind
		// "a > b" is parsed as "b < a" and "a >= b" as "b <= a".
		swap := false
		if p.consume("<") {
			kind = ast.NODE_LT
		} else if p.consume("<=") {
			kind = ast.NODE_LE
		} else if p.consume(">") {
			kind, swap = ast.NODE_LT, true
		} else if p.consume(">=") {
			kind, swap = ast.NODE_LE, true
		} else {
			return node, nil
		}

		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if swap {
			node = ast.NewBinary(loc, kind, rhs, node)
		} else {
			node = ast.NewBinary(loc, kind, node, rhs)
		}
	}
}

func (p *Parser) parseAdditive() (*ast.Node, error) {
	node, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		loc := p.cur.Peek().Loc
		var kind ast.NodeKind
		if p.consume("+") {
			kind = ast.NODE_ADD
		} else if p.consume("-") {
			kind = ast.NODE_SUB
		} else {
			return node, nil
		}

		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		node = ast.NewBinary(loc, kind, node, rhs)
	}
}

func (p *Parser) parseTerm() (*ast.Node, error) {
	node, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		loc := p.cur.Peek().Loc
		var kind ast.NodeKind
		if p.consume("*") {
			kind = ast.NODE_MUL
		} else if p.consume("/") {
			kind = ast.NODE_DIV
		} else {
			return node, nil
		}

		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		node = ast.NewBinary(loc, kind, node, rhs)
	}
}

func (p *Parser) parseUnary() (*ast.Node, error) {
	loc := p.cur.Peek().Loc
	if p.consume("+") {
		return p.parseUnary()
	}
	if p.consume("-") {
		// Negation is "0 - x"; there is no negate node.
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(loc, ast.NODE_SUB, ast.NewNum(loc, 0), operand), nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (*ast.Node, error) {
	if p.consume("(") {
		node, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return node, nil
	}

	loc := p.cur.Peek().Loc
	val, err := p.expectNumber()
	if err != nil {
		return nil, err
	}
	return ast.NewNum(loc, val), nil
}
