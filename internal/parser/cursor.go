package parser

import "github.com/iley/stackc/internal/lexer"

// Cursor is a forward-only position in a lexeme sequence.
type Cursor struct {
	lexemes []lexer.Lexeme
	pos     int
}

// NewCursor makes a cursor over lexemes. If the sequence does not end with
// LEX_EOF, one is appended.
func NewCursor(lexemes []lexer.Lexeme) *Cursor {
	if len(lexemes) == 0 || lexemes[len(lexemes)-1].Type != lexer.LEX_EOF {
		var loc lexer.Location
		if len(lexemes) > 0 {
			loc = lexemes[len(lexemes)-1].Loc
		}
		lexemes = append(lexemes, lexer.Lexeme{Type: lexer.LEX_EOF, Loc: loc})
	}
	return &Cursor{lexemes: lexemes}
}

func (c *Cursor) Peek() lexer.Lexeme {
	return c.lexemes[c.pos]
}

// Advance moves to the next lexeme. It never moves past the final LEX_EOF.
func (c *Cursor) Advance() {
	if c.pos < len(c.lexemes)-1 {
		c.pos++
	}
}

func (c *Cursor) AtEnd() bool {
	return c.Peek().Type == lexer.LEX_EOF
}
