package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iley/stackc/internal/ast"
	"github.com/iley/stackc/internal/lexer"
)

func parseString(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, err := Parse(strings.NewReader(src), "test.sc")
	require.NoError(t, err)
	return program
}

func TestParseProgram(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected string
	}{
		{
			name:     "empty program",
			src:      ``,
			expected: `(program)`,
		},
		{
			name:     "single number",
			src:      `42;`,
			expected: `(program (expr 42))`,
		},
		{
			name:     "return statement",
			src:      `return 3;`,
			expected: `(program (return 3))`,
		},
		{
			name:     "statement sequence",
			src:      `1; 2; return 3;`,
			expected: `(program (expr 1) (expr 2) (return 3))`,
		},
		{
			name:     "precedence of multiplication",
			src:      `1 + 2 * 3;`,
			expected: `(program (expr (+ 1 (* 2 3))))`,
		},
		{
			name:     "parentheses",
			src:      `(1 + 2) * 3;`,
			expected: `(program (expr (* (+ 1 2) 3)))`,
		},
		{
			name:     "subtraction is left-associative",
			src:      `10 - 4 - 3;`,
			expected: `(program (expr (- (- 10 4) 3)))`,
		},
		{
			name:     "division is left-associative",
			src:      `100 / 10 / 5;`,
			expected: `(program (expr (/ (/ 100 10) 5)))`,
		},
		{
			name:     "mixed multiplicative",
			src:      `8 / 2 * 3;`,
			expected: `(program (expr (* (/ 8 2) 3)))`,
		},
		{
			name:     "unary minus",
			src:      `-5 + 8;`,
			expected: `(program (expr (+ (- 0 5) 8)))`,
		},
		{
			name:     "unary plus is dropped",
			src:      `+5;`,
			expected: `(program (expr 5))`,
		},
		{
			name:     "nested unary operators",
			src:      `- -3;`,
			expected: `(program (expr (- 0 (- 0 3))))`,
		},
		{
			name:     "unary binds tighter than multiplication",
			src:      `-2 * 3;`,
			expected: `(program (expr (* (- 0 2) 3)))`,
		},
		{
			name:     "less than",
			src:      `2 < 3;`,
			expected: `(program (expr (< 2 3)))`,
		},
		{
			name:     "greater than swaps operands",
			src:      `3 > 2;`,
			expected: `(program (expr (< 2 3)))`,
		},
		{
			name:     "less or equal",
			src:      `3 <= 3;`,
			expected: `(program (expr (<= 3 3)))`,
		},
		{
			name:     "greater or equal swaps operands",
			src:      `4 >= 2;`,
			expected: `(program (expr (<= 2 4)))`,
		},
		{
			name:     "chained relational operators",
			src:      `1 < 2 > 0;`,
			expected: `(program (expr (< 0 (< 1 2))))`,
		},
		{
			name:     "equality binds weaker than relational",
			src:      `1 < 2 == 3 >= 4;`,
			expected: `(program (expr (== (< 1 2) (<= 4 3))))`,
		},
		{
			name:     "not equal",
			src:      `1 != 2 == 0;`,
			expected: `(program (expr (== (!= 1 2) 0)))`,
		},
		{
			name:     "relational binds weaker than additive",
			src:      `1 + 1 < 3 - 0;`,
			expected: `(program (expr (< (+ 1 1) (- 3 0))))`,
		},
		{
			name:     "deeply nested parentheses",
			src:      `((((7))));`,
			expected: `(program (expr 7))`,
		},
		{
			name:     "return with complex expression",
			src:      "1;\nreturn (1 + 2) * -3 == -9;",
			expected: `(program (expr 1) (return (== (* (+ 1 2) (- 0 3)) (- 0 9))))`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			program := parseString(t, tc.src)
			assert.Equal(t, tc.expected, program.String())
		})
	}
}

func TestParseLocations(t *testing.T) {
	program := parseString(t, "1;\n  return 2 - 3;")
	require.Len(t, program.Statements, 2)

	ret := program.Statements[1]
	assert.Equal(t, ast.NODE_RETURN, ret.Kind)
	assert.Equal(t, lexer.Location{Filename: "test.sc", Line: 2, Col: 3}, ret.Loc)
	assert.Equal(t, lexer.Location{Filename: "test.sc", Line: 2, Col: 12}, ret.Left.Loc)
	assert.Equal(t, lexer.Location{Filename: "test.sc", Line: 2, Col: 10}, ret.Left.Left.Loc)
	assert.Nil(t, ret.Right)
}

func TestParseNodeShapes(t *testing.T) {
	program := parseString(t, "return 1 + 2;")
	ret := program.Statements[0]
	require.Equal(t, ast.NODE_RETURN, ret.Kind)
	require.NotNil(t, ret.Left)
	assert.Nil(t, ret.Right)

	add := ret.Left
	assert.Equal(t, ast.NODE_ADD, add.Kind)
	assert.Equal(t, ast.NODE_NUM, add.Left.Kind)
	assert.Equal(t, int64(1), add.Left.Val)
	assert.Nil(t, add.Left.Left)
	assert.Nil(t, add.Left.Right)
	assert.Equal(t, int64(2), add.Right.Val)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		loc      lexer.Location
		expected string
		message  string
	}{
		{
			name:     "missing operand",
			src:      `1 +;`,
			loc:      lexer.Location{Filename: "test.sc", Line: 1, Col: 4},
			expected: "number",
			message:  `test.sc:1:4: expected number, got <PUNCTUATION ";">`,
		},
		{
			name:     "missing semicolon after return",
			src:      `return 1`,
			loc:      lexer.Location{Filename: "test.sc", Line: 1, Col: 9},
			expected: "';'",
			message:  `test.sc:1:9: expected ';', got <EOF>`,
		},
		{
			name:     "missing closing parenthesis",
			src:      `(1 + 2;`,
			loc:      lexer.Location{Filename: "test.sc", Line: 1, Col: 7},
			expected: "')'",
			message:  `test.sc:1:7: expected ')', got <PUNCTUATION ";">`,
		},
		{
			name:     "missing semicolon between statements",
			src:      `1 2;`,
			loc:      lexer.Location{Filename: "test.sc", Line: 1, Col: 3},
			expected: "';'",
		},
		{
			name:     "return without expression",
			src:      `return;`,
			loc:      lexer.Location{Filename: "test.sc", Line: 1, Col: 7},
			expected: "number",
		},
		{
			name:     "empty statement",
			src:      `;`,
			loc:      lexer.Location{Filename: "test.sc", Line: 1, Col: 1},
			expected: "number",
		},
		{
			name:     "return used as operand",
			src:      `1 + return;`,
			loc:      lexer.Location{Filename: "test.sc", Line: 1, Col: 5},
			expected: "number",
		},
		{
			name:     "error after valid statements",
			src:      "1;\n2;\n3 *",
			loc:      lexer.Location{Filename: "test.sc", Line: 3, Col: 4},
			expected: "number",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			program, err := Parse(strings.NewReader(tc.src), "test.sc")
			require.Error(t, err)
			assert.Nil(t, program)

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tc.loc, syntaxErr.Loc)
			assert.Equal(t, tc.expected, syntaxErr.Expected)
			if tc.message != "" {
				assert.Equal(t, tc.message, err.Error())
			}
		})
	}
}

func TestParsePropagatesLexerErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("1 + x;"), "test.sc")
	var lexErr *lexer.Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, 5, lexErr.Loc.Col)
}

func TestCursor(t *testing.T) {
	c := NewCursor([]lexer.Lexeme{
		{Type: lexer.LEX_NUMBER, Str: "1", Val: 1},
	})
	assert.False(t, c.AtEnd())
	assert.Equal(t, "1", c.Peek().Str)

	c.Advance()
	assert.True(t, c.AtEnd())

	// Advancing at the end stays on EOF.
	c.Advance()
	assert.True(t, c.AtEnd())
	assert.Equal(t, lexer.LEX_EOF, c.Peek().Type)

	assert.True(t, NewCursor(nil).AtEnd())
}

func TestConsumeLeavesCursorOnMismatch(t *testing.T) {
	lexemes, err := lexer.Tokenize(strings.NewReader("1;"), "")
	require.NoError(t, err)

	p := New(lexemes)
	assert.False(t, p.consume(";"))
	assert.Equal(t, "1", p.cur.Peek().Str)
	assert.False(t, p.consume("1"), "numbers are not matched as literals")

	val, err := p.expectNumber()
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)
	assert.True(t, p.consume(";"))
	assert.True(t, p.atEnd())
}

func TestPrintedProgramParsesBack(t *testing.T) {
	sources := []string{
		`1; 2; return 3;`,
		`-5 + 8 * (2 - 7) / 3;`,
		`1 < 2 == 3 >= 4 != 5 > 6;`,
		`return - - + 4 <= 10 - 3 - 2;`,
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			original := parseString(t, src)

			var sb strings.Builder
			ast.NewPrinter(&sb).PrintProgram(original)

			reparsed := parseString(t, sb.String())
			assert.Equal(t, original.String(), reparsed.String())
		})
	}
}
