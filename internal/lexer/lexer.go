package lexer

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode"
)

type TokenType int

// Token types
const (
	LEX_EOF TokenType = iota
	LEX_NUMBER
	LEX_KEYWORD
	LEX_PUNCTUATION
)

func (t TokenType) String() string {
	switch t {
	case LEX_EOF:
		return "EOF"
	case LEX_NUMBER:
		return "NUMBER"
	case LEX_KEYWORD:
		return "KEYWORD"
	case LEX_PUNCTUATION:
		return "PUNCTUATION"
	default:
		return "UNKNOWN"
	}
}

var keywords = map[string]bool{
	"return": true,
}

// Punctuation that is always a single character.
var singleCharTokens = map[rune]bool{
	'(': true,
	')': true,
	';': true,
	'+': true,
	'-': true,
	'*': true,
	'/': true,
}

type Location struct {
	Filename string
	Line     int
	Col      int
}

func (l Location) String() string {
	if l.Filename == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}
	return fmt.Sprintf("%s:%d:%d", l.Filename, l.Line, l.Col)
}

type Lexeme struct {
	Type TokenType
	Str  string
	Val  int64 // only set for LEX_NUMBER
	Loc  Location
}

func (l Lexeme) String() string {
	if l.Str == "" {
		return fmt.Sprintf("<%s>", l.Type)
	}
	return fmt.Sprintf("<%s %q>", l.Type, l.Str)
}

func (l Lexeme) IsKeyword(kv string) bool {
	return l.Type == LEX_KEYWORD && l.Str == kv
}

func (l Lexeme) IsPunctuation(pv string) bool {
	return l.Type == LEX_PUNCTUATION && l.Str == pv
}

// Error is a lexical error at a specific position in the input.
type Error struct {
	Loc Location
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Msg)
}

type Lexer struct {
	input     *bufio.Reader
	filename  string
	line      int
	col       int
	prevCol   int
	lastRune  rune
	lastSize  int
	hasUnread bool
}

func New(inputReader io.Reader, filename string) *Lexer {
	return &Lexer{
		input:    bufio.NewReader(inputReader),
		filename: filename,
		line:     1,
		col:      1,
		prevCol:  1,
	}
}

// Tokenize reads the whole input. The returned slice always ends with a single LEX_EOF lexeme.
func Tokenize(inputReader io.Reader, filename string) ([]Lexeme, error) {
	l := New(inputReader, filename)
	var lexemes []Lexeme
	for {
		lex, err := l.Next()
		if err != nil {
			return nil, err
		}
		lexemes = append(lexemes, lex)
		if lex.Type == LEX_EOF {
			return lexemes, nil
		}
	}
}

func (l *Lexer) loc(line, col int) Location {
	return Location{Filename: l.filename, Line: line, Col: col}
}

// readRune reads the next rune from the input
func (l *Lexer) readRune() (rune, int, error) {
	var r rune
	var size int
	var err error

	if l.hasUnread {
		l.hasUnread = false
		r, size, err = l.lastRune, l.lastSize, nil
	} else {
		l.prevCol = l.col
		r, size, err = l.input.ReadRune()
	}

	if err != nil {
		return 0, 0, err
	}

	l.lastRune = r
	l.lastSize = size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r, size, nil
}

// unreadRune puts back the last read rune.
// Should be called at most once per readRune.
func (l *Lexer) unreadRune() {
	l.hasUnread = true
	if l.lastRune == '\n' {
		l.line--
	}
	l.col = l.prevCol
}

// skipSpace skips whitespace characters
func (l *Lexer) skipSpace() error {
	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !unicode.IsSpace(r) {
			l.unreadRune()
			return nil
		}
	}
}

// skipComment skips a C++ style comment (from // to end of line)
func (l *Lexer) skipComment() error {
	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if r == '\n' {
			return nil
		}
	}
}

// Next returns the next lexeme from the input
func (l *Lexer) Next() (Lexeme, error) {
	if err := l.skipSpace(); err != nil {
		return Lexeme{Type: LEX_EOF}, err
	}
	startLine := l.line
	startCol := l.col

	r, _, err := l.readRune()
	if err != nil {
		if err == io.EOF {
			return Lexeme{Type: LEX_EOF, Loc: l.loc(startLine, startCol)}, nil
		}
		return Lexeme{Type: LEX_EOF}, err
	}

	switch {
	case unicode.IsLetter(r) || r == '_':
		l.unreadRune()
		return l.lexWord(startLine, startCol)
	case isDigit(r):
		l.unreadRune()
		return l.lexNumber(startLine, startCol)
	case r == '/':
		nextR, _, err := l.readRune()
		if err != nil && err != io.EOF {
			return Lexeme{Type: LEX_EOF}, err
		}
		if err == nil && nextR == '/' {
			if err := l.skipComment(); err != nil {
				return Lexeme{Type: LEX_EOF}, err
			}
			return l.Next()
		}
		if err == nil {
			l.unreadRune()
		}
		return l.punct("/", startLine, startCol), nil
	case r == '=' || r == '!':
		// Only "==" and "!=" exist; a lone '=' or '!' is an error.
		ok, err := l.followedBy('=')
		if err != nil {
			return Lexeme{Type: LEX_EOF}, err
		}
		if !ok {
			return Lexeme{}, &Error{Loc: l.loc(startLine, startCol), Msg: fmt.Sprintf("unexpected character %q", r)}
		}
		return l.punct(string(r)+"=", startLine, startCol), nil
	case r == '<' || r == '>':
		ok, err := l.followedBy('=')
		if err != nil {
			return Lexeme{Type: LEX_EOF}, err
		}
		if ok {
			return l.punct(string(r)+"=", startLine, startCol), nil
		}
		return l.punct(string(r), startLine, startCol), nil
	default:
		if singleCharTokens[r] {
			return l.punct(string(r), startLine, startCol), nil
		}
		return Lexeme{}, &Error{Loc: l.loc(startLine, startCol), Msg: fmt.Sprintf("unexpected character %q", r)}
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// followedBy consumes the next rune if it equals want.
func (l *Lexer) followedBy(want rune) (bool, error) {
	r, _, err := l.readRune()
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	if r != want {
		l.unreadRune()
		return false, nil
	}
	return true, nil
}

func (l *Lexer) punct(s string, startLine, startCol int) Lexeme {
	return Lexeme{
		Type: LEX_PUNCTUATION,
		Str:  s,
		Loc:  l.loc(startLine, startCol),
	}
}

// lexWord reads a keyword. The language has no identifiers.
func (l *Lexer) lexWord(startLine, startCol int) (Lexeme, error) {
	var word string

	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return Lexeme{}, err
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			l.unreadRune()
			break
		}

		word += string(r)
	}

	if !keywords[word] {
		return Lexeme{}, &Error{Loc: l.loc(startLine, startCol), Msg: fmt.Sprintf("unexpected identifier %q", word)}
	}

	return Lexeme{
		Type: LEX_KEYWORD,
		Str:  word,
		Loc:  l.loc(startLine, startCol),
	}, nil
}

// lexNumber reads a decimal number literal. The value must fit a signed 32-bit immediate.
func (l *Lexer) lexNumber(startLine, startCol int) (Lexeme, error) {
	var num string

	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return Lexeme{}, err
		}
		if !isDigit(r) {
			l.unreadRune()
			break
		}
		num += string(r)
	}

	val, err := strconv.ParseInt(num, 10, 64)
	if err != nil || val > math.MaxInt32 {
		return Lexeme{}, &Error{Loc: l.loc(startLine, startCol), Msg: fmt.Sprintf("number literal %s is out of range", num)}
	}

	return Lexeme{
		Type: LEX_NUMBER,
		Str:  num,
		Val:  val,
		Loc:  l.loc(startLine, startCol),
	}, nil
}
