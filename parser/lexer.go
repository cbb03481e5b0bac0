// Package parser is the restricted-JavaScript front-end adapter. It accepts
// a function with exactly two array-destructured parameters and a statement
// subset (assert, declarations, assignments, if/else, one canonical for
// shape) and produces the canonical ast.ParsedCircuit. Everything outside
// the subset is rejected with a named rule, never skipped.
package parser

import (
	"fmt"
	"strings"
)

type tokenType int

const (
	tEOF tokenType = iota
	tIllegal

	tIdent
	tInt
	tString

	tLParen
	tRParen
	tLBrace
	tRBrace
	tLBracket
	tRBracket
	tComma
	tSemi
	tColon
	tDot
	tQuestion

	tAssign // =
	tArrow  // =>
	tEq     // ==
	tNeq    // !=
	tLt
	tGt
	tLte
	tGte
	tPlus
	tMinus
	tStar
	tSlash
	tPercent
	tBang
	tAndAnd
	tOrOr
	tInc // ++

	tLet
	tConst
	tFunction
	tIf
	tElse
	tFor
)

var keywords = map[string]tokenType{
	"let":      tLet,
	"const":    tConst,
	"function": tFunction,
	"if":       tIf,
	"else":     tElse,
	"for":      tFor,
}

// Position is a 1-based line/column pair into the original source.
type Position struct {
	Line int
	Col  int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

type token struct {
	typ    tokenType
	lexeme string
	pos    Position
}

type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) pos() Position { return Position{Line: l.line, Col: l.col} }

func (l *lexer) peekByte() byte {
	if l.off >= len(l.src) {
		return 0
	}
	return l.src[l.off]
}

func (l *lexer) peekByteAt(d int) byte {
	if l.off+d >= len(l.src) {
		return 0
	}
	return l.src[l.off+d]
}

func (l *lexer) advance() byte {
	c := l.src[l.off]
	l.off++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) skipSpaceAndComments() {
	for l.off < len(l.src) {
		c := l.peekByte()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekByteAt(1) == '/':
			for l.off < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		case c == '/' && l.peekByteAt(1) == '*':
			l.advance()
			l.advance()
			for l.off < len(l.src) && !(l.peekByte() == '*' && l.peekByteAt(1) == '/') {
				l.advance()
			}
			if l.off < len(l.src) {
				l.advance()
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// next returns the next token. Illegal input yields a tIllegal token whose
// lexeme is the offending text; the parser turns it into a diagnostic.
func (l *lexer) next() token {
	l.skipSpaceAndComments()
	pos := l.pos()
	if l.off >= len(l.src) {
		return token{typ: tEOF, pos: pos}
	}
	c := l.peekByte()

	switch {
	case isIdentStart(c):
		start := l.off
		for l.off < len(l.src) && isIdentPart(l.peekByte()) {
			l.advance()
		}
		word := l.src[start:l.off]
		if kw, ok := keywords[word]; ok {
			return token{typ: kw, lexeme: word, pos: pos}
		}
		return token{typ: tIdent, lexeme: word, pos: pos}

	case isDigit(c):
		start := l.off
		if c == '0' && (l.peekByteAt(1) == 'x' || l.peekByteAt(1) == 'X') {
			l.advance()
			l.advance()
			for l.off < len(l.src) && isHexDigit(l.peekByte()) {
				l.advance()
			}
		} else {
			for l.off < len(l.src) && isDigit(l.peekByte()) {
				l.advance()
			}
		}
		return token{typ: tInt, lexeme: l.src[start:l.off], pos: pos}

	case c == '"' || c == '\'':
		quote := l.advance()
		var sb strings.Builder
		for l.off < len(l.src) && l.peekByte() != quote {
			ch := l.advance()
			if ch == '\\' && l.off < len(l.src) {
				esc := l.advance()
				switch esc {
				case 'n':
					sb.WriteByte('\n')
				case 't':
					sb.WriteByte('\t')
				default:
					sb.WriteByte(esc)
				}
				continue
			}
			sb.WriteByte(ch)
		}
		if l.off >= len(l.src) {
			return token{typ: tIllegal, lexeme: "unterminated string", pos: pos}
		}
		l.advance() // closing quote
		return token{typ: tString, lexeme: sb.String(), pos: pos}
	}

	l.advance()
	two := string(c)
	if l.off < len(l.src) {
		two += string(l.peekByte())
	}
	switch two {
	case "=>":
		l.advance()
		return token{typ: tArrow, lexeme: "=>", pos: pos}
	case "==":
		l.advance()
		return token{typ: tEq, lexeme: "==", pos: pos}
	case "!=":
		l.advance()
		return token{typ: tNeq, lexeme: "!=", pos: pos}
	case "<=":
		l.advance()
		return token{typ: tLte, lexeme: "<=", pos: pos}
	case ">=":
		l.advance()
		return token{typ: tGte, lexeme: ">=", pos: pos}
	case "&&":
		l.advance()
		return token{typ: tAndAnd, lexeme: "&&", pos: pos}
	case "||":
		l.advance()
		return token{typ: tOrOr, lexeme: "||", pos: pos}
	case "++":
		l.advance()
		return token{typ: tInc, lexeme: "++", pos: pos}
	}

	switch c {
	case '(':
		return token{typ: tLParen, lexeme: "(", pos: pos}
	case ')':
		return token{typ: tRParen, lexeme: ")", pos: pos}
	case '{':
		return token{typ: tLBrace, lexeme: "{", pos: pos}
	case '}':
		return token{typ: tRBrace, lexeme: "}", pos: pos}
	case '[':
		return token{typ: tLBracket, lexeme: "[", pos: pos}
	case ']':
		return token{typ: tRBracket, lexeme: "]", pos: pos}
	case ',':
		return token{typ: tComma, lexeme: ",", pos: pos}
	case ';':
		return token{typ: tSemi, lexeme: ";", pos: pos}
	case ':':
		return token{typ: tColon, lexeme: ":", pos: pos}
	case '.':
		return token{typ: tDot, lexeme: ".", pos: pos}
	case '?':
		return token{typ: tQuestion, lexeme: "?", pos: pos}
	case '=':
		return token{typ: tAssign, lexeme: "=", pos: pos}
	case '<':
		return token{typ: tLt, lexeme: "<", pos: pos}
	case '>':
		return token{typ: tGt, lexeme: ">", pos: pos}
	case '+':
		return token{typ: tPlus, lexeme: "+", pos: pos}
	case '-':
		return token{typ: tMinus, lexeme: "-", pos: pos}
	case '*':
		return token{typ: tStar, lexeme: "*", pos: pos}
	case '/':
		return token{typ: tSlash, lexeme: "/", pos: pos}
	case '%':
		return token{typ: tPercent, lexeme: "%", pos: pos}
	case '!':
		return token{typ: tBang, lexeme: "!", pos: pos}
	}
	return token{typ: tIllegal, lexeme: string(c), pos: pos}
}

// lexAll tokenizes the whole input up front; circuit sources are small.
func lexAll(src string) []token {
	l := newLexer(src)
	var toks []token
	for {
		t := l.next()
		toks = append(toks, t)
		if t.typ == tEOF {
			return toks
		}
	}
}
