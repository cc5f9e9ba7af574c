package query

import (
	"strings"
	"unicode"
)

type TokenType int

const (
	TokenIllegal TokenType = iota
	TokenEOF
	TokenIdentifier       // title, metacard-tags
	TokenQuotedIdentifier // "anyText"
	TokenString           // 'golden'
	TokenNumber
	TokenBoolean
	TokenTimestamp // 2020-01-01T00:00:00Z
	TokenPeriod    // 2020-01-01T00:00:00Z/2020-02-01T00:00:00Z
	TokenGeometry  // POLYGON((...))
	TokenRelative  // RELATIVE(P1D)
	TokenParameter // :name
	TokenLeftParen
	TokenRightParen
	TokenComma
	TokenEqual        // '='
	TokenNotEqual     // '!=' or '<>'
	TokenGreater      // '>'
	TokenGreaterEqual // '>='
	TokenLess         // '<'
	TokenLessEqual    // '<='
	TokenAnd
	TokenOr
	TokenNot
	TokenLike
	TokenILike
	TokenAfter
	TokenBefore
	TokenDuring
	TokenIntersects
	TokenDWithin
	TokenInclude
	TokenExclude
)

var tokenNames = map[TokenType]string{
	TokenIllegal:          "ILLEGAL",
	TokenEOF:              "EOF",
	TokenIdentifier:       "IDENTIFIER",
	TokenQuotedIdentifier: "QUOTED_IDENTIFIER",
	TokenString:           "STRING",
	TokenNumber:           "NUMBER",
	TokenBoolean:          "BOOLEAN",
	TokenTimestamp:        "TIMESTAMP",
	TokenPeriod:           "PERIOD",
	TokenGeometry:         "GEOMETRY",
	TokenRelative:         "RELATIVE",
	TokenParameter:        "PARAMETER",
	TokenLeftParen:        "(",
	TokenRightParen:       ")",
	TokenComma:            ",",
	TokenEqual:            "=",
	TokenNotEqual:         "!=",
	TokenGreater:          ">",
	TokenGreaterEqual:     ">=",
	TokenLess:             "<",
	TokenLessEqual:        "<=",
	TokenAnd:              "AND",
	TokenOr:               "OR",
	TokenNot:              "NOT",
	TokenLike:             "LIKE",
	TokenILike:            "ILIKE",
	TokenAfter:            "AFTER",
	TokenBefore:           "BEFORE",
	TokenDuring:           "DURING",
	TokenIntersects:       "INTERSECTS",
	TokenDWithin:          "DWITHIN",
	TokenInclude:          "INCLUDE",
	TokenExclude:          "EXCLUDE",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

var keywords = map[string]TokenType{
	"AND":        TokenAnd,
	"OR":         TokenOr,
	"NOT":        TokenNot,
	"LIKE":       TokenLike,
	"ILIKE":      TokenILike,
	"AFTER":      TokenAfter,
	"BEFORE":     TokenBefore,
	"DURING":     TokenDuring,
	"INTERSECTS": TokenIntersects,
	"DWITHIN":    TokenDWithin,
	"INCLUDE":    TokenInclude,
	"EXCLUDE":    TokenExclude,
	"TRUE":       TokenBoolean,
	"FALSE":      TokenBoolean,
}

// Keywords that start a WKT literal. The whole literal, up to its closing
// parenthesis, becomes one TokenGeometry.
var geometryKeywords = map[string]bool{
	"POINT":              true,
	"LINESTRING":         true,
	"POLYGON":            true,
	"MULTIPOINT":         true,
	"MULTILINESTRING":    true,
	"MULTIPOLYGON":       true,
	"GEOMETRYCOLLECTION": true,
}

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	line         int
	column       int
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Line: l.line, Column: l.column}
	single := func(t TokenType) Token {
		tok.Type = t
		tok.Literal = string(l.ch)
		l.readChar()
		return tok
	}
	double := func(t TokenType) Token {
		tok.Type = t
		tok.Literal = l.input[l.position : l.position+2]
		l.readChar()
		l.readChar()
		return tok
	}

	switch l.ch {
	case 0:
		tok.Type = TokenEOF
		return tok
	case '(':
		return single(TokenLeftParen)
	case ')':
		return single(TokenRightParen)
	case ',':
		return single(TokenComma)
	case '=':
		return single(TokenEqual)
	case '!':
		if l.peekChar() == '=' {
			return double(TokenNotEqual)
		}
		return single(TokenIllegal)
	case '>':
		if l.peekChar() == '=' {
			return double(TokenGreaterEqual)
		}
		return single(TokenGreater)
	case '<':
		switch l.peekChar() {
		case '=':
			return double(TokenLessEqual)
		case '>':
			return double(TokenNotEqual)
		}
		return single(TokenLess)
	case '\'':
		s, ok := l.readString()
		tok.Literal = s
		tok.Type = TokenString
		if !ok {
			tok.Type = TokenIllegal
		}
		return tok
	case '"':
		s, ok := l.readQuotedIdentifier()
		tok.Literal = s
		tok.Type = TokenQuotedIdentifier
		if !ok {
			tok.Type = TokenIllegal
		}
		return tok
	case ':':
		l.readChar()
		if !isIdentifierStart(l.ch) {
			tok.Type = TokenIllegal
			tok.Literal = ":"
			return tok
		}
		tok.Type = TokenParameter
		tok.Literal = l.readIdentifier()
		return tok
	case '-', '+':
		if !isDigit(l.peekChar()) {
			return single(TokenIllegal)
		}
		tok.Literal = l.readWord()
		tok.Type = classifyWord(tok.Literal)
		return tok
	}

	if isDigit(l.ch) {
		tok.Literal = l.readWord()
		tok.Type = classifyWord(tok.Literal)
		return tok
	}

	if isIdentifierStart(l.ch) {
		start := l.position
		ident := l.readIdentifier()
		upper := strings.ToUpper(ident)
		if (geometryKeywords[upper] || upper == "RELATIVE") && l.nextNonSpace() == '(' {
			if !l.readBalanced() {
				tok.Type = TokenIllegal
				tok.Literal = l.input[start:l.position]
				return tok
			}
			tok.Literal = l.input[start:l.position]
			tok.Type = TokenGeometry
			if upper == "RELATIVE" {
				tok.Type = TokenRelative
			}
			return tok
		}
		if geometryKeywords[upper] && l.restStartsWithFold("EMPTY") {
			l.skipWhitespace()
			l.readIdentifier()
			tok.Literal = l.input[start:l.position]
			tok.Type = TokenGeometry
			return tok
		}
		tok.Literal = ident
		tok.Type = lookupIdentifier(ident)
		return tok
	}

	return single(TokenIllegal)
}

func lookupIdentifier(ident string) TokenType {
	if t, ok := keywords[strings.ToUpper(ident)]; ok {
		return t
	}
	return TokenIdentifier
}

// classifyWord decides what a run of number-like characters is.
func classifyWord(word string) TokenType {
	if strings.Contains(word, "/") {
		return TokenPeriod
	}
	if isNumberLiteral(word) {
		return TokenNumber
	}
	return TokenTimestamp
}

func isNumberLiteral(word string) bool {
	seenDigit := false
	for i := 0; i < len(word); i++ {
		ch := word[i]
		switch {
		case isDigit(ch):
			seenDigit = true
		case ch == '.':
		case (ch == '-' || ch == '+') && (i == 0 || word[i-1] == 'e' || word[i-1] == 'E'):
		case (ch == 'e' || ch == 'E') && seenDigit && i < len(word)-1:
		default:
			return false
		}
	}
	return seenDigit
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// nextNonSpace returns the next character that is not whitespace without
// consuming anything but the whitespace.
func (l *Lexer) nextNonSpace() byte {
	l.skipWhitespace()
	return l.ch
}

func (l *Lexer) restStartsWithFold(word string) bool {
	i := l.position
	for i < len(l.input) && unicode.IsSpace(rune(l.input[i])) {
		i++
	}
	if len(l.input)-i < len(word) || !strings.EqualFold(l.input[i:i+len(word)], word) {
		return false
	}
	end := i + len(word)
	return end == len(l.input) || !isIdentifierPart(l.input[end])
}

// readBalanced consumes a parenthesised group starting at the current '('.
func (l *Lexer) readBalanced() bool {
	depth := 0
	for {
		switch l.ch {
		case 0:
			return false
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				l.readChar()
				return true
			}
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isIdentifierPart(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readWord reads numbers, timestamps and periods.
func (l *Lexer) readWord() string {
	position := l.position
	l.readChar()
	for isDigit(l.ch) || isLetter(l.ch) || strings.IndexByte(".:-+/", l.ch) >= 0 {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readString reads a single-quoted string, where '' stands for one quote.
func (l *Lexer) readString() (string, bool) {
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return sb.String(), false
		case '\'':
			if l.peekChar() != '\'' {
				l.readChar()
				return sb.String(), true
			}
			l.readChar()
		}
		sb.WriteByte(l.ch)
	}
}

// readQuotedIdentifier keeps the surrounding double quotes.
func (l *Lexer) readQuotedIdentifier() (string, bool) {
	position := l.position
	for {
		l.readChar()
		if l.ch == 0 {
			return l.input[position:l.position], false
		}
		if l.ch == '"' {
			l.readChar()
			return l.input[position:l.position], true
		}
	}
}

func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch)) || ch == '_'
}

func isIdentifierStart(ch byte) bool {
	return isLetter(ch)
}

func isIdentifierPart(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '-' || ch == '.'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
