package query

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/smhanov/cqlmatch/filter"
)

// ErrUnexpectedToken is returned, wrapped with the offending token and its
// position, for any input the grammar does not accept.
var ErrUnexpectedToken = errors.New("unexpected token")

// Meters per unit of distance accepted by DWITHIN.
var distanceUnits = map[string]float64{
	"meters":         1,
	"kilometers":     1000,
	"feet":           0.3048,
	"yards":          0.9144,
	"miles":          1609.344,
	"statute miles":  1609.344,
	"nautical miles": 1852,
}

var comparisonOperators = map[TokenType]filter.Operator{
	TokenEqual:        filter.OpEqual,
	TokenNotEqual:     filter.OpNotEqual,
	TokenGreater:      filter.OpGreater,
	TokenGreaterEqual: filter.OpGreaterEqual,
	TokenLess:         filter.OpLess,
	TokenLessEqual:    filter.OpLessEqual,
	TokenLike:         filter.OpLike,
	TokenILike:        filter.OpILike,
	TokenAfter:        filter.OpAfter,
	TokenBefore:       filter.OpBefore,
	TokenDuring:       filter.OpDuring,
}

type Parser struct {
	lexer        *Lexer
	params       Parameters
	currentToken Token
	peekToken    Token
}

func NewParser(lexer *Lexer, params Parameters) *Parser {
	p := &Parser{lexer: lexer, params: params}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// Parse reads one complete filter expression.
func (p *Parser) Parse() (*filter.Filter, error) {
	f, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.currentToken.Type != TokenEOF {
		return nil, p.unexpected("end of input")
	}
	return f, nil
}

func (p *Parser) unexpected(expected string) error {
	tok := p.currentToken
	literal := tok.Literal
	if tok.Type == TokenEOF {
		literal = "EOF"
	}
	return errors.Wrapf(ErrUnexpectedToken, "%q at line %d, column %d, expected %s",
		literal, tok.Line, tok.Column, expected)
}

func (p *Parser) expect(t TokenType) error {
	if p.currentToken.Type != t {
		return p.unexpected(t.String())
	}
	p.nextToken()
	return nil
}

func (p *Parser) parseOr() (*filter.Filter, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if p.currentToken.Type != TokenOr {
		return left, nil
	}

	children := []*filter.Filter{left}
	for p.currentToken.Type == TokenOr {
		p.nextToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	return filter.Or(children...), nil
}

func (p *Parser) parseAnd() (*filter.Filter, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	if p.currentToken.Type != TokenAnd {
		return left, nil
	}

	children := []*filter.Filter{left}
	for p.currentToken.Type == TokenAnd {
		p.nextToken()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	return filter.And(children...), nil
}

func (p *Parser) parseNot() (*filter.Filter, error) {
	if p.currentToken.Type != TokenNot {
		return p.parsePrimary()
	}
	p.nextToken()
	expr, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return negate(expr), nil
}

// negate folds NOT into the combinator of an AND or OR node.
func negate(f *filter.Filter) *filter.Filter {
	if !f.IsLeaf() {
		switch f.NodeType() {
		case filter.NodeAnd:
			return filter.NotAnd(f.Filters...)
		case filter.NodeOr:
			return filter.NotOr(f.Filters...)
		}
	}
	return filter.NotAnd(f)
}

func (p *Parser) parsePrimary() (*filter.Filter, error) {
	switch p.currentToken.Type {
	case TokenLeftParen:
		return p.parseGroupedExpression()
	case TokenInclude:
		p.nextToken()
		return filter.And(), nil
	case TokenExclude:
		p.nextToken()
		return filter.Or(), nil
	case TokenIntersects:
		return p.parseIntersects()
	case TokenDWithin:
		return p.parseDWithin()
	case TokenIdentifier, TokenQuotedIdentifier:
		return p.parseComparison()
	default:
		return nil, p.unexpected("filter expression")
	}
}

func (p *Parser) parseGroupedExpression() (*filter.Filter, error) {
	p.nextToken() // consume '('
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseProperty() (string, error) {
	switch p.currentToken.Type {
	case TokenIdentifier, TokenQuotedIdentifier:
		name := p.currentToken.Literal
		p.nextToken()
		return name, nil
	}
	return "", p.unexpected("property name")
}

func (p *Parser) parseComparison() (*filter.Filter, error) {
	property, err := p.parseProperty()
	if err != nil {
		return nil, err
	}

	op, ok := comparisonOperators[p.currentToken.Type]
	if !ok {
		return nil, p.unexpected("comparison operator")
	}
	p.nextToken()

	if op == filter.OpEqual && p.currentToken.Type == TokenRelative {
		literal := p.currentToken.Literal
		p.nextToken()
		return filter.Clause(property, filter.OpRelative, literal), nil
	}

	if op == filter.OpDuring && p.currentToken.Type == TokenPeriod {
		from, to, _ := strings.Cut(p.currentToken.Literal, "/")
		p.nextToken()
		return &filter.Filter{Type: string(op), Property: property, From: from, To: to}, nil
	}

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return filter.Clause(property, op, value), nil
}

func (p *Parser) parseValue() (any, error) {
	tok := p.currentToken
	switch tok.Type {
	case TokenString, TokenTimestamp, TokenPeriod:
		p.nextToken()
		return tok.Literal, nil
	case TokenNumber:
		p.nextToken()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrUnexpectedToken, "could not parse number %q", tok.Literal)
		}
		return v, nil
	case TokenBoolean:
		p.nextToken()
		return strings.EqualFold(tok.Literal, "true"), nil
	case TokenParameter:
		p.nextToken()
		return p.params.lookup(tok.Literal)
	}
	return nil, p.unexpected("value")
}

// parseGeometry returns WKT text, either written inline or passed as a
// parameter.
func (p *Parser) parseGeometry() (string, error) {
	tok := p.currentToken
	switch tok.Type {
	case TokenGeometry:
		p.nextToken()
		return tok.Literal, nil
	case TokenParameter:
		p.nextToken()
		v, err := p.params.lookup(tok.Literal)
		if err != nil {
			return "", err
		}
		return cast.ToStringE(v)
	}
	return "", p.unexpected("WKT geometry")
}

// INTERSECTS(property, wkt)
func (p *Parser) parseIntersects() (*filter.Filter, error) {
	p.nextToken()
	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}
	property, err := p.parseProperty()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenComma); err != nil {
		return nil, err
	}
	wkt, err := p.parseGeometry()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return filter.Clause(property, filter.OpIntersects, wkt), nil
}

// DWITHIN(property, wkt, distance, units)
func (p *Parser) parseDWithin() (*filter.Filter, error) {
	p.nextToken()
	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}
	property, err := p.parseProperty()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenComma); err != nil {
		return nil, err
	}
	wkt, err := p.parseGeometry()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenComma); err != nil {
		return nil, err
	}

	tok := p.currentToken
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	distance, err := cast.ToFloat64E(value)
	if err != nil {
		return nil, errors.Wrapf(ErrUnexpectedToken, "distance %q at line %d, column %d", tok.Literal, tok.Line, tok.Column)
	}
	if err := p.expect(TokenComma); err != nil {
		return nil, err
	}

	meters, err := p.parseUnits()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	f := filter.Clause(property, filter.OpDWithin, wkt)
	f.Distance = distance * meters
	return f, nil
}

// parseUnits reads a unit name, which may be two words, and returns its
// length in meters.
func (p *Parser) parseUnits() (float64, error) {
	if p.currentToken.Type != TokenIdentifier && p.currentToken.Type != TokenString {
		return 0, p.unexpected("distance units")
	}
	name := strings.ToLower(p.currentToken.Literal)
	if (name == "statute" || name == "nautical") && p.peekToken.Type == TokenIdentifier {
		p.nextToken()
		name += " " + strings.ToLower(p.currentToken.Literal)
	}
	meters, ok := distanceUnits[name]
	if !ok {
		return 0, p.unexpected("distance units")
	}
	p.nextToken()
	return meters, nil
}
