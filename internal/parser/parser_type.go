package parser

import (
	"fmt"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/lexer"
)

// parseType parses the type grammar (spec §4.2): a base type keyword,
// `ptr<T>`, `array<T, N>`, or a user type name. Generic angle-bracket
// syntax is accepted only for ptr and array.
func (p *Parser) parseType() (*ast.TypeExpr, *errors.Report) {
	tok := p.cur()
	pos := p.pos_()

	if tok.Kind.IsTypeKeyword() {
		p.advance()
		return &ast.TypeExpr{Kind: "base", Base: tok.Lexeme, Pos: pos}, nil
	}

	if tok.Kind == lexer.IDENT && tok.Lexeme == "ptr" {
		p.advance()
		if _, err := p.expect(lexer.LT, "'<'"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.GT, "'>'"); err != nil {
			return nil, err
		}
		return &ast.TypeExpr{Kind: "ptr", Elem: elem, Pos: pos}, nil
	}

	if tok.Kind == lexer.IDENT && tok.Lexeme == "array" {
		p.advance()
		if _, err := p.expect(lexer.LT, "'<'"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COMMA, "','"); err != nil {
			return nil, err
		}
		lenTok, err := p.expect(lexer.IntLiteral, "array length")
		if err != nil {
			return nil, err
		}
		n, perr := parseIntLiteralValue(lenTok.Lexeme)
		if perr != nil {
			return nil, p.errorAt(lenTok, errors.E2003, perr.Error())
		}
		if _, err := p.expect(lexer.GT, "'>'"); err != nil {
			return nil, err
		}
		return &ast.TypeExpr{Kind: "array", Elem: elem, Len: n, Pos: pos}, nil
	}

	if tok.Kind == lexer.IDENT {
		p.advance()
		return &ast.TypeExpr{Kind: "name", Name: tok.Lexeme, Pos: pos}, nil
	}

	return nil, p.errorAt(tok, errors.E2003, fmt.Sprintf("expected a type, found %q", tok.Lexeme))
}
