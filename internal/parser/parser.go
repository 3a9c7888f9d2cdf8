// Package parser turns a token stream into the typed AST in internal/ast,
// via recursive descent for declarations/statements and Pratt-style
// precedence climbing for expressions (spec §4.2).
//
// Parse returns (nil, report) on the first syntax error: per spec, parser
// failures are fatal for the file and are not accumulated into a list.
package parser

import (
	"fmt"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/lexer"
)

// Parser holds the token buffer and current position.
type Parser struct {
	file   string
	toks   []lexer.Token
	pos    int
	err    *errors.Report

	// noStructLit suppresses `Name{...}` struct-literal parsing while
	// parsing an if/while/for/match condition, so the opening brace of
	// the body is never mistaken for a struct literal's field list.
	noStructLit bool

	prefix map[lexer.Kind]func() (ast.Expr, *errors.Report)
	infix  map[lexer.Kind]infixEntry
}

type infixEntry struct {
	prec int
	fn   func(left ast.Expr) (ast.Expr, *errors.Report)
}

// precedence levels, low to high, matching spec §4.2.
const (
	precLowest = iota
	precAssign
	precOr
	precAnd
	precRelational
	precAdditive
	precMultiplicative
	precShiftBitwise
	precUnary
	precPrimary
)

// New creates a Parser over a pre-tokenized source file.
func New(file string, toks []lexer.Token) *Parser {
	p := &Parser{file: file, toks: toks}
	p.prefix = map[lexer.Kind]func() (ast.Expr, *errors.Report){}
	p.infix = map[lexer.Kind]infixEntry{}
	p.registerExprParsers()
	return p
}

// Parse parses a full source file: the top-level declaration loop.
// Returns nil, report on the first syntax error.
func Parse(file string, toks []lexer.Token) ([]ast.Decl, *errors.Report) {
	p := New(file, toks)
	var decls []ast.Decl
	for !p.atEnd() {
		d, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		if d != nil {
			decls = append(decls, d)
		}
	}
	return decls, nil
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Kind: lexer.EOF, File: p.file}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return lexer.Token{Kind: lexer.EOF, File: p.file}
	}
	return p.toks[i]
}

func (p *Parser) atEnd() bool { return p.cur().Kind == lexer.EOF }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) check(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) match(k lexer.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) pos_() ast.Pos {
	t := p.cur()
	return ast.Pos{File: t.File, Line: t.Line, Column: t.Column}
}

func (p *Parser) errorAt(tok lexer.Token, code errors.Code, msg string) *errors.Report {
	return errors.New(errors.KindSyntax, code, tok.File, tok.Line, tok.Column, msg)
}

func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, *errors.Report) {
	if p.check(k) {
		return p.advance(), nil
	}
	tok := p.cur()
	return lexer.Token{}, p.errorAt(tok, errors.E2001,
		fmt.Sprintf("expected %s, found %q", what, tok.Lexeme)).
		WithHelp(fmt.Sprintf("expected token kind %s", k))
}

func (p *Parser) expectDelim(k lexer.Kind, what string) *errors.Report {
	if p.match(k) {
		return nil
	}
	tok := p.cur()
	return p.errorAt(tok, errors.E2002, fmt.Sprintf("expected closing %s", what))
}

// parseTopLevel dispatches on the current token per spec §4.2's top-level
// loop: import, const, proto, struct, enum, extern, fun, type, static.
func (p *Parser) parseTopLevel() (ast.Decl, *errors.Report) {
	switch p.cur().Kind {
	case lexer.IMPORT:
		return p.parseImport()
	case lexer.CONST:
		return p.parseVariableDecl(ast.MutConst)
	case lexer.STATIC:
		return p.parseVariableDecl(ast.MutStatic)
	case lexer.PROTO:
		return p.parseProtoImpl()
	case lexer.STRUCT:
		return p.parseStruct()
	case lexer.ENUM:
		return p.parseEnum()
	case lexer.EXTERN:
		return p.parseExternFunction()
	case lexer.FUN:
		return p.parseFunction()
	case lexer.IDENT:
		if p.cur().Lexeme == "type" {
			return p.parseTypeAlias()
		}
	}
	tok := p.cur()
	return nil, p.errorAt(tok, errors.E2001,
		fmt.Sprintf("unexpected top-level token %q", tok.Lexeme)).
		WithHelp("expected import, const, static, proto, struct, enum, extern, fun, or type")
}
