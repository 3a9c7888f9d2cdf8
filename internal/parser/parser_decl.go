package parser

import (
	"fmt"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/lexer"
)

func (p *Parser) parseImport() (ast.Decl, *errors.Report) {
	pos := p.pos_()
	p.advance() // import
	tok, err := p.expect(lexer.StringLiteral, "import path string")
	if err != nil {
		return nil, err
	}
	if err := p.expectDelim(lexer.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return &ast.Import{Path: tok.Lexeme, Pos: pos}, nil
}

func (p *Parser) parseParamList() ([]ast.Param, *errors.Report) {
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.check(lexer.RPAREN) {
		nameTok, err := p.expect(lexer.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON, "':'"); err != nil {
			return nil, err
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		param := ast.Param{Name: nameTok.Lexeme, Type: ty}
		if p.match(lexer.ASSIGN) {
			def, err := p.parseExpr(precAssign)
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		params = append(params, param)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if err := p.expectDelim(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseReturnType() (*ast.TypeExpr, *errors.Report) {
	if p.match(lexer.ARROW) {
		return p.parseType()
	}
	return nil, nil
}

func (p *Parser) parseFunction() (*ast.Function, *errors.Report) {
	pos := p.pos_()
	p.advance() // fun
	nameTok, err := p.expect(lexer.IDENT, "function name")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	retType, err := p.parseReturnType()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Name: nameTok.Lexeme, Params: params, ReturnType: retType, Body: body, Pos: pos}, nil
}

func (p *Parser) parseExternFunction() (ast.Decl, *errors.Report) {
	pos := p.pos_()
	p.advance() // extern
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	abiTok, err := p.expect(lexer.IDENT, "ABI name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.FUN, "'fun'"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.IDENT, "extern function name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var params []ast.Param
	variadic := false
	for !p.check(lexer.RPAREN) {
		if p.cur().Kind == lexer.DOT && p.peekAt(1).Kind == lexer.DOT && p.peekAt(2).Kind == lexer.DOT {
			p.advance()
			p.advance()
			p.advance()
			variadic = true
			break
		}
		nameTok2, err := p.expect(lexer.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON, "':'"); err != nil {
			return nil, err
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: nameTok2.Lexeme, Type: ty})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if err := p.expectDelim(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	retType, err := p.parseReturnType()
	if err != nil {
		return nil, err
	}
	if err := p.expectDelim(lexer.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return &ast.ExternFunction{
		Name: nameTok.Lexeme, ABI: abiTok.Lexeme, Params: params,
		ReturnType: retType, Variadic: variadic, Pos: pos,
	}, nil
}

func (p *Parser) parseStruct() (*ast.Struct, *errors.Report) {
	pos := p.pos_()
	p.advance() // struct
	nameTok, err := p.expect(lexer.IDENT, "struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var fields []ast.StructField
	var methods []*ast.Function
	seen := map[string]bool{}
	for !p.check(lexer.RBRACE) && !p.atEnd() {
		if p.check(lexer.FUN) {
			m, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			methods = append(methods, m)
			continue
		}
		fieldTok, err := p.expect(lexer.IDENT, "field name")
		if err != nil {
			return nil, err
		}
		if seen[fieldTok.Lexeme] {
			return nil, p.errorAt(fieldTok, errors.E7009,
				fmt.Sprintf("duplicate field %q in struct %q", fieldTok.Lexeme, nameTok.Lexeme))
		}
		seen[fieldTok.Lexeme] = true
		if _, err := p.expect(lexer.COLON, "':'"); err != nil {
			return nil, err
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.StructField{Name: fieldTok.Lexeme, Type: ty})
		if err := p.expectDelim(lexer.SEMICOLON, "';'"); err != nil {
			return nil, err
		}
	}
	if err := p.expectDelim(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &ast.Struct{Name: nameTok.Lexeme, Fields: fields, Methods: methods, Pos: pos}, nil
}

func (p *Parser) parseEnum() (*ast.Enum, *errors.Report) {
	pos := p.pos_()
	p.advance() // enum
	nameTok, err := p.expect(lexer.IDENT, "enum name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON, "':'"); err != nil {
		return nil, err
	}
	reprType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var variants []ast.EnumVariant
	for !p.check(lexer.RBRACE) && !p.atEnd() {
		vTok, err := p.expect(lexer.IDENT, "variant name")
		if err != nil {
			return nil, err
		}
		v := ast.EnumVariant{Name: vTok.Lexeme}
		if p.match(lexer.ASSIGN) {
			val, err := p.parseExpr(precAssign)
			if err != nil {
				return nil, err
			}
			v.Explicit = val
		}
		variants = append(variants, v)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if err := p.expectDelim(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &ast.Enum{Name: nameTok.Lexeme, ReprType: reprType, Variants: variants, Pos: pos}, nil
}

func (p *Parser) parseTypeAlias() (*ast.TypeAlias, *errors.Report) {
	pos := p.pos_()
	p.advance() // "type" (contextual keyword, lexed as IDENT)
	nameTok, err := p.expect(lexer.IDENT, "type alias name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ASSIGN, "'='"); err != nil {
		return nil, err
	}
	target, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expectDelim(lexer.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return &ast.TypeAlias{Name: nameTok.Lexeme, Target: target, Pos: pos}, nil
}

func (p *Parser) parseProtoImpl() (*ast.ProtoImpl, *errors.Report) {
	pos := p.pos_()
	p.advance() // proto
	nameTok, err := p.expect(lexer.IDENT, "proto target struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var methods []*ast.Function
	for !p.check(lexer.RBRACE) && !p.atEnd() {
		m, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		m.Name = nameTok.Lexeme + "_" + m.Name
		methods = append(methods, m)
	}
	if err := p.expectDelim(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &ast.ProtoImpl{Target: nameTok.Lexeme, Methods: methods, Pos: pos}, nil
}

// parseVariableDecl parses `var|let|let mut|const|static name: T = init;`.
// The caller has not yet consumed the leading keyword for CONST/STATIC;
// for VAR/LET it is consumed here too (this function is also called from
// statement position).
func (p *Parser) parseVariableDecl(mutability ast.Mutability) (*ast.Variable, *errors.Report) {
	pos := p.pos_()
	switch p.cur().Kind {
	case lexer.VAR, lexer.CONST, lexer.STATIC:
		p.advance()
	case lexer.LET:
		p.advance()
		if p.match(lexer.MUT) {
			mutability = ast.MutLetMut
		} else {
			mutability = ast.MutLet
		}
	}

	nameTok, err := p.expect(lexer.IDENT, "variable name")
	if err != nil {
		return nil, err
	}

	var ty *ast.TypeExpr
	if p.match(lexer.COLON) {
		ty, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	var init ast.Expr
	if p.match(lexer.ASSIGN) {
		init, err = p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
	} else if mutability == ast.MutConst {
		tok := p.cur()
		return nil, p.errorAt(tok, errors.E2001, "const declaration requires an initializer")
	}

	if err := p.expectDelim(lexer.SEMICOLON, "';'"); err != nil {
		return nil, err
	}

	return &ast.Variable{Name: nameTok.Lexeme, Type: ty, Init: init, Mutability: mutability, Pos: pos}, nil
}
