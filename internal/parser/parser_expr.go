package parser

import (
	"fmt"
	"strconv"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/lexer"
)

// registerExprParsers wires the Pratt tables: one prefix parser per token
// kind that can start an expression, one infix entry per binary/postfix
// operator keyed by precedence.
func (p *Parser) registerExprParsers() {
	p.prefix[lexer.IDENT] = p.parseIdentOrCallOrStruct
	p.prefix[lexer.IntLiteral] = p.parseIntLit
	p.prefix[lexer.FloatLiteral] = p.parseFloatLit
	p.prefix[lexer.StringLiteral] = p.parseStringLit
	p.prefix[lexer.CharLiteral] = p.parseCharLit
	p.prefix[lexer.TRUE] = p.parseBoolLit
	p.prefix[lexer.FALSE] = p.parseBoolLit
	p.prefix[lexer.NULL] = p.parseNullLit
	p.prefix[lexer.LPAREN] = p.parseGrouped
	p.prefix[lexer.LBRACKET] = p.parseArrayLiteral
	p.prefix[lexer.MINUS] = p.parseUnary
	p.prefix[lexer.BANG] = p.parseUnary
	p.prefix[lexer.TILDE] = p.parseUnary
	p.prefix[lexer.STAR] = p.parseDerefPrefix
	p.prefix[lexer.DEREF] = p.parseDerefKeyword
	p.prefix[lexer.AMP] = p.parseAddressOf
	p.prefix[lexer.ASM] = p.parseAsmBlock

	bin := func(k lexer.Kind, prec int, op ast.BinOp) {
		p.infix[k] = infixEntry{prec: prec, fn: p.makeBinaryInfix(prec, op)}
	}
	bin(lexer.PIPEPIPE, precOr, ast.BinOr)
	bin(lexer.AMPAMP, precAnd, ast.BinAnd)
	bin(lexer.LT, precRelational, ast.BinLt)
	bin(lexer.GT, precRelational, ast.BinGt)
	bin(lexer.LTE, precRelational, ast.BinLte)
	bin(lexer.GTE, precRelational, ast.BinGte)
	bin(lexer.EQ, precRelational, ast.BinEq)
	bin(lexer.NEQ, precRelational, ast.BinNeq)
	bin(lexer.PLUS, precAdditive, ast.BinAdd)
	bin(lexer.MINUS, precAdditive, ast.BinSub)
	bin(lexer.STAR, precMultiplicative, ast.BinMul)
	bin(lexer.SLASH, precMultiplicative, ast.BinDiv)
	bin(lexer.PERCENT, precMultiplicative, ast.BinMod)
	bin(lexer.SHL, precShiftBitwise, ast.BinShl)
	bin(lexer.SHR, precShiftBitwise, ast.BinShr)
	bin(lexer.AMP, precShiftBitwise, ast.BinBitAnd)
	bin(lexer.PIPE, precShiftBitwise, ast.BinBitOr)
	bin(lexer.CARET, precShiftBitwise, ast.BinBitXor)

	p.infix[lexer.LPAREN] = infixEntry{prec: precPrimary, fn: nil} // unused; calls resolved in primary
	p.infix[lexer.LBRACKET] = infixEntry{prec: precPrimary, fn: p.parseIndexInfix}
	p.infix[lexer.DOT] = infixEntry{prec: precPrimary, fn: p.parseDotInfix}

	p.infix[lexer.ASSIGN] = infixEntry{prec: precAssign, fn: p.parseAssignInfix}
	p.infix[lexer.PLUSEQ] = infixEntry{prec: precAssign, fn: p.makeCompoundInfix(ast.OpAddAssign)}
	p.infix[lexer.MINUSEQ] = infixEntry{prec: precAssign, fn: p.makeCompoundInfix(ast.OpSubAssign)}
	p.infix[lexer.STAREQ] = infixEntry{prec: precAssign, fn: p.makeCompoundInfix(ast.OpMulAssign)}
	p.infix[lexer.SLASHEQ] = infixEntry{prec: precAssign, fn: p.makeCompoundInfix(ast.OpDivAssign)}
	p.infix[lexer.PERCENTEQ] = infixEntry{prec: precAssign, fn: p.makeCompoundInfix(ast.OpModAssign)}
}

// parseExpr is the precedence-climbing entry point: parses a prefix
// expression then repeatedly folds in infix/postfix operators whose
// precedence exceeds minPrec. Assignment and the "as" cast are handled as
// special cases: assignment is right-associative, and cast is a contextual
// keyword rather than a token kind.
func (p *Parser) parseExpr(minPrec int) (ast.Expr, *errors.Report) {
	prefixFn, ok := p.prefix[p.cur().Kind]
	if !ok {
		tok := p.cur()
		return nil, p.errorAt(tok, errors.E2001, fmt.Sprintf("unexpected token %q in expression", tok.Lexeme))
	}
	left, err := prefixFn()
	if err != nil {
		return nil, err
	}

	for {
		if p.isCastKeyword() && precUnary > minPrec {
			left, err = p.parseCastInfix(left)
			if err != nil {
				return nil, err
			}
			continue
		}
		entry, ok := p.infix[p.cur().Kind]
		if !ok || entry.prec <= minPrec || entry.fn == nil {
			break
		}
		left, err = entry.fn(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) isCastKeyword() bool {
	return p.cur().Kind == lexer.IDENT && p.cur().Lexeme == "as"
}

func (p *Parser) makeBinaryInfix(prec int, op ast.BinOp) func(ast.Expr) (ast.Expr, *errors.Report) {
	return func(left ast.Expr) (ast.Expr, *errors.Report) {
		pos := p.pos_()
		p.advance()
		right, err := p.parseExpr(prec)
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Left: left, Op: op, Right: right, Pos: pos}, nil
	}
}

func (p *Parser) parseAssignInfix(left ast.Expr) (ast.Expr, *errors.Report) {
	pos := p.pos_()
	p.advance()
	// right-associative: recurse at one below precAssign
	value, err := p.parseExpr(precAssign - 1)
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Target: left, Value: value, Pos: pos}, nil
}

func (p *Parser) makeCompoundInfix(op ast.CompoundOp) func(ast.Expr) (ast.Expr, *errors.Report) {
	return func(left ast.Expr) (ast.Expr, *errors.Report) {
		pos := p.pos_()
		p.advance()
		value, err := p.parseExpr(precAssign - 1)
		if err != nil {
			return nil, err
		}
		return &ast.AssignOperation{Target: left, Op: op, Value: value, Pos: pos}, nil
	}
}

func (p *Parser) parseIndexInfix(left ast.Expr) (ast.Expr, *errors.Report) {
	pos := p.pos_()
	p.advance() // [
	idx, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectDelim(lexer.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	return &ast.Index{Target: left, Index: idx, Pos: pos}, nil
}

func (p *Parser) parseDotInfix(left ast.Expr) (ast.Expr, *errors.Report) {
	pos := p.pos_()
	p.advance() // .
	nameTok, err := p.expect(lexer.IDENT, "field or method name")
	if err != nil {
		return nil, err
	}
	if p.check(lexer.LPAREN) {
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return &ast.MethodCall{Object: left, Name: nameTok.Lexeme, Args: args, Pos: pos}, nil
	}
	return &ast.FieldAccess{Object: left, Field: nameTok.Lexeme, Pos: pos}, nil
}

func (p *Parser) parseCastInfix(left ast.Expr) (ast.Expr, *errors.Report) {
	pos := p.pos_()
	p.advance() // "as"
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ast.Cast{X: left, TargetType: ty, Pos: pos}, nil
}

func (p *Parser) parseCallArgs() ([]ast.Expr, *errors.Report) {
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.check(lexer.RPAREN) {
		arg, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if err := p.expectDelim(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseIdentOrCallOrStruct() (ast.Expr, *errors.Report) {
	tok := p.advance()
	pos := ast.Pos{File: tok.File, Line: tok.Line, Column: tok.Column}

	if p.check(lexer.LPAREN) {
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Name: tok.Lexeme, Args: args, Pos: pos}, nil
	}

	if p.check(lexer.LBRACE) && !p.noStructLit {
		return p.parseStructLiteralBody(tok.Lexeme, pos)
	}

	return &ast.Variable{Name: tok.Lexeme, Pos: pos}, nil
}

func (p *Parser) parseStructLiteralBody(name string, pos ast.Pos) (ast.Expr, *errors.Report) {
	p.advance() // {
	var fields []ast.StructFieldInit
	for !p.check(lexer.RBRACE) && !p.atEnd() {
		fieldTok, err := p.expect(lexer.IDENT, "field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.StructFieldInit{Name: fieldTok.Lexeme, Value: val})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if err := p.expectDelim(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &ast.StructLiteral{Name: name, Fields: fields, Pos: pos}, nil
}

func (p *Parser) parseIntLit() (ast.Expr, *errors.Report) {
	tok := p.advance()
	return &ast.Literal{Kind: ast.LitInt, Text: tok.Lexeme, Pos: p.litPos(tok)}, nil
}

func (p *Parser) parseFloatLit() (ast.Expr, *errors.Report) {
	tok := p.advance()
	v, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return nil, p.errorAt(tok, errors.E1006, fmt.Sprintf("invalid float literal %q", tok.Lexeme))
	}
	return &ast.Literal{Kind: ast.LitFloat, Text: tok.Lexeme, Value: v, Pos: p.litPos(tok)}, nil
}

func (p *Parser) parseStringLit() (ast.Expr, *errors.Report) {
	tok := p.advance()
	return &ast.Literal{Kind: ast.LitString, Value: tok.Lexeme, Pos: p.litPos(tok)}, nil
}

func (p *Parser) parseCharLit() (ast.Expr, *errors.Report) {
	tok := p.advance()
	r := []rune(tok.Lexeme)
	var v rune
	if len(r) > 0 {
		v = r[0]
	}
	return &ast.Literal{Kind: ast.LitChar, Value: v, Pos: p.litPos(tok)}, nil
}

func (p *Parser) parseBoolLit() (ast.Expr, *errors.Report) {
	tok := p.advance()
	return &ast.Literal{Kind: ast.LitBool, Value: tok.Kind == lexer.TRUE, Pos: p.litPos(tok)}, nil
}

func (p *Parser) parseNullLit() (ast.Expr, *errors.Report) {
	tok := p.advance()
	return &ast.Null{Pos: p.litPos(tok)}, nil
}

func (p *Parser) litPos(tok lexer.Token) ast.Pos {
	return ast.Pos{File: tok.File, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseGrouped() (ast.Expr, *errors.Report) {
	pos := p.pos_()
	p.advance() // (
	wasNoStruct := p.noStructLit
	p.noStructLit = false
	inner, err := p.parseExpr(precLowest)
	p.noStructLit = wasNoStruct
	if err != nil {
		return nil, err
	}
	if err := p.expectDelim(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return &ast.Grouped{X: inner, Pos: pos}, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expr, *errors.Report) {
	pos := p.pos_()
	p.advance() // [
	var elems []ast.Expr
	for !p.check(lexer.RBRACKET) {
		e, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if err := p.expectDelim(lexer.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{Elements: elems, Pos: pos}, nil
}

func (p *Parser) parseUnary() (ast.Expr, *errors.Report) {
	tok := p.advance()
	x, err := p.parseExpr(precUnary)
	if err != nil {
		return nil, err
	}
	pos := p.litPos(tok)
	switch tok.Kind {
	case lexer.MINUS:
		return &ast.Unary{Op: ast.UnaryNeg, X: x, Pos: pos}, nil
	case lexer.BANG:
		return &ast.Unary{Op: ast.UnaryNot, X: x, Pos: pos}, nil
	case lexer.TILDE:
		return &ast.Unary{Op: ast.UnaryBitNot, X: x, Pos: pos}, nil
	}
	return nil, p.errorAt(tok, errors.E2001, "unreachable unary operator")
}

func (p *Parser) parseDerefPrefix() (ast.Expr, *errors.Report) {
	tok := p.advance() // *
	x, err := p.parseExpr(precUnary)
	if err != nil {
		return nil, err
	}
	return &ast.Deref{X: x, Pos: p.litPos(tok)}, nil
}

func (p *Parser) parseDerefKeyword() (ast.Expr, *errors.Report) {
	tok := p.advance() // deref
	x, err := p.parseExpr(precUnary)
	if err != nil {
		return nil, err
	}
	return &ast.Deref{X: x, Pos: p.litPos(tok)}, nil
}

func (p *Parser) parseAddressOf() (ast.Expr, *errors.Report) {
	tok := p.advance() // &
	x, err := p.parseExpr(precUnary)
	if err != nil {
		return nil, err
	}
	return &ast.AddressOf{X: x, Pos: p.litPos(tok)}, nil
}

func (p *Parser) parseAsmBlock() (ast.Expr, *errors.Report) {
	block, err := p.parseAsmBlockCommon()
	if err != nil {
		return nil, err
	}
	return block, nil
}
