package parser

import (
	"fmt"

	"github.com/wavelang/wavec/internal/ast"
	"github.com/wavelang/wavec/internal/errors"
	"github.com/wavelang/wavec/internal/lexer"
)

// parseBlock parses a `{ stmt* }` block.
func (p *Parser) parseBlock() ([]ast.Stmt, *errors.Report) {
	if _, err := p.expect(lexer.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.check(lexer.RBRACE) && !p.atEnd() {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if err := p.expectDelim(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return stmts, nil
}

// parseCondition parses a condition expression with struct-literal parsing
// suppressed, so `if x { ... }` never reads `x {` as a struct literal.
func (p *Parser) parseCondition() (ast.Expr, *errors.Report) {
	wasNoStruct := p.noStructLit
	p.noStructLit = true
	cond, err := p.parseExpr(precLowest)
	p.noStructLit = wasNoStruct
	return cond, err
}

func (p *Parser) parseStmt() (ast.Stmt, *errors.Report) {
	switch p.cur().Kind {
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.MATCH:
		return p.parseMatch()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.BREAK:
		pos := p.pos_()
		p.advance()
		if err := p.expectDelim(lexer.SEMICOLON, "';'"); err != nil {
			return nil, err
		}
		return &ast.Break{Pos: pos}, nil
	case lexer.CONTINUE:
		pos := p.pos_()
		p.advance()
		if err := p.expectDelim(lexer.SEMICOLON, "';'"); err != nil {
			return nil, err
		}
		return &ast.Continue{Pos: pos}, nil
	case lexer.PRINT:
		return p.parsePrint(false)
	case lexer.PRINTLN:
		return p.parsePrint(true)
	case lexer.IMPORT:
		return p.parseImport()
	case lexer.VAR:
		return p.parseVariableDecl(ast.MutVar)
	case lexer.LET:
		return p.parseVariableDecl(ast.MutLet)
	case lexer.CONST:
		return p.parseVariableDecl(ast.MutConst)
	case lexer.STATIC:
		return p.parseVariableDecl(ast.MutStatic)
	case lexer.ASM:
		return p.parseAsmBlockCommon()
	case lexer.LBRACE:
		return p.parseNestedBlockStmt()
	}
	return p.parseSimpleOrExprStmt()
}

// parseNestedBlockStmt rejects a bare `{ ... }` in statement position: the
// grammar has no standalone block statement.
func (p *Parser) parseNestedBlockStmt() (ast.Stmt, *errors.Report) {
	tok := p.cur()
	return nil, p.errorAt(tok, errors.E2001, "unexpected '{': standalone blocks are not a statement form")
}

func (p *Parser) parseIf() (ast.Stmt, *errors.Report) {
	pos := p.pos_()
	p.advance() // if
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.If{Cond: cond, Body: body, Pos: pos}
	for p.check(lexer.ELSE) && p.peekAt(1).Kind == lexer.IF {
		p.advance() // else
		p.advance() // if
		c, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.ElseIf = append(stmt.ElseIf, ast.ElseIf{Cond: c, Body: b})
	}
	if p.match(lexer.ELSE) {
		elseBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBody
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (ast.Stmt, *errors.Report) {
	pos := p.pos_()
	p.advance() // while
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body, Pos: pos}, nil
}

func (p *Parser) parseFor() (ast.Stmt, *errors.Report) {
	pos := p.pos_()
	p.advance() // for
	var initStmt ast.Stmt
	var err *errors.Report
	if !p.check(lexer.SEMICOLON) {
		initStmt, err = p.parseForClauseInit()
		if err != nil {
			return nil, err
		}
	} else {
		p.advance()
	}

	var cond ast.Expr
	if !p.check(lexer.SEMICOLON) {
		cond, err = p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectDelim(lexer.SEMICOLON, "';'"); err != nil {
		return nil, err
	}

	var step ast.Stmt
	if !p.check(lexer.LBRACE) {
		stepExpr, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		step = &ast.ExprStmt{X: stepExpr, Pos: stepExpr.Position()}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.For{Init: initStmt, Cond: cond, Step: step, Body: body, Pos: pos}, nil
}

// parseForClauseInit parses the for-loop init clause, which is either a
// variable declaration (consuming its own trailing ';') or a bare
// expression statement (whose ';' is consumed by the caller).
func (p *Parser) parseForClauseInit() (ast.Stmt, *errors.Report) {
	switch p.cur().Kind {
	case lexer.VAR:
		return p.parseVariableDecl(ast.MutVar)
	case lexer.LET:
		return p.parseVariableDecl(ast.MutLet)
	default:
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if err := p.expectDelim(lexer.SEMICOLON, "';'"); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: e, Pos: e.Position()}, nil
	}
}

func (p *Parser) parseMatch() (ast.Stmt, *errors.Report) {
	pos := p.pos_()
	p.advance() // match
	disc, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var arms []ast.MatchArm
	sawWildcard := false
	for !p.check(lexer.RBRACE) && !p.atEnd() {
		var pattern ast.Expr
		if p.cur().Kind == lexer.IDENT && p.cur().Lexeme == "_" {
			if sawWildcard {
				tok := p.cur()
				return nil, p.errorAt(tok, errors.E2005, "match has more than one wildcard arm")
			}
			sawWildcard = true
			p.advance()
		} else {
			pattern, err = p.parseExpr(precAssign)
			if err != nil {
				return nil, err
			}
		}
		// The lexer has no dedicated "=>" token; it reads '=' and '>' as
		// separate ASSIGN/GT tokens, so the arrow is matched here as that
		// adjacent pair.
		if _, err := p.expect(lexer.ASSIGN, "'=>'"); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.GT, "'=>'"); err != nil {
			return nil, err
		}
		body, err := p.parseMatchArmBody()
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.MatchArm{Pattern: pattern, Body: body})
		p.match(lexer.COMMA)
	}
	if err := p.expectDelim(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &ast.Match{Discriminant: disc, Arms: arms, Pos: pos}, nil
}

// parseMatchArmBody parses either a `{ stmt* }` block or a single bare
// statement arm body (its own terminating ';' is consumed by parseStmt).
func (p *Parser) parseMatchArmBody() ([]ast.Stmt, *errors.Report) {
	if p.check(lexer.LBRACE) {
		return p.parseBlock()
	}
	s, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return []ast.Stmt{s}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, *errors.Report) {
	pos := p.pos_()
	p.advance() // return
	if p.check(lexer.SEMICOLON) {
		p.advance()
		return &ast.Return{Pos: pos}, nil
	}
	val, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectDelim(lexer.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return &ast.Return{Value: val, Pos: pos}, nil
}

func (p *Parser) parsePrint(newline bool) (ast.Stmt, *errors.Report) {
	pos := p.pos_()
	p.advance() // print/println
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	fmtTok, err := p.expect(lexer.StringLiteral, "format string")
	if err != nil {
		return nil, err
	}
	var args []ast.Expr
	for p.match(lexer.COMMA) {
		a, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	if err := p.expectDelim(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if err := p.expectDelim(lexer.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return &ast.Print{Text: fmtTok.Lexeme, Newline: newline, Pos: pos}, nil
	}
	return &ast.PrintFormat{Format: fmtTok.Lexeme, Args: args, Newline: newline, Pos: pos}, nil
}

// parseSimpleOrExprStmt parses `target = value;`, `target op= value;`, or a
// bare expression statement.
func (p *Parser) parseSimpleOrExprStmt() (ast.Stmt, *errors.Report) {
	e, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectDelim(lexer.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	switch v := e.(type) {
	case *ast.Assignment:
		return &ast.Assign{Target: v.Target, Value: v.Value, Pos: v.Pos}, nil
	case *ast.AssignOperation:
		return &ast.AssignOp{Target: v.Target, Op: v.Op, Value: v.Value, Pos: v.Pos}, nil
	}
	return &ast.ExprStmt{X: e, Pos: e.Position()}, nil
}

// parseAsmBlockCommon parses an `asm { ... }` block, shared by statement and
// expression position. Syntax: a sequence of quoted instruction-template
// strings, then optional `in(reg) expr`, `out(reg) expr`, and
// `clobber(name)` clauses, all semicolon-terminated, per spec §4.7/§6.4.
func (p *Parser) parseAsmBlockCommon() (*ast.AsmBlock, *errors.Report) {
	pos := p.pos_()
	p.advance() // asm
	if _, err := p.expect(lexer.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	block := &ast.AsmBlock{Pos: pos}
	for !p.check(lexer.RBRACE) && !p.atEnd() {
		switch {
		case p.check(lexer.StringLiteral):
			tok := p.advance()
			block.Instructions = append(block.Instructions, tok.Lexeme)
		case p.cur().Kind == lexer.IN:
			p.advance()
			reg, err := p.parseAsmRegSpec()
			if err != nil {
				return nil, err
			}
			val, err := p.parseExpr(precAssign)
			if err != nil {
				return nil, err
			}
			block.Inputs = append(block.Inputs, ast.AsmOperand{Reg: reg, Expr: val})
		case p.cur().Kind == lexer.OUT:
			p.advance()
			reg, err := p.parseAsmRegSpec()
			if err != nil {
				return nil, err
			}
			val, err := p.parseExpr(precAssign)
			if err != nil {
				return nil, err
			}
			block.Outputs = append(block.Outputs, ast.AsmOperand{Reg: reg, Expr: val})
		case p.cur().Kind == lexer.IDENT && p.cur().Lexeme == "clobber":
			p.advance()
			if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
				return nil, err
			}
			nameTok, err := p.expect(lexer.IDENT, "clobber name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
				return nil, err
			}
			block.Clobbers = append(block.Clobbers, nameTok.Lexeme)
		default:
			tok := p.cur()
			return nil, p.errorAt(tok, errors.E2001,
				fmt.Sprintf("unexpected token %q in asm block", tok.Lexeme))
		}
		if err := p.expectDelim(lexer.SEMICOLON, "';'"); err != nil {
			return nil, err
		}
	}
	if err := p.expectDelim(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseAsmRegSpec() (string, *errors.Report) {
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return "", err
	}
	regTok, err := p.expect(lexer.IDENT, "register or constraint class")
	if err != nil {
		return "", err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return "", err
	}
	return regTok.Lexeme, nil
}
