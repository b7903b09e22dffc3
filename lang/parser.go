package lang

import (
	"strconv"

	"github.com/lookbusy1344/worm/ast"
)

// Parser is a recursive-descent parser for the restricted, integer-only,
// indentation-sensitive subset of the source language. It consumes the
// token stream produced by Lexer and is the sole producer of ast.Node
// values in this repository; it knows nothing about SLIM or lowering.
type Parser struct {
	toks []Token
	pos  int
}

// Parse lexes and parses the given source text into an *ast.Module.
func Parse(source string) (*ast.Module, error) {
	toks, err := NewLexer(source).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	return p.parseModule()
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) at(t TokenType) bool { return p.cur().Type == t }

func (p *Parser) advance() Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(t TokenType, what string) (Token, error) {
	if !p.at(t) {
		return Token{}, &SyntaxError{Line: p.cur().Line, Message: "expected " + what}
	}
	return p.advance(), nil
}

// skipNewlines consumes any run of blank NEWLINE tokens, which appear
// between top-level statements and at the top of blocks.
func (p *Parser) skipNewlines() {
	for p.at(TokenNewline) {
		p.advance()
	}
}

func (p *Parser) parseModule() (*ast.Module, error) {
	p.skipNewlines()
	var body []ast.Stmt
	for !p.at(TokenEOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
		p.skipNewlines()
	}
	return &ast.Module{Body: body}, nil
}

// parseBlock parses an indented suite: NEWLINE INDENT stmt+ DEDENT.
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(TokenColon, "':'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenNewline, "newline"); err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(TokenIndent, "indented block"); err != nil {
		return nil, err
	}
	var body []ast.Stmt
	for !p.at(TokenDedent) && !p.at(TokenEOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
		p.skipNewlines()
	}
	if _, err := p.expect(TokenDedent, "dedent"); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.cur().Type {
	case TokenIf:
		return p.parseIf()
	case TokenWhile:
		return p.parseWhile()
	case TokenDef:
		return p.parseFuncDef()
	case TokenReturn:
		return p.parseReturn()
	case TokenBreak:
		line := p.advance().Line
		return ast.NewBreak(line), nil
	case TokenContinue:
		line := p.advance().Line
		return ast.NewContinue(line), nil
	case TokenName:
		return p.parseNameLedStatement()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	line := p.advance().Line // consume 'if'
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var orelse []ast.Stmt
	switch p.cur().Type {
	case TokenElif:
		// Desugar `elif` into a nested If inside the else branch, the same
		// way CPython's own parser treats it as pure sugar.
		nested, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		orelse = []ast.Stmt{nested}
	case TokenElse:
		p.advance()
		orelse, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}

	return ast.NewIf(line, test, body, orelse), nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	line := p.advance().Line // consume 'while'
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(line, test, body), nil
}

func (p *Parser) parseFuncDef() (ast.Stmt, error) {
	line := p.advance().Line // consume 'def'
	nameTok, err := p.expect(TokenName, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLParen, "'('"); err != nil {
		return nil, err
	}
	var params []string
	for !p.at(TokenRParen) {
		pt, err := p.expect(TokenName, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, pt.Literal)
		if p.at(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewFuncDef(line, nameTok.Literal, params, body), nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	line := p.advance().Line // consume 'return'
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewReturn(line, value), nil
}

// parseNameLedStatement disambiguates `name = expr`, `name op= expr` and a
// bare expression statement starting with a name, by peeking one token
// ahead after the name.
func (p *Parser) parseNameLedStatement() (ast.Stmt, error) {
	nameTok := p.cur()
	save := p.pos
	p.advance()

	switch p.cur().Type {
	case TokenAssign:
		line := p.advance().Line
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewAssign(line, nameTok.Literal, value), nil
	case TokenPlusEq, TokenMinusEq, TokenStarEq, TokenDSlashEq, TokenPercentEq:
		opTok := p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		op, err := augOpFor(opTok.Type)
		if err != nil {
			return nil, &SyntaxError{Line: opTok.Line, Message: err.Error()}
		}
		return ast.NewAugAssign(opTok.Line, nameTok.Literal, op, value), nil
	default:
		// Not an assignment after all; re-parse as a plain expression
		// statement from the name.
		p.pos = save
		return p.parseExprStatement()
	}
}

func augOpFor(t TokenType) (ast.AugOp, error) {
	switch t {
	case TokenPlusEq:
		return ast.AugAdd, nil
	case TokenMinusEq:
		return ast.AugSub, nil
	case TokenStarEq:
		return ast.AugMul, nil
	case TokenDSlashEq:
		return ast.AugFloorDiv, nil
	case TokenPercentEq:
		return ast.AugMod, nil
	default:
		return 0, &SyntaxError{Message: "unsupported binary operator"}
	}
}

func (p *Parser) parseExprStatement() (ast.Stmt, error) {
	line := p.cur().Line
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewExprStmt(line, value), nil
}

// --- Expressions, by ascending precedence -------------------------------
//
// expr       := or_test
// or_test    := and_test ('or' and_test)?          ; chains rejected
// and_test   := not_test ('and' not_test)?          ; chains rejected
// not_test   := 'not' not_test | comparison
// comparison := arith (cmp_op arith)?               ; chains rejected
// arith      := term (('+' | '-') term)*
// term       := factor (('*' | '//' | '%') factor)*
// factor     := ('+' | '-') factor | atom
// atom       := NUMBER | True | False | NAME ':=' expr | NAME | call | '(' expr ')'

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseOrTest()
}

func (p *Parser) parseOrTest() (ast.Expr, error) {
	left, err := p.parseAndTest()
	if err != nil {
		return nil, err
	}
	if p.at(TokenOr) {
		line := p.advance().Line
		right, err := p.parseAndTest()
		if err != nil {
			return nil, err
		}
		if p.at(TokenOr) || p.at(TokenAnd) {
			return nil, &SyntaxError{Line: p.cur().Line, Message: "chained boolean operator"}
		}
		return ast.NewBoolOp(line, ast.BoolOr, left, right), nil
	}
	return left, nil
}

func (p *Parser) parseAndTest() (ast.Expr, error) {
	left, err := p.parseNotTest()
	if err != nil {
		return nil, err
	}
	if p.at(TokenAnd) {
		line := p.advance().Line
		right, err := p.parseNotTest()
		if err != nil {
			return nil, err
		}
		if p.at(TokenAnd) {
			return nil, &SyntaxError{Line: p.cur().Line, Message: "chained boolean operator"}
		}
		return ast.NewBoolOp(line, ast.BoolAnd, left, right), nil
	}
	return left, nil
}

func (p *Parser) parseNotTest() (ast.Expr, error) {
	if p.at(TokenNot) {
		line := p.advance().Line
		operand, err := p.parseNotTest()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(line, ast.UnaryNot, operand), nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseArith()
	if err != nil {
		return nil, err
	}
	op, ok := compareOpFor(p.cur().Type)
	if !ok {
		return left, nil
	}
	line := p.advance().Line
	right, err := p.parseArith()
	if err != nil {
		return nil, err
	}
	if _, ok := compareOpFor(p.cur().Type); ok {
		return nil, &SyntaxError{Line: p.cur().Line, Message: "chained comparison"}
	}
	return ast.NewCompare(line, op, left, right), nil
}

func compareOpFor(t TokenType) (ast.CompareOpKind, bool) {
	switch t {
	case TokenEq:
		return ast.CmpEq, true
	case TokenNotEq:
		return ast.CmpNotEq, true
	case TokenLess:
		return ast.CmpLt, true
	case TokenGreater:
		return ast.CmpGt, true
	case TokenLessEq:
		return ast.CmpLtE, true
	case TokenGreaterEq:
		return ast.CmpGtE, true
	default:
		return 0, false
	}
}

func (p *Parser) parseArith() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.at(TokenPlus) || p.at(TokenMinus) {
		op := ast.BinAdd
		if p.at(TokenMinus) {
			op = ast.BinSub
		}
		line := p.advance().Line
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(line, op, left, right)
	}
	return left, nil
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.at(TokenStar) || p.at(TokenDSlash) || p.at(TokenPercent) {
		var op ast.BinOpKind
		switch p.cur().Type {
		case TokenStar:
			op = ast.BinMul
		case TokenDSlash:
			op = ast.BinFloorDiv
		case TokenPercent:
			op = ast.BinMod
		}
		line := p.advance().Line
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(line, op, left, right)
	}
	return left, nil
}

func (p *Parser) parseFactor() (ast.Expr, error) {
	switch p.cur().Type {
	case TokenPlus:
		line := p.advance().Line
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(line, ast.UnaryPlus, operand), nil
	case TokenMinus:
		line := p.advance().Line
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(line, ast.UnaryMinus, operand), nil
	default:
		return p.parseAtom()
	}
}

func (p *Parser) parseAtom() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Type {
	case TokenNumber:
		p.advance()
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil || n > (1<<31-1) || n < -(1<<31) {
			return nil, &SyntaxError{Line: tok.Line, Message: "integer literal out of 32-bit range"}
		}
		return ast.NewIntLit(tok.Line, int32(n)), nil
	case TokenTrue:
		p.advance()
		return ast.NewIntLit(tok.Line, 1), nil
	case TokenFalse:
		p.advance()
		return ast.NewIntLit(tok.Line, 0), nil
	case TokenLParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case TokenName:
		return p.parseNameLedExpr()
	default:
		return nil, &SyntaxError{Line: tok.Line, Message: "expected an expression"}
	}
}

// parseNameLedExpr parses a walrus expression, a call, or a bare name
// reference, all of which start with a NAME token.
func (p *Parser) parseNameLedExpr() (ast.Expr, error) {
	nameTok := p.advance()

	if p.at(TokenWalrus) {
		line := p.advance().Line
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewNamedExpr(line, nameTok.Literal, value), nil
	}

	if p.at(TokenLParen) {
		return p.parseCall(nameTok)
	}

	return ast.NewName(nameTok.Line, nameTok.Literal), nil
}

func (p *Parser) parseCall(nameTok Token) (ast.Expr, error) {
	p.advance() // consume '('
	var args []ast.Expr
	for !p.at(TokenRParen) {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.at(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRParen, "')'"); err != nil {
		return nil, err
	}

	switch nameTok.Literal {
	case "print":
		if len(args) != 1 {
			return nil, &SyntaxError{Line: nameTok.Line, Message: "print expects a single argument"}
		}
		inner, ok := args[0].(*ast.Call)
		if !ok || inner.Kind != ast.CallInt {
			return nil, &SyntaxError{Line: nameTok.Line, Message: "print call not wrapping int(...)"}
		}
		return ast.NewCall(nameTok.Line, ast.CallPrint, "print", args), nil
	case "int":
		if len(args) != 1 {
			return nil, &SyntaxError{Line: nameTok.Line, Message: "int expects a single argument"}
		}
		return ast.NewCall(nameTok.Line, ast.CallInt, "int", args), nil
	case "input":
		if len(args) != 0 {
			return nil, &SyntaxError{Line: nameTok.Line, Message: "input takes no arguments"}
		}
		return ast.NewCall(nameTok.Line, ast.CallInput, "input", nil), nil
	default:
		return ast.NewCall(nameTok.Line, ast.CallUser, nameTok.Literal, args), nil
	}
}
