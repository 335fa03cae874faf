// Package parser implements the recursive-descent parser for the Hinglish
// source language.
//
// Parser Architecture:
//
// The parser uses precedence-climbing recursive descent, one function per
// grammar production, in ascending precedence order:
//
//	assignment -> logic_or -> logic_and -> equality -> comparison
//	           -> term -> factor -> unary -> call -> primary
//
// Token Management:
//
// Like a classic two-token-lookahead parser, curTok and peekTok are kept in
// lockstep: curTok is the token being consumed and peekTok is the one after
// it. Every production decides on curTok alone; an assignment, for example,
// is recognized by parsing the left-hand side as an expression and then
// checking whether '=' follows, without backtracking.
//
// Error Handling:
//
// Unlike the analyzer, the parser does not accumulate diagnostics: no error
// recovery is attempted — the first unrecoverable mismatch raises a
// *ParseError and halts. Parse returns that single diagnostic wrapped in
// diag.ErrParse.
package parser

import (
	"fmt"

	"github.com/hinglish-lang/hpc/pkg/ast"
	"github.com/hinglish-lang/hpc/pkg/diag"
	"github.com/hinglish-lang/hpc/pkg/lexer"
	"github.com/hinglish-lang/hpc/pkg/token"
)

const maxParams = 255

// ParseError is raised on the first unrecoverable grammar mismatch. It
// satisfies the error interface and formats as:
// "[line L] Error at '<lexeme>': <message>".
type ParseError struct {
	Pos     token.Position
	Lexeme  string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Pos.Line, e.Lexeme, e.Message)
}

// Parser converts a token stream into an AST. Construct one with New per
// source file; a Parser is stateful and single-use.
type Parser struct {
	l *lexer.Lexer

	curTok  token.Token
	peekTok token.Token
}

// New creates a Parser over the given source text, primed with the first
// two tokens.
func New(src string) *Parser {
	p := &Parser{l: lexer.New(src)}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

func (p *Parser) check(kind token.Kind) bool {
	return p.curTok.Kind == kind
}

func (p *Parser) checkType() bool {
	return token.IsTypeKeyword(p.curTok.Kind)
}

// match advances and returns true if the current token has kind; otherwise
// it leaves the cursor untouched and returns false.
func (p *Parser) match(kind token.Kind) bool {
	if p.check(kind) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) errorAt(tok token.Token, format string, args ...any) *ParseError {
	return &ParseError{Pos: tok.Pos, Lexeme: tok.Literal, Message: fmt.Sprintf(format, args...)}
}

// consume advances past the current token if it has kind, otherwise panics
// with a *ParseError carrying message. Parse recovers this panic at the top
// level, halting at the first unrecoverable mismatch.
func (p *Parser) consume(kind token.Kind, message string) token.Token {
	if p.check(kind) {
		tok := p.curTok
		p.next()
		return tok
	}
	panic(p.errorAt(p.curTok, "%s", message))
}

func (p *Parser) consumeType(message string) ast.Type {
	if !p.checkType() {
		panic(p.errorAt(p.curTok, "%s", message))
	}
	typ, _ := ast.TypeFromKeyword(p.curTok.Kind)
	p.next()
	return typ
}

// Parse parses the whole source as a Program. On the first unrecoverable
// grammar error it returns a non-nil diagnostic wrapped in diag.ErrParse;
// the returned *ast.Program is nil in that case.
func (p *Parser) Parse() (program *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			program = nil
			err = fmt.Errorf("%w: %s", diag.ErrParse, pe.Error())
		}
	}()

	prog := &ast.Program{}
	for !p.check(token.EOF) {
		prog.Statements = append(prog.Statements, p.declaration())
	}
	return prog, nil
}

// declaration := varDecl | funcDecl | statement
func (p *Parser) declaration() ast.Statement {
	if p.checkType() {
		return p.varDeclaration()
	}
	if p.check(token.Func) {
		return p.funcDeclaration()
	}
	return p.statement()
}

// varDecl := type IDENT ('=' expression)? ';'
func (p *Parser) varDeclaration() *ast.VarDecl {
	pos := p.curTok.Pos
	declaredType := p.consumeType("Expect type.")
	nameTok := p.consume(token.Identifier, "Expect variable name.")

	var init ast.Expression
	if p.match(token.Assign) {
		init = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")

	return &ast.VarDecl{DeclaredType: declaredType, Name: nameTok.Literal, Initializer: init, Position: pos}
}

// funcDecl := 'vidhi' IDENT '(' params? ')' type? block
func (p *Parser) funcDeclaration() *ast.FuncDecl {
	pos := p.curTok.Pos
	p.next() // consume 'vidhi'
	nameTok := p.consume(token.Identifier, "Expect function name.")
	p.consume(token.LParen, "Expect '(' after function name.")

	var params []*ast.Param
	if !p.check(token.RParen) {
		for {
			if len(params) >= maxParams {
				panic(p.errorAt(p.curTok, "Can't have more than %d parameters.", maxParams))
			}
			paramPos := p.curTok.Pos
			paramType := p.consumeType("Expect parameter type.")
			paramName := p.consume(token.Identifier, "Expect parameter name.")
			params = append(params, &ast.Param{DeclaredType: paramType, Name: paramName.Literal, Position: paramPos})
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RParen, "Expect ')' after parameters.")

	var returnType ast.Type
	hasReturnType := p.checkType()
	if hasReturnType {
		returnType = p.consumeType("Expect return type.")
	}

	if !p.check(token.LBrace) {
		panic(p.errorAt(p.curTok, "Expect '{' before function body."))
	}
	body := p.block()

	return &ast.FuncDecl{
		Name:          nameTok.Literal,
		Params:        params,
		ReturnType:    returnType,
		HasReturnType: hasReturnType,
		Body:          body,
		Position:      pos,
	}
}

// statement := ifStmt | whileStmt | forStmt | printStmt
//            | returnStmt | block | exprStmt
func (p *Parser) statement() ast.Statement {
	switch {
	case p.check(token.If):
		return p.ifStatement()
	case p.check(token.While):
		return p.whileStatement()
	case p.check(token.For):
		return p.forStatement()
	case p.check(token.Print):
		return p.printStatement()
	case p.check(token.Return):
		return p.returnStatement()
	case p.check(token.LBrace):
		return p.block()
	default:
		return p.expressionStatement()
	}
}

// ifStmt := 'agar' '(' expression ')' statement ('nahi_to' statement)?
func (p *Parser) ifStatement() *ast.If {
	pos := p.curTok.Pos
	p.next() // 'agar'
	p.consume(token.LParen, "Expect '(' after 'agar'.")
	cond := p.expression()
	p.consume(token.RParen, "Expect ')' after if condition.")
	then := p.statement()

	var elseBranch ast.Statement
	if p.match(token.Else) {
		elseBranch = p.statement()
	}
	return &ast.If{Cond: cond, Then: then, Else: elseBranch, Position: pos}
}

// whileStmt := 'jabtak' '(' expression ')' statement
func (p *Parser) whileStatement() *ast.While {
	pos := p.curTok.Pos
	p.next() // 'jabtak'
	p.consume(token.LParen, "Expect '(' after 'jabtak'.")
	cond := p.expression()
	p.consume(token.RParen, "Expect ')' after while condition.")
	body := p.statement()
	return &ast.While{Cond: cond, Body: body, Position: pos}
}

// forStmt := 'karo' '(' (varDecl | exprStmt | ';') expression? ';' expression? ')' statement
func (p *Parser) forStatement() *ast.For {
	pos := p.curTok.Pos
	p.next() // 'karo'
	p.consume(token.LParen, "Expect '(' after 'karo'.")

	var init ast.Statement
	if p.match(token.Semicolon) {
		init = nil
	} else if p.checkType() {
		init = p.varDeclaration()
	} else {
		init = p.expressionStatement()
	}

	var cond ast.Expression
	if !p.check(token.Semicolon) {
		cond = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after loop condition.")

	var incr ast.Expression
	if !p.check(token.RParen) {
		incr = p.expression()
	}
	p.consume(token.RParen, "Expect ')' after for clauses.")

	body := p.statement()
	return &ast.For{Init: init, Cond: cond, Incr: incr, Body: body, Position: pos}
}

// printStmt := 'likho' '(' expression ')' ';'
func (p *Parser) printStatement() *ast.PrintStmt {
	pos := p.curTok.Pos
	p.next() // 'likho'
	p.consume(token.LParen, "Expect '(' after 'likho'.")
	expr := p.expression()
	p.consume(token.RParen, "Expect ')' after expression.")
	p.consume(token.Semicolon, "Expect ';' after print statement.")
	return &ast.PrintStmt{Expr: expr, Position: pos}
}

// returnStmt := 'wapas' expression? ';'
func (p *Parser) returnStatement() *ast.Return {
	pos := p.curTok.Pos
	p.next() // 'wapas'
	var value ast.Expression
	if !p.check(token.Semicolon) {
		value = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after return value.")
	return &ast.Return{Value: value, Position: pos}
}

// exprStmt := expression ';'
func (p *Parser) expressionStatement() *ast.ExpressionStmt {
	pos := p.curTok.Pos
	expr := p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	return &ast.ExpressionStmt{Expr: expr, Position: pos}
}

// block := '{' declaration* '}'
func (p *Parser) block() *ast.Block {
	pos := p.curTok.Pos
	p.consume(token.LBrace, "Expect '{'.")
	var statements []ast.Statement
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		statements = append(statements, p.declaration())
	}
	p.consume(token.RBrace, "Expect '}' after block.")
	return &ast.Block{Statements: statements, Position: pos}
}

// ---- Expressions, ascending precedence -------------------------------------

func (p *Parser) expression() ast.Expression {
	return p.assignment()
}

// assignment := logic_or ('=' assignment)?   ; right-assoc
func (p *Parser) assignment() ast.Expression {
	expr := p.logicOr()

	if p.check(token.Assign) {
		eqTok := p.curTok
		p.next()
		value := p.assignment()

		if v, ok := expr.(*ast.Variable); ok {
			return &ast.Assignment{Target: v.Name, Value: value, Position: v.Position}
		}
		panic(p.errorAt(eqTok, "Invalid assignment target."))
	}
	return expr
}

// logic_or := logic_and ('ya' logic_and)*
func (p *Parser) logicOr() ast.Expression {
	expr := p.logicAnd()
	for p.check(token.Or) {
		pos := p.curTok.Pos
		op := p.curTok.Kind
		p.next()
		right := p.logicAnd()
		expr = &ast.Logical{Left: expr, Op: op, Right: right, Position: pos}
	}
	return expr
}

// logic_and := equality ('aur' equality)*
func (p *Parser) logicAnd() ast.Expression {
	expr := p.equality()
	for p.check(token.And) {
		pos := p.curTok.Pos
		op := p.curTok.Kind
		p.next()
		right := p.equality()
		expr = &ast.Logical{Left: expr, Op: op, Right: right, Position: pos}
	}
	return expr
}

// equality := comparison (('==' | '!=') comparison)*
func (p *Parser) equality() ast.Expression {
	expr := p.comparison()
	for p.check(token.Equal) || p.check(token.NotEqual) {
		pos := p.curTok.Pos
		op := p.curTok.Kind
		p.next()
		right := p.comparison()
		expr = &ast.Binary{Left: expr, Op: op, Right: right, Position: pos}
	}
	return expr
}

// comparison := term (('<'|'>'|'<='|'>=') term)*
func (p *Parser) comparison() ast.Expression {
	expr := p.term()
	for p.check(token.Less) || p.check(token.Greater) || p.check(token.LessEq) || p.check(token.GreaterEq) {
		pos := p.curTok.Pos
		op := p.curTok.Kind
		p.next()
		right := p.term()
		expr = &ast.Binary{Left: expr, Op: op, Right: right, Position: pos}
	}
	return expr
}

// term := factor (('+'|'-') factor)*
func (p *Parser) term() ast.Expression {
	expr := p.factor()
	for p.check(token.Plus) || p.check(token.Minus) {
		pos := p.curTok.Pos
		op := p.curTok.Kind
		p.next()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Op: op, Right: right, Position: pos}
	}
	return expr
}

// factor := unary (('*'|'/'|'%') unary)*
func (p *Parser) factor() ast.Expression {
	expr := p.unary()
	for p.check(token.Star) || p.check(token.Slash) || p.check(token.Percent) {
		pos := p.curTok.Pos
		op := p.curTok.Kind
		p.next()
		right := p.unary()
		expr = &ast.Binary{Left: expr, Op: op, Right: right, Position: pos}
	}
	return expr
}

// unary := ('-' | 'nahi') unary | call
func (p *Parser) unary() ast.Expression {
	if p.check(token.Minus) || p.check(token.Not) {
		pos := p.curTok.Pos
		op := p.curTok.Kind
		p.next()
		operand := p.unary()
		return &ast.Unary{Op: op, Operand: operand, Position: pos}
	}
	return p.call()
}

// call := primary ('(' args? ')')*
func (p *Parser) call() ast.Expression {
	expr := p.primary()
	for p.check(token.LParen) {
		expr = p.finishCall(expr)
	}
	return expr
}

// args := expression (',' expression)*  ; <=255 args
func (p *Parser) finishCall(callee ast.Expression) ast.Expression {
	pos := p.curTok.Pos
	p.next() // consume '('

	var args []ast.Expression
	if !p.check(token.RParen) {
		for {
			if len(args) >= maxParams {
				panic(p.errorAt(p.curTok, "Can't have more than %d arguments.", maxParams))
			}
			args = append(args, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RParen, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Args: args, Position: pos}
}

// primary := INT_LIT | FLOAT_LIT | STR_LIT | CHAR_LIT
//          | IDENT | '(' expression ')'
func (p *Parser) primary() ast.Expression {
	tok := p.curTok

	switch tok.Kind {
	case token.IntLiteral:
		p.next()
		return &ast.Literal{Kind: ast.IntLit, Value: tok.Literal, Position: tok.Pos}
	case token.FloatLiteral:
		p.next()
		return &ast.Literal{Kind: ast.FloatLit, Value: tok.Literal, Position: tok.Pos}
	case token.StringLiteral:
		p.next()
		return &ast.Literal{Kind: ast.StringLit, Value: tok.Literal, Position: tok.Pos}
	case token.CharLiteral:
		p.next()
		return &ast.Literal{Kind: ast.CharLit, Value: tok.Literal, Position: tok.Pos}
	case token.Identifier:
		p.next()
		return &ast.Variable{Name: tok.Literal, Position: tok.Pos}
	case token.LParen:
		p.next()
		expr := p.expression()
		p.consume(token.RParen, "Expect ')' after expression.")
		return &ast.Grouping{Expr: expr, Position: tok.Pos}
	case token.Print:
		// Friendly diagnostic for `likho` referenced outside a print
		// statement, e.g. `x = likho;`.
		panic(p.errorAt(tok, "Unexpected 'likho'. Did you mean to use it as a statement?"))
	default:
		panic(p.errorAt(tok, "Expect expression."))
	}
}
