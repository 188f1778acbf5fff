// Package parser implements Gekko's recursive-descent parser: tokens to a
// statement list, precedence encoded purely by call order (declaration
// order in the spec grammar, lowest precedence first).
package parser

import (
	"github.com/dimetcm/gekko/internal/ast"
	"github.com/dimetcm/gekko/internal/gkerrors"
	"github.com/dimetcm/gekko/internal/token"
	"github.com/dimetcm/gekko/internal/value"
)

const maxArgs = 255

// parseError is an internal control-flow signal used to unwind to the
// nearest Synchronize point; it is never returned to the caller.
type parseError struct{ tok token.Token }

func (parseError) Error() string { return "parse error" }

// Parser consumes a token stream produced by package scanner.
type Parser struct {
	tokens   []token.Token
	current  int
	reporter *gkerrors.Reporter
}

// New constructs a Parser over tokens, reporting syntax errors to reporter.
func New(tokens []token.Token, reporter *gkerrors.Reporter) *Parser {
	return &Parser{tokens: tokens, reporter: reporter}
}

// Parse runs the parser to completion, returning every statement it could
// recover to. Errors are reported as a side effect; the caller inspects
// reporter.HadError() to decide whether to resolve/execute the result.
func (p *Parser) Parse() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.atEnd() {
		if d := p.declaration(); d != nil {
			stmts = append(stmts, d)
		}
	}
	return stmts
}

// ---- declarations ----

func (p *Parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); ok {
				p.synchronize()
				stmt = nil
				return
			}
			panic(r)
		}
	}()

	switch {
	case p.match(token.Class):
		return p.classDecl()
	case p.match(token.Var):
		return p.varDecl()
	case p.match(token.Fun):
		return p.funDecl(ast.FreeFunction)
	default:
		return p.statement()
	}
}

func (p *Parser) classDecl() ast.Stmt {
	name := p.consume(token.Identifier, "Expect class name.")

	var superclass *ast.Variable
	if p.match(token.Less) {
		superName := p.consume(token.Identifier, "Expect superclass name.")
		superclass = &ast.Variable{Name: superName}
	}

	p.consume(token.LeftBrace, "Expect '{' before class body.")

	var methods []*ast.FunctionDecl
	for !p.check(token.RightBrace) && !p.atEnd() {
		kind := ast.Method
		if p.match(token.Class) {
			kind = ast.StaticMethod
		}
		methodName := p.consume(token.Identifier, "Expect method name.")
		if kind != ast.StaticMethod && !p.check(token.LeftParen) {
			// getter: no parameter list at all
			p.consume(token.LeftBrace, "Expect '{' before getter body.")
			body := p.blockBody()
			methods = append(methods, &ast.FunctionDecl{Name: methodName, Body: body, Kind: ast.Getter})
			continue
		}
		methods = append(methods, p.funTail(methodName, kind))
	}

	p.consume(token.RightBrace, "Expect '}' after class body.")
	return &ast.ClassDecl{Name: name, Superclass: superclass, Methods: methods}
}

func (p *Parser) funDecl(kind ast.FunctionKind) ast.Stmt {
	name := p.consume(token.Identifier, "Expect function name.")
	return p.funTail(name, kind)
}

// funTail parses "(" params? ")" block, assuming name has been consumed.
func (p *Parser) funTail(name token.Token, kind ast.FunctionKind) *ast.FunctionDecl {
	p.consume(token.LeftParen, "Expect '(' after name.")
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArgs {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(token.Identifier, "Expect parameter name."))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after parameters.")
	p.consume(token.LeftBrace, "Expect '{' before body.")
	body := p.blockBody()
	return &ast.FunctionDecl{Name: name, Params: params, Body: body, Kind: kind}
}

func (p *Parser) varDecl() ast.Stmt {
	name := p.consume(token.Identifier, "Expect variable name.")
	var init ast.Expr
	if p.match(token.Equal) {
		init = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")
	return &ast.VarDecl{Name: name, Initializer: init}
}

// ---- statements ----

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.Print):
		return p.printStmt()
	case p.match(token.If):
		return p.ifStmt()
	case p.match(token.While):
		return p.whileStmt()
	case p.match(token.For):
		return p.forStmt()
	case p.match(token.Break):
		return p.breakStmt()
	case p.match(token.Return):
		return p.returnStmt()
	case p.match(token.LeftBrace):
		return &ast.Block{Stmts: p.blockBody()}
	default:
		return p.exprStmt()
	}
}

func (p *Parser) blockBody() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		if d := p.declaration(); d != nil {
			stmts = append(stmts, d)
		}
	}
	p.consume(token.RightBrace, "Expect '}' after block.")
	return stmts
}

func (p *Parser) printStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, "Expect ';' after value.")
	return &ast.PrintStmt{Expr: expr}
}

func (p *Parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	return &ast.ExpressionStmt{Expr: expr}
}

func (p *Parser) ifStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(token.RightParen, "Expect ')' after if condition.")
	then := p.statement()
	var els ast.Stmt
	if p.match(token.Else) {
		els = p.statement()
	}
	return &ast.If{Cond: cond, Then: then, Else: els}
}

func (p *Parser) whileStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")
	body := p.statement()
	return &ast.While{Cond: cond, Body: body}
}

// forStmt desugars `for(init; cond; incr) body` into
// `{ init; while(cond) { body; incr; } }`, with absent cond defaulting to
// truthy and absent init/incr simply omitted.
func (p *Parser) forStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.match(token.Semicolon):
		init = nil
	case p.match(token.Var):
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after loop condition.")

	var incr ast.Expr
	if !p.check(token.RightParen) {
		incr = p.expression()
	}
	p.consume(token.RightParen, "Expect ')' after for clauses.")

	body := p.statement()

	if incr != nil {
		body = &ast.Block{Stmts: []ast.Stmt{body, &ast.ExpressionStmt{Expr: incr}}}
	}
	if cond == nil {
		cond = &ast.Literal{Value: value.Boolean(true)}
	}
	body = &ast.While{Cond: cond, Body: body}

	if init != nil {
		body = &ast.Block{Stmts: []ast.Stmt{init, body}}
	}
	return body
}

func (p *Parser) breakStmt() ast.Stmt {
	keyword := p.previous()
	p.consume(token.Semicolon, "Expect ';' after 'break'.")
	return &ast.Break{Keyword: keyword}
}

func (p *Parser) returnStmt() ast.Stmt {
	keyword := p.previous()
	var val ast.Expr
	if !p.check(token.Semicolon) {
		val = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after return value.")
	return &ast.Return{Keyword: keyword, Value: val}
}

// ---- expressions, lowest to highest precedence ----

func (p *Parser) expression() ast.Expr { return p.comma() }

func (p *Parser) comma() ast.Expr {
	expr := p.assignment()
	for p.match(token.Comma) {
		op := p.previous()
		right := p.assignment()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) assignment() ast.Expr {
	expr := p.ternary()

	if p.match(token.Equal) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.Variable:
			return &ast.Assignment{Name: target.Name, Expr: value}
		case *ast.Get:
			return &ast.Set{Owner: target.Owner, Name: target.Name, Value: value}
		default:
			p.errorAt(equals, "Invalid assignment target.")
			return expr
		}
	}
	return expr
}

func (p *Parser) ternary() ast.Expr {
	expr := p.or()
	if p.match(token.Question) {
		then := p.expression()
		p.consume(token.Colon, "Expect ':' in ternary expression.")
		els := p.expression()
		expr = &ast.TernaryConditional{Cond: expr, Then: then, Else: els}
	}
	return expr
}

func (p *Parser) or() ast.Expr {
	expr := p.and()
	if p.match(token.Or) {
		op := p.previous()
		right := p.and()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) and() ast.Expr {
	expr := p.equality()
	if p.match(token.And) {
		op := p.previous()
		right := p.equality()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.BangEqual, token.EqualEqual) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.Greater, token.GreaterEqual, token.Less, token.LessEqual) {
		op := p.previous()
		right := p.term()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.Minus, token.Plus) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.Slash, token.Star) {
		op := p.previous()
		right := p.unary()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

// leadingBinary are the binary operators that cannot also start a unary
// expression (unlike `-` and `+`, which double as unary operators).
var leadingBinary = map[token.Type]bool{
	token.Slash:        true,
	token.Star:         true,
	token.BangEqual:    true,
	token.EqualEqual:   true,
	token.Greater:      true,
	token.GreaterEqual: true,
	token.Less:         true,
	token.LessEqual:    true,
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus, token.Plus) {
		op := p.previous()
		right := p.unary()
		return &ast.Unary{Op: op, Expr: right}
	}
	if leadingBinary[p.peek().Type] {
		tok := p.peek()
		p.errorAt(tok, "Binary operator appearing at the beginning of an expression")
		p.advance()
		return p.unary()
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			name := p.consume(token.Identifier, "Expect property name after '.'.")
			expr = &ast.Get{Owner: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArgs {
				p.errorAtCurrent("Can't have more than 255 arguments.")
			}
			args = append(args, p.assignment())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.consume(token.RightParen, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Paren: paren, Args: args}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.False):
		return &ast.Literal{Value: value.Boolean(false)}
	case p.match(token.True):
		return &ast.Literal{Value: value.Boolean(true)}
	case p.match(token.Nil):
		return &ast.Literal{Value: value.Nil{}}
	case p.match(token.Number, token.String):
		return &ast.Literal{Value: p.previous().Literal.(value.Value)}
	case p.match(token.Super):
		keyword := p.previous()
		p.consume(token.Dot, "Expect '.' after 'super'.")
		method := p.consume(token.Identifier, "Expect superclass method name.")
		return &ast.Super{Keyword: keyword, Method: method}
	case p.match(token.This):
		return &ast.This{Keyword: p.previous()}
	case p.match(token.Identifier):
		return &ast.Variable{Name: p.previous()}
	case p.match(token.LeftParen):
		expr := p.expression()
		p.consume(token.RightParen, "Expect ')' after expression.")
		return &ast.Grouping{Expr: expr}
	case p.match(token.Fun):
		return p.lambda()
	}
	panic(p.errorAtCurrent("Expect expression."))
}

func (p *Parser) lambda() ast.Expr {
	keyword := p.previous()
	p.consume(token.LeftParen, "Expect '(' after 'fun'.")
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArgs {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(token.Identifier, "Expect parameter name."))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after parameters.")
	p.consume(token.LeftBrace, "Expect '{' before lambda body.")
	body := p.blockBody()
	return &ast.Lambda{Keyword: keyword, Params: params, Body: body}
}

// ---- token-stream helpers ----

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(t token.Type) bool {
	if p.atEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) atEnd() bool { return p.peek().Type == token.EOF }

func (p *Parser) peek() token.Token { return p.tokens[p.current] }

func (p *Parser) previous() token.Token { return p.tokens[p.current-1] }

func (p *Parser) consume(t token.Type, message string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	panic(p.errorAtCurrent(message))
}

func (p *Parser) errorAtCurrent(message string) parseError {
	return p.errorAt(p.peek(), message)
}

func (p *Parser) errorAt(tok token.Token, message string) parseError {
	p.reporter.ErrorAtToken(tok, message)
	return parseError{tok: tok}
}

// synchronize discards tokens until a probable statement boundary, so one
// syntax error does not prevent later statements from being parsed.
func (p *Parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		switch p.peek().Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}
