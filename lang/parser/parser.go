// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package parser implements a recursive-descent parser for the astc language.
//
// Design overview:
//
//   - Statements and blocks are parsed with straightforward recursive descent.
//     The same statement-list routine serves the program, if-bodies and
//     else-bodies; it stops in front of a closing brace.
//   - Expressions are parsed by precedence climbing: one left-associative
//     loop per precedence level, lowest first.
//   - The parser holds exactly one token. There is no peek token and no
//     backtracking; two-character operators are assembled from two
//     consecutive single-character tokens.
//   - Syntax errors are reported as Diagnostics and abandon only the
//     construct being parsed. A malformed number literal or excessive nesting
//     aborts the whole parse.
package parser

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/probechain/astc/lang/ast"
	"github.com/probechain/astc/lang/lexer"
	"github.com/probechain/astc/lang/token"
)

// DefaultMaxDepth is the nesting limit used when Config.MaxDepth is unset.
const DefaultMaxDepth = 4096

// ErrTooDeep is returned when expressions or conditionals nest deeper than
// Config.MaxDepth.
var ErrTooDeep = errors.New("nesting too deep")

// Config tunes a parse run. The zero value is usable.
type Config struct {
	// MaxDepth bounds the recursion depth of nested expressions and
	// conditionals. Each parenthesised group, call argument and if-statement nested
	// inside another counts one level; the arms of a flat else-if chain do
	// not add up. Zero or negative selects DefaultMaxDepth.
	MaxDepth int
}

// DefaultConfig contains the default settings.
var DefaultConfig = Config{
	MaxDepth: DefaultMaxDepth,
}

// Diagnostic is a recoverable syntax error.
type Diagnostic struct {
	Pos token.Position
	Msg string
}

func (d *Diagnostic) Error() string { return d.Pos.String() + ": " + d.Msg }

// ErrorHandler is called for every diagnostic as soon as it is detected.
type ErrorHandler func(d *Diagnostic)

// bailout is the panic value used to abort a parse on a fatal error. It is
// recovered in ParseProgram and never escapes the package.
type bailout struct{ err error }

// Parser holds the mutable state for a single parse run.
type Parser struct {
	filename string
	lex      *lexer.Lexer
	cur      token.Token // current token

	maxDepth int
	depth    int

	handler ErrorHandler
	diags   []*Diagnostic
}

// New creates a parser over source. handler may be nil.
func New(filename, source string, cfg Config, handler ErrorHandler) *Parser {
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Parser{
		filename: filename,
		lex:      lexer.New(filename, source),
		maxDepth: maxDepth,
		handler:  handler,
	}
}

// Parse is the public entry point. It parses source with DefaultConfig and
// returns the program together with the diagnostics collected on the way.
// A non-nil error means the parse was aborted and the program is nil.
func Parse(filename, source string) (*ast.Program, []*Diagnostic, error) {
	return DefaultConfig.Parse(filename, source, nil)
}

// Parse parses source with the receiver's settings, reporting every
// diagnostic to handler (which may be nil) as it is found.
func (c Config) Parse(filename, source string, handler ErrorHandler) (*ast.Program, []*Diagnostic, error) {
	p := New(filename, source, c, handler)
	prog, err := p.ParseProgram()
	return prog, p.Diagnostics(), err
}

// ParseProgram consumes the whole input. Statement lists stop in front of a
// closing brace; at the top level such a brace has nothing to close, so it is
// reported, skipped, and parsing resumes.
func (p *Parser) ParseProgram() (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			prog, err = nil, b.err
		}
	}()

	p.advance() // prime cur
	prog = &ast.Program{File: p.filename}
	for {
		prog.Statements = append(prog.Statements, p.parseStatements()...)
		if p.curIs(token.EOF) {
			break
		}
		p.errorf(p.cur.Pos, "unmatched '}'")
		p.advance()
	}
	return prog, nil
}

// Diagnostics returns the diagnostics reported so far, in source order.
func (p *Parser) Diagnostics() []*Diagnostic {
	return p.diags
}

// ---------------------------------------------------------------------------
// Token navigation helpers
// ---------------------------------------------------------------------------

// advance pulls the next token from the lexer. A lexical error is fatal.
func (p *Parser) advance() {
	tok, err := p.lex.Next()
	if err != nil {
		panic(bailout{err})
	}
	p.cur = tok
}

func (p *Parser) curIs(typ token.Type) bool { return p.cur.Type == typ }
func (p *Parser) curKeyword(kw string) bool { return p.cur.IsKeyword(kw) }
func (p *Parser) curSymbol(ch rune) bool    { return p.cur.IsSymbol(ch) }

// curOp reports whether the current token carries ch, whether the lexer
// classified it as a SYMBOL or as ILLEGAL. Operator halves such as '&', '|'
// and '!' are not symbols of the language and arrive as ILLEGAL tokens.
func (p *Parser) curOp(ch rune) bool {
	c, ok := p.cur.Char()
	return ok && c == ch
}

// expectSymbol consumes the current token if it is the symbol ch, otherwise
// it reports a diagnostic and leaves the token in place.
func (p *Parser) expectSymbol(ch rune, context string) (token.Token, bool) {
	if p.curSymbol(ch) {
		tok := p.cur
		p.advance()
		return tok, true
	}
	p.errorf(p.cur.Pos, "expected '%c' %s, got %s", ch, context, p.cur)
	return p.cur, false
}

// errorf records a diagnostic and hands it to the error handler.
func (p *Parser) errorf(pos token.Position, format string, args ...interface{}) {
	d := &Diagnostic{Pos: pos, Msg: fmt.Sprintf(format, args...)}
	p.diags = append(p.diags, d)
	log.Debug("Syntax error", "pos", pos, "msg", d.Msg)
	if p.handler != nil {
		p.handler(d)
	}
}

func (p *Parser) enter() {
	p.depth++
	if p.depth > p.maxDepth {
		panic(bailout{fmt.Errorf("%s: %w (limit %d)", p.cur.Pos, ErrTooDeep, p.maxDepth)})
	}
}

func (p *Parser) leave() { p.depth-- }

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// parseStatements parses statements until end of input or a '}', which is
// left for the caller that opened the block. Tokens that cannot start a
// statement are skipped without a diagnostic.
func (p *Parser) parseStatements() []ast.Statement {
	var stmts []ast.Statement
	for !p.curIs(token.EOF) && !p.curSymbol('}') {
		switch {
		case p.curKeyword(token.If):
			if s := p.parseIfStmt(); s != nil {
				stmts = append(stmts, s)
			}
		case p.curKeyword(token.Let), p.curKeyword(token.Const):
			if s := p.parseVarDecl(); s != nil {
				stmts = append(stmts, s)
			}
		case p.curIs(token.IDENT):
			if s := p.parseCallStmt(); s != nil {
				stmts = append(stmts, s)
			}
		default:
			log.Trace("Skipping token", "pos", p.cur.Pos, "token", p.cur)
			p.advance()
		}
	}
	return stmts
}

// parseVarDecl parses "let|const IDENT [ : TYPENAME ] = expr". The trailing
// semicolon is not part of the declaration; the statement loop skips it.
func (p *Parser) parseVarDecl() *ast.VarDecl {
	tok := p.cur // 'let' or 'const'
	p.advance()

	if !p.curIs(token.IDENT) {
		p.errorf(p.cur.Pos, "expected identifier after '%s', got %s", tok.Literal, p.cur)
		return nil
	}
	name := &ast.Ident{Token: p.cur, Value: p.cur.Literal}
	p.advance()

	var typ *ast.TypeName
	if p.curSymbol(':') {
		p.advance()
		if p.curIs(token.TYPENAME) {
			typ = &ast.TypeName{Token: p.cur, Name: p.cur.Literal}
			p.advance()
		} else {
			// Lenient: the declaration continues with an unknown type.
			log.Debug("No type name after ':'", "pos", p.cur.Pos, "name", name.Value, "got", p.cur)
		}
	}

	if _, ok := p.expectSymbol('=', "in declaration of "+name.Value); !ok {
		return nil
	}
	val := p.parseExpression()
	if val == nil {
		return nil
	}
	return &ast.VarDecl{
		Token: tok,
		Const: tok.Literal == token.Const,
		Name:  name,
		Type:  typ,
		Value: val,
	}
}

// parseCallStmt parses "IDENT ( args )" in statement position.
func (p *Parser) parseCallStmt() *ast.CallStmt {
	tok := p.cur // callee
	p.advance()

	if _, ok := p.expectSymbol('(', "after "+tok.Literal); !ok {
		return nil
	}
	args, ok := p.parseArgs(tok)
	if !ok {
		return nil
	}
	return &ast.CallStmt{
		Token: tok,
		Name:  &ast.Ident{Token: tok, Value: tok.Literal},
		Args:  args,
	}
}

// parseArgs parses "[ expr { , expr } ] )" once the opening parenthesis has
// been consumed. Every comma must be followed by an argument.
func (p *Parser) parseArgs(callee token.Token) ([]ast.Expression, bool) {
	var args []ast.Expression
	if !p.curSymbol(')') {
		for {
			arg := p.parseExpression()
			if arg == nil {
				return nil, false
			}
			args = append(args, arg)
			if !p.curSymbol(',') {
				break
			}
			p.advance()
		}
	}
	if _, ok := p.expectSymbol(')', "to close call to "+callee.Literal); !ok {
		return nil, false
	}
	return args, true
}

// parseIfStmt parses
//
//	if ( expr ) { stmts } [ else if ... | else { stmts } ]
//
// An else-if is attached directly as the else-branch, without a wrapping
// block. The arms of an else-if chain are parsed iteratively and share one
// level of depth. Any missing delimiter abandons the whole conditional.
func (p *Parser) parseIfStmt() *ast.IfStmt {
	p.enter()
	defer p.leave()

	head := p.parseIfArm()
	if head == nil {
		return nil
	}
	tail := head
	for p.curKeyword(token.Else) {
		p.advance()

		if p.curKeyword(token.If) {
			arm := p.parseIfArm()
			if arm == nil {
				return nil
			}
			tail.Else = arm
			tail = arm
			continue
		}

		open, ok := p.expectSymbol('{', "after 'else'")
		if !ok {
			return nil
		}
		body := p.parseStatements()
		if _, ok := p.expectSymbol('}', "to close else body"); !ok {
			return nil
		}
		tail.Else = &ast.BlockStmt{Token: open, Statements: body}
		break
	}
	return head
}

// parseIfArm parses "if ( expr ) { stmts }" without any else-branch.
func (p *Parser) parseIfArm() *ast.IfStmt {
	tok := p.cur // 'if'
	p.advance()

	if _, ok := p.expectSymbol('(', "after 'if'"); !ok {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expectSymbol(')', "after if condition"); !ok {
		return nil
	}
	if _, ok := p.expectSymbol('{', "to open if body"); !ok {
		return nil
	}
	then := p.parseStatements()
	if _, ok := p.expectSymbol('}', "to close if body"); !ok {
		return nil
	}
	return &ast.IfStmt{Token: tok, Condition: cond, Then: then}
}
