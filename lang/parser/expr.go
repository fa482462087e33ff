// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package parser

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/probechain/astc/lang/ast"
	"github.com/probechain/astc/lang/token"
)

// ---------------------------------------------------------------------------
// Expressions
//
// Precedence, lowest to highest:
//
//	logical         &&  ||
//	comparison      ==  !=  <  >  <=  >=
//	additive        +  -
//	multiplicative  *  /
//	factor          literal, identifier, call, ( expr )
//
// All binary levels are left-associative. Every parse function returns nil
// after reporting a diagnostic.
// ---------------------------------------------------------------------------

func (p *Parser) parseExpression() ast.Expression {
	p.enter()
	defer p.leave()
	return p.parseLogical()
}

func (p *Parser) parseLogical() ast.Expression {
	left := p.parseComparison()
	if left == nil {
		return nil
	}
	for {
		opTok := p.cur
		var op ast.LogicOp
		switch {
		case p.curOp('&'):
			op = ast.And
		case p.curOp('|'):
			op = ast.Or
		default:
			return left
		}
		if !p.completeOp(opTok, opTok.Literal) {
			return nil
		}
		right := p.parseComparison()
		if right == nil {
			return nil
		}
		left = &ast.LogicalExpr{Token: opTok, Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parseAdditive()
	if left == nil {
		return nil
	}
	for {
		opTok := p.cur
		var op ast.CmpOp
		switch {
		case p.curOp('='):
			if !p.completeOp(opTok, "=") {
				return nil
			}
			op = ast.Eq
		case p.curOp('!'):
			if !p.completeOp(opTok, "=") {
				return nil
			}
			op = ast.Ne
		case p.curOp('<'):
			op = p.relational(ast.Lt, ast.Le)
		case p.curOp('>'):
			op = p.relational(ast.Gt, ast.Ge)
		default:
			return left
		}
		right := p.parseAdditive()
		if right == nil {
			return nil
		}
		left = &ast.ComparisonExpr{Token: opTok, Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	if left == nil {
		return nil
	}
	for {
		opTok := p.cur
		var op ast.ArithOp
		switch {
		case p.curSymbol('+'):
			op = ast.Add
		case p.curSymbol('-'):
			op = ast.Sub
		default:
			return left
		}
		p.advance()
		right := p.parseMultiplicative()
		if right == nil {
			return nil
		}
		left = &ast.ArithmeticExpr{Token: opTok, Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseFactor()
	if left == nil {
		return nil
	}
	for {
		opTok := p.cur
		var op ast.ArithOp
		switch {
		case p.curSymbol('*'):
			op = ast.Mul
		case p.curSymbol('/'):
			op = ast.Div
		default:
			return left
		}
		p.advance()
		right := p.parseFactor()
		if right == nil {
			return nil
		}
		left = &ast.ArithmeticExpr{Token: opTok, Left: left, Op: op, Right: right}
	}
}

// parseFactor parses a literal, an identifier, a call or a parenthesised
// expression. A group whose closing parenthesis is missing still yields its
// inner expression.
func (p *Parser) parseFactor() ast.Expression {
	tok := p.cur
	switch {
	case p.curIs(token.IDENT):
		p.advance()
		name := &ast.Ident{Token: tok, Value: tok.Literal}
		if !p.curSymbol('(') {
			return name
		}
		p.advance()
		args, ok := p.parseArgs(tok)
		if !ok {
			return nil
		}
		return &ast.CallExpr{Token: tok, Name: name, Args: args}

	case p.curIs(token.NUMBER):
		p.advance()
		return &ast.NumberLiteral{Token: tok, Value: tok.Value}

	case p.curIs(token.STRING):
		p.advance()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}

	case p.curSymbol('('):
		p.advance()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if p.curSymbol(')') {
			p.advance()
		} else {
			log.Debug("Unclosed parenthesis", "open", tok.Pos, "got", p.cur)
		}
		return inner
	}
	p.errorf(tok.Pos, "expected expression, got %s", tok)
	return nil
}

// completeOp consumes the first half of a two-character operator and
// requires second to follow it immediately.
func (p *Parser) completeOp(first token.Token, second string) bool {
	p.advance()
	if p.cur.Literal != second || !(p.curIs(token.SYMBOL) || p.curIs(token.ILLEGAL)) {
		p.errorf(p.cur.Pos, "expected '%s' to complete operator '%s%s', got %s",
			second, first.Literal, second, p.cur)
		return false
	}
	p.advance()
	return true
}

// relational consumes '<' or '>' and an optional '='.
func (p *Parser) relational(strict, orEqual ast.CmpOp) ast.CmpOp {
	p.advance()
	if p.curSymbol('=') {
		p.advance()
		return orEqual
	}
	return strict
}
