// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package ast defines the Abstract Syntax Tree for the astc language.
//
// Design overview:
//
//   - All AST nodes implement the Node interface via Pos, TokenLiteral and
//     String.
//   - Statements and Expressions each have a marker interface with an
//     unexported method, so the set of variants is closed to this package and
//     consumers dispatch with type switches.
//   - ElseBranch narrows the else-arm of an IfStmt to *IfStmt or *BlockStmt.
//   - The tree is a strict forest: every child belongs to exactly one parent.
package ast

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/probechain/astc/lang/token"
)

// ---------------------------------------------------------------------------
// Core interfaces
// ---------------------------------------------------------------------------

// Node is the base interface that every AST node must implement.
type Node interface {
	// Pos returns the position of the token that originated this node.
	Pos() token.Position

	// TokenLiteral returns the literal value of the token that originated
	// this node. Used primarily for debugging and testing.
	TokenLiteral() string

	// String returns a compact, fully parenthesised rendering of the node
	// suitable for unit tests and debug output.
	String() string
}

// Expression is a marker interface for all expression nodes.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a marker interface for all statement nodes.
type Statement interface {
	Node
	statementNode()
}

// ElseBranch is the else-arm of an IfStmt: either another *IfStmt (an
// else-if chain) or a *BlockStmt.
type ElseBranch interface {
	Statement
	elseBranch()
}

// ---------------------------------------------------------------------------
// Program, root of every parse tree
// ---------------------------------------------------------------------------

// Program is the top-level AST node. It holds the statements of one source
// text in source order.
type Program struct {
	File       string
	Statements []Statement
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{File: p.File, Line: 1, Column: 1}
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteByte('\n')
	}
	return out.String()
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// ArithOp is an arithmetic operator.
type ArithOp int

const (
	Add ArithOp = iota // +
	Sub                // -
	Mul                // *
	Div                // /
)

func (op ArithOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	}
	return "ArithOp(" + strconv.Itoa(int(op)) + ")"
}

// CmpOp is a comparison operator.
type CmpOp int

const (
	Eq CmpOp = iota // ==
	Ne              // !=
	Lt              // <
	Gt              // >
	Le              // <=
	Ge              // >=
)

func (op CmpOp) String() string {
	switch op {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Gt:
		return ">"
	case Le:
		return "<="
	case Ge:
		return ">="
	}
	return "CmpOp(" + strconv.Itoa(int(op)) + ")"
}

// LogicOp is a logical connective.
type LogicOp int

const (
	And LogicOp = iota // &&
	Or                 // ||
)

func (op LogicOp) String() string {
	switch op {
	case And:
		return "&&"
	case Or:
		return "||"
	}
	return "LogicOp(" + strconv.Itoa(int(op)) + ")"
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Ident is an identifier reference: x, my_var.
type Ident struct {
	Token token.Token // the IDENT token
	Value string
}

func (e *Ident) expressionNode()      {}
func (e *Ident) Pos() token.Position  { return e.Token.Pos }
func (e *Ident) TokenLiteral() string { return e.Token.Literal }
func (e *Ident) String() string       { return e.Value }

// NumberLiteral is a numeric literal: 42, 3.14. All numbers are float64.
type NumberLiteral struct {
	Token token.Token // the NUMBER token
	Value float64
}

func (e *NumberLiteral) expressionNode()      {}
func (e *NumberLiteral) Pos() token.Position  { return e.Token.Pos }
func (e *NumberLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *NumberLiteral) String() string       { return FormatNumber(e.Value) }

// StringLiteral is a quoted string; Value holds the text between the quotes.
type StringLiteral struct {
	Token token.Token // the STRING token
	Value string
}

func (e *StringLiteral) expressionNode()      {}
func (e *StringLiteral) Pos() token.Position  { return e.Token.Pos }
func (e *StringLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *StringLiteral) String() string       { return QuoteString(e.Value) }

// ArithmeticExpr is a binary arithmetic expression: x + y, x * y.
type ArithmeticExpr struct {
	Token token.Token // the operator token
	Left  Expression
	Op    ArithOp
	Right Expression
}

func (e *ArithmeticExpr) expressionNode()      {}
func (e *ArithmeticExpr) Pos() token.Position  { return e.Token.Pos }
func (e *ArithmeticExpr) TokenLiteral() string { return e.Token.Literal }
func (e *ArithmeticExpr) String() string {
	return binaryString(e.Left, e.Op.String(), e.Right)
}

// ComparisonExpr is a binary comparison: x == y, x <= y.
type ComparisonExpr struct {
	Token token.Token // the first operator token
	Left  Expression
	Op    CmpOp
	Right Expression
}

func (e *ComparisonExpr) expressionNode()      {}
func (e *ComparisonExpr) Pos() token.Position  { return e.Token.Pos }
func (e *ComparisonExpr) TokenLiteral() string { return e.Token.Literal }
func (e *ComparisonExpr) String() string {
	return binaryString(e.Left, e.Op.String(), e.Right)
}

// LogicalExpr is a binary logical expression: x && y, x || y.
type LogicalExpr struct {
	Token token.Token // the first operator token
	Left  Expression
	Op    LogicOp
	Right Expression
}

func (e *LogicalExpr) expressionNode()      {}
func (e *LogicalExpr) Pos() token.Position  { return e.Token.Pos }
func (e *LogicalExpr) TokenLiteral() string { return e.Token.Literal }
func (e *LogicalExpr) String() string {
	return binaryString(e.Left, e.Op.String(), e.Right)
}

// CallExpr is a function call used as a value: f(x, y).
type CallExpr struct {
	Token token.Token // the callee IDENT token
	Name  *Ident
	Args  []Expression
}

func (e *CallExpr) expressionNode()      {}
func (e *CallExpr) Pos() token.Position  { return e.Token.Pos }
func (e *CallExpr) TokenLiteral() string { return e.Token.Literal }
func (e *CallExpr) String() string       { return callString(e.Name, e.Args) }

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// TypeName is a primitive type annotation: i32, string, number.
type TypeName struct {
	Token token.Token // the TYPENAME token
	Name  string
}

func (t *TypeName) Pos() token.Position  { return t.Token.Pos }
func (t *TypeName) TokenLiteral() string { return t.Token.Literal }
func (t *TypeName) String() string       { return t.Name }

// VarDecl introduces a binding: let|const name [: Type] = expr.
//
// Type is nil when no annotation was written; consumers must read that as
// "type unknown", not as an error.
type VarDecl struct {
	Token token.Token // 'let' or 'const'
	Const bool
	Name  *Ident
	Type  *TypeName
	Value Expression
}

func (s *VarDecl) statementNode()       {}
func (s *VarDecl) Pos() token.Position  { return s.Token.Pos }
func (s *VarDecl) TokenLiteral() string { return s.Token.Literal }
func (s *VarDecl) String() string {
	var out bytes.Buffer
	if s.Const {
		out.WriteString("const ")
	} else {
		out.WriteString("let ")
	}
	out.WriteString(s.Name.String())
	if s.Type != nil {
		out.WriteString(": ")
		out.WriteString(s.Type.String())
	}
	out.WriteString(" = ")
	out.WriteString(s.Value.String())
	out.WriteString(";")
	return out.String()
}

// CallStmt is a function call in statement position: f(x);
type CallStmt struct {
	Token token.Token // the callee IDENT token
	Name  *Ident
	Args  []Expression
}

func (s *CallStmt) statementNode()       {}
func (s *CallStmt) Pos() token.Position  { return s.Token.Pos }
func (s *CallStmt) TokenLiteral() string { return s.Token.Literal }
func (s *CallStmt) String() string       { return callString(s.Name, s.Args) + ";" }

// IfStmt is a conditional: if (cond) { then } [else ...].
//
// Else is nil when no else-arm was written. Otherwise it is another *IfStmt
// (else if) or a *BlockStmt (plain else).
type IfStmt struct {
	Token     token.Token // 'if'
	Condition Expression
	Then      []Statement
	Else      ElseBranch
}

func (s *IfStmt) statementNode()       {}
func (s *IfStmt) elseBranch()          {}
func (s *IfStmt) Pos() token.Position  { return s.Token.Pos }
func (s *IfStmt) TokenLiteral() string { return s.Token.Literal }
func (s *IfStmt) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	out.WriteString(s.Condition.String())
	out.WriteString(") ")
	writeBlock(&out, s.Then)
	if s.Else != nil {
		out.WriteString(" else ")
		out.WriteString(s.Else.String())
	}
	return out.String()
}

// BlockStmt is a brace-delimited statement list. It only ever appears as the
// else-arm of an IfStmt.
type BlockStmt struct {
	Token      token.Token // '{'
	Statements []Statement
}

func (s *BlockStmt) statementNode()       {}
func (s *BlockStmt) elseBranch()          {}
func (s *BlockStmt) Pos() token.Position  { return s.Token.Pos }
func (s *BlockStmt) TokenLiteral() string { return s.Token.Literal }
func (s *BlockStmt) String() string {
	var out bytes.Buffer
	writeBlock(&out, s.Statements)
	return out.String()
}

// ---------------------------------------------------------------------------
// Rendering helpers
// ---------------------------------------------------------------------------

// infDigits overflows float64 and so reads back as +Inf.
var infDigits = "1" + strings.Repeat("0", 309)

// FormatNumber renders a number in the shortest decimal form that the lexer
// reads back to the same value. No exponent is ever used because the lexer
// does not accept one. Infinities are written as a digit run that overflows
// again.
func FormatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return infDigits
	case math.IsInf(v, -1):
		return "-" + infDigits
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// QuoteString wraps s in the first of ", ' and ` that does not occur in it.
// Strings containing all three quote characters cannot be written as a single
// literal; they are wrapped in double quotes regardless.
func QuoteString(s string) string {
	for _, q := range []string{`"`, `'`, "`"} {
		if !strings.Contains(s, q) {
			return q + s + q
		}
	}
	return `"` + s + `"`
}

func binaryString(left Expression, op string, right Expression) string {
	return "(" + left.String() + " " + op + " " + right.String() + ")"
}

func callString(name *Ident, args []Expression) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return name.String() + "(" + strings.Join(parts, ", ") + ")"
}

func writeBlock(out *bytes.Buffer, stmts []Statement) {
	out.WriteString("{ ")
	for _, s := range stmts {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
}
