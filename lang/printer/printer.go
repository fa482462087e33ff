// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package printer renders astc syntax trees.
//
// Fprint writes the indented tree form used by the command-line tools:
//
//	Var: x: number = 42
//	If: ((Ident: x > 1)) {
//	    FunctionCall: print(StringLiteral: big)
//	} else {
//	    FunctionCall: print(StringLiteral: small)
//	}
//
// Encode and Dump produce machine-readable and debugging renderings.
package printer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/probechain/astc/lang/ast"
)

// Output formats understood by Write.
const (
	FormatTree   = "tree"
	FormatSource = "source"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatDump   = "dump"
)

// Formats lists every format accepted by Write.
var Formats = []string{FormatTree, FormatSource, FormatJSON, FormatYAML, FormatDump}

// ErrUnknownFormat is returned for a format name not listed in Formats.
var ErrUnknownFormat = errors.New("unknown output format")

const indentUnit = "    "

// Write renders prog to w in the named format.
func Write(w io.Writer, prog *ast.Program, format string) error {
	switch format {
	case FormatTree:
		return Fprint(w, prog)
	case FormatSource:
		_, err := io.WriteString(w, prog.String())
		return err
	case FormatJSON, FormatYAML:
		return Encode(w, prog, format)
	case FormatDump:
		return Dump(w, prog)
	}
	return fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
}

// Fprint writes the tree form of node to w. node may be a program, a
// statement or an expression. Every statement ends with a newline.
func Fprint(w io.Writer, node ast.Node) error {
	p := &printer{w: w}
	switch n := node.(type) {
	case *ast.Program:
		for _, s := range n.Statements {
			p.stmt(s)
		}
	case ast.Statement:
		p.stmt(n)
	case ast.Expression:
		p.write(Expr(n))
		p.write("\n")
	default:
		return fmt.Errorf("printer: unsupported node type %T", node)
	}
	return p.err
}

// Sprint returns the tree form of node.
func Sprint(node ast.Node) string {
	var buf bytes.Buffer
	if err := Fprint(&buf, node); err != nil {
		return err.Error()
	}
	return buf.String()
}

// Expr returns the tree form of a single expression.
func Expr(e ast.Expression) string {
	switch e := e.(type) {
	case *ast.Ident:
		return "Ident: " + e.Value
	case *ast.NumberLiteral:
		return ast.FormatNumber(e.Value)
	case *ast.StringLiteral:
		return "StringLiteral: " + e.Value
	case *ast.ArithmeticExpr:
		return "(" + Expr(e.Left) + " " + e.Op.String() + " " + Expr(e.Right) + ")"
	case *ast.ComparisonExpr:
		return "(" + Expr(e.Left) + " " + e.Op.String() + " " + Expr(e.Right) + ")"
	case *ast.LogicalExpr:
		return "(" + Expr(e.Left) + " " + e.Op.String() + " " + Expr(e.Right) + ")"
	case *ast.CallExpr:
		return callString(e.Name.Value, e.Args)
	}
	return fmt.Sprintf("<%T>", e)
}

func callString(name string, args []ast.Expression) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Expr(a)
	}
	return "FunctionCall: " + name + "(" + strings.Join(parts, ", ") + ")"
}

// printer tracks indentation and the first write error.
type printer struct {
	w      io.Writer
	indent int
	err    error
}

func (p *printer) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) line(s string) {
	p.write(strings.Repeat(indentUnit, p.indent))
	p.write(s)
	p.write("\n")
}

func (p *printer) stmt(s ast.Statement) {
	switch s := s.(type) {
	case *ast.VarDecl:
		typ := "unknown"
		if s.Type != nil {
			typ = s.Type.Name
		}
		p.line("Var: " + s.Name.Value + ": " + typ + " = " + Expr(s.Value))

	case *ast.CallStmt:
		p.line(callString(s.Name.Value, s.Args))

	case *ast.IfStmt:
		p.ifStmt(s, "")

	case *ast.BlockStmt:
		p.line("{")
		p.block(s.Statements)
		p.line("}")

	default:
		p.line(fmt.Sprintf("<%T>", s))
	}
}

// ifStmt prints an if statement. prefix is prepended to the opening line so
// that else-if chains stay on the closing brace of the previous arm.
func (p *printer) ifStmt(s *ast.IfStmt, prefix string) {
	p.line(prefix + "If: (" + Expr(s.Condition) + ") {")
	p.block(s.Then)
	switch e := s.Else.(type) {
	case nil:
		p.line("}")
	case *ast.IfStmt:
		p.ifStmt(e, "} else ")
	case *ast.BlockStmt:
		p.line("} else {")
		p.block(e.Statements)
		p.line("}")
	}
}

func (p *printer) block(stmts []ast.Statement) {
	p.indent++
	for _, s := range stmts {
		p.stmt(s)
	}
	p.indent--
}
