// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	"github.com/probechain/astc/lang/ast"
)

// dumpConfig renders trees without pointer addresses so dumps are stable
// across runs. Node String methods are bypassed to show the structure.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

// Dump writes a spew dump of node to w.
func Dump(w io.Writer, node ast.Node) error {
	dumpConfig.Fdump(w, node)
	return nil
}

// Encode writes prog to w as JSON or YAML. Both formats share the same
// document shape: every node is a mapping with a "kind" key.
func Encode(w io.Writer, prog *ast.Program, format string) error {
	doc := Tree(prog)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w %q for encoding", ErrUnknownFormat, format)
}

// Tree converts prog into nested maps and slices.
func Tree(prog *ast.Program) map[string]interface{} {
	return map[string]interface{}{
		"kind":       "Program",
		"file":       prog.File,
		"statements": stmtList(prog.Statements),
	}
}

func stmtList(stmts []ast.Statement) []interface{} {
	out := make([]interface{}, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, stmtTree(s))
	}
	return out
}

func exprList(exprs []ast.Expression) []interface{} {
	out := make([]interface{}, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, exprTree(e))
	}
	return out
}

func withPos(n ast.Node, m map[string]interface{}) map[string]interface{} {
	pos := n.Pos()
	m["line"] = pos.Line
	m["column"] = pos.Column
	return m
}

func stmtTree(s ast.Statement) map[string]interface{} {
	switch s := s.(type) {
	case *ast.VarDecl:
		m := map[string]interface{}{
			"kind":  "VarDecl",
			"const": s.Const,
			"name":  s.Name.Value,
			"value": exprTree(s.Value),
		}
		if s.Type != nil {
			m["type"] = s.Type.Name
		}
		return withPos(s, m)

	case *ast.CallStmt:
		return withPos(s, map[string]interface{}{
			"kind": "CallStmt",
			"name": s.Name.Value,
			"args": exprList(s.Args),
		})

	case *ast.IfStmt:
		m := map[string]interface{}{
			"kind":      "If",
			"condition": exprTree(s.Condition),
			"then":      stmtList(s.Then),
		}
		if s.Else != nil {
			m["else"] = stmtTree(s.Else)
		}
		return withPos(s, m)

	case *ast.BlockStmt:
		return withPos(s, map[string]interface{}{
			"kind":       "Block",
			"statements": stmtList(s.Statements),
		})
	}
	panic(fmt.Sprintf("printer: unexpected statement type %T", s))
}

func exprTree(e ast.Expression) map[string]interface{} {
	switch e := e.(type) {
	case *ast.Ident:
		return withPos(e, map[string]interface{}{"kind": "Ident", "name": e.Value})

	case *ast.NumberLiteral:
		var v interface{} = e.Value
		if math.IsInf(e.Value, 0) || math.IsNaN(e.Value) {
			// encoding/json cannot represent these.
			v = strconv.FormatFloat(e.Value, 'g', -1, 64)
		}
		return withPos(e, map[string]interface{}{"kind": "Number", "value": v})

	case *ast.StringLiteral:
		return withPos(e, map[string]interface{}{"kind": "String", "value": e.Value})

	case *ast.ArithmeticExpr:
		return binaryTree(e, "Arithmetic", e.Op.String(), e.Left, e.Right)

	case *ast.ComparisonExpr:
		return binaryTree(e, "Comparison", e.Op.String(), e.Left, e.Right)

	case *ast.LogicalExpr:
		return binaryTree(e, "Logical", e.Op.String(), e.Left, e.Right)

	case *ast.CallExpr:
		return withPos(e, map[string]interface{}{
			"kind": "Call",
			"name": e.Name.Value,
			"args": exprList(e.Args),
		})
	}
	panic(fmt.Sprintf("printer: unexpected expression type %T", e))
}

func binaryTree(n ast.Node, kind, op string, left, right ast.Expression) map[string]interface{} {
	return withPos(n, map[string]interface{}{
		"kind":  kind,
		"op":    op,
		"left":  exprTree(left),
		"right": exprTree(right),
	})
}
