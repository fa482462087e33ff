// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package ast

import "fmt"

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for each node before its children. If f returns false the children of that
// node are skipped. Nil children are not visited.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		inspectStatements(n.Statements, f)

	case *VarDecl:
		Inspect(n.Name, f)
		if n.Type != nil {
			Inspect(n.Type, f)
		}
		Inspect(n.Value, f)

	case *CallStmt:
		Inspect(n.Name, f)
		inspectExpressions(n.Args, f)

	case *IfStmt:
		Inspect(n.Condition, f)
		inspectStatements(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}

	case *BlockStmt:
		inspectStatements(n.Statements, f)

	case *ArithmeticExpr:
		Inspect(n.Left, f)
		Inspect(n.Right, f)

	case *ComparisonExpr:
		Inspect(n.Left, f)
		Inspect(n.Right, f)

	case *LogicalExpr:
		Inspect(n.Left, f)
		Inspect(n.Right, f)

	case *CallExpr:
		Inspect(n.Name, f)
		inspectExpressions(n.Args, f)

	case *Ident, *NumberLiteral, *StringLiteral, *TypeName:
		// leaves

	default:
		panic(fmt.Sprintf("ast.Inspect: unexpected node type %T", n))
	}
}

func inspectStatements(list []Statement, f func(Node) bool) {
	for _, s := range list {
		Inspect(s, f)
	}
}

func inspectExpressions(list []Expression, f func(Node) bool) {
	for _, e := range list {
		Inspect(e, f)
	}
}
