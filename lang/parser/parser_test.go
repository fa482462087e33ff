// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probechain/astc/lang/ast"
	"github.com/probechain/astc/lang/lexer"
	"github.com/probechain/astc/lang/token"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// ignoreTokens compares trees by shape and values only.
var ignoreTokens = cmpopts.IgnoreTypes(token.Token{})

// mustParse asserts that the source parses without diagnostics and returns
// the program. If there are any it fails the test immediately.
func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, diags, err := Parse("test.astc", src)
	require.NoError(t, err)
	if len(diags) > 0 {
		msgs := make([]string, len(diags))
		for i, d := range diags {
			msgs[i] = d.Error()
		}
		t.Fatalf("unexpected diagnostics:\n%s", strings.Join(msgs, "\n"))
	}
	return prog
}

// parseWithErrors parses and expects at least one diagnostic to be
// reported. It returns both the partial program and the diagnostics.
func parseWithErrors(t *testing.T, src string) (*ast.Program, []*Diagnostic) {
	t.Helper()
	prog, diags, err := Parse("test.astc", src)
	require.NoError(t, err)
	if len(diags) == 0 {
		t.Fatal("expected diagnostics, but none were reported")
	}
	return prog, diags
}

// firstStmt returns the first statement in prog, failing if there is none.
func firstStmt(t *testing.T, prog *ast.Program) ast.Statement {
	t.Helper()
	if len(prog.Statements) == 0 {
		t.Fatal("expected at least one statement in program, got none")
	}
	return prog.Statements[0]
}

// initializer parses "let v = <expr>;" and returns the rendered initializer.
func initializer(t *testing.T, expr string) string {
	t.Helper()
	decl, ok := firstStmt(t, mustParse(t, "let v = "+expr+";")).(*ast.VarDecl)
	require.True(t, ok)
	return decl.Value.String()
}

func id(name string) *ast.Ident        { return &ast.Ident{Value: name} }
func num(v float64) *ast.NumberLiteral { return &ast.NumberLiteral{Value: v} }
func str(s string) *ast.StringLiteral  { return &ast.StringLiteral{Value: s} }

func call(name string, args ...ast.Expression) *ast.CallStmt {
	return &ast.CallStmt{Name: id(name), Args: args}
}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

func TestParseVarDecl(t *testing.T) {
	prog := mustParse(t, "let x: number = 42;")
	want := &ast.Program{
		File: "test.astc",
		Statements: []ast.Statement{
			&ast.VarDecl{Name: id("x"), Type: &ast.TypeName{Name: "number"}, Value: num(42)},
		},
	}
	if diff := cmp.Diff(want, prog, ignoreTokens); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConstUntyped(t *testing.T) {
	decl, ok := firstStmt(t, mustParse(t, `const greeting = "hi";`)).(*ast.VarDecl)
	require.True(t, ok)
	assert.True(t, decl.Const)
	assert.Nil(t, decl.Type)
	assert.Equal(t, "greeting", decl.Name.Value)
	assert.Equal(t, `const greeting = "hi";`, decl.String())
}

func TestParseAllTypeNames(t *testing.T) {
	for _, name := range token.TypeNames() {
		decl, ok := firstStmt(t, mustParse(t, "let v: "+name+" = 0;")).(*ast.VarDecl)
		require.True(t, ok, name)
		require.NotNil(t, decl.Type, name)
		assert.Equal(t, name, decl.Type.Name)
	}
}

func TestParseColonWithoutType(t *testing.T) {
	decl, ok := firstStmt(t, mustParse(t, "let x: = 5;")).(*ast.VarDecl)
	require.True(t, ok)
	assert.Nil(t, decl.Type)
	assert.Equal(t, "let x = 5;", decl.String())
}

func TestParseDeclarationWithoutSemicolons(t *testing.T) {
	prog := mustParse(t, "let a = 1 let b = a f(b)")
	require.Len(t, prog.Statements, 3)
	assert.Equal(t, "let a = 1;\nlet b = a;\nf(b);\n", prog.String())
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func TestPrecedence(t *testing.T) {
	cases := []struct{ src, want string }{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"a + b < c * d", "((a + b) < (c * d))"},
		{"a < b && c > d", "((a < b) && (c > d))"},
		{"a == 1 && b != 2 || c >= 3", "(((a == 1) && (b != 2)) || (c >= 3))"},
		{"a || b && c", "((a || b) && c)"},
		{"x <= y", "(x <= y)"},
		{"f(1) + g(2) * 3", "(f(1) + (g(2) * 3))"},
		{"2 + 3 * 4", "(2 + (3 * 4))"},
		{"8 / 4 / 2", "((8 / 4) / 2)"},
		{"1 + 1 == 2 && 3 > 2", "(((1 + 1) == 2) && (3 > 2))"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, initializer(t, c.src), c.src)
	}
}

func TestLeftAssociativity(t *testing.T) {
	cases := []struct{ src, want string }{
		{"10 - 4 - 3", "((10 - 4) - 3)"},
		{"a / b * c", "((a / b) * c)"},
		{"a < b < c", "((a < b) < c)"},
		{"a == b != c", "((a == b) != c)"},
		{"a && b || c && d", "(((a && b) || c) && d)"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, initializer(t, c.src), c.src)
	}
}

func TestComparisonOperators(t *testing.T) {
	ops := map[string]ast.CmpOp{
		"==": ast.Eq, "!=": ast.Ne, "<": ast.Lt, ">": ast.Gt, "<=": ast.Le, ">=": ast.Ge,
	}
	for lit, op := range ops {
		decl := firstStmt(t, mustParse(t, "let v = a "+lit+" b;")).(*ast.VarDecl)
		cmpExpr, ok := decl.Value.(*ast.ComparisonExpr)
		require.True(t, ok, lit)
		assert.Equal(t, op, cmpExpr.Op, lit)
	}
}

func TestLogicalFromUnrecognisedCharacters(t *testing.T) {
	decl := firstStmt(t, mustParse(t, "let v = a && b;")).(*ast.VarDecl)
	logic, ok := decl.Value.(*ast.LogicalExpr)
	require.True(t, ok)
	assert.Equal(t, ast.And, logic.Op)
	assert.Equal(t, token.ILLEGAL, logic.Token.Type)
	assert.Equal(t, token.Position{File: "test.astc", Line: 1, Column: 11, Offset: 10}, logic.Pos())
}

func TestParseLiterals(t *testing.T) {
	prog := mustParse(t, "let a = 3.5; let b = 'single'; let c = `back`; let d = \"\";")
	want := []ast.Statement{
		&ast.VarDecl{Name: id("a"), Value: num(3.5)},
		&ast.VarDecl{Name: id("b"), Value: str("single")},
		&ast.VarDecl{Name: id("c"), Value: str("back")},
		&ast.VarDecl{Name: id("d"), Value: str("")},
	}
	if diff := cmp.Diff(want, prog.Statements, ignoreTokens); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestUnclosedGroupIsTolerated(t *testing.T) {
	assert.Equal(t, "(1 + 2)", initializer(t, "(1 + 2"))
	assert.Equal(t, "((1 + 2) * 3)", initializer(t, "((1 + 2) * 3"))
}

// ---------------------------------------------------------------------------
// Calls
// ---------------------------------------------------------------------------

func TestParseCallStmt(t *testing.T) {
	prog := mustParse(t, `print("hi", x, 1 + 2); noop();`)
	want := []ast.Statement{
		call("print", str("hi"), id("x"), &ast.ArithmeticExpr{Left: num(1), Op: ast.Add, Right: num(2)}),
		call("noop"),
	}
	if diff := cmp.Diff(want, prog.Statements, ignoreTokens, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNestedCallExpr(t *testing.T) {
	decl := firstStmt(t, mustParse(t, "let y = max(a, min(b, 2));")).(*ast.VarDecl)
	outer, ok := decl.Value.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "max", outer.Name.Value)
	require.Len(t, outer.Args, 2)
	inner, ok := outer.Args[1].(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "min(b, 2)", inner.String())
}

func TestCallStmtPositions(t *testing.T) {
	stmt := firstStmt(t, mustParse(t, "\n  log(1);")).(*ast.CallStmt)
	want := token.Position{File: "test.astc", Line: 2, Column: 3, Offset: 3}
	assert.Equal(t, want, stmt.Pos())
	assert.Equal(t, want, stmt.Name.Pos())
}

// ---------------------------------------------------------------------------
// Conditionals
// ---------------------------------------------------------------------------

func TestParseIfElseChain(t *testing.T) {
	prog := mustParse(t, `
if (a) {
  f();
} else if (b) {
  g();
} else {
  h();
}`)
	want := []ast.Statement{
		&ast.IfStmt{
			Condition: id("a"),
			Then:      []ast.Statement{call("f")},
			Else: &ast.IfStmt{
				Condition: id("b"),
				Then:      []ast.Statement{call("g")},
				Else:      &ast.BlockStmt{Statements: []ast.Statement{call("h")}},
			},
		},
	}
	if diff := cmp.Diff(want, prog.Statements, ignoreTokens); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIfWithoutElse(t *testing.T) {
	stmt, ok := firstStmt(t, mustParse(t, "if (x > 1) {}")).(*ast.IfStmt)
	require.True(t, ok)
	assert.Nil(t, stmt.Else)
	assert.Empty(t, stmt.Then)
	assert.Equal(t, "(x > 1)", stmt.Condition.String())
}

func TestParseNestedIf(t *testing.T) {
	prog := mustParse(t, `
if (a) {
  let n = 1;
  if (b) { inner(n); }
  after();
}
done();`)
	require.Len(t, prog.Statements, 2)
	outer := prog.Statements[0].(*ast.IfStmt)
	require.Len(t, outer.Then, 3)
	assert.IsType(t, &ast.IfStmt{}, outer.Then[1])
	assert.Equal(t, "done();", prog.Statements[1].String())
}

// ---------------------------------------------------------------------------
// Skipping and recovery
// ---------------------------------------------------------------------------

func TestSkipsUnknownStatementStarts(t *testing.T) {
	prog := mustParse(t, `; ; 42 'str' else function return 5; let x = 1; ( ) # f();`)
	require.Len(t, prog.Statements, 2)
	assert.Equal(t, "let x = 1;\nf();\n", prog.String())
}

func TestEmptyProgram(t *testing.T) {
	for _, src := range []string{"", "   \n\t", ";;;"} {
		prog := mustParse(t, src)
		assert.Empty(t, prog.Statements, "%q", src)
	}
}

func TestDiagnostics(t *testing.T) {
	cases := []struct {
		name, src string
		stmts     int
		msg       string
	}{
		{"missing name", "let = 5;", 0, `1:5: expected identifier after 'let', got SYMBOL "="`},
		{"missing equals", "let x 5;", 0, "1:7: expected '=' in declaration of x, got NUMBER 5"},
		{"unknown type", "let x: foo = 5;", 0, `1:8: expected '=' in declaration of x, got IDENT "foo"`},
		{"trailing comma", "f(1,); g();", 1, `1:5: expected expression, got SYMBOL ")"`},
		{"missing comma", "f(1 2); g();", 1, "1:5: expected ')' to close call to f, got NUMBER 2"},
		{"assignment", "x = 5; g();", 1, `1:3: expected '(' after x, got SYMBOL "="`},
		{"unterminated if", "if (a) { f();", 0, "1:14: expected '}' to close if body, got end of input"},
		{"unterminated else", "if (a) { } else { f();", 0, "1:23: expected '}' to close else body, got end of input"},
		{"else without brace", "if (a) { } else f(); g();", 2, `1:17: expected '{' after 'else', got IDENT "f"`},
		{"missing operand", "let x = a && ;", 0, `1:14: expected expression, got SYMBOL ";"`},
		{"stray brace", "} f();", 1, "1:1: unmatched '}'"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			prog, diags := parseWithErrors(t, c.src)
			assert.Len(t, prog.Statements, c.stmts)
			assert.Equal(t, "test.astc:"+c.msg, diags[0].Error())
		})
	}
}

func TestHalfOperators(t *testing.T) {
	cases := []struct{ src, msg string }{
		{"let x = a & b;", `expected '&' to complete operator '&&', got IDENT "b"`},
		{"let x = a | b;", `expected '|' to complete operator '||', got IDENT "b"`},
		{"let x = a = b;", `expected '=' to complete operator '==', got IDENT "b"`},
		{"let x = a ! b;", `expected '=' to complete operator '!=', got IDENT "b"`},
	}
	for _, c := range cases {
		_, diags := parseWithErrors(t, c.src)
		assert.Equal(t, c.msg, diags[0].Msg, c.src)
	}
}

func TestRecoveryInsideIf(t *testing.T) {
	// The malformed condition abandons the conditional; its body is then
	// read as top-level statements and the closing brace is unmatched.
	prog, diags := parseWithErrors(t, "if a { f(); }")
	require.Len(t, diags, 3)
	assert.Contains(t, diags[0].Msg, "expected '(' after 'if'")
	assert.Contains(t, diags[1].Msg, "expected '(' after a")
	assert.Equal(t, "unmatched '}'", diags[2].Msg)
	assert.Equal(t, "f();\n", prog.String())
}

func TestErrorHandlerSeesEveryDiagnostic(t *testing.T) {
	var seen []*Diagnostic
	prog, diags, err := DefaultConfig.Parse("h.astc", "let = 1; } x = 2; ok();", func(d *Diagnostic) {
		seen = append(seen, d)
	})
	require.NoError(t, err)
	require.Len(t, diags, 3)
	assert.Equal(t, diags, seen)
	assert.Equal(t, "h.astc", diags[0].Pos.File)
	assert.Equal(t, "ok();\n", prog.String())
}

// ---------------------------------------------------------------------------
// Fatal errors
// ---------------------------------------------------------------------------

func TestMalformedNumberAborts(t *testing.T) {
	for _, src := range []string{"1.2.3", "let x = 1.2.3; f();", "f(); let x = 1..;"} {
		prog, _, err := Parse("test.astc", src)
		require.Error(t, err, src)
		assert.Nil(t, prog, src)
		var nerr *lexer.NumberError
		assert.True(t, errors.As(err, &nerr), src)
	}
}

func TestDiagnosticsKeptOnAbort(t *testing.T) {
	prog, diags, err := Parse("test.astc", "let = 1; let y = 1.2.3;")
	require.Error(t, err)
	assert.Nil(t, prog)
	assert.Len(t, diags, 1)
}

func TestMaxDepth(t *testing.T) {
	nested := func(n int) string {
		return "let x = " + strings.Repeat("(", n) + "1" + strings.Repeat(")", n) + ";"
	}
	cfg := Config{MaxDepth: 10}

	_, _, err := cfg.Parse("deep.astc", nested(5), nil)
	require.NoError(t, err)

	prog, _, err := cfg.Parse("deep.astc", nested(20), nil)
	assert.Nil(t, prog)
	assert.True(t, errors.Is(err, ErrTooDeep), "got %v", err)

	ifs := strings.Repeat("if (a) { ", 20) + strings.Repeat("} ", 20)
	_, _, err = cfg.Parse("deep.astc", ifs, nil)
	assert.True(t, errors.Is(err, ErrTooDeep), "got %v", err)

	_, _, err = Parse("deep.astc", nested(100000))
	assert.True(t, errors.Is(err, ErrTooDeep), "got %v", err)
}

func TestLongElseIfChain(t *testing.T) {
	chain := func(n int) string {
		return "if (a) { f(); }" + strings.Repeat(" else if (b) { g(); }", n-1) + " else { h(); }"
	}
	for _, tt := range []struct {
		cfg  Config
		arms int
	}{
		{Config{MaxDepth: 10}, 50},
		{DefaultConfig, 5001},
	} {
		prog, diags, err := tt.cfg.Parse("chain.astc", chain(tt.arms), nil)
		require.NoError(t, err)
		require.Empty(t, diags)
		require.Len(t, prog.Statements, 1)

		arms := 0
		var branch ast.ElseBranch = prog.Statements[0].(*ast.IfStmt)
		for {
			stmt, ok := branch.(*ast.IfStmt)
			if !ok {
				break
			}
			arms++
			branch = stmt.Else
		}
		assert.Equal(t, tt.arms, arms)
		assert.IsType(t, &ast.BlockStmt{}, branch)
	}
}

// ---------------------------------------------------------------------------
// Round trips and robustness
// ---------------------------------------------------------------------------

func TestStringReparses(t *testing.T) {
	srcs := []string{
		"let x: i32 = (1 + 2) * 3 - 4 / 5;",
		`const s: string = 'say "hi"';`,
		"if (a >= 1 && b != 2 || c != d) { f(a, g(b)); } else if (c) { } else { let y = 0.25; }",
		"log(`tick`, 1, x <= y);",
		"let big = " + strings.Repeat("9", 400) + " + 1;",
	}
	for _, src := range srcs {
		first := mustParse(t, src)
		second := mustParse(t, first.String())
		if diff := cmp.Diff(first.Statements, second.Statements, ignoreTokens); diff != "" {
			t.Errorf("%q: reparse mismatch (-first +second):\n%s", src, diff)
		}
	}
}

func TestLeafRoundTrip(t *testing.T) {
	prog := mustParse(t, "let a = x_1 + 0.125 * 7; f('it\"s', \"plain\", `a'b\"c`, 1000000, größe, 1"+strings.Repeat("0", 400)+");")
	leaves := 0
	ast.Inspect(prog, func(n ast.Node) bool {
		var want token.Token
		switch leaf := n.(type) {
		case *ast.Ident:
			want = token.Token{Type: token.IDENT, Literal: leaf.Value}
		case *ast.NumberLiteral:
			want = token.Token{Type: token.NUMBER, Value: leaf.Value}
		case *ast.StringLiteral:
			want = token.Token{Type: token.STRING, Literal: leaf.Value}
		default:
			return true
		}
		leaves++
		toks, err := lexer.New("", n.String()).Tokenize()
		require.NoError(t, err)
		require.Len(t, toks, 2, n.String())
		got := toks[0]
		assert.Equal(t, want.Type, got.Type, n.String())
		if want.Type == token.NUMBER {
			assert.Equal(t, want.Value, got.Value)
		} else {
			assert.Equal(t, want.Literal, got.Literal)
		}
		return true
	})
	assert.Equal(t, 11, leaves)
}

// vocabulary is the token soup used to build random programs.
var vocabulary = []string{
	"let", "const", "if", "else", "function", "return", "x", "f", "number", "u8",
	"1", "2.5", "'s'", "\"t\"", "(", ")", "{", "}", ",", ";", ":", "=", "+", "-",
	"*", "/", "<", ">", "&", "|", "!", "#", "\n",
}

func checkInvariants(t *testing.T, src string) {
	t.Helper()
	prog, diags, err := Parse("fuzz.astc", src)
	if err != nil {
		if prog != nil {
			t.Fatalf("%q: program returned together with error %v", src, err)
		}
		return
	}
	require.NotNil(t, prog, src)
	for _, d := range diags {
		require.NotNil(t, d, src)
	}
	// String walks every child and panics on a nil one.
	_ = prog.String()
	ast.Inspect(prog, func(ast.Node) bool { return true })
}

func TestRandomTokenSoup(t *testing.T) {
	f := fuzz.NewWithSeed(1).NilChance(0).NumElements(1, 64)
	for i := 0; i < 2000; i++ {
		var picks []uint8
		f.Fuzz(&picks)
		words := make([]string, len(picks))
		for j, p := range picks {
			words[j] = vocabulary[int(p)%len(vocabulary)]
		}
		checkInvariants(t, strings.Join(words, " "))
	}
}

func TestRandomBytes(t *testing.T) {
	f := fuzz.NewWithSeed(2)
	for i := 0; i < 1000; i++ {
		var src string
		f.Fuzz(&src)
		checkInvariants(t, src)
	}
}

func FuzzParse(f *testing.F) {
	f.Add("let x: number = 42;")
	f.Add("if (a && b) { f(); } else { g(1, 2); }")
	f.Add("let x = ((1 + 2) * 3")
	f.Add("1.2.3")
	f.Fuzz(func(t *testing.T, src string) {
		checkInvariants(t, src)
	})
}
