// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package token defines the lexical token types for the astc language.
//
// The token set is deliberately small: multi-character operators such as
// "==" or "&&" are not tokens of their own. The lexer emits each half as a
// separate single-character token and the parser assembles them.
package token

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set"
)

// Token represents a lexical token.
type Token struct {
	Type Type

	// Literal is the token text: the word for KEYWORD, IDENT and TYPENAME,
	// the unquoted contents for STRING, the source digits for NUMBER and the
	// single character for SYMBOL and ILLEGAL.
	Literal string

	// Value holds the parsed number for NUMBER tokens.
	Value float64

	Pos Position
}

// Position tracks source location.
type Position struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Type is the set of lexical token types.
type Type int

const (
	// Special tokens
	ILLEGAL Type = iota // a character the language does not recognise
	EOF

	KEYWORD  // let, const, function, if, else, return
	IDENT    // main, x, agent_id
	NUMBER   // 42, 3.14
	STRING   // "hello", 'hello', `hello`
	TYPENAME // i32, string, number
	SYMBOL   // : ; , { } ( ) + - * / = < > .
)

var tokenNames = [...]string{
	ILLEGAL:  "ILLEGAL",
	EOF:      "EOF",
	KEYWORD:  "KEYWORD",
	IDENT:    "IDENT",
	NUMBER:   "NUMBER",
	STRING:   "STRING",
	TYPENAME: "TYPENAME",
	SYMBOL:   "SYMBOL",
}

// String returns the string form of a token type.
func (t Type) String() string {
	if int(t) >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// Keywords of the language.
const (
	Let      = "let"
	Const    = "const"
	Function = "function"
	If       = "if"
	Else     = "else"
	Return   = "return"
)

// Symbols is the set of characters the lexer emits as SYMBOL tokens.
const Symbols = ":;,{}()+-*/=<>."

var (
	keywords  = mapset.NewSet(Let, Const, Function, If, Else, Return)
	typeNames = mapset.NewSet("i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "string", "number")
)

// Lookup classifies a scanned word as KEYWORD, TYPENAME or IDENT.
func Lookup(word string) Type {
	switch {
	case keywords.Contains(word):
		return KEYWORD
	case typeNames.Contains(word):
		return TYPENAME
	}
	return IDENT
}

// IsSymbol reports whether ch is emitted as a SYMBOL token.
func IsSymbol(ch rune) bool {
	return strings.ContainsRune(Symbols, ch)
}

// Keywords returns the keyword set as a slice, in no particular order.
func Keywords() []string { return setStrings(keywords) }

// TypeNames returns the primitive type names, in no particular order.
func TypeNames() []string { return setStrings(typeNames) }

func setStrings(s mapset.Set) []string {
	out := make([]string, 0, s.Cardinality())
	for v := range s.Iter() {
		out = append(out, v.(string))
	}
	return out
}

// IsKeyword reports whether the token is the given keyword.
func (t Token) IsKeyword(kw string) bool {
	return t.Type == KEYWORD && t.Literal == kw
}

// IsSymbol reports whether the token is the given single-character symbol.
func (t Token) IsSymbol(ch rune) bool {
	return t.Type == SYMBOL && t.Literal == string(ch)
}

// Char returns the character carried by a SYMBOL or ILLEGAL token. The
// boolean is false for every other token type.
func (t Token) Char() (rune, bool) {
	if t.Type != SYMBOL && t.Type != ILLEGAL {
		return 0, false
	}
	for _, r := range t.Literal {
		return r, true
	}
	return 0, false
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case NUMBER:
		return fmt.Sprintf("%s %s", t.Type, t.Literal)
	}
	return fmt.Sprintf("%s %q", t.Type, t.Literal)
}
