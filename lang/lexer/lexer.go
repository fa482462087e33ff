// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package lexer implements a single-pass, no-backtracking lexer for the astc
// language.
//
// Design principles:
//   - Tokens are produced on demand, one per call to Next
//   - One character of lookahead, never more
//   - String literals ("...", '...', `...`) are taken verbatim; no escapes
//   - Multi-character operators are left to the parser
//   - Unknown characters become ILLEGAL tokens and scanning continues
//   - A malformed number literal is the only error the lexer reports
package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/probechain/astc/lang/token"
)

// eof is the value of ch once the input is exhausted.
const eof = -1

// NumberError reports a digit run that does not form a valid number, such as
// "1.2.3". It is fatal to the parse that encounters it.
type NumberError struct {
	Pos     token.Position
	Literal string
	Err     error
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("%s: malformed number literal %q", e.Pos, e.Literal)
}

func (e *NumberError) Unwrap() error { return e.Err }

// Lexer holds the state for a single-pass tokenization run.
type Lexer struct {
	filename string
	input    string

	// pos is the byte offset of the next rune to be loaded into ch; off is
	// the byte offset of ch itself.
	pos  int
	off  int
	line int // 1-based current line number
	col  int // 1-based current column number

	ch rune // current character; eof when past end
}

// New creates a new Lexer for the given filename and input string.
func New(filename, input string) *Lexer {
	l := &Lexer{
		filename: filename,
		input:    input,
		line:     1,
		col:      0,
	}
	l.advance() // prime l.ch with the first rune
	return l
}

// advance moves to the next rune in the input, updating line/column tracking.
// When the end of input is reached, ch is set to eof.
func (l *Lexer) advance() {
	if l.ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	if l.pos >= len(l.input) {
		l.off = len(l.input)
		l.ch = eof
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.off = l.pos
	l.ch = r
	l.pos += w
}

// currentPos returns a token.Position capturing the lexer's state right now.
// Call this before consuming the first character of a token.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		File:   l.filename,
		Line:   l.line,
		Column: l.col,
		Offset: l.off,
	}
}

func makeToken(typ token.Type, literal string, pos token.Position) token.Token {
	return token.Token{Type: typ, Literal: literal, Pos: pos}
}

// skipWhitespace consumes space, tab, carriage return, and newline characters.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.advance()
	}
}

// Next scans and returns the next token from the input. After the input is
// exhausted every call returns an EOF token. The error is non-nil only for a
// malformed number literal, in which case the returned token is ILLEGAL.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespace()

	pos := l.currentPos()
	ch := l.ch

	if ch == eof {
		return makeToken(token.EOF, "", pos), nil
	}

	l.advance() // consume ch; from here on, l.ch is the character AFTER ch

	switch {
	case ch == '"' || ch == '\'' || ch == '`':
		return makeToken(token.STRING, l.readStringBody(ch), pos), nil

	case isIdentStart(ch):
		lit := l.readIdentFromFirst(ch)
		return makeToken(token.Lookup(lit), lit, pos), nil

	case isDigit(ch):
		return l.readNumberFromFirst(ch, pos)

	case token.IsSymbol(ch):
		return makeToken(token.SYMBOL, string(ch), pos), nil
	}

	// Anything else is ILLEGAL; ch has already been consumed so the scan
	// always makes progress.
	return makeToken(token.ILLEGAL, string(ch), pos), nil
}

// Tokenize returns all tokens (including the final EOF) produced by repeated
// calls to Next. It stops at the first malformed number and returns the
// tokens scanned so far together with the error.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

// ---------------------------------------------------------------------------
// Internal readers. Each assumes the first character has already been
// consumed by the advance() call inside Next.
// ---------------------------------------------------------------------------

func (l *Lexer) readIdentFromFirst(first rune) string {
	buf := make([]rune, 1, 16)
	buf[0] = first
	for isIdentContinue(l.ch) {
		buf = append(buf, l.ch)
		l.advance()
	}
	return string(buf)
}

// readNumberFromFirst accumulates digits and dots after the already-consumed
// first digit and converts the run to a float64. Magnitudes beyond float64
// saturate to infinity; any other conversion failure is a *NumberError.
func (l *Lexer) readNumberFromFirst(first rune, pos token.Position) (token.Token, error) {
	buf := make([]byte, 1, 24)
	buf[0] = byte(first)
	for isDigit(l.ch) || l.ch == '.' {
		buf = append(buf, byte(l.ch))
		l.advance()
	}
	lit := string(buf)

	val, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return makeToken(token.ILLEGAL, lit, pos), &NumberError{Pos: pos, Literal: lit, Err: err}
	}
	tok := makeToken(token.NUMBER, lit, pos)
	tok.Value = val
	return tok, nil
}

// readStringBody reads the content of a string literal after the opening
// quote has been consumed. The literal ends at the next occurrence of the same
// quote character, which is consumed, or silently at end of input.
func (l *Lexer) readStringBody(quote rune) string {
	start := l.off
	for l.ch != eof && l.ch != quote {
		l.advance()
	}
	body := l.input[start:l.off]
	if l.ch == quote {
		l.advance() // consume closing quote
	}
	return body
}

// ---------------------------------------------------------------------------
// Character classification helpers
// ---------------------------------------------------------------------------

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentContinue(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}
