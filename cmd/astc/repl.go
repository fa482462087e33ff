// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/log"
	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/astc/internal/debug"
	"github.com/probechain/astc/internal/parsecache"
	"github.com/probechain/astc/lang/lexer"
	"github.com/probechain/astc/lang/printer"
	"github.com/probechain/astc/lang/token"
)

const (
	replFilename = "<repl>"
	historyFile  = ".astc_history"
)

var replCommand = cli.Command{
	Action:   replCmd,
	Name:     "repl",
	Usage:    "Parse input interactively",
	Flags:    []cli.Flag{emitFlag},
	Category: "LANGUAGE COMMANDS",
	Description: `
The repl command reads statements from the terminal and prints their syntax
tree. Input continues on the next line while braces or parentheses are open.
Ctrl-C discards pending input; Ctrl-D exits.`,
}

func replCmd(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	cache, err := parsecache.New(cfg.Cache.Size, cfg.Parser)
	if err != nil {
		return err
	}
	session := &replSession{
		cache:  cache,
		format: cfg.Output.Format,
		out:    os.Stdout,
		diags:  newDiagPrinter(os.Stderr, cfg.Output.Color && debug.UseColor(ctx, os.Stderr)),
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetWordCompleter(completeWord)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		} else {
			log.Warn("Failed to save repl history", "path", histPath, "err", err)
		}
	}()

	fmt.Printf("Welcome to the %s %s repl. Ctrl-D to exit.\n", clientIdentifier, version)

	var pending strings.Builder
	for {
		prompt := "> "
		if pending.Len() > 0 {
			prompt = ". "
		}
		input, err := line.Prompt(prompt)
		switch {
		case err == liner.ErrPromptAborted:
			pending.Reset()
			continue
		case err == io.EOF:
			fmt.Println()
			return nil
		case err != nil:
			return err
		}
		pending.WriteString(input)
		pending.WriteByte('\n')
		if openDepth(pending.String()) > 0 {
			continue
		}
		src := pending.String()
		pending.Reset()
		if strings.TrimSpace(src) == "" {
			continue
		}
		line.AppendHistory(strings.Join(strings.Fields(src), " "))
		session.eval(src)
	}
}

func historyPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, historyFile)
	}
	return filepath.Join(os.TempDir(), historyFile)
}

// replSession parses and prints one input at a time.
type replSession struct {
	cache  *parsecache.Cache
	format string
	out    io.Writer
	diags  *diagPrinter
}

func (s *replSession) eval(src string) {
	res, hit := s.cache.Parse(replFilename, src)
	log.Trace("Evaluated repl input", "cached", hit)
	s.diags.diagnostics(res.Diagnostics)
	if res.Err != nil {
		s.diags.fatalErr(res.Err)
		return
	}
	if err := printer.Write(s.out, res.Program, s.format); err != nil {
		log.Error("Failed to write output", "err", err)
	}
}

// openDepth returns the number of unclosed braces and parentheses in src.
// A malformed number ends the scan; the parser reports it.
func openDepth(src string) int {
	depth := 0
	l := lexer.New(replFilename, src)
	for {
		tok, err := l.Next()
		if err != nil || tok.Type == token.EOF {
			return depth
		}
		switch {
		case tok.IsSymbol('{'), tok.IsSymbol('('):
			depth++
		case tok.IsSymbol('}'), tok.IsSymbol(')'):
			depth--
		}
	}
}

// completeWord completes keywords and type names at the cursor. pos counts
// runes, not bytes.
func completeWord(line string, pos int) (head string, completions []string, tail string) {
	runes := []rune(line)
	if pos > len(runes) {
		pos = len(runes)
	}
	start := pos
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	prefix := string(runes[start:pos])
	if prefix == "" {
		return string(runes[:pos]), nil, string(runes[pos:])
	}
	for _, word := range append(token.Keywords(), token.TypeNames()...) {
		if strings.HasPrefix(word, prefix) {
			completions = append(completions, word)
		}
	}
	sort.Strings(completions)
	return string(runes[:start]), completions, string(runes[pos:])
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
