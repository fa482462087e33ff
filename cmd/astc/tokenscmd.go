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

	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/astc/lang/ast"
	"github.com/probechain/astc/lang/lexer"
	"github.com/probechain/astc/lang/source"
	"github.com/probechain/astc/lang/token"
)

var (
	plainFlag = cli.BoolFlag{
		Name:  "plain",
		Usage: "Print tab-separated rows instead of a table",
	}

	tokensCommand = cli.Command{
		Action:    tokensCmd,
		Name:      "tokens",
		Usage:     "Print the token stream of a source file",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{plainFlag},
		Category:  "LANGUAGE COMMANDS",
		Description: `
The tokens command runs the tokenizer over a file and prints every token with
its position, kind and literal text. Scanning stops at a malformed number.`,
	}
)

func tokensCmd(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1, 1); err != nil {
		return err
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	path := ctx.Args().First()
	text, err := source.NewLoader(cfg.Source).Load(path)
	if err != nil {
		return err
	}
	return writeTokens(os.Stdout, path, text, ctx.Bool(plainFlag.Name))
}

// writeTokens prints the tokens of text. The lexer error, if any, is
// returned after the tokens scanned before it have been written.
func writeTokens(w io.Writer, filename, text string, plain bool) error {
	toks, lexErr := lexer.New(filename, text).Tokenize()
	if plain {
		for _, tok := range toks {
			fmt.Fprintf(w, "%s\t%s\t%q\n", tok.Pos, tok.Type, tok.Literal)
		}
		return lexErr
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Line", "Col", "Type", "Literal", "Value"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	for _, tok := range toks {
		var value string
		if tok.Type == token.NUMBER {
			value = ast.FormatNumber(tok.Value)
		}
		table.Append([]string{
			fmt.Sprint(tok.Pos.Line),
			fmt.Sprint(tok.Pos.Column),
			tok.Type.String(),
			fmt.Sprintf("%q", tok.Literal),
			value,
		})
	}
	table.Render()
	return lexErr
}
