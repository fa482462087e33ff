// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Command astc is the astc language front end.
//
// Usage:
//
//	astc [global options] command [command options] [arguments...]
//
// Commands:
//
//	tokens      print the token stream of a source file
//	parse       parse a source file and print its syntax tree
//	check       parse source files and report diagnostics
//	repl        parse input interactively
//	watch       re-parse a source file whenever it changes
//	dumpconfig  show configuration values
package main

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/astc/internal/debug"
)

const (
	clientIdentifier = "astc"
	version          = "0.1.0"
)

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""

var app = cli.NewApp()

func init() {
	app.Name = clientIdentifier
	app.Usage = "tokenize, parse and check astc programs"
	app.Version = version
	if len(gitCommit) >= 8 {
		app.Version += "-" + gitCommit[:8]
	}
	app.Copyright = "Copyright 2024 The ProbeChain Authors"
	app.Commands = []cli.Command{
		tokensCommand,
		parseCommand,
		checkCommand,
		replCommand,
		watchCommand,
		dumpConfigCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Flags = append([]cli.Flag{configFileFlag, maxDepthFlag}, debug.Flags...)
	app.Before = debug.Setup
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// requireArgs fails with a usage error unless the command got at least min
// and at most max positional arguments. A negative max means no limit.
func requireArgs(ctx *cli.Context, min, max int) error {
	n := ctx.NArg()
	if n < min || (max >= 0 && n > max) {
		return fmt.Errorf("usage: %s %s %s", clientIdentifier, ctx.Command.Name, ctx.Command.ArgsUsage)
	}
	return nil
}
