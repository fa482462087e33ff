// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package debug wires command-line flags to the logging system.
package debug

import (
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"
)

var (
	VerbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	NoColorFlag = cli.BoolFlag{
		Name:  "nocolor",
		Usage: "Disable coloured log and diagnostic output",
	}
)

// Flags holds all command-line flags handled by this package.
var Flags = []cli.Flag{
	VerbosityFlag, NoColorFlag,
}

var glogger *log.GlogHandler

func init() {
	glogger = log.NewGlogHandler(log.StreamHandler(os.Stderr, log.TerminalFormat(false)))
	glogger.Verbosity(log.LvlInfo)
	log.Root().SetHandler(glogger)
}

// Setup initializes logging based on the CLI flags. It should be called as
// early as possible in the program.
func Setup(ctx *cli.Context) error {
	usecolor := UseColor(ctx, os.Stderr)
	output := io.Writer(os.Stderr)
	if usecolor {
		output = colorable.NewColorableStderr()
	}
	SetupWriter(output, usecolor, ctx.GlobalInt(VerbosityFlag.Name))
	return nil
}

// SetupWriter routes all log output to w at the given verbosity.
func SetupWriter(w io.Writer, usecolor bool, verbosity int) {
	glogger = log.NewGlogHandler(log.StreamHandler(w, log.TerminalFormat(usecolor)))
	glogger.Verbosity(log.Lvl(verbosity))
	log.Root().SetHandler(glogger)
}

// UseColor reports whether output written to f should be coloured: the
// --nocolor flag is unset, f is a terminal and TERM is not "dumb".
func UseColor(ctx *cli.Context, f *os.File) bool {
	if ctx.GlobalBool(NoColorFlag.Name) {
		return false
	}
	return (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
}
