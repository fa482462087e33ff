// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/astc/internal/debug"
	"github.com/probechain/astc/lang/parser"
	"github.com/probechain/astc/lang/printer"
	"github.com/probechain/astc/lang/source"
)

var (
	emitFlag = cli.StringFlag{
		Name:  "emit",
		Usage: "Output format: " + strings.Join(printer.Formats, ", "),
	}
	jobsFlag = cli.IntFlag{
		Name:  "jobs",
		Usage: "Number of files parsed concurrently",
		Value: runtime.NumCPU(),
	}

	parseCommand = cli.Command{
		Action:    parseCmd,
		Name:      "parse",
		Usage:     "Parse a source file and print its syntax tree",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{emitFlag},
		Category:  "LANGUAGE COMMANDS",
		Description: `
The parse command parses a file and prints the resulting program in the
format selected by --emit (default from the [Output] config section).
Diagnostics are written to stderr; the exit status is 1 if there were any.`,
	}
	checkCommand = cli.Command{
		Action:    checkCmd,
		Name:      "check",
		Usage:     "Parse source files and report diagnostics",
		ArgsUsage: "<file> [<file>...]",
		Flags:     []cli.Flag{jobsFlag},
		Category:  "LANGUAGE COMMANDS",
		Description: `
The check command parses every file independently and prints their
diagnostics in argument order, followed by a summary line.`,
	}
)

func parseCmd(ctx *cli.Context) error {
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
	diags := newDiagPrinter(os.Stderr, cfg.Output.Color && debug.UseColor(ctx, os.Stderr))
	if !parseAndWrite(os.Stdout, diags, cfg, path, text) {
		return cli.NewExitError("", 1)
	}
	return nil
}

// parseAndWrite parses text, reports diagnostics as they are found and
// prints the program. It returns false if the parse was not clean.
func parseAndWrite(w io.Writer, diags *diagPrinter, cfg astcConfig, path, text string) bool {
	prog, found, err := cfg.Parser.Parse(path, text, diags.diagnostic)
	if err != nil {
		diags.fatalErr(err)
		return false
	}
	if err := printer.Write(w, prog, cfg.Output.Format); err != nil {
		log.Error("Failed to write output", "err", err)
		return false
	}
	return len(found) == 0
}

func checkCmd(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1, -1); err != nil {
		return err
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	diags := newDiagPrinter(os.Stderr, cfg.Output.Color && debug.UseColor(ctx, os.Stderr))
	results := checkFiles(cfg, ctx.Args(), ctx.Int(jobsFlag.Name))
	if reportResults(diags, results) > 0 {
		return cli.NewExitError("", 1)
	}
	return nil
}

// checkResult is the outcome of checking a single file.
type checkResult struct {
	path  string
	diags []*parser.Diagnostic
	err   error // load failure or fatal parse error
}

func (r *checkResult) failed() bool {
	return r.err != nil || len(r.diags) > 0
}

// checkFiles parses paths concurrently, at most jobs at a time. Results are
// returned in the order of paths.
func checkFiles(cfg astcConfig, paths []string, jobs int) []*checkResult {
	if jobs < 1 {
		jobs = 1
	}
	loader := source.NewLoader(cfg.Source)
	results := make([]*checkResult, len(paths))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res := &checkResult{path: path}
			if text, err := loader.Load(path); err != nil {
				res.err = err
			} else {
				_, res.diags, res.err = cfg.Parser.Parse(path, text, nil)
			}
			log.Debug("Checked file", "path", path, "diags", len(res.diags), "err", res.err)
			results[i] = res
			return nil
		})
	}
	g.Wait()
	return results
}

// reportResults prints every result followed by a summary and returns the
// number of failed files.
func reportResults(p *diagPrinter, results []*checkResult) int {
	failed := 0
	for _, res := range results {
		p.diagnostics(res.diags)
		if res.err != nil {
			p.fatalErr(res.err)
		}
		if res.failed() {
			failed++
		}
	}
	p.summary(len(results), failed)
	return failed
}
