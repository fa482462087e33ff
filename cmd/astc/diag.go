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

	"github.com/fatih/color"

	"github.com/probechain/astc/lang/parser"
)

// diagPrinter writes diagnostics and fatal errors for humans.
type diagPrinter struct {
	w     io.Writer
	pos   *color.Color
	err   *color.Color
	fatal *color.Color
	ok    *color.Color
}

func newDiagPrinter(w io.Writer, enabled bool) *diagPrinter {
	p := &diagPrinter{
		w:     w,
		pos:   color.New(color.Bold),
		err:   color.New(color.FgRed, color.Bold),
		fatal: color.New(color.FgMagenta, color.Bold),
		ok:    color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.pos, p.err, p.fatal, p.ok} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *diagPrinter) diagnostic(d *parser.Diagnostic) {
	fmt.Fprintf(p.w, "%s %s %s\n", p.pos.Sprint(d.Pos.String()+":"), p.err.Sprint("error:"), d.Msg)
}

func (p *diagPrinter) diagnostics(diags []*parser.Diagnostic) {
	for _, d := range diags {
		p.diagnostic(d)
	}
}

func (p *diagPrinter) fatalErr(err error) {
	fmt.Fprintf(p.w, "%s %v\n", p.fatal.Sprint("fatal:"), err)
}

func (p *diagPrinter) summary(files, failed int) {
	if failed == 0 {
		fmt.Fprintln(p.w, p.ok.Sprintf("%d file(s) checked, no errors", files))
		return
	}
	fmt.Fprintln(p.w, p.err.Sprintf("%d file(s) checked, %d with errors", files, failed))
}
