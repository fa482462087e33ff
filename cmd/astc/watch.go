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
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/rjeczalik/notify"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/astc/internal/debug"
	"github.com/probechain/astc/internal/parsecache"
	"github.com/probechain/astc/lang/printer"
	"github.com/probechain/astc/lang/source"
)

var watchCommand = cli.Command{
	Action:    watchCmd,
	Name:      "watch",
	Usage:     "Re-parse a source file whenever it changes",
	ArgsUsage: "<file>",
	Flags:     []cli.Flag{emitFlag},
	Category:  "LANGUAGE COMMANDS",
	Description: `
The watch command parses a file, prints the result and then waits for the
file to change. Saves that leave the content unchanged are not reprinted.`,
}

func watchCmd(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1, 1); err != nil {
		return err
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	path, err := filepath.Abs(ctx.Args().First())
	if err != nil {
		return err
	}
	cache, err := parsecache.New(cfg.Cache.Size, cfg.Parser)
	if err != nil {
		return err
	}
	w := &watcher{
		path:   path,
		loader: source.NewLoader(cfg.Source),
		cache:  cache,
		format: cfg.Output.Format,
		out:    os.Stdout,
		diags:  newDiagPrinter(os.Stderr, cfg.Output.Color && debug.UseColor(ctx, os.Stderr)),
	}

	// Watch the directory rather than the file: editors commonly save by
	// renaming a new file over the old one.
	events := make(chan notify.EventInfo, 16)
	if err := notify.Watch(filepath.Dir(path), events, notify.Create, notify.Write, notify.Rename); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	defer notify.Stop(events)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	log.Info("Watching source file", "path", path)
	w.reload()
	for {
		select {
		case ev := <-events:
			if filepath.Base(ev.Path()) != filepath.Base(path) {
				continue
			}
			log.Debug("Source file event", "path", ev.Path(), "event", ev.Event())
			w.reload()
		case <-sigc:
			log.Info("Stopped watching", "path", path)
			return nil
		}
	}
}

// watcher re-parses one file on demand.
type watcher struct {
	path   string
	loader *source.Loader
	cache  *parsecache.Cache
	format string
	out    io.Writer
	diags  *diagPrinter

	last    parsecache.Key
	printed bool
}

// reload parses the file if its content changed since the last reload and
// prints the outcome. It reports whether anything was printed.
func (w *watcher) reload() bool {
	text, err := w.loader.Load(w.path)
	if err != nil {
		// The file may be briefly absent while an editor replaces it.
		log.Warn("Failed to load source", "path", w.path, "err", err)
		return false
	}
	key := parsecache.KeyOf(w.path, text)
	if w.printed && key == w.last {
		log.Debug("Source unchanged", "path", w.path)
		return false
	}
	w.last, w.printed = key, true

	res, hit := w.cache.Parse(w.path, text)
	log.Debug("Parsed source", "path", w.path, "cached", hit, "diags", len(res.Diagnostics))

	fmt.Fprintf(w.out, "== %s @ %s ==\n", filepath.Base(w.path), time.Now().Format("15:04:05"))
	w.diags.diagnostics(res.Diagnostics)
	if res.Err != nil {
		w.diags.fatalErr(res.Err)
		return true
	}
	if err := printer.Write(w.out, res.Program, w.format); err != nil {
		log.Error("Failed to write output", "err", err)
	}
	return true
}
