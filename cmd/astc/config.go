// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/ethereum/go-ethereum/log"
	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/astc/internal/debug"
	"github.com/probechain/astc/internal/parsecache"
	"github.com/probechain/astc/lang/parser"
	"github.com/probechain/astc/lang/printer"
	"github.com/probechain/astc/lang/source"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[<file>]",
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The dumpconfig command shows configuration values.`,
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	maxDepthFlag = cli.IntFlag{
		Name:  "maxdepth",
		Usage: "Maximum nesting depth of expressions and conditionals",
		Value: parser.DefaultMaxDepth,
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type cacheConfig struct {
	Size int
}

type outputConfig struct {
	Format string
	Color  bool
}

type astcConfig struct {
	Parser parser.Config
	Source source.Config
	Cache  cacheConfig
	Output outputConfig
}

func defaultConfig() astcConfig {
	return astcConfig{
		Parser: parser.DefaultConfig,
		Source: source.DefaultConfig,
		Cache:  cacheConfig{Size: parsecache.DefaultSize},
		Output: outputConfig{Format: printer.FormatTree, Color: true},
	}
}

func (c *astcConfig) validate() error {
	if c.Parser.MaxDepth < 0 {
		return fmt.Errorf("invalid Parser.MaxDepth %d", c.Parser.MaxDepth)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("invalid Cache.Size %d", c.Cache.Size)
	}
	for _, f := range printer.Formats {
		if c.Output.Format == f {
			return nil
		}
	}
	return fmt.Errorf("%w %q", printer.ErrUnknownFormat, c.Output.Format)
}

func loadConfig(file string, cfg *astcConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig assembles the effective configuration: defaults, then the
// config file, then command-line flags.
func makeConfig(ctx *cli.Context) (astcConfig, error) {
	cfg := defaultConfig()

	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}

	if ctx.GlobalIsSet(maxDepthFlag.Name) {
		cfg.Parser.MaxDepth = ctx.GlobalInt(maxDepthFlag.Name)
	}
	if ctx.GlobalBool(debug.NoColorFlag.Name) {
		cfg.Output.Color = false
	}
	if ctx.IsSet(emitFlag.Name) {
		cfg.Output.Format = ctx.String(emitFlag.Name)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	log.Debug("Loaded configuration", "maxdepth", cfg.Parser.MaxDepth, "mmap", cfg.Source.MmapThreshold,
		"cache", cfg.Cache.Size, "format", cfg.Output.Format)
	return cfg, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	_, err = dump.Write(out)
	return err
}
