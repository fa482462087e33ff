// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package source loads astc program text from disk.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNotRegular is returned when the path names a directory, device or other
// non-regular file.
var ErrNotRegular = errors.New("not a regular file")

// Config contains the loader settings.
type Config struct {
	// Files of at least this many bytes are memory-mapped instead of read.
	// Zero or negative disables mapping.
	MmapThreshold int64
}

// DefaultConfig contains the default settings.
var DefaultConfig = Config{
	MmapThreshold: 1 << 20,
}

// Loader reads source files.
type Loader struct {
	cfg Config
}

// NewLoader creates a loader with the given settings.
func NewLoader(cfg Config) *Loader {
	return &Loader{cfg: cfg}
}

// Load reads the file at path with DefaultConfig.
func Load(path string) (string, error) {
	return NewLoader(DefaultConfig).Load(path)
}

// Load reads the file at path and returns its text as UTF-8. A UTF-8 or
// UTF-16 byte-order mark is honoured and stripped; invalid UTF-8 sequences
// are replaced by U+FFFD.
func (l *Loader) Load(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	size := info.Size()
	if size == 0 {
		return "", nil
	}

	var data []byte
	mapped := l.cfg.MmapThreshold > 0 && size >= l.cfg.MmapThreshold
	if mapped {
		m, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			return "", fmt.Errorf("mmap %s: %w", path, err)
		}
		defer m.Unmap()
		data = m
	} else {
		if data, err = io.ReadAll(f); err != nil {
			return "", err
		}
	}
	log.Debug("Loaded source", "path", path, "size", size, "mmap", mapped)

	// Decode copies, so the text stays valid after the mapping is released.
	return Decode(data)
}

// Decode converts raw file contents to UTF-8 text.
func Decode(data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
