// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package parsecache memoises parse results by content.
package parsecache

import (
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/crypto/sha3"

	"github.com/probechain/astc/lang/ast"
	"github.com/probechain/astc/lang/parser"
)

// DefaultSize is the number of results kept when no size is configured.
const DefaultSize = 128

// Key identifies a parse input.
type Key [32]byte

// KeyOf hashes a file name together with its source text. The name is part
// of the key because it is recorded in positions and diagnostics.
func KeyOf(filename, source string) Key {
	var k Key
	h := sha3.New256()
	io.WriteString(h, filename)
	h.Write([]byte{0})
	io.WriteString(h, source)
	h.Sum(k[:0])
	return k
}

// Result is one cached parse outcome. Results are shared between callers and
// must be treated as read-only.
type Result struct {
	Program     *ast.Program
	Diagnostics []*parser.Diagnostic
	Err         error
}

// Cache is an LRU cache of parse results, safe for concurrent use.
type Cache struct {
	cfg    parser.Config
	lru    *lru.Cache
	hits   uint64
	misses uint64
}

// New creates a cache holding up to size results, parsing misses with cfg.
func New(size int, cfg parser.Config) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{cfg: cfg, lru: c}, nil
}

// Parse returns the result for source, parsing it on a miss. The second
// return value reports whether the result came from the cache.
func (c *Cache) Parse(filename, source string) (*Result, bool) {
	key := KeyOf(filename, source)
	if v, ok := c.lru.Get(key); ok {
		atomic.AddUint64(&c.hits, 1)
		log.Trace("Parse cache hit", "file", filename)
		return v.(*Result), true
	}
	atomic.AddUint64(&c.misses, 1)

	prog, diags, err := c.cfg.Parse(filename, source, nil)
	res := &Result{Program: prog, Diagnostics: diags, Err: err}
	c.lru.Add(key, res)
	log.Trace("Parse cache miss", "file", filename, "diags", len(diags), "err", err)
	return res, false
}

// Len returns the number of cached results.
func (c *Cache) Len() int { return c.lru.Len() }

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// Purge drops every cached result.
func (c *Cache) Purge() { c.lru.Purge() }
