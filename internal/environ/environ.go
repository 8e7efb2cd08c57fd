// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package environ holds the shell's ordered environment list.
//
// Entries are stored as "KEY=VALUE" strings in insertion order, the same shape
// the operating system hands to a new process. An entry without '=' is a name
// that has been exported but never given a value; it is listed by `export` but
// never passed to child processes.
package environ

import (
	"regexp"
	"slices"
	"strings"
)

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether name is a valid shell identifier.
func ValidName(name string) bool {
	return validName.MatchString(name)
}

// Env is an ordered list of environment entries.
type Env struct {
	entries []string
}

// New returns an Env seeded with a copy of list.
// Malformed entries (empty, or starting with '=') are dropped.
func New(list []string) *Env {
	e := &Env{entries: make([]string, 0, len(list))}
	for _, kv := range list {
		if kv == "" || kv[0] == '=' {
			continue
		}

		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			e.Export(name)
			continue
		}

		e.Set(name, value)
	}

	return e
}

func (e *Env) index(name string) int {
	for i, kv := range e.entries {
		if k, _, _ := strings.Cut(kv, "="); k == name {
			return i
		}
	}

	return -1
}

// Get returns the value of name and whether it has a value.
func (e *Env) Get(name string) (string, bool) {
	i := e.index(name)
	if i < 0 {
		return "", false
	}

	_, v, ok := strings.Cut(e.entries[i], "=")

	return v, ok
}

// Set assigns value to name, keeping its position if it already exists.
func (e *Env) Set(name, value string) {
	kv := name + "=" + value
	if i := e.index(name); i >= 0 {
		e.entries[i] = kv
		return
	}

	e.entries = append(e.entries, kv)
}

// Export marks name as exported without changing an existing value.
func (e *Env) Export(name string) {
	if e.index(name) >= 0 {
		return
	}

	e.entries = append(e.entries, name)
}

// Unset removes name. Removing a missing name is not an error.
func (e *Env) Unset(name string) {
	if i := e.index(name); i >= 0 {
		e.entries = slices.Delete(e.entries, i, i+1)
	}
}

// Environ returns the entries that carry a value, in insertion order.
// The result is a copy and safe to hand to os.StartProcess.
func (e *Env) Environ() []string {
	out := make([]string, 0, len(e.entries))
	for _, kv := range e.entries {
		if strings.Contains(kv, "=") {
			out = append(out, kv)
		}
	}

	return out
}

// Entries returns a copy of every entry, valued or not, in insertion order.
func (e *Env) Entries() []string {
	return slices.Clone(e.entries)
}

// Exported returns every entry, valued or not, sorted by name.
func (e *Env) Exported() []string {
	out := slices.Clone(e.entries)
	slices.SortFunc(out, func(a, b string) int {
		ak, _, _ := strings.Cut(a, "=")
		bk, _, _ := strings.Cut(b, "=")

		return strings.Compare(ak, bk)
	})

	return out
}

// Len returns the number of entries, valued or not.
func (e *Env) Len() int {
	return len(e.entries)
}
