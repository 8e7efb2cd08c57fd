// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package command defines the parsed form of a command line: commands,
// their redirections, and pipelines of commands.
package command

import (
	"strconv"
	"strings"
)

// Op is a redirection operator.
type Op int

// Redirection operators.
const (
	In        Op = iota // n<file
	Out                 // n>file
	Append              // n>>file
	ReadWrite           // n<>file
	Heredoc             // n<<delim, materialised into In before execution
	Dup                 // n>&m, n<&m
	Close               // n>&-
)

var opNames = map[Op]string{
	In:        "<",
	Out:       ">",
	Append:    ">>",
	ReadWrite: "<>",
	Heredoc:   "<<",
	Dup:       ">&",
	Close:     ">&-",
}

// String implements fmt.Stringer.
func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}

	return "op(" + strconv.Itoa(int(o)) + ")"
}

// Redirect is a single redirection, applied to file descriptor Fd.
type Redirect struct {
	Fd    int    // Target descriptor.
	Op    Op     // Operator.
	Path  string // File for In, Out, Append and ReadWrite.
	DupFd int    // Source descriptor for Dup.
	Body  string // Heredoc body until materialised.
}

// String renders the redirection in shell syntax, for logs.
func (r Redirect) String() string {
	fd := strconv.Itoa(r.Fd)

	switch r.Op {
	case Dup:
		return fd + ">&" + strconv.Itoa(r.DupFd)
	case Close:
		return fd + ">&-"
	case Heredoc:
		return fd + "<<(" + strconv.Itoa(len(r.Body)) + " bytes)"
	default:
		return fd + r.Op.String() + r.Path
	}
}

// Command is one stage of a pipeline.
type Command struct {
	// Args holds the command name followed by its arguments. An empty name
	// ("") is a distinct, valid value; a nil slice means no command word was
	// given at all.
	Args      []string
	Redirects []Redirect
}

// Name returns the command name and whether there is one.
func (c *Command) Name() (string, bool) {
	if c == nil || len(c.Args) == 0 {
		return "", false
	}

	return c.Args[0], true
}

// String renders the command for logs.
func (c *Command) String() string {
	parts := make([]string, 0, len(c.Args)+len(c.Redirects))
	for _, a := range c.Args {
		parts = append(parts, strconv.Quote(a))
	}

	for _, r := range c.Redirects {
		parts = append(parts, r.String())
	}

	return strings.Join(parts, " ")
}

// Pipeline is an ordered sequence of commands, first stage first.
type Pipeline []*Command

// String renders the pipeline for logs.
func (p Pipeline) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}

	return strings.Join(parts, " | ")
}
