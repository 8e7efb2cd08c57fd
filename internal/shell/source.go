// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// ErrInterrupted is returned by a LineSource when the user pressed Ctrl-C at
// the prompt.
var ErrInterrupted = errors.New("interrupted")

// LineSource yields input lines without their trailing newline. It returns
// io.EOF once input is exhausted.
type LineSource interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// terminalSource reads from the controlling terminal. Lines are not kept
// in a history.
type terminalSource struct {
	state *liner.State
}

// NewTerminalSource returns a LineSource prompting on the terminal.
func NewTerminalSource() LineSource {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)

	return &terminalSource{state: state}
}

// ReadLine implements LineSource.
func (s *terminalSource) ReadLine(prompt string) (string, error) {
	line, err := s.state.Prompt(prompt)

	switch {
	case err == nil:
		return line, nil
	case errors.Is(err, liner.ErrPromptAborted):
		return "", ErrInterrupted
	case errors.Is(err, io.EOF):
		return "", io.EOF
	default:
		return "", fmt.Errorf("reading from terminal: %w", err)
	}
}

// Close restores the terminal mode.
func (s *terminalSource) Close() error {
	return s.state.Close() //nolint:wrapcheck
}

// readerSource reads lines from a script, a -c argument or piped input.
// Prompts are never printed.
type readerSource struct {
	r *bufio.Reader
}

// NewReaderSource returns a LineSource reading from r.
func NewReaderSource(r io.Reader) LineSource {
	return &readerSource{r: bufio.NewReader(r)}
}

// ReadLine implements LineSource. A final line without a newline is still
// returned before io.EOF.
func (s *readerSource) ReadLine(_ string) (string, error) {
	line, err := s.r.ReadString('\n')

	switch {
	case err == nil:
		return strings.TrimSuffix(line, "\n"), nil
	case errors.Is(err, io.EOF) && line != "":
		return line, nil
	case errors.Is(err, io.EOF):
		return "", io.EOF
	default:
		return "", fmt.Errorf("reading input: %w", err)
	}
}

// Close implements LineSource.
func (s *readerSource) Close() error {
	return nil
}
