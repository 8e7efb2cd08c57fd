// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package parser

import (
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/minishell/internal/session"
	"mvdan.cc/sh/v3/syntax"
)

// Expander turns words into strings using the session's variables.
//
// Only parameter expansion, quote removal and a leading tilde are performed.
// There is no field splitting and no pathname expansion: one word is at most
// one argument.
type Expander struct {
	Session *session.Session
	// Pid is the value of $$.
	Pid int
}

// Word expands w. The second result is false when w must be dropped: it had
// no quoted part and expanded to nothing.
func (x *Expander) Word(w *syntax.Word) (string, bool, error) {
	if w == nil {
		return "", false, nil
	}

	var (
		sb     strings.Builder
		quoted bool
	)

	for i, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			v := p.Value
			if i == 0 {
				v = x.tilde(v)
			}

			sb.WriteString(unescape(v, escUnquoted))
		case *syntax.SglQuoted:
			if p.Dollar {
				return "", false, unsupported("$'...' quoting")
			}

			quoted = true

			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			quoted = true

			s, err := x.parts(p.Parts, escDouble)
			if err != nil {
				return "", false, err
			}

			sb.WriteString(s)
		case *syntax.ParamExp:
			s, err := x.param(p)
			if err != nil {
				return "", false, err
			}

			sb.WriteString(s)
		default:
			return "", false, unsupported(partName(part))
		}
	}

	s := sb.String()

	return s, quoted || s != "", nil
}

// Heredoc expands a heredoc body. A quoted delimiter means the body is used
// as written.
func (x *Expander) Heredoc(body *syntax.Word, quotedDelim bool) (string, error) {
	if body == nil {
		return "", nil
	}

	if quotedDelim {
		var sb strings.Builder

		for _, part := range body.Parts {
			if lit, ok := part.(*syntax.Lit); ok {
				sb.WriteString(lit.Value)
			}
		}

		return sb.String(), nil
	}

	return x.parts(body.Parts, escHeredoc)
}

// parts expands the inside of double quotes or a heredoc body.
func (x *Expander) parts(parts []syntax.WordPart, mode escMode) (string, error) {
	var sb strings.Builder

	for _, part := range parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(unescape(p.Value, mode))
		case *syntax.ParamExp:
			s, err := x.param(p)
			if err != nil {
				return "", err
			}

			sb.WriteString(s)
		default:
			return "", unsupported(partName(part))
		}
	}

	return sb.String(), nil
}

func (x *Expander) param(p *syntax.ParamExp) (string, error) {
	switch {
	case p.Param == nil:
		return "", unsupported("parameter expansion")
	case p.Length:
		return "", unsupported("${#...}")
	case p.Excl || p.Names != 0:
		return "", unsupported("indirect expansion")
	case p.Width || p.Index != nil || p.Slice != nil || p.Repl != nil || p.Exp != nil:
		return "", unsupported("${" + p.Param.Value + "...} operators")
	}

	switch name := p.Param.Value; name {
	case "?":
		return strconv.Itoa(x.Session.Status), nil
	case "$":
		return strconv.Itoa(x.Pid), nil
	case "0":
		return "minishell", nil
	case "#":
		return "0", nil
	default:
		v, _ := x.Session.Env.Get(name)
		return v, nil
	}
}

// tilde replaces a leading "~" or "~/" with $HOME, when HOME is set.
func (x *Expander) tilde(lit string) string {
	if lit != "~" && !strings.HasPrefix(lit, "~/") {
		return lit
	}

	home, ok := x.Session.Env.Get("HOME")
	if !ok {
		return lit
	}

	return home + lit[1:]
}

type escMode int

const (
	escUnquoted escMode = iota
	escDouble
	escHeredoc
)

// unescape removes the backslashes that quote the next character. Unquoted,
// any character can be escaped; inside double quotes only $ ` " \ can; in a
// heredoc only $ ` \ can. A backslash-newline pair is always removed.
func unescape(s string, mode escMode) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}

		next := s[i+1]

		switch {
		case next == '\n':
			i++
		case mode == escUnquoted,
			next == '$', next == '`', next == '\\',
			mode == escDouble && next == '"':
			sb.WriteByte(next)

			i++
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String()
}

// quotedWord reports whether any part of w is quoted or escaped, which for a
// heredoc delimiter disables expansion of the body.
func quotedWord(w *syntax.Word) bool {
	if w == nil {
		return false
	}

	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.SglQuoted, *syntax.DblQuoted:
			return true
		case *syntax.Lit:
			if strings.Contains(p.Value, `\`) {
				return true
			}
		}
	}

	return false
}

func partName(part syntax.WordPart) string {
	switch part.(type) {
	case *syntax.CmdSubst:
		return "command substitution"
	case *syntax.ArithmExp:
		return "arithmetic expansion"
	case *syntax.ProcSubst:
		return "process substitution"
	case *syntax.ExtGlob:
		return "extended globbing"
	case *syntax.BraceExp:
		return "brace expansion"
	default:
		return "word expansion"
	}
}
