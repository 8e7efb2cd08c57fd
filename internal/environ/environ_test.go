// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package environ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DropsMalformedEntries(t *testing.T) {
	e := New([]string{"A=1", "", "=weird", "B", "C=x=y"})

	assert.Equal(t, []string{"A=1", "C=x=y"}, e.Environ())
	assert.Equal(t, 3, e.Len())

	v, ok := e.Get("C")
	require.True(t, ok)
	assert.Equal(t, "x=y", v)
}

func TestSet_KeepsPosition(t *testing.T) {
	e := New([]string{"A=1", "B=2", "C=3"})
	e.Set("B", "two")
	e.Set("D", "4")

	assert.Equal(t, []string{"A=1", "B=two", "C=3", "D=4"}, e.Environ())
}

func TestExport_WithoutValue(t *testing.T) {
	e := New(nil)
	e.Export("FOO")

	_, ok := e.Get("FOO")
	assert.False(t, ok, "exported name without value has no value")
	assert.Empty(t, e.Environ(), "valueless names are not passed to children")
	assert.Equal(t, []string{"FOO"}, e.Exported())

	e.Set("FOO", "bar")
	e.Export("FOO")

	v, ok := e.Get("FOO")
	require.True(t, ok)
	assert.Equal(t, "bar", v, "export must not clear an existing value")
}

func TestUnset(t *testing.T) {
	e := New([]string{"A=1", "B=2"})
	e.Unset("A")
	e.Unset("missing")

	assert.Equal(t, []string{"B=2"}, e.Environ())
}

func TestExported_Sorted(t *testing.T) {
	e := New([]string{"Z=1", "A_B=2", "M"})

	assert.Equal(t, []string{"A_B=2", "M", "Z=1"}, e.Exported())
}

func TestGet_PrefixDoesNotMatch(t *testing.T) {
	e := New([]string{"PATHX=1"})

	_, ok := e.Get("PATH")
	assert.False(t, ok)
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"FOO", true},
		{"_foo1", true},
		{"a", true},
		{"1A", false},
		{"", false},
		{"A-B", false},
		{"A=B", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidName(tt.name))
		})
	}
}

func TestEntries_RoundTripsThroughNew(t *testing.T) {
	e := New([]string{"B=2", "A=1"})
	e.Export("C")

	entries := e.Entries()
	assert.Equal(t, []string{"B=2", "A=1", "C"}, entries)

	entries[0] = "mutated"
	assert.Equal(t, "B=2", e.Entries()[0], "Entries returns a copy")

	assert.Equal(t, e.Entries(), New(e.Entries()).Entries())
}
