// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package enumflag is a command line flag restricted to a fixed set of words,
// such as the output formats of osg-configure commands.
// Implements the cobra pflag.Value interface.
package enumflag

import (
	"fmt"
	"slices"
	"strings"
)

type Value struct {
	value   string
	allowed []string
}

// New returns a flag with a default value and the allowed values.
// The default may be empty, meaning "not set".
func New(value string, allowed []string) *Value {
	allowed = slices.Sorted(slices.Values(allowed))
	return &Value{value: value, allowed: allowed}
}

func (v *Value) String() string { return v.value }

// Set accepts any allowed value, ignoring case.
func (v *Value) Set(s string) error {
	i := slices.IndexFunc(v.allowed, func(a string) bool { return strings.EqualFold(a, s) })
	if i < 0 {
		return fmt.Errorf("expected one of: %v", strings.Join(v.allowed, ", "))
	}
	v.value = v.allowed[i]
	return nil
}

func (v *Value) Type() string { return "string" }

// DocString returns flag usage text listing the allowed values.
func (v *Value) DocString(msg string) string {
	w := &strings.Builder{}
	if msg != "" {
		fmt.Fprintf(w, "%v: ", msg)
	}
	fmt.Fprintf(w, "one of %v", strings.Join(v.allowed, ", "))
	return w.String()
}
