// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package osgconf

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Attributes maps canonical attribute names to string, int, float64 or bool values.
type Attributes map[string]any

// Clone returns a shallow copy, never nil.
func (a Attributes) Clone() Attributes {
	c := Attributes{}
	maps.Copy(c, a)
	return c
}

// Names returns the attribute names in sorted order.
func (a Attributes) Names() []string { return slices.Sorted(maps.Keys(a)) }

// String returns the formatted value of an attribute, "" if it is absent.
func (a Attributes) String(name string) string {
	v, ok := a[name]
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// Strings returns every attribute formatted as a string.
func (a Attributes) Strings() map[string]string {
	m := make(map[string]string, len(a))
	for k, v := range a {
		m[k] = FormatValue(v)
	}
	return m
}

// FormatValue formats an attribute value the way it appears in the host attribute file.
// Booleans are written as Y or N.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "Y"
		}
		return "N"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
