// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package osgconf

import (
	"slices"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Kind is the type an option value is coerced to.
type Kind int

const (
	String Kind = iota
	Int
	Float
	Bool
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "boolean"
	default:
		return "string"
	}
}

// EnabledKey is the option every section uses to select the module state.
const EnabledKey = "enabled"

// Field declares one option of a module section and the attribute it maps to.
type Field struct {
	// Key is the INI option name. Empty for attributes that are derived rather than read.
	Key string
	// Attr is the canonical attribute name. Empty if the option is not exported.
	Attr string
	Kind Kind
	// Optional options may be absent, the accessor then reports them as unset.
	Optional bool
	// Default is used when the option is absent or blank. Nil means no default.
	Default any
	// Deprecated options are still read, a non-empty value is the removal advice shown to the operator.
	Deprecated string
}

// Derived reports whether the field is computed rather than read from the section.
func (f Field) Derived() bool { return f.Key == "" }

// Schema is the declarative description of a module section.
// Both the option accessor and the serializer consume it.
type Schema []Field

// Field finds a field by option name, ignoring case.
func (s Schema) Field(key string) (Field, bool) {
	i := slices.IndexFunc(s, func(f Field) bool { return f.Key != "" && strings.EqualFold(f.Key, key) })
	if i < 0 {
		return Field{}, false
	}
	return s[i], true
}

// Attr finds a field by canonical attribute name.
func (s Schema) Attr(name string) (Field, bool) {
	i := slices.IndexFunc(s, func(f Field) bool { return f.Attr != "" && f.Attr == name })
	if i < 0 {
		return Field{}, false
	}
	return s[i], true
}

// Attrs lists the canonical attribute names declared by the schema, including derived ones.
func (s Schema) Attrs() []string {
	var names []string
	for _, f := range s {
		if f.Attr != "" {
			names = append(names, f.Attr)
		}
	}
	return names
}

// Optional returns the set of optional option names, lower case.
func (s Schema) Optional() sets.Set[string] {
	o := sets.New[string]()
	for _, f := range s {
		if f.Key != "" && f.Optional {
			o.Insert(strings.ToLower(f.Key))
		}
	}
	return o
}

// Defaults maps lower case option names to their default value.
func (s Schema) Defaults() map[string]any {
	d := map[string]any{}
	for _, f := range s {
		if f.Key != "" && f.Default != nil {
			d[strings.ToLower(f.Key)] = f.Default
		}
	}
	return d
}

// Unknown returns the keys that are neither declared by the schema nor the enabled key.
func (s Schema) Unknown(keys []string) []string {
	var unknown []string
	for _, k := range keys {
		if strings.EqualFold(k, EnabledKey) {
			continue
		}
		if _, ok := s.Field(k); !ok {
			unknown = append(unknown, k)
		}
	}
	return unknown
}
