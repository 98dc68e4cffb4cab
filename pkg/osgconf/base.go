// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package osgconf

import (
	"os"
	"slices"
	"strings"

	"github.com/go-logr/logr"
	"github.com/osgconf/osgconf/internal/pkg/logging"
	"github.com/osgconf/osgconf/pkg/validate"
)

// Base is the state shared by all modules. Modules embed *Base.
type Base struct {
	name         string
	sections     []string
	schema       Schema
	separate     bool
	group        string
	selector     string
	placeholders bool
	freeForm     bool

	state    State
	attrs    Attributes
	values   map[string]any
	provided map[string]string
	kept     []option // Options of an Ignored section, in file order.
	log      logr.Logger
	getenv   func(string) string
}

// BaseOption sets optional properties of a module.
type BaseOption func(*Base)

// SeparatelyConfigurable marks a module that an operator may apply on its own.
func SeparatelyConfigurable() BaseOption { return func(b *Base) { b.separate = true } }

// ExclusiveGroup puts the module in a group of which at most one member may be enabled.
// Group members may share attribute names. selector is the attribute whose value names
// the enabled member's section; the serializer drops the other members.
func ExclusiveGroup(group, selector string) BaseOption {
	return func(b *Base) { b.group, b.selector = group, selector }
}

// Placeholders makes a disabled module publish every attribute as [validate.Unavailable]
// in the host attribute file, so consumers see a stable set of names.
func Placeholders() BaseOption { return func(b *Base) { b.placeholders = true } }

// FreeForm marks a section whose option names are user-defined. Unknown option warnings are suppressed.
func FreeForm() BaseOption { return func(b *Base) { b.freeForm = true } }

// NewBase creates the shared state for a module owning sections.
func NewBase(name string, sections []string, schema Schema, opts ...BaseOption) *Base {
	b := &Base{name: name, sections: sections, schema: schema, log: logging.Log().WithName(name), getenv: os.Getenv}
	for _, o := range opts {
		o(b)
	}
	b.reset()
	return b
}

func (b *Base) reset() {
	b.state = Absent
	b.attrs = Attributes{}
	b.values = map[string]any{}
	b.provided = nil
	b.kept = nil
}

type option struct{ key, value string }

func (b *Base) Core() *Base                  { return b }
func (b *Base) Name() string                 { return b.name }
func (b *Base) Sections() []string           { return slices.Clone(b.sections) }
func (b *Base) Schema() Schema               { return b.schema }
func (b *Base) SeparatelyConfigurable() bool { return b.separate }
func (b *Base) State() State                 { return b.state }

// Section is the primary section name.
func (b *Base) Section() string { return b.sections[0] }

// ExclusiveGroup returns the exclusive group name, "" if none.
func (b *Base) ExclusiveGroup() string { return b.group }

// FreeForm is true if option names in the section are user-defined.
func (b *Base) FreeForm() bool { return b.freeForm }

// Attributes returns a copy of the attributes, empty unless the module is Enabled.
func (b *Base) Attributes() Attributes {
	if b.state != Enabled {
		return Attributes{}
	}
	return b.attrs.Clone()
}

// Provided returns the values published during parse.
func (b *Base) Provided() map[string]string { return b.provided }

// Log returns the module logger.
func (b *Base) Log() logr.Logger { return b.log }

// SetLog replaces the module logger.
func (b *Base) SetLog(l logr.Logger) { b.log = l.WithName(b.name) }

// Getenv returns an environment variable, "" if unset.
func (b *Base) Getenv(key string) string { return b.getenv(key) }

// SetGetenv replaces the environment lookup.
func (b *Base) SetGetenv(f func(string) string) { b.getenv = f }

// SetState forces the module state, for use by tools that build modules without a configuration.
func (b *Base) SetState(s State) { b.state = s }

// Value returns the parsed value of an option.
func (b *Base) Value(key string) (any, bool) {
	v, ok := b.values[strings.ToLower(key)]
	return v, ok
}

// StringValue returns an option value as a string, "" if unset.
func (b *Base) StringValue(key string) string {
	v, _ := b.Value(key)
	return FormatString(v)
}

// BoolValue returns a boolean option value, false if unset.
func (b *Base) BoolValue(key string) bool {
	v, _ := b.Value(key)
	x, _ := v.(bool)
	return x
}

// IntValue returns an integer option value, 0 if unset.
func (b *Base) IntValue(key string) int {
	v, _ := b.Value(key)
	x, _ := v.(int)
	return x
}

// IsSet is true if the option has a non-blank value.
func (b *Base) IsSet(key string) bool {
	v, ok := b.Value(key)
	return ok && !validate.Blank(v)
}

// SetValue sets an option value and the attribute the schema maps it to.
func (b *Base) SetValue(key string, v any) {
	b.values[strings.ToLower(key)] = v
	if f, ok := b.schema.Field(key); ok && f.Attr != "" {
		b.attrs[f.Attr] = v
	}
}

// SetAttr sets an attribute that has no option, e.g. a derived attribute.
func (b *Base) SetAttr(name string, v any) { b.attrs[name] = v }

// FormatString formats an option value for use in commands and messages.
// Unlike [FormatValue] booleans are written as True or False.
func FormatString(v any) string {
	if x, ok := v.(bool); ok {
		if x {
			return "True"
		}
		return "False"
	}
	return FormatValue(v)
}
