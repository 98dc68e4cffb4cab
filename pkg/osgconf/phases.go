// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package osgconf

import (
	"context"
	"fmt"
	"strings"

	"github.com/osgconf/osgconf/internal/pkg/logging"
	"github.com/osgconf/osgconf/pkg/validate"
	"gopkg.in/ini.v1"
)

// Parse resolves the module state and, if the module is Enabled, reads its schema fields
// and calls its [Parser]. Any error is a SettingError and is fatal for the run.
func Parse(m Module, cfg Config) error {
	b := m.Core()
	b.reset()
	section := b.Section()
	state, err := ResolveState(cfg, section)
	if err != nil {
		return err
	}
	b.state = state
	if p, ok := m.(Provider); ok && cfg.HasSection(section) {
		b.provided = p.Provide(cfg)
	}
	if state == Ignored {
		for _, k := range cfg.Keys(section) {
			if !strings.EqualFold(k, EnabledKey) {
				v, _ := cfg.Option(section, k)
				b.kept = append(b.kept, option{key: k, value: v})
			}
		}
	}
	if state != Enabled {
		b.log.V(2).Info("not parsed", "state", state)
		return nil
	}
	b.checkKeys(cfg)
	optional, defaults := b.schema.Optional(), b.schema.Defaults()
	for _, f := range b.schema {
		if f.Derived() {
			continue
		}
		v, ok, err := GetOption(cfg, section, f.Key, f.Kind, optional, defaults)
		if err != nil {
			return err
		}
		if ok {
			b.SetValue(f.Key, v)
		}
	}
	if p, ok := m.(Parser); ok {
		return p.Parse(cfg)
	}
	return nil
}

// checkKeys warns about unknown options and gives notice of deprecated ones.
func (b *Base) checkKeys(cfg Config) {
	keys := cfg.Keys(b.Section())
	if !b.freeForm {
		for _, k := range b.schema.Unknown(keys) {
			logging.Warn(b.log, "unknown option", "section", b.Section(), "option", k)
		}
	}
	for _, k := range keys {
		if f, ok := b.schema.Field(k); ok && f.Deprecated != "" {
			logging.Notice(b.log, fmt.Sprintf("option %q in section [%v] is deprecated, %v", f.Key, b.Section(), f.Deprecated))
		}
	}
}

// Resolve calls the module [Resolver] if the module is Enabled.
func Resolve(m Module, r Resolution) error {
	if m.State() != Enabled {
		return nil
	}
	if x, ok := m.(Resolver); ok {
		return x.Resolve(r)
	}
	return nil
}

// Validate checks required options and calls the module [Validator].
// Returns nil if the module is valid, Disabled or Ignored.
func Validate(m Module, c *validate.Checker) []Diagnostic {
	b := m.Core()
	if b.state != Enabled {
		return nil
	}
	v := newValidation(b, c)
	for _, f := range b.schema {
		if f.Derived() || f.Optional {
			continue
		}
		if val, _ := b.Value(f.Key); validate.Blank(val) {
			v.Errorf(f.Key, "a value is required")
		}
	}
	if x, ok := m.(Validator); ok {
		x.Validate(v)
	}
	for _, d := range v.diags {
		b.log.Info("invalid setting", "section", d.Section, "option", d.Option, "problem", d.Message)
	}
	return v.diags
}

// Apply calls the module [Applier] with a copy of global.
// applied is false if the module was skipped because it is not Enabled or has nothing to apply.
// Failures are returned as ConfigureError.
func Apply(ctx context.Context, m Module, host Host, global Attributes) (applied bool, err error) {
	b := m.Core()
	a, ok := m.(Applier)
	if b.state != Enabled || !ok {
		return false, nil
	}
	b.log.V(1).Info("apply")
	if err := a.Apply(ctx, host, global.Clone()); err != nil {
		if IsConfigureError(err) {
			return true, err
		}
		return true, ConfigureError{Module: b.name, Err: err}
	}
	return true, nil
}

// Configure runs a setup script, a failed script is a ConfigureError.
func (b *Base) Configure(ctx context.Context, host Host, script string, args ...string) error {
	b.log.V(1).Info("run setup script", "script", script, "args", args)
	ok, err := host.ConfigureService(ctx, script, args...)
	switch {
	case err != nil:
		return ConfigureError{Module: b.name, Err: err}
	case !ok:
		return ConfigureError{Module: b.name, Err: fmt.Errorf("%v failed", script)}
	}
	return nil
}

// HostAttributes returns what a module contributes to the host attribute file.
// This is [Base.Attributes], except that a disabled module with [Placeholders] contributes
// every attribute name with the value [validate.Unavailable].
func HostAttributes(m Module) Attributes {
	b := m.Core()
	switch {
	case b.state == Enabled:
		return b.Attributes()
	case b.state == Disabled && b.placeholders:
		a := Attributes{}
		for _, name := range b.schema.Attrs() {
			a[name] = validate.Unavailable
		}
		return a
	default:
		return Attributes{}
	}
}

// Serialize writes the module section to out from a flat attribute map.
//
//   - An Ignored module writes "enabled = ignore" followed by its options exactly as they were read.
//   - A member of an exclusive group is skipped unless its selector attribute names its section.
//   - Blank attributes are omitted; booleans are written as True or False.
//   - A section with no primary (non-optional) setting is removed.
//   - Retained sections always carry an explicit enabled option.
func Serialize(m Module, pairs Attributes, out *ini.File) error {
	b := m.Core()
	name := b.Section()
	if b.state == Ignored {
		sec, err := out.NewSection(name)
		if err != nil {
			return err
		}
		if _, err = sec.NewKey(EnabledKey, IgnoreValue); err != nil {
			return err
		}
		for _, o := range b.kept {
			if _, err := sec.NewKey(o.key, o.value); err != nil {
				return err
			}
		}
		return nil
	}
	if b.selector != "" && !strings.EqualFold(pairs.String(b.selector), name) {
		return nil
	}
	sec, err := out.NewSection(name)
	if err != nil {
		return err
	}
	if _, err := sec.NewKey(EnabledKey, FormatString(true)); err != nil {
		return err
	}
	primary := 0
	for _, f := range b.schema {
		if f.Derived() || f.Attr == "" {
			continue
		}
		v, ok := pairs[f.Attr]
		if !ok || validate.Blank(v) {
			continue
		}
		s, err := formatOption(v, f.Kind)
		if err != nil {
			return fmt.Errorf("[%v] %v: %w", name, f.Key, err)
		}
		if _, err := sec.NewKey(f.Key, s); err != nil {
			return err
		}
		if !f.Optional {
			primary++
		}
	}
	if s, ok := m.(Serializer); ok {
		n, err := s.Serialize(pairs, sec)
		if err != nil {
			return err
		}
		primary += n
	}
	if primary == 0 {
		out.DeleteSection(name)
	}
	return nil
}

func formatOption(v any, kind Kind) (string, error) {
	if kind != Bool {
		return FormatValue(v), nil
	}
	if x, ok := v.(bool); ok {
		return FormatString(x), nil
	}
	switch s := FormatValue(v); s {
	case "Y":
		return FormatString(true), nil
	case "N":
		return FormatString(false), nil
	default:
		x, err := ParseBool(s)
		if err != nil {
			return "", err
		}
		return FormatString(x), nil
	}
}
