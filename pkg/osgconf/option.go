// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package osgconf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/osgconf/osgconf/pkg/validate"
	"github.com/spf13/cast"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Config is a read-only view of the loaded site configuration.
//
// Section and option names are matched without regard to case.
type Config interface {
	// HasSection is true if the section is present.
	HasSection(section string) bool
	// Option returns the raw value of an option and whether it is present.
	Option(section, option string) (string, bool)
	// Keys lists option names in a section, preserving their original case.
	Keys(section string) []string
}

// GetOption reads an option and coerces it to kind.
//
//   - present and not blank: the parsed value, or a SettingError if it does not parse.
//   - blank or absent with a default: the default.
//   - absent and optional: ok == false, meaning unset.
//   - otherwise a SettingError.
func GetOption(cfg Config, section, option string, kind Kind, optional sets.Set[string], defaults map[string]any) (v any, ok bool, err error) {
	key := strings.ToLower(option)
	if raw, present := cfg.Option(section, option); present && !validate.Blank(raw) {
		v, err := ParseValue(raw, kind)
		if err != nil {
			return nil, false, SettingError{Section: section, Option: option, Msg: err.Error()}
		}
		return v, true, nil
	}
	if d, found := defaults[key]; found {
		return d, true, nil
	}
	if optional.Has(key) {
		return nil, false, nil
	}
	return nil, false, SettingError{Section: section, Option: option}
}

// Numbers are decimal only: no base prefixes, no digit separators.
var (
	decimalInt   = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decimalFloat = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
)

// ParseValue coerces a raw option string to kind.
func ParseValue(raw string, kind Kind) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case Int:
		if !decimalInt.MatchString(raw) {
			return nil, fmt.Errorf("expected an integer, got %q", raw)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", raw)
		}
		return n, nil
	case Float:
		if !decimalFloat.MatchString(raw) {
			return nil, fmt.Errorf("expected a number, got %q", raw)
		}
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", raw)
		}
		return f, nil
	case Bool:
		return ParseBool(raw)
	default:
		return raw, nil
	}
}

// ParseBool accepts True/False, yes/no and 1/0 in any case.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected True or False, got %q", raw)
}
