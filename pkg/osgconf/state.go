// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package osgconf

import (
	"context"
	"strings"

	"github.com/looplab/fsm"
)

// State of a module for one run.
type State string

const (
	Absent   State = "absent"   // Initial state, before the section is examined.
	Enabled  State = "enabled"  // Section present with enabled = True.
	Disabled State = "disabled" // Section absent, enabled missing or False.
	Ignored  State = "ignored"  // enabled = ignore: not parsed or applied, kept by the serializer.
)

// IgnoreValue is the literal that puts a section in the Ignored state.
const IgnoreValue = "ignore"

const (
	eventMissing = "missing"
	eventEnable  = "enable"
	eventDisable = "disable"
	eventIgnore  = "ignore"
)

var stateEvents = fsm.Events{
	{Name: eventMissing, Src: []string{string(Absent)}, Dst: string(Disabled)},
	{Name: eventEnable, Src: []string{string(Absent)}, Dst: string(Enabled)},
	{Name: eventDisable, Src: []string{string(Absent)}, Dst: string(Disabled)},
	{Name: eventIgnore, Src: []string{string(Absent)}, Dst: string(Ignored)},
}

// ResolveState reads the enabled option of a section and returns the resulting state.
// An enabled value that is neither a boolean nor "ignore" is a SettingError.
func ResolveState(cfg Config, section string) (State, error) {
	event, err := enablementEvent(cfg, section)
	if err != nil {
		return Disabled, err
	}
	machine := fsm.NewFSM(string(Absent), stateEvents, nil)
	if err := machine.Event(context.Background(), event); err != nil {
		return Disabled, err
	}
	return State(machine.Current()), nil
}

func enablementEvent(cfg Config, section string) (string, error) {
	if !cfg.HasSection(section) {
		return eventMissing, nil
	}
	raw, ok := cfg.Option(section, EnabledKey)
	if !ok || strings.TrimSpace(raw) == "" {
		return eventMissing, nil
	}
	if strings.EqualFold(strings.TrimSpace(raw), IgnoreValue) {
		return eventIgnore, nil
	}
	enabled, err := ParseBool(raw)
	if err != nil {
		return "", SettingError{Section: section, Option: EnabledKey, Msg: err.Error()}
	}
	if enabled {
		return eventEnable, nil
	}
	return eventDisable, nil
}
