// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package osgconf

import (
	"errors"
	"fmt"
	"strings"
)

// LintError is raised while loading configuration files, before any module runs.
type LintError struct {
	File string
	Line int // 0 if the problem is not tied to a line.
	Msg  string
}

func (e LintError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%v:%v: %v", e.File, e.Line, e.Msg)
	case e.File != "":
		return fmt.Sprintf("%v: %v", e.File, e.Msg)
	default:
		return e.Msg
	}
}

func IsLintError(err error) bool { return IsErrorType[LintError](err) }

// SettingError is a missing or malformed option, it always names the section and option.
type SettingError struct {
	Section, Option string
	Msg             string
}

func (e SettingError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("cannot get value for %v in section %v", e.Option, e.Section)
	}
	return fmt.Sprintf("[%v] %v: %v", e.Section, e.Option, e.Msg)
}

func IsSettingError(err error) bool { return IsErrorType[SettingError](err) }

// Diagnostic is a single validation problem.
type Diagnostic struct {
	Module, Section, Option string
	Message                 string
}

func (d Diagnostic) Error() string {
	if d.Option == "" {
		return fmt.Sprintf("[%v] %v", d.Section, d.Message)
	}
	return fmt.Sprintf("[%v] %v: %v", d.Section, d.Option, d.Message)
}

// ValidationError reports every diagnostic collected across all modules.
type ValidationError struct {
	Diagnostics []Diagnostic
}

func (e ValidationError) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "invalid configuration: %v problem(s)", len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		fmt.Fprintf(b, "\n  %v", d.Error())
	}
	return b.String()
}

func IsValidationError(err error) bool { return IsErrorType[ValidationError](err) }

// ConfigureError is a failure while applying a module to the host.
// The host may be partially configured.
type ConfigureError struct {
	Module string
	Err    error
}

func (e ConfigureError) Error() string { return fmt.Sprintf("configure %v: %v", e.Module, e.Err) }
func (e ConfigureError) Unwrap() error { return e.Err }

func IsConfigureError(err error) bool { return IsErrorType[ConfigureError](err) }

func IsErrorType[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
