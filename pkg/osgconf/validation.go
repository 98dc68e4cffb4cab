// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package osgconf

import (
	"fmt"

	"github.com/osgconf/osgconf/pkg/validate"
)

// Validation collects diagnostics for one module.
// The embedded Checker provides the host predicates.
type Validation struct {
	*validate.Checker
	module, section string
	diags           []Diagnostic
}

func newValidation(b *Base, c *validate.Checker) *Validation {
	return &Validation{Checker: c, module: b.name, section: b.Section()}
}

// Errorf records a problem with an option. option may be empty for section-level problems.
func (v *Validation) Errorf(option, format string, args ...any) {
	v.diags = append(v.diags, Diagnostic{
		Module:  v.module,
		Section: v.section,
		Option:  option,
		Message: fmt.Sprintf(format, args...),
	})
}

// Section is the section being validated.
func (v *Validation) Section() string { return v.section }

// Diagnostics returns the recorded problems.
func (v *Validation) Diagnostics() []Diagnostic { return v.diags }
