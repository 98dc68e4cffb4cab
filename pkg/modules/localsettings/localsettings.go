// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package localsettings passes site-defined attributes through to the host attribute file.
//
// # Section
//
//	[Local Settings]
//	enabled = True
//	MY_SITE_VAR = some value
//
// Option names keep their case and become attribute names as written,
// so they must be valid shell variable names.
package localsettings

import (
	"strings"

	"github.com/osgconf/osgconf/pkg/attrfile"
	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/osgconf/osgconf/pkg/validate"
	"gopkg.in/ini.v1"
)

type Module struct{ *osgconf.Base }

var (
	// Verify implementing interfaces.
	_ osgconf.Parser     = &Module{}
	_ osgconf.Serializer = &Module{}
	_ osgconf.Validator  = &Module{}
)

func New() *Module {
	return &Module{Base: osgconf.NewBase("localsettings", []string{"Local Settings"}, nil, osgconf.FreeForm())}
}

func (m *Module) Parse(cfg osgconf.Config) error {
	for _, k := range cfg.Keys(m.Section()) {
		if strings.EqualFold(k, osgconf.EnabledKey) {
			continue
		}
		v, _ := cfg.Option(m.Section(), k)
		m.SetAttr(k, v)
	}
	return nil
}

// Validate rejects option names that cannot be written to the host attribute file.
func (m *Module) Validate(v *osgconf.Validation) {
	for _, k := range m.Attributes().Names() {
		if !attrfile.ValidName(k) {
			v.Errorf(k, "%q is not a valid attribute name, use letters, digits and underscores", k)
		}
	}
}

// Serialize writes every non-blank pair as an option, in name order.
func (m *Module) Serialize(pairs osgconf.Attributes, section *ini.Section) (int, error) {
	n := 0
	for _, k := range pairs.Names() {
		if v := pairs[k]; !validate.Blank(v) {
			if _, err := section.NewKey(k, osgconf.FormatValue(v)); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}
