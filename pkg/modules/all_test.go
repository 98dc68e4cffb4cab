// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package modules_test

import (
	"context"
	"testing"

	"github.com/osgconf/osgconf/internal/pkg/test/modtest"
	"github.com/osgconf/osgconf/pkg/modules"
	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A module that is absent, disabled or ignored contributes nothing, always validates
// and never touches the host, whatever else its section contains.
func TestAll_NotEnabled(t *testing.T) {
	for _, m := range modules.All(modules.Options{}) {
		section := m.Sections()[0]
		for _, x := range []struct {
			name  string
			text  string
			state osgconf.State
		}{
			{"absent", "", osgconf.Disabled},
			{"disabled", "[" + section + "]\nenabled = False\nbogus = value\n", osgconf.Disabled},
			{"ignored", "[" + section + "]\nenabled = ignore\nbogus = value\n", osgconf.Ignored},
		} {
			t.Run(m.Name()+"/"+x.name, func(t *testing.T) {
				s := modtest.Parse(t, x.text, modtest.Host{})
				got := s.Module(m.Name())
				require.NotNil(t, got)
				assert.Equal(t, x.state, got.State())
				assert.Empty(t, got.Attributes())
				assert.Empty(t, s.Engine.Attributes())
				require.NoError(t, s.Engine.Validate())
				require.NoError(t, s.Engine.Apply(context.Background()))
				assert.Empty(t, s.Host.Strings())
			})
		}
	}
}

func TestAll_Unique(t *testing.T) {
	names, sections := map[string]bool{}, map[string]bool{}
	for _, m := range modules.All(modules.Options{}) {
		assert.False(t, names[m.Name()], m.Name())
		names[m.Name()] = true
		for _, s := range m.Sections() {
			assert.False(t, sections[s], s)
			sections[s] = true
		}
	}
	assert.Len(t, names, 12)
}
