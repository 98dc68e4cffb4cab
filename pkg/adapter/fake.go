// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/osgconf/osgconf/pkg/osgconf"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Call records one side effect requested from a [Fake].
type Call struct {
	Op   string // configure, enable, disable or write
	Name string // script, service or file path
	Args []string
}

func (c Call) String() string {
	if len(c.Args) == 0 {
		return fmt.Sprintf("%v %v", c.Op, c.Name)
	}
	return fmt.Sprintf("%v %v %v", c.Op, c.Name, strings.Join(c.Args, " "))
}

// Fake is a [osgconf.Host] that records calls instead of changing the host.
type Fake struct {
	Calls []Call
	// Files written, by path.
	Files map[string][]byte
	// Enabled services.
	Enabled sets.Set[string]
	// Fail lists scripts that exit non-zero.
	Fail sets.Set[string]
}

var _ osgconf.Host = &Fake{}

func NewFake() *Fake {
	return &Fake{Files: map[string][]byte{}, Enabled: sets.New[string](), Fail: sets.New[string]()}
}

func (f *Fake) ConfigureService(_ context.Context, script string, args ...string) (bool, error) {
	f.Calls = append(f.Calls, Call{Op: "configure", Name: script, Args: args})
	return !f.Fail.Has(script), nil
}

func (f *Fake) EnableService(_ context.Context, name string) error {
	f.Calls = append(f.Calls, Call{Op: "enable", Name: name})
	f.Enabled.Insert(name)
	return nil
}

func (f *Fake) DisableService(_ context.Context, name string) error {
	f.Calls = append(f.Calls, Call{Op: "disable", Name: name})
	f.Enabled.Delete(name)
	return nil
}

func (f *Fake) ServiceEnabled(_ context.Context, name string) (bool, error) {
	return f.Enabled.Has(name), nil
}

func (f *Fake) WriteFile(path string, data []byte) error {
	f.Calls = append(f.Calls, Call{Op: "write", Name: path})
	f.Files[path] = data
	return nil
}

// Strings returns the recorded calls as strings.
func (f *Fake) Strings() []string {
	s := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		s[i] = c.String()
	}
	return s
}
