// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package configfile loads and lints the INI files that make up a site configuration.
//
// Section and option names are looked up without regard to case, but the original case
// of option names is kept so that free-form sections can export user-defined names.
// Values in the [DEFAULT] section are fallbacks for every other section.
// A value may refer to another option as ${key} (same section) or ${Section.key}.
package configfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/osgconf/osgconf/internal/pkg/logging"
	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

var log = logging.Log().WithName("configfile")

var loadOptions = ini.LoadOptions{
	IgnoreContinuation:       true,
	SpaceBeforeInlineComment: true,
}

// TemplateSentinels are values that only appear in the shipped example configuration.
var TemplateSentinels = []string{"foo@my.domain"}

// maxDepth limits nested ${} references.
const maxDepth = 10

// Config is a loaded site configuration. It implements [osgconf.Config].
type Config struct {
	files    []string
	sections []*section
	index    map[string]*section
	defaults *section
}

type section struct {
	name   string
	file   string
	keys   []string          // Original case, in file order.
	values map[string]string // Lower case key to value.
}

func newSection(name, file string) *section {
	return &section{name: name, file: file, values: map[string]string{}}
}

func (s *section) set(key, value string) {
	lower := strings.ToLower(key)
	if _, ok := s.values[lower]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[lower] = value
}

var _ osgconf.Config = &Config{}

// Load reads every file in dir in lexical order. Dotfiles and directories are skipped.
func Load(fs afero.Fs, dir string) (*Config, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, fi := range infos {
		if fi.IsDir() || strings.HasPrefix(fi.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, fi.Name()))
	}
	slices.Sort(paths)
	if len(paths) == 0 {
		return nil, osgconf.LintError{File: dir, Msg: noFiles}
	}
	return LoadFiles(fs, paths...)
}

const noFiles = "no configuration files found"

// Missing is true if err from [Load] means there is no configuration at all:
// the directory does not exist or holds no files. Any other error is a real problem.
func Missing(err error) bool {
	var lint osgconf.LintError
	return errors.Is(err, os.ErrNotExist) || (errors.As(err, &lint) && lint.Msg == noFiles)
}

// LoadFiles reads the files in the order given.
func LoadFiles(fs afero.Fs, paths ...string) (*Config, error) {
	l := newLoader()
	for _, p := range paths {
		log.V(2).Info("Loading configuration", "file", p)
		data, err := afero.ReadFile(fs, p)
		if err != nil {
			return nil, err
		}
		l.add(p, data)
	}
	return l.finish()
}

// Parse loads a single configuration from memory, name is used in error messages.
func Parse(name string, data []byte) (*Config, error) {
	l := newLoader()
	l.add(name, data)
	return l.finish()
}

// Files returns the files that were loaded, in load order.
func (c *Config) Files() []string { return slices.Clone(c.files) }

// Sections lists section names in load order, excluding [DEFAULT].
func (c *Config) Sections() []string {
	names := make([]string, len(c.sections))
	for i, s := range c.sections {
		names[i] = s.name
	}
	return names
}

// File returns the file containing a section, "" if there is none.
func (c *Config) File(name string) string {
	if s := c.section(name); s != nil {
		return s.file
	}
	return ""
}

func (c *Config) HasSection(name string) bool { return c.section(name) != nil }

// Option returns the expanded value of an option, falling back to [DEFAULT].
// A missing section has no options.
func (c *Config) Option(name, option string) (string, bool) {
	s := c.section(name)
	if s == nil {
		return "", false
	}
	return c.lookup(s, option)
}

// Keys lists the options set in the section itself, in their original case.
func (c *Config) Keys(name string) []string {
	if s := c.section(name); s != nil {
		return slices.Clone(s.keys)
	}
	return nil
}

func (c *Config) section(name string) *section { return c.index[strings.ToLower(name)] }

func (c *Config) lookup(s *section, option string) (string, bool) {
	key := strings.ToLower(option)
	if v, ok := s.values[key]; ok {
		return v, true
	}
	v, ok := c.defaults.values[key]
	return v, ok
}

type loader struct {
	c    *Config
	seen map[string]location
	errs []error
}

type location struct {
	file string
	line int
}

func newLoader() *loader {
	return &loader{
		c: &Config{
			index:    map[string]*section{},
			defaults: newSection(ini.DefaultSection, ""),
		},
		seen: map[string]location{},
	}
}

func (l *loader) add(file string, data []byte) {
	l.c.files = append(l.c.files, file)
	l.errs = append(l.errs, l.lint(file, data)...)
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		l.errs = append(l.errs, osgconf.LintError{File: file, Msg: err.Error()})
		return
	}
	for _, is := range f.Sections() {
		var s *section
		if strings.EqualFold(is.Name(), ini.DefaultSection) {
			s = l.c.defaults
		} else {
			key := strings.ToLower(is.Name())
			if s = l.c.index[key]; s == nil {
				s = newSection(is.Name(), file)
				l.c.index[key] = s
				l.c.sections = append(l.c.sections, s)
			}
		}
		for _, k := range is.Keys() {
			s.set(k.Name(), k.Value())
		}
	}
}

func (l *loader) finish() (*Config, error) {
	if len(l.errs) > 0 {
		return nil, errors.Join(l.errs...)
	}
	c := l.c
	expanded := map[*section]map[string]string{}
	for _, s := range append([]*section{c.defaults}, c.sections...) {
		m := map[string]string{}
		for k, v := range s.values {
			x, err := c.expand(s, v, 0)
			if err != nil {
				l.errs = append(l.errs, osgconf.LintError{File: s.file, Msg: fmt.Sprintf("[%v] %v: %v", s.name, k, err)})
				continue
			}
			if slices.ContainsFunc(TemplateSentinels, func(t string) bool { return strings.EqualFold(strings.TrimSpace(x), t) }) {
				l.errs = append(l.errs, osgconf.LintError{File: s.file, Msg: fmt.Sprintf(
					"[%v] %v: %q is the example value shipped with the package, edit the configuration before use", s.name, k, x)})
			}
			m[k] = x
		}
		expanded[s] = m
	}
	if len(l.errs) > 0 {
		return nil, errors.Join(l.errs...)
	}
	for s, m := range expanded {
		s.values = m
	}
	return c, nil
}

var reference = regexp.MustCompile(`\$\{([^}]*)\}`)

// expand replaces ${key} and ${Section.key} references in value.
// Unqualified keys are looked up in s, then in [DEFAULT].
func (c *Config) expand(s *section, value string, depth int) (string, error) {
	if depth > maxDepth {
		return "", fmt.Errorf("references nested more than %v deep in %q", maxDepth, value)
	}
	var err error
	out := reference.ReplaceAllStringFunc(value, func(match string) string {
		if err != nil {
			return match
		}
		ref := strings.TrimSpace(match[2 : len(match)-1])
		target, key := s, ref
		if i := strings.LastIndex(ref, "."); i >= 0 {
			if strings.EqualFold(ref[:i], ini.DefaultSection) {
				target = c.defaults
			} else {
				target = c.section(ref[:i])
			}
			key = ref[i+1:]
		}
		if target == nil {
			err = fmt.Errorf("unresolved reference %v", match)
			return match
		}
		raw, ok := c.lookup(target, key)
		if !ok {
			err = fmt.Errorf("unresolved reference %v", match)
			return match
		}
		var x string
		x, err = c.expand(target, raw, depth+1)
		return x
	})
	return out, err
}
