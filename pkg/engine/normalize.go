// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package engine

import (
	"bytes"
	"os"
	"time"

	"github.com/google/renameio/v2"
	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/ini.v1"
)

// FileMode of a normalized configuration file.
const FileMode = 0o644

// Serialize asks every module to write its section for pairs into a new INI file.
// Modules keep the state from the last [Engine.Parse]: ignored sections are preserved.
// Free-form modules receive only the attributes no other module declares.
func (e *Engine) Serialize(pairs osgconf.Attributes) (*ini.File, error) {
	start := time.Now()
	defer e.metrics.Observe("serialize", start)
	out := ini.Empty()
	var unclaimed osgconf.Attributes
	for _, m := range e.registry.All() {
		p := pairs
		if m.Core().FreeForm() {
			if unclaimed == nil {
				unclaimed = osgconf.Attributes{}
				for k, v := range pairs {
					if !e.registry.Claimed(k) {
						unclaimed[k] = v
					}
				}
			}
			p = unclaimed
		}
		if err := osgconf.Serialize(m, p, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Normalize returns the canonical configuration text for pairs.
func (e *Engine) Normalize(pairs osgconf.Attributes) ([]byte, error) {
	f, err := e.Serialize(pairs)
	if err != nil {
		return nil, err
	}
	w := &bytes.Buffer{}
	if _, err := f.WriteTo(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// WriteFile atomically replaces path with data, then sets mode 0644 regardless of umask.
func WriteFile(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, FileMode); err != nil {
		return err
	}
	return os.Chmod(path, FileMode)
}

// Diff returns a unified diff from the current contents of path to data.
// A missing file is treated as empty.
func Diff(path string, data []byte) (string, error) {
	old, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(old)),
		B:        difflib.SplitLines(string(data)),
		FromFile: path,
		ToFile:   path + " (normalized)",
		Context:  3,
	})
}
