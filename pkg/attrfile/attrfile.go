// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package attrfile reads and writes the host attribute file.
//
// The file is a shell fragment of NAME=value assignments sorted by name,
// so that downstream scripts can source it directly.
package attrfile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

const header = "# Host attributes generated by osg-configure. Do not edit, changes are overwritten.\n"

// Mode is the permission of the written file.
const Mode = 0o644

// ValidName is true if name can be written to the file: a shell variable name.
func ValidName(name string) bool { return syntax.ValidName(name) }

// Format renders attrs as shell assignments.
func Format(attrs osgconf.Attributes) ([]byte, error) {
	w := &bytes.Buffer{}
	w.WriteString(header)
	for _, name := range attrs.Names() {
		if !ValidName(name) {
			return nil, fmt.Errorf("attribute name is not a valid shell variable: %q", name)
		}
		q, err := syntax.Quote(attrs.String(name), syntax.LangBash)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", name, err)
		}
		fmt.Fprintf(w, "%v=%v\n", name, q)
	}
	return w.Bytes(), nil
}

// Write atomically replaces path with the formatted attributes.
func Write(path string, attrs osgconf.Attributes) error {
	data, err := Format(attrs)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, Mode); err != nil {
		return err
	}
	return os.Chmod(path, Mode) // WriteFile is subject to umask.
}

// Parse evaluates a shell attribute file and returns the variables it assigns.
// The file runs with an empty environment and may not execute commands.
func Parse(ctx context.Context, name string, data []byte) (osgconf.Attributes, error) {
	file, err := syntax.NewParser().Parse(bytes.NewReader(data), name)
	if err != nil {
		return nil, err
	}
	assigned := map[string]bool{}
	syntax.Walk(file, func(node syntax.Node) bool {
		if a, ok := node.(*syntax.Assign); ok && a.Name != nil {
			assigned[a.Name.Value] = true
		}
		return true
	})
	r, err := interp.New(
		interp.Env(expand.ListEnviron()),
		interp.StdIO(nil, io.Discard, io.Discard),
		interp.ExecHandlers(noExec))
	if err != nil {
		return nil, err
	}
	if err := r.Run(ctx, file); err != nil {
		return nil, fmt.Errorf("%v: %w", name, err)
	}
	attrs := osgconf.Attributes{}
	for n := range assigned {
		if v, ok := r.Vars[n]; ok && v.IsSet() {
			attrs[n] = v.String()
		}
	}
	return attrs, nil
}

func noExec(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(_ context.Context, args []string) error {
		return fmt.Errorf("attribute file may not run commands: %v", args[0])
	}
}

// ReadFile parses the attribute file at path.
func ReadFile(ctx context.Context, fs afero.Fs, path string) (osgconf.Attributes, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return Parse(ctx, path, data)
}
