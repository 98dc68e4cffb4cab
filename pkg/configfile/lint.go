// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package configfile

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/osgconf/osgconf/pkg/osgconf"
)

// lint checks the raw lines of a file for problems the INI reader would silently accept:
// sections repeated anywhere in the configuration and lines that begin with whitespace.
func (l *loader) lint(file string, data []byte) (errs []error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; scanner.Scan(); n++ {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			errs = append(errs, osgconf.LintError{File: file, Line: n,
				Msg: fmt.Sprintf("line begins with whitespace and would continue the previous value: %q", trimmed)})
			continue
		}
		if name, ok := sectionHeader(trimmed); ok {
			key := strings.ToLower(name)
			if prev, dup := l.seen[key]; dup {
				errs = append(errs, osgconf.LintError{File: file, Line: n,
					Msg: fmt.Sprintf("section [%v] is already defined at %v:%v", name, prev.file, prev.line)})
				continue
			}
			l.seen[key] = location{file: file, line: n}
		}
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, osgconf.LintError{File: file, Msg: err.Error()})
	}
	return errs
}

func sectionHeader(line string) (string, bool) {
	if !strings.HasPrefix(line, "[") {
		return "", false
	}
	end := strings.Index(line, "]")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(line[1:end]), true
}
