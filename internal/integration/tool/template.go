package tool

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// variablePattern matches ${var}, ${var:default} and $var.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([^}]*))?\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// fileVars holds the values substituted into tool commands.
type fileVars struct {
	path string
	stem string
	dir  string
}

func newFileVars(path string) fileVars {
	if path == "" {
		return fileVars{}
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	base := filepath.Base(path)
	return fileVars{
		path: path,
		stem: strings.TrimSuffix(base, filepath.Ext(base)),
		dir:  filepath.Dir(path),
	}
}

func (v fileVars) lookup(name string) (string, bool) {
	switch name {
	case "FILE_PATH":
		return v.path, true
	case "FILE_STEM":
		return v.stem, true
	case "FILE_DIR":
		return v.dir, true
	}
	return os.LookupEnv(name)
}

// expand substitutes variables in s. Unknown variables without a default
// are left as written.
func (v fileVars) expand(s string) string {
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := variablePattern.FindStringSubmatch(match)
		name, def, hasDefault := sub[3], sub[2], false
		if name == "" {
			name = sub[1]
			hasDefault = strings.Contains(match, ":")
		}
		if val, ok := v.lookup(name); ok && val != "" {
			return val
		}
		if hasDefault {
			return def
		}
		return match
	})
}

// expandAll substitutes variables in every argument.
func (v fileVars) expandAll(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = v.expand(a)
	}
	return out
}

// environ returns the process environment with the file variables added.
func (v fileVars) environ() []string {
	env := os.Environ()
	if v.path == "" {
		return env
	}
	return append(env,
		"FILE_PATH="+v.path,
		"FILE_STEM="+v.stem,
		"FILE_DIR="+v.dir,
	)
}
