package config

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// loadSnippets reads a snippet file in the VS Code JSON layout:
//
//	{ "for loop": { "prefix": "for", "body": ["for (;;) {", "}"] } }
//
// Each body line is terminated with a newline.
func loadSnippets(fsys FileSystem, path string) (map[string]string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: path, Message: "invalid JSON"}
	}

	out := make(map[string]string)
	gjson.ParseBytes(data).ForEach(func(name, snippet gjson.Result) bool {
		prefix := snippet.Get("prefix").String()
		if prefix == "" {
			return true
		}
		body := snippet.Get("body")
		var sb strings.Builder
		if body.IsArray() {
			for _, line := range body.Array() {
				sb.WriteString(line.String())
				sb.WriteByte('\n')
			}
		} else {
			sb.WriteString(body.String())
			sb.WriteByte('\n')
		}
		out[prefix] = sb.String()
		return true
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no snippets", path)
	}
	return out, nil
}
