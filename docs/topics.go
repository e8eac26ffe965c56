// Package docs holds the user documentation of perf, as topics.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed *.md
var docs embed.FS

// All is the pseudo topic expanding to every topic.
const All = "*"

// Topic returns the content of a documentation topic. The readme topic lists
// the others.
func Topic(name string) (string, error) {
	if name == All {
		names, err := Names()
		if err != nil {
			return "", err
		}
		return Topics(names...)
	}
	content, err := fs.ReadFile(docs, name+".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", name, err)
	}
	return string(content), nil
}

// Topics returns the content of several topics, one after the other.
func Topics(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		content, err := Topic(name)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Names returns the sorted names of every topic, readme excluded.
func Names() ([]string, error) {
	files, err := fs.Glob(docs, "*.md")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, f := range files {
		if name := strings.TrimSuffix(f, ".md"); name != "readme" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}
