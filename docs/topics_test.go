package docs

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/perfledger"
	"github.com/etnz/perfledger/config"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// TestTopics checks that the readme lists exactly the topic files.
func TestTopics(t *testing.T) {
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); m != nil {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		if _, err := Topic(topic); err != nil {
			t.Errorf("Topic(%q) error: %v", topic, err)
		}
	}

	names, err := Names()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if !slices.Contains(listed, name) {
			t.Errorf("topic %q is not listed in readme.md", name)
		}
	}

	all, err := Topic(All)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		content, _ := Topic(name)
		if !strings.Contains(all, content) {
			t.Errorf("Topic(%q) misses %q", All, name)
		}
	}
}

func TestTopic_NotFound(t *testing.T) {
	if _, err := Topic("no-such-topic"); err == nil {
		t.Error("Topic() found a missing topic")
	}
}

// block is a fenced code block of a topic.
type block struct {
	lang    string
	content string
}

func codeBlocks(t *testing.T, file string) (title string, blocks []block) {
	t.Helper()
	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(content))
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			if n.Level == 1 && title == "" {
				var b strings.Builder
				for c := n.FirstChild(); c != nil; c = c.NextSibling() {
					if txt, ok := c.(*ast.Text); ok {
						b.Write(txt.Segment.Value(content))
					}
				}
				title = b.String()
			}
		case *ast.FencedCodeBlock:
			var b strings.Builder
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				b.Write(line.Value(content))
			}
			blocks = append(blocks, block{lang: string(n.Language(content)), content: b.String()})
		}
		return ast.WalkContinue, nil
	})
	return title, blocks
}

// TestExamples checks that the examples of every topic are accepted by the
// decoders they document.
func TestExamples(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			title, blocks := codeBlocks(t, file)
			if title == "" {
				t.Errorf("%s has no title", file)
			}
			for _, b := range blocks {
				switch b.lang {
				case "yaml":
					path := filepath.Join(t.TempDir(), "perf.yaml")
					if err := os.WriteFile(path, []byte(b.content), 0o644); err != nil {
						t.Fatal(err)
					}
					if _, err := config.Load(path); err != nil {
						t.Errorf("config example rejected: %v\n%s", err, b.content)
					}
				case "json":
					var err error
					if strings.HasPrefix(b.content, `{"on"`) {
						_, err = perfledger.DecodeMarket(file, strings.NewReader(b.content))
					} else {
						_, err = perfledger.DecodeActivities(file, strings.NewReader(b.content))
					}
					if err != nil {
						t.Errorf("json example rejected: %v\n%s", err, b.content)
					}
				case "bash":
					if !strings.HasPrefix(b.content, "perf ") {
						t.Errorf("command example does not run perf: %s", b.content)
					}
				}
			}
		})
	}
}
