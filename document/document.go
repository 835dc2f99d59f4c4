package document

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/uscdining/dishwatch/content"
)

type Type = string

const (
	// TypeLines is a hall view stored as the line stream the parser saw.
	TypeLines Type = "lines"
	// TypeMarkdown is a hall view converted from the page's HTML.
	TypeMarkdown Type = "markdown"
)

// Metadata is written as YAML front matter.
type Metadata struct {
	Hall     string `yaml:"hall"`
	Station  string `yaml:"station"`
	TabLabel string `yaml:"tabLabel"`
	// Date is the LA calendar date of the run.
	Date          string   `yaml:"date"`
	Source        string   `yaml:"source"`
	Type          Type     `yaml:"type"`
	Lines         int      `yaml:"lines"`
	Dishes        int      `yaml:"dishes"`
	Suggestions   []string `yaml:"suggestions,omitempty"`
	ProcessedTime string   `yaml:"processedTime"`
}

// Document is one hall view captured during a run, kept to diagnose
// vocabulary drift on the menu page.
type Document struct {
	Content  string
	Metadata Metadata
}

// FromLines builds a document whose content is one line per row.
func FromLines(lines []string, md Metadata) *Document {
	md.Type = TypeLines
	md.Lines = len(lines)

	return &Document{
		Content:  strings.Join(lines, "\n") + "\n",
		Metadata: md,
	}
}

// FileName is the stable name of the document in a snapshot directory.
func (d *Document) FileName() string {
	return fmt.Sprintf("%s-%s.md", d.Metadata.Date, content.SanitizeFileName(d.Metadata.Hall))
}

// ToMarkdown converts the Document to a markdown string, with metadata as YAML front matter.
// It returns the filename and the markdown content, and an optional error.
func (d *Document) ToMarkdown() (string, string, error) {
	var builder strings.Builder
	frontMatter, err := yaml.Marshal(d.Metadata)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to marshal metadata to YAML")
	}

	builder.WriteString("---\n")
	builder.Write(frontMatter)
	builder.WriteString("---\n")
	builder.WriteString(d.Content)

	return d.FileName(), builder.String(), nil
}

// Parse reads a document written by ToMarkdown.
func Parse(raw string) (*Document, error) {
	rest, ok := strings.CutPrefix(raw, "---\n")
	if !ok {
		return nil, errors.New("missing front matter")
	}

	front, content, ok := strings.Cut(rest, "\n---\n")
	if !ok {
		return nil, errors.New("unterminated front matter")
	}

	var md Metadata
	if err := yaml.Unmarshal([]byte(front), &md); err != nil {
		return nil, errors.Wrap(err, "failed to parse front matter")
	}

	return &Document{Content: content, Metadata: md}, nil
}
