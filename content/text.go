package content

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements whose text is never rendered.
var invisible = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Iframe:   true,
}

// Elements that start a new line in rendered text.
var block = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Header: true, atom.Hr: true, atom.Li: true,
	atom.Main: true, atom.Nav: true, atom.Ol: true, atom.Option: true, atom.P: true,
	atom.Pre: true, atom.Section: true, atom.Table: true, atom.Tr: true, atom.Td: true,
	atom.Th: true, atom.Ul: true, atom.Button: true, atom.Label: true, atom.Select: true,
}

var displayNone = regexp.MustCompile(`(?i)display\s*:\s*none|visibility\s*:\s*hidden`)

// SplitLines splits rendered text into trimmed, non-empty lines.
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))

	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

// VisibleText approximates the browser's innerText for a parsed node: text of
// hidden elements is dropped and block elements are separated by newlines.
func VisibleText(n *html.Node) string {
	var buffer bytes.Buffer
	writeVisible(n, &buffer)
	return buffer.String()
}

func isHidden(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}

	if invisible[n.DataAtom] {
		return true
	}

	for _, attr := range n.Attr {
		switch attr.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if attr.Val == "true" {
				return true
			}
		case "style":
			if displayNone.MatchString(attr.Val) {
				return true
			}
		}
	}

	return false
}

func writeVisible(n *html.Node, buffer *bytes.Buffer) {
	if n == nil || isHidden(n) {
		return
	}

	switch n.Type {
	case html.TextNode:
		// Collapse runs of whitespace to a single space, like the renderer does.
		words := strings.Fields(n.Data)
		if len(words) == 0 {
			buffer.WriteByte(' ')
			return
		}
		if first, _ := utf8.DecodeRuneInString(n.Data); unicode.IsSpace(first) {
			buffer.WriteByte(' ')
		}
		buffer.WriteString(strings.Join(words, " "))
		if last, _ := utf8.DecodeLastRuneInString(n.Data); unicode.IsSpace(last) {
			buffer.WriteByte(' ')
		}
		return
	case html.CommentNode:
		return
	}

	isBlock := n.Type == html.ElementNode && block[n.DataAtom]
	if isBlock {
		buffer.WriteByte('\n')
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		writeVisible(child, buffer)
	}

	if isBlock {
		buffer.WriteByte('\n')
	}
}

// Markdown converts an HTML page to markdown, resolving links against domain.
func Markdown(body []byte, domain string) ([]byte, error) {
	out, err := md.ConvertReader(bytes.NewReader(body), converter.WithDomain(domain))
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert HTML to Markdown")
	}

	return out, nil
}

// SanitizeFileName replaces characters that are unsafe in file names.
func SanitizeFileName(name string) string {
	re := regexp.MustCompile(`[\/\\:\*\?"<>\|\p{C}]`)

	name = re.ReplaceAllString(name, "-")
	return strings.Trim(name, " .")
}
