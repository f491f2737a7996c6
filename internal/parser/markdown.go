package parser

import (
	"bytes"
	"io"
	"strings"

	"docrank/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser sections Markdown files on their headings using
// goldmark. Heading level is ignored for sectioning purposes: every
// heading starts a new flat section, which is the uniform shape the
// ranking stages consume.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	b := newSectionBuilder(filename)
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			b.StartSection(string(node.Text(src)))
		default:
			b.AddText(blockText(n, src))
		}
	}

	return &document.Document{
		ID:       filename,
		Filename: filename,
		Sections: b.Finish(),
	}, nil
}

// blockText gets the text content of a goldmark AST node.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(blockText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
