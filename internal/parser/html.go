package parser

import (
	"io"

	"docrank/internal/document"
	"golang.org/x/net/html"
)

// HTMLParser sections HTML files on h1-h6 tags.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	b := newSectionBuilder(filename)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if headingLevel(n.Data) > 0 {
				b.StartSection(textContent(n))
				return // heading text already extracted
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "blockquote", "pre":
				b.AddText(textContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(root); body != nil {
		walk(body)
	} else {
		walk(root)
	}

	return &document.Document{
		ID:       filename,
		Filename: filename,
		Sections: b.Finish(),
	}, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf []byte
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf = append(buf, n.Data...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return normalizeBody(string(buf))
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
