package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"docrank/internal/document"
)

// Parser converts raw document bytes into a flat, ordered list of
// sections. Every parser emits the same Section shape; downstream
// stages never care which format produced it.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// ParseError marks a document that could not be read or decoded. The
// pipeline skips the offending document and keeps processing the rest.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".docx": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, &ParseError{Filename: filename, Err: fmt.Errorf("unsupported file extension: %s", ext)}
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
