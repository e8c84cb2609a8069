package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupported is returned when no parser accepts a document type
var ErrUnsupported = errors.New("unsupported document type")

// MaxSize is the largest document Load accepts
const MaxSize = 64 << 20

// Document is parsed text content with metadata
type Document struct {
	// Name file name, object key or url
	Name    string
	Content string
	Meta    map[string]string
}

// Parser converts raw document bytes into markdown or plain text
type Parser interface {
	Parse(context.Context, *bytes.Reader, io.Writer) error
}

var extensionMIME = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".html":     "text/html",
	".htm":      "text/html",
	".pdf":      "application/pdf",
	".docx":     mimeDocx,
	".xlsx":     mimeXlsx,
}

const (
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Supported reports whether name has an extension Load knows how to parse
func Supported(name string) bool {
	_, ok := extensionMIME[strings.ToLower(filepath.Ext(name))]
	return ok
}

// DetectType returns the mime type used to pick a parser, the extension wins over content sniffing
func DetectType(name string, bs []byte) string {
	if v, ok := extensionMIME[strings.ToLower(filepath.Ext(name))]; ok {
		return v
	}
	mtype := mimetype.Detect(bs)
	for _, v := range []string{"text/html", "application/pdf", mimeDocx, mimeXlsx} {
		if mtype.Is(v) {
			return v
		}
	}
	if strings.HasPrefix(mtype.String(), "text/") {
		return "text/plain"
	}
	return mtype.String()
}

// ParserFor returns the parser for a mime type
func ParserFor(mimeType string) (Parser, error) {
	switch mimeType {
	case "text/plain", "text/markdown":
		return new(TextParser), nil
	case "text/html":
		return NewHTML2MDParser(), nil
	case "application/pdf":
		return NewPDFParser(), nil
	case mimeDocx:
		return new(DocxParser), nil
	case mimeXlsx:
		return new(XlsxParser), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
}

// Load reads r fully and parses it by detected type
func Load(ctx context.Context, name string, r io.Reader) (*Document, error) {
	bs, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, err
	}
	if len(bs) > MaxSize {
		return nil, fmt.Errorf("%s: document larger than %d bytes", name, MaxSize)
	}
	return Parse(ctx, name, bs)
}

// Parse converts raw bytes into a Document
func Parse(ctx context.Context, name string, bs []byte) (*Document, error) {
	mimeType := DetectType(name, bs)
	parser, err := ParserFor(mimeType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := parser.Parse(ctx, bytes.NewReader(bs), &buf); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Document{
		Name:    name,
		Content: strings.TrimSpace(buf.String()),
		Meta: map[string]string{
			"source": name,
			"type":   mimeType,
		},
	}, nil
}
