package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

var (
	_ Parser = (*TextParser)(nil)
	_ Parser = (*HTML2MDParser)(nil)
	_ Parser = (*PDFParser)(nil)
	_ Parser = (*DocxParser)(nil)
	_ Parser = (*XlsxParser)(nil)
)

// TextParser copies plain text and markdown unchanged
type TextParser struct{}

func (p *TextParser) Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error {
	_, err := reader.WriteTo(writer)
	return err
}

// HTML2MDParser is a parser which parse html content to markdown
type HTML2MDParser struct {
	opts []converter.ConvertOptionFunc
}

func NewHTML2MDParser(opts ...converter.ConvertOptionFunc) *HTML2MDParser {
	return &HTML2MDParser{
		opts: opts,
	}
}

// Parse converts html from reader into markdown written to writer
func (h *HTML2MDParser) Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error {
	bs, err := htmltomarkdown.ConvertReader(reader, h.opts...)
	if err != nil {
		return err
	}
	_, err = writer.Write(bs)
	return err
}

// PDFParser is a parser which parse PDF content to text
type PDFParser struct {
	password string
}

type PDFParserOption func(*PDFParser)

func PDFParserWithPassword(password string) PDFParserOption {
	return func(p *PDFParser) {
		p.password = password
	}
}

func NewPDFParser(opts ...PDFParserOption) *PDFParser {
	ret := new(PDFParser)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Parse extracts pdf text row by row, pages separated by a blank line
func (p *PDFParser) Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error {
	var (
		r    *pdf.Reader
		err  error
		size = reader.Size()
	)
	if p.password != "" {
		r, err = pdf.NewReaderEncrypted(reader, size, func() string {
			return p.password
		})
	} else {
		r, err = pdf.NewReader(reader, size)
	}
	if err != nil {
		return err
	}
	totalPage := r.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return fmt.Errorf("page %d: %w", pageIndex, err)
		}
		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				line.WriteString(word.S)
			}
			if _, err := io.WriteString(writer, line.String()+"\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(writer, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// DocxParser writes docx paragraphs and tables separated by blank lines
type DocxParser struct{}

func (p *DocxParser) Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error {
	doc, err := docx.Parse(reader, reader.Size())
	if err != nil {
		return err
	}
	var written int
	for _, it := range doc.Document.Body.Items {
		var content string
		switch t := it.(type) {
		case *docx.Paragraph:
			content = t.String()
		case *docx.Table:
			content = t.String()
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		if written > 0 {
			if _, err := io.WriteString(writer, "\n\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(writer, content); err != nil {
			return err
		}
		written++
	}
	return nil
}

// XlsxParser renders every sheet as a markdown table
type XlsxParser struct {
	password string
}

func NewXlsxParser(password string) *XlsxParser {
	return &XlsxParser{password: password}
}

func (p *XlsxParser) Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error {
	opts := make([]excelize.Options, 0, 1)
	if p.password != "" {
		opts = append(opts, excelize.Options{Password: p.password})
	}
	doc, err := excelize.OpenReader(reader, opts...)
	if err != nil {
		return err
	}
	defer doc.Close()
	for _, sheet := range doc.GetSheetList() {
		rows, err := doc.GetRows(sheet)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}
		width := 0
		for _, row := range rows {
			width = max(width, len(row))
		}
		if width == 0 {
			continue
		}
		fmt.Fprintf(writer, "# %s\n\n", sheet)
		for rowIdx, row := range rows {
			cells := make([]string, width)
			for i := range cells {
				if i < len(row) {
					cells[i] = EscapeMarkdown(StripUnprintable(strings.TrimSpace(row[i])))
				}
			}
			fmt.Fprintf(writer, "| %s |\n", strings.Join(cells, " | "))
			if rowIdx == 0 {
				fmt.Fprintf(writer, "|%s\n", strings.Repeat(" --- |", width))
			}
		}
		io.WriteString(writer, "\n")
	}
	return nil
}

// EscapeMarkdown escapes characters which break markdown tables
func EscapeMarkdown(s string) string {
	replacer := strings.NewReplacer("|", "\\|", "\n", " ", "\r", "")
	return replacer.Replace(s)
}

// StripUnprintable removes control characters
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			return r
		}
		return -1
	}, s)
}
