package orchestrator

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"gitlab.com/golang-commonmark/markdown"

	"github.com/bububa/omniquery/schema"
)

var (
	renderer   = markdown.New(markdown.XHTMLOutput(true), markdown.Nofollow(true))
	extraLines = regexp.MustCompile(`\n{3,}`)
)

// Format renders an answer written in markdown into the requested format
func Format(answer string, format schema.OutputFormat) (string, error) {
	switch format {
	case schema.FormatHTML:
		return renderer.RenderToString([]byte(answer)), nil
	case schema.FormatPlain:
		return plainText(answer)
	}
	return answer, nil
}

func plainText(answer string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(renderer.RenderToString([]byte(answer))))
	if err != nil {
		return "", err
	}
	doc.Find("p, li, h1, h2, h3, h4, h5, h6, pre, blockquote, tr").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	txt := strings.TrimSpace(doc.Text())
	return extraLines.ReplaceAllString(txt, "\n\n"), nil
}
