// Package htmltext converts filing HTML into the plain-text form that
// section boundary detection runs over. Tables are stripped along with
// scripts and styles: filing tables carry financial data, not the narrative
// prose the extractor targets, and their cell text produces false boundary
// lines.
package htmltext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	reCarriageReturn = regexp.MustCompile(`\r`)
	reNewlineRun     = regexp.MustCompile(`\n{3,}`)
	reSpaceRun       = regexp.MustCompile(`[ \t]+`)
)

// blockTags are elements whose boundaries become newlines in the extracted
// text, so that each block of prose lands on its own line.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "td": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "blockquote": true, "hr": true,
	"ul": true, "ol": true, "header": true, "footer": true,
}

// strippedSelector matches elements removed entirely before text extraction.
const strippedSelector = "script, style, noscript, table"

// Normalize converts raw filing HTML to clean plain text. Script, style,
// noscript, and table elements are removed; remaining visible text is
// extracted with newlines at block element boundaries; then carriage returns
// become newlines, runs of three or more newlines collapse to two, runs of
// spaces and tabs collapse to one space, and the result is trimmed.
// Deterministic: the same HTML always yields the same text.
func Normalize(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find(strippedSelector).Remove()

	var builder strings.Builder
	for _, node := range doc.Selection.Nodes {
		writeVisibleText(node, &builder)
	}

	text := builder.String()
	text = reCarriageReturn.ReplaceAllString(text, "\n")
	text = reSpaceRun.ReplaceAllString(text, " ")
	text = reNewlineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}

func writeVisibleText(node *html.Node, builder *strings.Builder) {
	if node.Type == html.TextNode {
		builder.WriteString(node.Data)
		return
	}

	isBlock := node.Type == html.ElementNode && blockTags[node.Data]
	if isBlock {
		builder.WriteByte('\n')
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		writeVisibleText(child, builder)
	}

	if isBlock {
		builder.WriteByte('\n')
	}
}
