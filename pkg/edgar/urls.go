package edgar

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NormalizeViewerURL rewrites SEC iXBRL viewer URLs like
//
//	https://www.sec.gov/ix?doc=/Archives/edgar/data/.../file.htm
//
// into the raw Archives URL. Non-viewer URLs are returned unchanged, so the
// function is idempotent.
func NormalizeViewerURL(documentURL string) string {
	if !strings.Contains(documentURL, "/ix") {
		return documentURL
	}

	parsed, err := url.Parse(documentURL)
	if err != nil {
		return documentURL
	}

	docPath := parsed.Query().Get("doc")
	if docPath == "" {
		return documentURL
	}
	return ArchivesBaseURL + docPath
}

// ResolvePrimaryDocumentURL scans a filing index page for the primary 10-K
// document. A qualifying row in the document table has at least four cells,
// a document type cell equal to "10-K", and a document name ending in .htm
// or .html; the first such row's link wins. When no row qualifies, the first
// .htm/.html link anywhere in the table is used as a best-effort fallback.
// Returns found=false when no candidate exists at all; that is a valid
// outcome, not an error.
func ResolvePrimaryDocumentURL(indexPage io.Reader) (documentURL string, found bool, err error) {
	doc, err := goquery.NewDocumentFromReader(indexPage)
	if err != nil {
		return "", false, fmt.Errorf("parse index page: %w", err)
	}

	doc.Find("table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return true
		}

		documentName := strings.TrimSpace(cells.Eq(0).Text())
		documentType := strings.TrimSpace(cells.Eq(3).Text())

		if !strings.EqualFold(documentType, "10-K") || !hasHTMLExtension(documentName) {
			return true
		}

		if href, exists := cells.Eq(0).Find("a").First().Attr("href"); exists && href != "" {
			documentURL = absoluteArchivesURL(href)
			found = true
			return false
		}
		return true
	})
	if found {
		return documentURL, true, nil
	}

	// Fallback: first .htm link in any table. Lower precision, better than
	// nothing.
	doc.Find("table a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if !hasHTMLExtension(href) {
			return true
		}
		documentURL = absoluteArchivesURL(href)
		found = true
		return false
	})

	return documentURL, found, nil
}

func hasHTMLExtension(name string) bool {
	lowered := strings.ToLower(name)
	return strings.HasSuffix(lowered, ".htm") || strings.HasSuffix(lowered, ".html")
}

func absoluteArchivesURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return ArchivesBaseURL + href
}
