package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ethanqli/item1c-analysis/pkg/edgar"
)

// fakeFetcher serves canned responses by URL.
type fakeFetcher struct {
	responses map[string]string
	failures  map[string]error
	requested []string
}

func (fetcher *fakeFetcher) FetchText(_ context.Context, url string) (string, error) {
	fetcher.requested = append(fetcher.requested, url)
	if err, failed := fetcher.failures[url]; failed {
		return "", err
	}
	if body, exists := fetcher.responses[url]; exists {
		return body, nil
	}
	return "", fmt.Errorf("unexpected URL %s", url)
}

// memoryStore collects saved artifacts by path.
type memoryStore struct {
	saved map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{saved: make(map[string]string)}
}

func (store *memoryStore) Save(content string, path string) error {
	store.saved[path] = content
	return nil
}

const testIndexPageURL = "https://www.sec.gov/Archives/edgar/data/1035443/000103544326000013/0001035443-26-000013-index.htm"

var testRecord = edgar.FilingRecord{
	CIK:         "1035443",
	CompanyName: "ACME HOLDINGS INC",
	FormType:    "10-K",
	DateFiled:   "2026-02-06",
	Filename:    "edgar/data/1035443/0001035443-26-000013.txt",
}

func testIndexPage(documentHref string) string {
	return fmt.Sprintf(`<html><body><table>
<tr><td><a href=%q>acme-10k.htm</a></td><td>Annual report</td><td>120</td><td>10-K</td></tr>
</table></body></html>`, documentHref)
}

func testFilingHTML() string {
	body := strings.Repeat("We assess, identify, and manage material risks from cybersecurity threats as part of our broader risk program. ", 6)
	return `<html><body>
<p>Item 1B. Unresolved Staff Comments</p>
<p>None.</p>
<p>Item 1C. Cybersecurity</p>
<p>` + body + `</p>
<p>Item 2 Properties</p>
<p>Our corporate headquarters are located in Chicago, Illinois.</p>
</body></html>`
}

func newTestPipeline(fetcher Fetcher, store Store) *Pipeline {
	config := DefaultConfig()
	config.OutputDir = "out"
	return New(config, fetcher, store, zap.NewNop())
}

func TestProcessFilingSavesAllArtifacts(t *testing.T) {
	fetcher := &fakeFetcher{responses: map[string]string{
		testIndexPageURL: testIndexPage("/Archives/edgar/data/1035443/000103544326000013/acme-10k.htm"),
		"https://www.sec.gov/Archives/edgar/data/1035443/000103544326000013/acme-10k.htm": testFilingHTML(),
	}}
	store := newMemoryStore()

	report := newTestPipeline(fetcher, store).Run(context.Background(), []edgar.FilingRecord{testRecord})

	if report.Processed != 1 || report.Resolved != 1 || report.SectionFound != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	// Resolution is two fetches: the filing index page, then the primary
	// document resolved from it.
	if len(fetcher.requested) != 2 {
		t.Fatalf("expected 2 fetches, got %v", fetcher.requested)
	}
	if fetcher.requested[0] != testIndexPageURL {
		t.Errorf("expected the index page to be fetched first, got %s", fetcher.requested[0])
	}
	if fetcher.requested[1] != "https://www.sec.gov/Archives/edgar/data/1035443/000103544326000013/acme-10k.htm" {
		t.Errorf("expected the resolved primary document to be fetched, got %s", fetcher.requested[1])
	}

	baseID := "1035443_2026-02-06_0001035443-26-000013"
	rawPath := "out/raw_html/" + baseID + ".htm"
	textPath := "out/text/" + baseID + ".txt"
	extractedPath := "out/extracted/" + baseID + "_item1c.txt"

	if _, exists := store.saved[rawPath]; !exists {
		t.Errorf("expected raw HTML artifact at %s", rawPath)
	}
	if text, exists := store.saved[textPath]; !exists {
		t.Errorf("expected text artifact at %s", textPath)
	} else if strings.Contains(text, "<p>") {
		t.Error("text artifact must not contain markup")
	}
	excerpt, exists := store.saved[extractedPath]
	if !exists {
		t.Fatalf("expected extracted artifact at %s", extractedPath)
	}
	if !strings.HasPrefix(excerpt, "Item 1C. Cybersecurity") {
		t.Errorf("expected excerpt to start at the section header, got %q", excerpt[:40])
	}
	if strings.Contains(excerpt, "Properties") {
		t.Error("excerpt must stop before the next item")
	}
}

func TestProcessFilingNormalizesViewerURL(t *testing.T) {
	viewerURL := "https://www.sec.gov/ix?doc=/Archives/edgar/data/1035443/000103544326000013/acme-10k.htm"
	archivesURL := "https://www.sec.gov/Archives/edgar/data/1035443/000103544326000013/acme-10k.htm"

	fetcher := &fakeFetcher{responses: map[string]string{
		testIndexPageURL: testIndexPage(viewerURL),
		archivesURL:      testFilingHTML(),
	}}

	report := newTestPipeline(fetcher, newMemoryStore()).Run(context.Background(), []edgar.FilingRecord{testRecord})

	if report.SectionFound != 1 {
		t.Fatalf("expected viewer URL to be normalized and fetched, report: %+v", report)
	}
	for _, url := range fetcher.requested {
		if strings.Contains(url, "/ix?") {
			t.Errorf("viewer URL was fetched without normalization: %s", url)
		}
	}
}

func TestProcessFilingNoPrimaryDocumentIsClean(t *testing.T) {
	fetcher := &fakeFetcher{responses: map[string]string{
		testIndexPageURL: `<table><tr><td>financials.xml</td><td>Data</td><td>1</td><td>XBRL</td></tr></table>`,
	}}
	store := newMemoryStore()

	report := newTestPipeline(fetcher, store).Run(context.Background(), []edgar.FilingRecord{testRecord})

	if report.NoPrimaryDocument != 1 {
		t.Errorf("expected a no-primary-document outcome, report: %+v", report)
	}
	if report.FetchFailed != 0 {
		t.Error("a missing primary document must not count as a fetch failure")
	}
	if len(store.saved) != 0 {
		t.Error("expected no artifacts for an unresolved filing")
	}
}

func TestProcessFilingSectionMissingKeepsPartialArtifacts(t *testing.T) {
	filingWithoutSection := `<html><body><p>Item 1A. Risk Factors</p><p>` +
		strings.Repeat("Risk narrative. ", 40) + `</p></body></html>`

	fetcher := &fakeFetcher{responses: map[string]string{
		testIndexPageURL: testIndexPage("/Archives/edgar/data/1035443/000103544326000013/acme-10k.htm"),
		"https://www.sec.gov/Archives/edgar/data/1035443/000103544326000013/acme-10k.htm": filingWithoutSection,
	}}
	store := newMemoryStore()

	report := newTestPipeline(fetcher, store).Run(context.Background(), []edgar.FilingRecord{testRecord})

	if report.SectionMissing != 1 || report.SectionFound != 0 {
		t.Fatalf("expected section-missing outcome, report: %+v", report)
	}

	baseID := "1035443_2026-02-06_0001035443-26-000013"
	if _, exists := store.saved["out/raw_html/"+baseID+".htm"]; !exists {
		t.Error("raw HTML should be saved even when the section is missing")
	}
	if _, exists := store.saved["out/text/"+baseID+".txt"]; !exists {
		t.Error("normalized text should be saved even when the section is missing")
	}
	if _, exists := store.saved["out/extracted/"+baseID+"_item1c.txt"]; exists {
		t.Error("no extracted artifact should exist for a missing section")
	}
}

func TestRunContinuesAfterFetchFailure(t *testing.T) {
	badRecord := edgar.FilingRecord{
		CIK:       "99",
		FormType:  "10-K",
		DateFiled: "2026-02-06",
		Filename:  "edgar/data/99/0000000099-26-000001.txt",
	}
	badIndexURL := "https://www.sec.gov/Archives/edgar/data/99/000000009926000001/0000000099-26-000001-index.htm"

	fetcher := &fakeFetcher{
		responses: map[string]string{
			testIndexPageURL: testIndexPage("/Archives/edgar/data/1035443/000103544326000013/acme-10k.htm"),
			"https://www.sec.gov/Archives/edgar/data/1035443/000103544326000013/acme-10k.htm": testFilingHTML(),
		},
		failures: map[string]error{
			badIndexURL: fmt.Errorf("connection reset"),
		},
	}

	report := newTestPipeline(fetcher, newMemoryStore()).Run(context.Background(),
		[]edgar.FilingRecord{badRecord, testRecord})

	if report.Processed != 2 {
		t.Fatalf("expected both records processed, report: %+v", report)
	}
	if report.FetchFailed != 1 {
		t.Errorf("expected one fetch failure, report: %+v", report)
	}
	if report.SectionFound != 1 {
		t.Errorf("expected the second record to complete, report: %+v", report)
	}
}

func TestRunSkipsMalformedFilename(t *testing.T) {
	malformed := edgar.FilingRecord{CIK: "7", FormType: "10-K", DateFiled: "2026-02-06", Filename: "garbage.txt"}

	fetcher := &fakeFetcher{responses: map[string]string{}}
	report := newTestPipeline(fetcher, newMemoryStore()).Run(context.Background(), []edgar.FilingRecord{malformed})

	if report.Malformed != 1 {
		t.Errorf("expected one malformed record, report: %+v", report)
	}
	if len(fetcher.requested) != 0 {
		t.Error("no fetches should happen for a malformed record")
	}
}

func TestLoadRecords(t *testing.T) {
	masterIndex := "Daily Index preamble\n\nCIK|Company Name|Form Type|Date Filed|Filename\n" +
		"1035443|ACME HOLDINGS INC|10-K|2026-02-06|edgar/data/1035443/0001035443-26-000013.txt\n" +
		"320193|APPLE INC|8-K|2026-02-06|edgar/data/320193/0000320193-26-000008.txt\n"

	config := DefaultConfig()
	config.IndexURL = "https://example.com/master.idx"
	fetcher := &fakeFetcher{responses: map[string]string{config.IndexURL: masterIndex}}

	p := New(config, fetcher, newMemoryStore(), zap.NewNop())
	records, err := p.LoadRecords(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 10-K record, got %d", len(records))
	}
	if records[0].CIK != "1035443" {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestLoadRecordsIndexFetchFailureIsFatal(t *testing.T) {
	config := DefaultConfig()
	config.IndexURL = "https://example.com/master.idx"
	fetcher := &fakeFetcher{failures: map[string]error{config.IndexURL: fmt.Errorf("timeout")}}

	p := New(config, fetcher, newMemoryStore(), zap.NewNop())
	if _, err := p.LoadRecords(context.Background()); err == nil {
		t.Error("expected index fetch failure to be fatal")
	}
}
