// Package edgar provides parsing of SEC EDGAR master index files and
// resolution of filing document URLs from index-page listings.
package edgar

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ArchivesBaseURL is the host prefix for raw EDGAR archive documents.
const ArchivesBaseURL = "https://www.sec.gov"

// ErrMalformedFilename indicates a master-index Filename field that does not
// follow the expected edgar/data/{cik}/{accession}.txt layout.
var ErrMalformedFilename = errors.New("malformed master index filename")

// FilingRecord is one row of an EDGAR master index file.
// Records are immutable once parsed.
type FilingRecord struct {
	CIK         string
	CompanyName string
	FormType    string
	DateFiled   string
	Filename    string
}

// BaseID returns the identifier used to key this filing's output artifacts:
// {CIK}_{DateFiled}_{AccessionWithDashes}.
func (record FilingRecord) BaseID() string {
	accession := strings.TrimSuffix(path.Base(record.Filename), path.Ext(record.Filename))
	return fmt.Sprintf("%s_%s_%s", record.CIK, record.DateFiled, accession)
}

// AccessionReference identifies a single filing submission, derived from a
// master-index Filename field. Both accession spellings are kept because
// EDGAR URLs use the compact form for the directory and the dashed form for
// the index page name.
type AccessionReference struct {
	CIK        string
	WithDashes string
	NoDashes   string
}

// ResolvedDocument holds the URLs discovered for one filing. An empty
// PrimaryDocumentURL is a valid terminal state meaning no primary document
// was found on the index page, not an error.
type ResolvedDocument struct {
	IndexURL           string
	PrimaryDocumentURL string
}

// ParseAccession derives an AccessionReference from a master-index Filename
// field such as "edgar/data/1035443/0001035443-26-000013.txt". The CIK is the
// third path segment; the accession number is the final segment with its file
// extension stripped. Returns ErrMalformedFilename when the path has fewer
// than three segments.
func ParseAccession(filename string) (AccessionReference, error) {
	segments := strings.Split(filename, "/")
	if len(segments) < 3 {
		return AccessionReference{}, fmt.Errorf("%w: %q", ErrMalformedFilename, filename)
	}

	lastSegment := segments[len(segments)-1]
	withDashes := strings.TrimSuffix(lastSegment, path.Ext(lastSegment))

	return AccessionReference{
		CIK:        segments[2],
		WithDashes: withDashes,
		NoDashes:   strings.ReplaceAll(withDashes, "-", ""),
	}, nil
}

// FilingIndexURL constructs the canonical filing index page URL for a filing:
// https://www.sec.gov/Archives/edgar/data/{cik}/{accessionNoDashes}/{accessionWithDashes}-index.htm
func FilingIndexURL(ref AccessionReference) string {
	return fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s-index.htm",
		ArchivesBaseURL, ref.CIK, ref.NoDashes, ref.WithDashes)
}
