package edgar

import (
	"errors"
	"math/rand"
	"strings"
)

// masterIndexColumns is the fixed column count of a master index data row:
// CIK|Company Name|Form Type|Date Filed|Filename.
const masterIndexColumns = 5

// ErrIndexFormat indicates a master index document with no recognizable data
// rows (no line beginning with a decimal digit).
var ErrIndexFormat = errors.New("master index has no data rows")

// ParseMasterIndex parses a raw EDGAR master index document into filing
// records. The document starts with a textual preamble of unspecified length;
// data rows begin at the first line whose first character is a decimal digit
// (a CIK). Rows are pipe-delimited with five columns, and every column value
// is trimmed of surrounding whitespace. Rows with the wrong column count are
// skipped rather than failing the whole document.
func ParseMasterIndex(raw string) ([]FilingRecord, error) {
	lines := strings.Split(raw, "\n")

	dataStart := -1
	for lineIndex, line := range lines {
		if line != "" && line[0] >= '0' && line[0] <= '9' {
			dataStart = lineIndex
			break
		}
	}
	if dataStart < 0 {
		return nil, ErrIndexFormat
	}

	var records []FilingRecord
	for _, line := range lines[dataStart:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		columns := strings.Split(line, "|")
		if len(columns) != masterIndexColumns {
			continue
		}

		records = append(records, FilingRecord{
			CIK:         strings.TrimSpace(columns[0]),
			CompanyName: strings.TrimSpace(columns[1]),
			FormType:    strings.TrimSpace(columns[2]),
			DateFiled:   strings.TrimSpace(columns[3]),
			Filename:    strings.TrimSpace(columns[4]),
		})
	}

	return records, nil
}

// FilterByFormType returns the records whose FormType exactly matches the
// given form. Amended variants ("10-K/A") do not match "10-K".
func FilterByFormType(records []FilingRecord, formType string) []FilingRecord {
	var matched []FilingRecord
	for _, record := range records {
		if record.FormType == formType {
			matched = append(matched, record)
		}
	}
	return matched
}

// SampleRecords returns a deterministic random sample of up to sampleSize
// records. The same seed always yields the same sample in the same order.
// A sampleSize of zero or less, or one exceeding the record count, returns
// all records (still shuffled).
func SampleRecords(records []FilingRecord, sampleSize int, seed int64) []FilingRecord {
	shuffled := make([]FilingRecord, len(records))
	copy(shuffled, records)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if sampleSize <= 0 || sampleSize > len(shuffled) {
		return shuffled
	}
	return shuffled[:sampleSize]
}
