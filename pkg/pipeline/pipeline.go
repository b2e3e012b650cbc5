// Package pipeline drives each filing record through URL resolution,
// fetching, text normalization, section extraction, and artifact storage.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ethanqli/item1c-analysis/pkg/edgar"
	"github.com/ethanqli/item1c-analysis/pkg/htmltext"
	"github.com/ethanqli/item1c-analysis/pkg/section"
)

// Fetcher retrieves a URL's response body as text. Satisfied by
// *fetch.Client; tests inject fakes.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Pipeline processes filing records sequentially. Each record's run is
// independent: one record's failure never aborts the batch, and artifacts are
// keyed by the record's base identifier so runs never collide.
type Pipeline struct {
	config    Config
	fetcher   Fetcher
	store     Store
	extractor *section.Extractor
	logger    *zap.Logger
}

// New creates a Pipeline with the Item 1C extractor.
func New(config Config, fetcher Fetcher, store Store, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		config:    config,
		fetcher:   fetcher,
		store:     store,
		extractor: section.NewItem1CExtractor(),
		logger:    logger,
	}
}

// LoadRecords fetches the master index, filters to the configured form type,
// and returns the deterministic subsample to process. Index loading failures
// are fatal for the run.
func (p *Pipeline) LoadRecords(ctx context.Context) ([]edgar.FilingRecord, error) {
	raw, err := p.fetcher.FetchText(ctx, p.config.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch master index: %w", err)
	}

	records, err := edgar.ParseMasterIndex(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse master index: %w", err)
	}

	matching := edgar.FilterByFormType(records, p.config.FormType)
	p.logger.Info("loaded master index",
		zap.String("url", p.config.IndexURL),
		zap.Int("records", len(records)),
		zap.String("form", p.config.FormType),
		zap.Int("matching", len(matching)))

	return edgar.SampleRecords(matching, p.config.SampleSize, p.config.Seed), nil
}

// Run processes records one at a time and returns outcome tallies. Every
// failure mode is absorbed per record.
func (p *Pipeline) Run(ctx context.Context, records []edgar.FilingRecord) *Report {
	report := &Report{}
	for _, record := range records {
		report.Processed++
		p.processFiling(ctx, record, report)
	}
	return report
}

// processFiling runs one record through the full pipeline. Absence of a
// primary document or of the target section is a normal terminal state;
// fetch and store errors abort only this record.
func (p *Pipeline) processFiling(ctx context.Context, record edgar.FilingRecord, report *Report) {
	baseID := record.BaseID()
	filingLog := p.logger.With(zap.String("filing", baseID))

	ref, err := edgar.ParseAccession(record.Filename)
	if err != nil {
		report.Malformed++
		filingLog.Warn("skipping record with malformed filename",
			zap.String("filename", record.Filename), zap.Error(err))
		return
	}

	resolved := edgar.ResolvedDocument{IndexURL: edgar.FilingIndexURL(ref)}
	indexPage, err := p.fetcher.FetchText(ctx, resolved.IndexURL)
	if err != nil {
		report.FetchFailed++
		filingLog.Warn("failed to fetch filing index page",
			zap.String("url", resolved.IndexURL), zap.Error(err))
		return
	}

	documentURL, found, err := edgar.ResolvePrimaryDocumentURL(strings.NewReader(indexPage))
	if err != nil {
		report.Malformed++
		filingLog.Warn("failed to parse filing index page",
			zap.String("url", resolved.IndexURL), zap.Error(err))
		return
	}
	if !found {
		report.NoPrimaryDocument++
		filingLog.Info("no primary document on index page", zap.String("url", resolved.IndexURL))
		return
	}
	resolved.PrimaryDocumentURL = edgar.NormalizeViewerURL(documentURL)
	report.Resolved++

	rawHTML, err := p.fetcher.FetchText(ctx, resolved.PrimaryDocumentURL)
	if err != nil {
		report.FetchFailed++
		filingLog.Warn("failed to fetch primary document",
			zap.String("url", resolved.PrimaryDocumentURL), zap.Error(err))
		return
	}

	if err := p.store.Save(rawHTML, p.artifactPath("raw_html", baseID+".htm")); err != nil {
		report.StoreFailed++
		filingLog.Error("failed to save raw HTML", zap.Error(err))
		return
	}

	text, err := htmltext.Normalize(rawHTML)
	if err != nil {
		report.Malformed++
		filingLog.Warn("failed to normalize document HTML", zap.Error(err))
		return
	}
	if err := p.store.Save(text, p.artifactPath("text", baseID+".txt")); err != nil {
		report.StoreFailed++
		filingLog.Error("failed to save normalized text", zap.Error(err))
		return
	}

	excerpt, found := p.extractor.Extract(text)
	if !found {
		report.SectionMissing++
		filingLog.Info("section not found", zap.String("section", p.extractor.SectionName))
		return
	}

	if err := p.store.Save(excerpt, p.artifactPath("extracted", baseID+"_item1c.txt")); err != nil {
		report.StoreFailed++
		filingLog.Error("failed to save extracted section", zap.Error(err))
		return
	}
	report.SectionFound++
	filingLog.Info("saved extracted section",
		zap.String("section", p.extractor.SectionName),
		zap.Int("chars", len(excerpt)))
}

func (p *Pipeline) artifactPath(area string, name string) string {
	return filepath.Join(p.config.OutputDir, area, name)
}
