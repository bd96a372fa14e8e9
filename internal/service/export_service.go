package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-report-card/internal/models"
	appErrors "github.com/noah-isme/sma-report-card/pkg/errors"
	"github.com/noah-isme/sma-report-card/pkg/export"
)

// ExportFormat names a rendered representation of a report card.
type ExportFormat string

const (
	ExportFormatText ExportFormat = "text"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ExportDocument is a rendered report card ready for download.
type ExportDocument struct {
	Format      ExportFormat
	ContentType string
	Filename    string
	Body        []byte
	Cached      bool
}

type tabularRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportService renders report cards as text, CSV or PDF and caches the result.
type ExportService struct {
	cache     *CacheService
	renderers map[ExportFormat]tabularRenderer
	ttl       time.Duration
	logger    *zap.Logger
}

// NewExportService constructs an ExportService. cache may be nil.
func NewExportService(cache *CacheService, csv *export.CSVExporter, pdf *export.PDFExporter, ttl time.Duration, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	renderers := make(map[ExportFormat]tabularRenderer, 2)
	if csv != nil {
		renderers[ExportFormatCSV] = csv
	}
	if pdf != nil {
		renderers[ExportFormatPDF] = pdf
	}
	return &ExportService{cache: cache, renderers: renderers, ttl: ttl, logger: logger}
}

// Export renders card in format. The caller must hold the card's lock.
func (s *ExportService) Export(ctx context.Context, card *models.ReportCard, format ExportFormat) (*ExportDocument, error) {
	if format == "" {
		format = ExportFormatText
	}
	doc := &ExportDocument{Format: format}
	var renderer tabularRenderer
	switch format {
	case ExportFormatText:
		doc.ContentType = "text/plain; charset=utf-8"
		doc.Filename = exportFilename(card, "txt")
	default:
		r, ok := s.renderers[format]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
		}
		renderer = r
		doc.ContentType = r.ContentType()
		doc.Filename = exportFilename(card, r.Extension())
	}

	key := exportCacheKey(card, format)
	if body, hit := s.cache.Get(ctx, key); hit {
		doc.Body = body
		doc.Cached = true
		return doc, nil
	}

	if renderer == nil {
		doc.Body = []byte(card.String())
	} else {
		body, err := renderer.Render(ReportCardDataset(card))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report card")
		}
		doc.Body = body
	}
	s.cache.Set(ctx, key, doc.Body, s.ttl)
	s.logger.Debug("report card exported", zap.Int("student_id", card.StudentID()), zap.Int("year", card.Year()), zap.String("format", string(format)), zap.Int("bytes", len(doc.Body)))
	return doc, nil
}

// Invalidate drops every cached export of the card identified by key. It is
// best-effort cleanup; correctness comes from the revision in the cache key.
func (s *ExportService) Invalidate(ctx context.Context, key models.ReportCardKey) {
	s.cache.Invalidate(ctx, fmt.Sprintf("%d:%d:*", key.StudentID, key.Year))
}

// ReportCardDataset flattens card into one row per grade entry, ordered by
// subject then date, with dates in the card's current layout.
func ReportCardDataset(card *models.ReportCard) export.Dataset {
	data := export.Dataset{
		Title:   fmt.Sprintf("ReportCard for studentID %d in %d", card.StudentID(), card.Year()),
		Headers: []string{"Subject", "Date", "Grade"},
		Empty:   "no grades are recorded.",
	}
	for _, subject := range card.Subjects() {
		for _, entry := range card.GradesForSubject(subject) {
			data.Rows = append(data.Rows, []string{subject, card.FormatDate(entry.Date), strconv.Itoa(entry.Grade)})
		}
	}
	return data
}

// exportCacheKey embeds the card revision so entries left behind by a failed
// invalidation are never read again.
func exportCacheKey(card *models.ReportCard, format ExportFormat) string {
	return fmt.Sprintf("%d:%d:%s:%s", card.StudentID(), card.Year(), card.Revision(), format)
}

func exportFilename(card *models.ReportCard, ext string) string {
	return fmt.Sprintf("report-card-%d-%d.%s", card.StudentID(), card.Year(), ext)
}
