package service

import (
	"context"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-report-card/internal/dto"
	"github.com/noah-isme/sma-report-card/internal/models"
	appErrors "github.com/noah-isme/sma-report-card/pkg/errors"
	"github.com/noah-isme/sma-report-card/pkg/logger"
)

type reportCardStore interface {
	Create(ctx context.Context, card *models.ReportCard) error
	With(ctx context.Context, key models.ReportCardKey, fn func(card *models.ReportCard) error) error
	Keys(ctx context.Context) []models.ReportCardKey
	Delete(ctx context.Context, key models.ReportCardKey) error
	Count() int
}

// ReportCardConfig holds defaults for new report cards.
type ReportCardConfig struct {
	DefaultDateFormat string
}

// GradeError carries the rejected outcome alongside the typed error so
// callers can surface the notice text.
type GradeError struct {
	Outcome *dto.GradeOutcomeResponse
	Err     error
}

func (e *GradeError) Error() string { return e.Err.Error() }

// Unwrap returns the typed error.
func (e *GradeError) Unwrap() error { return e.Err }

// ReportCardService orchestrates report card lifecycle and grade mutations.
type ReportCardService struct {
	store     reportCardStore
	exports   *ExportService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    ReportCardConfig
}

// NewReportCardService constructs ReportCardService.
func NewReportCardService(store reportCardStore, exports *ExportService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config ReportCardConfig) *ReportCardService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if exports == nil {
		exports = NewExportService(nil, nil, nil, 0, logger)
	}
	if config.DefaultDateFormat == "" {
		config.DefaultDateFormat = models.DefaultDateFormat
	}
	if !models.ValidLayout(config.DefaultDateFormat) {
		logger.Warn("configured default date format has no layout tokens, using built-in default",
			zap.String("layout", config.DefaultDateFormat), zap.String("fallback", models.DefaultDateFormat))
		config.DefaultDateFormat = models.DefaultDateFormat
	}
	return &ReportCardService{store: store, exports: exports, metrics: metrics, validator: validate, logger: logger, config: config}
}

// Create registers a new empty report card.
func (s *ReportCardService) Create(ctx context.Context, req dto.CreateReportCardRequest) (*dto.ReportCardResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report card payload")
	}
	layout := req.DateFormat
	if layout == "" {
		layout = s.config.DefaultDateFormat
	}
	if !models.ValidLayout(layout) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date format must use Go reference date tokens")
	}
	card := models.NewReportCard(req.StudentID, req.Year,
		models.WithDateFormat(layout),
		models.WithNoticeWriter(logger.NoticeWriter(s.logger, zap.Int("student_id", req.StudentID), zap.Int("year", req.Year))),
		models.WithDisplayWriter(io.Discard),
	)
	if err := s.store.Create(ctx, card); err != nil {
		return nil, err
	}
	s.metrics.SetActiveReportCards(s.store.Count())
	s.logger.Info("report card created", zap.Int("student_id", req.StudentID), zap.Int("year", req.Year))
	return toReportCardResponse(card), nil
}

// Get returns the report card identified by key.
func (s *ReportCardService) Get(ctx context.Context, key models.ReportCardKey) (*dto.ReportCardResponse, error) {
	var resp *dto.ReportCardResponse
	err := s.store.With(ctx, key, func(card *models.ReportCard) error {
		resp = toReportCardResponse(card)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// List summarises every registered report card.
func (s *ReportCardService) List(ctx context.Context) ([]dto.ReportCardSummary, error) {
	keys := s.store.Keys(ctx)
	summaries := make([]dto.ReportCardSummary, 0, len(keys))
	for _, key := range keys {
		err := s.store.With(ctx, key, func(card *models.ReportCard) error {
			summaries = append(summaries, dto.ReportCardSummary{
				StudentID: card.StudentID(),
				Year:      card.Year(),
				Subjects:  len(card.Subjects()),
				Entries:   card.Len(),
			})
			return nil
		})
		if err != nil && !isNotFound(err) {
			return nil, err
		}
	}
	return summaries, nil
}

// Delete removes a report card and its cached exports.
func (s *ReportCardService) Delete(ctx context.Context, key models.ReportCardKey) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	s.exports.Invalidate(ctx, key)
	s.metrics.SetActiveReportCards(s.store.Count())
	s.logger.Info("report card deleted", zap.Int("student_id", key.StudentID), zap.Int("year", key.Year))
	return nil
}

// RecordGrade adds a grade. A duplicate entry is rejected with GRADE_EXISTS.
func (s *ReportCardService) RecordGrade(ctx context.Context, key models.ReportCardKey, req dto.RecordGradeRequest) (*dto.GradeOutcomeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, key, "record", func(card *models.ReportCard) models.Outcome {
		return card.RecordGrade(req.Subject, date, *req.Grade)
	})
}

// CorrectGrade replaces an existing grade.
func (s *ReportCardService) CorrectGrade(ctx context.Context, key models.ReportCardKey, req dto.CorrectGradeRequest) (*dto.GradeOutcomeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, key, "correct", func(card *models.ReportCard) models.Outcome {
		return card.CorrectGrade(req.Subject, date, *req.Grade)
	})
}

// DeleteGrade removes an existing grade.
func (s *ReportCardService) DeleteGrade(ctx context.Context, key models.ReportCardKey, req dto.DeleteGradeRequest) (*dto.GradeOutcomeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, key, "delete", func(card *models.ReportCard) models.Outcome {
		return card.DeleteGrade(req.Subject, date)
	})
}

func (s *ReportCardService) mutate(ctx context.Context, key models.ReportCardKey, operation string, apply func(card *models.ReportCard) models.Outcome) (*dto.GradeOutcomeResponse, error) {
	var outcome models.Outcome
	var resp *dto.GradeOutcomeResponse
	err := s.store.With(ctx, key, func(card *models.ReportCard) error {
		outcome = apply(card)
		resp = toOutcomeResponse(outcome, card.DateFormat())
		if outcome.OK() {
			s.exports.Invalidate(ctx, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveGradeOperation(operation, outcome.Reason)

	fields := []zap.Field{
		zap.Int("student_id", key.StudentID),
		zap.Int("year", key.Year),
		zap.String("operation", operation),
		zap.String("subject", outcome.Subject),
		zap.String("date", outcome.Date.Format(time.DateOnly)),
		zap.String("reason", string(outcome.Reason)),
	}
	if !outcome.OK() {
		s.logger.Warn("grade operation rejected", fields...)
		return resp, &GradeError{Outcome: resp, Err: outcome.Err()}
	}
	s.logger.Info("grade operation applied", append(fields, zap.Int("grade", outcome.Grade))...)
	return resp, nil
}

// SetDateFormat replaces the card's date layout.
func (s *ReportCardService) SetDateFormat(ctx context.Context, key models.ReportCardKey, req dto.SetDateFormatRequest) (*dto.ReportCardResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date format payload")
	}
	if !models.ValidLayout(req.Layout) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date format must use Go reference date tokens")
	}
	var resp *dto.ReportCardResponse
	err := s.store.With(ctx, key, func(card *models.ReportCard) error {
		card.SetDateFormat(req.Layout)
		s.exports.Invalidate(ctx, key)
		resp = toReportCardResponse(card)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("report card date format changed", zap.Int("student_id", key.StudentID), zap.Int("year", key.Year), zap.String("layout", req.Layout))
	return resp, nil
}

// Render returns the plain text rendering of the card.
func (s *ReportCardService) Render(ctx context.Context, key models.ReportCardKey) (string, error) {
	var text string
	err := s.store.With(ctx, key, func(card *models.ReportCard) error {
		text = card.String()
		return nil
	})
	return text, err
}

// Export renders the card in the requested format.
func (s *ReportCardService) Export(ctx context.Context, key models.ReportCardKey, req dto.ExportRequest) (*ExportDocument, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export format")
	}
	var doc *ExportDocument
	err := s.store.With(ctx, key, func(card *models.ReportCard) error {
		var exportErr error
		doc, exportErr = s.exports.Export(ctx, card, ExportFormat(req.Format))
		return exportErr
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}
	return date, nil
}


func isNotFound(err error) bool {
	appErr := appErrors.FromError(err)
	return appErr.Code == appErrors.ErrNotFound.Code
}

func toReportCardResponse(card *models.ReportCard) *dto.ReportCardResponse {
	resp := &dto.ReportCardResponse{
		StudentID:  card.StudentID(),
		Year:       card.Year(),
		DateFormat: card.DateFormat(),
		Subjects:   make([]dto.SubjectGrades, 0),
		Text:       card.String(),
	}
	for _, subject := range card.Subjects() {
		group := dto.SubjectGrades{Subject: subject}
		for _, entry := range card.GradesForSubject(subject) {
			group.Entries = append(group.Entries, dto.GradeEntryItem{
				Date:          entry.Date.Format(time.DateOnly),
				FormattedDate: card.FormatDate(entry.Date),
				Grade:         entry.Grade,
			})
		}
		resp.Subjects = append(resp.Subjects, group)
	}
	return resp
}

func toOutcomeResponse(outcome models.Outcome, layout string) *dto.GradeOutcomeResponse {
	return &dto.GradeOutcomeResponse{
		Reason:   string(outcome.Reason),
		Subject:  outcome.Subject,
		Date:     outcome.Date.Format(time.DateOnly),
		Grade:    outcome.Grade,
		Previous: outcome.Previous,
		Notice:   outcome.Notice(layout),
	}
}
