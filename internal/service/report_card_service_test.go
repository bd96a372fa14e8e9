package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sma-report-card/internal/dto"
	"github.com/noah-isme/sma-report-card/internal/models"
	"github.com/noah-isme/sma-report-card/internal/repository"
	appErrors "github.com/noah-isme/sma-report-card/pkg/errors"
	"github.com/noah-isme/sma-report-card/pkg/export"
)

func intPtr(v int) *int { return &v }

type reportCardFixture struct {
	svc     *ReportCardService
	store   *repository.ReportCardRepository
	metrics *MetricsService
	cache   *memoryCache
	logs    *observer.ObservedLogs
}

func newReportCardFixture(t *testing.T) *reportCardFixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	store := repository.NewReportCardRepository()
	metrics := NewMetricsService()
	cache := newMemoryCache()
	cacheSvc := NewCacheService(cache, metrics, 0, log, true)
	exports := NewExportService(cacheSvc, export.NewCSVExporter(), export.NewPDFExporter(""), 0, log)
	svc := NewReportCardService(store, exports, metrics, validator.New(), log, ReportCardConfig{})
	return &reportCardFixture{svc: svc, store: store, metrics: metrics, cache: cache, logs: logs}
}

func (f *reportCardFixture) create(t *testing.T, studentID, year int) models.ReportCardKey {
	t.Helper()
	_, err := f.svc.Create(context.Background(), dto.CreateReportCardRequest{StudentID: studentID, Year: year})
	require.NoError(t, err)
	return models.ReportCardKey{StudentID: studentID, Year: year}
}

func appErrorOf(t *testing.T, err error) *appErrors.Error {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %v", err)
	return appErr
}

func TestReportCardServiceScenario(t *testing.T) {
	f := newReportCardFixture(t)
	ctx := context.Background()
	key := f.create(t, 42, 2024)

	resp, err := f.svc.RecordGrade(ctx, key, dto.RecordGradeRequest{Subject: "Math", Date: "2024-01-10", Grade: intPtr(85)})
	require.NoError(t, err)
	assert.Equal(t, string(models.OutcomeRecorded), resp.Reason)
	assert.Empty(t, resp.Notice)

	resp, err = f.svc.RecordGrade(ctx, key, dto.RecordGradeRequest{Subject: "Math", Date: "2024-01-10", Grade: intPtr(90)})
	appErr := appErrorOf(t, err)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	require.NotNil(t, resp)
	assert.Equal(t, "The grade for Math on 01/10/2024 already exists. To change the grade, use correctGrades or deleteGrades method instead.", resp.Notice)
	var gradeErr *GradeError
	require.True(t, errors.As(err, &gradeErr))
	assert.Equal(t, resp, gradeErr.Outcome)

	resp, err = f.svc.CorrectGrade(ctx, key, dto.CorrectGradeRequest{Subject: "Math", Date: "2024-01-10", Grade: intPtr(90)})
	require.NoError(t, err)
	assert.Equal(t, "Changing the grade from 85 to 90 on 01/10/2024 for Math", resp.Notice)

	text, err := f.svc.Render(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "ReportCard for studentID 42 in 2024:\nMath | 01/10/2024: 90\n", text)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.gradeOperations.WithLabelValues("record", string(models.OutcomeDuplicateEntry))))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.gradeOperations.WithLabelValues("correct", string(models.OutcomeCorrected))))

	notices := f.logs.FilterMessage("report_card_notice").All()
	require.Len(t, notices, 2)
	assert.EqualValues(t, 42, notices[0].ContextMap()["student_id"])
}

func TestReportCardServiceCreateValidation(t *testing.T) {
	f := newReportCardFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, dto.CreateReportCardRequest{StudentID: 0, Year: 2024})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrorOf(t, err).Code)

	_, err = f.svc.Create(ctx, dto.CreateReportCardRequest{StudentID: 1, Year: 2024, DateFormat: "MM/dd/yyyy"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrorOf(t, err).Code)

	f.create(t, 1, 2024)
	_, err = f.svc.Create(ctx, dto.CreateReportCardRequest{StudentID: 1, Year: 2024})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrorOf(t, err).Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.reportCards))
}

func TestReportCardServiceEmptyRender(t *testing.T) {
	f := newReportCardFixture(t)
	key := f.create(t, 7, 2023)

	resp, err := f.svc.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "ReportCard for studentID 7 in 2023:\nno grades are recorded.", resp.Text)
	assert.Empty(t, resp.Subjects)
	assert.Equal(t, models.DefaultDateFormat, resp.DateFormat)
}

func TestReportCardServiceDeleteGrade(t *testing.T) {
	f := newReportCardFixture(t)
	ctx := context.Background()
	key := f.create(t, 3, 2024)

	_, err := f.svc.DeleteGrade(ctx, key, dto.DeleteGradeRequest{Subject: "Math", Date: "2024-01-10"})
	assert.Equal(t, appErrors.ErrSubjectNotFound.Code, appErrorOf(t, err).Code)

	_, err = f.svc.RecordGrade(ctx, key, dto.RecordGradeRequest{Subject: "Math", Date: "2024-01-10", Grade: intPtr(70)})
	require.NoError(t, err)
	_, err = f.svc.RecordGrade(ctx, key, dto.RecordGradeRequest{Subject: "Math", Date: "2024-01-17", Grade: intPtr(75)})
	require.NoError(t, err)

	_, err = f.svc.DeleteGrade(ctx, key, dto.DeleteGradeRequest{Subject: "Math", Date: "2024-01-11"})
	assert.Equal(t, appErrors.ErrGradeNotFound.Code, appErrorOf(t, err).Code)

	resp, err := f.svc.DeleteGrade(ctx, key, dto.DeleteGradeRequest{Subject: "Math", Date: "2024-01-10"})
	require.NoError(t, err)
	assert.Equal(t, "Deleting the grade 70 on 01/10/2024 for Math", resp.Notice)

	card, err := f.svc.Get(ctx, key)
	require.NoError(t, err)
	require.Len(t, card.Subjects, 1)
	assert.Equal(t, []dto.GradeEntryItem{{Date: "2024-01-17", FormattedDate: "01/17/2024", Grade: 75}}, card.Subjects[0].Entries)
}

func TestReportCardServiceRejectsBadPayloads(t *testing.T) {
	f := newReportCardFixture(t)
	ctx := context.Background()
	key := f.create(t, 3, 2024)

	_, err := f.svc.RecordGrade(ctx, key, dto.RecordGradeRequest{Subject: "Math", Date: "10/01/2024", Grade: intPtr(70)})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrorOf(t, err).Code)

	_, err = f.svc.RecordGrade(ctx, key, dto.RecordGradeRequest{Subject: "Math", Date: "2024-01-10"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrorOf(t, err).Code)

	_, err = f.svc.CorrectGrade(ctx, key, dto.CorrectGradeRequest{Date: "2024-01-10", Grade: intPtr(1)})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrorOf(t, err).Code)
}

func TestReportCardServiceAllowsZeroGrade(t *testing.T) {
	f := newReportCardFixture(t)
	key := f.create(t, 3, 2024)

	resp, err := f.svc.RecordGrade(context.Background(), key, dto.RecordGradeRequest{Subject: "PE", Date: "2024-02-01", Grade: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Grade)
}

func TestReportCardServiceMissingCard(t *testing.T) {
	f := newReportCardFixture(t)
	key := models.ReportCardKey{StudentID: 99, Year: 2024}

	_, err := f.svc.RecordGrade(context.Background(), key, dto.RecordGradeRequest{Subject: "Math", Date: "2024-01-10", Grade: intPtr(1)})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorOf(t, err).Code)

	err = f.svc.Delete(context.Background(), key)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorOf(t, err).Code)
}

func TestReportCardServiceSetDateFormat(t *testing.T) {
	f := newReportCardFixture(t)
	ctx := context.Background()
	key := f.create(t, 5, 2024)
	_, err := f.svc.RecordGrade(ctx, key, dto.RecordGradeRequest{Subject: "Math", Date: "2024-01-10", Grade: intPtr(85)})
	require.NoError(t, err)

	resp, err := f.svc.SetDateFormat(ctx, key, dto.SetDateFormatRequest{Layout: "02.01.2006"})
	require.NoError(t, err)
	assert.Equal(t, "ReportCard for studentID 5 in 2024:\nMath | 10.01.2024: 85\n", resp.Text)

	_, err = f.svc.SetDateFormat(ctx, key, dto.SetDateFormatRequest{Layout: "dd.MM.yyyy"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrorOf(t, err).Code)
}

func TestReportCardServiceExportCachesUntilMutation(t *testing.T) {
	f := newReportCardFixture(t)
	ctx := context.Background()
	key := f.create(t, 8, 2024)
	_, err := f.svc.RecordGrade(ctx, key, dto.RecordGradeRequest{Subject: "Math", Date: "2024-01-10", Grade: intPtr(85)})
	require.NoError(t, err)

	doc, err := f.svc.Export(ctx, key, dto.ExportRequest{Format: "csv"})
	require.NoError(t, err)
	assert.False(t, doc.Cached)
	assert.Equal(t, "Subject,Date,Grade\nMath,01/10/2024,85\n", string(doc.Body))
	assert.Equal(t, "report-card-8-2024.csv", doc.Filename)

	doc, err = f.svc.Export(ctx, key, dto.ExportRequest{Format: "csv"})
	require.NoError(t, err)
	assert.True(t, doc.Cached)

	_, err = f.svc.CorrectGrade(ctx, key, dto.CorrectGradeRequest{Subject: "Math", Date: "2024-01-10", Grade: intPtr(95)})
	require.NoError(t, err)

	doc, err = f.svc.Export(ctx, key, dto.ExportRequest{Format: "csv"})
	require.NoError(t, err)
	assert.False(t, doc.Cached)
	assert.Equal(t, "Subject,Date,Grade\nMath,01/10/2024,95\n", string(doc.Body))
}

func TestReportCardServiceExportIgnoresStaleEntriesWhenInvalidationFails(t *testing.T) {
	f := newReportCardFixture(t)
	ctx := context.Background()
	key := f.create(t, 8, 2024)
	f.cache.delErr = errors.New("redis unavailable")

	_, err := f.svc.RecordGrade(ctx, key, dto.RecordGradeRequest{Subject: "Math", Date: "2024-01-10", Grade: intPtr(85)})
	require.NoError(t, err)
	doc, err := f.svc.Export(ctx, key, dto.ExportRequest{Format: "text"})
	require.NoError(t, err)
	assert.Contains(t, string(doc.Body), "Math | 01/10/2024: 85")

	_, err = f.svc.CorrectGrade(ctx, key, dto.CorrectGradeRequest{Subject: "Math", Date: "2024-01-10", Grade: intPtr(90)})
	require.NoError(t, err)

	text, err := f.svc.Render(ctx, key)
	require.NoError(t, err)
	doc, err = f.svc.Export(ctx, key, dto.ExportRequest{Format: "text"})
	require.NoError(t, err)
	assert.False(t, doc.Cached)
	assert.Equal(t, text, string(doc.Body))
	assert.Contains(t, string(doc.Body), "Math | 01/10/2024: 90")

	_, err = f.svc.SetDateFormat(ctx, key, dto.SetDateFormatRequest{Layout: "2006-01-02"})
	require.NoError(t, err)
	doc, err = f.svc.Export(ctx, key, dto.ExportRequest{Format: "text"})
	require.NoError(t, err)
	assert.False(t, doc.Cached)
	assert.Contains(t, string(doc.Body), "Math | 2024-01-10: 90")

	doc, err = f.svc.Export(ctx, key, dto.ExportRequest{Format: "text"})
	require.NoError(t, err)
	assert.True(t, doc.Cached)
	assert.NotEmpty(t, f.logs.FilterMessage("cache invalidate failed").All())
}

func TestReportCardServiceRecreatedCardStartsFresh(t *testing.T) {
	f := newReportCardFixture(t)
	ctx := context.Background()
	key := f.create(t, 9, 2024)
	f.cache.delErr = errors.New("redis unavailable")

	_, err := f.svc.RecordGrade(ctx, key, dto.RecordGradeRequest{Subject: "Math", Date: "2024-01-10", Grade: intPtr(85)})
	require.NoError(t, err)
	_, err = f.svc.Export(ctx, key, dto.ExportRequest{Format: "csv"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, key))
	f.create(t, 9, 2024)

	doc, err := f.svc.Export(ctx, key, dto.ExportRequest{Format: "csv"})
	require.NoError(t, err)
	assert.False(t, doc.Cached)
	assert.Equal(t, "Subject,Date,Grade\n", string(doc.Body))
}

func TestReportCardServiceFallsBackOnInvalidDefaultLayout(t *testing.T) {
	svc := NewReportCardService(repository.NewReportCardRepository(), nil, nil, nil, nil, ReportCardConfig{DefaultDateFormat: "MM/dd/yyyy"})

	resp, err := svc.Create(context.Background(), dto.CreateReportCardRequest{StudentID: 3, Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDateFormat, resp.DateFormat)
}

func TestReportCardServiceExportRejectsUnknownFormat(t *testing.T) {
	f := newReportCardFixture(t)
	key := f.create(t, 8, 2024)

	_, err := f.svc.Export(context.Background(), key, dto.ExportRequest{Format: "xlsx"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrorOf(t, err).Code)
}

func TestReportCardServiceList(t *testing.T) {
	f := newReportCardFixture(t)
	ctx := context.Background()
	key := f.create(t, 2, 2024)
	f.create(t, 1, 2024)
	_, err := f.svc.RecordGrade(ctx, key, dto.RecordGradeRequest{Subject: "Math", Date: "2024-01-10", Grade: intPtr(85)})
	require.NoError(t, err)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []dto.ReportCardSummary{
		{StudentID: 1, Year: 2024},
		{StudentID: 2, Year: 2024, Subjects: 1, Entries: 1},
	}, list)

	require.NoError(t, f.svc.Delete(ctx, key))
	list, err = f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
