package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-report-card/internal/dto"
	"github.com/noah-isme/sma-report-card/internal/models"
	"github.com/noah-isme/sma-report-card/internal/service"
	appErrors "github.com/noah-isme/sma-report-card/pkg/errors"
	"github.com/noah-isme/sma-report-card/pkg/response"
)

type reportCardService interface {
	Create(ctx context.Context, req dto.CreateReportCardRequest) (*dto.ReportCardResponse, error)
	Get(ctx context.Context, key models.ReportCardKey) (*dto.ReportCardResponse, error)
	List(ctx context.Context) ([]dto.ReportCardSummary, error)
	Delete(ctx context.Context, key models.ReportCardKey) error
	RecordGrade(ctx context.Context, key models.ReportCardKey, req dto.RecordGradeRequest) (*dto.GradeOutcomeResponse, error)
	CorrectGrade(ctx context.Context, key models.ReportCardKey, req dto.CorrectGradeRequest) (*dto.GradeOutcomeResponse, error)
	DeleteGrade(ctx context.Context, key models.ReportCardKey, req dto.DeleteGradeRequest) (*dto.GradeOutcomeResponse, error)
	SetDateFormat(ctx context.Context, key models.ReportCardKey, req dto.SetDateFormatRequest) (*dto.ReportCardResponse, error)
	Render(ctx context.Context, key models.ReportCardKey) (string, error)
	Export(ctx context.Context, key models.ReportCardKey, req dto.ExportRequest) (*service.ExportDocument, error)
}

// ReportCardHandler exposes report card endpoints.
type ReportCardHandler struct {
	cards reportCardService
}

// NewReportCardHandler constructs handler.
func NewReportCardHandler(cards reportCardService) *ReportCardHandler {
	return &ReportCardHandler{cards: cards}
}

// Create godoc
// @Summary Create report card
// @Tags ReportCards
// @Accept json
// @Produce json
// @Param payload body dto.CreateReportCardRequest true "Report card payload"
// @Success 201 {object} response.Envelope
// @Router /report-cards [post]
func (h *ReportCardHandler) Create(c *gin.Context) {
	var req dto.CreateReportCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	card, err := h.cards.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, card)
}

// List godoc
// @Summary List report cards
// @Tags ReportCards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /report-cards [get]
func (h *ReportCardHandler) List(c *gin.Context) {
	cards, err := h.cards.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cards, map[string]interface{}{"total": len(cards)})
}

// Get godoc
// @Summary Get report card
// @Tags ReportCards
// @Produce json
// @Param studentId path int true "Student ID"
// @Param year path int true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /report-cards/{studentId}/{year} [get]
func (h *ReportCardHandler) Get(c *gin.Context) {
	key, ok := reportCardKey(c)
	if !ok {
		return
	}
	card, err := h.cards.Get(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, card)
}

// Delete godoc
// @Summary Delete report card
// @Tags ReportCards
// @Param studentId path int true "Student ID"
// @Param year path int true "Academic year"
// @Success 204
// @Router /report-cards/{studentId}/{year} [delete]
func (h *ReportCardHandler) Delete(c *gin.Context) {
	key, ok := reportCardKey(c)
	if !ok {
		return
	}
	if err := h.cards.Delete(c.Request.Context(), key); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Text godoc
// @Summary Render report card as plain text
// @Tags ReportCards
// @Produce plain
// @Param studentId path int true "Student ID"
// @Param year path int true "Academic year"
// @Success 200 {string} string
// @Router /report-cards/{studentId}/{year}/text [get]
func (h *ReportCardHandler) Text(c *gin.Context) {
	key, ok := reportCardKey(c)
	if !ok {
		return
	}
	text, err := h.cards.Render(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, text)
}

// Export godoc
// @Summary Download report card
// @Tags ReportCards
// @Produce plain,text/csv,application/pdf
// @Param studentId path int true "Student ID"
// @Param year path int true "Academic year"
// @Param format query string false "text, csv or pdf"
// @Success 200 {file} file
// @Router /report-cards/{studentId}/{year}/export [get]
func (h *ReportCardHandler) Export(c *gin.Context) {
	key, ok := reportCardKey(c)
	if !ok {
		return
	}
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	doc, err := h.cards.Export(c.Request.Context(), key, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if doc.Cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	response.Attachment(c, doc.ContentType, doc.Filename, doc.Body)
}

// RecordGrade godoc
// @Summary Record a grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param studentId path int true "Student ID"
// @Param year path int true "Academic year"
// @Param payload body dto.RecordGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /report-cards/{studentId}/{year}/grades [post]
func (h *ReportCardHandler) RecordGrade(c *gin.Context) {
	key, ok := reportCardKey(c)
	if !ok {
		return
	}
	var req dto.RecordGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	outcome, err := h.cards.RecordGrade(c.Request.Context(), key, req)
	if err != nil {
		gradeError(c, err)
		return
	}
	response.Created(c, outcome)
}

// CorrectGrade godoc
// @Summary Correct a grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param studentId path int true "Student ID"
// @Param year path int true "Academic year"
// @Param payload body dto.CorrectGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /report-cards/{studentId}/{year}/grades [put]
func (h *ReportCardHandler) CorrectGrade(c *gin.Context) {
	key, ok := reportCardKey(c)
	if !ok {
		return
	}
	var req dto.CorrectGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	outcome, err := h.cards.CorrectGrade(c.Request.Context(), key, req)
	if err != nil {
		gradeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, noticeMeta(outcome))
}

// DeleteGrade godoc
// @Summary Delete a grade
// @Tags Grades
// @Produce json
// @Param studentId path int true "Student ID"
// @Param year path int true "Academic year"
// @Param subject query string true "Subject"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /report-cards/{studentId}/{year}/grades [delete]
func (h *ReportCardHandler) DeleteGrade(c *gin.Context) {
	key, ok := reportCardKey(c)
	if !ok {
		return
	}
	var req dto.DeleteGradeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	outcome, err := h.cards.DeleteGrade(c.Request.Context(), key, req)
	if err != nil {
		gradeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, noticeMeta(outcome))
}

// SetDateFormat godoc
// @Summary Change the date layout of a report card
// @Tags ReportCards
// @Accept json
// @Produce json
// @Param studentId path int true "Student ID"
// @Param year path int true "Academic year"
// @Param payload body dto.SetDateFormatRequest true "Layout payload"
// @Success 200 {object} response.Envelope
// @Router /report-cards/{studentId}/{year}/date-format [put]
func (h *ReportCardHandler) SetDateFormat(c *gin.Context) {
	key, ok := reportCardKey(c)
	if !ok {
		return
	}
	var req dto.SetDateFormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	card, err := h.cards.SetDateFormat(c.Request.Context(), key, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, card)
}

func reportCardKey(c *gin.Context) (models.ReportCardKey, bool) {
	studentID, err := strconv.Atoi(c.Param("studentId"))
	if err != nil || studentID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid student id"))
		return models.ReportCardKey{}, false
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid year"))
		return models.ReportCardKey{}, false
	}
	return models.ReportCardKey{StudentID: studentID, Year: year}, true
}

func gradeError(c *gin.Context, err error) {
	var gradeErr *service.GradeError
	if errors.As(err, &gradeErr) {
		response.Error(c, err, map[string]interface{}{"outcome": gradeErr.Outcome, "notice": gradeErr.Outcome.Notice})
		return
	}
	response.Error(c, err)
}

func noticeMeta(outcome *dto.GradeOutcomeResponse) map[string]interface{} {
	if outcome == nil || outcome.Notice == "" {
		return nil
	}
	return map[string]interface{}{"notice": outcome.Notice}
}
