package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-report-card/internal/middleware"
	"github.com/noah-isme/sma-report-card/internal/models"
)

// RegisterReportCardRoutes mounts the report card API under group. Every
// route requires a bearer token; students may only read their own cards.
func RegisterReportCardRoutes(group *gin.RouterGroup, tokens middleware.TokenValidator, h *ReportCardHandler, audit *zap.Logger) {
	staff := []string{string(models.RoleAdmin), string(models.RoleTeacher)}
	staffOrSelf := append(append([]string{}, staff...), middleware.Self)

	cards := group.Group("/report-cards", middleware.JWT(tokens))
	cards.POST("", middleware.RBAC(staff...), middleware.Audit(audit, "report_card.create"), h.Create)
	cards.GET("", middleware.RBAC(staff...), h.List)

	card := cards.Group("/:studentId/:year")
	card.GET("", middleware.RBAC(staffOrSelf...), h.Get)
	card.DELETE("", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(audit, "report_card.delete"), h.Delete)
	card.GET("/text", middleware.RBAC(staffOrSelf...), h.Text)
	card.GET("/export", middleware.RBAC(staffOrSelf...), h.Export)
	card.PUT("/date-format", middleware.RBAC(staff...), middleware.Audit(audit, "report_card.date_format"), h.SetDateFormat)

	grades := card.Group("/grades", middleware.RBAC(staff...))
	grades.POST("", middleware.Audit(audit, "grade.record"), h.RecordGrade)
	grades.PUT("", middleware.Audit(audit, "grade.correct"), h.CorrectGrade)
	grades.DELETE("", middleware.Audit(audit, "grade.delete"), h.DeleteGrade)
}
