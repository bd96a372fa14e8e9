package dto

// CreateReportCardRequest captures POST /report-cards payload.
type CreateReportCardRequest struct {
	StudentID  int    `json:"studentId" validate:"required,gt=0"`
	Year       int    `json:"year" validate:"required,gte=1900,lte=9999"`
	DateFormat string `json:"dateFormat,omitempty"`
}

// RecordGradeRequest adds a new grade entry. Date uses YYYY-MM-DD.
type RecordGradeRequest struct {
	Subject string `json:"subject" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Grade   *int   `json:"grade" validate:"required"`
}

// CorrectGradeRequest replaces an existing grade entry.
type CorrectGradeRequest struct {
	Subject string `json:"subject" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Grade   *int   `json:"grade" validate:"required"`
}

// DeleteGradeRequest removes a grade entry.
type DeleteGradeRequest struct {
	Subject string `json:"subject" form:"subject" validate:"required"`
	Date    string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
}

// SetDateFormatRequest replaces the card's date layout, e.g. "01/02/2006".
type SetDateFormatRequest struct {
	Layout string `json:"layout" validate:"required"`
}

// GradeEntryItem is a single rendered grade.
type GradeEntryItem struct {
	Date          string `json:"date"`
	FormattedDate string `json:"formattedDate"`
	Grade         int    `json:"grade"`
}

// SubjectGrades groups entries by subject.
type SubjectGrades struct {
	Subject string           `json:"subject"`
	Entries []GradeEntryItem `json:"entries"`
}

// ReportCardResponse is the JSON view of a report card.
type ReportCardResponse struct {
	StudentID  int             `json:"studentId"`
	Year       int             `json:"year"`
	DateFormat string          `json:"dateFormat"`
	Subjects   []SubjectGrades `json:"subjects"`
	Text       string          `json:"text"`
}

// ReportCardSummary is the list view of a report card.
type ReportCardSummary struct {
	StudentID int `json:"studentId"`
	Year      int `json:"year"`
	Subjects  int `json:"subjects"`
	Entries   int `json:"entries"`
}

// GradeOutcomeResponse describes the result of a grade mutation.
type GradeOutcomeResponse struct {
	Reason   string `json:"reason"`
	Subject  string `json:"subject"`
	Date     string `json:"date"`
	Grade    int    `json:"grade"`
	Previous *int   `json:"previous,omitempty"`
	Notice   string `json:"notice,omitempty"`
}

// ExportRequest selects the export format: text, csv or pdf.
type ExportRequest struct {
	Format string `form:"format" validate:"omitempty,oneof=text csv pdf"`
}
