package models

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultDateFormat renders dates as month/day/year.
const DefaultDateFormat = "01/02/2006"

// GradeEntry is a single dated grade within a subject.
type GradeEntry struct {
	Date  time.Time `json:"date"`
	Grade int       `json:"grade"`
}

// ReportCard stores one student's grades for a single academic year.
// A subject is kept only while it holds at least one entry and each
// (subject, date) pair holds at most one grade.
//
// ReportCard is not safe for concurrent use.
type ReportCard struct {
	studentID  int
	year       int
	grades     map[string]map[time.Time]int
	dateFormat string
	revision   string
	notices    io.Writer
	display    io.Writer
}

// ReportCardOption customises a ReportCard at construction time.
type ReportCardOption func(*ReportCard)

// WithNoticeWriter directs operation notices to w. A nil writer discards them.
func WithNoticeWriter(w io.Writer) ReportCardOption {
	return func(r *ReportCard) {
		if w == nil {
			w = io.Discard
		}
		r.notices = w
	}
}

// WithDisplayWriter sets where Display writes the rendered card.
func WithDisplayWriter(w io.Writer) ReportCardOption {
	return func(r *ReportCard) {
		if w == nil {
			w = io.Discard
		}
		r.display = w
	}
}

// WithDateFormat overrides the default date layout.
func WithDateFormat(layout string) ReportCardOption {
	return func(r *ReportCard) {
		r.SetDateFormat(layout)
	}
}

// NewReportCard creates an empty report card for the student and year.
func NewReportCard(studentID, year int, opts ...ReportCardOption) *ReportCard {
	r := &ReportCard{
		studentID:  studentID,
		year:       year,
		grades:     make(map[string]map[time.Time]int),
		dateFormat: DefaultDateFormat,
		revision:   uuid.NewString(),
		notices:    os.Stdout,
		display:    os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StudentID returns the student identifier.
func (r *ReportCard) StudentID() int { return r.studentID }

// Year returns the academic year the card covers.
func (r *ReportCard) Year() int { return r.year }

// DateFormat returns the layout used when dates are rendered.
func (r *ReportCard) DateFormat() string { return r.dateFormat }

// Revision identifies the card's current content. It changes on every
// applied mutation and layout change and is unique across card instances.
func (r *ReportCard) Revision() string { return r.revision }

// SetDateFormat replaces the date layout. An empty layout restores the default.
func (r *ReportCard) SetDateFormat(layout string) {
	if strings.TrimSpace(layout) == "" {
		layout = DefaultDateFormat
	}
	r.dateFormat = layout
	r.revision = uuid.NewString()
}

var layoutSample = time.Date(2001, time.February, 3, 0, 0, 0, 0, time.UTC)

// ValidLayout reports whether layout contains at least one Go reference
// token. A pattern such as "MM/dd/yyyy" would render every date literally.
func ValidLayout(layout string) bool {
	return layoutSample.Format(layout) != layout
}

// FormatDate renders d with the current layout.
func (r *ReportCard) FormatDate(d time.Time) string {
	return d.Format(r.dateFormat)
}

// RecordGrade stores grade for subject on date. An existing entry for the
// same subject and date is left untouched and reported as a duplicate.
func (r *ReportCard) RecordGrade(subject string, date time.Time, grade int) Outcome {
	day := CalendarDate(date)
	entries, ok := r.grades[subject]
	if !ok {
		r.grades[subject] = map[time.Time]int{day: grade}
		return r.emit(Outcome{Reason: OutcomeRecorded, Subject: subject, Date: day, Grade: grade})
	}
	if existing, found := entries[day]; found {
		return r.emit(Outcome{Reason: OutcomeDuplicateEntry, Subject: subject, Date: day, Grade: grade, Previous: &existing})
	}
	entries[day] = grade
	return r.emit(Outcome{Reason: OutcomeRecorded, Subject: subject, Date: day, Grade: grade})
}

// CorrectGrade replaces an existing grade.
func (r *ReportCard) CorrectGrade(subject string, date time.Time, newGrade int) Outcome {
	day := CalendarDate(date)
	old, miss := r.lookup(subject, day)
	if miss != nil {
		return r.emit(*miss)
	}
	r.grades[subject][day] = newGrade
	return r.emit(Outcome{Reason: OutcomeCorrected, Subject: subject, Date: day, Grade: newGrade, Previous: &old})
}

// DeleteGrade removes an existing grade and drops the subject once it is empty.
func (r *ReportCard) DeleteGrade(subject string, date time.Time) Outcome {
	day := CalendarDate(date)
	old, miss := r.lookup(subject, day)
	if miss != nil {
		return r.emit(*miss)
	}
	delete(r.grades[subject], day)
	if len(r.grades[subject]) == 0 {
		delete(r.grades, subject)
	}
	return r.emit(Outcome{Reason: OutcomeDeleted, Subject: subject, Date: day, Grade: old, Previous: &old})
}

// lookup is the single existence check shared by CorrectGrade and DeleteGrade.
// It returns the stored grade, or the failed outcome when nothing is stored.
func (r *ReportCard) lookup(subject string, day time.Time) (int, *Outcome) {
	entries, ok := r.grades[subject]
	if !ok {
		return 0, &Outcome{Reason: OutcomeSubjectNotFound, Subject: subject, Date: day}
	}
	grade, ok := entries[day]
	if !ok {
		return 0, &Outcome{Reason: OutcomeDateNotFound, Subject: subject, Date: day}
	}
	return grade, nil
}

func (r *ReportCard) emit(o Outcome) Outcome {
	if o.OK() {
		r.revision = uuid.NewString()
	}
	if notice := o.Notice(r.dateFormat); notice != "" {
		fmt.Fprintln(r.notices, notice)
	}
	return o
}

// Grade returns the grade stored for subject on date.
func (r *ReportCard) Grade(subject string, date time.Time) (int, bool) {
	grade, ok := r.grades[subject][CalendarDate(date)]
	return grade, ok
}

// Len returns the total number of grade entries.
func (r *ReportCard) Len() int {
	n := 0
	for _, entries := range r.grades {
		n += len(entries)
	}
	return n
}

// Subjects returns the subjects holding grades in lexicographic order.
func (r *ReportCard) Subjects() []string {
	subjects := make([]string, 0, len(r.grades))
	for subject := range r.grades {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	return subjects
}

// GradesForSubject returns the subject's entries in chronological order.
func (r *ReportCard) GradesForSubject(subject string) []GradeEntry {
	entries := r.grades[subject]
	if len(entries) == 0 {
		return nil
	}
	result := make([]GradeEntry, 0, len(entries))
	for day, grade := range entries {
		result = append(result, GradeEntry{Date: day, Grade: grade})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result
}

// Grades returns a copy of every subject's grades keyed by calendar date.
func (r *ReportCard) Grades() map[string]map[time.Time]int {
	snapshot := make(map[string]map[time.Time]int, len(r.grades))
	for subject, entries := range r.grades {
		inner := make(map[time.Time]int, len(entries))
		for day, grade := range entries {
			inner[day] = grade
		}
		snapshot[subject] = inner
	}
	return snapshot
}

// String renders the card, one line per subject.
func (r *ReportCard) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ReportCard for studentID %d in %d:\n", r.studentID, r.year)
	if len(r.grades) == 0 {
		b.WriteString("no grades are recorded.")
		return b.String()
	}
	for _, subject := range r.Subjects() {
		b.WriteString(subject)
		b.WriteString(" | ")
		for i, entry := range r.GradesForSubject(subject) {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %d", r.FormatDate(entry.Date), entry.Grade)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteTo writes the rendered card to w.
func (r *ReportCard) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}

// Display prints the rendered card followed by a newline.
func (r *ReportCard) Display() {
	fmt.Fprintln(r.display, r.String())
}

// CalendarDate normalises t to midnight UTC of its own calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
