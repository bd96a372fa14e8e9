package models

import (
	"fmt"
	"time"

	appErrors "github.com/noah-isme/sma-report-card/pkg/errors"
)

// OutcomeReason classifies the result of a grade mutation.
type OutcomeReason string

const (
	OutcomeRecorded        OutcomeReason = "RECORDED"
	OutcomeCorrected       OutcomeReason = "CORRECTED"
	OutcomeDeleted         OutcomeReason = "DELETED"
	OutcomeDuplicateEntry  OutcomeReason = "DUPLICATE_ENTRY"
	OutcomeSubjectNotFound OutcomeReason = "SUBJECT_NOT_FOUND"
	OutcomeDateNotFound    OutcomeReason = "DATE_NOT_FOUND"
)

// Outcome reports what a grade mutation did. Grade is the value supplied by
// the caller (the removed value for deletions) and Previous the value that
// was stored before the call, when one existed.
type Outcome struct {
	Reason   OutcomeReason
	Subject  string
	Date     time.Time
	Grade    int
	Previous *int
}

// OK reports whether the mutation was applied.
func (o Outcome) OK() bool {
	switch o.Reason {
	case OutcomeRecorded, OutcomeCorrected, OutcomeDeleted:
		return true
	default:
		return false
	}
}

// Err converts a rejected outcome into a typed error. Applied outcomes yield nil.
func (o Outcome) Err() error {
	switch o.Reason {
	case OutcomeDuplicateEntry:
		return appErrors.Clone(appErrors.ErrGradeExists, fmt.Sprintf("grade for %s on %s already exists", o.Subject, o.Date.Format(time.DateOnly)))
	case OutcomeSubjectNotFound:
		return appErrors.Clone(appErrors.ErrSubjectNotFound, fmt.Sprintf("no grade exists for %s", o.Subject))
	case OutcomeDateNotFound:
		return appErrors.Clone(appErrors.ErrGradeNotFound, fmt.Sprintf("no grade registered on %s for %s", o.Date.Format(time.DateOnly), o.Subject))
	default:
		return nil
	}
}

// Notice renders the human-readable message for the outcome using layout for
// dates. A plain successful recording has no notice.
func (o Outcome) Notice(layout string) string {
	date := o.Date.Format(layout)
	switch o.Reason {
	case OutcomeDuplicateEntry:
		return fmt.Sprintf("The grade for %s on %s already exists. To change the grade, use correctGrades or deleteGrades method instead.", o.Subject, date)
	case OutcomeCorrected:
		return fmt.Sprintf("Changing the grade from %d to %d on %s for %s", o.previous(), o.Grade, date, o.Subject)
	case OutcomeDeleted:
		return fmt.Sprintf("Deleting the grade %d on %s for %s", o.Grade, date, o.Subject)
	case OutcomeSubjectNotFound:
		return fmt.Sprintf("No grade exists for %s", o.Subject)
	case OutcomeDateNotFound:
		return fmt.Sprintf("No grade was registered on %s for %s", date, o.Subject)
	default:
		return ""
	}
}

func (o Outcome) previous() int {
	if o.Previous == nil {
		return 0
	}
	return *o.Previous
}
