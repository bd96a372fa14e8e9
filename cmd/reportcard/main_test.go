package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-report-card/internal/models"
)

func TestReplayPrintsNoticesAndDisplay(t *testing.T) {
	var notices, display bytes.Buffer
	card := models.NewReportCard(42, 2024, models.WithNoticeWriter(&notices), models.WithDisplayWriter(&display))

	input := strings.Join([]string{
		"# scenario",
		"record Math 2024-01-10 90",
		"record Math 2024-01-10 75",
		"correct Math 2024-01-10 80",
		"",
		"record Art 2024-02-01 70",
		"delete Art 2024-02-01",
		"delete Art 2024-02-01",
	}, "\n")

	require.NoError(t, replay(card, strings.NewReader(input)))
	card.Display()

	assert.Equal(t, strings.Join([]string{
		"The grade for Math on 01/10/2024 already exists. To change the grade, use correctGrades or deleteGrades method instead.",
		"Changing the grade from 90 to 80 on 01/10/2024 for Math",
		"Deleting the grade 70 on 02/01/2024 for Art",
		"No grade exists for Art",
		"",
	}, "\n"), notices.String())
	assert.Equal(t, "ReportCard for studentID 42 in 2024:\nMath | 01/10/2024: 80\n\n", display.String())
}

func TestReplayRejectsMalformedLines(t *testing.T) {
	cases := map[string]string{
		"unknown op":   "update Math 2024-01-10 90",
		"missing args": "record Math 2024-01-10",
		"bad date":     "delete Math 10/01/2024",
		"bad grade":    "record Math 2024-01-10 A",
		"empty quotes": `record "" 2024-01-10 90`,
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			card := models.NewReportCard(1, 2024, models.WithNoticeWriter(&bytes.Buffer{}))
			err := replay(card, strings.NewReader(line))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
			assert.Zero(t, card.Len())
		})
	}
}

func TestReplaySubjectsWithSpaces(t *testing.T) {
	var notices bytes.Buffer
	card := models.NewReportCard(7, 2024, models.WithNoticeWriter(&notices))

	input := strings.Join([]string{
		"record Computer Science 2024-03-01 88",
		`record "Art History" 2024-03-02 75`,
		`correct "Computer Science" 2024-03-01 91`,
		"delete Art History 2024-03-02",
	}, "\n")

	require.NoError(t, replay(card, strings.NewReader(input)))

	grade, ok := card.Grade("Computer Science", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 91, grade)
	assert.Equal(t, []string{"Computer Science"}, card.Subjects())
	assert.Contains(t, notices.String(), "Deleting the grade 75 on 03/02/2024 for Art History")
}
