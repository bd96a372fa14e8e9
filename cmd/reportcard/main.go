package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/sma-report-card/internal/models"
)

func main() {
	var (
		studentID int
		year      int
		layout    string
	)

	flag.IntVar(&studentID, "student", 1, "Student ID")
	flag.IntVar(&year, "year", time.Now().Year(), "Academic year")
	flag.StringVar(&layout, "format", models.DefaultDateFormat, "Go layout used to render dates")
	flag.Parse()

	if !models.ValidLayout(layout) {
		log.Fatalf("invalid -format %q: use Go layout tokens such as 01/02/2006", layout)
	}

	card := models.NewReportCard(studentID, year, models.WithDateFormat(layout))
	if err := replay(card, os.Stdin); err != nil {
		log.Fatalf("replay failed: %v", err)
	}
	card.Display()
}

// replay applies one operation per input line:
//
//	record <subject> <YYYY-MM-DD> <grade>
//	correct <subject> <YYYY-MM-DD> <grade>
//	delete <subject> <YYYY-MM-DD>
//
// The date and grade are taken from the end of the line, so subjects may
// contain spaces and may be wrapped in double quotes. Blank lines and lines
// starting with # are skipped.
func replay(card *models.ReportCard, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := apply(card, strings.Fields(line)); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

func apply(card *models.ReportCard, fields []string) error {
	op := strings.ToLower(fields[0])
	args := fields[1:]

	trailing := 2
	switch op {
	case "record", "correct":
	case "delete":
		trailing = 1
	default:
		return fmt.Errorf("unknown operation %q", fields[0])
	}
	if len(args) < trailing+1 {
		if op == "delete" {
			return fmt.Errorf("delete expects <subject> <date>")
		}
		return fmt.Errorf("%s expects <subject> <date> <grade>", op)
	}

	split := len(args) - trailing
	subject := strings.Trim(strings.Join(args[:split], " "), `"`)
	if subject == "" {
		return fmt.Errorf("%s requires a subject", op)
	}

	date, err := time.Parse(time.DateOnly, args[split])
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", args[split], err)
	}

	if op == "delete" {
		card.DeleteGrade(subject, date)
		return nil
	}

	grade, err := strconv.Atoi(args[split+1])
	if err != nil {
		return fmt.Errorf("invalid grade %q: %w", args[split+1], err)
	}
	if op == "record" {
		card.RecordGrade(subject, date, grade)
	} else {
		card.CorrectGrade(subject, date, grade)
	}
	return nil
}
