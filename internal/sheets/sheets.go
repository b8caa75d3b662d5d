// Package sheets ingests questionnaire spreadsheet exports (Google Forms
// CSV or XLSX) into the same daily-record shape the log parser produces.
package sheets

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"

	"sleeplog/internal/clock"
	"sleeplog/internal/record"
)

// timestampHeader is the column Google Forms prepends to every response.
const timestampHeader = "Timestamp"

// Options carries the injected settings the adapter needs.
type Options struct {
	EveningStart clock.Time
	// Today substitutes for rows without a parseable timestamp; the zero
	// value means the current day.
	Today time.Time
}

// ParseCSV reads a Google Forms CSV export. The header row holds question
// texts; each following row is one day's answers.
func ParseCSV(path string, schema *record.Schema, opts Options) ([]record.DailyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return fromRows(rows, schema, opts)
}

// ParseXLSX reads the first sheet of an XLSX spreadsheet export with the
// same layout as the CSV form.
func ParseXLSX(path string, schema *record.Schema, opts Options) ([]record.DailyRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	return fromRows(rows, schema, opts)
}

// fromRows maps header+data rows onto daily records. Questions that have
// no column mapping are dropped; unparseable cells become missing values.
func fromRows(rows [][]string, schema *record.Schema, opts Options) ([]record.DailyRecord, error) {
	if len(rows) < 1 {
		return nil, fmt.Errorf("spreadsheet export has no header row")
	}
	header := rows[0]

	var records []record.DailyRecord
	for _, row := range rows[1:] {
		rec := record.DailyRecord{
			Times:   make(map[string]clock.Time),
			Numbers: make(map[string]float64),
			Texts:   make(map[string]string),
		}

		rec.Date = rowDate(header, row, opts)
		for i, question := range header {
			if i >= len(row) || question == timestampHeader {
				continue
			}
			col, ok := schema.ColumnByQuestion(question)
			if !ok {
				continue
			}
			setValue(&rec, col, row[i])
		}

		rec.WeekLabel = weekLabel(rec.Date)
		rec.RealDate = rec.Date
		if bed, ok := rec.Time("bed_time"); ok && bed.Minutes() < opts.EveningStart.Minutes() {
			rec.RealDate = rec.Date.AddDate(0, 0, 1)
		}
		records = append(records, rec)
	}
	return records, nil
}

func rowDate(header, row []string, opts Options) time.Time {
	today := opts.Today
	if today.IsZero() {
		today = time.Now()
	}
	today = truncateToDay(today)

	for i, name := range header {
		if name != timestampHeader || i >= len(row) || row[i] == "" {
			continue
		}
		if ts, err := dateparse.ParseAny(row[i]); err == nil {
			return truncateToDay(ts)
		}
	}
	return today
}

func setValue(rec *record.DailyRecord, col record.Column, raw string) {
	if clock.IsPlaceholder(raw) {
		// A placeholder drink count still means zero drinks.
		if col.Key == record.DrinksColumn && raw != "" {
			rec.Numbers[col.Key] = 0
		}
		return
	}
	switch col.Kind {
	case record.KindTime:
		if t, ok := clock.Parse(raw); ok {
			rec.Times[col.Key] = t
		}
	case record.KindNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			rec.Numbers[col.Key] = f
		} else if d, ok := clock.ParseDurationHours(raw); ok {
			rec.Numbers[col.Key] = d
		} else if col.Key == record.DrinksColumn {
			rec.Numbers[col.Key] = 0
		}
	case record.KindText:
		rec.Texts[col.Key] = raw
	}
}

// weekLabel returns the MMDD-MMDD label of the Sunday-Saturday week
// containing d, matching the log parser's label shape.
func weekLabel(d time.Time) string {
	start := d.AddDate(0, 0, -int(d.Weekday()))
	end := start.AddDate(0, 0, 6)
	return fmt.Sprintf("%02d%02d-%02d%02d",
		int(start.Month()), start.Day(), int(end.Month()), end.Day())
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
