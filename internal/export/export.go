// Package export writes the analysis results as flat files: tab-separated
// tables, per-week annotation Markdown and an HTML report.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"sleeplog/internal/aggregate"
	"sleeplog/internal/logparse"
	"sleeplog/internal/record"
)

// RangeLabel renders a date range like "2025--04-25--04-30".
func RangeLabel(start, end time.Time) string {
	return fmt.Sprintf("%04d--%s--%s",
		start.Year(), start.Format("01-02"), end.Format("01-02"))
}

// CalendarWeek returns the Sunday-Saturday range containing d.
func CalendarWeek(d time.Time) (time.Time, time.Time) {
	start := d.AddDate(0, 0, -int(d.Weekday()))
	return start, start.AddDate(0, 0, 6)
}

// writeTSV writes rows as tab-separated values.
func writeTSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// dataHeader lists the leading bookkeeping columns of the data table.
var dataHeader = []string{"date", "real_date", "week", "week_by_log_dates"}

// WriteData writes the daily-record table. Each record carries its date,
// the Sunday-Saturday calendar week, the originating week block's actual
// date range, and the schema's field columns in order.
func WriteData(path string, records []record.DailyRecord, schema *record.Schema) error {
	return writeDataTable(path, records, schema, func(col record.Column) string {
		return col.Key
	})
}

// WriteDataWithQuestions writes the same table with the questionnaire
// phrasings as column headers instead of internal keys.
func WriteDataWithQuestions(path string, records []record.DailyRecord, schema *record.Schema) error {
	return writeDataTable(path, records, schema, func(col record.Column) string {
		return schema.Question(col.Key)
	})
}

func writeDataTable(path string, records []record.DailyRecord, schema *record.Schema, headerOf func(record.Column) string) error {
	cols := schema.Columns()
	header := append([]string(nil), dataHeader...)
	for _, col := range cols {
		header = append(header, headerOf(col))
	}

	blockRanges := weekBlockRanges(records)
	rows := [][]string{header}
	for _, r := range records {
		weekStart, weekEnd := CalendarWeek(r.Date)
		row := []string{
			r.Date.Format("2006-01-02"),
			r.RealDate.Format("2006-01-02"),
			RangeLabel(weekStart, weekEnd),
			blockRanges[r.WeekLabel],
		}
		for _, col := range cols {
			row = append(row, cellValue(r, col))
		}
		rows = append(rows, row)
	}
	return writeTSV(path, rows)
}

func cellValue(r record.DailyRecord, col record.Column) string {
	switch col.Kind {
	case record.KindTime:
		if t, ok := r.Time(col.Key); ok {
			return t.String()
		}
	case record.KindNumber:
		if n, ok := r.Number(col.Key); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	case record.KindText:
		if s, ok := r.Text(col.Key); ok {
			return s
		}
	}
	return ""
}

// weekBlockRanges maps each week label to the date range its records
// actually cover, which can differ from the label's nominal range.
func weekBlockRanges(records []record.DailyRecord) map[string]string {
	type span struct{ min, max time.Time }
	spans := make(map[string]span)
	for _, r := range records {
		s, ok := spans[r.WeekLabel]
		if !ok {
			spans[r.WeekLabel] = span{r.Date, r.Date}
			continue
		}
		if r.Date.Before(s.min) {
			s.min = r.Date
		}
		if r.Date.After(s.max) {
			s.max = r.Date
		}
		spans[r.WeekLabel] = s
	}
	out := make(map[string]string, len(spans))
	for label, s := range spans {
		out[label] = RangeLabel(s.min, s.max)
	}
	return out
}

// WriteWeeklyStats writes one row of statistics per week, ordered by
// label. Only statistic columns that appear in at least one week are
// emitted; a statistic missing from a particular week is an empty cell.
func WriteWeeklyStats(path, labelColumn string, weekly map[string]aggregate.Row, schema *record.Schema) error {
	labels := make([]string, 0, len(weekly))
	for label := range weekly {
		if len(weekly[label]) > 0 {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)

	keys := presentKeys(weekly, schema)
	rows := [][]string{append([]string{labelColumn}, keys...)}
	for _, label := range labels {
		rows = append(rows, append([]string{label}, aggregate.Wide(weekly[label], keys)...))
	}
	return writeTSV(path, rows)
}

// RelabelByDates rekeys the weekly rows from their header labels to the
// date ranges the week blocks actually cover.
func RelabelByDates(weekly map[string]aggregate.Row, records []record.DailyRecord) map[string]aggregate.Row {
	ranges := weekBlockRanges(records)
	out := make(map[string]aggregate.Row, len(weekly))
	for label, row := range weekly {
		key, ok := ranges[label]
		if !ok {
			key = label
		}
		out[key] = row
	}
	return out
}

// WriteOverallStats writes the single overall summary row.
func WriteOverallStats(path string, overall aggregate.Row, schema *record.Schema) error {
	keys := overallKeyOrder(overall, schema)
	rows := [][]string{keys, aggregate.Wide(overall, keys)}
	return writeTSV(path, rows)
}

// WriteLongStats writes the tidy (label, stat, value) form of the weekly
// and overall statistics.
func WriteLongStats(path string, weekly map[string]aggregate.Row, overall aggregate.Row, schema *record.Schema) error {
	rows := [][]string{{"week", "stat", "value"}}

	labels := make([]string, 0, len(weekly))
	for label := range weekly {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	weeklyKeys := presentKeys(weekly, schema)
	for _, label := range labels {
		for _, e := range aggregate.Long(label, weekly[label], weeklyKeys) {
			rows = append(rows, []string{e.Label, e.Stat, e.Value})
		}
	}
	for _, e := range aggregate.Long("overall", overall, overallKeyOrder(overall, schema)) {
		rows = append(rows, []string{e.Label, e.Stat, e.Value})
	}
	return writeTSV(path, rows)
}

// WriteAnnotations writes one Markdown file of note lines per week block
// that has any, named by the block's date range. It returns the paths
// written.
func WriteAnnotations(dir string, notes []logparse.WeekNotes) ([]string, error) {
	var paths []string
	for _, wn := range notes {
		if len(wn.Notes) == 0 {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("annotations-%s.md", RangeLabel(wn.Start, wn.End)))
		var buf []byte
		buf = fmt.Appendf(buf, "# Notes %s - %s\n\n",
			wn.Start.Format("2006-01-02"), wn.End.Format("2006-01-02"))
		for _, line := range wn.Notes {
			buf = fmt.Appendf(buf, "- %s\n", line)
		}
		if err := os.WriteFile(path, buf, 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// presentKeys returns the canonical stat keys that occur in at least one
// week row.
func presentKeys(weekly map[string]aggregate.Row, schema *record.Schema) []string {
	var keys []string
	for _, key := range aggregate.StatKeys(schema) {
		for _, row := range weekly {
			if _, ok := row[key]; ok {
				keys = append(keys, key)
				break
			}
		}
	}
	return keys
}

func overallKeyOrder(overall aggregate.Row, schema *record.Schema) []string {
	var keys []string
	for _, key := range aggregate.StatKeys(schema) {
		if _, ok := overall[key]; ok {
			keys = append(keys, key)
		}
	}
	// Columns the canonical list does not know about still get emitted.
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}
	var extra []string
	for k := range overall {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
