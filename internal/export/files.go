package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sleeplog/internal/aggregate"
	"sleeplog/internal/logparse"
	"sleeplog/internal/record"
)

// Options controls where and under what names the output files land.
type Options struct {
	Dir string
	// LabelFiles appends the covered date range to each table's file
	// name, so runs over different periods do not overwrite each other.
	LabelFiles bool
}

// WriteAll writes the full output set: the daily data tables, the weekly
// and overall statistics, the tidy-form statistics, per-week annotations
// and the HTML report. It returns the paths written.
func WriteAll(opts Options, res *logparse.Result, schema *record.Schema, weekly map[string]aggregate.Row, overall aggregate.Row) ([]string, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	suffix := ""
	if opts.LabelFiles {
		if start, end, ok := dateSpan(res.Records); ok {
			suffix = "-" + RangeLabel(start, end)
		}
	}
	name := func(base, ext string) string {
		return filepath.Join(opts.Dir, base+suffix+ext)
	}

	var paths []string
	write := func(path string, fn func(string) error) error {
		if err := fn(path); err != nil {
			return err
		}
		paths = append(paths, path)
		return nil
	}

	steps := []struct {
		path string
		fn   func(string) error
	}{
		{name("data", ".tsv"), func(p string) error {
			return WriteData(p, res.Records, schema)
		}},
		{name("data-with-questions", ".tsv"), func(p string) error {
			return WriteDataWithQuestions(p, res.Records, schema)
		}},
		{name("stats-by-week", ".tsv"), func(p string) error {
			return WriteWeeklyStats(p, "week", weekly, schema)
		}},
		{name("stats-by-log-date-ranges", ".tsv"), func(p string) error {
			return WriteWeeklyStats(p, "dates", RelabelByDates(weekly, res.Records), schema)
		}},
		{name("stats", ".tsv"), func(p string) error {
			return WriteOverallStats(p, overall, schema)
		}},
		{name("stats-long", ".tsv"), func(p string) error {
			return WriteLongStats(p, weekly, overall, schema)
		}},
		{name("report", ".html"), func(p string) error {
			return WriteReport(p, weekly, overall, res.Notes, schema)
		}},
	}
	for _, s := range steps {
		if err := write(s.path, s.fn); err != nil {
			return paths, err
		}
	}

	annotated, err := WriteAnnotations(opts.Dir, res.Notes)
	paths = append(paths, annotated...)
	if err != nil {
		return paths, err
	}
	return paths, nil
}

func dateSpan(records []record.DailyRecord) (time.Time, time.Time, bool) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max := records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(min) {
			min = r.Date
		}
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max, true
}
