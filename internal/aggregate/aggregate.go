// Package aggregate turns daily records into per-week and overall
// statistics tables.
package aggregate

import (
	"sort"
	"strings"

	"sleeplog/internal/circstat"
	"sleeplog/internal/clock"
	"sleeplog/internal/record"
)

// TotalDrinks is the derived weekly drink sum column.
const TotalDrinks = "total_drinks"

// Row is one row of summary statistics. Values are float64 for numeric
// statistics and formatted time-of-day strings (e.g. "07:15am") for time
// statistics; a missing key is a null statistic.
type Row map[string]any

// Weekly groups records by week label and computes per-column statistics
// for each group. A week whose records carry no values at all produces an
// empty row, which Overall later drops.
func Weekly(records []record.DailyRecord, schema *record.Schema) map[string]Row {
	weekly := make(map[string]Row)
	if len(records) == 0 {
		return weekly
	}

	groups := make(map[string][]record.DailyRecord)
	for _, r := range records {
		if r.WeekLabel == "" {
			continue
		}
		groups[r.WeekLabel] = append(groups[r.WeekLabel], r)
	}

	for label, group := range groups {
		weekly[label] = weekRow(group, schema)
	}
	return weekly
}

func weekRow(group []record.DailyRecord, schema *record.Schema) Row {
	row := Row{}

	empty := true
	for _, r := range group {
		if !r.Empty() {
			empty = false
			break
		}
	}
	if empty {
		return row
	}

	var drinks float64
	for _, r := range group {
		if d, ok := r.Number(record.DrinksColumn); ok {
			drinks += d
		}
	}
	row[TotalDrinks] = drinks

	for _, col := range schema.TimeColumns() {
		var times []clock.Time
		for _, r := range group {
			if t, ok := r.Time(col.Key); ok {
				times = append(times, t)
			}
		}
		if len(times) == 0 {
			continue
		}
		if avg, ok := circstat.MeanTime(times); ok {
			row["avg_"+col.Key] = avg.String()
		}
		if med, ok := circstat.MedianTime(times); ok {
			row["med_"+col.Key] = med.String()
		}
		if sd, ok := circstat.StdDevTime(times); ok {
			row["std_"+col.Key] = sd
		}
		if col.Expected == nil {
			continue
		}
		offsets := circstat.Offsets(times, *col.Expected)
		if avg, ok := circstat.Mean(offsets); ok {
			row["avg_offset_"+col.Key] = avg
		}
		if med, ok := circstat.Median(offsets); ok {
			row["med_offset_"+col.Key] = med
		}
		if sd, ok := circstat.StdDev(offsets); ok {
			row["std_offset_"+col.Key] = sd
		}
	}

	for _, col := range schema.NumberColumns() {
		var values []float64
		for _, r := range group {
			if v, ok := r.Number(col.Key); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		if avg, ok := circstat.Mean(values); ok {
			row["avg_"+col.Key] = avg
		}
		if med, ok := circstat.Median(values); ok {
			row["med_"+col.Key] = med
		}
		if sd, ok := circstat.StdDev(values); ok {
			row["std_"+col.Key] = sd
		}
	}

	return row
}

// Overall folds all weekly rows into a single summary row. Weeks with no
// usable statistics are excluded up front so they cannot drag averages
// toward zero. Numeric columns get their arithmetic mean across weeks;
// columns holding formatted times get a circular mean plus a "_med"
// median variant; the median of total_drinks is always included.
func Overall(weekly map[string]Row) Row {
	rows := make([]Row, 0, len(weekly))
	labels := make([]string, 0, len(weekly))
	for label := range weekly {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if len(weekly[label]) > 0 {
			rows = append(rows, weekly[label])
		}
	}

	overall := Row{}
	if len(rows) == 0 {
		return overall
	}

	for _, key := range columnsOf(rows) {
		var nums []float64
		var times []clock.Time
		timeColumn := false
		for _, row := range rows {
			switch v := row[key].(type) {
			case float64:
				nums = append(nums, v)
			case string:
				if strings.Contains(v, ":") {
					timeColumn = true
					if t, ok := clock.Parse(v); ok {
						times = append(times, t)
					}
				}
			}
		}

		if timeColumn {
			if avg, ok := circstat.MeanTime(times); ok {
				overall[key] = avg.String()
			}
			if med, ok := circstat.MedianTime(times); ok {
				overall[key+"_med"] = med.String()
			}
			continue
		}
		if avg, ok := circstat.Mean(nums); ok {
			overall[key] = avg
		}
		if key == TotalDrinks {
			if med, ok := circstat.Median(nums); ok {
				overall["med_"+TotalDrinks] = med
			}
		}
	}

	return overall
}

// columnsOf returns the union of keys across rows, in first-seen order
// following the rows' sorted label order.
func columnsOf(rows []Row) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, row := range rows {
		rowKeys := make([]string, 0, len(row))
		for k := range row {
			rowKeys = append(rowKeys, k)
		}
		sort.Strings(rowKeys)
		for _, k := range rowKeys {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// StatKeys lists every statistic key the aggregator can produce for a
// schema, in canonical output order. Writers use it to order columns;
// keys absent from a row are null cells.
func StatKeys(schema *record.Schema) []string {
	keys := []string{TotalDrinks, "med_" + TotalDrinks}
	for _, col := range schema.TimeColumns() {
		keys = append(keys,
			"avg_"+col.Key, "avg_"+col.Key+"_med",
			"med_"+col.Key, "med_"+col.Key+"_med",
			"std_"+col.Key)
		if col.Expected != nil {
			keys = append(keys,
				"avg_offset_"+col.Key, "med_offset_"+col.Key, "std_offset_"+col.Key)
		}
	}
	for _, col := range schema.NumberColumns() {
		keys = append(keys, "avg_"+col.Key, "med_"+col.Key, "std_"+col.Key)
	}
	return keys
}
