package record

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"sleeplog/internal/clock"
)

// Kind describes how a column's raw tokens are parsed.
type Kind int

const (
	KindNumber Kind = iota
	KindTime
	KindText
)

// DrinksColumn is the column summed into total_drinks.
const DrinksColumn = "alcohol_drinks"

// Column is one named field of a daily record.
type Column struct {
	Key      string
	Kind     Kind
	Expected *clock.Time // target time of day, clock-time columns only
}

// columnKinds fixes the parse type per internal column key. Which question
// phrasings feed each key comes from configuration; the key set itself
// does not.
var columnKinds = map[string]Kind{
	"wind_down_start_time": KindTime,
	"bed_time":             KindTime,
	"wake_up_time":         KindTime,
	"get_out_of_bed_time":  KindTime,
	"fall_asleep_minutes":  KindNumber,
	"night_wake_ups":       KindNumber,
	"awake_minutes":        KindNumber,
	"out_of_bed_minutes":   KindNumber,
	"sleep_hours":          KindNumber,
	"bed_hours":            KindNumber,
	"sleep_quality":        KindNumber,
	"naps":                 KindNumber,
	"mood":                 KindNumber,
	"fatigue":              KindNumber,
	DrinksColumn:           KindNumber,
	"alcohol_type":         KindText,
	"second_wind":          KindText,
}

// columnOrder gives output tables a stable, questionnaire-shaped ordering.
var columnOrder = []string{
	"wind_down_start_time",
	"bed_time",
	"fall_asleep_minutes",
	"night_wake_ups",
	"awake_minutes",
	"out_of_bed_minutes",
	"wake_up_time",
	"get_out_of_bed_time",
	"sleep_hours",
	"bed_hours",
	"sleep_quality",
	"naps",
	"mood",
	"fatigue",
	"alcohol_type",
	DrinksColumn,
	"second_wind",
}

// Schema maps questionnaire text to typed columns. Questions without a
// mapping are silently dropped by the parsers.
type Schema struct {
	columns    []Column
	byKey      map[string]Column
	byQuestion map[string]string // question text -> column key
	questions  map[string]string // column key -> preferred question text
}

// NewSchema builds a schema from a question->column mapping and the
// expected time of day per clock-time column. Several question phrasings
// may map to the same column; the first phrasing seen for a column (in
// sorted question order) becomes its display question.
func NewSchema(questions map[string]string, expected map[string]clock.Time) *Schema {
	s := &Schema{
		byKey:      make(map[string]Column),
		byQuestion: make(map[string]string, len(questions)),
		questions:  make(map[string]string),
	}

	keys := make(map[string]bool)
	qTexts := make([]string, 0, len(questions))
	for q := range questions {
		qTexts = append(qTexts, q)
	}
	sort.Strings(qTexts)
	for _, q := range qTexts {
		key := questions[q]
		s.byQuestion[normalizeQuestion(q)] = key
		if _, seen := s.questions[key]; !seen {
			s.questions[key] = q
		}
		keys[key] = true
	}

	ordered := make([]string, 0, len(keys))
	for _, key := range columnOrder {
		if keys[key] {
			ordered = append(ordered, key)
			delete(keys, key)
		}
	}
	extra := make([]string, 0, len(keys))
	for key := range keys {
		extra = append(extra, key)
	}
	sort.Strings(extra)
	ordered = append(ordered, extra...)

	for _, key := range ordered {
		kind, known := columnKinds[key]
		if !known {
			kind = KindNumber
		}
		col := Column{Key: key, Kind: kind}
		if exp, ok := expected[key]; ok && kind == KindTime {
			e := exp
			col.Expected = &e
		}
		s.columns = append(s.columns, col)
		s.byKey[key] = col
	}
	return s
}

// Columns returns the schema's columns in output order.
func (s *Schema) Columns() []Column {
	return s.columns
}

// ColumnByKey looks up a column by its internal key.
func (s *Schema) ColumnByKey(key string) (Column, bool) {
	c, ok := s.byKey[key]
	return c, ok
}

// ColumnByQuestion resolves questionnaire text to its column.
func (s *Schema) ColumnByQuestion(question string) (Column, bool) {
	key, ok := s.byQuestion[normalizeQuestion(question)]
	if !ok {
		return Column{}, false
	}
	return s.ColumnByKey(key)
}

// Question returns the display phrasing for a column key.
func (s *Schema) Question(key string) string {
	if q, ok := s.questions[key]; ok {
		return q
	}
	return key
}

// TimeColumns returns the clock-time columns in order.
func (s *Schema) TimeColumns() []Column {
	var out []Column
	for _, c := range s.columns {
		if c.Kind == KindTime {
			out = append(out, c)
		}
	}
	return out
}

// NumberColumns returns the numeric columns in order.
func (s *Schema) NumberColumns() []Column {
	var out []Column
	for _, c := range s.columns {
		if c.Kind == KindNumber {
			out = append(out, c)
		}
	}
	return out
}

// normalizeQuestion smooths over punctuation drift between questionnaire
// exports, e.g. a missing space after a comma.
func normalizeQuestion(q string) string {
	q = strings.TrimSpace(q)
	q = strings.ReplaceAll(q, ",", ", ")
	return strings.Join(strings.Fields(q), " ")
}

// DailyRecord is one calendar day of sleep-tracking data. Records are
// created by a parser and never mutated afterwards.
type DailyRecord struct {
	Date      time.Time // nominal day assigned by the week block
	RealDate  time.Time // shifted to the next day for pre-evening bed times
	WeekLabel string

	Times   map[string]clock.Time
	Numbers map[string]float64
	Texts   map[string]string
}

// Time returns the clock-time value for a column key, if present.
func (r *DailyRecord) Time(key string) (clock.Time, bool) {
	t, ok := r.Times[key]
	return t, ok
}

// Number returns the numeric value for a column key, if present.
func (r *DailyRecord) Number(key string) (float64, bool) {
	n, ok := r.Numbers[key]
	return n, ok
}

// Text returns the free-text value for a column key, if present.
func (r *DailyRecord) Text(key string) (string, bool) {
	s, ok := r.Texts[key]
	return s, ok
}

// Empty reports whether the record carries no field values at all.
func (r *DailyRecord) Empty() bool {
	return len(r.Times) == 0 && len(r.Numbers) == 0 && len(r.Texts) == 0
}

// DuplicateDateError reports calendar days claimed by more than one week
// block. A duplicated day would silently double-count in every aggregate,
// so parsing treats it as fatal.
type DuplicateDateError struct {
	Dates []time.Time
}

func (e *DuplicateDateError) Error() string {
	days := make([]string, len(e.Dates))
	for i, d := range e.Dates {
		days[i] = d.Format("2006-01-02")
	}
	return fmt.Sprintf("duplicate dates found in log: %s", strings.Join(days, ", "))
}

// CheckDuplicateDates scans all records for dates claimed more than once
// across the whole parse, not just within a week.
func CheckDuplicateDates(records []DailyRecord) error {
	seen := make(map[time.Time]bool, len(records))
	dups := make(map[time.Time]bool)
	for _, r := range records {
		if seen[r.Date] {
			dups[r.Date] = true
		}
		seen[r.Date] = true
	}
	if len(dups) == 0 {
		return nil
	}
	err := &DuplicateDateError{}
	for d := range dups {
		err.Dates = append(err.Dates, d)
	}
	sort.Slice(err.Dates, func(i, j int) bool { return err.Dates[i].Before(err.Dates[j]) })
	return err
}
