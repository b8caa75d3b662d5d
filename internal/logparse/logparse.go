// Package logparse recovers a day-by-day table from the hand-maintained
// indented sleep log. Grouping in the log is encoded purely by indentation
// and week-header lines, so the parser is deliberately permissive:
// anything it does not recognize is a note, not an error.
package logparse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"sleeplog/internal/clock"
	"sleeplog/internal/record"
)

// minIndent is the indentation threshold, in columns with tabs expanded
// to four spaces, at which a line belongs to the active week block.
const minIndent = 4

// Options carries the injected configuration the parser needs.
type Options struct {
	Year         int        // year assumed for week-header dates
	EveningStart clock.Time // bed times before this belong to the next day
}

// WeekNotes holds the free-form note lines of one week block.
type WeekNotes struct {
	Label string
	Start time.Time
	End   time.Time
	Notes []string
}

// Result is the output of one parse: the daily records in log order plus
// the per-week annotations.
type Result struct {
	Records []record.DailyRecord
	Notes   []WeekNotes
}

type state int

const (
	noActiveWeek state = iota
	inWeek
)

// cell is one parsed answer token; at most one of the value fields is set.
type cell struct {
	t    *clock.Time
	num  *float64
	text string
	has  bool
}

type activeWeek struct {
	label   string
	days    []time.Time
	answers map[string][]cell
	notes   []string
}

type parser struct {
	schema *record.Schema
	opts   Options

	state state
	week  activeWeek
	out   Result
}

// ParseFile parses the log file at path.
func ParseFile(path string, schema *record.Schema, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()
	res, err := Parse(f, schema, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return res, nil
}

// Parse walks the log line by line, building one record per calendar day.
// The only fatal condition is a calendar date claimed by more than one
// week block; every other oddity degrades to a missing value or a note.
func Parse(r io.Reader, schema *record.Schema, opts Options) (*Result, error) {
	p := &parser{schema: schema, opts: opts}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	p.flush()

	if err := record.CheckDuplicateDates(p.out.Records); err != nil {
		return nil, err
	}
	return &p.out, nil
}

// line feeds one raw line through the state machine.
func (p *parser) line(raw string) {
	stripped := strings.TrimSpace(raw)
	if stripped == "" || strings.HasPrefix(stripped, "...") {
		return
	}

	// A week header closes the active week no matter how it is indented.
	if label, days, ok := ParseWeekHeader(stripped, p.opts.Year); ok {
		p.flush()
		p.state = inWeek
		p.week = activeWeek{
			label:   label,
			days:    days,
			answers: make(map[string][]cell),
		}
		return
	}

	if p.state != inWeek {
		return
	}

	if indentOf(raw) < minIndent {
		return
	}
	if !strings.Contains(stripped, "?") {
		p.week.notes = append(p.week.notes, stripped)
		return
	}
	p.questionLine(stripped)
}

// questionLine handles an indented "question? a b c ..." line. The answer
// tokens map onto the active week's days by position.
func (p *parser) questionLine(stripped string) {
	qPart, rest, _ := strings.Cut(stripped, "?")
	question := strings.TrimSpace(qPart) + "?"

	col, ok := p.schema.ColumnByQuestion(question)
	if !ok {
		// Unmapped questions are dropped, not errors: the log may carry
		// questions the analysis does not track.
		return
	}
	if _, seen := p.week.answers[col.Key]; seen {
		return
	}

	tokens := strings.Fields(rest)
	cells := make([]cell, len(tokens))
	for i, tok := range tokens {
		cells[i] = parseCell(tok, col)
	}
	p.week.answers[col.Key] = cells
}

// parseCell converts one answer token per the column's declared kind.
// Failures yield an absent value, never an error.
func parseCell(token string, col record.Column) cell {
	switch col.Kind {
	case record.KindTime:
		if t, ok := clock.Parse(token); ok {
			return cell{t: &t, has: true}
		}
	case record.KindNumber:
		// A placeholder in the drink-count column means zero drinks,
		// not missing data.
		if col.Key == record.DrinksColumn && clock.IsPlaceholder(token) {
			zero := 0.0
			return cell{num: &zero, has: true}
		}
		if n, ok := clock.ParseDurationHours(token); ok {
			return cell{num: &n, has: true}
		}
	case record.KindText:
		if !clock.IsPlaceholder(token) {
			return cell{text: token, has: true}
		}
	}
	return cell{}
}

// flush emits one DailyRecord per day of the active week. Ragged answer
// lists are tolerated: a column with fewer tokens than days simply has no
// value for the trailing days.
func (p *parser) flush() {
	if p.state != inWeek {
		return
	}
	week := p.week
	p.state = noActiveWeek
	p.week = activeWeek{}

	if len(week.days) == 0 {
		return
	}

	for i, day := range week.days {
		rec := record.DailyRecord{
			Date:      day,
			WeekLabel: week.label,
			Times:     make(map[string]clock.Time),
			Numbers:   make(map[string]float64),
			Texts:     make(map[string]string),
		}
		for key, cells := range week.answers {
			if i >= len(cells) || !cells[i].has {
				continue
			}
			c := cells[i]
			switch {
			case c.t != nil:
				rec.Times[key] = *c.t
			case c.num != nil:
				rec.Numbers[key] = *c.num
			default:
				rec.Texts[key] = c.text
			}
		}
		rec.RealDate = realDate(rec, p.opts.EveningStart)
		p.out.Records = append(p.out.Records, rec)
	}

	notes := WeekNotes{
		Label: week.label,
		Start: week.days[0],
		End:   week.days[len(week.days)-1],
		Notes: week.notes,
	}
	p.out.Notes = append(p.out.Notes, notes)
}

// realDate shifts a record to the next calendar day when its bed time
// falls before the evening cutoff: the log labels a night by the evening
// it started, but a 2am bed time actually happens the following morning.
func realDate(rec record.DailyRecord, eveningStart clock.Time) time.Time {
	if bed, ok := rec.Time("bed_time"); ok && bed.Minutes() < eveningStart.Minutes() {
		return rec.Date.AddDate(0, 0, 1)
	}
	return rec.Date
}

// indentOf counts leading whitespace columns with tabs expanded to four
// spaces.
func indentOf(line string) int {
	indent := 0
	for _, r := range line {
		switch r {
		case ' ':
			indent++
		case '\t':
			indent += 4
		default:
			return indent
		}
	}
	return indent
}
