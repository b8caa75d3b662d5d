package logparse

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// headerRE matches week header lines like "4/25-4/30", "Fri4/25-Wed4/30"
// or "Tue12/30-Mon1/05". The weekday prefixes and the end month are
// optional; an omitted end month defaults to the start month.
var headerRE = regexp.MustCompile(`^[A-Za-z]{0,3}\d{1,2}/\d{1,2}\s*-\s*[A-Za-z]{0,3}(?:\d{1,2}/)?\d{1,2}$`)

var intRE = regexp.MustCompile(`\d+`)

// ParseWeekHeader parses a week header line into its compact label and the
// inclusive list of calendar dates it covers. The year is injected by the
// caller; when the end date lands before the start with a numerically
// smaller month, the range rolls over into the following year. The label
// always uses the literal month/day values as written. Lines that do not
// look like a header report ok=false.
func ParseWeekHeader(line string, year int) (label string, days []time.Time, ok bool) {
	if !headerRE.MatchString(line) {
		return "", nil, false
	}

	var nums []int
	for _, tok := range intRE.FindAllString(line, -1) {
		n, _ := strconv.Atoi(tok)
		nums = append(nums, n)
	}
	if len(nums) < 3 {
		return "", nil, false
	}

	sm, sd := nums[0], nums[1]
	var em, ed int
	if len(nums) >= 4 {
		em, ed = nums[2], nums[3]
	} else {
		em, ed = sm, nums[2]
	}
	if !validMonthDay(sm, sd) || !validMonthDay(em, ed) {
		return "", nil, false
	}

	start := time.Date(year, time.Month(sm), sd, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.Month(em), ed, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (4/31 -> 5/1); such headers are noise.
	if start.Day() != sd || end.Day() != ed {
		return "", nil, false
	}
	if end.Before(start) && em < sm {
		end = time.Date(year+1, time.Month(em), ed, 0, 0, 0, 0, time.UTC)
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	label = fmt.Sprintf("%02d%02d-%02d%02d", sm, sd, em, ed)
	return label, days, true
}

func validMonthDay(month, day int) bool {
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}
