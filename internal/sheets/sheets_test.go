package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sleeplog/internal/clock"
	"sleeplog/internal/record"
)

func testSchema() *record.Schema {
	return record.NewSchema(map[string]string{
		"What time did you get into bed & commit to sleep?": "bed_time",
		"What time did you wake up?":                        "wake_up_time",
		"In TOTAL, how many hours of sleep did you get?":    "sleep_hours",
		"In TOTAL how many hours of sleep did you get?":     "sleep_hours",
		"If alcohol, how many standard drinks?":             record.DrinksColumn,
		"Second wind?":                                      "second_wind",
	}, map[string]clock.Time{
		"bed_time": {Hour: 4, Minute: 0},
	})
}

func testOptions() Options {
	return Options{
		EveningStart: clock.Time{Hour: 17},
		Today:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	return path
}

const sampleCSV = `Timestamp,What time did you get into bed & commit to sleep?,What time did you wake up?,"In TOTAL, how many hours of sleep did you get?","If alcohol, how many standard drinks?",Second wind?,Untracked question?
2025-04-25 08:12:00,11:30pm,7am,7.5,2,,ignored
2025-04-26 09:01:00,1am,8am,7:15,.,yes,ignored
,11pm,6:45am,8,,,ignored
`

func TestParseCSV(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	records, err := ParseCSV(path, testSchema(), testOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if got := first.Date.Format("2006-01-02"); got != "2025-04-25" {
		t.Errorf("first date = %s, want 2025-04-25", got)
	}
	if bed, ok := first.Time("bed_time"); !ok || bed.Hour != 23 || bed.Minute != 30 {
		t.Errorf("bed time = %v (ok=%v), want 11:30pm", bed, ok)
	}
	if h, ok := first.Number("sleep_hours"); !ok || h != 7.5 {
		t.Errorf("sleep hours = %v (ok=%v), want 7.5", h, ok)
	}
	if d, ok := first.Number(record.DrinksColumn); !ok || d != 2 {
		t.Errorf("drinks = %v (ok=%v), want 2", d, ok)
	}

	second := records[1]
	// "7:15" in a numeric column parses as a duration.
	if h, ok := second.Number("sleep_hours"); !ok || h != 7.25 {
		t.Errorf("sleep hours = %v (ok=%v), want 7.25", h, ok)
	}
	// "." in the drinks column means zero drinks.
	if d, ok := second.Number(record.DrinksColumn); !ok || d != 0 {
		t.Errorf("drinks = %v (ok=%v), want 0", d, ok)
	}
	if sw, ok := second.Text("second_wind"); !ok || sw != "yes" {
		t.Errorf("second wind = %q (ok=%v)", sw, ok)
	}
	// A 1am bed time belongs to the following morning.
	if !second.RealDate.Equal(second.Date.AddDate(0, 0, 1)) {
		t.Errorf("real date = %s, want day after %s",
			second.RealDate.Format("2006-01-02"), second.Date.Format("2006-01-02"))
	}

	// No timestamp: the injected "today" stands in.
	third := records[2]
	if got := third.Date.Format("2006-01-02"); got != "2025-06-01" {
		t.Errorf("fallback date = %s, want 2025-06-01", got)
	}

	for _, r := range records {
		if _, ok := r.Text("Untracked question?"); ok {
			t.Fatal("unmapped question leaked into records")
		}
	}
}

func TestParseCSVWeekLabels(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	records, err := ParseCSV(path, testSchema(), testOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 2025-04-25 is a Friday; its Sunday-Saturday week is Apr 20-26.
	if records[0].WeekLabel != "0420-0426" {
		t.Errorf("week label = %q, want 0420-0426", records[0].WeekLabel)
	}
	if records[1].WeekLabel != "0420-0426" {
		t.Errorf("week label = %q, want 0420-0426", records[1].WeekLabel)
	}
	// 2025-06-01 is itself a Sunday.
	if records[2].WeekLabel != "0601-0607" {
		t.Errorf("week label = %q, want 0601-0607", records[2].WeekLabel)
	}
}

func TestParseCSVEmptyFile(t *testing.T) {
	path := writeCSV(t, "")
	if _, err := ParseCSV(path, testSchema(), testOptions()); err == nil {
		t.Error("expected an error for a file without a header row")
	}
}

func TestExportURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			"https://docs.google.com/spreadsheets/d/abc123_-/edit#gid=42",
			"https://docs.google.com/spreadsheets/d/abc123_-/export?format=csv&gid=42",
		},
		{
			"https://docs.google.com/spreadsheets/d/abc123/edit",
			"https://docs.google.com/spreadsheets/d/abc123/export?format=csv",
		},
		{
			"https://docs.google.com/spreadsheets/d/abc123/export?format=csv",
			"https://docs.google.com/spreadsheets/d/abc123/export?format=csv",
		},
	}
	for _, tt := range tests {
		got, err := ExportURL(tt.in)
		if err != nil {
			t.Errorf("ExportURL(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExportURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ExportURL("https://example.com/not-a-sheet"); err == nil {
		t.Error("expected an error for a non-Sheets URL")
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Timestamp,Second wind?\n2025-04-25,yes\n"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "sheet.csv")
	if err := Download(context.Background(), srv.URL+"/export", dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected downloaded content")
	}
}

func TestDownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "sheet.csv")
	if err := Download(context.Background(), srv.URL+"/export", dest); err == nil {
		t.Error("expected an error for a non-200 response")
	}
}
