package clock

import (
	"math"
	"testing"
)

func TestParseStrictTokens(t *testing.T) {
	tests := []struct {
		token  string
		hour   int
		minute int
	}{
		{"10:30pm", 22, 30},
		{"10:30PM", 22, 30},
		{"7:31", 7, 31},
		{"8", 8, 0},
		{"12:05am", 0, 5},
		{"12:00pm", 12, 0},
		{"12am", 0, 0},
		{"12pm", 12, 0},
		{"11:59pm", 23, 59},
		{"25", 1, 0}, // meridiem-less hours wrap mod 24
	}
	for _, tt := range tests {
		got, ok := Parse(tt.token)
		if !ok {
			t.Errorf("Parse(%q): expected a value", tt.token)
			continue
		}
		if got.Hour != tt.hour || got.Minute != tt.minute {
			t.Errorf("Parse(%q) = %02d:%02d, want %02d:%02d",
				tt.token, got.Hour, got.Minute, tt.hour, tt.minute)
		}
	}
}

func TestParsePlaceholders(t *testing.T) {
	for _, token := range []string{".", "", "   ", "\t"} {
		if _, ok := Parse(token); ok {
			t.Errorf("Parse(%q): expected no value", token)
		}
	}
}

func TestParseFallback(t *testing.T) {
	got, ok := Parse("2025-04-25 22:15")
	if !ok {
		t.Fatal("expected fallback parser to handle a full timestamp")
	}
	if got.Hour != 22 || got.Minute != 15 {
		t.Errorf("got %02d:%02d, want 22:15", got.Hour, got.Minute)
	}

	if _, ok := Parse("not a time"); ok {
		t.Error("expected garbage token to yield no value")
	}
	if _, ok := Parse("10:99"); ok {
		t.Error("expected out-of-range minutes to yield no value")
	}
}

func TestParseDurationHours(t *testing.T) {
	tests := []struct {
		token string
		want  float64
	}{
		{"7:30", 7.5},
		{"9:15pm", 21.25},
		{"12:05am", 5.0 / 60},
		{"8", 8},
		{"7.25", 7.25},
	}
	for _, tt := range tests {
		got, ok := ParseDurationHours(tt.token)
		if !ok {
			t.Errorf("ParseDurationHours(%q): expected a value", tt.token)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseDurationHours(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}

	for _, token := range []string{".", "", "abc", "1:2:3"} {
		if _, ok := ParseDurationHours(token); ok {
			t.Errorf("ParseDurationHours(%q): expected no value", token)
		}
	}
}

func TestStringFormat(t *testing.T) {
	tests := []struct {
		t    Time
		want string
	}{
		{Time{7, 15}, "07:15am"},
		{Time{0, 5}, "12:05am"},
		{Time{12, 0}, "12:00pm"},
		{Time{23, 58}, "11:58pm"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestFromMinutes(t *testing.T) {
	if got := FromMinutes(1440); got.Minutes() != 0 {
		t.Errorf("FromMinutes(1440) = %v, want midnight", got)
	}
	if got := FromMinutes(-10); got.Minutes() != 1430 {
		t.Errorf("FromMinutes(-10) = %v, want 23:50", got)
	}
	if got := FromMinutes(725); got.Hour != 12 || got.Minute != 5 {
		t.Errorf("FromMinutes(725) = %v, want 12:05", got)
	}
}
