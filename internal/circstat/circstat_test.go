package circstat

import (
	"math"
	"testing"

	"sleeplog/internal/clock"
)

func mustParse(t *testing.T, token string) clock.Time {
	t.Helper()
	ct, ok := clock.Parse(token)
	if !ok {
		t.Fatalf("failed to parse %q", token)
	}
	return ct
}

func TestMeanTimeAcrossMidnight(t *testing.T) {
	times := []clock.Time{mustParse(t, "11:58pm"), mustParse(t, "12:02am")}
	got, ok := MeanTime(times)
	if !ok {
		t.Fatal("expected a mean")
	}
	if got.Hour != 0 || got.Minute != 0 {
		t.Errorf("mean of 23:58 and 00:02 = %v, want 12:00am", got)
	}
}

func TestMeanTimeSimple(t *testing.T) {
	times := []clock.Time{{Hour: 10, Minute: 0}, {Hour: 12, Minute: 0}}
	got, ok := MeanTime(times)
	if !ok {
		t.Fatal("expected a mean")
	}
	if got.Hour != 11 || got.Minute != 0 {
		t.Errorf("mean of 10:00 and 12:00 = %v, want 11:00am", got)
	}
}

func TestMeanTimeDegenerate(t *testing.T) {
	if _, ok := MeanTime(nil); ok {
		t.Error("expected no mean for empty input")
	}
	// Perfectly antipodal times have no defined mean.
	antipodal := []clock.Time{{Hour: 0, Minute: 0}, {Hour: 12, Minute: 0}}
	if _, ok := MeanTime(antipodal); ok {
		t.Error("expected no mean for antipodal times")
	}
}

func TestMedianTimeIsNotCircular(t *testing.T) {
	// The median works on raw minutes-of-day: 23:58 and 00:02 produce noon.
	// This asymmetry with MeanTime is intentional, existing consumers
	// depend on it.
	times := []clock.Time{mustParse(t, "11:58pm"), mustParse(t, "12:02am")}
	got, ok := MedianTime(times)
	if !ok {
		t.Fatal("expected a median")
	}
	if got.Hour != 12 || got.Minute != 0 {
		t.Errorf("median = %v, want 12:00pm", got)
	}
}

func TestStdDevTime(t *testing.T) {
	times := []clock.Time{{Hour: 22, Minute: 0}, {Hour: 23, Minute: 0}}
	sd, ok := StdDevTime(times)
	if !ok {
		t.Fatal("expected a stddev")
	}
	// sample stddev of {1320, 1380}
	if math.Abs(sd-42.426406871) > 1e-6 {
		t.Errorf("stddev = %v, want ~42.43", sd)
	}

	if _, ok := StdDevTime([]clock.Time{{Hour: 22}}); ok {
		t.Error("expected no stddev for a single value")
	}
}

func TestOffsetsShorterArc(t *testing.T) {
	expected := mustParse(t, "11:50pm")
	got := Offsets([]clock.Time{{Hour: 0, Minute: 0}}, expected)
	if len(got) != 1 || got[0] != 10 {
		t.Errorf("offset of 00:00 from 23:50 = %v, want [10]", got)
	}

	// Exactly opposite times are 720 minutes apart, never more.
	got = Offsets([]clock.Time{{Hour: 12, Minute: 0}}, clock.Time{})
	if got[0] != 720 {
		t.Errorf("offset of 12:00 from 00:00 = %v, want 720", got[0])
	}
}

func TestMeanOffset(t *testing.T) {
	expected := clock.Time{Hour: 4, Minute: 0}
	times := []clock.Time{{Hour: 3, Minute: 30}, {Hour: 4, Minute: 30}}
	got, ok := MeanOffset(times, expected)
	if !ok || got != 30 {
		t.Errorf("mean offset = %v (ok=%v), want 30", got, ok)
	}

	if _, ok := MeanOffset(nil, expected); ok {
		t.Error("expected no offset for empty input")
	}
}

func TestNumericStats(t *testing.T) {
	values := []float64{1, 2, 3, 4}

	if m, ok := Mean(values); !ok || m != 2.5 {
		t.Errorf("mean = %v (ok=%v), want 2.5", m, ok)
	}
	if m, ok := Median(values); !ok || m != 2.5 {
		t.Errorf("median = %v (ok=%v), want 2.5", m, ok)
	}
	if sd, ok := StdDev(values); !ok || math.Abs(sd-1.2909944487) > 1e-9 {
		t.Errorf("stddev = %v (ok=%v), want ~1.291", sd, ok)
	}

	if _, ok := Mean(nil); ok {
		t.Error("expected no mean for empty input")
	}
	if _, ok := Median(nil); ok {
		t.Error("expected no median for empty input")
	}
}
