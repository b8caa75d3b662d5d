// Package circstat computes statistics over times of day. Clock times wrap
// at midnight, so averaging "11:50pm" and "12:10am" naively yields noon;
// the mean here treats each time as an angle on a 24-hour clock face.
// The median and standard deviation intentionally stay non-circular: that
// matches the tables downstream consumers already depend on.
package circstat

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"sleeplog/internal/clock"
)

const minutesPerDay = 1440

func toAngle(t clock.Time) float64 {
	return 2 * math.Pi * float64(t.Minutes()) / minutesPerDay
}

// MeanTime returns the circular mean of the given times of day, rounded to
// the nearest minute. The mean is undefined for empty input and for the
// degenerate case where the resultant vector vanishes (perfectly antipodal
// times); both report ok=false.
func MeanTime(times []clock.Time) (clock.Time, bool) {
	if len(times) == 0 {
		return clock.Time{}, false
	}

	angles := make([]float64, len(times))
	var sumCos, sumSin float64
	for i, t := range times {
		angles[i] = toAngle(t)
		sumCos += math.Cos(angles[i])
		sumSin += math.Sin(angles[i])
	}
	if sumCos == 0 && sumSin == 0 {
		return clock.Time{}, false
	}

	angle := stat.CircularMean(angles, nil)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	minutes := int(math.Round(angle / (2 * math.Pi) * minutesPerDay))
	return clock.FromMinutes(minutes), true
}

// MedianTime returns the plain numeric median of minutes-of-day.
func MedianTime(times []clock.Time) (clock.Time, bool) {
	m, ok := Median(minutesOf(times))
	if !ok {
		return clock.Time{}, false
	}
	return clock.FromMinutes(int(math.Round(m))), true
}

// StdDevTime returns the plain sample standard deviation of minutes-of-day.
// Unlike MeanTime it does not correct for midnight wraparound.
func StdDevTime(times []clock.Time) (float64, bool) {
	return StdDev(minutesOf(times))
}

// Offsets returns, per time, the minimal circular distance in minutes to
// expected: the shorter arc around the clock face, never more than 720.
func Offsets(times []clock.Time, expected clock.Time) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		d := t.Minutes() - expected.Minutes()
		d = ((d % minutesPerDay) + minutesPerDay) % minutesPerDay
		if d > minutesPerDay/2 {
			d = minutesPerDay - d
		}
		out[i] = float64(d)
	}
	return out
}

// MeanOffset returns the arithmetic mean of Offsets.
func MeanOffset(times []clock.Time, expected clock.Time) (float64, bool) {
	return Mean(Offsets(times, expected))
}

// Mean returns the arithmetic mean of values; empty input reports ok=false.
func Mean(values []float64) (float64, bool) {
	m, err := stats.Mean(values)
	if err != nil || math.IsNaN(m) {
		return 0, false
	}
	return m, true
}

// Median returns the order-statistic median; empty input reports ok=false.
func Median(values []float64) (float64, bool) {
	m, err := stats.Median(values)
	if err != nil || math.IsNaN(m) {
		return 0, false
	}
	return m, true
}

// StdDev returns the sample standard deviation; fewer than two values
// report ok=false.
func StdDev(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil || math.IsNaN(sd) {
		return 0, false
	}
	return sd, true
}

func minutesOf(times []clock.Time) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = float64(t.Minutes())
	}
	return out
}
