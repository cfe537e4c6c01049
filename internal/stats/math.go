package stats

import (
	"math"
	"slices"
	"time"
)

const secondsPerDay = 86400.0

// CalculateMedianDiscrete finds the median value in a slice of integers.
func CalculateMedianDiscrete(values []int) float64 {
	if len(values) == 0 {
		return 0
	}

	// Work on a copy to avoid mutating the original
	temp := make([]int, len(values))
	copy(temp, values)
	slices.Sort(temp)

	n := len(temp)
	if n%2 == 1 {
		return float64(temp[n/2])
	}
	return float64(temp[n/2-1]+temp[n/2]) / 2.0
}

// CalculateMedianContinuous finds the median value in a slice of floats.
func CalculateMedianContinuous(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	temp := make([]float64, len(values))
	copy(temp, values)
	slices.Sort(temp)

	n := len(temp)
	if n%2 == 1 {
		return temp[n/2]
	}
	return (temp[n/2-1] + temp[n/2]) / 2.0
}

// mean returns the rounded arithmetic mean, or nil for an empty slice.
func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return ptr(round1(sum / float64(len(values))))
}

// median is CalculateMedianContinuous with the "no data" marker for an empty slice.
func median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	return ptr(round1(CalculateMedianContinuous(values)))
}

// percent returns part/whole*100 rounded, or nil when whole is zero.
func percent(part, whole int) *float64 {
	if whole == 0 {
		return nil
	}
	return ptr(round1(float64(part) / float64(whole) * 100))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func days(d time.Duration) float64 {
	return d.Seconds() / secondsPerDay
}

func ptr[T any](v T) *T {
	return &v
}
