package timeseries

import "time"

// Point is one timestamped value of a series.
type Point struct {
	Time  time.Time
	Value float64
}
