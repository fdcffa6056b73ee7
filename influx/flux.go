package influx

import (
	"fmt"
	"strings"
)

// TimeRange is a relative-duration window anchored at now.
type TimeRange string

const (
	LastHour   TimeRange = "-1h"
	Last6Hours TimeRange = "-6h"
	LastDay    TimeRange = "-24h"
	LastWeek   TimeRange = "-7d"
	LastMonth  TimeRange = "-30d"
)

var timeRanges = map[TimeRange]bool{
	LastHour:   true,
	Last6Hours: true,
	LastDay:    true,
	LastWeek:   true,
	LastMonth:  true,
}

func (timeRange TimeRange) Valid() bool {
	return timeRanges[timeRange]
}

// TimeRanges returns the preset catalog.
func TimeRanges() []TimeRange {
	return []TimeRange{LastHour, Last6Hours, LastDay, LastWeek, LastMonth}
}

type AggregateFn string

const (
	Mean AggregateFn = "mean"
	Sum  AggregateFn = "sum"
	Max  AggregateFn = "max"
)

const DefaultWindow = "1h"

// QueryDescriptor describes one time-series request. Either Measurement or
// Exclude must be set; an empty Bucket falls back to the client's default.
type QueryDescriptor struct {
	Bucket      string
	Measurement string
	Field       string
	Location    string
	Exclude     []string
	Range       TimeRange
	Window      string
	Fn          AggregateFn
}

func (desc *QueryDescriptor) validate() error {
	if desc.Measurement == "" && len(desc.Exclude) == 0 {
		return fmt.Errorf("descriptor has neither measurement nor exclusions")
	}
	if !desc.Range.Valid() {
		return fmt.Errorf("unhandled time range [%s]", desc.Range)
	}
	return nil
}

// flux renders the descriptor as a Flux pipeline.
func (desc *QueryDescriptor) flux(defaultBucket string) (string, error) {
	if err := desc.validate(); err != nil {
		return "", err
	}

	bucket := desc.Bucket
	if bucket == "" {
		bucket = defaultBucket
	}
	window := desc.Window
	if window == "" {
		window = DefaultWindow
	}
	fn := desc.Fn
	if fn == "" {
		fn = Mean
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "from(bucket: %q)\n", bucket)
	fmt.Fprintf(&builder, "  |> range(start: %s)\n", desc.Range)

	if desc.Measurement != "" {
		fmt.Fprintf(&builder, "  |> filter(fn: (r) => r._measurement == %q", desc.Measurement)
		if desc.Field != "" {
			fmt.Fprintf(&builder, " and r._field == %q", desc.Field)
		}
		if desc.Location != "" {
			fmt.Fprintf(&builder, " and r.location == %q", desc.Location)
		}
		builder.WriteString(")\n")
	}
	for _, measurement := range desc.Exclude {
		fmt.Fprintf(&builder, "  |> filter(fn: (r) => r._measurement != %q)\n", measurement)
	}

	fmt.Fprintf(&builder, "  |> aggregateWindow(every: %s, fn: %s)\n", window, fn)
	fmt.Fprintf(&builder, "  |> yield(name: %q)\n", desc.yieldName())

	return builder.String(), nil
}

func (desc *QueryDescriptor) yieldName() string {
	if desc.Measurement == "" {
		return "filtered"
	}
	if desc.Field == "" {
		return desc.Measurement
	}
	return desc.Measurement + "_" + desc.Field
}
