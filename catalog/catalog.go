package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"nanogrid/influx"
)

// Querier is the slice of the influx client the catalog needs.
type Querier interface {
	Query(ctx context.Context, desc influx.QueryDescriptor) ([]influx.Point, error)
}

type source struct {
	Measurement string
	Field       string
	Location    string
	Exclude     []string
}

// Entry is a named dashboard query. Entries with several sources are fetched
// concurrently and summed per window, the Flux union+sum shape done client
// side so each source stays one plain query.
type Entry struct {
	Name         string
	Title        string
	Unit         string
	Bucket       string
	DefaultRange influx.TimeRange
	Fn           influx.AggregateFn
	sources      []source
}

// Measurements that are grid infrastructure rather than devices; excluded
// from the per-device usage breakdown.
var infraMeasurements = []string{
	"MainA_L", "MainA_R",
	"MainB_L", "MainB_R",
	"MainN_L", "MainN_R",
	"grid_l", "grid_lP",
	"grid_r", "grid_rP",
	"ampsB_R", "ampsB_L",
	"ampsA_R", "ampsA_L",
	"ampsN_R", "ampsN_L",
	"AMPS_AHU1", "AMPS_AHU2",
	"Volt_inR",
	"amps_HP",
	"HVAC_net",
	"ampstot_R", "ampstot_L",
	"AHU_PF", "AUX_PF",
	"AC_unitout_PF",
	"amps_HPWH",
}

var entries = map[string]Entry{
	"indoor_temperature": {
		Name:         "indoor_temperature",
		Title:        "Indoor Temperature",
		Unit:         "°C",
		Bucket:       "dchouse",
		DefaultRange: influx.LastWeek,
		sources:      []source{{Measurement: "temperature_thermostat", Field: "value", Location: "thermostat"}},
	},
	"outdoor_temperature": {
		Name:         "outdoor_temperature",
		Title:        "Outdoor Temperature",
		Unit:         "°C",
		Bucket:       "dchouse",
		DefaultRange: influx.LastWeek,
		sources:      []source{{Measurement: "temperature_outdoor", Field: "value"}},
	},
	"indoor_humidity": {
		Name:         "indoor_humidity",
		Title:        "Indoor Humidity",
		Unit:         "%",
		Bucket:       "dchouse",
		DefaultRange: influx.LastWeek,
		sources:      []source{{Measurement: "relative_humidity", Field: "value"}},
	},
	"grid_power": {
		Name:         "grid_power",
		Title:        "Grid Power",
		Unit:         "W",
		Bucket:       "electrical",
		DefaultRange: influx.LastWeek,
		sources:      []source{{Measurement: "total_home_demand"}},
	},
	"heat_pump_temperature": {
		Name:         "heat_pump_temperature",
		Title:        "Heat Pump Temperature",
		Unit:         "°C",
		Bucket:       "dchouse",
		DefaultRange: influx.LastWeek,
		sources:      []source{{Measurement: "temperature", Field: "value", Location: "heat_pump"}},
	},
	"heat_pump_power": {
		Name:         "heat_pump_power",
		Title:        "HVAC Power",
		Unit:         "W",
		Bucket:       "electrical",
		DefaultRange: influx.LastMonth,
		sources: []source{
			{Measurement: "AC_unitout"},
			{Measurement: "AHU_main"},
			{Measurement: "AHU_Aux"},
		},
	},
	"water_heater_temperature": {
		Name:         "water_heater_temperature",
		Title:        "Water Heater Temperature",
		Unit:         "°C",
		Bucket:       "dchouse",
		DefaultRange: influx.LastWeek,
		sources:      []source{{Measurement: "temperature", Field: "value", Location: "water_heater"}},
	},
	"water_heater_power": {
		Name:         "water_heater_power",
		Title:        "Water Heater Power",
		Unit:         "W",
		Bucket:       "electrical",
		DefaultRange: influx.LastMonth,
		sources:      []source{{Measurement: "HPWH"}},
	},
	"device_usage": {
		Name:         "device_usage",
		Title:        "Energy Usage by Device",
		Unit:         "W",
		Bucket:       "electrical",
		DefaultRange: influx.LastMonth,
		sources:      []source{{Exclude: infraMeasurements}},
	},
}

func Get(name string) (Entry, error) {
	entry, isExist := entries[name]
	if !isExist {
		return Entry{}, fmt.Errorf("unknown catalog query [%s]", name)
	}
	return entry, nil
}

func Names() []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (entry *Entry) descriptors(timeRange influx.TimeRange, window string) []influx.QueryDescriptor {
	if timeRange == "" {
		timeRange = entry.DefaultRange
	}

	descs := make([]influx.QueryDescriptor, 0, len(entry.sources))
	for _, src := range entry.sources {
		descs = append(descs, influx.QueryDescriptor{
			Bucket:      entry.Bucket,
			Measurement: src.Measurement,
			Field:       src.Field,
			Location:    src.Location,
			Exclude:     src.Exclude,
			Range:       timeRange,
			Window:      window,
			Fn:          entry.Fn,
		})
	}
	return descs
}

// Run executes a catalog entry. Multi-source entries issue their queries
// concurrently and await every one; a single transport failure fails the
// whole group so callers never see a partial series.
func Run(ctx context.Context, querier Querier, name string, timeRange influx.TimeRange, window string) ([]influx.Point, error) {
	entry, err := Get(name)
	if err != nil {
		return nil, err
	}

	descs := entry.descriptors(timeRange, window)
	if len(descs) == 1 {
		return querier.Query(ctx, descs[0])
	}

	series := make([][]influx.Point, len(descs))
	errs := make([]error, len(descs))

	var wg sync.WaitGroup
	wg.Add(len(descs))
	for i := range descs {
		go func(idx int) {
			defer wg.Done()
			series[idx], errs[idx] = querier.Query(ctx, descs[idx])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return sumByTimestamp(series), nil
}

// sumByTimestamp merges several window-aligned series into one by adding the
// values that share a timestamp. RFC3339 strings sort chronologically.
func sumByTimestamp(series [][]influx.Point) []influx.Point {
	totals := map[string]float64{}
	for _, points := range series {
		for _, point := range points {
			totals[point.Timestamp] += point.Value
		}
	}

	timestamps := make([]string, 0, len(totals))
	for timestamp := range totals {
		timestamps = append(timestamps, timestamp)
	}
	sort.Strings(timestamps)

	merged := make([]influx.Point, 0, len(timestamps))
	for _, timestamp := range timestamps {
		merged = append(merged, influx.Point{Timestamp: timestamp, Value: totals[timestamp]})
	}
	return merged
}
