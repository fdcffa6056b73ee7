package energy

import (
	"time"

	"github.com/sirupsen/logrus"

	"nanogrid/influx"
)

// Month-based consumption rates in kWh per hour. The base rate covers pure
// electric plus non-heating gas usage; the winter months carry additional
// heating gas on top.
const (
	BaseRateElectric = 2.08
	BaseRateGas      = 0.34
	BaseRate         = BaseRateElectric + BaseRateGas
)

var heatingRates = map[time.Month]float64{
	time.November: 2.43,
	time.December: 4.75,
	time.January:  6.67,
	time.February: 6.76,
	time.March:    4.96,
}

const (
	ElectricRate = 0.15   // $/kWh
	GasRate      = 0.0226 // $/kWh
)

// HourlyRate returns the modeled consumption rate for a month.
func HourlyRate(month time.Month) float64 {
	return BaseRate + heatingRates[month]
}

// EstimateSeries maps a sampled series onto modeled kWh consumption, one
// output point per input timestamp. Points whose timestamp does not parse
// are dropped, matching the client's tolerance for noisy feeds.
func EstimateSeries(points []influx.Point) []influx.Point {
	estimated := make([]influx.Point, 0, len(points))
	for _, point := range points {
		timestamp, err := time.Parse(time.RFC3339, point.Timestamp)
		if err != nil {
			logrus.Errorf("Failed to parse timestamp [%s], err [%s]", point.Timestamp, err)
			continue
		}
		estimated = append(estimated, influx.Point{
			Timestamp: point.Timestamp,
			Value:     HourlyRate(timestamp.Month()),
		})
	}
	return estimated
}

// Total sums a series.
func Total(points []influx.Point) float64 {
	var total float64
	for _, point := range points {
		total += point.Value
	}
	return total
}

// TotalKWh converts summed hourly-mean watt readings into kWh.
func TotalKWh(points []influx.Point) float64 {
	return Total(points) / 1000
}

// PredictedBill prices grid consumption at the electric rate.
func PredictedBill(points []influx.Point) float64 {
	return TotalKWh(points) * ElectricRate
}

// Cost prices an energy figure at an arbitrary rate.
func Cost(kwh, rate float64) float64 {
	return kwh * rate
}
