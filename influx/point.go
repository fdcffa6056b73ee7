package influx

// Point is one normalized sample from a query response. Timestamp keeps the
// store's RFC3339 form; Value is always a finite number.
type Point struct {
	Timestamp string  `json:"timestamp" yaml:"timestamp"`
	Value     float64 `json:"value" yaml:"value"`
}
