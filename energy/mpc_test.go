package energy

import (
	"testing"

	"nanogrid/influx"
)

func TestControlConsumptionHeating(t *testing.T) {
	indoor := []influx.Point{
		{Timestamp: "2024-01-01T00:00:00Z", Value: 21},
		{Timestamp: "2024-01-01T01:00:00Z", Value: 21},
	}
	outdoor := []influx.Point{
		{Timestamp: "2024-01-01T00:00:00Z", Value: -40},
		{Timestamp: "2024-01-01T01:00:00Z", Value: 20},
	}

	consumption, err := ControlConsumption(indoor, outdoor, Heating, MPC)
	if err != nil {
		t.Fatalf("ControlConsumption failed: %v", err)
	}
	if len(consumption) != 2 {
		t.Fatalf("expected 2 points, got %d", len(consumption))
	}

	// 61 degree delta keeps the estimate positive.
	want := mpcC1Heating*61 + c2Heating
	if !almostEqual(consumption[0].Value, want) {
		t.Errorf("expected %f, got %f", want, consumption[0].Value)
	}
	// A 1 degree delta drives the raw estimate negative; it must clip to 0.
	if consumption[1].Value != 0 {
		t.Errorf("expected clipped 0, got %f", consumption[1].Value)
	}
}

func TestControlConsumptionJoinsOnTimestamp(t *testing.T) {
	indoor := []influx.Point{
		{Timestamp: "2024-01-01T00:00:00Z", Value: 21},
		{Timestamp: "2024-01-01T01:00:00Z", Value: 21},
	}
	outdoor := []influx.Point{
		{Timestamp: "2024-01-01T01:00:00Z", Value: -10},
	}

	consumption, err := ControlConsumption(indoor, outdoor, Cooling, RBC)
	if err != nil {
		t.Fatalf("ControlConsumption failed: %v", err)
	}
	if len(consumption) != 1 {
		t.Fatalf("expected 1 joined point, got %d", len(consumption))
	}
	if consumption[0].Timestamp != "2024-01-01T01:00:00Z" {
		t.Errorf("unexpected timestamp %q", consumption[0].Timestamp)
	}
}

func TestControlConsumptionUnhandledMode(t *testing.T) {
	if _, err := ControlConsumption(nil, nil, Mode("ventilation"), MPC); err == nil {
		t.Fatal("expected error for unhandled mode")
	}
}

func TestControlSavings(t *testing.T) {
	indoor := []influx.Point{{Timestamp: "2024-01-01T00:00:00Z", Value: 21}}
	outdoor := []influx.Point{{Timestamp: "2024-01-01T00:00:00Z", Value: -40}}

	savings, err := ControlSavings(indoor, outdoor, Heating)
	if err != nil {
		t.Fatalf("ControlSavings failed: %v", err)
	}
	if savings.TotalKWh <= 0 {
		t.Errorf("MPC should beat RBC while heating, got %+v", savings)
	}
	if savings.Percent <= 0 || savings.Percent >= 100 {
		t.Errorf("unexpected percent savings %f", savings.Percent)
	}
}

func TestControlSavingsEmptySeries(t *testing.T) {
	savings, err := ControlSavings(nil, nil, Cooling)
	if err != nil {
		t.Fatalf("ControlSavings failed: %v", err)
	}
	if savings.TotalKWh != 0 || savings.Percent != 0 {
		t.Errorf("expected zero savings for empty input, got %+v", savings)
	}
}
