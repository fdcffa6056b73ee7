package energy

import (
	"fmt"

	"nanogrid/influx"
)

// Thermostat control models. The MPC controller is compared against the
// rule-based controller it replaced: E = C1 * (T_indoor - T_outdoor) + C2,
// negative estimates clipped to zero.
const (
	rbcC1Heating = 0.1958333333
	mpcC1Heating = 0.1595833333
	c2Heating    = -8

	rbcC1Cooling = 0.1266666667
	mpcC1Cooling = 0.1091666667
	c2Cooling    = 6.4
)

type Mode string

const (
	Heating Mode = "heating"
	Cooling Mode = "cooling"
)

type Controller string

const (
	MPC Controller = "mpc"
	RBC Controller = "rbc"
)

func coefficients(mode Mode, controller Controller) (float64, float64, error) {
	switch mode {
	case Heating:
		if controller == MPC {
			return mpcC1Heating, c2Heating, nil
		}
		return rbcC1Heating, c2Heating, nil
	case Cooling:
		if controller == MPC {
			return mpcC1Cooling, c2Cooling, nil
		}
		return rbcC1Cooling, c2Cooling, nil
	}
	return 0, 0, fmt.Errorf("unhandled mode [%s]", mode)
}

// ControlConsumption estimates the energy a controller spends holding the
// indoor temperature against the outdoor one. Series are joined on
// timestamp; samples missing from either side contribute nothing.
func ControlConsumption(indoor, outdoor []influx.Point, mode Mode, controller Controller) ([]influx.Point, error) {
	c1, c2, err := coefficients(mode, controller)
	if err != nil {
		return nil, err
	}

	outdoorByTime := make(map[string]float64, len(outdoor))
	for _, point := range outdoor {
		outdoorByTime[point.Timestamp] = point.Value
	}

	consumption := make([]influx.Point, 0, len(indoor))
	for _, point := range indoor {
		outdoorTemp, isExist := outdoorByTime[point.Timestamp]
		if !isExist {
			continue
		}
		estimate := c1*(point.Value-outdoorTemp) + c2
		if estimate < 0 {
			estimate = 0
		}
		consumption = append(consumption, influx.Point{Timestamp: point.Timestamp, Value: estimate})
	}
	return consumption, nil
}

// Savings is the total and relative reduction of MPC against RBC.
type Savings struct {
	TotalKWh float64 `json:"total_kwh"`
	Percent  float64 `json:"percent"`
}

// ControlSavings compares the two controllers over the same temperature data.
func ControlSavings(indoor, outdoor []influx.Point, mode Mode) (Savings, error) {
	mpcSeries, err := ControlConsumption(indoor, outdoor, mode, MPC)
	if err != nil {
		return Savings{}, err
	}
	rbcSeries, err := ControlConsumption(indoor, outdoor, mode, RBC)
	if err != nil {
		return Savings{}, err
	}

	mpcTotal := Total(mpcSeries)
	rbcTotal := Total(rbcSeries)

	savings := Savings{TotalKWh: rbcTotal - mpcTotal}
	if rbcTotal > 0 {
		savings.Percent = savings.TotalKWh / rbcTotal * 100
	}
	return savings, nil
}
