package deadline

import (
	"errors"

	"fleet-service/internal/model"
)

const DefaultHorizonDays = 30

var ErrNegativeHorizon = errors.New("horizon days must not be negative")

type DueEvent struct {
	Category Category `json:"category"`
	Date     Date     `json:"date"`
}

type DueVehicle struct {
	Vehicle model.VehicleBrief `json:"vehicle"`
	Events  []DueEvent         `json:"events"`
}

// SelectDue picks every deadline on or before today+horizonDays. Overdue
// deadlines are always included, so an unresolved item appears in every
// digest until it is updated. Vehicles with nothing due are left out.
func (e *Engine) SelectDue(vehicles []model.Vehicle, today Date, horizonDays int) ([]DueVehicle, error) {
	if horizonDays < 0 {
		return nil, ErrNegativeHorizon
	}
	target := today.AddDays(horizonDays)

	result := make([]DueVehicle, 0)
	for i := range vehicles {
		v := &vehicles[i]
		var events []DueEvent
		for _, c := range Categories {
			due := e.Due(v, c)
			if due.IsZero() || due.After(target) {
				continue
			}
			events = append(events, DueEvent{Category: c, Date: due})
		}
		if len(events) == 0 {
			continue
		}
		result = append(result, DueVehicle{Vehicle: v.Brief(), Events: events})
	}
	return result, nil
}

// EventCount is the total number of events across vehicles.
func EventCount(due []DueVehicle) int {
	n := 0
	for _, d := range due {
		n += len(d.Events)
	}
	return n
}
