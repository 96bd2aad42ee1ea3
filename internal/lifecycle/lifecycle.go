package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/looplab/fsm"

	"fleet-service/internal/model"
)

const (
	EventStartMaintenance  = "start_maintenance"
	EventFinishMaintenance = "finish_maintenance"
	EventDeactivate        = "deactivate"
	EventReactivate        = "reactivate"
)

var ErrInvalidTransition = errors.New("invalid lifecycle transition")

var events = fsm.Events{
	{
		Name: EventStartMaintenance,
		Src:  []string{string(model.VehicleStatusActive)},
		Dst:  string(model.VehicleStatusMaintenance),
	},
	{
		Name: EventFinishMaintenance,
		Src:  []string{string(model.VehicleStatusMaintenance)},
		Dst:  string(model.VehicleStatusActive),
	},
	{
		Name: EventDeactivate,
		Src:  []string{string(model.VehicleStatusActive), string(model.VehicleStatusMaintenance)},
		Dst:  string(model.VehicleStatusInactive),
	},
	{
		Name: EventReactivate,
		Src:  []string{string(model.VehicleStatusInactive)},
		Dst:  string(model.VehicleStatusActive),
	},
}

func newMachine(current model.VehicleStatus) *fsm.FSM {
	return fsm.NewFSM(string(current), events, fsm.Callbacks{})
}

// Transition applies event to a vehicle in state current and returns the new
// state.
func Transition(ctx context.Context, current model.VehicleStatus, event string) (model.VehicleStatus, error) {
	if !current.Valid() {
		return "", fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, current)
	}
	machine := newMachine(current)
	if err := machine.Event(ctx, event); err != nil {
		var invalid fsm.InvalidEventError
		var unknown fsm.UnknownEventError
		if errors.As(err, &invalid) || errors.As(err, &unknown) {
			return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, current)
		}
		return "", err
	}
	return model.VehicleStatus(machine.Current()), nil
}

// Available lists the events allowed from current, sorted.
func Available(current model.VehicleStatus) []string {
	if !current.Valid() {
		return nil
	}
	out := newMachine(current).AvailableTransitions()
	sort.Strings(out)
	return out
}
