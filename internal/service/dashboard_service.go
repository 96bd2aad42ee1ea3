package service

import (
	"context"
	"time"

	"fleet-service/internal/deadline"
	"fleet-service/internal/metrics"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

type DashboardService struct {
	store  VehicleStore
	engine *deadline.Engine
	now    func() time.Time
}

func NewDashboardService(store VehicleStore, engine *deadline.Engine) *DashboardService {
	return &DashboardService{
		store:  store,
		engine: engine,
		now:    time.Now,
	}
}

type FleetSummary struct {
	Vehicles    int `json:"vehicles"`
	Active      int `json:"active"`
	Maintenance int `json:"maintenance"`
	Inactive    int `json:"inactive"`
	Alerts      int `json:"alerts"`
	Danger      int `json:"danger"`
	Warning     int `json:"warning"`
	UpToDate    int `json:"up_to_date"`
}

type Dashboard struct {
	Today   deadline.Date    `json:"today"`
	Summary FleetSummary     `json:"summary"`
	Alerts  []deadline.Alert `json:"alerts"`
}

type AlertList struct {
	Items []deadline.Alert `json:"items"`
	Count int              `json:"count"`
}

func (s *DashboardService) Dashboard(ctx context.Context) (*Dashboard, error) {
	vehicles, err := s.store.List(ctx, repository.VehicleFilter{})
	if err != nil {
		return nil, err
	}
	today := deadline.Today(s.now())
	alerts := s.aggregate(vehicles, today)

	summary := FleetSummary{Vehicles: len(vehicles), Alerts: len(alerts)}
	for i := range vehicles {
		v := &vehicles[i]
		switch v.Status {
		case model.VehicleStatusActive:
			summary.Active++
		case model.VehicleStatusMaintenance:
			summary.Maintenance++
		case model.VehicleStatusInactive:
			summary.Inactive++
		}
		if overall(s.engine.Statuses(v, today)) == deadline.StatusOK {
			summary.UpToDate++
		}
	}
	for _, a := range alerts {
		if a.Severity == deadline.SeverityDanger {
			summary.Danger++
		} else {
			summary.Warning++
		}
	}

	return &Dashboard{Today: today, Summary: summary, Alerts: alerts}, nil
}

// Alerts returns the ordered alert feed with its badge count.
func (s *DashboardService) Alerts(ctx context.Context) (*AlertList, error) {
	vehicles, err := s.store.List(ctx, repository.VehicleFilter{})
	if err != nil {
		return nil, err
	}
	alerts := s.aggregate(vehicles, deadline.Today(s.now()))
	return &AlertList{Items: alerts, Count: len(alerts)}, nil
}

func (s *DashboardService) aggregate(vehicles []model.Vehicle, today deadline.Date) []deadline.Alert {
	alerts := s.engine.Aggregate(vehicles, today)

	var danger, warning float64
	for _, a := range alerts {
		if a.Severity == deadline.SeverityDanger {
			danger++
		} else {
			warning++
		}
	}
	metrics.ActiveAlerts.WithLabelValues(string(deadline.SeverityDanger)).Set(danger)
	metrics.ActiveAlerts.WithLabelValues(string(deadline.SeverityWarning)).Set(warning)
	return alerts
}

func overall(statuses map[deadline.Category]deadline.Status) deadline.Status {
	all := make([]deadline.Status, 0, len(statuses))
	for _, st := range statuses {
		all = append(all, st)
	}
	return deadline.Worst(all...)
}
