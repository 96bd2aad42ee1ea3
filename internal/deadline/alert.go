package deadline

import (
	"fmt"

	"fleet-service/internal/model"
)

type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
)

type Alert struct {
	ID       string             `json:"id"`
	Vehicle  model.VehicleBrief `json:"vehicle"`
	Category Category           `json:"category"`
	Severity Severity           `json:"severity"`
	Title    string             `json:"title"`
	Message  string             `json:"message"`
	Icon     string             `json:"icon"`
	Date     Date               `json:"date"`
}

// Aggregate emits one alert per warning or expired deadline. All danger
// alerts come before all warning alerts; inside each band the order is
// vehicle order, then Categories order.
func (e *Engine) Aggregate(vehicles []model.Vehicle, today Date) []Alert {
	var danger, warning []Alert
	for i := range vehicles {
		v := &vehicles[i]
		for _, c := range Categories {
			due := e.Due(v, c)
			var severity Severity
			switch Classify(due, today) {
			case StatusExpired:
				severity = SeverityDanger
			case StatusWarning:
				severity = SeverityWarning
			default:
				continue
			}
			alert := newAlert(v, c, severity, due)
			if severity == SeverityDanger {
				danger = append(danger, alert)
			} else {
				warning = append(warning, alert)
			}
		}
	}

	alerts := make([]Alert, 0, len(danger)+len(warning))
	alerts = append(alerts, danger...)
	return append(alerts, warning...)
}

func newAlert(v *model.Vehicle, c Category, severity Severity, due Date) Alert {
	verb, tail := "vence em", "."
	if severity == SeverityDanger {
		verb, tail = "expirou em", ". Resolva imediatamente."
	}
	return Alert{
		ID:       fmt.Sprintf("%s-%s", v.ID, c),
		Vehicle:  v.Brief(),
		Category: c,
		Severity: severity,
		Title:    c.title(severity),
		Message: fmt.Sprintf("%s do veículo %s %s (%s) %s %s%s",
			c.subject(), v.Make, v.Model, v.Plate, verb, due.Display(), tail),
		Icon: c.icon(severity),
		Date: due,
	}
}
