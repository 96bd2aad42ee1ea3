package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"fleet-service/internal/deadline"
)

// Digest is one daily notification: every event due on or before TargetDate.
type Digest struct {
	Today       deadline.Date         `json:"today"`
	TargetDate  deadline.Date         `json:"target_date"`
	HorizonDays int                   `json:"horizon_days"`
	EventCount  int                   `json:"event_count"`
	Vehicles    []deadline.DueVehicle `json:"vehicles"`
}

func NewDigest(today deadline.Date, horizonDays int, vehicles []deadline.DueVehicle) Digest {
	return Digest{
		Today:       today,
		TargetDate:  today.AddDays(horizonDays),
		HorizonDays: horizonDays,
		EventCount:  deadline.EventCount(vehicles),
		Vehicles:    vehicles,
	}
}

func (d Digest) Subject() string {
	return fmt.Sprintf("⚠️ Alerta AutoGest: %d eventos próximos ou em atraso", d.EventCount)
}

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"emoji": emoji,
}).Parse(`<h2>⚠️ Alertas de Frota - AutoGest</h2>
<p>Os seguintes eventos estão pendentes ou vencem nos próximos {{.HorizonDays}} dias (até <strong>{{.TargetDate}}</strong>):</p>
<ul>
{{- range $v := .Vehicles}}{{range $e := $v.Events}}
<li>{{emoji $e.Category}} <strong>{{$v.Vehicle.Make}} {{$v.Vehicle.Model}}</strong> ({{$v.Vehicle.Plate}}): {{$e.Category.Label}} em {{$e.Date}}</li>
{{- end}}{{end}}
</ul>
<p>Aceda à aplicação para gerir estes alertas.</p>
`))

// Render produces the HTML body of the digest.
func Render(d Digest) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), nil
}

func emoji(c deadline.Category) string {
	switch c {
	case deadline.CategoryInspection:
		return "🚗"
	case deadline.CategoryIUC:
		return "📄"
	case deadline.CategoryAnnualReview:
		return "🔧"
	default:
		return "•"
	}
}
