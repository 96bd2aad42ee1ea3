package mailer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/config"
	"fleet-service/internal/deadline"
	"fleet-service/internal/model"
)

func sampleDigest() Digest {
	today := deadline.NewDate(2025, time.January, 15)
	vehicles := []deadline.DueVehicle{
		{
			Vehicle: model.VehicleBrief{ID: uuid.New(), Make: "Renault", Model: "Clio", Plate: "AA-00-BB"},
			Events: []deadline.DueEvent{
				{Category: deadline.CategoryInspection, Date: deadline.NewDate(2025, time.January, 10)},
				{Category: deadline.CategoryIUC, Date: deadline.NewDate(2025, time.February, 1)},
			},
		},
		{
			Vehicle: model.VehicleBrief{ID: uuid.New(), Make: "Fiat", Model: "<Punto>", Plate: "CC-11-DD"},
			Events: []deadline.DueEvent{
				{Category: deadline.CategoryAnnualReview, Date: deadline.NewDate(2025, time.February, 14)},
			},
		},
	}
	return NewDigest(today, 30, vehicles)
}

func TestNewDigest(t *testing.T) {
	d := sampleDigest()
	if d.EventCount != 3 {
		t.Errorf("EventCount = %d, want 3", d.EventCount)
	}
	if got := d.TargetDate.String(); got != "2025-02-14" {
		t.Errorf("TargetDate = %s, want 2025-02-14", got)
	}
	if got, want := d.Subject(), "⚠️ Alerta AutoGest: 3 eventos próximos ou em atraso"; got != want {
		t.Errorf("Subject = %q, want %q", got, want)
	}
}

func TestRender(t *testing.T) {
	body, err := Render(sampleDigest())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	wantLines := []string{
		"<li>🚗 <strong>Renault Clio</strong> (AA-00-BB): Inspeção Periódica (IPO) em 2025-01-10</li>",
		"<li>📄 <strong>Renault Clio</strong> (AA-00-BB): Pagamento de Selo (IUC) em 2025-02-01</li>",
		"(até <strong>2025-02-14</strong>)",
		"próximos 30 dias",
	}
	for _, want := range wantLines {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q\n%s", want, body)
		}
	}

	if strings.Contains(body, "<Punto>") {
		t.Error("vehicle fields must be HTML escaped")
	}
	if !strings.Contains(body, "🔧 <strong>Fiat &lt;Punto&gt;</strong>") {
		t.Errorf("annual review line not rendered:\n%s", body)
	}

	if strings.Index(body, "IPO") > strings.Index(body, "IUC") {
		t.Error("events must keep category order")
	}
}

func TestRenderEmpty(t *testing.T) {
	body, err := Render(NewDigest(deadline.NewDate(2025, time.January, 15), 0, nil))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(body, "<li>") {
		t.Errorf("empty digest rendered items:\n%s", body)
	}
}

func TestNewSMTPMailerRecipients(t *testing.T) {
	tests := []struct {
		name    string
		to      string
		want    int
		wantErr error
	}{
		{name: "single", to: "ops@example.com", want: 1},
		{name: "list", to: "ops@example.com, fleet@example.com,", want: 2},
		{name: "empty", to: " ", wantErr: ErrNoRecipients},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewSMTPMailer(config.MailConfig{To: tt.to, Username: "bot@example.com"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSMTPMailer: %v", err)
			}
			if len(m.recipients) != tt.want {
				t.Errorf("recipients = %v, want %d", m.recipients, tt.want)
			}
		})
	}
}
