package deadline

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fleet-service/internal/model"
)

func TestSelectDueScenarios(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	today := NewDate(2024, time.June, 1)

	t.Run("nothing within horizon", func(t *testing.T) {
		far := today.AddDays(60)
		v2 := vehicleWith("Seat", "BB", far, far, far)
		due, err := engine.SelectDue([]model.Vehicle{v2}, today, DefaultHorizonDays)
		if err != nil {
			t.Fatalf("SelectDue: %v", err)
		}
		if len(due) != 0 {
			t.Errorf("got %d entries, want none", len(due))
		}
	})

	t.Run("single iuc event", func(t *testing.T) {
		v3 := vehicleWith("Fiat", "CC", Date{}, today.AddDays(25), Date{})
		due, err := engine.SelectDue([]model.Vehicle{v3}, today, 30)
		if err != nil {
			t.Fatalf("SelectDue: %v", err)
		}
		if len(due) != 1 {
			t.Fatalf("got %d entries, want 1", len(due))
		}
		if due[0].Vehicle.ID != v3.ID {
			t.Errorf("entry is for %s, want %s", due[0].Vehicle.ID, v3.ID)
		}
		if len(due[0].Events) != 1 {
			t.Fatalf("got %d events, want 1", len(due[0].Events))
		}
		ev := due[0].Events[0]
		if ev.Category != CategoryIUC || !ev.Date.Equal(today.AddDays(25)) {
			t.Errorf("event = %s %s", ev.Category, ev.Date)
		}
	})

	t.Run("overdue stays included", func(t *testing.T) {
		v := vehicleWith("Opel", "DD", today.AddDays(-400), Date{}, Date{})
		due, err := engine.SelectDue([]model.Vehicle{v}, today, 0)
		if err != nil {
			t.Fatalf("SelectDue: %v", err)
		}
		if len(due) != 1 || due[0].Events[0].Category != CategoryInspection {
			t.Fatalf("got %+v", due)
		}
	})

	t.Run("horizon is inclusive", func(t *testing.T) {
		v := vehicleWith("Kia", "EE", today.AddDays(30), today.AddDays(31), Date{})
		due, err := engine.SelectDue([]model.Vehicle{v}, today, 30)
		if err != nil {
			t.Fatalf("SelectDue: %v", err)
		}
		if len(due) != 1 || len(due[0].Events) != 1 || due[0].Events[0].Category != CategoryInspection {
			t.Fatalf("got %+v", due)
		}
	})

	t.Run("events keep category order", func(t *testing.T) {
		v := vehicleWith("VW", "FF", today.AddDays(3), today.AddDays(-3), today)
		due, err := engine.SelectDue([]model.Vehicle{v}, today, 30)
		if err != nil {
			t.Fatalf("SelectDue: %v", err)
		}
		if EventCount(due) != 3 {
			t.Fatalf("EventCount = %d, want 3", EventCount(due))
		}
		for i, c := range Categories {
			if due[0].Events[i].Category != c {
				t.Errorf("event %d = %s, want %s", i, due[0].Events[i].Category, c)
			}
		}
	})
}

func TestSelectDueMalformedDate(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	today := NewDate(2024, time.June, 1)
	bad := vehicleWith("Bad", "XX", Date{}, today.AddDays(2), Date{})
	bad.NextInspectionDate = strPtr("2024-13-01")
	good := vehicleWith("Good", "YY", today, Date{}, Date{})

	due, err := engine.SelectDue([]model.Vehicle{bad, good}, today, 30)
	if err != nil {
		t.Fatalf("SelectDue: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("got %d entries, want 2", len(due))
	}
	if len(due[0].Events) != 1 || due[0].Events[0].Category != CategoryIUC {
		t.Errorf("malformed inspection should be skipped, got %+v", due[0].Events)
	}
}

func TestSelectDueRejectsNegativeHorizon(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	_, err := engine.SelectDue(nil, NewDate(2024, time.June, 1), -1)
	if !errors.Is(err, ErrNegativeHorizon) {
		t.Fatalf("err = %v, want ErrNegativeHorizon", err)
	}
}

func TestSelectDueEmptyInput(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	due, err := engine.SelectDue(nil, NewDate(2024, time.June, 1), 30)
	if err != nil {
		t.Fatalf("SelectDue: %v", err)
	}
	if due == nil || len(due) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", due)
	}
}
