package deadline

import "fmt"

type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusExpired Status = "expired"
)

// WarningWindowDays is the inclusive look-ahead in which a deadline is a warning.
const WarningWindowDays = 30

// Classify returns the urgency of a deadline relative to today.
// An absent deadline is ok. Due today is a warning, yesterday is expired,
// and the first ok day is today+31.
func Classify(due, today Date) Status {
	if due.IsZero() {
		return StatusOK
	}
	diff := today.DaysUntil(due)
	switch {
	case diff < 0:
		return StatusExpired
	case diff <= WarningWindowDays:
		return StatusWarning
	default:
		return StatusOK
	}
}

func (s Status) rank() int {
	switch s {
	case StatusExpired:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// Worst returns the most urgent of the given statuses, ok when empty.
func Worst(statuses ...Status) Status {
	worst := StatusOK
	for _, s := range statuses {
		if s.rank() > worst.rank() {
			worst = s
		}
	}
	return worst
}

// DaysMessage is the human readable distance to a deadline.
func DaysMessage(due, today Date) string {
	if due.IsZero() {
		return "N/A"
	}
	diff := today.DaysUntil(due)
	switch {
	case diff < 0:
		return fmt.Sprintf("Expirou há %d dias", -diff)
	case diff == 0:
		return "Vence hoje"
	default:
		return fmt.Sprintf("Vence em %d dias", diff)
	}
}
