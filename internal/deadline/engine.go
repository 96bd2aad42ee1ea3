package deadline

import (
	"github.com/rs/zerolog"

	"fleet-service/internal/model"
)

// Engine derives deadline views from vehicle snapshots. It holds no mutable
// state and is safe for concurrent use; "today" is always an argument.
type Engine struct {
	log zerolog.Logger
}

func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log}
}

// Due returns the parsed deadline of category c, or the zero Date when the
// field is absent or malformed. Malformed values are logged and skipped.
func (e *Engine) Due(v *model.Vehicle, c Category) Date {
	raw := rawDeadline(v, c)
	if raw == nil || *raw == "" {
		return Date{}
	}
	d, err := ParseDate(*raw)
	if err != nil {
		e.log.Warn().
			Str("vehicle_id", v.ID.String()).
			Str("category", string(c)).
			Str("value", *raw).
			Msg("skipping unparseable deadline")
		return Date{}
	}
	return d
}

// Statuses classifies every date-bearing deadline of v.
func (e *Engine) Statuses(v *model.Vehicle, today Date) map[Category]Status {
	out := make(map[Category]Status, len(Categories))
	for _, c := range Categories {
		out[c] = Classify(e.Due(v, c), today)
	}
	return out
}

func rawDeadline(v *model.Vehicle, c Category) *string {
	switch c {
	case CategoryInspection:
		return v.NextInspectionDate
	case CategoryIUC:
		return v.NextIucDate
	case CategoryAnnualReview:
		return v.NextAnnualReviewDate
	default:
		return nil
	}
}
