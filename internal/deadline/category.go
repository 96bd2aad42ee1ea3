package deadline

import "fmt"

type Category string

const (
	CategoryInspection   Category = "inspection"
	CategoryIUC          Category = "iuc"
	CategoryAnnualReview Category = "annual_review"
)

// Categories lists the date-bearing deadlines in check order.
var Categories = []Category{
	CategoryInspection,
	CategoryIUC,
	CategoryAnnualReview,
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown deadline category %q", s)
}

// Label is the digest label of the category.
func (c Category) Label() string {
	switch c {
	case CategoryInspection:
		return "Inspeção Periódica (IPO)"
	case CategoryIUC:
		return "Pagamento de Selo (IUC)"
	case CategoryAnnualReview:
		return "Revisão Anual"
	default:
		return string(c)
	}
}

// subject is the grammatical subject used in alert messages.
func (c Category) subject() string {
	switch c {
	case CategoryInspection:
		return "A inspeção"
	case CategoryIUC:
		return "O IUC"
	default:
		return "A revisão anual"
	}
}

func (c Category) title(s Severity) string {
	expired := s == SeverityDanger
	switch c {
	case CategoryInspection:
		if expired {
			return "Inspeção Expirada"
		}
		return "Inspeção Brevemente"
	case CategoryIUC:
		if expired {
			return "Selo (IUC) em Atraso"
		}
		return "Pagamento IUC Brevemente"
	default:
		if expired {
			return "Revisão Anual Expirada"
		}
		return "Revisão Anual Brevemente"
	}
}

func (c Category) icon(s Severity) string {
	expired := s == SeverityDanger
	switch c {
	case CategoryInspection:
		if expired {
			return "gpp_maybe"
		}
		return "warning"
	case CategoryIUC:
		if expired {
			return "receipt_long"
		}
		return "payments"
	default:
		return "calendar_clock"
	}
}
