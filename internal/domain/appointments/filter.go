package appointments

import (
	"strings"
	"time"
)

// FilterAll es el selector centinela que devuelve la colección completa.
const FilterAll = "all"

// filterAllLegacy es el centinela que usaba la UI original ("todas").
const filterAllLegacy = "todas"

// DefaultRangeDays es el ancho del rango por defecto (hoy .. hoy+7).
const DefaultRangeDays = 7

// FilterByStatus devuelve la subsecuencia con el estado pedido, en el orden
// original. El selector acepta el código (confirmed) o la etiqueta (confirmada).
// Con FilterAll devuelve una copia de toda la colección. Nunca muta items.
func FilterByStatus(items []Detail, selector string) []Detail {
	if isFilterAll(selector) {
		out := make([]Detail, len(items))
		copy(out, items)
		return out
	}

	out := make([]Detail, 0, len(items))
	st, ok := ParseStatusLabel(selector)
	if !ok {
		return out
	}
	for _, it := range items {
		if it.Status == st {
			out = append(out, it)
		}
	}
	return out
}

// ValidFilter indica si selector es FilterAll o un estado conocido.
func ValidFilter(selector string) bool {
	if isFilterAll(selector) {
		return true
	}
	_, ok := ParseStatusLabel(selector)
	return ok
}

func isFilterAll(selector string) bool {
	selector = strings.ToLower(strings.TrimSpace(selector))
	return selector == "" || selector == FilterAll || selector == filterAllLegacy
}

// ComputeStatistics cuenta por estado. Total == len(items) siempre.
func ComputeStatistics(items []Detail) Statistics {
	st := Statistics{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case StatusScheduled:
			st.Scheduled++
		case StatusConfirmed:
			st.Confirmed++
		case StatusCancelled:
			st.Cancelled++
		case StatusCompleted:
			st.Completed++
		}
	}
	return st
}

// DefaultRange: hoy .. hoy+7 (inclusive), como fechas de calendario.
func DefaultRange(now time.Time) DateRange {
	today := DateOf(now)
	return DateRange{
		Start: today,
		End:   today.AddDate(0, 0, DefaultRangeDays),
	}
}
