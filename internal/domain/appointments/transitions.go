package appointments

// transitions es la tabla explícita de transiciones de estado.
// cancelled y completed son terminales.
var transitions = map[Status][]Status{
	StatusScheduled: {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCancelled: {},
	StatusCompleted: {},
}

// CanTransition responde si from -> to es un movimiento legal.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatuses devuelve los destinos legales desde from (copia).
func NextStatuses(from Status) []Status {
	out := make([]Status, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

// ValidateChange valida un cambio de estado contra el estado actual.
func ValidateChange(current Status, change StatusChange) error {
	if !change.Status.IsValid() {
		return ErrInvalidInput
	}
	if change.Attended != nil && change.Status != StatusCompleted {
		return ErrAttendedBeforeCompletion
	}
	if !CanTransition(current, change.Status) {
		return ErrInvalidTransition
	}
	return nil
}
