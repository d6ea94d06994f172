package appointments

import "context"

// Directory es el servicio remoto de citas. Es la autoridad sobre la legalidad
// de cada operación; este paquete solo valida localmente y reenvía la intención.
type Directory interface {
	ListByClient(ctx context.Context, clientID int64) ([]Detail, error)
	ListByRange(ctx context.Context, r DateRange, veterinarianID *int64) ([]Detail, error)
	Statistics(ctx context.Context, r DateRange) (Statistics, error)

	Create(ctx context.Context, in CreateRequest) (Detail, error)
	Reschedule(ctx context.Context, id ID, in RescheduleRequest) (Detail, error)
	ChangeStatus(ctx context.Context, id ID, in StatusChange) (Detail, error)
	// Cancel equivale a ChangeStatus(id, cancelled).
	Cancel(ctx context.Context, id ID) error

	CheckAvailability(ctx context.Context, q AvailabilityQuery) (Availability, error)
	ListVeterinarians(ctx context.Context) ([]Veterinarian, error)
}

// ConfirmationGate es la compuerta bloqueante sí/no antes de cancelar.
type ConfirmationGate interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// GateFunc adapta una función a ConfirmationGate.
type GateFunc func(ctx context.Context, prompt string) (bool, error)

func (f GateFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Answer es una compuerta con respuesta fija (p.ej. el flag "confirmed" de un request HTTP).
type Answer bool

func (a Answer) Confirm(context.Context, string) (bool, error) { return bool(a), nil }
