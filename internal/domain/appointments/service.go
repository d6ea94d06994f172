package appointments

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultConfirmationNote es la nota que acompaña a una confirmación hecha por el cliente.
const DefaultConfirmationNote = "Confirmada por el cliente"

// CancelPrompt es la pregunta que se muestra antes de cancelar.
const CancelPrompt = "¿Estás seguro de que deseas cancelar esta cita?"

type Service struct {
	dir Directory
	now func() time.Time
}

func NewService(dir Directory) *Service {
	return &Service{
		dir: dir,
		now: time.Now,
	}
}

func (s *Service) Create(ctx context.Context, in CreateRequest) (Detail, error) {
	if in.ClientID <= 0 || in.PetID <= 0 || in.ServiceID <= 0 {
		return Detail{}, ErrInvalidInput
	}
	if in.VeterinarianUserID != nil && *in.VeterinarianUserID <= 0 {
		return Detail{}, ErrInvalidInput
	}
	if in.Date.IsZero() || !ValidTime(in.Time) {
		return Detail{}, ErrInvalidInput
	}

	in.Date = DateOf(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Reason = strings.TrimSpace(in.Reason)
	in.Symptoms = strings.TrimSpace(in.Symptoms)
	in.PriorDiagnosis = strings.TrimSpace(in.PriorDiagnosis)
	in.AdditionalNotes = strings.TrimSpace(in.AdditionalNotes)
	in.PriorTreatments = compactStrings(in.PriorTreatments)

	return s.dir.Create(ctx, in)
}

// Confirm es ChangeStatus con estado fijo confirmed y la nota por defecto.
func (s *Service) Confirm(ctx context.Context, current Appointment) (Detail, error) {
	return s.ChangeStatus(ctx, current, StatusChange{
		Status: StatusConfirmed,
		Notes:  DefaultConfirmationNote,
	})
}

// Cancel pide confirmación explícita a gate antes de emitir el request.
// Si gate responde que no, devuelve ErrCancelDeclined sin tocar el Directorio.
func (s *Service) Cancel(ctx context.Context, current Appointment, gate ConfirmationGate) error {
	if !current.IsPersisted() {
		return ErrNotPersisted
	}
	if err := ValidateChange(current.Status, StatusChange{Status: StatusCancelled}); err != nil {
		return err
	}
	if gate == nil {
		return ErrCancelDeclined
	}

	ok, err := gate.Confirm(ctx, CancelPrompt)
	if err != nil {
		return fmt.Errorf("cancel confirmation: %w", err)
	}
	if !ok {
		return ErrCancelDeclined
	}

	return s.dir.Cancel(ctx, current.ID)
}

// Reschedule reemplaza fecha/hora. Nunca cambia el estado.
func (s *Service) Reschedule(ctx context.Context, current Appointment, in RescheduleRequest) (Detail, error) {
	if !current.IsPersisted() {
		return Detail{}, ErrNotPersisted
	}
	if current.Status.IsTerminal() {
		return Detail{}, ErrInvalidTransition
	}
	if in.Date == nil && in.Time == nil {
		return Detail{}, ErrInvalidInput
	}
	if in.Date != nil {
		if in.Date.IsZero() {
			return Detail{}, ErrInvalidInput
		}
		d := DateOf(*in.Date)
		in.Date = &d
	}
	if in.Time != nil {
		t := strings.TrimSpace(*in.Time)
		if !ValidTime(t) {
			return Detail{}, ErrInvalidInput
		}
		in.Time = &t
	}
	in.Reason = strings.TrimSpace(in.Reason)

	return s.dir.Reschedule(ctx, current.ID, in)
}

// ChangeStatus es la primitiva genérica de transición; valida contra la tabla
// local antes de hacer el round trip.
func (s *Service) ChangeStatus(ctx context.Context, current Appointment, change StatusChange) (Detail, error) {
	if !current.IsPersisted() {
		return Detail{}, ErrNotPersisted
	}
	if err := ValidateChange(current.Status, change); err != nil {
		return Detail{}, err
	}
	change.Notes = strings.TrimSpace(change.Notes)

	return s.dir.ChangeStatus(ctx, current.ID, change)
}

func (s *Service) ListByClient(ctx context.Context, clientID int64) ([]Detail, error) {
	if clientID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.dir.ListByClient(ctx, clientID)
}

func (s *Service) ListByRange(ctx context.Context, r DateRange, veterinarianID *int64) ([]Detail, error) {
	r, err := s.normalizeRange(r)
	if err != nil {
		return nil, err
	}
	return s.dir.ListByRange(ctx, r, veterinarianID)
}

func (s *Service) Statistics(ctx context.Context, r DateRange) (Statistics, error) {
	r, err := s.normalizeRange(r)
	if err != nil {
		return Statistics{}, err
	}
	return s.dir.Statistics(ctx, r)
}

func (s *Service) Veterinarians(ctx context.Context) ([]Veterinarian, error) {
	return s.dir.ListVeterinarians(ctx)
}

func (s *Service) CheckAvailability(ctx context.Context, q AvailabilityQuery) (Availability, error) {
	if q.Date.IsZero() || !ValidTime(q.Time) {
		return Availability{}, ErrInvalidInput
	}
	q.Date = DateOf(q.Date)
	q.Time = strings.TrimSpace(q.Time)
	return s.dir.CheckAvailability(ctx, q)
}

// DefaultRange devuelve el rango por defecto relativo al reloj del servicio.
func (s *Service) DefaultRange() DateRange {
	return DefaultRange(s.now())
}

// normalizeRange: rango vacío => rango por defecto; fin antes de inicio => inválido.
func (s *Service) normalizeRange(r DateRange) (DateRange, error) {
	if r.Start.IsZero() && r.End.IsZero() {
		return s.DefaultRange(), nil
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return DateRange{}, ErrInvalidInput
	}
	r.Start = DateOf(r.Start)
	r.End = DateOf(r.End)
	if r.End.Before(r.Start) {
		return DateRange{}, ErrInvalidInput
	}
	return r, nil
}

func compactStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
