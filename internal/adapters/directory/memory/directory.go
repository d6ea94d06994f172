package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vet-appointments/internal/domain/appointments"
)

const (
	msgSlotTaken          = "El horario seleccionado no está disponible"
	msgSlotFree           = "Horario disponible"
	msgTransitionRejected = "Transición de estado no permitida"
	msgAttended           = "Solo se puede registrar asistencia al completar la cita"
	msgUnknownVet         = "El veterinario seleccionado no existe"
)

// DefaultVeterinarians es el catálogo de desarrollo.
var DefaultVeterinarians = []appointments.Veterinarian{
	{UserID: 2, Name: "Dr. Juan Pérez", Specialty: "Medicina General"},
	{UserID: 3, Name: "Dra. María García", Specialty: "Cirugía"},
	{UserID: 4, Name: "Dr. Carlos López", Specialty: "Dermatología"},
	{UserID: 5, Name: "Dra. Ana Martínez", Specialty: "Cardiología"},
}

// Directory es un Directorio de citas en memoria (dev/tests).
// Aplica la misma tabla de transiciones que el servicio remoto.
type Directory struct {
	mu   sync.RWMutex
	seq  int64
	byID map[appointments.ID]appointments.Detail
	vets []appointments.Veterinarian
	now  func() time.Time
}

var _ appointments.Directory = (*Directory)(nil)

func NewDirectory(seed ...appointments.Detail) *Directory {
	d := &Directory{
		byID: make(map[appointments.ID]appointments.Detail),
		vets: append([]appointments.Veterinarian(nil), DefaultVeterinarians...),
		now:  time.Now,
	}
	for _, it := range seed {
		if it.ID > appointments.ID(d.seq) {
			d.seq = int64(it.ID)
		}
	}
	for _, it := range seed {
		if !it.IsPersisted() {
			d.seq++
			it.ID = appointments.ID(d.seq)
		}
		if it.Status == "" {
			it.Status = appointments.StatusScheduled
		}
		d.byID[it.ID] = it
	}
	return d
}

func (d *Directory) ListByClient(ctx context.Context, clientID int64) ([]appointments.Detail, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]appointments.Detail, 0)
	for _, it := range d.byID {
		if it.ClientID == clientID {
			out = append(out, it)
		}
	}
	sortBySlot(out)
	return out, nil
}

func (d *Directory) ListByRange(ctx context.Context, r appointments.DateRange, veterinarianID *int64) ([]appointments.Detail, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]appointments.Detail, 0)
	for _, it := range d.byID {
		if !r.Contains(it.Date) {
			continue
		}
		if veterinarianID != nil && (it.VeterinarianUserID == nil || *it.VeterinarianUserID != *veterinarianID) {
			continue
		}
		out = append(out, it)
	}
	sortBySlot(out)
	return out, nil
}

func (d *Directory) Statistics(ctx context.Context, r appointments.DateRange) (appointments.Statistics, error) {
	items, _ := d.ListByRange(ctx, r, nil)
	return appointments.ComputeStatistics(items), nil
}

func (d *Directory) Create(ctx context.Context, in appointments.CreateRequest) (appointments.Detail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	vetName, ok := d.vetName(in.VeterinarianUserID)
	if !ok {
		return appointments.Detail{}, &appointments.RejectionError{Op: "create", Message: msgUnknownVet}
	}
	if d.slotTaken(0, in.Date, in.Time, in.VeterinarianUserID) {
		return appointments.Detail{}, &appointments.RejectionError{Op: "create", Message: msgSlotTaken}
	}

	now := d.now().UTC()
	d.seq++
	it := appointments.Detail{
		Appointment: appointments.Appointment{
			ID:                 appointments.ID(d.seq),
			ClientID:           in.ClientID,
			PetID:              in.PetID,
			ServiceID:          in.ServiceID,
			VeterinarianUserID: in.VeterinarianUserID,
			Date:               appointments.DateOf(in.Date),
			Time:               in.Time,
			Reason:             in.Reason,
			Symptoms:           in.Symptoms,
			PriorDiagnosis:     in.PriorDiagnosis,
			AdditionalNotes:    in.AdditionalNotes,
			PriorTreatments:    append([]string(nil), in.PriorTreatments...),
			Status:             appointments.StatusScheduled,
			CreatedAt:          &now,
			UpdatedAt:          &now,
		},
		VeterinarianName: vetName,
	}
	d.byID[it.ID] = it
	return it, nil
}

func (d *Directory) Reschedule(ctx context.Context, id appointments.ID, in appointments.RescheduleRequest) (appointments.Detail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	it, ok := d.byID[id]
	if !ok {
		return appointments.Detail{}, appointments.ErrNotFound
	}
	if it.Status.IsTerminal() {
		return appointments.Detail{}, &appointments.RejectionError{Op: "reschedule", Message: msgTransitionRejected}
	}

	date, hour, vet := it.Date, it.Time, it.VeterinarianUserID
	if in.Date != nil {
		date = appointments.DateOf(*in.Date)
	}
	if in.Time != nil {
		hour = *in.Time
	}
	if in.VeterinarianUserID != nil {
		vet = in.VeterinarianUserID
	}
	vetName, ok := d.vetName(vet)
	if !ok {
		return appointments.Detail{}, &appointments.RejectionError{Op: "reschedule", Message: msgUnknownVet}
	}
	if d.slotTaken(id, date, hour, vet) {
		return appointments.Detail{}, &appointments.RejectionError{Op: "reschedule", Message: msgSlotTaken}
	}

	now := d.now().UTC()
	it.Date, it.Time, it.VeterinarianUserID = date, hour, vet
	if vetName != "" {
		it.VeterinarianName = vetName
	}
	if in.Reason != "" {
		it.AdditionalNotes = in.Reason
	}
	it.UpdatedAt = &now
	d.byID[id] = it
	return it, nil
}

func (d *Directory) ChangeStatus(ctx context.Context, id appointments.ID, in appointments.StatusChange) (appointments.Detail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	it, ok := d.byID[id]
	if !ok {
		return appointments.Detail{}, appointments.ErrNotFound
	}
	if !appointments.CanTransition(it.Status, in.Status) {
		return appointments.Detail{}, &appointments.RejectionError{Op: "change_status", Message: msgTransitionRejected}
	}
	if in.Attended != nil && in.Status != appointments.StatusCompleted {
		return appointments.Detail{}, &appointments.RejectionError{Op: "change_status", Message: msgAttended}
	}

	now := d.now().UTC()
	it.Status = in.Status
	if in.Attended != nil {
		v := *in.Attended
		it.Attended = &v
	}
	if in.Notes != "" {
		it.AdditionalNotes = in.Notes
	}
	it.UpdatedAt = &now
	d.byID[id] = it
	return it, nil
}

func (d *Directory) Cancel(ctx context.Context, id appointments.ID) error {
	_, err := d.ChangeStatus(ctx, id, appointments.StatusChange{Status: appointments.StatusCancelled})
	return err
}

func (d *Directory) CheckAvailability(ctx context.Context, q appointments.AvailabilityQuery) (appointments.Availability, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.slotTaken(0, q.Date, q.Time, q.VeterinarianUserID) {
		return appointments.Availability{Available: false, Message: msgSlotTaken}, nil
	}
	return appointments.Availability{Available: true, Message: msgSlotFree}, nil
}

func (d *Directory) ListVeterinarians(ctx context.Context) ([]appointments.Veterinarian, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]appointments.Veterinarian(nil), d.vets...), nil
}

// slotTaken: misma fecha y hora, no cancelada y (si hay veterinario) mismo veterinario.
// Requiere lock tomado.
func (d *Directory) slotTaken(self appointments.ID, date time.Time, hour string, vet *int64) bool {
	key := appointments.DateOf(date)
	for id, it := range d.byID {
		if id == self || it.Status == appointments.StatusCancelled {
			continue
		}
		if !it.Date.Equal(key) || it.Time != hour {
			continue
		}
		if vet == nil || it.VeterinarianUserID == nil || *it.VeterinarianUserID == *vet {
			return true
		}
	}
	return false
}

// vetName: nil => sin asignar (ok). Requiere lock tomado.
func (d *Directory) vetName(id *int64) (string, bool) {
	if id == nil {
		return "", true
	}
	for _, v := range d.vets {
		if v.UserID == *id {
			return v.Name, true
		}
	}
	return "", false
}

// Orden estable por fecha y hora (solo para consistencia en dev).
func sortBySlot(items []appointments.Detail) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		if items[i].Time != items[j].Time {
			return items[i].Time < items[j].Time
		}
		return items[i].ID < items[j].ID
	})
}
