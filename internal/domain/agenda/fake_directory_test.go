package agenda

import (
	"context"
	"sync"
	"time"

	"vet-appointments/internal/domain/appointments"
)

// -------------------------
// Test directory (in-memory)
// -------------------------

type fakeDirectory struct {
	mu sync.Mutex

	items   []appointments.Detail
	listErr error
	statErr error
	mutErr  error

	// onList, si no es nil, corre antes de responder un listado.
	onList func(call int)

	listCalls   int
	mutations   []string
	lastChange  appointments.StatusChange
	lastResched appointments.RescheduleRequest
}

func (f *fakeDirectory) list() ([]appointments.Detail, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	hook := f.onList
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]appointments.Detail, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeDirectory) ListByClient(ctx context.Context, clientID int64) ([]appointments.Detail, error) {
	return f.list()
}

func (f *fakeDirectory) ListByRange(ctx context.Context, r appointments.DateRange, vet *int64) ([]appointments.Detail, error) {
	return f.list()
}

func (f *fakeDirectory) Statistics(ctx context.Context, r appointments.DateRange) (appointments.Statistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statErr != nil {
		return appointments.Statistics{}, f.statErr
	}
	return appointments.ComputeStatistics(f.items), nil
}

func (f *fakeDirectory) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations = append(f.mutations, op)
	return f.mutErr
}

func (f *fakeDirectory) Create(ctx context.Context, in appointments.CreateRequest) (appointments.Detail, error) {
	if err := f.record("create"); err != nil {
		return appointments.Detail{}, err
	}
	d := appointments.Detail{Appointment: appointments.Appointment{
		ID: 50, ClientID: in.ClientID, PetID: in.PetID, ServiceID: in.ServiceID,
		Date: in.Date, Time: in.Time, Status: appointments.StatusScheduled,
	}}
	f.mu.Lock()
	f.items = append(f.items, d)
	f.mu.Unlock()
	return d, nil
}

func (f *fakeDirectory) Reschedule(ctx context.Context, id appointments.ID, in appointments.RescheduleRequest) (appointments.Detail, error) {
	if err := f.record("reschedule"); err != nil {
		return appointments.Detail{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastResched = in
	return f.setLocked(id, func(d *appointments.Detail) {
		d.Date = *in.Date
		d.Time = *in.Time
	}), nil
}

func (f *fakeDirectory) ChangeStatus(ctx context.Context, id appointments.ID, in appointments.StatusChange) (appointments.Detail, error) {
	if err := f.record("change_status"); err != nil {
		return appointments.Detail{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastChange = in
	return f.setLocked(id, func(d *appointments.Detail) { d.Status = in.Status }), nil
}

func (f *fakeDirectory) Cancel(ctx context.Context, id appointments.ID) error {
	if err := f.record("cancel"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLocked(id, func(d *appointments.Detail) { d.Status = appointments.StatusCancelled })
	return nil
}

func (f *fakeDirectory) CheckAvailability(ctx context.Context, q appointments.AvailabilityQuery) (appointments.Availability, error) {
	return appointments.Availability{Available: true}, nil
}

func (f *fakeDirectory) ListVeterinarians(ctx context.Context) ([]appointments.Veterinarian, error) {
	return []appointments.Veterinarian{{UserID: 2, Name: "Dr. Juan Pérez", Specialty: "Medicina General"}}, nil
}

// setLocked reemplaza el item (nunca muta en sitio: el orquestador comparte slices).
func (f *fakeDirectory) setLocked(id appointments.ID, fn func(*appointments.Detail)) appointments.Detail {
	next := make([]appointments.Detail, len(f.items))
	copy(next, f.items)
	var out appointments.Detail
	for i := range next {
		if next[i].ID == id {
			fn(&next[i])
			out = next[i]
		}
	}
	f.items = next
	return out
}

func (f *fakeDirectory) mutationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.mutations)
}

func day(s string) time.Time {
	t, err := time.Parse(appointments.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seed() []appointments.Detail {
	return []appointments.Detail{
		{Appointment: appointments.Appointment{ID: 1, ClientID: 9, Date: day("2024-03-15"), Time: "10:00", Status: appointments.StatusScheduled}},
		{Appointment: appointments.Appointment{ID: 2, ClientID: 9, Date: day("2024-03-15"), Time: "11:00", Status: appointments.StatusConfirmed}},
		{Appointment: appointments.Appointment{ID: 3, ClientID: 9, Date: day("2024-03-20"), Time: "09:30", Status: appointments.StatusCompleted}},
	}
}

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestOrchestrator(dir *fakeDirectory, opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return NewOrchestrator(appointments.NewService(dir), opts)
}
