package agenda

import (
	"context"
	"errors"
	"sync"
	"testing"

	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/domain/calendar"
)

func int64Ptr(v int64) *int64 { return &v }

func TestOrchestrator_Reload_Success(t *testing.T) {
	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{})

	if err := o.Reload(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := o.State()
	if s.Loading || s.ErrorMessage != "" || len(s.Appointments) != 3 {
		t.Fatalf("unexpected state: %+v", s)
	}
	if s.Summary.Total != 3 || s.Summary.Scheduled != 1 {
		t.Fatalf("unexpected summary: %+v", s.Summary)
	}
}

func TestOrchestrator_Reload_FailureWithoutFallback(t *testing.T) {
	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{})
	_ = o.Reload(context.Background())

	dir.listErr = appointments.ErrTransport
	if err := o.Reload(context.Background()); !errors.Is(err, appointments.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}

	s := o.State()
	if s.ErrorMessage != LoadErrorMessage {
		t.Fatalf("expected load error message, got %q", s.ErrorMessage)
	}
	if len(s.Appointments) != 3 || s.UsingFallback {
		t.Fatalf("previous collection should remain, got %d fallback=%v", len(s.Appointments), s.UsingFallback)
	}
}

func TestOrchestrator_Reload_FallbackOnlyWhenInjected(t *testing.T) {
	dir := &fakeDirectory{listErr: appointments.ErrTransport}

	plain := newTestOrchestrator(dir, Options{})
	_ = plain.Reload(context.Background())
	if n := len(plain.State().Appointments); n != 0 {
		t.Fatalf("no fallback by default, got %d items", n)
	}

	clientID := int64Ptr(42)
	withSample := newTestOrchestrator(dir, Options{ClientID: clientID, Fallback: SampleFallback{}})
	_ = withSample.Reload(context.Background())
	s := withSample.State()
	if !s.UsingFallback || len(s.Appointments) != 3 {
		t.Fatalf("sample fallback not applied: %+v", s)
	}
	for _, it := range s.Appointments {
		if it.ClientID != 42 {
			t.Fatalf("fallback should be scoped to the client, got %d", it.ClientID)
		}
	}
	if s.ErrorMessage != LoadErrorMessage {
		t.Fatalf("error should still be reported")
	}
}

func TestOrchestrator_Reload_StaleResponseDropped(t *testing.T) {
	first := make(chan struct{})
	release := make(chan struct{})

	dir := &fakeDirectory{items: seed()}
	dir.onList = func(call int) {
		if call == 1 {
			close(first)
			<-release
		}
	}
	o := newTestOrchestrator(dir, Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = o.Reload(context.Background())
	}()
	<-first

	// la segunda carga ve una colección distinta y termina primero
	dir.mu.Lock()
	dir.items = seed()[:1]
	dir.mu.Unlock()
	if err := o.Reload(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dir.mu.Lock()
	dir.items = seed()
	dir.mu.Unlock()
	close(release)
	wg.Wait()

	s := o.State()
	if s.RequestToken != 2 {
		t.Fatalf("expected latest token 2, got %d", s.RequestToken)
	}
	if len(s.Appointments) != 1 {
		t.Fatalf("late response must not overwrite the newer one, got %d items", len(s.Appointments))
	}
}

func TestOrchestrator_Refresh_ClientScopeSkipsStatistics(t *testing.T) {
	dir := &fakeDirectory{items: seed(), statErr: errors.New("should not be called")}
	o := newTestOrchestrator(dir, Options{ClientID: int64Ptr(9)})

	if err := o.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.State().Statistics != nil {
		t.Fatalf("client scope should not load statistics")
	}
}

func TestOrchestrator_Refresh_RangeScopeLoadsStatistics(t *testing.T) {
	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{})

	if err := o.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := o.State().Statistics
	if st == nil || st.Total != 3 {
		t.Fatalf("expected statistics, got %+v", st)
	}

	dir.statErr = appointments.ErrTransport
	if err := o.Refresh(context.Background()); err != nil {
		t.Fatalf("statistics failure must not fail the refresh: %v", err)
	}
	if o.State().ErrorMessage != "" {
		t.Fatalf("statistics failure must not set the load error")
	}
}

func TestOrchestrator_Confirm_WithoutID_NoRequest(t *testing.T) {
	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{})
	_ = o.Reload(context.Background())

	if err := o.Confirm(context.Background(), 0); !errors.Is(err, appointments.ErrNotPersisted) {
		t.Fatalf("expected ErrNotPersisted, got %v", err)
	}
	if dir.mutationCount() != 0 {
		t.Fatalf("no request should be issued")
	}
}

func TestOrchestrator_Confirm_ReloadsAfterSuccess(t *testing.T) {
	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{})
	_ = o.Reload(context.Background())

	if err := o.Confirm(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir.lastChange.Notes != appointments.DefaultConfirmationNote {
		t.Fatalf("expected default note, got %q", dir.lastChange.Notes)
	}

	s := o.State()
	if s.Notice != "Cita confirmada exitosamente" {
		t.Fatalf("unexpected notice %q", s.Notice)
	}
	got, _ := s.Find(1)
	if got.Status != appointments.StatusConfirmed {
		t.Fatalf("collection should be reloaded, got %s", got.Status)
	}
	if s.Summary.Confirmed != 2 {
		t.Fatalf("summary should follow the reload: %+v", s.Summary)
	}
}

func TestOrchestrator_MutationFailure_KeepsCollection(t *testing.T) {
	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{})
	_ = o.Reload(context.Background())

	dir.listErr = appointments.ErrTransport
	_ = o.Reload(context.Background())
	dir.listErr = nil

	dir.mutErr = &appointments.RejectionError{Op: "change_status", Message: "Transición de estado no permitida"}
	err := o.Confirm(context.Background(), 1)
	if !appointments.IsRejection(err) {
		t.Fatalf("expected rejection, got %v", err)
	}

	s := o.State()
	if s.ErrorMessage != LoadErrorMessage {
		t.Fatalf("mutation failure must not touch the load error, got %q", s.ErrorMessage)
	}
	if len(s.Appointments) != 3 {
		t.Fatalf("collection must be kept, got %d", len(s.Appointments))
	}
	if s.Notice != "No se pudo confirmar la cita. Error: Transición de estado no permitida" {
		t.Fatalf("unexpected notice %q", s.Notice)
	}
}

func TestOrchestrator_Cancel_GateDeclined(t *testing.T) {
	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{})
	_ = o.Reload(context.Background())

	err := o.Cancel(context.Background(), 1, appointments.Answer(false))
	if !errors.Is(err, appointments.ErrCancelDeclined) {
		t.Fatalf("expected ErrCancelDeclined, got %v", err)
	}
	if dir.mutationCount() != 0 {
		t.Fatalf("declined cancellation must not issue a request")
	}
	if o.State().Notice != "Cancelación descartada" {
		t.Fatalf("unexpected notice %q", o.State().Notice)
	}

	if err := o.Cancel(context.Background(), 1, appointments.Answer(true)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := o.State().Find(1)
	if got.Status != appointments.StatusCancelled {
		t.Fatalf("expected cancelled after reload, got %s", got.Status)
	}
}

func TestOrchestrator_UnknownID(t *testing.T) {
	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{})
	_ = o.Reload(context.Background())

	if err := o.ChangeStatus(context.Background(), 77, appointments.StatusChange{Status: appointments.StatusConfirmed}); !errors.Is(err, appointments.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOrchestrator_RescheduleDraftLifecycle(t *testing.T) {
	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{})
	_ = o.Reload(context.Background())

	if _, err := o.UpdateReschedule(day("2024-03-18"), "", ""); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("expected ErrNoDraft, got %v", err)
	}
	if _, err := o.OpenReschedule(0); !errors.Is(err, appointments.ErrNotPersisted) {
		t.Fatalf("expected ErrNotPersisted, got %v", err)
	}

	d, err := o.OpenReschedule(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Date.Format(appointments.DateLayout) != "2024-03-15" || d.Time != "11:00" {
		t.Fatalf("draft should be pre-filled: %+v", d)
	}

	d, err = o.UpdateReschedule(day("2024-03-18"), "", "viaje")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Time != "11:00" || d.Reason != "viaje" || d.Date.Format(appointments.DateLayout) != "2024-03-18" {
		t.Fatalf("unexpected draft: %+v", d)
	}

	// un fallo conserva el borrador
	dir.mutErr = appointments.ErrTransport
	if err := o.SubmitReschedule(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if o.State().Reschedule == nil {
		t.Fatalf("draft must survive a failed submit")
	}
	if o.State().Notice != "No se pudo reprogramar la cita. Intenta nuevamente." {
		t.Fatalf("unexpected notice %q", o.State().Notice)
	}

	dir.mutErr = nil
	if err := o.SubmitReschedule(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := o.State()
	if s.Reschedule != nil {
		t.Fatalf("draft should be cleared after success")
	}
	if dir.lastResched.Reason != "viaje" || *dir.lastResched.Time != "11:00" {
		t.Fatalf("unexpected request: %+v", dir.lastResched)
	}
	got, _ := s.Find(2)
	if got.Status != appointments.StatusConfirmed || got.DateKey() != "2024-03-18" {
		t.Fatalf("reschedule must keep status and move the date: %+v", got.Appointment)
	}

	if err := o.SubmitReschedule(context.Background()); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("expected ErrNoDraft, got %v", err)
	}
}

func TestOrchestrator_CloseReschedule(t *testing.T) {
	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{})
	_ = o.Reload(context.Background())

	if _, err := o.OpenReschedule(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := o.CloseReschedule(); s.Reschedule != nil {
		t.Fatalf("draft should be closed")
	}
	if dir.mutationCount() != 0 {
		t.Fatalf("closing must not issue requests")
	}
}

func TestOrchestrator_Create(t *testing.T) {
	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{})
	_ = o.Reload(context.Background())

	if _, err := o.Create(context.Background(), appointments.CreateRequest{}); !errors.Is(err, appointments.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	d, err := o.Create(context.Background(), appointments.CreateRequest{
		ClientID: 9, PetID: 1, ServiceID: 1, Date: day("2024-03-22"), Time: "16:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID != 50 {
		t.Fatalf("unexpected id %d", d.ID)
	}
	s := o.State()
	if len(s.Appointments) != 4 || s.Notice != "Cita agendada exitosamente" {
		t.Fatalf("unexpected state: %d items notice=%q", len(s.Appointments), s.Notice)
	}
}

func TestOrchestrator_FiltersAndView(t *testing.T) {
	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{})
	_ = o.Reload(context.Background())

	if err := o.SetFilter("nope"); !errors.Is(err, appointments.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := o.SetFilter("completed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f := o.State().Filtered; len(f) != 1 || f[0].ID != 3 {
		t.Fatalf("unexpected filtered: %+v", f)
	}

	if err := o.SetViewMode("grid"); !errors.Is(err, appointments.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := o.SetViewMode(ViewCalendar); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s := o.PreviousMonth(); s.Month != (calendar.Month{Year: 2024, Month: 2}) {
		t.Fatalf("unexpected month %v", s.Month)
	}
	if s := o.NextMonth(); s.Month != (calendar.Month{Year: 2024, Month: 3}) {
		t.Fatalf("unexpected month %v", s.Month)
	}
}

func TestOrchestrator_SetRangeAndReset(t *testing.T) {
	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{})

	bad := appointments.DateRange{Start: day("2024-03-20"), End: day("2024-03-01")}
	if err := o.SetRange(context.Background(), bad, nil); !errors.Is(err, appointments.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	r := appointments.DateRange{Start: day("2024-03-01"), End: day("2024-03-31")}
	if err := o.SetRange(context.Background(), r, int64Ptr(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := o.State()
	if !s.Range.Start.Equal(r.Start) || s.VeterinarianID == nil || *s.VeterinarianID != 3 {
		t.Fatalf("range not applied: %+v", s.Range)
	}
	if len(s.Appointments) != 3 {
		t.Fatalf("range change should reload")
	}

	if err := o.ResetFilters(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s = o.State()
	if s.VeterinarianID != nil || !s.Range.Start.Equal(day("2024-03-10")) || !s.Range.End.Equal(day("2024-03-17")) {
		t.Fatalf("reset should restore the default range: %+v vet=%v", s.Range, s.VeterinarianID)
	}
}
