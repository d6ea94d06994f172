package agenda

import (
	"testing"
	"time"

	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/domain/calendar"
)

func TestInitial(t *testing.T) {
	s := Initial(fixedNow, nil)

	if s.ViewMode != ViewList || s.StatusFilter != appointments.FilterAll {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.Month != (calendar.Month{Year: 2024, Month: time.March}) {
		t.Fatalf("unexpected month %v", s.Month)
	}
	if len(s.Calendar) != calendar.GridSize {
		t.Fatalf("calendar should be projected from the start, got %d cells", len(s.Calendar))
	}
	if s.Appointments == nil || s.Filtered == nil {
		t.Fatalf("collections should be empty, not nil")
	}
}

func TestReduce_DropsStaleFetch(t *testing.T) {
	s := Initial(fixedNow, nil)
	s = Reduce(s, FetchStarted{Token: 1})
	s = Reduce(s, FetchStarted{Token: 2})

	s = Reduce(s, FetchSucceeded{Token: 2, Items: seed()[:1]})
	s = Reduce(s, FetchSucceeded{Token: 1, Items: seed()})

	if len(s.Appointments) != 1 {
		t.Fatalf("stale response must be ignored, got %d items", len(s.Appointments))
	}

	before := s
	s = Reduce(s, FetchFailed{Token: 1, Message: "late failure"})
	if s.ErrorMessage != "" || len(s.Appointments) != len(before.Appointments) {
		t.Fatalf("stale failure must be ignored")
	}
}

func TestReduce_LateFetchStartedKeepsNewestToken(t *testing.T) {
	items := seed()
	s := Initial(fixedNow, nil)
	s = Reduce(s, FetchStarted{Token: 2})
	s = Reduce(s, FetchStarted{Token: 1})

	if s.RequestToken != 2 {
		t.Fatalf("older start must not replace the newest token, got %d", s.RequestToken)
	}

	s = Reduce(s, FetchSucceeded{Token: 2, Items: items[1:2]})
	s = Reduce(s, FetchSucceeded{Token: 1, Items: items[:1]})

	if len(s.Appointments) != 1 || s.Appointments[0].ID != 2 {
		t.Fatalf("newest response should win, got %+v", s.Appointments)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := Reduce(Initial(fixedNow, nil), FetchStarted{Token: 1})
	s = Reduce(s, FetchSucceeded{Token: 1, Items: seed()})

	next := Reduce(s, FilterChanged{Status: "confirmed"})

	if s.StatusFilter != appointments.FilterAll || len(s.Filtered) != 3 {
		t.Fatalf("previous snapshot changed: filter=%s filtered=%d", s.StatusFilter, len(s.Filtered))
	}
	if len(next.Filtered) != 1 || next.Filtered[0].ID != 2 {
		t.Fatalf("unexpected filtered: %+v", next.Filtered)
	}
}

func TestReduce_FetchFailed_KeepsCollectionWithoutFallback(t *testing.T) {
	s := Reduce(Initial(fixedNow, nil), FetchStarted{Token: 1})
	s = Reduce(s, FetchSucceeded{Token: 1, Items: seed()})

	s = Reduce(s, FetchStarted{Token: 2})
	if !s.Loading || s.ErrorMessage != "" {
		t.Fatalf("fetch start should set loading and clear error")
	}
	s = Reduce(s, FetchFailed{Token: 2, Message: LoadErrorMessage})

	if s.Loading || s.ErrorMessage != LoadErrorMessage {
		t.Fatalf("unexpected state: loading=%v error=%q", s.Loading, s.ErrorMessage)
	}
	if len(s.Appointments) != 3 || s.UsingFallback {
		t.Fatalf("collection should be kept")
	}
}

func TestReduce_FetchFailed_WithFallback(t *testing.T) {
	s := Reduce(Initial(fixedNow, nil), FetchStarted{Token: 1})
	s = Reduce(s, FetchFailed{Token: 1, Message: LoadErrorMessage, Fallback: SampleFallback{}.Fallback(Scope{})})

	if !s.UsingFallback || len(s.Appointments) != 3 || s.ErrorMessage != LoadErrorMessage {
		t.Fatalf("fallback not applied: %+v", s)
	}
	if s.Summary.Total != 3 {
		t.Fatalf("derived views should be recomputed, got %+v", s.Summary)
	}
}

func TestReduce_MonthShiftReprojects(t *testing.T) {
	s := Reduce(Initial(fixedNow, nil), FetchStarted{Token: 1})
	s = Reduce(s, FetchSucceeded{Token: 1, Items: seed()})

	count := func(s State) int {
		n := 0
		for _, d := range s.Calendar {
			n += len(d.Appointments)
		}
		return n
	}
	if count(s) != 3 {
		t.Fatalf("march should hold 3 appointments, got %d", count(s))
	}

	s = Reduce(s, MonthShifted{Delta: 1})
	if s.Month.Month != time.April || count(s) != 0 {
		t.Fatalf("april should be empty: month=%v count=%d", s.Month, count(s))
	}

	s = Reduce(s, MonthSelected{Month: calendar.Month{Year: 2024, Month: time.March}})
	if count(s) != 3 {
		t.Fatalf("selecting march again should reproject")
	}
}

func TestReduce_MutationFailed_KeepsErrorAndCollection(t *testing.T) {
	s := Reduce(Initial(fixedNow, nil), FetchStarted{Token: 1})
	s = Reduce(s, FetchFailed{Token: 1, Message: LoadErrorMessage})
	s = Reduce(s, MutationStarted{})
	s = Reduce(s, MutationFailed{Notice: "No se pudo cancelar la cita. Intenta nuevamente."})

	if s.ErrorMessage != LoadErrorMessage {
		t.Fatalf("mutation failure must not touch the load error")
	}
	if s.Notice == "" || s.Loading {
		t.Fatalf("unexpected notice/loading: %+v", s)
	}
	s = Reduce(s, NoticeDismissed{})
	if s.Notice != "" {
		t.Fatalf("notice should be dismissed")
	}
}

func TestReduce_RescheduleDraft(t *testing.T) {
	s := Initial(fixedNow, nil)

	s = Reduce(s, RescheduleEdited{Draft: RescheduleDraft{Time: "10:00"}})
	if s.Reschedule != nil {
		t.Fatalf("editing without an open draft must be a no-op")
	}

	s = Reduce(s, RescheduleOpened{Draft: RescheduleDraft{AppointmentID: 7, Time: "09:00"}})
	s = Reduce(s, RescheduleEdited{Draft: RescheduleDraft{AppointmentID: 99, Time: "10:00"}})
	if s.Reschedule.AppointmentID != 7 || s.Reschedule.Time != "10:00" {
		t.Fatalf("draft should keep its appointment id: %+v", s.Reschedule)
	}

	s = Reduce(s, RescheduleClosed{})
	if s.Reschedule != nil {
		t.Fatalf("draft should be cleared")
	}
}
