package agenda

import (
	"time"

	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/domain/calendar"
)

// ViewMode define cómo se presenta la agenda.
// @Enum list, calendar
type ViewMode string

const (
	ViewList     ViewMode = "list"
	ViewCalendar ViewMode = "calendar"
)

func (v ViewMode) IsValid() bool {
	return v == ViewList || v == ViewCalendar
}

// RescheduleDraft son los campos del modal de reprogramación.
type RescheduleDraft struct {
	AppointmentID appointments.ID
	Date          time.Time
	Time          string
	Reason        string
}

// State es una foto inmutable de la agenda. Solo se reemplaza vía Reduce;
// los slices nunca se mutan en sitio, así que compartirlos entre fotos es seguro.
type State struct {
	Loading      bool
	ErrorMessage string
	Notice       string

	ViewMode     ViewMode
	StatusFilter string
	Month        calendar.Month
	Range        appointments.DateRange

	// ClientID != nil => scope "mis citas"; si no, calendario por rango.
	ClientID       *int64
	VeterinarianID *int64

	Appointments  []appointments.Detail
	Filtered      []appointments.Detail
	Summary       appointments.Statistics
	Statistics    *appointments.Statistics
	Calendar      []calendar.Day
	Veterinarians []appointments.Veterinarian

	Reschedule *RescheduleDraft

	// RequestToken es el token del último fetch despachado.
	RequestToken uint64
	// UsingFallback indica que Appointments viene de la estrategia de fallback.
	UsingFallback bool
}

// Initial arma la foto inicial para now.
func Initial(now time.Time, clientID *int64) State {
	s := State{
		ViewMode:     ViewList,
		StatusFilter: appointments.FilterAll,
		Month:        calendar.MonthOf(now),
		Range:        appointments.DefaultRange(now),
		ClientID:     clientID,
		Appointments: []appointments.Detail{},
	}
	return derive(s)
}

// Action es una transición definida sobre State.
type Action interface{ isAction() }

type FetchStarted struct{ Token uint64 }

type FetchSucceeded struct {
	Token uint64
	Items []appointments.Detail
}

type FetchFailed struct {
	Token   uint64
	Message string
	// Fallback != nil reemplaza la colección (solo en desarrollo).
	Fallback []appointments.Detail
}

type StatisticsLoaded struct{ Statistics appointments.Statistics }

type VeterinariansLoaded struct{ Items []appointments.Veterinarian }

type FilterChanged struct{ Status string }

type ViewModeChanged struct{ Mode ViewMode }

type MonthShifted struct{ Delta int }

type MonthSelected struct{ Month calendar.Month }

type RangeChanged struct {
	Range          appointments.DateRange
	VeterinarianID *int64
}

type MutationStarted struct{}

type MutationSucceeded struct{ Notice string }

type MutationFailed struct{ Notice string }

type RescheduleOpened struct{ Draft RescheduleDraft }

type RescheduleEdited struct{ Draft RescheduleDraft }

type RescheduleClosed struct{}

type NoticeDismissed struct{}

func (FetchStarted) isAction()        {}
func (FetchSucceeded) isAction()      {}
func (FetchFailed) isAction()         {}
func (StatisticsLoaded) isAction()    {}
func (VeterinariansLoaded) isAction() {}
func (FilterChanged) isAction()       {}
func (ViewModeChanged) isAction()     {}
func (MonthShifted) isAction()        {}
func (MonthSelected) isAction()       {}
func (RangeChanged) isAction()        {}
func (MutationStarted) isAction()     {}
func (MutationSucceeded) isAction()   {}
func (MutationFailed) isAction()      {}
func (RescheduleOpened) isAction()    {}
func (RescheduleEdited) isAction()    {}
func (RescheduleClosed) isAction()    {}
func (NoticeDismissed) isAction()     {}

// Reduce es puro: no hace I/O y no muta s.
// Respuestas de fetch con token distinto al último se ignoran.
// Un FetchStarted con token menor al vigente llega tarde y no lo reemplaza.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case FetchStarted:
		if a.Token < s.RequestToken {
			return s
		}
		s.Loading = true
		s.ErrorMessage = ""
		s.RequestToken = a.Token
		return s

	case FetchSucceeded:
		if a.Token != s.RequestToken {
			return s
		}
		s.Loading = false
		s.UsingFallback = false
		s.Appointments = nonNil(a.Items)
		return derive(s)

	case FetchFailed:
		if a.Token != s.RequestToken {
			return s
		}
		s.Loading = false
		s.ErrorMessage = a.Message
		if a.Fallback != nil {
			s.Appointments = a.Fallback
			s.UsingFallback = true
			return derive(s)
		}
		return s

	case StatisticsLoaded:
		st := a.Statistics
		s.Statistics = &st
		return s

	case VeterinariansLoaded:
		s.Veterinarians = a.Items
		return s

	case FilterChanged:
		s.StatusFilter = a.Status
		return derive(s)

	case ViewModeChanged:
		s.ViewMode = a.Mode
		return derive(s)

	case MonthShifted:
		s.Month = s.Month.Add(a.Delta)
		return derive(s)

	case MonthSelected:
		s.Month = a.Month
		return derive(s)

	case RangeChanged:
		s.Range = a.Range
		s.VeterinarianID = a.VeterinarianID
		return s

	case MutationStarted:
		s.Loading = true
		s.Notice = ""
		return s

	case MutationSucceeded:
		s.Loading = false
		s.Notice = a.Notice
		return s

	case MutationFailed:
		// No toca ErrorMessage ni la colección.
		s.Loading = false
		s.Notice = a.Notice
		return s

	case RescheduleOpened:
		d := a.Draft
		s.Reschedule = &d
		return s

	case RescheduleEdited:
		if s.Reschedule == nil {
			return s
		}
		d := a.Draft
		d.AppointmentID = s.Reschedule.AppointmentID
		s.Reschedule = &d
		return s

	case RescheduleClosed:
		s.Reschedule = nil
		return s

	case NoticeDismissed:
		s.Notice = ""
		return s
	}
	return s
}

// derive recalcula las vistas derivadas desde Appointments.
func derive(s State) State {
	s.Filtered = appointments.FilterByStatus(s.Appointments, s.StatusFilter)
	s.Summary = appointments.ComputeStatistics(s.Appointments)
	s.Calendar = calendar.Project(s.Month, s.Appointments)
	return s
}

// Find busca una cita en la colección actual.
func (s State) Find(id appointments.ID) (appointments.Detail, bool) {
	for _, it := range s.Appointments {
		if it.ID == id {
			return it, true
		}
	}
	return appointments.Detail{}, false
}

func nonNil(items []appointments.Detail) []appointments.Detail {
	if items == nil {
		return []appointments.Detail{}
	}
	return items
}
