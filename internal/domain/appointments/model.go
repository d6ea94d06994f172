package appointments

import (
	"strings"
	"time"
)

// DateLayout es el formato de fecha de calendario (sin hora) que usa el Directorio.
const DateLayout = "2006-01-02"

// Status define el estado de una cita.
// @Enum scheduled, confirmed, cancelled, completed
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Statuses lista los estados en orden de ciclo de vida.
var Statuses = []Status{StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted}

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal indica que no hay transiciones de salida.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

var statusLabels = map[Status]string{
	StatusScheduled: "programada",
	StatusConfirmed: "confirmada",
	StatusCancelled: "cancelada",
	StatusCompleted: "completada",
}

// Label es el nombre en español que usan el Directorio y la vista.
func (s Status) Label() string {
	return statusLabels[s]
}

// ParseStatusLabel acepta la etiqueta en español o el valor interno.
func ParseStatusLabel(v string) (Status, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	for st, label := range statusLabels {
		if v == label || v == string(st) {
			return st, true
		}
	}
	return "", false
}

// ID identifica una cita en el Directorio. Cero = todavía no creada.
type ID int64

func (id ID) IsPersisted() bool { return id > 0 }

// Appointment es la forma canónica en memoria de una cita de la clínica.
type Appointment struct {
	ID ID

	ClientID           int64
	PetID              int64
	ServiceID          int64
	VeterinarianUserID *int64 // nil = sin veterinario asignado

	Date time.Time // fecha de calendario (medianoche UTC)
	Time string    // HH:MM, sin zona horaria

	Reason          string
	Symptoms        string
	PriorDiagnosis  string
	AdditionalNotes string
	PriorTreatments []string

	Status   Status
	Attended *bool // solo tiene sentido con status completed

	CreatedAt *time.Time
	UpdatedAt *time.Time
}

func (a Appointment) IsPersisted() bool { return a.ID.IsPersisted() }

// DateKey devuelve la fecha como YYYY-MM-DD (clave de bucketing del calendario).
func (a Appointment) DateKey() string {
	if a.Date.IsZero() {
		return ""
	}
	return a.Date.Format(DateLayout)
}

type PetSummary struct {
	Name    string
	Species string
}

type ServiceSummary struct {
	Name  string
	Price float64
}

type VeterinarianSummary struct {
	Name      string
	Specialty string
}

// ClinicalNotes viene de un almacén secundario del Directorio.
type ClinicalNotes struct {
	Reason          string
	Symptoms        string
	Status          string
	AdditionalNotes string
}

// Detail es la vista enriquecida (nombres desnormalizados) usada para mostrar.
// Nunca es autoritativa para mutaciones: se muta siempre por Appointment.ID.
type Detail struct {
	Appointment

	ClientName       string
	PetName          string
	VeterinarianName string
	ServiceName      string

	Pet           *PetSummary
	Service       *ServiceSummary
	Veterinarian  *VeterinarianSummary
	ClinicalNotes *ClinicalNotes
}

type Veterinarian struct {
	UserID    int64
	Name      string
	Specialty string
}

type Statistics struct {
	Total     int
	Scheduled int
	Confirmed int
	Cancelled int
	Completed int
}

// DateRange es un rango de fechas de calendario, ambos extremos inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(DateOf(r.Start)) && !d.After(DateOf(r.End))
}

type CreateRequest struct {
	ClientID           int64
	PetID              int64
	ServiceID          int64
	VeterinarianUserID *int64

	Date time.Time
	Time string

	Reason          string
	Symptoms        string
	PriorDiagnosis  string
	PriorTreatments []string
	AdditionalNotes string
}

// RescheduleRequest: punteros nil = no tocar.
type RescheduleRequest struct {
	Date               *time.Time
	Time               *string
	VeterinarianUserID *int64
	Reason             string
}

type StatusChange struct {
	Status   Status
	Notes    string
	Attended *bool
}

type AvailabilityQuery struct {
	Date               time.Time
	Time               string
	VeterinarianUserID *int64
}

type Availability struct {
	Available bool
	Message   string
}

// DateOf trunca t a su fecha de calendario (medianoche UTC), sin convertir de zona.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate acepta YYYY-MM-DD o un timestamp ISO (se queda con la fecha).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	return time.Parse(DateLayout, s)
}

// ValidTime valida HH:MM (se tolera HH:MM:SS).
func ValidTime(s string) bool {
	s = strings.TrimSpace(s)
	if _, err := time.Parse("15:04", s); err == nil {
		return true
	}
	_, err := time.Parse("15:04:05", s)
	return err == nil
}
