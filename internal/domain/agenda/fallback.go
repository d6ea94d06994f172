package agenda

import (
	"strings"
	"time"

	"vet-appointments/internal/domain/appointments"
)

// FallbackStrategy decide qué mostrar cuando falla la carga de la colección.
// nil en el resultado = conservar la colección anterior.
type FallbackStrategy interface {
	Fallback(scope Scope) []appointments.Detail
}

// Scope describe qué colección se estaba cargando.
type Scope struct {
	ClientID       *int64
	Range          appointments.DateRange
	VeterinarianID *int64
}

// NoFallback es el default de producción.
type NoFallback struct{}

func (NoFallback) Fallback(Scope) []appointments.Detail { return nil }

// SampleFallback devuelve un set ilustrativo fijo. Solo para desarrollo.
type SampleFallback struct{}

func (SampleFallback) Fallback(scope Scope) []appointments.Detail {
	out := sampleAppointments()
	if scope.ClientID != nil {
		for i := range out {
			out[i].ClientID = *scope.ClientID
		}
	}
	return out
}

// ParseFallback: "sample" => SampleFallback, cualquier otra cosa => NoFallback.
func ParseFallback(s string) FallbackStrategy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sample", "mock", "dev":
		return SampleFallback{}
	default:
		return NoFallback{}
	}
}

func sampleAppointments() []appointments.Detail {
	day := func(s string) time.Time {
		t, _ := time.Parse(appointments.DateLayout, s)
		return t
	}
	return []appointments.Detail{
		{
			Appointment: appointments.Appointment{
				ID: 1, ClientID: 1, PetID: 5, ServiceID: 1,
				Date: day("2025-12-30"), Time: "10:00",
				Status: appointments.StatusScheduled,
				Reason: "Consulta general", Symptoms: "Revisión rutinaria",
			},
			ClientName: "Juan Pérez", PetName: "Max",
			VeterinarianName: "Dr. García", ServiceName: "Consulta General",
		},
		{
			Appointment: appointments.Appointment{
				ID: 2, ClientID: 1, PetID: 6, ServiceID: 2,
				Date: day("2025-12-28"), Time: "15:00",
				Status: appointments.StatusConfirmed,
				Reason: "Vacunación", Symptoms: "Ninguno",
			},
			ClientName: "Juan Pérez", PetName: "Luna",
			VeterinarianName: "Dra. Martínez", ServiceName: "Vacunación",
		},
		{
			Appointment: appointments.Appointment{
				ID: 3, ClientID: 1, PetID: 5, ServiceID: 3,
				Date: day("2025-12-25"), Time: "11:30",
				Status: appointments.StatusCompleted,
				Reason: "Cirugía menor", Symptoms: "Herida en pata",
			},
			ClientName: "Juan Pérez", PetName: "Max",
			VeterinarianName: "Dr. García", ServiceName: "Cirugía",
		},
	}
}
