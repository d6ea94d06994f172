package citasapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vet-appointments/internal/domain/appointments"
)

// ErrDecode indica una respuesta del Directorio que no se pudo interpretar.
var ErrDecode = errors.New("citas directory: malformed response")

// citaWire es la cita tal como la serializa el Directorio (CitaDetalle).
type citaWire struct {
	IDCita        *int64 `json:"idCita,omitempty"`
	IDCliente     int64  `json:"idCliente"`
	IDMascota     int64  `json:"idMascota"`
	IDServicio    int64  `json:"idServicio"`
	Fecha         string `json:"fecha"`
	Hora          string `json:"hora"`
	UsuarioIDUser *int64 `json:"usuarioIdUser,omitempty"`

	Motivo                 string   `json:"motivo,omitempty"`
	Sintomas               string   `json:"sintomas,omitempty"`
	DiagnosticoPrevio      string   `json:"diagnosticoPrevio,omitempty"`
	TratamientosAnteriores []string `json:"tratamientosAnteriores,omitempty"`
	NotasAdicionales       string   `json:"notasAdicionales,omitempty"`

	EstadoCita string `json:"estadoCita,omitempty"`
	Asistio    *bool  `json:"asistio,omitempty"`

	FechaCreacion      string `json:"fechaCreacion,omitempty"`
	FechaActualizacion string `json:"fechaActualizacion,omitempty"`

	NombreCliente     string `json:"nombreCliente,omitempty"`
	NombreMascota     string `json:"nombreMascota,omitempty"`
	NombreVeterinario string `json:"nombreVeterinario,omitempty"`
	NombreServicio    string `json:"nombreServicio,omitempty"`

	Mascota *struct {
		Nombre  string `json:"nombre"`
		Especie string `json:"especie"`
	} `json:"mascota,omitempty"`
	Servicio *struct {
		Nombre string  `json:"nombre"`
		Precio float64 `json:"precio"`
	} `json:"servicio,omitempty"`
	Veterinario *struct {
		Nombre       string `json:"nombre"`
		Especialidad string `json:"especialidad"`
	} `json:"veterinario,omitempty"`
	DetallesMongo *struct {
		Motivo           string `json:"motivo"`
		Sintomas         string `json:"sintomas"`
		Estado           string `json:"estado"`
		NotasAdicionales string `json:"notasAdicionales"`
	} `json:"detallesMongo,omitempty"`
}

type estadisticasWire struct {
	Total       int `json:"total"`
	Programadas int `json:"programadas"`
	Confirmadas int `json:"confirmadas"`
	Canceladas  int `json:"canceladas"`
	Completadas int `json:"completadas"`
}

type veterinarioWire struct {
	IDUser       int64  `json:"idUser"`
	Nombre       string `json:"nombre"`
	Especialidad string `json:"especialidad,omitempty"`
}

type disponibilidadWire struct {
	Disponible bool   `json:"disponible"`
	Mensaje    string `json:"mensaje,omitempty"`
}

type crearCitaWire struct {
	IDCliente              int64    `json:"idCliente"`
	IDMascota              int64    `json:"idMascota"`
	IDServicio             int64    `json:"idServicio"`
	Fecha                  string   `json:"fecha"`
	Hora                   string   `json:"hora"`
	UsuarioIDUser          *int64   `json:"usuarioIdUser,omitempty"`
	Motivo                 string   `json:"motivo,omitempty"`
	Sintomas               string   `json:"sintomas,omitempty"`
	DiagnosticoPrevio      string   `json:"diagnosticoPrevio,omitempty"`
	TratamientosAnteriores []string `json:"tratamientosAnteriores,omitempty"`
	NotasAdicionales       string   `json:"notasAdicionales,omitempty"`
}

type reprogramarWire struct {
	Fecha                string `json:"fecha,omitempty"`
	Hora                 string `json:"hora,omitempty"`
	UsuarioIDUser        *int64 `json:"usuarioIdUser,omitempty"`
	MotivoReprogramacion string `json:"motivoReprogramacion,omitempty"`
}

type cambiarEstadoWire struct {
	Estado  string `json:"estado"`
	Notas   string `json:"notas,omitempty"`
	Asistio *bool  `json:"asistio,omitempty"`
}

// collectionItems normaliza las variantes de sobre de una colección:
// array pelado, {data:[...]}, {citas:[...]}. Cualquier otra forma => vacío.
func collectionItems(raw []byte, keys ...string) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return items, nil
	case '{':
		var env map[string]json.RawMessage
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		for _, k := range keys {
			inner, ok := env[k]
			if !ok {
				continue
			}
			inner = bytes.TrimSpace(inner)
			if len(inner) == 0 || inner[0] != '[' {
				continue
			}
			var items []json.RawMessage
			if err := json.Unmarshal(inner, &items); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDecode, err)
			}
			return items, nil
		}
	}
	return nil, nil
}

// objectBody desenvuelve {data:{...}} si viene así.
func objectBody(raw []byte) []byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return raw
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return raw
	}
	if inner, ok := env["data"]; ok {
		inner = bytes.TrimSpace(inner)
		if len(inner) > 0 && inner[0] == '{' {
			return inner
		}
	}
	return raw
}

// DecodeAppointments decodifica GET /citas/cliente/{id} y GET /citas/calendario.
func DecodeAppointments(raw []byte) ([]appointments.Detail, error) {
	items, err := collectionItems(raw, "data", "citas")
	if err != nil {
		return nil, err
	}

	out := make([]appointments.Detail, 0, len(items))
	for i, it := range items {
		var w citaWire
		if err := json.Unmarshal(it, &w); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrDecode, i, err)
		}
		d, err := w.toDetail()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// DecodeAppointment decodifica la cita devuelta por create/reprogramar/estado.
func DecodeAppointment(raw []byte) (appointments.Detail, error) {
	body := objectBody(raw)
	if len(body) == 0 {
		return appointments.Detail{}, fmt.Errorf("%w: empty body", ErrDecode)
	}
	var w citaWire
	if err := json.Unmarshal(body, &w); err != nil {
		return appointments.Detail{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return w.toDetail()
}

// DecodeStatistics decodifica GET /citas/estadisticas.
func DecodeStatistics(raw []byte) (appointments.Statistics, error) {
	var w estadisticasWire
	if err := json.Unmarshal(objectBody(raw), &w); err != nil {
		return appointments.Statistics{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return appointments.Statistics{
		Total:     w.Total,
		Scheduled: w.Programadas,
		Confirmed: w.Confirmadas,
		Cancelled: w.Canceladas,
		Completed: w.Completadas,
	}, nil
}

// DecodeVeterinarians decodifica GET /veterinarios.
func DecodeVeterinarians(raw []byte) ([]appointments.Veterinarian, error) {
	items, err := collectionItems(raw, "data", "veterinarios")
	if err != nil {
		return nil, err
	}
	out := make([]appointments.Veterinarian, 0, len(items))
	for i, it := range items {
		var w veterinarioWire
		if err := json.Unmarshal(it, &w); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrDecode, i, err)
		}
		out = append(out, appointments.Veterinarian{
			UserID:    w.IDUser,
			Name:      strings.TrimSpace(w.Nombre),
			Specialty: strings.TrimSpace(w.Especialidad),
		})
	}
	return out, nil
}

// DecodeAvailability decodifica GET /citas/disponibilidad.
func DecodeAvailability(raw []byte) (appointments.Availability, error) {
	var w disponibilidadWire
	if err := json.Unmarshal(objectBody(raw), &w); err != nil {
		return appointments.Availability{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return appointments.Availability{Available: w.Disponible, Message: w.Mensaje}, nil
}

func (w citaWire) toDetail() (appointments.Detail, error) {
	status := appointments.StatusScheduled
	if strings.TrimSpace(w.EstadoCita) != "" {
		st, ok := appointments.ParseStatusLabel(w.EstadoCita)
		if !ok {
			return appointments.Detail{}, fmt.Errorf("%w: unknown estadoCita %q", ErrDecode, w.EstadoCita)
		}
		status = st
	}

	var date time.Time
	if strings.TrimSpace(w.Fecha) != "" {
		d, err := appointments.ParseDate(w.Fecha)
		if err != nil {
			return appointments.Detail{}, fmt.Errorf("%w: fecha %q", ErrDecode, w.Fecha)
		}
		date = d
	}

	a := appointments.Appointment{
		ClientID:           w.IDCliente,
		PetID:              w.IDMascota,
		ServiceID:          w.IDServicio,
		VeterinarianUserID: w.UsuarioIDUser,
		Date:               date,
		Time:               strings.TrimSpace(w.Hora),
		Reason:             w.Motivo,
		Symptoms:           w.Sintomas,
		PriorDiagnosis:     w.DiagnosticoPrevio,
		AdditionalNotes:    w.NotasAdicionales,
		PriorTreatments:    w.TratamientosAnteriores,
		Status:             status,
		Attended:           w.Asistio,
		CreatedAt:          parseTimestamp(w.FechaCreacion),
		UpdatedAt:          parseTimestamp(w.FechaActualizacion),
	}
	if w.IDCita != nil {
		a.ID = appointments.ID(*w.IDCita)
	}

	d := appointments.Detail{
		Appointment:      a,
		ClientName:       w.NombreCliente,
		PetName:          w.NombreMascota,
		VeterinarianName: w.NombreVeterinario,
		ServiceName:      w.NombreServicio,
	}
	if w.Mascota != nil {
		d.Pet = &appointments.PetSummary{Name: w.Mascota.Nombre, Species: w.Mascota.Especie}
		if d.PetName == "" {
			d.PetName = w.Mascota.Nombre
		}
	}
	if w.Servicio != nil {
		d.Service = &appointments.ServiceSummary{Name: w.Servicio.Nombre, Price: w.Servicio.Precio}
		if d.ServiceName == "" {
			d.ServiceName = w.Servicio.Nombre
		}
	}
	if w.Veterinario != nil {
		d.Veterinarian = &appointments.VeterinarianSummary{Name: w.Veterinario.Nombre, Specialty: w.Veterinario.Especialidad}
		if d.VeterinarianName == "" {
			d.VeterinarianName = w.Veterinario.Nombre
		}
	}
	if m := w.DetallesMongo; m != nil {
		d.ClinicalNotes = &appointments.ClinicalNotes{
			Reason:          m.Motivo,
			Symptoms:        m.Sintomas,
			Status:          m.Estado,
			AdditionalNotes: m.NotasAdicionales,
		}
	}
	return d, nil
}

func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func encodeCreate(in appointments.CreateRequest) crearCitaWire {
	return crearCitaWire{
		IDCliente:              in.ClientID,
		IDMascota:              in.PetID,
		IDServicio:             in.ServiceID,
		Fecha:                  in.Date.Format(appointments.DateLayout),
		Hora:                   in.Time,
		UsuarioIDUser:          in.VeterinarianUserID,
		Motivo:                 in.Reason,
		Sintomas:               in.Symptoms,
		DiagnosticoPrevio:      in.PriorDiagnosis,
		TratamientosAnteriores: in.PriorTreatments,
		NotasAdicionales:       in.AdditionalNotes,
	}
}

func encodeReschedule(in appointments.RescheduleRequest) reprogramarWire {
	w := reprogramarWire{
		UsuarioIDUser:        in.VeterinarianUserID,
		MotivoReprogramacion: in.Reason,
	}
	if in.Date != nil {
		w.Fecha = in.Date.Format(appointments.DateLayout)
	}
	if in.Time != nil {
		w.Hora = *in.Time
	}
	return w
}

func encodeStatus(in appointments.StatusChange) cambiarEstadoWire {
	return cambiarEstadoWire{
		Estado:  in.Status.Label(),
		Notas:   in.Notes,
		Asistio: in.Attended,
	}
}
