package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"vet-appointments/internal/domain/appointments"
)

const (
	msgSlotTaken          = "El horario seleccionado no está disponible"
	msgSlotFree           = "Horario disponible"
	msgTransitionRejected = "Transición de estado no permitida"
	msgAttended           = "Solo se puede registrar asistencia al completar la cita"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanCita(s scanner) (appointments.Detail, error) {
	var (
		d          appointments.Detail
		id         int64
		vet        sql.NullInt64
		treatments string
		label      string
		attended   sql.NullBool
		created    sql.NullTime
		updated    sql.NullTime
		species    string
		price      float64
		vetName    string
		specialty  string
	)
	if err := s.Scan(
		&id,
		&d.ClientID,
		&d.PetID,
		&d.ServiceID,
		&d.Date,
		&d.Time,
		&vet,
		&d.Reason,
		&d.Symptoms,
		&d.PriorDiagnosis,
		&treatments,
		&d.AdditionalNotes,
		&label,
		&attended,
		&created,
		&updated,
		&d.ClientName,
		&d.PetName,
		&species,
		&d.ServiceName,
		&price,
		&vetName,
		&specialty,
	); err != nil {
		return appointments.Detail{}, err
	}

	status, ok := appointments.ParseStatusLabel(label)
	if !ok {
		return appointments.Detail{}, fmt.Errorf("cita %d: unknown estado_cita %q", id, label)
	}

	d.ID = appointments.ID(id)
	d.Status = status
	// fecha es DATE; pgx lo mapea a medianoche UTC
	d.Date = appointments.DateOf(d.Date)
	if vet.Valid {
		v := vet.Int64
		d.VeterinarianUserID = &v
	}
	if attended.Valid {
		v := attended.Bool
		d.Attended = &v
	}
	d.CreatedAt = fromNullTime(created)
	d.UpdatedAt = fromNullTime(updated)

	if treatments != "" {
		if err := json.Unmarshal([]byte(treatments), &d.PriorTreatments); err != nil {
			return appointments.Detail{}, fmt.Errorf("cita %d: tratamientos_anteriores: %w", id, err)
		}
		if len(d.PriorTreatments) == 0 {
			d.PriorTreatments = nil
		}
	}

	if d.PetName != "" {
		d.Pet = &appointments.PetSummary{Name: d.PetName, Species: species}
	}
	if d.ServiceName != "" {
		d.Service = &appointments.ServiceSummary{Name: d.ServiceName, Price: price}
	}
	if d.VeterinarianUserID != nil && vetName != "" {
		d.VeterinarianName = vetName
		d.Veterinarian = &appointments.VeterinarianSummary{Name: vetName, Specialty: specialty}
	}
	return d, nil
}

func scanAll(rows *sql.Rows) ([]appointments.Detail, error) {
	defer rows.Close()

	out := make([]appointments.Detail, 0)
	for rows.Next() {
		it, err := scanCita(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func toNullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func toNullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

func toNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func toNullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: appointments.DateOf(*v), Valid: true}
}

func fromNullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
