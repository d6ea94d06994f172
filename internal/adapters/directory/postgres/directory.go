package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"vet-appointments/internal/domain/appointments"
)

const selectCita = `
	SELECT
		c.id_cita, c.id_cliente, c.id_mascota, c.id_servicio,
		c.fecha, c.hora, c.usuario_id_user,
		COALESCE(c.motivo, ''), COALESCE(c.sintomas, ''),
		COALESCE(c.diagnostico_previo, ''), COALESCE(c.tratamientos_anteriores, '[]'),
		COALESCE(c.notas_adicionales, ''),
		c.estado_cita, c.asistio, c.fecha_creacion, c.fecha_actualizacion,
		COALESCE(cl.nombre, ''),
		COALESCE(m.nombre, ''), COALESCE(m.especie, ''),
		COALESCE(s.nombre, ''), COALESCE(s.precio, 0),
		COALESCE(u.nombre, ''), COALESCE(u.especialidad, '')
	FROM citas c
	LEFT JOIN clientes cl ON cl.id_cliente = c.id_cliente
	LEFT JOIN mascotas m ON m.id_mascota = c.id_mascota
	LEFT JOIN servicios s ON s.id_servicio = c.id_servicio
	LEFT JOIN usuarios u ON u.id_user = c.usuario_id_user
`

// Directory implementa appointments.Directory sobre las tablas de la clínica.
type Directory struct {
	db *sql.DB
}

var _ appointments.Directory = (*Directory)(nil)

func NewDirectory(db *sql.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) ListByClient(ctx context.Context, clientID int64) ([]appointments.Detail, error) {
	rows, err := d.db.QueryContext(ctx, selectCita+`
		WHERE c.id_cliente = $1
		ORDER BY c.fecha ASC, c.hora ASC
	`, clientID)
	if err != nil {
		return nil, transport("list_by_client", err)
	}
	items, err := scanAll(rows)
	return items, transport("list_by_client", err)
}

func (d *Directory) ListByRange(ctx context.Context, r appointments.DateRange, veterinarianID *int64) ([]appointments.Detail, error) {
	rows, err := d.db.QueryContext(ctx, selectCita+`
		WHERE c.fecha BETWEEN $1 AND $2
		  AND ($3::bigint IS NULL OR c.usuario_id_user = $3)
		ORDER BY c.fecha ASC, c.hora ASC
	`, r.Start, r.End, toNullInt(veterinarianID))
	if err != nil {
		return nil, transport("list_by_range", err)
	}
	items, err := scanAll(rows)
	return items, transport("list_by_range", err)
}

// Statistics cuenta por estado; etiquetas desconocidas no suman al total.
func (d *Directory) Statistics(ctx context.Context, r appointments.DateRange) (appointments.Statistics, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT estado_cita, COUNT(*)
		FROM citas
		WHERE fecha BETWEEN $1 AND $2
		GROUP BY estado_cita
	`, r.Start, r.End)
	if err != nil {
		return appointments.Statistics{}, transport("statistics", err)
	}
	defer rows.Close()

	var st appointments.Statistics
	for rows.Next() {
		var (
			label string
			n     int
		)
		if err := rows.Scan(&label, &n); err != nil {
			return appointments.Statistics{}, transport("statistics", err)
		}
		status, ok := appointments.ParseStatusLabel(label)
		if !ok {
			continue
		}
		switch status {
		case appointments.StatusScheduled:
			st.Scheduled += n
		case appointments.StatusConfirmed:
			st.Confirmed += n
		case appointments.StatusCancelled:
			st.Cancelled += n
		case appointments.StatusCompleted:
			st.Completed += n
		}
		st.Total += n
	}
	return st, transport("statistics", rows.Err())
}

func (d *Directory) Create(ctx context.Context, in appointments.CreateRequest) (appointments.Detail, error) {
	taken, err := d.slotTaken(ctx, appointments.AvailabilityQuery{
		Date:               in.Date,
		Time:               in.Time,
		VeterinarianUserID: in.VeterinarianUserID,
	})
	if err != nil {
		return appointments.Detail{}, transport("create", err)
	}
	if taken {
		return appointments.Detail{}, &appointments.RejectionError{Op: "create", Message: msgSlotTaken}
	}

	treatments, err := json.Marshal(nonNilStrings(in.PriorTreatments))
	if err != nil {
		return appointments.Detail{}, transport("create", err)
	}

	var id int64
	err = d.db.QueryRowContext(ctx, `
		INSERT INTO citas (
			id_cliente, id_mascota, id_servicio,
			fecha, hora, usuario_id_user,
			motivo, sintomas, diagnostico_previo,
			tratamientos_anteriores, notas_adicionales,
			estado_cita, fecha_creacion, fecha_actualizacion
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12, now(), now())
		RETURNING id_cita
	`,
		in.ClientID,
		in.PetID,
		in.ServiceID,
		in.Date,
		in.Time,
		toNullInt(in.VeterinarianUserID),
		in.Reason,
		in.Symptoms,
		in.PriorDiagnosis,
		string(treatments),
		in.AdditionalNotes,
		appointments.StatusScheduled.Label(),
	).Scan(&id)
	if err != nil {
		return appointments.Detail{}, transport("create", err)
	}

	it, err := d.get(ctx, d.db, appointments.ID(id))
	return it, transport("create", err)
}

func (d *Directory) Reschedule(ctx context.Context, id appointments.ID, in appointments.RescheduleRequest) (appointments.Detail, error) {
	return d.inTx(ctx, "reschedule", id, func(tx *sql.Tx, current appointments.Status) error {
		if current.IsTerminal() {
			return &appointments.RejectionError{Op: "reschedule", Message: msgTransitionRejected}
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE citas
			SET
				fecha = COALESCE($2, fecha),
				hora = COALESCE($3, hora),
				usuario_id_user = COALESCE($4, usuario_id_user),
				notas_adicionales = CASE WHEN $5 = '' THEN notas_adicionales ELSE $5 END,
				fecha_actualizacion = now()
			WHERE id_cita = $1
		`,
			int64(id),
			toNullTime(in.Date),
			toNullString(in.Time),
			toNullInt(in.VeterinarianUserID),
			in.Reason,
		)
		return err
	})
}

func (d *Directory) ChangeStatus(ctx context.Context, id appointments.ID, in appointments.StatusChange) (appointments.Detail, error) {
	return d.inTx(ctx, "change_status", id, func(tx *sql.Tx, current appointments.Status) error {
		if !appointments.CanTransition(current, in.Status) {
			return &appointments.RejectionError{Op: "change_status", Message: msgTransitionRejected}
		}
		if in.Attended != nil && in.Status != appointments.StatusCompleted {
			return &appointments.RejectionError{Op: "change_status", Message: msgAttended}
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE citas
			SET
				estado_cita = $2,
				asistio = COALESCE($3, asistio),
				notas_adicionales = CASE WHEN $4 = '' THEN notas_adicionales ELSE $4 END,
				fecha_actualizacion = now()
			WHERE id_cita = $1
		`,
			int64(id),
			in.Status.Label(),
			toNullBool(in.Attended),
			in.Notes,
		)
		return err
	})
}

func (d *Directory) Cancel(ctx context.Context, id appointments.ID) error {
	_, err := d.ChangeStatus(ctx, id, appointments.StatusChange{Status: appointments.StatusCancelled})
	return err
}

func (d *Directory) CheckAvailability(ctx context.Context, q appointments.AvailabilityQuery) (appointments.Availability, error) {
	taken, err := d.slotTaken(ctx, q)
	if err != nil {
		return appointments.Availability{}, transport("check_availability", err)
	}
	if taken {
		return appointments.Availability{Available: false, Message: msgSlotTaken}, nil
	}
	return appointments.Availability{Available: true, Message: msgSlotFree}, nil
}

func (d *Directory) ListVeterinarians(ctx context.Context) ([]appointments.Veterinarian, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id_user, nombre, COALESCE(especialidad, '')
		FROM usuarios
		WHERE rol = 'veterinario'
		ORDER BY nombre ASC
	`)
	if err != nil {
		return nil, transport("list_veterinarians", err)
	}
	defer rows.Close()

	out := make([]appointments.Veterinarian, 0)
	for rows.Next() {
		var v appointments.Veterinarian
		if err := rows.Scan(&v.UserID, &v.Name, &v.Specialty); err != nil {
			return nil, transport("list_veterinarians", err)
		}
		out = append(out, v)
	}
	return out, transport("list_veterinarians", rows.Err())
}

func (d *Directory) slotTaken(ctx context.Context, q appointments.AvailabilityQuery) (bool, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM citas
		WHERE fecha = $1
		  AND hora = $2
		  AND estado_cita <> 'cancelada'
		  AND ($3::bigint IS NULL OR usuario_id_user IS NULL OR usuario_id_user = $3)
	`, appointments.DateOf(q.Date), q.Time, toNullInt(q.VeterinarianUserID)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// inTx bloquea la fila, valida contra el estado actual y relee la cita tras el commit.
func (d *Directory) inTx(ctx context.Context, op string, id appointments.ID, fn func(tx *sql.Tx, current appointments.Status) error) (appointments.Detail, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return appointments.Detail{}, transport(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var label string
	err = tx.QueryRowContext(ctx, `SELECT estado_cita FROM citas WHERE id_cita = $1 FOR UPDATE`, int64(id)).Scan(&label)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appointments.Detail{}, appointments.ErrNotFound
		}
		return appointments.Detail{}, transport(op, err)
	}
	current, ok := appointments.ParseStatusLabel(label)
	if !ok {
		return appointments.Detail{}, transport(op, fmt.Errorf("unknown estado_cita %q", label))
	}

	if err := fn(tx, current); err != nil {
		return appointments.Detail{}, transport(op, err)
	}
	if err := tx.Commit(); err != nil {
		return appointments.Detail{}, transport(op, err)
	}

	it, err := d.get(ctx, d.db, id)
	return it, transport(op, err)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (d *Directory) get(ctx context.Context, q queryer, id appointments.ID) (appointments.Detail, error) {
	row := q.QueryRowContext(ctx, selectCita+` WHERE c.id_cita = $1`, int64(id))
	it, err := scanCita(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appointments.Detail{}, appointments.ErrNotFound
		}
		return appointments.Detail{}, err
	}
	return it, nil
}

// transport marca como ErrTransport los fallos de base de datos.
// Rechazos y ErrNotFound pasan sin cambios.
func transport(op string, err error) error {
	var rej *appointments.RejectionError
	switch {
	case err == nil,
		errors.As(err, &rej),
		errors.Is(err, appointments.ErrNotFound),
		errors.Is(err, appointments.ErrTransport):
		return err
	}
	return fmt.Errorf("%w: %s: %w", appointments.ErrTransport, op, err)
}
