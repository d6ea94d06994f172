package agenda

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/domain/calendar"
	"vet-appointments/internal/platform/logger"
)

// LoadErrorMessage es el banner que se muestra si falla la carga.
const LoadErrorMessage = "No se pudieron cargar las citas. Verifica que el servidor esté funcionando."

var ErrNoDraft = errors.New("no reschedule in progress")

// Options configura un Orchestrator.
type Options struct {
	// ClientID != nil => "mis citas" (ListByClient). nil => calendario por rango.
	ClientID *int64
	Fallback FallbackStrategy
	Logger   logger.Logger
	Metrics  *Metrics
	Now      func() time.Time
}

// Orchestrator coordina fetch -> normalizar -> filtrar/agregar/proyectar -> publicar.
// El estado solo cambia vía Reduce; mu protege el puntero a la foto actual.
type Orchestrator struct {
	svc      *appointments.Service
	fallback FallbackStrategy
	log      logger.Logger
	metrics  *Metrics
	now      func() time.Time

	tokens atomic.Uint64

	mu    sync.Mutex
	state State
}

func NewOrchestrator(svc *appointments.Service, opts Options) *Orchestrator {
	if opts.Fallback == nil {
		opts.Fallback = NoFallback{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Orchestrator{
		svc:      svc,
		fallback: opts.Fallback,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
		state:    Initial(opts.Now(), opts.ClientID),
	}
}

// State devuelve la foto actual.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) dispatch(a Action) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = Reduce(o.state, a)
	return o.state
}

func (o *Orchestrator) scope() Scope {
	s := o.State()
	return Scope{ClientID: s.ClientID, Range: s.Range, VeterinarianID: s.VeterinarianID}
}

func scopeLabel(sc Scope) string {
	if sc.ClientID != nil {
		return "client"
	}
	return "range"
}

// Reload vuelve a traer la colección completa del scope actual.
// Solo se aplica la respuesta cuyo token sea el último despachado.
func (o *Orchestrator) Reload(ctx context.Context) error {
	token := o.tokens.Add(1)
	sc := o.scope()
	o.dispatch(FetchStarted{Token: token})

	var (
		items []appointments.Detail
		err   error
	)
	if sc.ClientID != nil {
		items, err = o.svc.ListByClient(ctx, *sc.ClientID)
	} else {
		items, err = o.svc.ListByRange(ctx, sc.Range, sc.VeterinarianID)
	}

	if err != nil {
		o.log.Error("agenda fetch failed", map[string]any{
			"scope": scopeLabel(sc),
			"token": token,
			"error": err,
		})
		st := o.dispatch(FetchFailed{
			Token:    token,
			Message:  LoadErrorMessage,
			Fallback: o.fallback.Fallback(sc),
		})
		o.observeFetch(sc, token, st, "error")
		return err
	}

	st := o.dispatch(FetchSucceeded{Token: token, Items: items})
	o.observeFetch(sc, token, st, "ok")
	return nil
}

func (o *Orchestrator) observeFetch(sc Scope, token uint64, st State, outcome string) {
	if st.RequestToken != token {
		o.metrics.ObserveStale()
		o.log.Debug("agenda stale response dropped", map[string]any{
			"token":  token,
			"latest": st.RequestToken,
		})
		return
	}
	o.metrics.ObserveFetch(scopeLabel(sc), outcome)
}

// LoadStatistics trae las estadísticas del Directorio para el rango actual.
// Un fallo solo se loguea; no toca ErrorMessage.
func (o *Orchestrator) LoadStatistics(ctx context.Context) error {
	r := o.State().Range
	st, err := o.svc.Statistics(ctx, r)
	if err != nil {
		o.log.Warn("agenda statistics failed", map[string]any{"error": err})
		return err
	}
	o.dispatch(StatisticsLoaded{Statistics: st})
	return nil
}

// LoadVeterinarians carga el catálogo para el filtro del calendario.
func (o *Orchestrator) LoadVeterinarians(ctx context.Context) error {
	items, err := o.svc.Veterinarians(ctx)
	if err != nil {
		o.log.Warn("agenda veterinarians failed", map[string]any{"error": err})
		return err
	}
	o.dispatch(VeterinariansLoaded{Items: items})
	return nil
}

// Refresh recarga colección y estadísticas en paralelo.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return o.Reload(gctx) })
	if o.State().ClientID == nil {
		g.Go(func() error {
			// las estadísticas son informativas: no cortan el refresh
			_ = o.LoadStatistics(gctx)
			return nil
		})
	}
	return g.Wait()
}

func (o *Orchestrator) SetFilter(status string) error {
	if !appointments.ValidFilter(status) {
		return appointments.ErrInvalidInput
	}
	o.dispatch(FilterChanged{Status: status})
	return nil
}

func (o *Orchestrator) SetViewMode(mode ViewMode) error {
	if !mode.IsValid() {
		return appointments.ErrInvalidInput
	}
	o.dispatch(ViewModeChanged{Mode: mode})
	return nil
}

func (o *Orchestrator) PreviousMonth() State { return o.dispatch(MonthShifted{Delta: -1}) }
func (o *Orchestrator) NextMonth() State     { return o.dispatch(MonthShifted{Delta: 1}) }

func (o *Orchestrator) SelectMonth(m calendar.Month) State {
	return o.dispatch(MonthSelected{Month: m})
}

// SetRange cambia el rango/veterinario y recarga (aplicar filtros).
func (o *Orchestrator) SetRange(ctx context.Context, r appointments.DateRange, veterinarianID *int64) error {
	if r.Start.IsZero() || r.End.IsZero() {
		return appointments.ErrInvalidInput
	}
	r = appointments.DateRange{Start: appointments.DateOf(r.Start), End: appointments.DateOf(r.End)}
	if r.End.Before(r.Start) {
		return appointments.ErrInvalidInput
	}
	o.dispatch(RangeChanged{Range: r, VeterinarianID: veterinarianID})
	return o.Refresh(ctx)
}

// ResetFilters vuelve al rango por defecto, sin veterinario, y recarga.
func (o *Orchestrator) ResetFilters(ctx context.Context) error {
	o.dispatch(RangeChanged{Range: appointments.DefaultRange(o.now())})
	return o.Refresh(ctx)
}

func (o *Orchestrator) DismissNotice() State { return o.dispatch(NoticeDismissed{}) }

// Confirm confirma la cita id (nota por defecto).
func (o *Orchestrator) Confirm(ctx context.Context, id appointments.ID) error {
	return o.mutate(ctx, "confirm", id, func(ctx context.Context, cur appointments.Appointment) error {
		_, err := o.svc.Confirm(ctx, cur)
		return err
	})
}

// Cancel cancela la cita id tras la confirmación de gate.
func (o *Orchestrator) Cancel(ctx context.Context, id appointments.ID, gate appointments.ConfirmationGate) error {
	return o.mutate(ctx, "cancel", id, func(ctx context.Context, cur appointments.Appointment) error {
		return o.svc.Cancel(ctx, cur, gate)
	})
}

func (o *Orchestrator) ChangeStatus(ctx context.Context, id appointments.ID, change appointments.StatusChange) error {
	return o.mutate(ctx, "change_status", id, func(ctx context.Context, cur appointments.Appointment) error {
		_, err := o.svc.ChangeStatus(ctx, cur, change)
		return err
	})
}

// Create agenda una cita nueva y recarga.
func (o *Orchestrator) Create(ctx context.Context, in appointments.CreateRequest) (appointments.Detail, error) {
	o.dispatch(MutationStarted{})
	d, err := o.svc.Create(ctx, in)
	if err != nil {
		o.fail("create", err)
		return appointments.Detail{}, err
	}
	o.succeed(ctx, "create")
	return d, nil
}

// OpenReschedule abre el borrador precargado con la fecha/hora actuales.
func (o *Orchestrator) OpenReschedule(id appointments.ID) (RescheduleDraft, error) {
	if !id.IsPersisted() {
		return RescheduleDraft{}, appointments.ErrNotPersisted
	}
	cur, ok := o.State().Find(id)
	if !ok {
		return RescheduleDraft{}, appointments.ErrNotFound
	}
	d := RescheduleDraft{
		AppointmentID: id,
		Date:          cur.Date,
		Time:          cur.Time,
	}
	o.dispatch(RescheduleOpened{Draft: d})
	return d, nil
}

// UpdateReschedule edita los campos del borrador abierto.
// Fecha cero u hora vacía conservan el valor actual; el motivo siempre se reemplaza.
func (o *Orchestrator) UpdateReschedule(date time.Time, hour, reason string) (RescheduleDraft, error) {
	cur := o.State().Reschedule
	if cur == nil {
		return RescheduleDraft{}, ErrNoDraft
	}
	next := *cur
	if !date.IsZero() {
		next.Date = appointments.DateOf(date)
	}
	if hour != "" {
		next.Time = hour
	}
	next.Reason = reason

	st := o.dispatch(RescheduleEdited{Draft: next})
	if st.Reschedule == nil {
		return RescheduleDraft{}, ErrNoDraft
	}
	return *st.Reschedule, nil
}

// CloseReschedule descarta el borrador (cierre explícito del modal).
func (o *Orchestrator) CloseReschedule() State { return o.dispatch(RescheduleClosed{}) }

// SubmitReschedule envía el borrador. En éxito se limpia; en fallo se conserva.
func (o *Orchestrator) SubmitReschedule(ctx context.Context) error {
	draft := o.State().Reschedule
	if draft == nil {
		return ErrNoDraft
	}
	d := *draft

	return o.mutate(ctx, "reschedule", d.AppointmentID, func(ctx context.Context, cur appointments.Appointment) error {
		date := d.Date
		hour := d.Time
		_, err := o.svc.Reschedule(ctx, cur, appointments.RescheduleRequest{
			Date:   &date,
			Time:   &hour,
			Reason: d.Reason,
		})
		if err == nil {
			o.dispatch(RescheduleClosed{})
		}
		return err
	})
}

// mutate corre fn sobre la cita cacheada id. El chequeo de ID persistido va
// antes de cualquier otra cosa (no hay round trip).
func (o *Orchestrator) mutate(ctx context.Context, op string, id appointments.ID, fn func(context.Context, appointments.Appointment) error) error {
	if !id.IsPersisted() {
		o.metrics.ObserveMutation(op, "rejected")
		return appointments.ErrNotPersisted
	}
	cur, ok := o.State().Find(id)
	if !ok {
		o.metrics.ObserveMutation(op, "rejected")
		return appointments.ErrNotFound
	}

	o.dispatch(MutationStarted{})
	if err := fn(ctx, cur.Appointment); err != nil {
		o.fail(op, err)
		return err
	}
	o.succeed(ctx, op)
	return nil
}

func (o *Orchestrator) fail(op string, err error) {
	outcome := "error"
	if appointments.IsRejection(err) || errors.Is(err, appointments.ErrCancelDeclined) {
		outcome = "rejected"
	}
	o.metrics.ObserveMutation(op, outcome)
	o.log.Warn("agenda mutation failed", map[string]any{"op": op, "error": err})
	o.dispatch(MutationFailed{Notice: failureNotice(op, err)})
}

// succeed publica el aviso y recarga la colección entera (sin parche optimista).
func (o *Orchestrator) succeed(ctx context.Context, op string) {
	o.metrics.ObserveMutation(op, "ok")
	o.dispatch(MutationSucceeded{Notice: successNotice(op)})
	if err := o.Reload(ctx); err != nil {
		o.log.Warn("agenda reload after mutation failed", map[string]any{"op": op, "error": err})
	}
}

func successNotice(op string) string {
	switch op {
	case "confirm":
		return "Cita confirmada exitosamente"
	case "cancel":
		return "Cita cancelada exitosamente"
	case "reschedule":
		return "Cita reprogramada exitosamente"
	case "create":
		return "Cita agendada exitosamente"
	default:
		return "Estado de la cita actualizado"
	}
}

func failureNotice(op string, err error) string {
	if errors.Is(err, appointments.ErrCancelDeclined) {
		return "Cancelación descartada"
	}
	switch op {
	case "confirm":
		return "No se pudo confirmar la cita. Error: " + appointments.RejectionMessage(err)
	case "cancel":
		return "No se pudo cancelar la cita. Intenta nuevamente."
	case "reschedule":
		return "No se pudo reprogramar la cita. Intenta nuevamente."
	case "create":
		return "No se pudo agendar la cita. Error: " + appointments.RejectionMessage(err)
	default:
		return "No se pudo actualizar la cita. Error: " + appointments.RejectionMessage(err)
	}
}
