package agenda

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/middleware"
)

// Handler expone la agenda del usuario autenticado.
type Handler struct {
	registry *Registry
	now      func() time.Time
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry, now: time.Now}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/agenda", func(ar chi.Router) {
		ar.Get("/", h.getState)
		ar.Post("/reload", h.reload)
		ar.Put("/filter", h.setFilter)
		ar.Put("/view", h.setView)
		ar.Post("/month/{direction}", h.shiftMonth)
		ar.Put("/range", h.setRange)
		ar.Delete("/range", h.resetRange)
		ar.Get("/calendar", h.getCalendar)

		ar.Post("/appointments", h.create)
		ar.Post("/appointments/{id}/confirm", h.confirm)
		ar.Post("/appointments/{id}/cancel", h.cancel)
		ar.Put("/appointments/{id}/status", h.changeStatus)

		ar.Post("/reschedule", h.openReschedule)
		ar.Put("/reschedule", h.updateReschedule)
		ar.Delete("/reschedule", h.closeReschedule)
		ar.Post("/reschedule/submit", h.submitReschedule)
	})
}

type filterRequest struct {
	Status string `json:"status"`
}

type viewRequest struct {
	Mode ViewMode `json:"mode"`
}

type rangeRequest struct {
	Start          string `json:"start"` // YYYY-MM-DD
	End            string `json:"end"`   // YYYY-MM-DD
	VeterinarianID *int64 `json:"veterinarian_id"`
}

type createRequest struct {
	ClientID           int64    `json:"client_id"`
	PetID              int64    `json:"pet_id"`
	ServiceID          int64    `json:"service_id"`
	VeterinarianUserID *int64   `json:"veterinarian_user_id"`
	Date               string   `json:"date"`
	Time               string   `json:"time"`
	Reason             string   `json:"reason"`
	Symptoms           string   `json:"symptoms"`
	PriorDiagnosis     string   `json:"prior_diagnosis"`
	PriorTreatments    []string `json:"prior_treatments"`
	AdditionalNotes    string   `json:"additional_notes"`
}

type cancelRequest struct {
	// Confirm es la respuesta del usuario a CancelPrompt.
	Confirm bool `json:"confirm"`
}

type statusRequest struct {
	Status   string `json:"status"` // scheduled|confirmed|... o la etiqueta en español
	Notes    string `json:"notes"`
	Attended *bool  `json:"attended"`
}

type openRescheduleRequest struct {
	AppointmentID int64 `json:"appointment_id"`
}

type updateRescheduleRequest struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

// session resuelve el orquestador del usuario; la primera vez hace el refresh inicial.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Orchestrator, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	o, created := h.registry.Get(claims)
	if created {
		// los errores de carga quedan reflejados en el estado
		_ = o.Refresh(r.Context())
		if !claims.IsClient() {
			_ = o.LoadVeterinarians(r.Context())
		}
	}
	return o, true
}

func (h *Handler) writeState(w http.ResponseWriter, status int, o *Orchestrator) {
	writeJSON(w, status, toStateResponse(o.State(), h.now()))
}

// getState godoc
// @Summary Estado de la agenda
// @Description Foto actual de la agenda del usuario (colección, filtro, resumen, calendario).
// @Tags agenda
// @Produce json
// @Success 200 {object} stateResponse
// @Failure 401 {string} string "unauthorized"
// @Router /agenda [get]
func (h *Handler) getState(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeState(w, http.StatusOK, o)
}

// reload godoc
// @Summary Recargar agenda
// @Description Vuelve a pedir la colección (y estadísticas en vista staff). Un fallo queda en error_message.
// @Tags agenda
// @Produce json
// @Success 200 {object} stateResponse
// @Router /agenda/reload [post]
func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	_ = o.Refresh(r.Context())
	h.writeState(w, http.StatusOK, o)
}

// setFilter godoc
// @Summary Filtrar por estado
// @Tags agenda
// @Accept json
// @Produce json
// @Param body body filterRequest true "all|scheduled|confirmed|cancelled|completed"
// @Success 200 {object} stateResponse
// @Failure 400 {string} string "filtro inválido"
// @Router /agenda/filter [put]
func (h *Handler) setFilter(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := o.SetFilter(strings.TrimSpace(req.Status)); err != nil {
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}
	h.writeState(w, http.StatusOK, o)
}

// setView godoc
// @Summary Cambiar vista
// @Tags agenda
// @Accept json
// @Produce json
// @Param body body viewRequest true "list|calendar"
// @Success 200 {object} stateResponse
// @Router /agenda/view [put]
func (h *Handler) setView(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := o.SetViewMode(req.Mode); err != nil {
		http.Error(w, "mode must be list or calendar", http.StatusBadRequest)
		return
	}
	h.writeState(w, http.StatusOK, o)
}

// shiftMonth godoc
// @Summary Mes anterior / siguiente
// @Tags agenda
// @Produce json
// @Param direction path string true "previous|next"
// @Success 200 {object} calendarResponse
// @Router /agenda/month/{direction} [post]
func (h *Handler) shiftMonth(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	var st State
	switch chi.URLParam(r, "direction") {
	case "previous", "prev":
		st = o.PreviousMonth()
	case "next":
		st = o.NextMonth()
	default:
		http.Error(w, "direction must be previous or next", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarResponse(st.Month, st.Calendar, h.now()))
}

// getCalendar godoc
// @Summary Grilla del mes
// @Description 6 semanas x 7 días con las citas de cada día.
// @Tags agenda
// @Produce json
// @Success 200 {object} calendarResponse
// @Router /agenda/calendar [get]
func (h *Handler) getCalendar(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	st := o.State()
	writeJSON(w, http.StatusOK, toCalendarResponse(st.Month, st.Calendar, h.now()))
}

// setRange godoc
// @Summary Aplicar filtros de rango
// @Tags agenda
// @Accept json
// @Produce json
// @Param body body rangeRequest true "Rango y veterinario opcional"
// @Success 200 {object} stateResponse
// @Failure 400 {string} string "rango inválido"
// @Router /agenda/range [put]
func (h *Handler) setRange(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	var req rangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	start, err1 := appointments.ParseDate(req.Start)
	end, err2 := appointments.ParseDate(req.End)
	if err1 != nil || err2 != nil {
		http.Error(w, "start and end must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	err := o.SetRange(r.Context(), appointments.DateRange{Start: start, End: end}, req.VeterinarianID)
	if errors.Is(err, appointments.ErrInvalidInput) {
		http.Error(w, "end must not be before start", http.StatusBadRequest)
		return
	}
	h.writeState(w, http.StatusOK, o)
}

// resetRange godoc
// @Summary Limpiar filtros
// @Description Vuelve al rango por defecto (hoy + 7 días) sin veterinario.
// @Tags agenda
// @Produce json
// @Success 200 {object} stateResponse
// @Router /agenda/range [delete]
func (h *Handler) resetRange(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	_ = o.ResetFilters(r.Context())
	h.writeState(w, http.StatusOK, o)
}

// create godoc
// @Summary Agendar cita
// @Tags agenda
// @Accept json
// @Produce json
// @Param body body createRequest true "Cita"
// @Success 201 {object} stateResponse
// @Failure 400 {string} string "datos inválidos"
// @Failure 422 {string} string "rechazada por el Directorio"
// @Router /agenda/appointments [post]
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	d, err := appointments.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	clientID := req.ClientID
	if cid := o.State().ClientID; cid != nil {
		// un cliente solo agenda para sí mismo
		clientID = *cid
	}

	_, err = o.Create(r.Context(), appointments.CreateRequest{
		ClientID:           clientID,
		PetID:              req.PetID,
		ServiceID:          req.ServiceID,
		VeterinarianUserID: req.VeterinarianUserID,
		Date:               d,
		Time:               req.Time,
		Reason:             req.Reason,
		Symptoms:           req.Symptoms,
		PriorDiagnosis:     req.PriorDiagnosis,
		PriorTreatments:    req.PriorTreatments,
		AdditionalNotes:    req.AdditionalNotes,
	})
	if err != nil {
		http.Error(w, appointments.ErrorText(err), appointments.StatusCode(err))
		return
	}
	h.writeState(w, http.StatusCreated, o)
}

// confirm godoc
// @Summary Confirmar cita
// @Tags agenda
// @Produce json
// @Param id path int true "ID de la cita"
// @Success 200 {object} stateResponse
// @Failure 400 {string} string "id inválido"
// @Failure 409 {string} string "transición inválida"
// @Router /agenda/appointments/{id}/confirm [post]
func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	if err := o.Confirm(r.Context(), id); err != nil {
		http.Error(w, appointments.ErrorText(err), appointments.StatusCode(err))
		return
	}
	h.writeState(w, http.StatusOK, o)
}

// cancel godoc
// @Summary Cancelar cita
// @Description Requiere confirm=true (respuesta a "¿Estás seguro de que deseas cancelar esta cita?").
// @Tags agenda
// @Accept json
// @Produce json
// @Param id path int true "ID de la cita"
// @Param body body cancelRequest true "Confirmación"
// @Success 200 {object} stateResponse
// @Failure 409 {string} string "cancelación no confirmada o transición inválida"
// @Router /agenda/appointments/{id}/cancel [post]
func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := o.Cancel(r.Context(), id, appointments.Answer(req.Confirm)); err != nil {
		http.Error(w, appointments.ErrorText(err), appointments.StatusCode(err))
		return
	}
	h.writeState(w, http.StatusOK, o)
}

// changeStatus godoc
// @Summary Cambiar estado
// @Tags agenda
// @Accept json
// @Produce json
// @Param id path int true "ID de la cita"
// @Param body body statusRequest true "Nuevo estado"
// @Success 200 {object} stateResponse
// @Failure 409 {string} string "transición inválida"
// @Failure 422 {string} string "asistencia antes de completar"
// @Router /agenda/appointments/{id}/status [put]
func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	status, ok := appointments.ParseStatusLabel(req.Status)
	if !ok {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}
	err := o.ChangeStatus(r.Context(), id, appointments.StatusChange{
		Status:   status,
		Notes:    req.Notes,
		Attended: req.Attended,
	})
	if err != nil {
		http.Error(w, appointments.ErrorText(err), appointments.StatusCode(err))
		return
	}
	h.writeState(w, http.StatusOK, o)
}

// openReschedule godoc
// @Summary Abrir reprogramación
// @Tags agenda
// @Accept json
// @Produce json
// @Param body body openRescheduleRequest true "Cita a reprogramar"
// @Success 200 {object} stateResponse
// @Router /agenda/reschedule [post]
func (h *Handler) openReschedule(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	var req openRescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if _, err := o.OpenReschedule(appointments.ID(req.AppointmentID)); err != nil {
		http.Error(w, appointments.ErrorText(err), appointments.StatusCode(err))
		return
	}
	h.writeState(w, http.StatusOK, o)
}

// updateReschedule godoc
// @Summary Editar reprogramación
// @Tags agenda
// @Accept json
// @Produce json
// @Param body body updateRescheduleRequest true "Nueva fecha/hora/motivo"
// @Success 200 {object} stateResponse
// @Failure 409 {string} string "no hay reprogramación abierta"
// @Router /agenda/reschedule [put]
func (h *Handler) updateReschedule(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	var req updateRescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	var d time.Time
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := appointments.ParseDate(req.Date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		d = parsed
	}
	if _, err := o.UpdateReschedule(d, strings.TrimSpace(req.Time), req.Reason); err != nil {
		http.Error(w, "no reschedule in progress", http.StatusConflict)
		return
	}
	h.writeState(w, http.StatusOK, o)
}

// closeReschedule godoc
// @Summary Cerrar reprogramación
// @Tags agenda
// @Produce json
// @Success 200 {object} stateResponse
// @Router /agenda/reschedule [delete]
func (h *Handler) closeReschedule(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	o.CloseReschedule()
	h.writeState(w, http.StatusOK, o)
}

// submitReschedule godoc
// @Summary Enviar reprogramación
// @Tags agenda
// @Produce json
// @Success 200 {object} stateResponse
// @Failure 409 {string} string "no hay reprogramación abierta o transición inválida"
// @Router /agenda/reschedule/submit [post]
func (h *Handler) submitReschedule(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	err := o.SubmitReschedule(r.Context())
	switch {
	case errors.Is(err, ErrNoDraft):
		http.Error(w, "no reschedule in progress", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, appointments.ErrorText(err), appointments.StatusCode(err))
		return
	}
	h.writeState(w, http.StatusOK, o)
}

func appointmentID(w http.ResponseWriter, r *http.Request) (appointments.ID, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "id must be an integer", http.StatusBadRequest)
		return 0, false
	}
	// id <= 0 llega al orquestador, que lo rechaza sin round trip
	return appointments.ID(v), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
