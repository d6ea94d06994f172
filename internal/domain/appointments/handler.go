package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/veterinarians", listVeterinariansHandler(svc))
	r.Get("/appointments/availability", availabilityHandler(svc))
}

type veterinarianResponse struct {
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
}

type availabilityResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

// listVeterinariansHandler godoc
// @Summary Listar veterinarios
// @Description Catálogo de veterinarios para filtrar el calendario y asignar citas.
// @Tags appointments
// @Produce json
// @Success 200 {array} veterinarianResponse
// @Failure 502 {string} string "directory unreachable"
// @Router /veterinarians [get]
func listVeterinariansHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Veterinarians(r.Context())
		if err != nil {
			http.Error(w, ErrorText(err), StatusCode(err))
			return
		}

		out := make([]veterinarianResponse, 0, len(items))
		for _, v := range items {
			out = append(out, veterinarianResponse{UserID: v.UserID, Name: v.Name, Specialty: v.Specialty})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// availabilityHandler godoc
// @Summary Consultar disponibilidad
// @Description Pregunta al Directorio si la franja fecha/hora (y veterinario opcional) está libre.
// @Tags appointments
// @Produce json
// @Param date query string true "Fecha YYYY-MM-DD"
// @Param time query string true "Hora HH:MM"
// @Param veterinarian_id query int false "ID del veterinario"
// @Success 200 {object} availabilityResponse
// @Failure 400 {string} string "parámetros inválidos"
// @Failure 502 {string} string "directory unreachable"
// @Router /appointments/availability [get]
func availabilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		d, err := ParseDate(q.Get("date"))
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		vetID, err := ParseOptionalID(q.Get("veterinarian_id"))
		if err != nil {
			http.Error(w, "veterinarian_id must be a positive integer", http.StatusBadRequest)
			return
		}

		av, err := svc.CheckAvailability(r.Context(), AvailabilityQuery{
			Date:               d,
			Time:               q.Get("time"),
			VeterinarianUserID: vetID,
		})
		if err != nil {
			http.Error(w, ErrorText(err), StatusCode(err))
			return
		}

		writeJSON(w, http.StatusOK, availabilityResponse{Available: av.Available, Message: av.Message})
	}
}

// StatusCode traduce errores del dominio a códigos HTTP.
func StatusCode(err error) int {
	var rej *RejectionError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotPersisted):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrCancelDeclined):
		return http.StatusConflict
	case errors.Is(err, ErrAttendedBeforeCompletion), errors.As(err, &rej):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorText devuelve un texto seguro para el cliente.
func ErrorText(err error) string {
	if StatusCode(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return RejectionMessage(err)
}

// ParseOptionalID: "" => nil.
func ParseOptionalID(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return nil, ErrInvalidInput
	}
	return &v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
