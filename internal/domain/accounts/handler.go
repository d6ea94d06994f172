package accounts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"vet-appointments/internal/ports/auth"
)

// Sessions se limpia en cada login para que la agenda arranque de cero.
type Sessions interface {
	Drop(userID string)
}

func RegisterRoutes(r chi.Router, authn auth.Authenticator, sessions Sessions) {
	r.Post("/auth/login", loginHandler(authn, sessions))
	r.Post("/auth/register", registerHandler(authn))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// loginHandler godoc
// @Summary Login
// @Description Delegado al servicio de autenticación de la clínica.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credenciales"
// @Success 200 {object} sessionResponse
// @Failure 401 {string} string "invalid credentials"
// @Failure 502 {string} string "auth service unreachable"
// @Router /auth/login [post]
func loginHandler(authn auth.Authenticator, sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authn == nil {
			http.Error(w, "auth service not configured", http.StatusServiceUnavailable)
			return
		}
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		s, err := authn.Login(r.Context(), auth.Credentials{Username: req.Username, Password: req.Password})
		if err != nil {
			writeAuthError(w, err)
			return
		}
		if sessions != nil && s.User.ID != "" {
			sessions.Drop(s.User.ID)
		}
		writeJSON(w, http.StatusOK, toSessionResponse(s))
	}
}

// registerHandler godoc
// @Summary Registro
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "Datos del usuario"
// @Success 201 {object} sessionResponse
// @Failure 400 {string} string "datos inválidos"
// @Failure 422 {string} string "rechazado por el servicio"
// @Router /auth/register [post]
func registerHandler(authn auth.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authn == nil {
			http.Error(w, "auth service not configured", http.StatusServiceUnavailable)
			return
		}
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" ||
			strings.TrimSpace(req.Username) == "" || req.Password == "" {
			http.Error(w, "name, email, username and password are required", http.StatusBadRequest)
			return
		}

		s, err := authn.Register(r.Context(), auth.Registration{
			Name:     req.Name,
			Phone:    req.Phone,
			Email:    req.Email,
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			writeAuthError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSessionResponse(s))
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrRejected):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "auth service unreachable", http.StatusBadGateway)
	}
}

func toSessionResponse(s auth.Session) sessionResponse {
	return sessionResponse{
		User: userResponse{
			ID:       s.User.ID,
			Name:     s.User.Name,
			Email:    s.User.Email,
			Username: s.User.Username,
		},
		Token: s.Token,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
