package auth

import "errors"

// Errores que cualquier Authenticator debe devolver (envueltos o no)
// para que los handlers los traduzcan a HTTP.
var (
	ErrUnauthorized = errors.New("invalid credentials")
	ErrRejected     = errors.New("auth service rejected request")
	ErrUpstream     = errors.New("auth service upstream error")
)
