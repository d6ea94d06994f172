package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Authenticator delega login/registro en el servicio de identidad.
type Authenticator interface {
	Login(ctx context.Context, in Credentials) (Session, error)
	Register(ctx context.Context, in Registration) (Session, error)
}
