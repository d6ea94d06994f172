package auth

// Role del usuario autenticado.
type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "staff"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
	// ClientID != nil => el usuario es dueño de mascotas (scope "mis citas").
	ClientID *int64
}

// IsClient indica si las citas se listan por cliente.
func (c Claims) IsClient() bool {
	return c.ClientID != nil && *c.ClientID > 0
}

// User es el perfil que devuelve el servicio de autenticación.
type User struct {
	ID       string
	Name     string
	Email    string
	Username string
}

// Session es el resultado de login/register.
type Session struct {
	User  User
	Token string
}

type Credentials struct {
	Username string
	Password string
}

type Registration struct {
	Name     string
	Phone    string
	Email    string
	Username string
	Password string
}
