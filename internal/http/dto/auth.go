package dto

import (
	"time"

	"github.com/sisvantec/sisvantec/internal/domain"
)

// LoginRequest es el body de POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse acompaña un login exitoso dentro del envelope.
type LoginResponse struct {
	Token   string          `json:"token"`
	Usuario UsuarioResponse `json:"usuario"`
}

// RegistroRequest es el body de POST /api/auth/registro (solo superadmin).
// Rol vacío crea una cuenta con rol usuario.
type RegistroRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Nombre    string `json:"nombre"`
	Rol       string `json:"rol"`
	Municipio string `json:"municipio"`
}

// ActualizarUsuarioRequest es el body de PUT /api/auth/usuarios/{uid}.
type ActualizarUsuarioRequest struct {
	Nombre    *string `json:"nombre"`
	Rol       *string `json:"rol"`
	Municipio *string `json:"municipio"`
	Activo    *bool   `json:"activo"`
}

// UsuarioResponse es la vista pública de una cuenta. Nunca incluye el hash
// de contraseña.
type UsuarioResponse struct {
	UID          string     `json:"uid"`
	Email        string     `json:"email"`
	Nombre       string     `json:"nombre"`
	Rol          string     `json:"rol"`
	Municipio    string     `json:"municipio,omitempty"`
	Activo       bool       `json:"activo"`
	CreadoEn     time.Time  `json:"creadoEn"`
	UltimoAcceso *time.Time `json:"ultimoAcceso,omitempty"`
}

// DesdeUsuario proyecta la entidad a su vista pública.
func DesdeUsuario(u *domain.Usuario) UsuarioResponse {
	return UsuarioResponse{
		UID:          u.UID,
		Email:        u.Email,
		Nombre:       u.Nombre,
		Rol:          string(u.Rol),
		Municipio:    u.Municipio,
		Activo:       u.Activo,
		CreadoEn:     u.CreadoEn,
		UltimoAcceso: u.UltimoAcceso,
	}
}

// DesdeUsuarios proyecta un listado de cuentas.
func DesdeUsuarios(us []domain.Usuario) []UsuarioResponse {
	out := make([]UsuarioResponse, 0, len(us))
	for i := range us {
		out = append(out, DesdeUsuario(&us[i]))
	}
	return out
}
