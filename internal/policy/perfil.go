package policy

import "github.com/sisvantec/sisvantec/internal/domain"

// Perfil es la identidad de autorización derivada por request.
// Nunca se persiste: se construye a partir del Usuario verificado por el
// gateway de identidad, o queda anónimo si no hay credencial.
type Perfil struct {
	UID       string
	Rol       domain.Rol
	Municipio string
}

// Anonimo es el perfil de un caller sin autenticar.
var Anonimo = Perfil{}

// PerfilDe deriva el perfil de autorización de un usuario verificado.
// Un usuario nil produce el perfil anónimo.
func PerfilDe(u *domain.Usuario) Perfil {
	if u == nil {
		return Anonimo
	}
	return Perfil{UID: u.UID, Rol: u.Rol, Municipio: u.Municipio}
}

// EsAnonimo reporta si el perfil no tiene identidad verificada.
func (p Perfil) EsAnonimo() bool {
	return p.UID == ""
}

// EsStaff reporta si el perfil tiene rol de gestión.
func (p Perfil) EsStaff() bool {
	return p.Rol.EsStaff()
}
