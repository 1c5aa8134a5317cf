// Package domain define las entidades del sistema de trámites municipales
// y sus invariantes.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Rol es la enumeración cerrada de roles del sistema.
type Rol string

const (
	RolSuperadmin Rol = "superadmin"
	RolAdmin      Rol = "admin"
	RolUsuario    Rol = "usuario"

	// RolAnonimo representa un caller sin autenticar. Nunca se persiste;
	// solo existe en perfiles derivados por request.
	RolAnonimo Rol = ""
)

// Valido reporta si el rol es uno de los roles persistibles.
func (r Rol) Valido() bool {
	switch r {
	case RolSuperadmin, RolAdmin, RolUsuario:
		return true
	}
	return false
}

// EsStaff reporta si el rol tiene privilegios de gestión (admin o superadmin).
func (r Rol) EsStaff() bool {
	return r == RolAdmin || r == RolSuperadmin
}

// Estado de un trámite dentro del flujo de revisión.
type Estado string

const (
	EstadoPendiente  Estado = "pendiente"
	EstadoEnRevision Estado = "en_revision"
	EstadoAprobado   Estado = "aprobado"
	EstadoRechazado  Estado = "rechazado"
)

// Valido reporta si el estado pertenece a la enumeración.
func (e Estado) Valido() bool {
	switch e {
	case EstadoPendiente, EstadoEnRevision, EstadoAprobado, EstadoRechazado:
		return true
	}
	return false
}

// TiposDeCampo son los tipos admitidos para campos de formulario.
var TiposDeCampo = []string{"text", "number", "email", "date", "select", "textarea", "checkbox"}

// TipoDeCampoValido reporta si el tipo está en la enumeración.
func TipoDeCampoValido(tipo string) bool {
	for _, t := range TiposDeCampo {
		if t == tipo {
			return true
		}
	}
	return false
}

// Usuario es una cuenta autenticable.
//
// Invariante: Rol == admin ⟺ Municipio != "". Los usuarios nunca se
// eliminan físicamente; "eliminar" es Activo=false.
type Usuario struct {
	UID            string     `json:"uid"`
	Email          string     `json:"email"`
	Nombre         string     `json:"nombre"`
	Rol            Rol        `json:"rol"`
	Municipio      string     `json:"municipio,omitempty"`
	Activo         bool       `json:"activo"`
	CreadoEn       time.Time  `json:"creadoEn"`
	UltimoAcceso   *time.Time `json:"ultimoAcceso,omitempty"`
	HashContrasena string     `json:"-"`
}

// Validate verifica los invariantes del usuario. Se aplica en creación y
// en cada actualización sobre el estado resultante.
func (u *Usuario) Validate() error {
	if !u.Rol.Valido() {
		return fmt.Errorf("%w: rol inválido %q", ErrValidation, u.Rol)
	}
	if u.Rol == RolAdmin && strings.TrimSpace(u.Municipio) == "" {
		return fmt.Errorf("%w: los administradores deben tener un municipio asignado", ErrValidation)
	}
	if u.Rol != RolAdmin && u.Municipio != "" {
		return fmt.Errorf("%w: solo los administradores llevan municipio", ErrValidation)
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: email obligatorio", ErrValidation)
	}
	return nil
}

// Campo describe un campo de un formulario.
type Campo struct {
	Nombre    string `json:"nombre"`
	Tipo      string `json:"tipo"`
	Etiqueta  string `json:"etiqueta"`
	Requerido bool   `json:"requerido"`
}

// Formulario es una plantilla de trámite asociada a un municipio.
type Formulario struct {
	ID            string    `json:"id"`
	Titulo        string    `json:"titulo"`
	Descripcion   string    `json:"descripcion,omitempty"`
	Campos        []Campo   `json:"campos"`
	Activo        bool      `json:"activo"`
	Municipio     string    `json:"municipio"`
	CreadoPor     string    `json:"creadoPor"`
	CreadoEn      time.Time `json:"creadoEn"`
	ActualizadoEn time.Time `json:"actualizadoEn"`
}

// Tramite es la respuesta de un ciudadano a un formulario.
//
// FormularioTitulo y Municipio se copian del formulario al momento de la
// creación y no se recalculan nunca: los trámites son registros históricos.
type Tramite struct {
	ID               string         `json:"id"`
	FormularioID     string         `json:"formularioId"`
	FormularioTitulo string         `json:"formularioTitulo"`
	Municipio        string         `json:"municipio"`
	UsuarioID        string         `json:"usuarioId"`
	UsuarioNombre    string         `json:"usuarioNombre,omitempty"`
	Respuestas       map[string]any `json:"respuestas"`
	Estado           Estado         `json:"estado"`
	Comentarios      string         `json:"comentarios"`
	CreadoEn         time.Time      `json:"creadoEn"`
	ActualizadoEn    time.Time      `json:"actualizadoEn"`
}

// Estadisticas agrupa conteos de trámites por estado.
type Estadisticas struct {
	Total      int `json:"total"`
	Pendientes int `json:"pendientes"`
	EnRevision int `json:"enRevision"`
	Aprobados  int `json:"aprobados"`
	Rechazados int `json:"rechazados"`
}
