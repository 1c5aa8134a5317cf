// Package policy implementa el motor de decisiones de acceso.
//
// Toda verificación de rol del sistema pasa por Engine.Evaluate: los
// servicios de ciclo de vida no comparan roles por su cuenta. El motor es
// una función pura sin I/O; recibe el perfil del caller, la operación y los
// atributos conocidos del recurso, y produce Permitir, PermitirFiltrado
// (con el alcance forzado) o Denegar.
package policy

import "github.com/sisvantec/sisvantec/internal/domain"

// Engine evalúa perfil × operación × recurso.
type Engine struct {
	// RestringirEliminarTramites limita la eliminación permanente de
	// trámites a superadmin. El comportamiento heredado no restringe esa
	// operación por rol (a diferencia de formularios); el flag lo hace
	// explícito y configurable. Default false: se preserva lo heredado.
	RestringirEliminarTramites bool
}

// Evaluate aplica las reglas en orden de precedencia; gana la primera que
// coincide. Sin regla aplicable, deniega.
func (e *Engine) Evaluate(p Perfil, op Operacion, rec Recurso, obj Objetivo) Decision {
	// Regla 1: superadmin pasa siempre.
	if p.Rol == domain.RolSuperadmin {
		return permitir()
	}

	switch rec {
	case RecursoUsuarios:
		return e.evaluarUsuarios(p, op, obj)
	case RecursoFormularios:
		return e.evaluarFormularios(p, op, obj)
	case RecursoTramites:
		return e.evaluarTramites(p, op, obj)
	}

	return denegar("sin política aplicable")
}

// Regla 2: el recurso usuarios es exclusivo de superadmin, salvo la lectura
// del propio perfil.
func (e *Engine) evaluarUsuarios(p Perfil, op Operacion, obj Objetivo) Decision {
	if op == OpLeer && !p.EsAnonimo() && obj.PropietarioUID == p.UID {
		return permitir()
	}
	return denegar("gestión de usuarios reservada a superadmin")
}

// Regla 3: formularios.
func (e *Engine) evaluarFormularios(p Perfil, op Operacion, obj Objetivo) Decision {
	switch op {
	case OpCrear:
		// Solo staff crea. El municipio de un admin se fuerza al suyo:
		// el valor declarado por el caller se sobreescribe en silencio.
		if p.Rol == domain.RolAdmin {
			return permitirFiltrado(Alcance{Municipio: p.Municipio})
		}
		return denegar("crear formularios requiere rol admin o superadmin")

	case OpListar:
		if p.Rol == domain.RolAdmin {
			return permitirFiltrado(Alcance{Municipio: p.Municipio})
		}
		// Usuarios y anónimos listan; el servicio estrecha a activos
		// en la capa de datos.
		return permitir()

	case OpLeer:
		if p.Rol == domain.RolAdmin {
			if obj.Municipio != "" && obj.Municipio != p.Municipio {
				return denegar("formulario de otro municipio")
			}
			return permitir()
		}
		// El detalle de un formulario inactivo se niega a no-staff.
		if obj.Activo != nil && !*obj.Activo {
			return denegar("formulario inactivo")
		}
		return permitir()

	case OpActualizar, OpDesactivar:
		if p.Rol == domain.RolAdmin {
			if obj.Municipio != "" && obj.Municipio != p.Municipio {
				return denegar("formulario de otro municipio")
			}
			return permitir()
		}
		return denegar("modificar formularios requiere rol admin o superadmin")

	case OpEliminar:
		return denegar("eliminación permanente reservada a superadmin")
	}

	return denegar("sin política aplicable")
}

// Regla 4: trámites.
func (e *Engine) evaluarTramites(p Perfil, op Operacion, obj Objetivo) Decision {
	if p.EsAnonimo() {
		return denegar("se requiere autenticación")
	}

	switch op {
	case OpCrear:
		// Cualquier rol autenticado crea; el submitter se fuerza al
		// perfil (sobreescritura silenciosa de lo declarado).
		return permitirFiltrado(Alcance{UsuarioID: p.UID})

	case OpListar:
		if p.Rol == domain.RolAdmin {
			return permitirFiltrado(Alcance{Municipio: p.Municipio})
		}
		return permitirFiltrado(Alcance{UsuarioID: p.UID})

	case OpLeer:
		if p.Rol == domain.RolAdmin {
			if obj.Municipio != "" && obj.Municipio != p.Municipio {
				return denegar("trámite de otro municipio")
			}
			return permitir()
		}
		if obj.PropietarioUID != "" && obj.PropietarioUID != p.UID {
			return denegar("trámite de otro usuario")
		}
		return permitir()

	case OpActualizar:
		if p.Rol == domain.RolAdmin {
			if obj.Municipio != "" && obj.Municipio != p.Municipio {
				return denegar("trámite de otro municipio")
			}
			return permitir()
		}
		return denegar("actualizar trámites requiere rol admin o superadmin")

	case OpEliminar:
		if e.RestringirEliminarTramites {
			return denegar("eliminación permanente reservada a superadmin")
		}
		return permitir()

	case OpEstadisticas:
		if p.Rol == domain.RolAdmin {
			return permitirFiltrado(Alcance{Municipio: p.Municipio})
		}
		return denegar("estadísticas reservadas a staff")
	}

	return denegar("sin política aplicable")
}
