package policy

import "github.com/sisvantec/sisvantec/internal/domain"

// Filtros cerrados por clase de recurso. Reemplazan los mapas abiertos de
// filtros por variantes tipadas: el alcance forzado por la política solo
// puede tocar los campos declarados aquí, y una combinación siempre
// resuelve a favor del valor forzado.

// UsuarioFilter restringe listados de usuarios.
type UsuarioFilter struct {
	Rol       domain.Rol
	Municipio string
	Activo    *bool
}

// FormularioFilter restringe listados de formularios.
type FormularioFilter struct {
	Municipio string
	Activo    *bool
	CreadoPor string
}

// Merge combina el filtro del caller con el alcance forzado.
// El valor forzado gana en silencio sobre el declarado.
func (f FormularioFilter) Merge(a Alcance) FormularioFilter {
	if a.Municipio != "" {
		f.Municipio = a.Municipio
	}
	return f
}

// TramiteFilter restringe listados de trámites.
type TramiteFilter struct {
	Municipio    string
	UsuarioID    string
	FormularioID string
	Estado       domain.Estado
}

// Merge combina el filtro del caller con el alcance forzado.
// El valor forzado gana en silencio sobre el declarado.
func (f TramiteFilter) Merge(a Alcance) TramiteFilter {
	if a.Municipio != "" {
		f.Municipio = a.Municipio
	}
	if a.UsuarioID != "" {
		f.UsuarioID = a.UsuarioID
	}
	return f
}
