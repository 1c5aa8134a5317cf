package policy

// Operacion identifica la acción evaluada contra un recurso.
type Operacion string

const (
	OpCrear        Operacion = "crear"
	OpLeer         Operacion = "leer"
	OpListar       Operacion = "listar"
	OpActualizar   Operacion = "actualizar"
	OpDesactivar   Operacion = "desactivar"
	OpEliminar     Operacion = "eliminar"
	OpEstadisticas Operacion = "estadisticas"
)

// Recurso identifica la clase de entidad evaluada.
type Recurso string

const (
	RecursoUsuarios    Recurso = "usuarios"
	RecursoFormularios Recurso = "formularios"
	RecursoTramites    Recurso = "tramites"
)

// Objetivo describe los atributos conocidos del recurso concreto contra el
// que se evalúa la operación. Los campos en cero significan "desconocido"
// (por ejemplo en listados, donde no hay recurso concreto).
type Objetivo struct {
	// Municipio propietario del recurso, si se conoce.
	Municipio string
	// PropietarioUID es el dueño del recurso (submitter de un trámite,
	// o el propio usuario en el recurso usuarios), si se conoce.
	PropietarioUID string
	// Activo es el estado del recurso, si se conoce.
	Activo *bool
}

// Efecto es el resultado de una evaluación de política.
type Efecto int

const (
	// Denegar: la operación no procede; ningún acceso a persistencia.
	Denegar Efecto = iota
	// Permitir: la operación procede sin restricción adicional.
	Permitir
	// PermitirFiltrado: la operación procede con el Alcance forzado
	// aplicado sobre los filtros o los campos del recurso.
	PermitirFiltrado
)

// Alcance es el filtro de ámbito que la política fuerza sobre la operación.
// En listados se combina (AND) con los filtros del caller; en creaciones
// sobreescribe en silencio los campos declarados por el caller.
type Alcance struct {
	Municipio string
	UsuarioID string
}

// Decision es la salida del motor de políticas.
type Decision struct {
	Efecto  Efecto
	Alcance Alcance
	Motivo  string
}

// Permitida reporta si la decisión deja proceder la operación.
func (d Decision) Permitida() bool {
	return d.Efecto != Denegar
}

func permitir() Decision {
	return Decision{Efecto: Permitir}
}

func permitirFiltrado(a Alcance) Decision {
	return Decision{Efecto: PermitirFiltrado, Alcance: a}
}

func denegar(motivo string) Decision {
	return Decision{Efecto: Denegar, Motivo: motivo}
}
