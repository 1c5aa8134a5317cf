package dto

// CrearTramiteRequest es el body de POST /api/tramites. Cualquier
// usuarioId declarado se ignora: el submitter siempre es el autenticado.
type CrearTramiteRequest struct {
	FormularioID  string         `json:"formularioId"`
	Respuestas    map[string]any `json:"respuestas"`
	UsuarioNombre string         `json:"usuarioNombre"`
}

// ActualizarTramiteRequest es el body de PUT /api/tramites/{id}.
type ActualizarTramiteRequest struct {
	Estado      *string        `json:"estado"`
	Comentarios *string        `json:"comentarios"`
	Respuestas  map[string]any `json:"respuestas"`
}
