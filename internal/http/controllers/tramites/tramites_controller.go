// Package tramites contiene el controller de solicitudes ciudadanas.
package tramites

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sisvantec/sisvantec/internal/domain"
	"github.com/sisvantec/sisvantec/internal/http/dto"
	httperrors "github.com/sisvantec/sisvantec/internal/http/errors"
	"github.com/sisvantec/sisvantec/internal/http/helpers"
	"github.com/sisvantec/sisvantec/internal/http/middlewares"
	"github.com/sisvantec/sisvantec/internal/policy"
	"github.com/sisvantec/sisvantec/internal/services/tramites"
)

// Controller maneja los endpoints de /api/tramites.
type Controller struct {
	service *tramites.Service
	// onCreado recibe el municipio de cada trámite creado, para métricas.
	onCreado func(municipio string)
}

// NewController crea el controller de trámites.
func NewController(svc *tramites.Service, onCreado func(string)) *Controller {
	if onCreado == nil {
		onCreado = func(string) {}
	}
	return &Controller{service: svc, onCreado: onCreado}
}

// Crear maneja POST /api/tramites
func (c *Controller) Crear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.CrearTramiteRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	t, err := c.service.Create(ctx, middlewares.GetPerfil(ctx), tramites.CrearTramite{
		FormularioID:  req.FormularioID,
		Respuestas:    req.Respuestas,
		UsuarioNombre: req.UsuarioNombre,
	})
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	c.onCreado(t.Municipio)
	helpers.WriteJSON(w, http.StatusCreated, dto.OK("trámite creado", t))
}

// Listar maneja GET /api/tramites
func (c *Controller) Listar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f := policy.TramiteFilter{
		Municipio:    r.URL.Query().Get("municipio"),
		FormularioID: r.URL.Query().Get("formularioId"),
		Estado:       domain.Estado(r.URL.Query().Get("estado")),
	}

	ts, err := c.service.List(ctx, middlewares.GetPerfil(ctx), f)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.OKList("", ts, len(ts)))
}

// Estadisticas maneja GET /api/tramites/estadisticas
func (c *Controller) Estadisticas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	st, err := c.service.Estadisticas(ctx, middlewares.GetPerfil(ctx), r.URL.Query().Get("municipio"))
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.OK("", st))
}

// Obtener maneja GET /api/tramites/{id}
func (c *Controller) Obtener(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	t, err := c.service.GetByID(ctx, middlewares.GetPerfil(ctx), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.OK("", t))
}

// Actualizar maneja PUT /api/tramites/{id}
func (c *Controller) Actualizar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.ActualizarTramiteRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	in := tramites.ActualizarTramite{
		Comentarios: req.Comentarios,
		Respuestas:  req.Respuestas,
	}
	if req.Estado != nil {
		estado := domain.Estado(*req.Estado)
		in.Estado = &estado
	}

	t, err := c.service.Update(ctx, middlewares.GetPerfil(ctx), chi.URLParam(r, "id"), in)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.OK("trámite actualizado", t))
}

// Eliminar maneja DELETE /api/tramites/{id}.
func (c *Controller) Eliminar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := c.service.HardDelete(ctx, middlewares.GetPerfil(ctx), chi.URLParam(r, "id")); err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.OK("trámite eliminado", nil))
}
