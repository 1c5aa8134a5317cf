// Package formularios contiene el controller de plantillas de trámite.
package formularios

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sisvantec/sisvantec/internal/http/dto"
	httperrors "github.com/sisvantec/sisvantec/internal/http/errors"
	"github.com/sisvantec/sisvantec/internal/http/helpers"
	"github.com/sisvantec/sisvantec/internal/http/middlewares"
	"github.com/sisvantec/sisvantec/internal/policy"
	"github.com/sisvantec/sisvantec/internal/services/formularios"
)

// Controller maneja los endpoints de /api/formularios.
type Controller struct {
	service *formularios.Service
}

// NewController crea el controller de formularios.
func NewController(svc *formularios.Service) *Controller {
	return &Controller{service: svc}
}

// Crear maneja POST /api/formularios
func (c *Controller) Crear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.CrearFormularioRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	f, err := c.service.Create(ctx, middlewares.GetPerfil(ctx), formularios.CrearFormulario{
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		Campos:      req.Campos,
		Municipio:   req.Municipio,
	})
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, dto.OK("formulario creado", f))
}

// Listar maneja GET /api/formularios
func (c *Controller) Listar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f := policy.FormularioFilter{
		Municipio: r.URL.Query().Get("municipio"),
		CreadoPor: r.URL.Query().Get("creadoPor"),
	}
	if v := r.URL.Query().Get("activo"); v != "" {
		activo := v == "true"
		f.Activo = &activo
	}

	fs, err := c.service.List(ctx, middlewares.GetPerfil(ctx), f)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.OKList("", fs, len(fs)))
}

// Obtener maneja GET /api/formularios/{id}
func (c *Controller) Obtener(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := c.service.GetByID(ctx, middlewares.GetPerfil(ctx), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.OK("", f))
}

// Actualizar maneja PUT /api/formularios/{id}
func (c *Controller) Actualizar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.ActualizarFormularioRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	f, err := c.service.Update(ctx, middlewares.GetPerfil(ctx), chi.URLParam(r, "id"), formularios.ActualizarFormulario{
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		Campos:      req.Campos,
		Activo:      req.Activo,
		Municipio:   req.Municipio,
	})
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.OK("formulario actualizado", f))
}

// Desactivar maneja DELETE /api/formularios/{id} (borrado lógico).
func (c *Controller) Desactivar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := c.service.SoftDelete(ctx, middlewares.GetPerfil(ctx), chi.URLParam(r, "id")); err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.OK("formulario desactivado", nil))
}

// Eliminar maneja DELETE /api/formularios/{id}/permanente.
func (c *Controller) Eliminar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := c.service.HardDelete(ctx, middlewares.GetPerfil(ctx), chi.URLParam(r, "id")); err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.OK("formulario eliminado permanentemente", nil))
}
