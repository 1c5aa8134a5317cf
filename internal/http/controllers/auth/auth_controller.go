// Package auth contiene los controllers de autenticación y cuentas.
package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sisvantec/sisvantec/internal/domain"
	"github.com/sisvantec/sisvantec/internal/http/dto"
	httperrors "github.com/sisvantec/sisvantec/internal/http/errors"
	"github.com/sisvantec/sisvantec/internal/http/helpers"
	"github.com/sisvantec/sisvantec/internal/http/middlewares"
	"github.com/sisvantec/sisvantec/internal/identity"
	"github.com/sisvantec/sisvantec/internal/observability/logger"
	"github.com/sisvantec/sisvantec/internal/policy"
	"github.com/sisvantec/sisvantec/internal/services/usuarios"
)

// Controller maneja los endpoints de /api/auth.
type Controller struct {
	gateway *identity.Gateway
	service *usuarios.Service
	// onLogin recibe el resultado de cada intento, para métricas.
	onLogin func(ok bool)
}

// NewController crea el controller de auth.
func NewController(gw *identity.Gateway, svc *usuarios.Service, onLogin func(bool)) *Controller {
	if onLogin == nil {
		onLogin = func(bool) {}
	}
	return &Controller{gateway: gw, service: svc, onLogin: onLogin}
}

// Login maneja POST /api/auth/login
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Auth.Login"))

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("email y password son obligatorios"))
		return
	}

	token, u, err := c.gateway.Login(ctx, strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		c.onLogin(false)
		log.Debug("login fallido", logger.Err(err))
		// Email inexistente y password inválido responden igual.
		if httperrors.FromDomain(err).HTTPStatus == http.StatusNotFound {
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
			return
		}
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	c.onLogin(true)
	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, http.StatusOK, dto.OK("login exitoso", dto.LoginResponse{
		Token:   token,
		Usuario: dto.DesdeUsuario(u),
	}))
}

// Registro maneja POST /api/auth/registro
func (c *Controller) Registro(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.RegistroRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	rol := domain.Rol(req.Rol)
	if req.Rol == "" {
		rol = domain.RolUsuario
	}

	u, err := c.service.Create(ctx, middlewares.GetPerfil(ctx), usuarios.CrearUsuario{
		Email:     req.Email,
		Password:  req.Password,
		Nombre:    req.Nombre,
		Rol:       rol,
		Municipio: req.Municipio,
	})
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, dto.OK("usuario registrado", dto.DesdeUsuario(u)))
}

// Perfil maneja GET /api/auth/perfil
func (c *Controller) Perfil(w http.ResponseWriter, r *http.Request) {
	u := middlewares.GetUsuario(r.Context())
	if u == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.OK("", dto.DesdeUsuario(u)))
}

// ListarUsuarios maneja GET /api/auth/usuarios
func (c *Controller) ListarUsuarios(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f := policy.UsuarioFilter{
		Rol:       domain.Rol(r.URL.Query().Get("rol")),
		Municipio: r.URL.Query().Get("municipio"),
	}
	if v := r.URL.Query().Get("activo"); v != "" {
		activo := v == "true"
		f.Activo = &activo
	}

	us, err := c.service.List(ctx, middlewares.GetPerfil(ctx), f)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.OKList("", dto.DesdeUsuarios(us), len(us)))
}

// ActualizarUsuario maneja PUT /api/auth/usuarios/{uid}
func (c *Controller) ActualizarUsuario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := chi.URLParam(r, "uid")

	var req dto.ActualizarUsuarioRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	in := usuarios.ActualizarUsuario{
		Nombre:    req.Nombre,
		Municipio: req.Municipio,
		Activo:    req.Activo,
	}
	if req.Rol != nil {
		rol := domain.Rol(*req.Rol)
		in.Rol = &rol
	}

	u, err := c.service.Update(ctx, middlewares.GetPerfil(ctx), uid, in)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.OK("usuario actualizado", dto.DesdeUsuario(u)))
}

// DesactivarUsuario maneja DELETE /api/auth/usuarios/{uid}. Nunca borra el
// documento: desactiva la cuenta.
func (c *Controller) DesactivarUsuario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := chi.URLParam(r, "uid")

	if err := c.service.Deactivate(ctx, middlewares.GetPerfil(ctx), uid); err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.OK("usuario desactivado", nil))
}
