// Package router arma el árbol de rutas del API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/sisvantec/sisvantec/internal/http"
	authctl "github.com/sisvantec/sisvantec/internal/http/controllers/auth"
	formctl "github.com/sisvantec/sisvantec/internal/http/controllers/formularios"
	healthctl "github.com/sisvantec/sisvantec/internal/http/controllers/health"
	tramctl "github.com/sisvantec/sisvantec/internal/http/controllers/tramites"
	httperrors "github.com/sisvantec/sisvantec/internal/http/errors"
	"github.com/sisvantec/sisvantec/internal/http/middlewares"
	"github.com/sisvantec/sisvantec/internal/identity"
	"github.com/sisvantec/sisvantec/internal/rate"
)

// Deps agrupa los controllers y middlewares que monta el router.
type Deps struct {
	Gateway *identity.Gateway
	Limiter rate.Limiter // opcional

	Auth        *authctl.Controller
	Formularios *formctl.Controller
	Tramites    *tramctl.Controller
	Health      *healthctl.Controller

	// Metrics es el handler de /metrics; nil lo deshabilita.
	Metrics http.Handler
}

// New monta todas las rutas con la cadena estándar:
// recover → request-id → CORS → métricas → logging → rate limit.
func New(d Deps, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewares.WithRecover())
	r.Use(middlewares.WithRequestID())
	r.Use(middlewares.WithCORS(allowedOrigins))
	r.Use(httpx.WithMetrics)
	r.Use(middlewares.WithLogging())
	if d.Limiter != nil {
		r.Use(middlewares.WithRateLimit(d.Limiter))
	}

	requireAuth := middlewares.RequireAuth(d.Gateway)
	optionalAuth := middlewares.OptionalAuth(d.Gateway)

	r.Get("/", d.Health.Banner)
	r.Get("/health", d.Health.Health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", d.Auth.Login)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/registro", d.Auth.Registro)
			r.Get("/perfil", d.Auth.Perfil)
			r.Get("/usuarios", d.Auth.ListarUsuarios)
			r.Put("/usuarios/{uid}", d.Auth.ActualizarUsuario)
			r.Delete("/usuarios/{uid}", d.Auth.DesactivarUsuario)
		})
	})

	r.Route("/api/formularios", func(r chi.Router) {
		// Lecturas con auth opcional: anónimos ven solo plantillas activas.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", d.Formularios.Listar)
			r.Get("/{id}", d.Formularios.Obtener)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", d.Formularios.Crear)
			r.Put("/{id}", d.Formularios.Actualizar)
			r.Delete("/{id}", d.Formularios.Desactivar)
			r.Delete("/{id}/permanente", d.Formularios.Eliminar)
		})
	})

	r.Route("/api/tramites", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", d.Tramites.Crear)
		r.Get("/", d.Tramites.Listar)
		r.Get("/estadisticas", d.Tramites.Estadisticas)
		r.Get("/{id}", d.Tramites.Obtener)
		r.Put("/{id}", d.Tramites.Actualizar)
		r.Delete("/{id}", d.Tramites.Eliminar)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("ruta no encontrada"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	return r
}
