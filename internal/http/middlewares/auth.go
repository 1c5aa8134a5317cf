package middlewares

import (
	"net/http"

	httperrors "github.com/sisvantec/sisvantec/internal/http/errors"
	"github.com/sisvantec/sisvantec/internal/identity"
)

// =================================================================================
// AUTHENTICATION MIDDLEWARES
// =================================================================================

// RequireAuth valida Authorization: Bearer <JWT>, resuelve el usuario y lo
// guarda en el contexto. Token ausente o inválido responde 401; cuenta
// inactiva responde 403.
func RequireAuth(gw *identity.Gateway) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := gw.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				appErr := httperrors.FromDomain(err)
				if appErr.HTTPStatus == http.StatusUnauthorized {
					w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				}
				httperrors.WriteError(w, appErr)
				return
			}

			ctx := WithUsuario(r.Context(), u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth intenta resolver la credencial pero NO falla si no está o es
// inválida: el request continúa con identidad anónima. Usado en lecturas
// públicas que igual filtran por rol cuando el caller está autenticado.
func OptionalAuth(gw *identity.Gateway) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u := gw.AuthenticateOptional(r.Context(), r.Header.Get("Authorization")); u != nil {
				r = r.WithContext(WithUsuario(r.Context(), u))
			}
			next.ServeHTTP(w, r)
		})
	}
}
