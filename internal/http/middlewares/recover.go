package middlewares

import (
	"net/http"
	"runtime/debug"

	httperrors "github.com/sisvantec/sisvantec/internal/http/errors"
	"github.com/sisvantec/sisvantec/internal/observability/logger"
)

// WithRecover convierte panics en 500 y los loguea con stack trace.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.From(r.Context()).Error("panic recuperado",
						logger.Any("panic", rec),
						logger.String("stack", string(debug.Stack())),
						logger.Path(r.URL.Path),
					)
					httperrors.WriteError(w, httperrors.ErrInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
