package middlewares

import (
	"net/http"
	"strconv"

	httperrors "github.com/sisvantec/sisvantec/internal/http/errors"
	"github.com/sisvantec/sisvantec/internal/http/helpers"
	"github.com/sisvantec/sisvantec/internal/observability/logger"
	"github.com/sisvantec/sisvantec/internal/rate"
)

// WithRateLimit limita requests por IP de cliente. Si el backend del
// limiter falla, el request pasa: el límite de tasa nunca tumba el API.
func WithRateLimit(limiter rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), helpers.ClientIP(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter no disponible",
					logger.Component("rate"),
					logger.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
				httperrors.WriteError(w, httperrors.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
