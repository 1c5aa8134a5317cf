// Package middlewares implementa la cadena HTTP del servicio: recover,
// request-id, CORS, logging, rate limit y autenticación.
package middlewares

import "net/http"

// Middleware decora un http.Handler. Compatible con chi.Router.Use.
type Middleware func(http.Handler) http.Handler
