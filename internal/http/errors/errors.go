// Package errors define el catálogo de errores HTTP del API y su
// serialización en el envelope estándar.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/sisvantec/sisvantec/internal/domain"
)

// errorResponse es la forma del envelope en caso de error: success=false y
// el mensaje legible, más código y detalle para clientes programáticos.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError escribe la respuesta HTTP del error. Acepta *AppError o
// cualquier error (que se mapea a 500).
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Code,
		Detail:  appErr.Detail,
	})
}

// FromDomain traduce los errores sentinela del dominio al catálogo HTTP.
// El detalle conserva el texto del error de la capa inferior; la causa se
// guarda para logging y nunca viaja al cliente.
func FromDomain(err error) *AppError {
	switch {
	case stderrors.Is(err, domain.ErrNotFound):
		return ErrNotFound.WithDetail(err.Error()).WithCause(err)
	case stderrors.Is(err, domain.ErrForbidden):
		return ErrForbidden.WithDetail(err.Error()).WithCause(err)
	case stderrors.Is(err, domain.ErrUnauthenticated):
		return ErrUnauthorized.WithDetail(err.Error()).WithCause(err)
	case stderrors.Is(err, domain.ErrInactiveAccount):
		return ErrAccountInactive.WithCause(err)
	case stderrors.Is(err, domain.ErrTokenExpired):
		return ErrTokenExpired.WithCause(err)
	case stderrors.Is(err, domain.ErrTokenInvalid):
		return ErrTokenInvalid.WithCause(err)
	case stderrors.Is(err, domain.ErrValidation):
		return ErrValidation.WithDetail(err.Error()).WithCause(err)
	case stderrors.Is(err, domain.ErrConflict):
		return ErrConflict.WithDetail(err.Error()).WithCause(err)
	case stderrors.Is(err, domain.ErrUnavailable):
		return ErrUnavailableResource.WithDetail(err.Error()).WithCause(err)
	default:
		return ErrInternalServerError.WithCause(err)
	}
}
