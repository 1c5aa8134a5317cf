package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores del API.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Error original (causa), útil para logs, no se expone al cliente
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// FromError intenta convertir un error genérico en un AppError.
// Si no es un AppError, devuelve un error interno genérico conservando la
// causa.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail agrega detalle al error. Devuelve una COPIA para no mutar las
// variables globales base.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause agrega el error original (causa). Devuelve una COPIA.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// LISTA DE ERRORES PREDEFINIDOS
// =================================================================================

var (
	// 400
	ErrInvalidJSON = New(http.StatusBadRequest, "invalid_json", "JSON inválido")
	ErrBadRequest  = New(http.StatusBadRequest, "bad_request", "Solicitud inválida")
	ErrValidation  = New(http.StatusBadRequest, "validation_failed", "Datos inválidos")

	// 401
	ErrUnauthorized       = New(http.StatusUnauthorized, "unauthorized", "No autenticado")
	ErrTokenMissing       = New(http.StatusUnauthorized, "token_missing", "Token no proporcionado")
	ErrTokenExpired       = New(http.StatusUnauthorized, "token_expired", "Token expirado")
	ErrTokenInvalid       = New(http.StatusUnauthorized, "token_invalid", "Token inválido")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "invalid_credentials", "Credenciales inválidas")

	// 403
	ErrForbidden       = New(http.StatusForbidden, "forbidden", "No tiene permisos para esta operación")
	ErrAccountInactive = New(http.StatusForbidden, "account_inactive", "Cuenta desactivada")

	// 404
	ErrNotFound = New(http.StatusNotFound, "not_found", "Recurso no encontrado")

	// 405
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "method_not_allowed", "Método no permitido")

	// 409
	ErrConflict = New(http.StatusConflict, "conflict", "Conflicto con el estado actual del recurso")

	// 422
	ErrUnavailableResource = New(http.StatusUnprocessableEntity, "resource_unavailable", "El recurso no está disponible")

	// 429
	ErrRateLimited = New(http.StatusTooManyRequests, "rate_limited", "Demasiadas solicitudes, intente más tarde")

	// 500 / 503
	ErrInternalServerError = New(http.StatusInternalServerError, "internal_error", "Error interno del servidor")
	ErrServiceUnavailable  = New(http.StatusServiceUnavailable, "service_unavailable", "Servicio no disponible")
)
