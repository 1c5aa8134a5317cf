package domain

import "errors"

// Errores centinela del dominio. Las capas de servicio los retornan
// (envueltos con contexto via fmt.Errorf + %w) y la capa HTTP los mapea
// a códigos de estado con errors.Is.
var (
	ErrNotFound        = errors.New("no encontrado")
	ErrForbidden       = errors.New("prohibido")
	ErrUnauthenticated = errors.New("no autenticado")
	ErrInactiveAccount = errors.New("cuenta inactiva")
	ErrUnavailable     = errors.New("no disponible")
	ErrValidation      = errors.New("validación fallida")
	ErrConflict        = errors.New("conflicto")
	ErrTokenExpired    = errors.New("token expirado")
	ErrTokenInvalid    = errors.New("token inválido")
)
