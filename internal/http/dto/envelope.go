// Package dto define las formas de request y response del API.
package dto

// Envelope es la respuesta estándar de éxito del API.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Total   *int   `json:"total,omitempty"`
}

// OK construye un envelope de éxito con datos.
func OK(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// OKList construye un envelope de éxito para un listado, con total.
func OKList(message string, data any, total int) Envelope {
	return Envelope{Success: true, Message: message, Data: data, Total: &total}
}
