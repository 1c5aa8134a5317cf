package dto

import "github.com/sisvantec/sisvantec/internal/domain"

// CrearFormularioRequest es el body de POST /api/formularios.
type CrearFormularioRequest struct {
	Titulo      string         `json:"titulo"`
	Descripcion string         `json:"descripcion"`
	Campos      []domain.Campo `json:"campos"`
	Municipio   string         `json:"municipio"`
}

// ActualizarFormularioRequest es el body de PUT /api/formularios/{id}.
type ActualizarFormularioRequest struct {
	Titulo      *string        `json:"titulo"`
	Descripcion *string        `json:"descripcion"`
	Campos      []domain.Campo `json:"campos"`
	Activo      *bool          `json:"activo"`
	Municipio   *string        `json:"municipio"`
}

// Los formularios se responden con la entidad tal cual: todos sus campos
// son públicos para quien puede verlos.
