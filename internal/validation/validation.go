// Package validation concentra las reglas de forma de los datos de entrada.
// Son chequeos mecánicos (longitudes, enums, presencia); la autorización
// vive en el motor de políticas, no acá.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sisvantec/sisvantec/internal/domain"
)

// Email: forma razonable, sin pretender RFC completo.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidarEmail verifica la forma del email.
func ValidarEmail(email string) error {
	if !emailRe.MatchString(strings.TrimSpace(email)) {
		return fmt.Errorf("%w: email con formato inválido", domain.ErrValidation)
	}
	return nil
}

// ValidarTitulo exige entre 3 y 100 caracteres.
func ValidarTitulo(titulo string) error {
	t := strings.TrimSpace(titulo)
	if len(t) < 3 || len(t) > 100 {
		return fmt.Errorf("%w: el título debe tener entre 3 y 100 caracteres", domain.ErrValidation)
	}
	return nil
}

// ValidarDescripcion limita la descripción a 500 caracteres.
func ValidarDescripcion(desc string) error {
	if len(desc) > 500 {
		return fmt.Errorf("%w: la descripción no puede superar 500 caracteres", domain.ErrValidation)
	}
	return nil
}

// ValidarCampos exige al menos un campo y verifica nombre, etiqueta y tipo
// de cada uno.
func ValidarCampos(campos []domain.Campo) error {
	if len(campos) == 0 {
		return fmt.Errorf("%w: el formulario debe tener al menos un campo", domain.ErrValidation)
	}
	vistos := make(map[string]struct{}, len(campos))
	for i, c := range campos {
		if strings.TrimSpace(c.Nombre) == "" {
			return fmt.Errorf("%w: el campo %d no tiene nombre", domain.ErrValidation, i)
		}
		if strings.TrimSpace(c.Etiqueta) == "" {
			return fmt.Errorf("%w: el campo %q no tiene etiqueta", domain.ErrValidation, c.Nombre)
		}
		if !domain.TipoDeCampoValido(c.Tipo) {
			return fmt.Errorf("%w: tipo de campo inválido %q", domain.ErrValidation, c.Tipo)
		}
		if _, dup := vistos[c.Nombre]; dup {
			return fmt.Errorf("%w: campo duplicado %q", domain.ErrValidation, c.Nombre)
		}
		vistos[c.Nombre] = struct{}{}
	}
	return nil
}

// ValidarRespuestas verifica que las respuestas traigan todos los campos
// requeridos del formulario.
func ValidarRespuestas(f *domain.Formulario, respuestas map[string]any) error {
	if len(respuestas) == 0 {
		return fmt.Errorf("%w: las respuestas son obligatorias", domain.ErrValidation)
	}
	for _, c := range f.Campos {
		if !c.Requerido {
			continue
		}
		v, ok := respuestas[c.Nombre]
		if !ok || v == nil {
			return fmt.Errorf("%w: falta el campo requerido %q", domain.ErrValidation, c.Nombre)
		}
		if s, esStr := v.(string); esStr && strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: falta el campo requerido %q", domain.ErrValidation, c.Nombre)
		}
	}
	return nil
}
