package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sisvantec/sisvantec/internal/domain"
)

func TestValidarEmail(t *testing.T) {
	validos := []string{"a@b.com", "nombre.apellido@muni.gob.ar", " con.espacios@x.io "}
	for _, v := range validos {
		require.NoError(t, ValidarEmail(v), "email=%q", v)
	}

	invalidos := []string{"", "sin-arroba", "@falta.local", "dos@@x.com", "espacio en@x.com", "sin@tld"}
	for _, v := range invalidos {
		require.ErrorIs(t, ValidarEmail(v), domain.ErrValidation, "email=%q", v)
	}
}

func TestValidarTitulo(t *testing.T) {
	require.NoError(t, ValidarTitulo("Poda de árboles"))
	require.ErrorIs(t, ValidarTitulo("ab"), domain.ErrValidation)
	require.ErrorIs(t, ValidarTitulo("  a  "), domain.ErrValidation)
	require.ErrorIs(t, ValidarTitulo(strings.Repeat("x", 101)), domain.ErrValidation)
}

func TestValidarDescripcion(t *testing.T) {
	require.NoError(t, ValidarDescripcion(""))
	require.NoError(t, ValidarDescripcion(strings.Repeat("x", 500)))
	require.ErrorIs(t, ValidarDescripcion(strings.Repeat("x", 501)), domain.ErrValidation)
}

func TestValidarCampos(t *testing.T) {
	require.ErrorIs(t, ValidarCampos(nil), domain.ErrValidation)

	ok := []domain.Campo{
		{Nombre: "direccion", Tipo: "text", Etiqueta: "Dirección"},
		{Nombre: "urgente", Tipo: "checkbox", Etiqueta: "Urgente"},
	}
	require.NoError(t, ValidarCampos(ok))

	require.ErrorIs(t, ValidarCampos([]domain.Campo{
		{Nombre: "", Tipo: "text", Etiqueta: "X"},
	}), domain.ErrValidation)

	require.ErrorIs(t, ValidarCampos([]domain.Campo{
		{Nombre: "x", Tipo: "radio", Etiqueta: "X"},
	}), domain.ErrValidation)

	require.ErrorIs(t, ValidarCampos([]domain.Campo{
		{Nombre: "x", Tipo: "text", Etiqueta: "X"},
		{Nombre: "x", Tipo: "number", Etiqueta: "Otra X"},
	}), domain.ErrValidation)
}

func TestValidarRespuestas(t *testing.T) {
	f := &domain.Formulario{Campos: []domain.Campo{
		{Nombre: "direccion", Tipo: "text", Etiqueta: "Dirección", Requerido: true},
		{Nombre: "detalle", Tipo: "textarea", Etiqueta: "Detalle"},
	}}

	require.NoError(t, ValidarRespuestas(f, map[string]any{"direccion": "Calle 1"}))
	require.ErrorIs(t, ValidarRespuestas(f, nil), domain.ErrValidation)
	require.ErrorIs(t, ValidarRespuestas(f, map[string]any{"detalle": "solo opcional"}), domain.ErrValidation)
	require.ErrorIs(t, ValidarRespuestas(f, map[string]any{"direccion": "  "}), domain.ErrValidation)
	require.ErrorIs(t, ValidarRespuestas(f, map[string]any{"direccion": nil}), domain.ErrValidation)
}
