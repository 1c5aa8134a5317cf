package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sisvantec/sisvantec/internal/domain"
)

var (
	superadmin = Perfil{UID: "sa-1", Rol: domain.RolSuperadmin}
	adminNorte = Perfil{UID: "ad-1", Rol: domain.RolAdmin, Municipio: "norte"}
	vecino     = Perfil{UID: "us-1", Rol: domain.RolUsuario}
)

func TestEvaluate_SuperadminSiemprePasa(t *testing.T) {
	e := &Engine{}
	for _, rec := range []Recurso{RecursoUsuarios, RecursoFormularios, RecursoTramites} {
		for _, op := range []Operacion{OpCrear, OpLeer, OpListar, OpActualizar, OpDesactivar, OpEliminar, OpEstadisticas} {
			dec := e.Evaluate(superadmin, op, rec, Objetivo{Municipio: "cualquiera"})
			require.Equal(t, Permitir, dec.Efecto, "op=%s rec=%s", op, rec)
			require.Empty(t, dec.Alcance.Municipio)
		}
	}
}

func TestEvaluate_Usuarios(t *testing.T) {
	e := &Engine{}

	casos := []struct {
		nombre   string
		perfil   Perfil
		op       Operacion
		obj      Objetivo
		permitida bool
	}{
		{"admin no gestiona usuarios", adminNorte, OpCrear, Objetivo{}, false},
		{"usuario no lista usuarios", vecino, OpListar, Objetivo{}, false},
		{"usuario lee su propio perfil", vecino, OpLeer, Objetivo{PropietarioUID: "us-1"}, true},
		{"usuario no lee otro perfil", vecino, OpLeer, Objetivo{PropietarioUID: "us-2"}, false},
		{"admin lee su propio perfil", adminNorte, OpLeer, Objetivo{PropietarioUID: "ad-1"}, true},
		{"anonimo no lee perfiles", Anonimo, OpLeer, Objetivo{PropietarioUID: ""}, false},
		{"usuario no se actualiza a si mismo", vecino, OpActualizar, Objetivo{PropietarioUID: "us-1"}, false},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			dec := e.Evaluate(c.perfil, c.op, RecursoUsuarios, c.obj)
			require.Equal(t, c.permitida, dec.Permitida())
			if !c.permitida {
				require.NotEmpty(t, dec.Motivo)
			}
		})
	}
}

func TestEvaluate_Formularios(t *testing.T) {
	e := &Engine{}
	inactivo := false

	t.Run("admin crea con municipio forzado", func(t *testing.T) {
		dec := e.Evaluate(adminNorte, OpCrear, RecursoFormularios, Objetivo{})
		require.Equal(t, PermitirFiltrado, dec.Efecto)
		require.Equal(t, "norte", dec.Alcance.Municipio)
	})
	t.Run("usuario no crea", func(t *testing.T) {
		dec := e.Evaluate(vecino, OpCrear, RecursoFormularios, Objetivo{})
		require.False(t, dec.Permitida())
	})
	t.Run("admin lista acotado a su municipio", func(t *testing.T) {
		dec := e.Evaluate(adminNorte, OpListar, RecursoFormularios, Objetivo{})
		require.Equal(t, PermitirFiltrado, dec.Efecto)
		require.Equal(t, "norte", dec.Alcance.Municipio)
	})
	t.Run("anonimo lista", func(t *testing.T) {
		dec := e.Evaluate(Anonimo, OpListar, RecursoFormularios, Objetivo{})
		require.Equal(t, Permitir, dec.Efecto)
	})
	t.Run("admin no lee formulario de otro municipio", func(t *testing.T) {
		dec := e.Evaluate(adminNorte, OpLeer, RecursoFormularios, Objetivo{Municipio: "sur"})
		require.False(t, dec.Permitida())
	})
	t.Run("no-staff no lee formulario inactivo", func(t *testing.T) {
		dec := e.Evaluate(vecino, OpLeer, RecursoFormularios, Objetivo{Municipio: "norte", Activo: &inactivo})
		require.False(t, dec.Permitida())
	})
	t.Run("admin lee formulario inactivo propio", func(t *testing.T) {
		dec := e.Evaluate(adminNorte, OpLeer, RecursoFormularios, Objetivo{Municipio: "norte", Activo: &inactivo})
		require.True(t, dec.Permitida())
	})
	t.Run("admin no actualiza otro municipio", func(t *testing.T) {
		dec := e.Evaluate(adminNorte, OpActualizar, RecursoFormularios, Objetivo{Municipio: "sur"})
		require.False(t, dec.Permitida())
	})
	t.Run("admin no elimina permanentemente", func(t *testing.T) {
		dec := e.Evaluate(adminNorte, OpEliminar, RecursoFormularios, Objetivo{Municipio: "norte"})
		require.False(t, dec.Permitida())
	})
}

func TestEvaluate_Tramites(t *testing.T) {
	e := &Engine{}

	t.Run("anonimo denegado en todo", func(t *testing.T) {
		for _, op := range []Operacion{OpCrear, OpLeer, OpListar, OpActualizar, OpEliminar, OpEstadisticas} {
			dec := e.Evaluate(Anonimo, op, RecursoTramites, Objetivo{})
			require.False(t, dec.Permitida(), "op=%s", op)
		}
	})
	t.Run("crear fuerza el submitter", func(t *testing.T) {
		dec := e.Evaluate(vecino, OpCrear, RecursoTramites, Objetivo{})
		require.Equal(t, PermitirFiltrado, dec.Efecto)
		require.Equal(t, "us-1", dec.Alcance.UsuarioID)
	})
	t.Run("usuario lista solo lo suyo", func(t *testing.T) {
		dec := e.Evaluate(vecino, OpListar, RecursoTramites, Objetivo{})
		require.Equal(t, PermitirFiltrado, dec.Efecto)
		require.Equal(t, "us-1", dec.Alcance.UsuarioID)
		require.Empty(t, dec.Alcance.Municipio)
	})
	t.Run("admin lista su municipio", func(t *testing.T) {
		dec := e.Evaluate(adminNorte, OpListar, RecursoTramites, Objetivo{})
		require.Equal(t, "norte", dec.Alcance.Municipio)
		require.Empty(t, dec.Alcance.UsuarioID)
	})
	t.Run("usuario no lee tramite ajeno", func(t *testing.T) {
		dec := e.Evaluate(vecino, OpLeer, RecursoTramites, Objetivo{PropietarioUID: "us-2"})
		require.False(t, dec.Permitida())
	})
	t.Run("admin no actualiza otro municipio", func(t *testing.T) {
		dec := e.Evaluate(adminNorte, OpActualizar, RecursoTramites, Objetivo{Municipio: "sur"})
		require.False(t, dec.Permitida())
	})
	t.Run("usuario no actualiza ni lo suyo", func(t *testing.T) {
		dec := e.Evaluate(vecino, OpActualizar, RecursoTramites, Objetivo{PropietarioUID: "us-1"})
		require.False(t, dec.Permitida())
	})
	t.Run("estadisticas denegadas a usuario", func(t *testing.T) {
		dec := e.Evaluate(vecino, OpEstadisticas, RecursoTramites, Objetivo{})
		require.False(t, dec.Permitida())
	})
	t.Run("estadisticas de admin con municipio forzado", func(t *testing.T) {
		dec := e.Evaluate(adminNorte, OpEstadisticas, RecursoTramites, Objetivo{})
		require.Equal(t, "norte", dec.Alcance.Municipio)
	})
}

// El comportamiento heredado no restringe la eliminación permanente de
// trámites por rol; el flag del motor la limita a superadmin.
func TestEvaluate_EliminarTramites(t *testing.T) {
	t.Run("default permite a cualquier autenticado", func(t *testing.T) {
		e := &Engine{}
		require.True(t, e.Evaluate(vecino, OpEliminar, RecursoTramites, Objetivo{}).Permitida())
		require.True(t, e.Evaluate(adminNorte, OpEliminar, RecursoTramites, Objetivo{}).Permitida())
	})
	t.Run("restringido deniega a no-superadmin", func(t *testing.T) {
		e := &Engine{RestringirEliminarTramites: true}
		require.False(t, e.Evaluate(vecino, OpEliminar, RecursoTramites, Objetivo{}).Permitida())
		require.False(t, e.Evaluate(adminNorte, OpEliminar, RecursoTramites, Objetivo{}).Permitida())
		require.True(t, e.Evaluate(superadmin, OpEliminar, RecursoTramites, Objetivo{}).Permitida())
	})
}

func TestFilters_MergeFuerzaAlcance(t *testing.T) {
	f := TramiteFilter{Municipio: "sur", UsuarioID: "otro", Estado: domain.EstadoPendiente}
	m := f.Merge(Alcance{Municipio: "norte", UsuarioID: "us-1"})
	require.Equal(t, "norte", m.Municipio)
	require.Equal(t, "us-1", m.UsuarioID)
	require.Equal(t, domain.EstadoPendiente, m.Estado)

	// Sin alcance forzado, el filtro del caller queda intacto.
	sin := f.Merge(Alcance{})
	require.Equal(t, f, sin)

	ff := FormularioFilter{Municipio: "sur", CreadoPor: "x"}
	require.Equal(t, "norte", ff.Merge(Alcance{Municipio: "norte"}).Municipio)
	require.Equal(t, "x", ff.Merge(Alcance{Municipio: "norte"}).CreadoPor)
}
