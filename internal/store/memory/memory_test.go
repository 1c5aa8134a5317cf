package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sisvantec/sisvantec/internal/store"
)

func TestCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.Insert(ctx, "docs", map[string]any{"nombre": "uno", "activo": true})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	reg, err := s.Get(ctx, "docs", id)
	require.NoError(t, err)
	require.Equal(t, "uno", reg.Datos["nombre"])

	require.NoError(t, s.Update(ctx, "docs", id, map[string]any{"nombre": "dos"}))
	reg, err = s.Get(ctx, "docs", id)
	require.NoError(t, err)
	require.Equal(t, "dos", reg.Datos["nombre"])
	require.Equal(t, true, reg.Datos["activo"])

	require.NoError(t, s.Delete(ctx, "docs", id))
	_, err = s.Get(ctx, "docs", id)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "docs", id), store.ErrNotFound)
	require.ErrorIs(t, s.Update(ctx, "docs", id, map[string]any{"x": 1}), store.ErrNotFound)
}

func TestPut_IDExplicitoYConflicto(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "docs", "fijo", map[string]any{"n": 1}))
	require.ErrorIs(t, s.Put(ctx, "docs", "fijo", map[string]any{"n": 2}), store.ErrConflict)
}

func TestQuery_CondicionesYOrden(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, m := range []string{"norte", "sur", "norte"} {
		_, err := s.Insert(ctx, "docs", map[string]any{
			"municipio": m,
			"activo":    i != 1,
			"creadoEn":  base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339Nano),
		})
		require.NoError(t, err)
	}

	norte, err := s.Query(ctx, "docs", []store.Condicion{{Campo: "municipio", Valor: "norte"}}, nil)
	require.NoError(t, err)
	require.Len(t, norte, 2)

	activos, err := s.Query(ctx, "docs", []store.Condicion{
		{Campo: "municipio", Valor: "norte"},
		{Campo: "activo", Valor: true},
	}, nil)
	require.NoError(t, err)
	require.Len(t, activos, 2)

	orden := store.PorCreadoEnDesc
	ordenados, err := s.Query(ctx, "docs", nil, &orden)
	require.NoError(t, err)
	require.Len(t, ordenados, 3)
	for i := 1; i < len(ordenados); i++ {
		prev, _ := time.Parse(time.RFC3339Nano, ordenados[i-1].Datos["creadoEn"].(string))
		cur, _ := time.Parse(time.RFC3339Nano, ordenados[i].Datos["creadoEn"].(string))
		require.False(t, prev.Before(cur), "orden descendente roto en %d", i)
	}
}

// Los registros devueltos son copias: mutarlos no toca el almacén.
func TestQuery_DevuelveCopias(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.Insert(ctx, "docs", map[string]any{"n": "original"})
	require.NoError(t, err)

	reg, err := s.Get(ctx, "docs", id)
	require.NoError(t, err)
	reg.Datos["n"] = "mutado"

	otra, err := s.Get(ctx, "docs", id)
	require.NoError(t, err)
	require.Equal(t, "original", otra.Datos["n"])
}
