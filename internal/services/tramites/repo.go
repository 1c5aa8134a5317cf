// Package tramites gestiona las solicitudes ciudadanas y su flujo de
// revisión.
package tramites

import (
	"context"
	"errors"
	"fmt"

	"github.com/sisvantec/sisvantec/internal/domain"
	"github.com/sisvantec/sisvantec/internal/policy"
	"github.com/sisvantec/sisvantec/internal/store"
)

// Repo persiste trámites en el almacén de documentos. No aplica política:
// eso es responsabilidad del Service.
type Repo struct {
	st store.Store
}

// NewRepo construye el repo de trámites.
func NewRepo(st store.Store) *Repo {
	return &Repo{st: st}
}

// PorID carga un trámite por id de documento.
func (r *Repo) PorID(ctx context.Context, id string) (*domain.Tramite, error) {
	reg, err := r.st.Get(ctx, store.ColTramites, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: trámite", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("cargar trámite: %w", err)
	}
	return decodificar(reg)
}

// Crear inserta un trámite nuevo y retorna el id generado.
func (r *Repo) Crear(ctx context.Context, t *domain.Tramite) (string, error) {
	datos, err := store.Encode(t)
	if err != nil {
		return "", fmt.Errorf("serializar trámite: %w", err)
	}
	delete(datos, "id")
	id, err := r.st.Insert(ctx, store.ColTramites, datos)
	if err != nil {
		return "", fmt.Errorf("crear trámite: %w", err)
	}
	return id, nil
}

// Listar retorna trámites según el filtro, ordenados por creación
// descendente.
func (r *Repo) Listar(ctx context.Context, f policy.TramiteFilter) ([]domain.Tramite, error) {
	var conds []store.Condicion
	if f.Municipio != "" {
		conds = append(conds, store.Condicion{Campo: "municipio", Valor: f.Municipio})
	}
	if f.UsuarioID != "" {
		conds = append(conds, store.Condicion{Campo: "usuarioId", Valor: f.UsuarioID})
	}
	if f.FormularioID != "" {
		conds = append(conds, store.Condicion{Campo: "formularioId", Valor: f.FormularioID})
	}
	if f.Estado != "" {
		conds = append(conds, store.Condicion{Campo: "estado", Valor: string(f.Estado)})
	}

	orden := store.PorCreadoEnDesc
	regs, err := r.st.Query(ctx, store.ColTramites, conds, &orden)
	if err != nil {
		return nil, fmt.Errorf("listar trámites: %w", err)
	}

	out := make([]domain.Tramite, 0, len(regs))
	for _, reg := range regs {
		t, err := decodificar(reg)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

// Actualizar aplica un parche parcial al documento del trámite.
func (r *Repo) Actualizar(ctx context.Context, id string, parcial map[string]any) error {
	if err := r.st.Update(ctx, store.ColTramites, id, parcial); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: trámite", domain.ErrNotFound)
		}
		return fmt.Errorf("actualizar trámite: %w", err)
	}
	return nil
}

// Eliminar borra el documento del trámite de forma permanente.
func (r *Repo) Eliminar(ctx context.Context, id string) error {
	if err := r.st.Delete(ctx, store.ColTramites, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: trámite", domain.ErrNotFound)
		}
		return fmt.Errorf("eliminar trámite: %w", err)
	}
	return nil
}

func decodificar(reg store.Registro) (*domain.Tramite, error) {
	var t domain.Tramite
	if err := store.Decode(reg, &t); err != nil {
		return nil, fmt.Errorf("decodificar trámite: %w", err)
	}
	t.ID = reg.ID
	return &t, nil
}
