// Package formularios gestiona las plantillas de trámite de cada municipio.
package formularios

import (
	"context"
	"errors"
	"fmt"

	"github.com/sisvantec/sisvantec/internal/domain"
	"github.com/sisvantec/sisvantec/internal/policy"
	"github.com/sisvantec/sisvantec/internal/store"
)

// Repo persiste formularios en el almacén de documentos. No aplica política:
// eso es responsabilidad del Service.
type Repo struct {
	st store.Store
}

// NewRepo construye el repo de formularios.
func NewRepo(st store.Store) *Repo {
	return &Repo{st: st}
}

// PorID carga un formulario por id de documento.
func (r *Repo) PorID(ctx context.Context, id string) (*domain.Formulario, error) {
	reg, err := r.st.Get(ctx, store.ColFormularios, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: formulario", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("cargar formulario: %w", err)
	}
	return decodificar(reg)
}

// Crear inserta un formulario nuevo y retorna el id generado.
func (r *Repo) Crear(ctx context.Context, f *domain.Formulario) (string, error) {
	datos, err := store.Encode(f)
	if err != nil {
		return "", fmt.Errorf("serializar formulario: %w", err)
	}
	delete(datos, "id")
	id, err := r.st.Insert(ctx, store.ColFormularios, datos)
	if err != nil {
		return "", fmt.Errorf("crear formulario: %w", err)
	}
	return id, nil
}

// Listar retorna formularios según el filtro, ordenados por creación
// descendente.
func (r *Repo) Listar(ctx context.Context, f policy.FormularioFilter) ([]domain.Formulario, error) {
	var conds []store.Condicion
	if f.Municipio != "" {
		conds = append(conds, store.Condicion{Campo: "municipio", Valor: f.Municipio})
	}
	if f.Activo != nil {
		conds = append(conds, store.Condicion{Campo: "activo", Valor: *f.Activo})
	}
	if f.CreadoPor != "" {
		conds = append(conds, store.Condicion{Campo: "creadoPor", Valor: f.CreadoPor})
	}

	orden := store.PorCreadoEnDesc
	regs, err := r.st.Query(ctx, store.ColFormularios, conds, &orden)
	if err != nil {
		return nil, fmt.Errorf("listar formularios: %w", err)
	}

	out := make([]domain.Formulario, 0, len(regs))
	for _, reg := range regs {
		fo, err := decodificar(reg)
		if err != nil {
			return nil, err
		}
		out = append(out, *fo)
	}
	return out, nil
}

// Actualizar aplica un parche parcial al documento del formulario.
func (r *Repo) Actualizar(ctx context.Context, id string, parcial map[string]any) error {
	if err := r.st.Update(ctx, store.ColFormularios, id, parcial); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: formulario", domain.ErrNotFound)
		}
		return fmt.Errorf("actualizar formulario: %w", err)
	}
	return nil
}

// Eliminar borra el documento del formulario de forma permanente.
func (r *Repo) Eliminar(ctx context.Context, id string) error {
	if err := r.st.Delete(ctx, store.ColFormularios, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: formulario", domain.ErrNotFound)
		}
		return fmt.Errorf("eliminar formulario: %w", err)
	}
	return nil
}

func decodificar(reg store.Registro) (*domain.Formulario, error) {
	var f domain.Formulario
	if err := store.Decode(reg, &f); err != nil {
		return nil, fmt.Errorf("decodificar formulario: %w", err)
	}
	f.ID = reg.ID
	return &f, nil
}
