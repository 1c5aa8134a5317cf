// Package usuarios gestiona el ciclo de vida de las cuentas del sistema.
package usuarios

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sisvantec/sisvantec/internal/domain"
	"github.com/sisvantec/sisvantec/internal/identity"
	"github.com/sisvantec/sisvantec/internal/policy"
	"github.com/sisvantec/sisvantec/internal/store"
)

// Repo persiste usuarios en el almacén de documentos. No aplica política:
// eso es responsabilidad del Service.
type Repo struct {
	st store.Store
}

// NewRepo construye el repo de usuarios.
func NewRepo(st store.Store) *Repo {
	return &Repo{st: st}
}

// PorUID carga un usuario por su UID (id de documento).
func (r *Repo) PorUID(ctx context.Context, uid string) (*domain.Usuario, error) {
	reg, err := r.st.Get(ctx, store.ColUsuarios, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: usuario", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("cargar usuario: %w", err)
	}
	return decodificar(reg)
}

// PorEmail busca un usuario por email.
func (r *Repo) PorEmail(ctx context.Context, email string) (*domain.Usuario, error) {
	regs, err := r.st.Query(ctx, store.ColUsuarios,
		[]store.Condicion{{Campo: "email", Valor: email}}, nil)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario por email: %w", err)
	}
	if len(regs) == 0 {
		return nil, fmt.Errorf("%w: usuario", domain.ErrNotFound)
	}
	return decodificar(regs[0])
}

// Crear escribe un usuario nuevo con su UID como id de documento.
func (r *Repo) Crear(ctx context.Context, u *domain.Usuario) error {
	datos, err := codificar(u)
	if err != nil {
		return err
	}
	if err := r.st.Put(ctx, store.ColUsuarios, u.UID, datos); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("%w: usuario ya existe", domain.ErrConflict)
		}
		return fmt.Errorf("crear usuario: %w", err)
	}
	return nil
}

// Listar retorna usuarios según el filtro, ordenados por creación
// descendente.
func (r *Repo) Listar(ctx context.Context, f policy.UsuarioFilter) ([]domain.Usuario, error) {
	var conds []store.Condicion
	if f.Rol != "" {
		conds = append(conds, store.Condicion{Campo: "rol", Valor: string(f.Rol)})
	}
	if f.Municipio != "" {
		conds = append(conds, store.Condicion{Campo: "municipio", Valor: f.Municipio})
	}
	if f.Activo != nil {
		conds = append(conds, store.Condicion{Campo: "activo", Valor: *f.Activo})
	}

	orden := store.PorCreadoEnDesc
	regs, err := r.st.Query(ctx, store.ColUsuarios, conds, &orden)
	if err != nil {
		return nil, fmt.Errorf("listar usuarios: %w", err)
	}

	out := make([]domain.Usuario, 0, len(regs))
	for _, reg := range regs {
		u, err := decodificar(reg)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, nil
}

// Actualizar aplica un parche parcial al documento del usuario.
func (r *Repo) Actualizar(ctx context.Context, uid string, parcial map[string]any) error {
	if err := r.st.Update(ctx, store.ColUsuarios, uid, parcial); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: usuario", domain.ErrNotFound)
		}
		return fmt.Errorf("actualizar usuario: %w", err)
	}
	return nil
}

// RegistrarAcceso marca el último acceso del usuario a ahora.
func (r *Repo) RegistrarAcceso(ctx context.Context, uid string) error {
	return r.Actualizar(ctx, uid, map[string]any{
		"ultimoAcceso": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func codificar(u *domain.Usuario) (map[string]any, error) {
	datos, err := store.Encode(u)
	if err != nil {
		return nil, fmt.Errorf("serializar usuario: %w", err)
	}
	// El hash no viaja por JSON (tag "-"); se persiste aparte.
	if u.HashContrasena != "" {
		datos["hashContrasena"] = u.HashContrasena
	}
	return datos, nil
}

func decodificar(reg store.Registro) (*domain.Usuario, error) {
	var u domain.Usuario
	if err := store.Decode(reg, &u); err != nil {
		return nil, fmt.Errorf("decodificar usuario: %w", err)
	}
	if h, ok := reg.Datos["hashContrasena"].(string); ok {
		u.HashContrasena = h
	}
	if u.UID == "" {
		u.UID = reg.ID
	}
	return &u, nil
}

var _ identity.Directorio = (*Repo)(nil)
