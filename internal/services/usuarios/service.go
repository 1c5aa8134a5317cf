package usuarios

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sisvantec/sisvantec/internal/domain"
	"github.com/sisvantec/sisvantec/internal/observability/logger"
	"github.com/sisvantec/sisvantec/internal/policy"
	"github.com/sisvantec/sisvantec/internal/validation"
)

// CrearUsuario son los datos de alta de una cuenta.
type CrearUsuario struct {
	Email     string
	Password  string
	Nombre    string
	Rol       domain.Rol
	Municipio string
}

// ActualizarUsuario es el parche admitido sobre una cuenta. Los campos nil
// no se tocan.
type ActualizarUsuario struct {
	Nombre    *string
	Rol       *domain.Rol
	Municipio *string
	Activo    *bool
}

// Service aplica la política de acceso antes de cada operación de usuarios.
type Service struct {
	repo   *Repo
	engine *policy.Engine
}

// NewService construye el servicio de usuarios.
func NewService(repo *Repo, engine *policy.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

// Create registra una cuenta nueva. Solo superadmin.
func (s *Service) Create(ctx context.Context, perfil policy.Perfil, in CrearUsuario) (*domain.Usuario, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("usuarios"),
		logger.Op("Create"),
	)

	dec := s.engine.Evaluate(perfil, policy.OpCrear, policy.RecursoUsuarios, policy.Objetivo{})
	if !dec.Permitida() {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}

	if err := validation.ValidarEmail(in.Email); err != nil {
		return nil, err
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos 8 caracteres", domain.ErrValidation)
	}

	// Los roles sin municipio lo llevan vacío; declararlo no es error,
	// se descarta en silencio (igual que los overrides de alcance).
	municipio := strings.TrimSpace(in.Municipio)
	if in.Rol != domain.RolAdmin {
		municipio = ""
	}

	u := &domain.Usuario{
		UID:       uuid.NewString(),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Nombre:    strings.TrimSpace(in.Nombre),
		Rol:       in.Rol,
		Municipio: municipio,
		Activo:    true,
		CreadoEn:  time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.PorEmail(ctx, u.Email); err == nil {
		return nil, fmt.Errorf("%w: el email ya está registrado", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashear contraseña: %w", err)
	}
	u.HashContrasena = string(hash)

	if err := s.repo.Crear(ctx, u); err != nil {
		log.Error("alta de usuario falló", logger.Err(err))
		return nil, err
	}

	log.Info("usuario creado",
		logger.UsuarioID(u.UID),
		logger.Rol(string(u.Rol)),
		logger.Municipio(u.Municipio),
	)
	return u, nil
}

// List retorna usuarios. Solo superadmin.
func (s *Service) List(ctx context.Context, perfil policy.Perfil, f policy.UsuarioFilter) ([]domain.Usuario, error) {
	dec := s.engine.Evaluate(perfil, policy.OpListar, policy.RecursoUsuarios, policy.Objetivo{})
	if !dec.Permitida() {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}
	return s.repo.Listar(ctx, f)
}

// GetByUID retorna una cuenta. Cualquier usuario puede leer su propio
// perfil; el resto es exclusivo de superadmin.
func (s *Service) GetByUID(ctx context.Context, perfil policy.Perfil, uid string) (*domain.Usuario, error) {
	u, err := s.repo.PorUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	dec := s.engine.Evaluate(perfil, policy.OpLeer, policy.RecursoUsuarios,
		policy.Objetivo{PropietarioUID: u.UID})
	if !dec.Permitida() {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}
	return u, nil
}

// Update modifica nombre, rol, municipio o estado de una cuenta. Solo
// superadmin. El invariante rol/municipio se re-verifica sobre el estado
// resultante.
func (s *Service) Update(ctx context.Context, perfil policy.Perfil, uid string, in ActualizarUsuario) (*domain.Usuario, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("usuarios"),
		logger.Op("Update"),
		logger.UsuarioID(uid),
	)

	// Existencia antes que autorización detallada: un 404 no debe
	// confirmar nada a un caller sin permisos.
	u, err := s.repo.PorUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	dec := s.engine.Evaluate(perfil, policy.OpActualizar, policy.RecursoUsuarios, policy.Objetivo{})
	if !dec.Permitida() {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}

	if in.Nombre != nil {
		u.Nombre = strings.TrimSpace(*in.Nombre)
	}
	if in.Rol != nil {
		u.Rol = *in.Rol
	}
	if in.Municipio != nil {
		u.Municipio = strings.TrimSpace(*in.Municipio)
	}
	if in.Activo != nil {
		u.Activo = *in.Activo
	}
	if u.Rol != domain.RolAdmin && in.Municipio == nil {
		// Cambio de rol hacia uno sin municipio: se limpia en silencio.
		u.Municipio = ""
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	parcial := map[string]any{
		"nombre":    u.Nombre,
		"rol":       string(u.Rol),
		"municipio": u.Municipio,
		"activo":    u.Activo,
	}
	if err := s.repo.Actualizar(ctx, uid, parcial); err != nil {
		log.Error("actualización de usuario falló", logger.Err(err))
		return nil, err
	}

	log.Info("usuario actualizado", logger.Rol(string(u.Rol)))
	return u, nil
}

// Deactivate desactiva la cuenta (nunca hay borrado físico de usuarios) y
// con ello el proveedor de identidad deja de aceptar sus credenciales.
func (s *Service) Deactivate(ctx context.Context, perfil policy.Perfil, uid string) error {
	u, err := s.repo.PorUID(ctx, uid)
	if err != nil {
		return err
	}

	dec := s.engine.Evaluate(perfil, policy.OpDesactivar, policy.RecursoUsuarios, policy.Objetivo{})
	if !dec.Permitida() {
		return fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}

	if !u.Activo {
		return nil
	}
	if err := s.repo.Actualizar(ctx, uid, map[string]any{"activo": false}); err != nil {
		return err
	}

	logger.From(ctx).Info("usuario desactivado",
		logger.Layer("service"),
		logger.Component("usuarios"),
		logger.UsuarioID(uid),
	)
	return nil
}
