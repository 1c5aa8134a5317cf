package formularios

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sisvantec/sisvantec/internal/domain"
	"github.com/sisvantec/sisvantec/internal/observability/logger"
	"github.com/sisvantec/sisvantec/internal/policy"
	"github.com/sisvantec/sisvantec/internal/validation"
)

// CrearFormulario son los datos de alta de una plantilla.
type CrearFormulario struct {
	Titulo      string
	Descripcion string
	Campos      []domain.Campo
	// Municipio declarado por el caller. Para un admin se ignora y se
	// fuerza el suyo; para superadmin es obligatorio.
	Municipio string
}

// ActualizarFormulario es el parche admitido sobre una plantilla. Los campos
// nil no se tocan.
type ActualizarFormulario struct {
	Titulo      *string
	Descripcion *string
	Campos      []domain.Campo
	Activo      *bool
	// Municipio solo lo puede cambiar superadmin.
	Municipio *string
}

// Service aplica la política de acceso antes de cada operación de
// formularios.
type Service struct {
	repo   *Repo
	engine *policy.Engine
}

// NewService construye el servicio de formularios.
func NewService(repo *Repo, engine *policy.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

// Create da de alta una plantilla. Un admin siempre crea para su propio
// municipio, sin importar lo que declare; superadmin debe declararlo.
func (s *Service) Create(ctx context.Context, perfil policy.Perfil, in CrearFormulario) (*domain.Formulario, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("formularios"),
		logger.Op("Create"),
	)

	dec := s.engine.Evaluate(perfil, policy.OpCrear, policy.RecursoFormularios, policy.Objetivo{})
	if !dec.Permitida() {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}

	if err := validation.ValidarTitulo(in.Titulo); err != nil {
		return nil, err
	}
	if err := validation.ValidarDescripcion(in.Descripcion); err != nil {
		return nil, err
	}
	if err := validation.ValidarCampos(in.Campos); err != nil {
		return nil, err
	}

	municipio := strings.TrimSpace(in.Municipio)
	if dec.Alcance.Municipio != "" {
		// Override silencioso: gana el municipio del perfil.
		municipio = dec.Alcance.Municipio
	}
	if municipio == "" {
		return nil, fmt.Errorf("%w: municipio obligatorio", domain.ErrValidation)
	}

	now := time.Now().UTC()
	f := &domain.Formulario{
		Titulo:        strings.TrimSpace(in.Titulo),
		Descripcion:   strings.TrimSpace(in.Descripcion),
		Campos:        in.Campos,
		Activo:        true,
		Municipio:     municipio,
		CreadoPor:     perfil.UID,
		CreadoEn:      now,
		ActualizadoEn: now,
	}

	id, err := s.repo.Crear(ctx, f)
	if err != nil {
		log.Error("alta de formulario falló", logger.Err(err))
		return nil, err
	}
	f.ID = id

	log.Info("formulario creado",
		logger.FormularioID(id),
		logger.Municipio(municipio),
		logger.UsuarioID(perfil.UID),
	)
	return f, nil
}

// List retorna formularios visibles para el perfil. Un admin queda acotado a
// su municipio; usuarios y anónimos solo ven plantillas activas.
func (s *Service) List(ctx context.Context, perfil policy.Perfil, f policy.FormularioFilter) ([]domain.Formulario, error) {
	dec := s.engine.Evaluate(perfil, policy.OpListar, policy.RecursoFormularios, policy.Objetivo{})
	if !dec.Permitida() {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}

	f = f.Merge(dec.Alcance)
	if !perfil.EsStaff() {
		activo := true
		f.Activo = &activo
	}
	return s.repo.Listar(ctx, f)
}

// GetByID retorna una plantilla. Se carga primero y se evalúa con sus
// atributos reales; un no-staff no ve plantillas inactivas y un admin no ve
// las de otro municipio.
func (s *Service) GetByID(ctx context.Context, perfil policy.Perfil, id string) (*domain.Formulario, error) {
	f, err := s.repo.PorID(ctx, id)
	if err != nil {
		return nil, err
	}

	dec := s.engine.Evaluate(perfil, policy.OpLeer, policy.RecursoFormularios, policy.Objetivo{
		Municipio: f.Municipio,
		Activo:    &f.Activo,
	})
	if !dec.Permitida() {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}
	return f, nil
}

// Update modifica una plantilla existente. El municipio solo lo cambia
// superadmin; para el resto el campo se ignora en silencio.
func (s *Service) Update(ctx context.Context, perfil policy.Perfil, id string, in ActualizarFormulario) (*domain.Formulario, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("formularios"),
		logger.Op("Update"),
		logger.FormularioID(id),
	)

	// Existencia antes que autorización detallada: el 404 no debe
	// depender del rol del caller.
	f, err := s.repo.PorID(ctx, id)
	if err != nil {
		return nil, err
	}

	dec := s.engine.Evaluate(perfil, policy.OpActualizar, policy.RecursoFormularios, policy.Objetivo{
		Municipio: f.Municipio,
	})
	if !dec.Permitida() {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}

	parcial := map[string]any{}
	if in.Titulo != nil {
		if err := validation.ValidarTitulo(*in.Titulo); err != nil {
			return nil, err
		}
		f.Titulo = strings.TrimSpace(*in.Titulo)
		parcial["titulo"] = f.Titulo
	}
	if in.Descripcion != nil {
		if err := validation.ValidarDescripcion(*in.Descripcion); err != nil {
			return nil, err
		}
		f.Descripcion = strings.TrimSpace(*in.Descripcion)
		parcial["descripcion"] = f.Descripcion
	}
	if in.Campos != nil {
		if err := validation.ValidarCampos(in.Campos); err != nil {
			return nil, err
		}
		f.Campos = in.Campos
		parcial["campos"] = in.Campos
	}
	if in.Activo != nil {
		f.Activo = *in.Activo
		parcial["activo"] = *in.Activo
	}
	if in.Municipio != nil && perfil.Rol == domain.RolSuperadmin {
		m := strings.TrimSpace(*in.Municipio)
		if m == "" {
			return nil, fmt.Errorf("%w: municipio obligatorio", domain.ErrValidation)
		}
		f.Municipio = m
		parcial["municipio"] = m
	}

	if len(parcial) == 0 {
		return f, nil
	}
	f.ActualizadoEn = time.Now().UTC()
	parcial["actualizadoEn"] = f.ActualizadoEn.Format(time.RFC3339Nano)

	if err := s.repo.Actualizar(ctx, id, parcial); err != nil {
		log.Error("actualización de formulario falló", logger.Err(err))
		return nil, err
	}

	log.Info("formulario actualizado", logger.Municipio(f.Municipio))
	return f, nil
}

// SoftDelete desactiva la plantilla. Idempotente: desactivar una plantilla
// ya inactiva no es error. Los trámites existentes no se tocan.
func (s *Service) SoftDelete(ctx context.Context, perfil policy.Perfil, id string) error {
	f, err := s.repo.PorID(ctx, id)
	if err != nil {
		return err
	}

	dec := s.engine.Evaluate(perfil, policy.OpDesactivar, policy.RecursoFormularios, policy.Objetivo{
		Municipio: f.Municipio,
	})
	if !dec.Permitida() {
		return fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}

	if !f.Activo {
		return nil
	}
	if err := s.repo.Actualizar(ctx, id, map[string]any{
		"activo":        false,
		"actualizadoEn": time.Now().UTC().Format(time.RFC3339Nano),
	}); err != nil {
		return err
	}

	logger.From(ctx).Info("formulario desactivado",
		logger.Layer("service"),
		logger.Component("formularios"),
		logger.FormularioID(id),
	)
	return nil
}

// HardDelete borra la plantilla de forma permanente. Solo superadmin.
// Los trámites que la referencian conservan sus copias de título y
// municipio y siguen siendo legibles.
func (s *Service) HardDelete(ctx context.Context, perfil policy.Perfil, id string) error {
	if _, err := s.repo.PorID(ctx, id); err != nil {
		return err
	}

	dec := s.engine.Evaluate(perfil, policy.OpEliminar, policy.RecursoFormularios, policy.Objetivo{})
	if !dec.Permitida() {
		return fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}

	if err := s.repo.Eliminar(ctx, id); err != nil {
		return err
	}

	logger.From(ctx).Warn("formulario eliminado permanentemente",
		logger.Layer("service"),
		logger.Component("formularios"),
		logger.FormularioID(id),
		logger.UsuarioID(perfil.UID),
	)
	return nil
}
