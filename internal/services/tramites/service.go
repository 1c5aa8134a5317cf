package tramites

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

// FormularioLoader carga la plantilla referenciada al crear un trámite.
// Lo implementa el repo de formularios.
type FormularioLoader interface {
	PorID(ctx context.Context, id string) (*domain.Formulario, error)
}

// CrearTramite son los datos de alta de una solicitud.
type CrearTramite struct {
	FormularioID string
	Respuestas   map[string]any
	// UsuarioNombre es informativo; se guarda tal como llega.
	UsuarioNombre string
}

// ActualizarTramite es el parche admitido sobre una solicitud. Los campos
// nil no se tocan.
type ActualizarTramite struct {
	Estado      *domain.Estado
	Comentarios *string
	Respuestas  map[string]any
}

// Service aplica la política de acceso antes de cada operación de trámites.
type Service struct {
	repo   *Repo
	forms  FormularioLoader
	engine *policy.Engine
}

// NewService construye el servicio de trámites.
func NewService(repo *Repo, forms FormularioLoader, engine *policy.Engine) *Service {
	return &Service{repo: repo, forms: forms, engine: engine}
}

// Create registra una solicitud contra un formulario activo. El submitter se
// fuerza al perfil autenticado; el título y el municipio de la plantilla se
// copian al trámite y no se recalculan nunca.
func (s *Service) Create(ctx context.Context, perfil policy.Perfil, in CrearTramite) (*domain.Tramite, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("tramites"),
		logger.Op("Create"),
	)

	dec := s.engine.Evaluate(perfil, policy.OpCrear, policy.RecursoTramites, policy.Objetivo{})
	if !dec.Permitida() {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}

	if strings.TrimSpace(in.FormularioID) == "" {
		return nil, fmt.Errorf("%w: formularioId obligatorio", domain.ErrValidation)
	}

	f, err := s.forms.PorID(ctx, in.FormularioID)
	if err != nil {
		return nil, err
	}
	if !f.Activo {
		return nil, fmt.Errorf("%w: el formulario no está disponible", domain.ErrUnavailable)
	}
	if err := validation.ValidarRespuestas(f, in.Respuestas); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &domain.Tramite{
		FormularioID:     f.ID,
		FormularioTitulo: f.Titulo,
		Municipio:        f.Municipio,
		UsuarioID:        dec.Alcance.UsuarioID,
		UsuarioNombre:    strings.TrimSpace(in.UsuarioNombre),
		Respuestas:       in.Respuestas,
		Estado:           domain.EstadoPendiente,
		CreadoEn:         now,
		ActualizadoEn:    now,
	}
	if t.UsuarioID == "" {
		// Superadmin pasa sin alcance forzado; el submitter es él mismo.
		t.UsuarioID = perfil.UID
	}

	id, err := s.repo.Crear(ctx, t)
	if err != nil {
		log.Error("alta de trámite falló", logger.Err(err))
		return nil, err
	}
	t.ID = id

	log.Info("trámite creado",
		logger.TramiteID(id),
		logger.FormularioID(f.ID),
		logger.Municipio(f.Municipio),
		logger.UsuarioID(t.UsuarioID),
	)
	return t, nil
}

// List retorna trámites visibles para el perfil: un admin queda acotado a su
// municipio y un usuario a sus propias solicitudes.
func (s *Service) List(ctx context.Context, perfil policy.Perfil, f policy.TramiteFilter) ([]domain.Tramite, error) {
	dec := s.engine.Evaluate(perfil, policy.OpListar, policy.RecursoTramites, policy.Objetivo{})
	if !dec.Permitida() {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}
	return s.repo.Listar(ctx, f.Merge(dec.Alcance))
}

// GetByID retorna una solicitud. Se carga primero y se evalúa contra su
// municipio y su dueño reales.
func (s *Service) GetByID(ctx context.Context, perfil policy.Perfil, id string) (*domain.Tramite, error) {
	t, err := s.repo.PorID(ctx, id)
	if err != nil {
		return nil, err
	}

	dec := s.engine.Evaluate(perfil, policy.OpLeer, policy.RecursoTramites, policy.Objetivo{
		Municipio:      t.Municipio,
		PropietarioUID: t.UsuarioID,
	})
	if !dec.Permitida() {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}
	return t, nil
}

// Update modifica estado, comentarios o respuestas de una solicitud. Solo
// staff, y un admin solo dentro de su municipio. El título y el municipio
// copiados en la creación nunca cambian.
func (s *Service) Update(ctx context.Context, perfil policy.Perfil, id string, in ActualizarTramite) (*domain.Tramite, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("tramites"),
		logger.Op("Update"),
		logger.TramiteID(id),
	)

	// Existencia antes que autorización detallada: el 404 no debe
	// depender del rol del caller.
	t, err := s.repo.PorID(ctx, id)
	if err != nil {
		return nil, err
	}

	dec := s.engine.Evaluate(perfil, policy.OpActualizar, policy.RecursoTramites, policy.Objetivo{
		Municipio:      t.Municipio,
		PropietarioUID: t.UsuarioID,
	})
	if !dec.Permitida() {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}

	parcial := map[string]any{}
	if in.Estado != nil {
		if !in.Estado.Valido() {
			return nil, fmt.Errorf("%w: estado inválido %q", domain.ErrValidation, *in.Estado)
		}
		t.Estado = *in.Estado
		parcial["estado"] = string(*in.Estado)
	}
	if in.Comentarios != nil {
		t.Comentarios = strings.TrimSpace(*in.Comentarios)
		parcial["comentarios"] = t.Comentarios
	}
	if in.Respuestas != nil {
		t.Respuestas = in.Respuestas
		parcial["respuestas"] = in.Respuestas
	}

	if len(parcial) == 0 {
		return t, nil
	}
	t.ActualizadoEn = time.Now().UTC()
	parcial["actualizadoEn"] = t.ActualizadoEn.Format(time.RFC3339Nano)

	if err := s.repo.Actualizar(ctx, id, parcial); err != nil {
		log.Error("actualización de trámite falló", logger.Err(err))
		return nil, err
	}

	log.Info("trámite actualizado", logger.Estado(string(t.Estado)))
	return t, nil
}

// HardDelete borra la solicitud de forma permanente. Con el motor en su
// configuración por defecto basta estar autenticado; con
// RestringirEliminarTramites solo superadmin.
func (s *Service) HardDelete(ctx context.Context, perfil policy.Perfil, id string) error {
	if _, err := s.repo.PorID(ctx, id); err != nil {
		return err
	}

	dec := s.engine.Evaluate(perfil, policy.OpEliminar, policy.RecursoTramites, policy.Objetivo{})
	if !dec.Permitida() {
		return fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}

	if err := s.repo.Eliminar(ctx, id); err != nil {
		return err
	}

	logger.From(ctx).Warn("trámite eliminado permanentemente",
		logger.Layer("service"),
		logger.Component("tramites"),
		logger.TramiteID(id),
		logger.UsuarioID(perfil.UID),
	)
	return nil
}

// Estadisticas agrega conteos por estado. Un admin queda acotado a su
// municipio; un superadmin puede pedir un municipio concreto o el total.
func (s *Service) Estadisticas(ctx context.Context, perfil policy.Perfil, municipio string) (*domain.Estadisticas, error) {
	dec := s.engine.Evaluate(perfil, policy.OpEstadisticas, policy.RecursoTramites, policy.Objetivo{})
	if !dec.Permitida() {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, dec.Motivo)
	}

	f := policy.TramiteFilter{Municipio: municipio}.Merge(dec.Alcance)
	ts, err := s.repo.Listar(ctx, f)
	if err != nil {
		return nil, err
	}

	st := &domain.Estadisticas{Total: len(ts)}
	for _, t := range ts {
		switch t.Estado {
		case domain.EstadoPendiente:
			st.Pendientes++
		case domain.EstadoEnRevision:
			st.EnRevision++
		case domain.EstadoAprobado:
			st.Aprobados++
		case domain.EstadoRechazado:
			st.Rechazados++
		}
	}
	return st, nil
}
