package usuarios

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sisvantec/sisvantec/internal/domain"
	"github.com/sisvantec/sisvantec/internal/policy"
	"github.com/sisvantec/sisvantec/internal/store/memory"
)

func nuevoServicio(t *testing.T) (*Service, *Repo) {
	t.Helper()
	repo := NewRepo(memory.New())
	return NewService(repo, &policy.Engine{}), repo
}

var perfilSuperadmin = policy.Perfil{UID: "sa-1", Rol: domain.RolSuperadmin}

func TestCreate_SoloSuperadmin(t *testing.T) {
	svc, _ := nuevoServicio(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, policy.Perfil{UID: "ad-1", Rol: domain.RolAdmin, Municipio: "norte"}, CrearUsuario{
		Email: "x@y.com", Password: "secreta123", Rol: domain.RolUsuario,
	})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreate_HashYDefaults(t *testing.T) {
	svc, repo := nuevoServicio(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, perfilSuperadmin, CrearUsuario{
		Email:    "Vecino@Example.com",
		Password: "secreta123",
		Nombre:   "Vecino",
		Rol:      domain.RolUsuario,
	})
	require.NoError(t, err)
	require.Equal(t, "vecino@example.com", u.Email)
	require.True(t, u.Activo)
	require.NotEmpty(t, u.UID)

	guardado, err := repo.PorUID(ctx, u.UID)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(guardado.HashContrasena), []byte("secreta123")))
}

func TestCreate_InvarianteAdminMunicipio(t *testing.T) {
	svc, _ := nuevoServicio(t)
	ctx := context.Background()

	// Admin sin municipio es inválido.
	_, err := svc.Create(ctx, perfilSuperadmin, CrearUsuario{
		Email: "a@b.com", Password: "secreta123", Rol: domain.RolAdmin,
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	// El municipio declarado para un rol sin municipio se descarta en
	// silencio, no es error.
	u, err := svc.Create(ctx, perfilSuperadmin, CrearUsuario{
		Email: "b@c.com", Password: "secreta123", Rol: domain.RolUsuario, Municipio: "norte",
	})
	require.NoError(t, err)
	require.Empty(t, u.Municipio)
}

func TestCreate_EmailDuplicado(t *testing.T) {
	svc, _ := nuevoServicio(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, perfilSuperadmin, CrearUsuario{
		Email: "dup@x.com", Password: "secreta123", Rol: domain.RolUsuario,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, perfilSuperadmin, CrearUsuario{
		Email: "dup@x.com", Password: "otraclave99", Rol: domain.RolUsuario,
	})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestGetByUID_LecturaPropia(t *testing.T) {
	svc, _ := nuevoServicio(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, perfilSuperadmin, CrearUsuario{
		Email: "self@x.com", Password: "secreta123", Rol: domain.RolUsuario,
	})
	require.NoError(t, err)

	propio := policy.Perfil{UID: u.UID, Rol: domain.RolUsuario}
	leido, err := svc.GetByUID(ctx, propio, u.UID)
	require.NoError(t, err)
	require.Equal(t, u.UID, leido.UID)

	otro := policy.Perfil{UID: "us-99", Rol: domain.RolUsuario}
	_, err = svc.GetByUID(ctx, otro, u.UID)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdate_CambioDeRolLimpiaMunicipio(t *testing.T) {
	svc, _ := nuevoServicio(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, perfilSuperadmin, CrearUsuario{
		Email: "adm@x.com", Password: "secreta123", Rol: domain.RolAdmin, Municipio: "norte",
	})
	require.NoError(t, err)

	rol := domain.RolUsuario
	actualizado, err := svc.Update(ctx, perfilSuperadmin, u.UID, ActualizarUsuario{Rol: &rol})
	require.NoError(t, err)
	require.Equal(t, domain.RolUsuario, actualizado.Rol)
	require.Empty(t, actualizado.Municipio)
}

func TestDeactivate_EsSoftEIdempotente(t *testing.T) {
	svc, repo := nuevoServicio(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, perfilSuperadmin, CrearUsuario{
		Email: "baja@x.com", Password: "secreta123", Rol: domain.RolUsuario,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, perfilSuperadmin, u.UID))
	require.NoError(t, svc.Deactivate(ctx, perfilSuperadmin, u.UID))

	// El documento sigue existiendo, solo inactivo.
	guardado, err := repo.PorUID(ctx, u.UID)
	require.NoError(t, err)
	require.False(t, guardado.Activo)
}

func TestDeactivate_NoExiste(t *testing.T) {
	svc, _ := nuevoServicio(t)
	err := svc.Deactivate(context.Background(), perfilSuperadmin, "no-existe")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
