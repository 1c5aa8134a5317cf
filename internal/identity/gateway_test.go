package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sisvantec/sisvantec/internal/domain"
)

// directorioFake implementa Directorio en memoria para los tests del
// gateway, con una falla inyectable en el registro de acceso.
type directorioFake struct {
	usuarios      map[string]*domain.Usuario
	accesos       int
	fallaRegistro error
}

func (d *directorioFake) PorUID(_ context.Context, uid string) (*domain.Usuario, error) {
	if u, ok := d.usuarios[uid]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (d *directorioFake) PorEmail(_ context.Context, email string) (*domain.Usuario, error) {
	for _, u := range d.usuarios {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (d *directorioFake) RegistrarAcceso(_ context.Context, _ string) error {
	if d.fallaRegistro != nil {
		return d.fallaRegistro
	}
	d.accesos++
	return nil
}

func nuevoGateway(t *testing.T) (*Gateway, *directorioFake) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreta123"), bcrypt.MinCost)
	require.NoError(t, err)

	dir := &directorioFake{usuarios: map[string]*domain.Usuario{
		"uid-1": {
			UID: "uid-1", Email: "activo@x.com", Rol: domain.RolUsuario,
			Activo: true, HashContrasena: string(hash),
		},
		"uid-2": {
			UID: "uid-2", Email: "inactivo@x.com", Rol: domain.RolUsuario,
			Activo: false, HashContrasena: string(hash),
		},
	}}
	iss := NewIssuer("sisvantec", []byte("secreto-de-test"))
	return NewGateway(iss, iss, dir), dir
}

func TestLogin_Exitoso(t *testing.T) {
	gw, dir := nuevoGateway(t)

	token, u, err := gw.Login(context.Background(), "activo@x.com", "secreta123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "uid-1", u.UID)
	require.Equal(t, 1, dir.accesos)

	// El token emitido autentica.
	verificado, err := gw.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	require.Equal(t, "uid-1", verificado.UID)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	gw, _ := nuevoGateway(t)

	_, _, err := gw.Login(context.Background(), "activo@x.com", "incorrecta")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, _, err = gw.Login(context.Background(), "nadie@x.com", "secreta123")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogin_CuentaInactiva(t *testing.T) {
	gw, _ := nuevoGateway(t)
	_, _, err := gw.Login(context.Background(), "inactivo@x.com", "secreta123")
	require.ErrorIs(t, err, domain.ErrInactiveAccount)
}

// El registro de último acceso es best-effort: su falla no bloquea el login.
func TestLogin_RegistroDeAccesoNoBloquea(t *testing.T) {
	gw, dir := nuevoGateway(t)
	dir.fallaRegistro = domain.ErrUnavailable

	token, _, err := gw.Login(context.Background(), "activo@x.com", "secreta123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestAuthenticate_HeaderMalformado(t *testing.T) {
	gw, _ := nuevoGateway(t)

	for _, h := range []string{"", "Bearer", "Basic abc", "Bearer "} {
		_, err := gw.Authenticate(context.Background(), h)
		require.ErrorIs(t, err, domain.ErrUnauthenticated, "header=%q", h)
	}
}

func TestAuthenticate_CuentaInactiva(t *testing.T) {
	gw, dir := nuevoGateway(t)
	iss := NewIssuer("sisvantec", []byte("secreto-de-test"))

	token, err := iss.Sign(dir.usuarios["uid-2"])
	require.NoError(t, err)

	_, err = gw.Authenticate(context.Background(), "Bearer "+token)
	require.ErrorIs(t, err, domain.ErrInactiveAccount)
}

func TestAuthenticateOptional_NuncaFalla(t *testing.T) {
	gw, _ := nuevoGateway(t)

	require.Nil(t, gw.AuthenticateOptional(context.Background(), ""))
	require.Nil(t, gw.AuthenticateOptional(context.Background(), "Bearer basura"))

	token, _, err := gw.Login(context.Background(), "activo@x.com", "secreta123")
	require.NoError(t, err)
	u := gw.AuthenticateOptional(context.Background(), "Bearer "+token)
	require.NotNil(t, u)
	require.Equal(t, "uid-1", u.UID)
}
