package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sisvantec/sisvantec/internal/domain"
)

func usuarioDePrueba() *domain.Usuario {
	return &domain.Usuario{
		UID:       "uid-1",
		Email:     "a@b.com",
		Rol:       domain.RolAdmin,
		Municipio: "norte",
		Activo:    true,
	}
}

func TestIssuer_SignVerify(t *testing.T) {
	iss := NewIssuer("sisvantec", []byte("secreto-de-test"))

	token, err := iss.Sign(usuarioDePrueba())
	require.NoError(t, err)

	uid, err := iss.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "uid-1", uid)
}

func TestIssuer_RechazaFirmaAjena(t *testing.T) {
	iss := NewIssuer("sisvantec", []byte("secreto-de-test"))
	otro := NewIssuer("sisvantec", []byte("otro-secreto"))

	token, err := otro.Sign(usuarioDePrueba())
	require.NoError(t, err)

	_, err = iss.Verify(token)
	require.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestIssuer_RechazaIssAjeno(t *testing.T) {
	iss := NewIssuer("sisvantec", []byte("secreto-de-test"))
	otro := NewIssuer("impostor", []byte("secreto-de-test"))

	token, err := otro.Sign(usuarioDePrueba())
	require.NoError(t, err)

	_, err = iss.Verify(token)
	require.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestIssuer_Expiracion(t *testing.T) {
	iss := NewIssuer("sisvantec", []byte("secreto-de-test"))
	// TTL negativo mayor que la tolerancia de reloj.
	iss.AccessTTL = -2 * leeway

	token, err := iss.Sign(usuarioDePrueba())
	require.NoError(t, err)

	_, err = iss.Verify(token)
	require.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestIssuer_TTLPorDefecto(t *testing.T) {
	iss := NewIssuer("sisvantec", []byte("s"))
	require.Equal(t, 15*time.Minute, iss.AccessTTL)
}

func TestIssuer_Basura(t *testing.T) {
	iss := NewIssuer("sisvantec", []byte("secreto-de-test"))
	_, err := iss.Verify("no.es.un.jwt")
	require.ErrorIs(t, err, domain.ErrTokenInvalid)
}
