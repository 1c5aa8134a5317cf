// Package identity resuelve credenciales bearer en identidades verificadas
// y expone el gateway de autenticación del servicio.
package identity

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/sisvantec/sisvantec/internal/domain"
)

// tolerancia para exp/nbf entre relojes.
const leeway = 30 * time.Second

// Issuer firma y verifica tokens HS256 del servicio.
// Implementa TokenVerifier.
type Issuer struct {
	Iss       string
	Secret    []byte
	AccessTTL time.Duration
}

// NewIssuer crea un issuer con TTL por defecto de 15 minutos.
func NewIssuer(iss string, secret []byte) *Issuer {
	return &Issuer{Iss: iss, Secret: secret, AccessTTL: 15 * time.Minute}
}

// Sign emite un token para el usuario con claims de rol y municipio.
// Las claims de rol/municipio son informativas para el cliente; la
// autorización siempre recarga el perfil desde el almacén.
func (i *Issuer) Sign(u *domain.Usuario) (string, error) {
	now := time.Now()
	claims := jwtv5.MapClaims{
		"iss": i.Iss,
		"sub": u.UID,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(i.AccessTTL).Unix(),
		"rol": string(u.Rol),
	}
	if u.Municipio != "" {
		claims["municipio"] = u.Municipio
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.Secret)
	if err != nil {
		return "", fmt.Errorf("firmar token: %w", err)
	}
	return signed, nil
}

// Verify valida firma, iss y ventana temporal, y retorna el subject.
func (i *Issuer) Verify(token string) (string, error) {
	tok, err := jwtv5.Parse(token, func(t *jwtv5.Token) (any, error) {
		return i.Secret, nil
	}, jwtv5.WithValidMethods([]string{"HS256"}), jwtv5.WithLeeway(leeway))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenInvalid
	}
	if !tok.Valid {
		return "", domain.ErrTokenInvalid
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return "", domain.ErrTokenInvalid
	}
	if i.Iss != "" {
		if iss, _ := claims["iss"].(string); iss != i.Iss {
			return "", domain.ErrTokenInvalid
		}
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrTokenInvalid
	}
	return sub, nil
}

var _ TokenVerifier = (*Issuer)(nil)
