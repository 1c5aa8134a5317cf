package identity

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/sisvantec/sisvantec/internal/domain"
	"github.com/sisvantec/sisvantec/internal/observability/logger"
)

// TokenVerifier mapea una credencial bearer a un subject estable.
type TokenVerifier interface {
	Verify(token string) (uid string, err error)
}

// TokenSigner emite una credencial para un usuario verificado.
type TokenSigner interface {
	Sign(u *domain.Usuario) (string, error)
}

// Directorio carga perfiles de usuario desde el almacén. Lo implementa el
// repo de usuarios; el gateway solo lee, salvo el registro de acceso.
type Directorio interface {
	PorUID(ctx context.Context, uid string) (*domain.Usuario, error)
	PorEmail(ctx context.Context, email string) (*domain.Usuario, error)
	RegistrarAcceso(ctx context.Context, uid string) error
}

// Gateway resuelve la credencial de un request en un perfil verificado.
type Gateway struct {
	verifier TokenVerifier
	signer   TokenSigner
	dir      Directorio
}

// NewGateway construye el gateway de identidad.
func NewGateway(verifier TokenVerifier, signer TokenSigner, dir Directorio) *Gateway {
	return &Gateway{verifier: verifier, signer: signer, dir: dir}
}

// Authenticate resuelve el header Authorization en el usuario verificado.
//
// Falla con ErrUnauthenticated (header ausente o malformado),
// ErrTokenExpired / ErrTokenInvalid (credencial rechazada), ErrNotFound
// (subject sin registro de usuario) o ErrInactiveAccount.
func (g *Gateway) Authenticate(ctx context.Context, authHeader string) (*domain.Usuario, error) {
	token, err := extraerBearer(authHeader)
	if err != nil {
		return nil, err
	}

	uid, err := g.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	u, err := g.dir.PorUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !u.Activo {
		return nil, domain.ErrInactiveAccount
	}
	return u, nil
}

// AuthenticateOptional nunca falla: cualquier problema con la credencial
// (ausente, inválida, cuenta inactiva o inexistente) produce identidad
// anónima (nil). Usado en lecturas públicas que igual quieren filtrar por
// rol cuando el caller resulta estar autenticado.
func (g *Gateway) AuthenticateOptional(ctx context.Context, authHeader string) *domain.Usuario {
	u, err := g.Authenticate(ctx, authHeader)
	if err != nil {
		return nil
	}
	return u
}

// Login verifica email y contraseña, emite un token firmado y registra el
// último acceso. El registro de acceso es best-effort: su falla se loguea
// y no bloquea un login exitoso (única escritura con esa tolerancia).
func (g *Gateway) Login(ctx context.Context, email, password string) (string, *domain.Usuario, error) {
	u, err := g.dir.PorEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if !u.Activo {
		return "", nil, domain.ErrInactiveAccount
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashContrasena), []byte(password)) != nil {
		return "", nil, fmt.Errorf("%w: credenciales inválidas", domain.ErrUnauthenticated)
	}

	token, err := g.signer.Sign(u)
	if err != nil {
		return "", nil, fmt.Errorf("emitir token: %w", err)
	}

	if err := g.dir.RegistrarAcceso(ctx, u.UID); err != nil {
		logger.From(ctx).Warn("no se pudo registrar último acceso",
			logger.Component("identity"),
			logger.UsuarioID(u.UID),
			logger.Err(err),
		)
	}
	return token, u, nil
}

func extraerBearer(authHeader string) (string, error) {
	if strings.TrimSpace(authHeader) == "" {
		return "", fmt.Errorf("%w: token no proporcionado", domain.ErrUnauthenticated)
	}
	partes := strings.SplitN(authHeader, " ", 2)
	if len(partes) != 2 || !strings.EqualFold(partes[0], "Bearer") || strings.TrimSpace(partes[1]) == "" {
		return "", fmt.Errorf("%w: formato inválido, use: Bearer TOKEN", domain.ErrUnauthenticated)
	}
	return strings.TrimSpace(partes[1]), nil
}
