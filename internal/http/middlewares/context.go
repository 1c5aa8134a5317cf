package middlewares

import (
	"context"

	"github.com/sisvantec/sisvantec/internal/domain"
	"github.com/sisvantec/sisvantec/internal/policy"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyUsuario
)

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, rid)
}

// GetRequestID retorna el request ID del contexto, o "".
func GetRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKeyRequestID).(string)
	return rid
}

// WithUsuario guarda el usuario autenticado en el contexto.
func WithUsuario(ctx context.Context, u *domain.Usuario) context.Context {
	return context.WithValue(ctx, ctxKeyUsuario, u)
}

// GetUsuario retorna el usuario autenticado del contexto, o nil.
func GetUsuario(ctx context.Context) *domain.Usuario {
	u, _ := ctx.Value(ctxKeyUsuario).(*domain.Usuario)
	return u
}

// GetPerfil deriva el perfil de autorización del contexto. Sin usuario
// autenticado produce el perfil anónimo.
func GetPerfil(ctx context.Context) policy.Perfil {
	return policy.PerfilDe(GetUsuario(ctx))
}
