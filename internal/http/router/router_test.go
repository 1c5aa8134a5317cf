package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sisvantec/sisvantec/internal/domain"
	authctl "github.com/sisvantec/sisvantec/internal/http/controllers/auth"
	formctl "github.com/sisvantec/sisvantec/internal/http/controllers/formularios"
	healthctl "github.com/sisvantec/sisvantec/internal/http/controllers/health"
	tramctl "github.com/sisvantec/sisvantec/internal/http/controllers/tramites"
	"github.com/sisvantec/sisvantec/internal/identity"
	"github.com/sisvantec/sisvantec/internal/policy"
	svcformularios "github.com/sisvantec/sisvantec/internal/services/formularios"
	svctramites "github.com/sisvantec/sisvantec/internal/services/tramites"
	svcusuarios "github.com/sisvantec/sisvantec/internal/services/usuarios"
	"github.com/sisvantec/sisvantec/internal/store/memory"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   *int            `json:"total"`
}

// armarAPI construye el stack completo sobre el almacén en memoria, con un
// superadmin, un admin de "norte" y un vecino ya cargados.
func armarAPI(t *testing.T) (http.Handler, map[string]string) {
	t.Helper()
	st := memory.New()
	engine := &policy.Engine{}

	usuariosRepo := svcusuarios.NewRepo(st)
	issuer := identity.NewIssuer("sisvantec-test", []byte("secreto-de-test"))
	gateway := identity.NewGateway(issuer, issuer, usuariosRepo)

	usuariosSvc := svcusuarios.NewService(usuariosRepo, engine)
	formsRepo := svcformularios.NewRepo(st)
	formsSvc := svcformularios.NewService(formsRepo, engine)
	tramitesSvc := svctramites.NewService(svctramites.NewRepo(st), formsRepo, engine)

	handler := New(Deps{
		Gateway:     gateway,
		Auth:        authctl.NewController(gateway, usuariosSvc, nil),
		Formularios: formctl.NewController(formsSvc),
		Tramites:    tramctl.NewController(tramitesSvc, nil),
		Health:      healthctl.NewController(st, "test"),
	}, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("secreta123"), bcrypt.MinCost)
	require.NoError(t, err)

	tokens := make(map[string]string)
	cuentas := []domain.Usuario{
		{UID: "sa-1", Email: "sa@x.com", Rol: domain.RolSuperadmin},
		{UID: "ad-1", Email: "ad@x.com", Rol: domain.RolAdmin, Municipio: "norte"},
		{UID: "us-1", Email: "us@x.com", Rol: domain.RolUsuario},
	}
	for i := range cuentas {
		u := cuentas[i]
		u.Activo = true
		u.HashContrasena = string(hash)
		require.NoError(t, usuariosRepo.Crear(context.Background(), &u))
		token, err := issuer.Sign(&u)
		require.NoError(t, err)
		tokens[string(u.Rol)] = token
	}
	return handler, tokens
}

func hacer(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestAPI_FlujoCompleto(t *testing.T) {
	h, tokens := armarAPI(t)

	// Login real contra el API.
	rec, env := hacer(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "us@x.com", "password": "secreta123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	// El admin crea un formulario; el municipio declarado se ignora.
	rec, env = hacer(t, h, http.MethodPost, "/api/formularios", tokens["admin"], map[string]any{
		"titulo":    "Reclamo de luminarias",
		"municipio": "sur",
		"campos": []map[string]any{
			{"nombre": "direccion", "tipo": "text", "etiqueta": "Dirección", "requerido": true},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var form domain.Formulario
	require.NoError(t, json.Unmarshal(env.Data, &form))
	require.Equal(t, "norte", form.Municipio)

	// El listado público (anónimo) lo ve, con total.
	rec, env = hacer(t, h, http.MethodGet, "/api/formularios", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Total)
	require.Equal(t, 1, *env.Total)

	// El vecino crea un trámite; el submitter declarado se ignora.
	rec, env = hacer(t, h, http.MethodPost, "/api/tramites", tokens["usuario"], map[string]any{
		"formularioId": form.ID,
		"usuarioId":    "impostor",
		"respuestas":   map[string]any{"direccion": "Calle 1"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var tramite domain.Tramite
	require.NoError(t, json.Unmarshal(env.Data, &tramite))
	require.Equal(t, "us-1", tramite.UsuarioID)
	require.Equal(t, "Reclamo de luminarias", tramite.FormularioTitulo)

	// El admin lo pasa a revisión.
	rec, env = hacer(t, h, http.MethodPut, "/api/tramites/"+tramite.ID, tokens["admin"], map[string]any{
		"estado": "en_revision",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &tramite))
	require.Equal(t, domain.EstadoEnRevision, tramite.Estado)

	// Estadísticas para el admin.
	rec, env = hacer(t, h, http.MethodGet, "/api/tramites/estadisticas", tokens["admin"], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats domain.Estadisticas
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.Equal(t, 1, stats.Total)
	require.Equal(t, 1, stats.EnRevision)
}

func TestAPI_Autorizacion(t *testing.T) {
	h, tokens := armarAPI(t)

	// Sin token no se crean trámites.
	rec, _ := hacer(t, h, http.MethodPost, "/api/tramites", "", map[string]any{"formularioId": "x"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// El vecino no crea formularios.
	rec, _ = hacer(t, h, http.MethodPost, "/api/formularios", tokens["usuario"], map[string]any{
		"titulo": "No permitido",
		"campos": []map[string]any{{"nombre": "x", "tipo": "text", "etiqueta": "X"}},
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// El vecino no lista usuarios.
	rec, _ = hacer(t, h, http.MethodGet, "/api/auth/usuarios", tokens["usuario"], nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// El superadmin sí, con total.
	rec, env := hacer(t, h, http.MethodGet, "/api/auth/usuarios", tokens["superadmin"], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Total)
	require.Equal(t, 3, *env.Total)

	// La vista de cuentas no expone hashes.
	require.NotContains(t, string(env.Data), "hashContrasena")

	// Token inválido.
	rec, _ = hacer(t, h, http.MethodGet, "/api/auth/perfil", "basura", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_ErroresYRutas(t *testing.T) {
	h, tokens := armarAPI(t)

	rec, env := hacer(t, h, http.MethodGet, "/no-existe", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.False(t, env.Success)

	rec, _ = hacer(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Detalle de trámite inexistente: 404 también para superadmin.
	rec, _ = hacer(t, h, http.MethodGet, "/api/tramites/no-existe", tokens["superadmin"], nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Login con credenciales malas no distingue causa.
	rec, env = hacer(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nadie@x.com", "password": "loquesea",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, env.Success)

	// X-Request-ID siempre presente.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAPI_RegistroSoloSuperadmin(t *testing.T) {
	h, tokens := armarAPI(t)

	nuevo := map[string]any{
		"email": "nuevo@x.com", "password": "secreta123", "nombre": "Nuevo",
		"rol": "admin", "municipio": "sur",
	}
	rec, _ := hacer(t, h, http.MethodPost, "/api/auth/registro", tokens["admin"], nuevo)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := hacer(t, h, http.MethodPost, "/api/auth/registro", tokens["superadmin"], nuevo)
	require.Equal(t, http.StatusCreated, rec.Code, "body=%s", rec.Body.String())
	var creado map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &creado))
	require.Equal(t, "sur", creado["municipio"])

	// El nuevo admin puede loguearse de una.
	rec, env = hacer(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nuevo@x.com", "password": "secreta123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)
}
