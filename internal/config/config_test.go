package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func escribirYAML(t *testing.T, contenido string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contenido), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "dev", cfg.App.Env)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "memory", cfg.Storage.Driver)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL())
	require.Equal(t, time.Minute, cfg.RateWindow())
	require.Equal(t, 60, cfg.Rate.MaxRequests)
	require.False(t, cfg.Policy.RestringirEliminarTramites)
}

func TestLoad_YAMLYEnvOverride(t *testing.T) {
	path := escribirYAML(t, `
server:
  addr: ":9090"
jwt:
  secret: desde-yaml
  access_ttl: 30m
policy:
  restringir_eliminar_tramites: true
`)
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("JWT_SECRET", "desde-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.Addr)
	require.Equal(t, "desde-env", cfg.JWT.Secret)
	require.Equal(t, 30*time.Minute, cfg.AccessTTL())
	require.True(t, cfg.Policy.RestringirEliminarTramites)
}

func TestLoad_Invalidos(t *testing.T) {
	_, err := Load(escribirYAML(t, "jwt:\n  access_ttl: nodur\n"))
	require.Error(t, err)

	_, err = Load(escribirYAML(t, "storage:\n  driver: postgres\n"))
	require.Error(t, err)

	_, err = Load(escribirYAML(t, "app:\n  env: prod\n"))
	require.Error(t, err, "prod sin jwt.secret debe fallar")
}
