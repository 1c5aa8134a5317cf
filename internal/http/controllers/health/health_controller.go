// Package health expone el endpoint de salud del servicio.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/sisvantec/sisvantec/internal/http/dto"
	"github.com/sisvantec/sisvantec/internal/http/helpers"
)

// Pinger verifica la disponibilidad del almacén.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller maneja GET /health y GET /.
type Controller struct {
	store   Pinger
	version string
	inicio  time.Time
}

// NewController crea el controller de health.
func NewController(store Pinger, version string) *Controller {
	return &Controller{store: store, version: version, inicio: time.Now()}
}

// Health maneja GET /health. Reporta degradado (503) si el almacén no
// responde.
func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	estado := "ok"
	status := http.StatusOK
	if err := c.store.Ping(ctx); err != nil {
		estado = "degraded"
		status = http.StatusServiceUnavailable
	}

	helpers.WriteJSON(w, status, map[string]any{
		"status":  estado,
		"version": c.version,
		"uptime":  time.Since(c.inicio).Round(time.Second).String(),
	})
}

// Banner maneja GET /.
func (c *Controller) Banner(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.OK("API de trámites municipales", map[string]string{
		"version": c.version,
	}))
}
