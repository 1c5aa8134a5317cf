// Package http aloja el servidor, las métricas y la superficie web del
// servicio.
package http

import (
	"context"
	"net/http"
	"time"
)

// Server envuelve http.Server con timeouts de producción y apagado
// ordenado.
type Server struct {
	srv *http.Server
}

// NewServer construye el servidor sobre el handler dado.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start bloquea sirviendo requests hasta que el servidor se apague.
func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drena las conexiones en curso respetando el contexto.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
