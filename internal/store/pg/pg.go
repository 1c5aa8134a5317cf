// Package pg implementa el almacén de documentos sobre PostgreSQL,
// guardando cada documento como JSONB en una tabla única por colección.
package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sisvantec/sisvantec/internal/store"
)

const esquema = `
CREATE TABLE IF NOT EXISTS documentos (
	coleccion TEXT NOT NULL,
	id        TEXT NOT NULL,
	datos     JSONB NOT NULL,
	PRIMARY KEY (coleccion, id)
);
CREATE INDEX IF NOT EXISTS documentos_datos_idx ON documentos USING GIN (datos jsonb_path_ops);
`

// Store implementa store.Store usando un pgxpool compartido.
type Store struct {
	pool *pgxpool.Pool
}

// Connect abre el pool, verifica la conexión y asegura el esquema.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: abrir pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, esquema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: asegurar esquema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool subyacente, usado por el collector de métricas.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

func (s *Store) Query(ctx context.Context, coleccion string, conds []store.Condicion, orden *store.Orden) ([]store.Registro, error) {
	var sb strings.Builder
	sb.WriteString("SELECT id, datos FROM documentos WHERE coleccion = $1")
	args := []any{coleccion}

	// Cada condición de igualdad se expresa como contención JSONB, lo
	// que preserva el tipo del valor (string vs bool vs número).
	for _, c := range conds {
		frag, err := json.Marshal(map[string]any{c.Campo: c.Valor})
		if err != nil {
			return nil, fmt.Errorf("pg: condición %q: %w", c.Campo, err)
		}
		args = append(args, string(frag))
		fmt.Fprintf(&sb, " AND datos @> $%d::jsonb", len(args))
	}

	if orden != nil {
		dir := "ASC"
		if orden.Descendente {
			dir = "DESC"
		}
		args = append(args, orden.Campo)
		fmt.Fprintf(&sb, " ORDER BY datos->>$%d %s", len(args), dir)
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pg: query %s: %w", coleccion, err)
	}
	defer rows.Close()

	var out []store.Registro
	for rows.Next() {
		var (
			id    string
			datos map[string]any
		)
		if err := rows.Scan(&id, &datos); err != nil {
			return nil, fmt.Errorf("pg: scan %s: %w", coleccion, err)
		}
		out = append(out, store.Registro{ID: id, Datos: datos})
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, coleccion, id string) (store.Registro, error) {
	var datos map[string]any
	err := s.pool.QueryRow(ctx,
		"SELECT datos FROM documentos WHERE coleccion = $1 AND id = $2",
		coleccion, id).Scan(&datos)
	if err == pgx.ErrNoRows {
		return store.Registro{}, store.ErrNotFound
	}
	if err != nil {
		return store.Registro{}, fmt.Errorf("pg: get %s/%s: %w", coleccion, id, err)
	}
	return store.Registro{ID: id, Datos: datos}, nil
}

func (s *Store) Insert(ctx context.Context, coleccion string, datos map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.insertar(ctx, coleccion, id, datos); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Put(ctx context.Context, coleccion, id string, datos map[string]any) error {
	return s.insertar(ctx, coleccion, id, datos)
}

func (s *Store) insertar(ctx context.Context, coleccion, id string, datos map[string]any) error {
	b, err := json.Marshal(datos)
	if err != nil {
		return fmt.Errorf("pg: serializar documento: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		"INSERT INTO documentos (coleccion, id, datos) VALUES ($1, $2, $3::jsonb)",
		coleccion, id, string(b))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return store.ErrConflict
		}
		return fmt.Errorf("pg: insertar %s/%s: %w", coleccion, id, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, coleccion, id string, parcial map[string]any) error {
	b, err := json.Marshal(parcial)
	if err != nil {
		return fmt.Errorf("pg: serializar parche: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE documentos SET datos = datos || $3::jsonb WHERE coleccion = $1 AND id = $2",
		coleccion, id, string(b))
	if err != nil {
		return fmt.Errorf("pg: actualizar %s/%s: %w", coleccion, id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, coleccion, id string) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM documentos WHERE coleccion = $1 AND id = $2", coleccion, id)
	if err != nil {
		return fmt.Errorf("pg: eliminar %s/%s: %w", coleccion, id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

var _ store.Store = (*Store)(nil)
