// Package memory implementa el almacén de documentos en memoria.
// Útil para desarrollo y tests; no persiste entre reinicios.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sisvantec/sisvantec/internal/store"
)

// Store implementa store.Store con maps protegidos por mutex.
type Store struct {
	mu    sync.RWMutex
	colls map[string]map[string]map[string]any
}

// New crea un almacén en memoria vacío.
func New() *Store {
	return &Store{colls: make(map[string]map[string]map[string]any)}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) Query(ctx context.Context, coleccion string, conds []store.Condicion, orden *store.Orden) ([]store.Registro, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Registro
	for id, doc := range s.colls[coleccion] {
		if cumple(doc, conds) {
			out = append(out, store.Registro{ID: id, Datos: copiar(doc)})
		}
	}

	if orden != nil {
		campo, desc := orden.Campo, orden.Descendente
		sort.SliceStable(out, func(i, j int) bool {
			menor := menorQue(out[i].Datos[campo], out[j].Datos[campo])
			if desc {
				return !menor && !iguales(out[i].Datos[campo], out[j].Datos[campo])
			}
			return menor
		})
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, coleccion, id string) (store.Registro, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.colls[coleccion][id]
	if !ok {
		return store.Registro{}, store.ErrNotFound
	}
	return store.Registro{ID: id, Datos: copiar(doc)}, nil
}

func (s *Store) Insert(ctx context.Context, coleccion string, datos map[string]any) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.colls[coleccion] == nil {
		s.colls[coleccion] = make(map[string]map[string]any)
	}
	s.colls[coleccion][id] = copiar(datos)
	return id, nil
}

func (s *Store) Put(ctx context.Context, coleccion, id string, datos map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.colls[coleccion] == nil {
		s.colls[coleccion] = make(map[string]map[string]any)
	}
	if _, ok := s.colls[coleccion][id]; ok {
		return store.ErrConflict
	}
	s.colls[coleccion][id] = copiar(datos)
	return nil
}

func (s *Store) Update(ctx context.Context, coleccion, id string, parcial map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.colls[coleccion][id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range parcial {
		doc[k] = v
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, coleccion, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.colls[coleccion][id]; !ok {
		return store.ErrNotFound
	}
	delete(s.colls[coleccion], id)
	return nil
}

func cumple(doc map[string]any, conds []store.Condicion) bool {
	for _, c := range conds {
		if !iguales(doc[c.Campo], c.Valor) {
			return false
		}
	}
	return true
}

// iguales compara valores de documento normalizando los tipos numéricos
// que produce el roundtrip JSON.
func iguales(a, b any) bool {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af == bf
		}
		return false
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// menorQue ordena timestamps RFC3339 cronológicamente aunque difieran en
// precisión de fracciones; el resto de valores compara como string.
func menorQue(a, b any) bool {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		at, aerr := time.Parse(time.RFC3339Nano, as)
		bt, berr := time.Parse(time.RFC3339Nano, bs)
		if aerr == nil && berr == nil {
			return at.Before(bt)
		}
		return as < bs
	}
	af, aok2 := asFloat(a)
	bf, bok2 := asFloat(b)
	if aok2 && bok2 {
		return af < bf
	}
	return false
}

func copiar(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

var _ store.Store = (*Store)(nil)
