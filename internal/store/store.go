// Package store define el contrato con el almacén de documentos.
//
// El núcleo solo necesita consultas por igualdad con orden por timestamp
// descendente y operaciones por id. Los adapters (memoria, postgres) son
// intercambiables; los servicios no conocen el backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Colecciones lógicas del sistema.
const (
	ColUsuarios    = "usuarios"
	ColFormularios = "formularios"
	ColTramites    = "tramites"
)

var (
	ErrNotFound = errors.New("store: documento no encontrado")
	ErrConflict = errors.New("store: documento ya existe")
)

// Condicion es un filtro de igualdad sobre un campo de nivel superior.
type Condicion struct {
	Campo string
	Valor any
}

// Orden define el campo y dirección de ordenamiento de una consulta.
type Orden struct {
	Campo       string
	Descendente bool
}

// PorCreadoEnDesc es el orden por defecto de todos los listados.
var PorCreadoEnDesc = Orden{Campo: "creadoEn", Descendente: true}

// Registro es un documento recuperado con su id.
type Registro struct {
	ID    string
	Datos map[string]any
}

// Store es la conexión al almacén de documentos. Es un singleton de
// proceso: se inicializa una vez en el arranque y se comparte de solo
// lectura entre operaciones concurrentes.
type Store interface {
	Ping(ctx context.Context) error

	// Query retorna los documentos de la colección que satisfacen todas
	// las condiciones (AND), en el orden pedido.
	Query(ctx context.Context, coleccion string, conds []Condicion, orden *Orden) ([]Registro, error)

	// Get retorna un documento por id. ErrNotFound si no existe.
	Get(ctx context.Context, coleccion, id string) (Registro, error)

	// Insert agrega un documento con id generado y lo retorna.
	Insert(ctx context.Context, coleccion string, datos map[string]any) (string, error)

	// Put escribe un documento con id explícito (alta de usuarios, cuyo
	// id lo asigna el proveedor de identidad). ErrConflict si ya existe.
	Put(ctx context.Context, coleccion, id string, datos map[string]any) error

	// Update aplica un parche parcial (merge de nivel superior).
	// ErrNotFound si el documento no existe.
	Update(ctx context.Context, coleccion, id string, parcial map[string]any) error

	// Delete elimina un documento. ErrNotFound si no existe.
	Delete(ctx context.Context, coleccion, id string) error

	Close(ctx context.Context) error
}

// Encode serializa una entidad a la forma de documento (vía JSON, de modo
// que los tags de las entidades definen los nombres de campo persistidos).
func Encode(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Decode materializa un registro en una entidad.
func Decode(reg Registro, v any) error {
	b, err := json.Marshal(reg.Datos)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
