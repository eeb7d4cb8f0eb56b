package repository

import (
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// StockRepository define el puerto del libro de inventario por sucursal y
// producto. AddBatch y SetLastBatchStatus son los únicos puntos de mutación
// que usa el motor de traslados; la consistencia entre sucursales la
// garantiza el motor, no el repositorio.
type StockRepository interface {
	// Get obtiene la fila de stock con sus lotes. Si no existe devuelve una
	// fila en cero (sin lotes), nunca nil.
	Get(branchID, productID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila de stock para update (SELECT FOR UPDATE).
	GetForUpdate(branchID, productID string) (*entity.Stock, error)
	// AddBatch agrega un lote a la fila del producto (creándola si no existe)
	// y suma la cantidad del lote al agregado, en la misma operación.
	AddBatch(branchID, productID string, batch *entity.Batch) error
	// SetLastBatchStatus cambia el estado del lote que coincida con
	// batchNumber; si hay varios gana el último insertado. Devuelve
	// domain.ErrNotFound si no hay coincidencia.
	SetLastBatchStatus(branchID, productID, batchNumber, status string) error
	// ListByBranch lista las filas de stock de una sucursal.
	ListByBranch(branchID string, limit, offset int) ([]*entity.Stock, error)
	// MarkExpiredBatches pasa a EXPIRED los lotes ACTIVE vencidos antes de
	// asOf y descuenta nada: solo cambia estado. Devuelve cuántos cambió.
	MarkExpiredBatches(asOf time.Time) (int64, error)
}
