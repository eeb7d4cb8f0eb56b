package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
// El agregado en la tabla stock se mantiene junto con los lotes en stock_batches.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene la fila de stock de un producto en una sucursal con sus lotes.
// Si no existe devuelve una fila en cero, nunca nil.
func (r *StockRepo) Get(branchID, productID string) (*entity.Stock, error) {
	return r.get(branchID, productID, false)
}

// GetForUpdate obtiene la fila y la bloquea para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(branchID, productID string) (*entity.Stock, error) {
	return r.get(branchID, productID, true)
}

func (r *StockRepo) get(branchID, productID string, forUpdate bool) (*entity.Stock, error) {
	query := `
		SELECT branch_id, product_id, quantity, updated_at
		FROM stock WHERE branch_id = $1 AND product_id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, branchID, productID).Scan(
		&s.BranchID, &s.ProductID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{BranchID: branchID, ProductID: productID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	batches, err := r.loadBatches(branchID, productID)
	if err != nil {
		return nil, err
	}
	s.Batches = batches
	return &s, nil
}

// loadBatches carga los lotes de la fila en orden de inserción.
func (r *StockRepo) loadBatches(branchID, productID string) ([]entity.Batch, error) {
	query := `
		SELECT id, batch_number, expiry_date, quantity, status, created_at
		FROM stock_batches
		WHERE branch_id = $1 AND product_id = $2
		ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, branchID, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var batches []entity.Batch
	for rows.Next() {
		var b entity.Batch
		if err := rows.Scan(&b.ID, &b.BatchNumber, &b.ExpiryDate, &b.Quantity, &b.Status, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// AddBatch agrega un lote y suma su cantidad al agregado de la fila (creándola
// si no existe). Se espera dentro de una transacción del TxRunner.
func (r *StockRepo) AddBatch(branchID, productID string, batch *entity.Batch) error {
	insertBatch := `
		INSERT INTO stock_batches (id, branch_id, product_id, batch_number, expiry_date, quantity, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), insertBatch,
		batch.ID, branchID, productID, batch.BatchNumber, batch.ExpiryDate,
		batch.Quantity, batch.Status, batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	upsertStock := `
		INSERT INTO stock (branch_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (branch_id, product_id)
		DO UPDATE SET quantity = stock.quantity + EXCLUDED.quantity, updated_at = now()`
	_, err = r.q.Exec(context.Background(), upsertStock, branchID, productID, batch.Quantity)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// SetLastBatchStatus cambia el estado del lote que coincida con batchNumber;
// con números repetidos gana el último insertado.
func (r *StockRepo) SetLastBatchStatus(branchID, productID, batchNumber, status string) error {
	query := `
		UPDATE stock_batches SET status = $4
		WHERE id = (
			SELECT id FROM stock_batches
			WHERE branch_id = $1 AND product_id = $2 AND batch_number = $3
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)`
	cmd, err := r.q.Exec(context.Background(), query, branchID, productID, batchNumber, status)
	if err != nil {
		return fmt.Errorf("set batch status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByBranch lista las filas de stock de una sucursal con sus lotes.
func (r *StockRepo) ListByBranch(branchID string, limit, offset int) ([]*entity.Stock, error) {
	query := `
		SELECT branch_id, product_id, quantity, updated_at
		FROM stock WHERE branch_id = $1 ORDER BY product_id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, branchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.BranchID, &s.ProductID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range list {
		batches, err := r.loadBatches(s.BranchID, s.ProductID)
		if err != nil {
			return nil, err
		}
		s.Batches = batches
	}
	return list, nil
}

// MarkExpiredBatches pasa a EXPIRED los lotes ACTIVE con vencimiento anterior
// a asOf. Los lotes ON_HOLD no se tocan: siguen bajo el flujo de traslados.
func (r *StockRepo) MarkExpiredBatches(asOf time.Time) (int64, error) {
	query := `
		UPDATE stock_batches SET status = $1
		WHERE status = $2 AND expiry_date < $3`
	cmd, err := r.q.Exec(context.Background(), query,
		entity.BatchStatusExpired, entity.BatchStatusActive, asOf,
	)
	if err != nil {
		return 0, fmt.Errorf("mark expired batches: %w", err)
	}
	return cmd.RowsAffected(), nil
}
