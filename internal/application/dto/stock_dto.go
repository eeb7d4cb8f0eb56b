package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// BatchDTO lote dentro de una fila de stock.
type BatchDTO struct {
	ID          string          `json:"id"`
	BatchNumber string          `json:"batch_number"`
	ExpiryDate  string          `json:"expiry_date"` // YYYY-MM-DD
	Quantity    decimal.Decimal `json:"quantity"`
	Status      string          `json:"status"` // ACTIVE | ON_HOLD | EXPIRED
	CreatedAt   time.Time       `json:"created_at"`
}

// StockResponse fila de stock con sus lotes y el agregado vendible.
type StockResponse struct {
	BranchID  string          `json:"branch_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Sellable  decimal.Decimal `json:"sellable_quantity"`
	UpdatedAt time.Time       `json:"updated_at"`
	Batches   []BatchDTO      `json:"batches"`
}

// ToStockResponse convierte la entidad a DTO.
func ToStockResponse(s *entity.Stock) StockResponse {
	batches := make([]BatchDTO, 0, len(s.Batches))
	for _, b := range s.Batches {
		batches = append(batches, BatchDTO{
			ID:          b.ID,
			BatchNumber: b.BatchNumber,
			ExpiryDate:  b.ExpiryDate.Format("2006-01-02"),
			Quantity:    b.Quantity,
			Status:      b.Status,
			CreatedAt:   b.CreatedAt,
		})
	}
	return StockResponse{
		BranchID:  s.BranchID,
		ProductID: s.ProductID,
		Quantity:  s.Quantity,
		Sellable:  s.SellableQuantity(),
		UpdatedAt: s.UpdatedAt,
		Batches:   batches,
	}
}
