package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// StockQueryUseCase consultas de stock por sucursal y mantenimiento de
// vencimientos. Solo lee el libro, salvo el barrido de vencidos.
type StockQueryUseCase struct {
	stockRepo  repository.StockRepository
	branchRepo repository.BranchRepository
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(stockRepo repository.StockRepository, branchRepo repository.BranchRepository) *StockQueryUseCase {
	return &StockQueryUseCase{stockRepo: stockRepo, branchRepo: branchRepo}
}

// GetStock devuelve la fila de stock de un producto en una sucursal, con sus
// lotes. Si no hay stock devuelve una fila en cero.
func (uc *StockQueryUseCase) GetStock(ctx context.Context, branchID, productID string) (*entity.Stock, error) {
	if branchID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	branch, err := uc.branchRepo.GetByID(branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	return uc.stockRepo.Get(branchID, productID)
}

// SellableQuantity devuelve la cantidad vendible (solo lotes ACTIVE) de un
// producto en una sucursal. Los lotes ON_HOLD y EXPIRED quedan fuera del POS.
func (uc *StockQueryUseCase) SellableQuantity(ctx context.Context, branchID, productID string) (decimal.Decimal, error) {
	stock, err := uc.GetStock(ctx, branchID, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return stock.SellableQuantity(), nil
}

// ListByBranch lista las filas de stock de una sucursal.
func (uc *StockQueryUseCase) ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.Stock, error) {
	branch, err := uc.branchRepo.GetByID(branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	return uc.stockRepo.ListByBranch(branchID, limit, offset)
}

// ExpirySweep pasa a EXPIRED los lotes ACTIVE vencidos antes de asOf.
// Los lotes ON_HOLD no se tocan: siguen bajo control del flujo de traslados.
func (uc *StockQueryUseCase) ExpirySweep(ctx context.Context, asOf time.Time) (int64, error) {
	return uc.stockRepo.MarkExpiredBatches(asOf)
}
