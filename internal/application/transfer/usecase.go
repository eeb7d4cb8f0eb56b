package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// Roles y acciones que quedan en el historial del traslado. Las cadenas son
// las que muestra el frontend en la línea de tiempo del traslado.
const (
	logActionDispatched = "Dispatched"

	logRoleKeeper       = "Store Keeper"
	logActionKeeper     = "Confirmed Receipt"
	logRoleController   = "Inventory Controller"
	logActionController = "Verified & Made Available for Sale"
)

// WorkflowUseCase es el motor del flujo de traslados: despacho, verificación
// del bodeguero y verificación del controlador. Es el único escritor de
// Status/Step/Logs del traslado y el único mutador del libro de inventario
// en destino. Cada verificación corre dentro de una transacción con bloqueo
// de fila (SELECT FOR UPDATE) sobre el traslado.
type WorkflowUseCase struct {
	txRunner     TxRunner
	transferRepo repository.TransferRepository // atado al pool, para lecturas
	stockRepo    repository.StockRepository    // atado al pool, para lecturas
	branchRepo   repository.BranchRepository
	productRepo  repository.ProductRepository
	codes        CodeGenerator
	notes        NoteGenerator
}

// NewWorkflowUseCase construye el caso de uso.
func NewWorkflowUseCase(
	txRunner TxRunner,
	transferRepo repository.TransferRepository,
	stockRepo repository.StockRepository,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	codes CodeGenerator,
	notes NoteGenerator,
) *WorkflowUseCase {
	return &WorkflowUseCase{
		txRunner:     txRunner,
		transferRepo: transferRepo,
		stockRepo:    stockRepo,
		branchRepo:   branchRepo,
		productRepo:  productRepo,
		codes:        codes,
		notes:        notes,
	}
}

// Dispatch crea un traslado en estado IN_TRANSIT con sus dos códigos de
// verificación y el primer registro del historial. No muta el libro de
// inventario: el stock en destino solo aparece (ON_HOLD) cuando el bodeguero
// confirma la recepción.
func (uc *WorkflowUseCase) Dispatch(ctx context.Context, userID string, in dto.DispatchTransferRequest) (*entity.Transfer, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.SourceBranchID == "" || in.TargetBranchID == "" || in.SourceBranchID == in.TargetBranchID {
		return nil, domain.ErrInvalidInput
	}

	items := make([]entity.TransferItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID == "" || it.BatchNumber == "" || !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		expiry, err := time.Parse("2006-01-02", it.ExpiryDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		items = append(items, entity.TransferItem{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			BatchNumber: it.BatchNumber,
			ExpiryDate:  expiry,
		})
	}

	source, err := uc.branchRepo.GetByID(in.SourceBranchID)
	if err != nil {
		return nil, err
	}
	target, err := uc.branchRepo.GetByID(in.TargetBranchID)
	if err != nil {
		return nil, err
	}
	if source == nil || target == nil {
		return nil, domain.ErrNotFound
	}

	// La cantidad pedida por producto (sumando líneas) no puede superar el
	// stock ACTIVE disponible en la sucursal origen al momento del despacho.
	required := map[string]decimal.Decimal{}
	for _, it := range items {
		product, err := uc.productRepo.GetByID(it.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		req, ok := required[it.ProductID]
		if !ok {
			req = decimal.Zero
		}
		required[it.ProductID] = req.Add(it.Quantity)
	}
	for productID, req := range required {
		stock, err := uc.stockRepo.Get(in.SourceBranchID, productID)
		if err != nil {
			return nil, err
		}
		if stock.SellableQuantity().LessThan(req) {
			return nil, domain.ErrInsufficientStock
		}
	}

	keeperCode, controllerCode, err := uc.codes.Pair()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	t := &entity.Transfer{
		ID:             uuid.New().String(),
		SourceBranchID: in.SourceBranchID,
		TargetBranchID: in.TargetBranchID,
		DateSent:       now.Truncate(24 * time.Hour),
		Items:          items,
		Status:         entity.TransferStatusInTransit,
		Step:           entity.StepKeeperCheck,
		KeeperCode:     keeperCode,
		ControllerCode: controllerCode,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	// El rol de la primera entrada es la etiqueta de la sucursal origen.
	t.AppendLog(source.Name, logActionDispatched, userID, now)

	err = uc.txRunner.Run(ctx, func(transferRepo repository.TransferRepository, _ repository.StockRepository) error {
		return transferRepo.Create(t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// VerifyKeeper es el primer paso de verificación: el bodeguero del destino
// ingresa el código 1. Con código correcto los lotes del traslado entran al
// libro del destino en ON_HOLD (cuarentena, no vendibles) y el traslado pasa
// a RECEIVED_KEEPER. Con código o estado incorrecto no se muta nada; los
// intentos de código son ilimitados.
func (uc *WorkflowUseCase) VerifyKeeper(ctx context.Context, transferID, code, userID string) (*entity.Transfer, error) {
	var result *entity.Transfer
	err := uc.txRunner.Run(ctx, func(transferRepo repository.TransferRepository, stockRepo repository.StockRepository) error {
		t, err := transferRepo.GetByIDForUpdate(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Status != entity.TransferStatusInTransit {
			return domain.ErrInvalidTransferState
		}
		if code != t.KeeperCode {
			return domain.ErrInvalidKeeperCode
		}

		now := time.Now()
		for _, it := range t.Items {
			batch := &entity.Batch{
				ID:          uuid.New().String(),
				BatchNumber: it.BatchNumber,
				ExpiryDate:  it.ExpiryDate,
				Quantity:    it.Quantity,
				Status:      entity.BatchStatusOnHold,
				CreatedAt:   now,
			}
			if err := stockRepo.AddBatch(t.TargetBranchID, it.ProductID, batch); err != nil {
				return err
			}
		}

		t.Advance(entity.TransferStatusReceivedKeeper, now)
		if err := transferRepo.UpdateState(t); err != nil {
			return err
		}
		log := &entity.WorkflowLog{Role: logRoleKeeper, Action: logActionKeeper, UserID: userID, CreatedAt: now}
		if err := transferRepo.AppendLog(t.ID, log); err != nil {
			return err
		}
		t.Logs = append(t.Logs, *log)
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// VerifyController es el segundo paso: el controlador de inventario ingresa
// el código 2. Con código correcto cada lote del traslado pasa de ON_HOLD a
// ACTIVE (única transición que hace vendible el stock) y el traslado queda
// COMPLETED, estado terminal e inmutable.
func (uc *WorkflowUseCase) VerifyController(ctx context.Context, transferID, code, userID string) (*entity.Transfer, error) {
	var result *entity.Transfer
	err := uc.txRunner.Run(ctx, func(transferRepo repository.TransferRepository, stockRepo repository.StockRepository) error {
		t, err := transferRepo.GetByIDForUpdate(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Status != entity.TransferStatusReceivedKeeper {
			return domain.ErrInvalidTransferState
		}
		if code != t.ControllerCode {
			return domain.ErrInvalidControllerCode
		}

		now := time.Now()
		for _, it := range t.Items {
			// Con números de lote repetidos gana el último insertado.
			err := stockRepo.SetLastBatchStatus(t.TargetBranchID, it.ProductID, it.BatchNumber, entity.BatchStatusActive)
			if err != nil {
				return err
			}
		}

		t.Advance(entity.TransferStatusCompleted, now)
		if err := transferRepo.UpdateState(t); err != nil {
			return err
		}
		log := &entity.WorkflowLog{Role: logRoleController, Action: logActionController, UserID: userID, CreatedAt: now}
		if err := transferRepo.AppendLog(t.ID, log); err != nil {
			return err
		}
		t.Logs = append(t.Logs, *log)
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID obtiene un traslado con líneas e historial.
func (uc *WorkflowUseCase) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	t, err := uc.transferRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// List lista traslados. La casa matriz (HEAD_OFFICE) ve todos; las demás
// sucursales solo los traslados donde son origen o destino.
func (uc *WorkflowUseCase) List(ctx context.Context, requesterBranchID string, filter repository.TransferFilter, limit, offset int) ([]*entity.Transfer, error) {
	branch, err := uc.branchRepo.GetByID(requesterBranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	if !branch.IsHeadOffice() {
		filter.InvolvedBranchID = requesterBranchID
	}
	return uc.transferRepo.List(filter, limit, offset)
}

// TransferNotePDF genera la guía de traslado imprimible. El documento no
// incluye los códigos de verificación: esos viajan por canales separados.
func (uc *WorkflowUseCase) TransferNotePDF(ctx context.Context, id string) ([]byte, error) {
	t, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	source, err := uc.branchRepo.GetByID(t.SourceBranchID)
	if err != nil {
		return nil, err
	}
	target, err := uc.branchRepo.GetByID(t.TargetBranchID)
	if err != nil {
		return nil, err
	}
	if source == nil || target == nil {
		return nil, domain.ErrNotFound
	}
	products := make(map[string]*entity.Product, len(t.Items))
	for _, it := range t.Items {
		if _, ok := products[it.ProductID]; ok {
			continue
		}
		p, err := uc.productRepo.GetByID(it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		products[it.ProductID] = p
	}
	return uc.notes.GenerateTransferNote(ctx, t, source, target, products)
}
