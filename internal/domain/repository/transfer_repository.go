package repository

import "github.com/jhoicas/Farmacia-api/internal/domain/entity"

// TransferFilter filtros para listar traslados. InvolvedBranchID restringe a
// traslados donde la sucursal es origen o destino (para sucursales que no son
// casa matriz).
type TransferFilter struct {
	SourceBranchID   string
	TargetBranchID   string
	InvolvedBranchID string
}

// TransferRepository define el puerto de persistencia para Transfer.
// El motor de workflow es el único escritor de Status/Step/Logs.
type TransferRepository interface {
	// Create persiste el traslado con sus líneas y su historial inicial.
	Create(transfer *entity.Transfer) error
	// GetByID devuelve el traslado con líneas e historial, o nil si no existe.
	GetByID(id string) (*entity.Transfer, error)
	// GetByIDForUpdate bloquea la fila del traslado (SELECT FOR UPDATE) para
	// que dos verificaciones concurrentes se serialicen.
	GetByIDForUpdate(id string) (*entity.Transfer, error)
	// UpdateState persiste status, step y updated_at.
	UpdateState(transfer *entity.Transfer) error
	// AppendLog agrega una entrada al historial (append-only).
	AppendLog(transferID string, log *entity.WorkflowLog) error
	// List lista traslados según filtro, más recientes primero.
	List(filter TransferFilter, limit, offset int) ([]*entity.Transfer, error)
}
