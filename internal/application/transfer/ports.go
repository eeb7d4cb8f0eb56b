package transfer

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Cada paso de verificación del traslado corre
// completo dentro de una transacción: o muta todo (lotes + estado + log) o
// nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		transferRepo repository.TransferRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// CodeGenerator produce el par de códigos de verificación de un traslado.
type CodeGenerator interface {
	Pair() (keeperCode, controllerCode string, err error)
}

// NoteGenerator genera la guía de traslado imprimible (PDF).
type NoteGenerator interface {
	GenerateTransferNote(
		ctx context.Context,
		transfer *entity.Transfer,
		source, target *entity.Branch,
		products map[string]*entity.Product,
	) ([]byte, error)
}
