package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote. Un lote creado por el flujo de traslado entra ON_HOLD
// (cuarentena) y solo pasa a ACTIVE tras la verificación del controlador.
const (
	BatchStatusActive  = "ACTIVE"
	BatchStatusOnHold  = "ON_HOLD"
	BatchStatusExpired = "EXPIRED"
)

// Batch representa un lote fechado de un producto dentro de una sucursal.
type Batch struct {
	ID          string
	BatchNumber string
	ExpiryDate  time.Time
	Quantity    decimal.Decimal
	Status      string // ACTIVE | ON_HOLD | EXPIRED
	CreatedAt   time.Time
}

// Stock representa la fila de stock de un producto en una sucursal.
// Quantity es el agregado: suma de las cantidades de todos sus lotes.
type Stock struct {
	BranchID  string
	ProductID string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
	Batches   []Batch
}

// SellableQuantity devuelve la cantidad disponible para venta: solo lotes
// ACTIVE. Los lotes ON_HOLD (cuarentena) y EXPIRED nunca cuentan para POS.
func (s *Stock) SellableQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.Batches {
		if b.Status == BatchStatusActive {
			total = total.Add(b.Quantity)
		}
	}
	return total
}

// BatchTotal devuelve la suma de cantidades de todos los lotes, útil para
// verificar el invariante Quantity == suma de lotes.
func (s *Stock) BatchTotal() decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.Batches {
		total = total.Add(b.Quantity)
	}
	return total
}
