package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto farmacéutico (SKU). El stock se maneja por
// sucursal y por lote en Stock/Batch, no aquí.
type Product struct {
	ID           string
	SKU          string // código único
	Name         string
	Description  string
	Price        decimal.Decimal // precio de venta
	Cost         decimal.Decimal
	UnitMeasure  string // unidad, caja, blister, ml
	RequiresRx   bool   // requiere receta médica
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
