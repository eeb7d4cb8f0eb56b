package entity

import "time"

// Tipos de sucursal. HEAD_OFFICE tiene visibilidad sobre todas las sucursales.
const (
	BranchTypeHeadOffice = "HEAD_OFFICE"
	BranchTypeBranch     = "BRANCH"
)

// Branch representa una sucursal de la farmacia donde se almacena y vende inventario.
type Branch struct {
	ID        string
	Code      string // código corto, ej. BR001
	Name      string
	Address   string
	Phone     string
	Type      string // HEAD_OFFICE | BRANCH
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsHeadOffice indica si la sucursal es la casa matriz.
func (b *Branch) IsHeadOffice() bool {
	return b.Type == BranchTypeHeadOffice
}
