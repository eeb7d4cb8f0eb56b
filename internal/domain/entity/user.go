package entity

import "time"

// Roles válidos para User. Bodeguero recibe físicamente los traslados;
// el controlador verifica calidad/cantidad antes de liberar el stock a venta.
const (
	RoleAdmin       = "admin"
	RoleBodeguero   = "bodeguero"
	RoleControlador = "controlador"
	RoleVendedor    = "vendedor"
)

// User representa un usuario del sistema, asignado a una sucursal.
type User struct {
	ID           string
	BranchID     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, bodeguero, controlador, vendedor
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
