package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un traslado entre sucursales. El avance es monótono:
// IN_TRANSIT → RECEIVED_KEEPER → COMPLETED, sin retrocesos ni saltos.
type TransferStatus string

const (
	TransferStatusInTransit      TransferStatus = "IN_TRANSIT"
	TransferStatusReceivedKeeper TransferStatus = "RECEIVED_KEEPER"
	TransferStatusCompleted      TransferStatus = "COMPLETED"
)

// Paso del workflow visible para el frontend; espejo del estado.
type WorkflowStep string

const (
	StepKeeperCheck      WorkflowStep = "KEEPER_CHECK"
	StepControllerVerify WorkflowStep = "CONTROLLER_VERIFY"
	StepDone             WorkflowStep = "DONE"
)

// legalTransitions define las transiciones permitidas por estado.
// COMPLETED es terminal: sin transiciones de salida.
var legalTransitions = map[TransferStatus]map[TransferStatus]bool{
	TransferStatusInTransit:      {TransferStatusReceivedKeeper: true},
	TransferStatusReceivedKeeper: {TransferStatusCompleted: true},
	TransferStatusCompleted:      {},
}

// CanTransitionTo indica si el paso de estado s → to es legal.
func (s TransferStatus) CanTransitionTo(to TransferStatus) bool {
	return legalTransitions[s][to]
}

// Step devuelve el paso de workflow que corresponde al estado.
func (s TransferStatus) Step() WorkflowStep {
	switch s {
	case TransferStatusInTransit:
		return StepKeeperCheck
	case TransferStatusReceivedKeeper:
		return StepControllerVerify
	default:
		return StepDone
	}
}

// TransferItem es una línea del traslado: producto, cantidad y lote.
type TransferItem struct {
	ProductID   string
	Quantity    decimal.Decimal // > 0
	BatchNumber string
	ExpiryDate  time.Time
}

// WorkflowLog es una entrada del historial del traslado. El historial es
// append-only: cada transición agrega exactamente una entrada y ninguna
// entrada se edita ni se elimina.
type WorkflowLog struct {
	Role      string
	Action    string
	UserID    string
	CreatedAt time.Time
}

// Transfer representa un traslado de inventario entre dos sucursales,
// protegido por doble verificación con códigos independientes.
type Transfer struct {
	ID             string
	SourceBranchID string
	TargetBranchID string
	DateSent       time.Time
	Items          []TransferItem
	Status         TransferStatus
	Step           WorkflowStep
	KeeperCode     string // fijo desde el despacho, nunca se regenera
	ControllerCode string
	Notes          string
	Logs           []WorkflowLog
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Advance mueve el traslado al estado destino si la transición es legal y
// sincroniza el paso del workflow. Devuelve false si la transición no es
// legal; en ese caso no muta nada.
func (t *Transfer) Advance(to TransferStatus, now time.Time) bool {
	if !t.Status.CanTransitionTo(to) {
		return false
	}
	t.Status = to
	t.Step = to.Step()
	t.UpdatedAt = now
	return true
}

// AppendLog agrega una entrada al historial.
func (t *Transfer) AppendLog(role, action, userID string, at time.Time) {
	t.Logs = append(t.Logs, WorkflowLog{Role: role, Action: action, UserID: userID, CreatedAt: at})
}

// TotalQuantity devuelve la suma de cantidades de todas las líneas.
func (t *Transfer) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, it := range t.Items {
		total = total.Add(it.Quantity)
	}
	return total
}
