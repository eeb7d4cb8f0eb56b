package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// TransferItemDTO línea de un traslado.
type TransferItemDTO struct {
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	BatchNumber string          `json:"batch_number"`
	ExpiryDate  string          `json:"expiry_date"` // YYYY-MM-DD
}

// DispatchTransferRequest body para POST /api/transfers.
type DispatchTransferRequest struct {
	SourceBranchID string            `json:"source_branch_id"`
	TargetBranchID string            `json:"target_branch_id"`
	Items          []TransferItemDTO `json:"items"`
	Notes          string            `json:"notes,omitempty"`
}

// VerifyCodeRequest body para los dos pasos de verificación.
type VerifyCodeRequest struct {
	Code string `json:"code"`
}

// WorkflowLogDTO entrada del historial del traslado.
type WorkflowLogDTO struct {
	Role      string    `json:"role"`
	Action    string    `json:"action"`
	UserID    string    `json:"user,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TransferResponse traslado en respuestas. Los códigos de verificación NO se
// serializan aquí: solo viajan una vez en DispatchTransferResponse.
type TransferResponse struct {
	ID             string            `json:"id"`
	SourceBranchID string            `json:"source_branch_id"`
	TargetBranchID string            `json:"target_branch_id"`
	DateSent       string            `json:"date_sent"` // YYYY-MM-DD
	Items          []TransferItemDTO `json:"items"`
	Status         string            `json:"status"`
	Step           string            `json:"workflow_step"`
	Notes          string            `json:"notes,omitempty"`
	Logs           []WorkflowLogDTO  `json:"workflow_logs"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// DispatchTransferResponse respuesta del despacho: incluye los códigos una
// única vez, para que la sucursal origen los entregue por canales separados
// al bodeguero y al controlador del destino.
type DispatchTransferResponse struct {
	TransferResponse
	KeeperCode     string `json:"keeper_code"`
	ControllerCode string `json:"controller_code"`
}

// ToTransferResponse convierte la entidad a DTO sin códigos.
func ToTransferResponse(t *entity.Transfer) TransferResponse {
	items := make([]TransferItemDTO, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, TransferItemDTO{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			BatchNumber: it.BatchNumber,
			ExpiryDate:  it.ExpiryDate.Format("2006-01-02"),
		})
	}
	logs := make([]WorkflowLogDTO, 0, len(t.Logs))
	for _, l := range t.Logs {
		logs = append(logs, WorkflowLogDTO{
			Role:      l.Role,
			Action:    l.Action,
			UserID:    l.UserID,
			Timestamp: l.CreatedAt,
		})
	}
	return TransferResponse{
		ID:             t.ID,
		SourceBranchID: t.SourceBranchID,
		TargetBranchID: t.TargetBranchID,
		DateSent:       t.DateSent.Format("2006-01-02"),
		Items:          items,
		Status:         string(t.Status),
		Step:           string(t.Step),
		Notes:          t.Notes,
		Logs:           logs,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// ToDispatchResponse convierte la entidad a la respuesta del despacho.
func ToDispatchResponse(t *entity.Transfer) DispatchTransferResponse {
	return DispatchTransferResponse{
		TransferResponse: ToTransferResponse(t),
		KeeperCode:       t.KeeperCode,
		ControllerCode:   t.ControllerCode,
	}
}
