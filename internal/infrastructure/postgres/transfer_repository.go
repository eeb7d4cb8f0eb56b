package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación de TransferRepository sobre PostgreSQL
// (usable con pool o tx). Las líneas van en transfer_items y el historial en
// transfer_logs; position preserva el orden de inserción en ambas.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create persiste el traslado con sus líneas y su historial inicial.
func (r *TransferRepo) Create(t *entity.Transfer) error {
	ctx := context.Background()
	insertTransfer := `
		INSERT INTO transfers (id, source_branch_id, target_branch_id, date_sent, status, step, keeper_code, controller_code, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, insertTransfer,
		t.ID, t.SourceBranchID, t.TargetBranchID, t.DateSent, string(t.Status), string(t.Step),
		t.KeeperCode, t.ControllerCode, t.Notes, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	insertItem := `
		INSERT INTO transfer_items (transfer_id, position, product_id, quantity, batch_number, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i, it := range t.Items {
		_, err := r.q.Exec(ctx, insertItem, t.ID, i+1, it.ProductID, it.Quantity, it.BatchNumber, it.ExpiryDate)
		if err != nil {
			return fmt.Errorf("insert transfer item: %w", err)
		}
	}
	for _, l := range t.Logs {
		log := l
		if err := r.AppendLog(t.ID, &log); err != nil {
			return err
		}
	}
	return nil
}

// GetByID devuelve el traslado con líneas e historial, o nil si no existe.
func (r *TransferRepo) GetByID(id string) (*entity.Transfer, error) {
	return r.get(id, false)
}

// GetByIDForUpdate bloquea la fila del traslado (SELECT FOR UPDATE) para que
// dos verificaciones concurrentes se serialicen: la segunda ve el estado ya
// avanzado y falla con el error de estado.
func (r *TransferRepo) GetByIDForUpdate(id string) (*entity.Transfer, error) {
	return r.get(id, true)
}

func (r *TransferRepo) get(id string, forUpdate bool) (*entity.Transfer, error) {
	query := `
		SELECT id, source_branch_id, target_branch_id, date_sent, status, step, keeper_code, controller_code, notes, created_at, updated_at
		FROM transfers WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var t entity.Transfer
	var status, step string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&t.ID, &t.SourceBranchID, &t.TargetBranchID, &t.DateSent, &status, &step,
		&t.KeeperCode, &t.ControllerCode, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	t.Status = entity.TransferStatus(status)
	t.Step = entity.WorkflowStep(step)
	if t.Items, err = r.loadItems(t.ID); err != nil {
		return nil, err
	}
	if t.Logs, err = r.loadLogs(t.ID); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransferRepo) loadItems(transferID string) ([]entity.TransferItem, error) {
	query := `
		SELECT product_id, quantity, batch_number, expiry_date
		FROM transfer_items WHERE transfer_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, transferID)
	if err != nil {
		return nil, fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	var items []entity.TransferItem
	for rows.Next() {
		var it entity.TransferItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.BatchNumber, &it.ExpiryDate); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *TransferRepo) loadLogs(transferID string) ([]entity.WorkflowLog, error) {
	query := `
		SELECT role, action, COALESCE(user_id, ''), created_at
		FROM transfer_logs WHERE transfer_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, transferID)
	if err != nil {
		return nil, fmt.Errorf("list transfer logs: %w", err)
	}
	defer rows.Close()
	var logs []entity.WorkflowLog
	for rows.Next() {
		var l entity.WorkflowLog
		if err := rows.Scan(&l.Role, &l.Action, &l.UserID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transfer log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// UpdateState persiste status, step y updated_at. El historial se escribe
// aparte con AppendLog; las líneas y los códigos nunca cambian.
func (r *TransferRepo) UpdateState(t *entity.Transfer) error {
	query := `
		UPDATE transfers SET status = $2, step = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, t.ID, string(t.Status), string(t.Step), t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update transfer state: %w", err)
	}
	return nil
}

// AppendLog agrega una entrada al historial. Solo inserta: las entradas
// existentes nunca se editan ni se eliminan.
func (r *TransferRepo) AppendLog(transferID string, log *entity.WorkflowLog) error {
	query := `
		INSERT INTO transfer_logs (transfer_id, position, role, action, user_id, created_at)
		VALUES ($1, (SELECT COALESCE(MAX(position), 0) + 1 FROM transfer_logs WHERE transfer_id = $1), $2, $3, NULLIF($4, ''), $5)`
	_, err := r.q.Exec(context.Background(), query, transferID, log.Role, log.Action, log.UserID, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("append transfer log: %w", err)
	}
	return nil
}

// List lista traslados según filtro, más recientes primero.
func (r *TransferRepo) List(filter repository.TransferFilter, limit, offset int) ([]*entity.Transfer, error) {
	query := `
		SELECT id FROM transfers
		WHERE ($1 = '' OR source_branch_id = $1)
		  AND ($2 = '' OR target_branch_id = $2)
		  AND ($3 = '' OR source_branch_id = $3 OR target_branch_id = $3)
		ORDER BY created_at DESC LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(context.Background(), query,
		filter.SourceBranchID, filter.TargetBranchID, filter.InvolvedBranchID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan transfer id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	list := make([]*entity.Transfer, 0, len(ids))
	for _, id := range ids {
		t, err := r.get(id, false)
		if err != nil {
			return nil, err
		}
		if t != nil {
			list = append(list, t)
		}
	}
	return list, nil
}
