package repository

import "github.com/jhoicas/Farmacia-api/internal/domain/entity"

// BranchRepository define el puerto de persistencia para Branch (DIP).
type BranchRepository interface {
	Create(branch *entity.Branch) error
	GetByID(id string) (*entity.Branch, error)
	GetByCode(code string) (*entity.Branch, error)
	List(limit, offset int) ([]*entity.Branch, error)
}
