package repository

import "github.com/p-perotti/gobrewery-sub000/internal/domain/entity"

// SizeRepository define el puerto de persistencia para tamaños/presentaciones.
type SizeRepository interface {
	Create(size *entity.Size) error
	GetByID(id string) (*entity.Size, error)
	Update(size *entity.Size) error
	List(limit, offset int) ([]*entity.Size, error)
}
