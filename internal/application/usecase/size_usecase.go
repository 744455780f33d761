package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/p-perotti/gobrewery-sub000/internal/application/dto"
	"github.com/p-perotti/gobrewery-sub000/internal/domain"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/repository"
)

// SizeUseCase CRUD de tamaños/presentaciones.
type SizeUseCase struct {
	repo repository.SizeRepository
}

// NewSizeUseCase construye el caso de uso.
func NewSizeUseCase(repo repository.SizeRepository) *SizeUseCase {
	return &SizeUseCase{repo: repo}
}

// Create registra un tamaño.
func (uc *SizeUseCase) Create(in dto.SizeRequest) (*dto.SizeResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	s := &entity.Size{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(s); err != nil {
		return nil, err
	}
	return toSizeResponse(s), nil
}

// GetByID obtiene un tamaño.
func (uc *SizeUseCase) GetByID(id string) (*dto.SizeResponse, error) {
	s, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return toSizeResponse(s), nil
}

// Update actualiza nombre y descripción.
func (uc *SizeUseCase) Update(id string, in dto.SizeRequest) (*dto.SizeResponse, error) {
	s, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	s.Name = in.Name
	s.Description = in.Description
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(s); err != nil {
		return nil, err
	}
	return toSizeResponse(s), nil
}

// List lista tamaños con paginación.
func (uc *SizeUseCase) List(page dto.PageRequest) ([]dto.SizeResponse, error) {
	page.DefaultPage()
	sizes, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SizeResponse, 0, len(sizes))
	for _, s := range sizes {
		out = append(out, *toSizeResponse(s))
	}
	return out, nil
}

func toSizeResponse(s *entity.Size) *dto.SizeResponse {
	return &dto.SizeResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
