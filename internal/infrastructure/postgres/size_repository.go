package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/p-perotti/gobrewery-sub000/internal/domain"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/repository"
)

var _ repository.SizeRepository = (*SizeRepo)(nil)

// SizeRepo implementación del puerto SizeRepository sobre PostgreSQL.
type SizeRepo struct {
	q Querier
}

// NewSizeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSizeRepository(q Querier) *SizeRepo {
	return &SizeRepo{q: q}
}

// Create persiste un nuevo tamaño.
func (r *SizeRepo) Create(s *entity.Size) error {
	query := `
		INSERT INTO sizes (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.Name, s.Description, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert size: %w", err)
	}
	return nil
}

// GetByID obtiene un tamaño por ID.
func (r *SizeRepo) GetByID(id string) (*entity.Size, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM sizes WHERE id = $1`
	var s entity.Size
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get size: %w", err)
	}
	return &s, nil
}

// Update actualiza un tamaño existente.
func (r *SizeRepo) Update(s *entity.Size) error {
	query := `
		UPDATE sizes SET name = $2, description = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, s.ID, s.Name, s.Description, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update size: %w", err)
	}
	return nil
}

// List lista tamaños con paginación.
func (r *SizeRepo) List(limit, offset int) ([]*entity.Size, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM sizes ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sizes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Size
	for rows.Next() {
		var s entity.Size
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan size: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
