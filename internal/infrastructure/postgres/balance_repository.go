package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación del almacén de saldos sobre PostgreSQL
// (usable con pool o tx).
//
// La tabla balances tiene un índice único sobre
// (kind, product_id, COALESCE(size_id, '')) para que el tamaño nulo de los
// movimientos de inventario cuente como una clave más.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Get obtiene el saldo actual de la clave; entrada en cero si no existe.
func (r *BalanceRepo) Get(kind, productID string, sizeID *string) (*entity.BalanceEntry, error) {
	query := `
		SELECT kind, product_id, size_id, quantity, updated_at
		FROM balances
		WHERE kind = $1 AND product_id = $2 AND size_id IS NOT DISTINCT FROM $3`
	var b entity.BalanceEntry
	err := r.q.QueryRow(context.Background(), query, kind, productID, sizeID).Scan(
		&b.Kind, &b.ProductID, &b.SizeID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.BalanceEntry{Kind: kind, ProductID: productID, SizeID: sizeID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// GetForUpdate crea la fila si no existe y la bloquea (SELECT ... FOR UPDATE).
// El insert previo garantiza que siempre haya una fila real que bloquear:
// un FOR UPDATE sobre una fila inexistente no serializa nada y dos primeras
// escrituras concurrentes sobre la clave perderían una actualización.
func (r *BalanceRepo) GetForUpdate(kind, productID string, sizeID *string) (*entity.BalanceEntry, error) {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO balances (kind, product_id, size_id, quantity, updated_at)
		 VALUES ($1, $2, $3, 0, now())
		 ON CONFLICT DO NOTHING`,
		kind, productID, sizeID,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure balance row: %w", err)
	}

	query := `
		SELECT kind, product_id, size_id, quantity, updated_at
		FROM balances
		WHERE kind = $1 AND product_id = $2 AND size_id IS NOT DISTINCT FROM $3
		FOR UPDATE`
	var b entity.BalanceEntry
	err = r.q.QueryRow(context.Background(), query, kind, productID, sizeID).Scan(
		&b.Kind, &b.ProductID, &b.SizeID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return &b, nil
}

// Update escribe la cantidad de una entrada existente (creada por GetForUpdate).
func (r *BalanceRepo) Update(b *entity.BalanceEntry) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE balances SET quantity = $4, updated_at = $5
		 WHERE kind = $1 AND product_id = $2 AND size_id IS NOT DISTINCT FROM $3`,
		b.Kind, b.ProductID, b.SizeID, b.Quantity, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

// List devuelve todas las entradas de saldo de un libro.
func (r *BalanceRepo) List(kind string) ([]*entity.BalanceEntry, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT kind, product_id, size_id, quantity, updated_at
		 FROM balances WHERE kind = $1 ORDER BY product_id, size_id`,
		kind,
	)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var list []*entity.BalanceEntry
	for rows.Next() {
		var b entity.BalanceEntry
		if err := rows.Scan(&b.Kind, &b.ProductID, &b.SizeID, &b.Quantity, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
