package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del log de movimientos sobre PostgreSQL
// (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, kind, direction, occurred_at, declared_total, canceled, canceled_at, canceled_by, created_at, created_by`

// Create persiste el movimiento y todas sus líneas.
func (r *MovementRepo) Create(m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, kind, direction, occurred_at, declared_total, canceled, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, false, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.Kind, m.Direction, m.OccurredAt, m.DeclaredTotal, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	for i := range m.Lines {
		li := &m.Lines[i]
		_, err := r.q.Exec(context.Background(),
			`INSERT INTO movement_lines (id, movement_id, product_id, size_id, quantity)
			 VALUES ($1, $2, $3, $4, $5)`,
			li.ID, li.MovementID, li.ProductID, li.SizeID, li.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert movement line %d: %w", i, err)
		}
	}
	return nil
}

// GetByID obtiene un movimiento con sus líneas, o nil si no existe.
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	var m entity.Movement
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.Kind, &m.Direction, &m.OccurredAt, &m.DeclaredTotal,
		&m.Canceled, &m.CanceledAt, &m.CanceledBy, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	lines, err := r.linesByMovement(m.ID)
	if err != nil {
		return nil, err
	}
	m.Lines = lines
	return &m, nil
}

// List lista movimientos de un libro en un rango de fechas, más recientes
// primero, con sus líneas.
func (r *MovementRepo) List(kind string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE kind = $1`
	args := []any{kind}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND occurred_at < $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY occurred_at DESC, created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(&m.ID, &m.Kind, &m.Direction, &m.OccurredAt, &m.DeclaredTotal,
			&m.Canceled, &m.CanceledAt, &m.CanceledBy, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, m := range list {
		lines, err := r.linesByMovement(m.ID)
		if err != nil {
			return nil, err
		}
		m.Lines = lines
	}
	return list, nil
}

// CancelIfActive marca el movimiento como cancelado solo si aún no lo está.
// El WHERE canceled = false más el chequeo de filas afectadas es el guardián
// contra la doble reversión bajo cancelaciones concurrentes.
func (r *MovementRepo) CancelIfActive(id, userID string, at time.Time) (bool, error) {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE movements SET canceled = true, canceled_at = $2, canceled_by = $3
		 WHERE id = $1 AND canceled = false`,
		id, at, userID,
	)
	if err != nil {
		return false, fmt.Errorf("cancel movement: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// SumSignedAsOf reconstruye el saldo de la clave al instante dado desde el log:
// suma con signo (E suma, S resta) de líneas de movimientos no cancelados con
// occurred_at < instant.
func (r *MovementRepo) SumSignedAsOf(kind, productID string, sizeID *string, instant time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN m.direction = 'E' THEN l.quantity ELSE -l.quantity END), 0)
		FROM movement_lines l
		JOIN movements m ON m.id = l.movement_id
		WHERE m.kind = $1
		  AND l.product_id = $2
		  AND l.size_id IS NOT DISTINCT FROM $3
		  AND m.canceled = false
		  AND m.occurred_at < $4`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, kind, productID, sizeID, instant).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum signed as of: %w", err)
	}
	return sum, nil
}

// PeriodTotals agrega entradas y salidas por clave (producto, tamaño) en el
// rango semiabierto [from, to), excluyendo movimientos cancelados.
func (r *MovementRepo) PeriodTotals(kind string, from, to time.Time) ([]repository.PeriodTotal, error) {
	query := `
		SELECT l.product_id, l.size_id,
		       COALESCE(SUM(l.quantity) FILTER (WHERE m.direction = 'E'), 0) AS inward,
		       COALESCE(SUM(l.quantity) FILTER (WHERE m.direction = 'S'), 0) AS outward
		FROM movement_lines l
		JOIN movements m ON m.id = l.movement_id
		WHERE m.kind = $1
		  AND m.canceled = false
		  AND m.occurred_at >= $2
		  AND m.occurred_at < $3
		GROUP BY l.product_id, l.size_id
		ORDER BY l.product_id, l.size_id`
	rows, err := r.q.Query(context.Background(), query, kind, from, to)
	if err != nil {
		return nil, fmt.Errorf("period totals: %w", err)
	}
	defer rows.Close()

	var totals []repository.PeriodTotal
	for rows.Next() {
		var t repository.PeriodTotal
		if err := rows.Scan(&t.ProductID, &t.SizeID, &t.Inward, &t.Outward); err != nil {
			return nil, fmt.Errorf("scan period total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *MovementRepo) linesByMovement(movementID string) ([]entity.LineItem, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT id, movement_id, product_id, size_id, quantity
		 FROM movement_lines WHERE movement_id = $1 ORDER BY id`,
		movementID,
	)
	if err != nil {
		return nil, fmt.Errorf("list movement lines: %w", err)
	}
	defer rows.Close()

	var lines []entity.LineItem
	for rows.Next() {
		var li entity.LineItem
		if err := rows.Scan(&li.ID, &li.MovementID, &li.ProductID, &li.SizeID, &li.Quantity); err != nil {
			return nil, fmt.Errorf("scan movement line: %w", err)
		}
		lines = append(lines, li)
	}
	return lines, rows.Err()
}
