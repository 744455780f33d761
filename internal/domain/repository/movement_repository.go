package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
)

// PeriodTotal agrega entradas y salidas de una clave (producto, tamaño) dentro
// de un rango semiabierto [from, to). Solo movimientos no cancelados.
type PeriodTotal struct {
	ProductID string
	SizeID    *string
	Inward    decimal.Decimal
	Outward   decimal.Decimal
}

// MovementRepository define el puerto de persistencia para el log de movimientos.
// Los movimientos son append-mostly: se insertan con sus líneas, nunca se borran
// y su única mutación posible es la transición de cancelación.
type MovementRepository interface {
	// Create persiste el movimiento con todas sus líneas.
	Create(movement *entity.Movement) error

	// GetByID devuelve el movimiento con sus líneas, o nil si no existe.
	GetByID(id string) (*entity.Movement, error)

	// List lista movimientos de un libro en un rango de fechas (ambos opcionales).
	List(kind string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)

	// CancelIfActive marca el movimiento como cancelado solo si aún no lo está
	// (UPDATE condicional WHERE canceled = false). Devuelve false si no afectó
	// filas: ese es el guardián autoritativo contra la doble reversión.
	CancelIfActive(id, userID string, at time.Time) (bool, error)

	// SumSignedAsOf reconstruye el saldo de una clave al instante dado sumando
	// cantidades con signo de movimientos no cancelados con occurred_at < instant.
	SumSignedAsOf(kind, productID string, sizeID *string, instant time.Time) (decimal.Decimal, error)

	// PeriodTotals agrega entradas/salidas por clave en [from, to), excluyendo
	// movimientos cancelados.
	PeriodTotals(kind string, from, to time.Time) ([]PeriodTotal, error)
}
