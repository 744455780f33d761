package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de libro (ledger). Estructuralmente idénticos; el kind separa los
// espacios de claves de saldo.
const (
	LedgerKindStock     = "STOCK"     // operaciones de estoque (requieren tamaño)
	LedgerKindInventory = "INVENTORY" // operaciones de inventario (tamaño opcional)
)

// Direcciones de movimiento, códigos heredados del sistema original.
const (
	DirectionIn  = "E" // entrada
	DirectionOut = "S" // salida
)

// ValidKind indica si el kind es uno de los dos libros soportados.
func ValidKind(kind string) bool {
	return kind == LedgerKindStock || kind == LedgerKindInventory
}

// ValidDirection indica si la dirección es E o S.
func ValidDirection(direction string) bool {
	return direction == DirectionIn || direction == DirectionOut
}

// Movement representa una operación de entrada o salida con sus líneas.
// Inmutable después de creado, salvo la transición única de cancelación.
type Movement struct {
	ID            string
	Kind          string
	Direction     string
	OccurredAt    time.Time // fecha de negocio, provista por el caller
	DeclaredTotal decimal.Decimal
	Canceled      bool
	CanceledAt    *time.Time
	CanceledBy    *string
	CreatedAt     time.Time
	CreatedBy     string
	Lines         []LineItem
}

// LineItem es una cantidad de producto+tamaño dentro de un movimiento.
// Pertenece a exactamente un movimiento; nunca se borra de forma independiente.
type LineItem struct {
	ID         string
	MovementID string
	ProductID  string
	SizeID     *string // nil para movimientos de inventario sin tamaño
	Quantity   decimal.Decimal
}
