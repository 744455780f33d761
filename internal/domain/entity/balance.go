package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceEntry representa el saldo actual materializado de una clave
// (kind, producto, tamaño). Se crea de forma perezosa con el primer movimiento
// que referencia la clave y solo lo muta el motor del ledger, bajo bloqueo.
type BalanceEntry struct {
	Kind      string
	ProductID string
	SizeID    *string
	Quantity  decimal.Decimal // con signo; el balance puede quedar negativo
	UpdatedAt time.Time
}
