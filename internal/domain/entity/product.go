package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto de la cervecería (catálogo).
// El ledger trata el ID como clave foránea opaca; no valida existencia.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
