// Package ledger contiene la lógica pura del motor de movimientos:
// cantidades con signo y validación de líneas. Sin dependencias de
// persistencia para poder testearla de forma aislada.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/p-perotti/gobrewery-sub000/internal/domain"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
)

// Signed devuelve la cantidad con signo según la dirección del movimiento:
// +q para entradas (E), -q para salidas (S).
func Signed(quantity decimal.Decimal, direction string) decimal.Decimal {
	if direction == entity.DirectionOut {
		return quantity.Neg()
	}
	return quantity
}

// SumLines suma las cantidades (sin signo) de las líneas de un movimiento.
func SumLines(lines []entity.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, li := range lines {
		sum = sum.Add(li.Quantity)
	}
	return sum
}

// ValidateLines verifica las precondiciones de creación: al menos una línea,
// cantidades estrictamente positivas, producto presente y, para el libro de
// stock, tamaño obligatorio. La igualdad con el total declarado es decimal
// exacta, no aproximación en punto flotante.
func ValidateLines(kind string, lines []entity.LineItem, declaredTotal decimal.Decimal) error {
	if len(lines) == 0 {
		return &domain.InvalidLineError{Index: 0, Reason: "el movimiento no tiene líneas"}
	}
	for i, li := range lines {
		if li.ProductID == "" {
			return &domain.InvalidLineError{Index: i, Reason: "producto requerido"}
		}
		if kind == entity.LedgerKindStock && (li.SizeID == nil || *li.SizeID == "") {
			return &domain.InvalidLineError{Index: i, Reason: "tamaño requerido para movimientos de stock"}
		}
		if !li.Quantity.GreaterThan(decimal.Zero) {
			return &domain.InvalidLineError{Index: i, Reason: "la cantidad debe ser mayor que cero"}
		}
	}
	if sum := SumLines(lines); !sum.Equal(declaredTotal) {
		return &domain.InconsistentTotalError{Declared: declaredTotal, Sum: sum}
	}
	return nil
}
