package ledger_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-perotti/gobrewery-sub000/internal/domain"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/ledger"
)

func strPtr(s string) *string { return &s }

func line(productID, sizeID string, qty string) entity.LineItem {
	li := entity.LineItem{
		ProductID: productID,
		Quantity:  decimal.RequireFromString(qty),
	}
	if sizeID != "" {
		li.SizeID = strPtr(sizeID)
	}
	return li
}

// ──────────────────────────────────────────────────────────────────────────────
// Signed
// ──────────────────────────────────────────────────────────────────────────────

func TestSigned_EntradaPositiva(t *testing.T) {
	q := decimal.RequireFromString("12.5")
	assert.True(t, ledger.Signed(q, entity.DirectionIn).Equal(q),
		"una entrada conserva el signo positivo")
}

func TestSigned_SalidaNegativa(t *testing.T) {
	q := decimal.RequireFromString("12.5")
	assert.True(t, ledger.Signed(q, entity.DirectionOut).Equal(q.Neg()),
		"una salida invierte el signo")
}

// ──────────────────────────────────────────────────────────────────────────────
// ValidateLines
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateLines_MovimientoValido(t *testing.T) {
	lines := []entity.LineItem{
		line("cerveza-rubia", "330ml", "24"),
		line("cerveza-negra", "750ml", "6"),
	}
	err := ledger.ValidateLines(entity.LedgerKindStock, lines, decimal.RequireFromString("30"))
	assert.NoError(t, err)
}

func TestValidateLines_SinLineas(t *testing.T) {
	err := ledger.ValidateLines(entity.LedgerKindStock, nil, decimal.Zero)

	var lineErr *domain.InvalidLineError
	require.ErrorAs(t, err, &lineErr)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput),
		"el error de línea debe desenvolver a ErrInvalidInput")
}

func TestValidateLines_CantidadCero(t *testing.T) {
	lines := []entity.LineItem{
		line("cerveza-rubia", "330ml", "10"),
		line("cerveza-negra", "330ml", "0"),
	}
	err := ledger.ValidateLines(entity.LedgerKindStock, lines, decimal.RequireFromString("10"))

	var lineErr *domain.InvalidLineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 1, lineErr.Index, "debe señalar la línea ofensora")
}

func TestValidateLines_CantidadNegativa(t *testing.T) {
	lines := []entity.LineItem{line("cerveza-rubia", "330ml", "-3")}
	err := ledger.ValidateLines(entity.LedgerKindStock, lines, decimal.RequireFromString("-3"))

	var lineErr *domain.InvalidLineError
	require.ErrorAs(t, err, &lineErr)
}

func TestValidateLines_ProductoRequerido(t *testing.T) {
	lines := []entity.LineItem{line("", "330ml", "5")}
	err := ledger.ValidateLines(entity.LedgerKindStock, lines, decimal.RequireFromString("5"))

	var lineErr *domain.InvalidLineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 0, lineErr.Index)
}

// El libro de stock exige tamaño por línea; el de inventario no.
func TestValidateLines_TamanoObligatorioSoloEnStock(t *testing.T) {
	lines := []entity.LineItem{line("lupulo-cascade", "", "2.75")}
	total := decimal.RequireFromString("2.75")

	err := ledger.ValidateLines(entity.LedgerKindStock, lines, total)
	var lineErr *domain.InvalidLineError
	require.ErrorAs(t, err, &lineErr, "stock sin tamaño debe rechazarse")

	err = ledger.ValidateLines(entity.LedgerKindInventory, lines, total)
	assert.NoError(t, err, "inventario admite líneas sin tamaño")
}

func TestValidateLines_TotalInconsistente(t *testing.T) {
	lines := []entity.LineItem{
		line("cerveza-rubia", "330ml", "10"),
		line("cerveza-negra", "330ml", "5"),
	}
	err := ledger.ValidateLines(entity.LedgerKindStock, lines, decimal.RequireFromString("14"))

	var totalErr *domain.InconsistentTotalError
	require.ErrorAs(t, err, &totalErr)
	assert.True(t, totalErr.Declared.Equal(decimal.RequireFromString("14")))
	assert.True(t, totalErr.Sum.Equal(decimal.RequireFromString("15")))
	assert.True(t, errors.Is(err, domain.ErrInconsistentTotal))
}

// La igualdad con el total declarado es decimal exacta: 0.1 + 0.2 debe igualar
// 0.3 sin el error de redondeo de float64.
func TestValidateLines_IgualdadDecimalExacta(t *testing.T) {
	lines := []entity.LineItem{
		line("cerveza-rubia", "330ml", "0.1"),
		line("cerveza-rubia", "750ml", "0.2"),
	}
	err := ledger.ValidateLines(entity.LedgerKindStock, lines, decimal.RequireFromString("0.3"))
	assert.NoError(t, err, "la comparación debe ser decimal exacta, no float")
}

func TestSumLines(t *testing.T) {
	lines := []entity.LineItem{
		line("a", "s", "1.5"),
		line("b", "s", "2.25"),
		line("c", "s", "3"),
	}
	assert.True(t, ledger.SumLines(lines).Equal(decimal.RequireFromString("6.75")))
}
