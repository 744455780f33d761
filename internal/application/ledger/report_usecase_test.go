package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerapp "github.com/p-perotti/gobrewery-sub000/internal/application/ledger"
	"github.com/p-perotti/gobrewery-sub000/internal/domain"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
	"github.com/p-perotti/gobrewery-sub000/internal/infrastructure/memory"
)

// newReportEngine arma motor + reportes sobre el mismo almacén en memoria.
func newReportEngine(t *testing.T) (*ledgerapp.UseCase, *ledgerapp.ReportUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	uc := ledgerapp.NewUseCase(store, store.MovementRepository())
	reports := ledgerapp.NewReportUseCase(store.MovementRepository(), store.BalanceRepository(), nil)
	return uc, reports, store
}

// ──────────────────────────────────────────────────────────────────────────────
// BalanceAsOf
// ──────────────────────────────────────────────────────────────────────────────

// La reconstrucción usa occurred_at estrictamente menor al instante: un
// movimiento en el instante exacto no cuenta.
func TestBalanceAsOf_CorteEstricto(t *testing.T) {
	uc, reports, _ := newReportEngine(t)
	ctx := context.Background()
	size := strPtr("330ml")
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", size, "60", base))
	require.NoError(t, err)
	_, err = uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionOut, "cerveza-rubia", size, "30", base.Add(time.Hour)))
	require.NoError(t, err)

	casos := []struct {
		nombre   string
		instant  time.Time
		esperado string
	}{
		{"antes de todo", base.Add(-time.Minute), "0"},
		{"en el instante exacto de la entrada", base, "0"},
		{"entre entrada y salida", base.Add(30 * time.Minute), "60"},
		{"después de la salida", base.Add(2 * time.Hour), "30"},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			got, err := reports.BalanceAsOf(entity.LedgerKindStock, "cerveza-rubia", size, tc.instant)
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tc.esperado)),
				"saldo a %s: esperado %s, obtenido %s", tc.instant, tc.esperado, got)
		})
	}
}

// Un movimiento cancelado desaparece de la reconstrucción para todo instante,
// incluso instantes anteriores a la cancelación. La historia reconstruida es
// la del log vigente, no la línea de tiempo física.
func TestBalanceAsOf_CanceladoExcluidoRetroactivamente(t *testing.T) {
	uc, reports, _ := newReportEngine(t)
	ctx := context.Background()
	size := strPtr("330ml")
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mov, err := uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", size, "60", base))
	require.NoError(t, err)

	got, err := reports.BalanceAsOf(entity.LedgerKindStock, "cerveza-rubia", size, base.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, got.Equal(dec("60")))

	_, err = uc.CancelMovement(ctx, mov.ID, testActor)
	require.NoError(t, err)

	got, err = reports.BalanceAsOf(entity.LedgerKindStock, "cerveza-rubia", size, base.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, got.IsZero(),
		"el movimiento cancelado no debe aparecer ni en instantes previos a la cancelación")
}

func TestBalanceAsOf_EntradaInvalida(t *testing.T) {
	_, reports, _ := newReportEngine(t)
	_, err := reports.BalanceAsOf("LEDGER_X", "p", nil, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = reports.BalanceAsOf(entity.LedgerKindStock, "", nil, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// PeriodReport
// ──────────────────────────────────────────────────────────────────────────────

// Identidad del período: inicial + entradas - salidas = final, y el final del
// reporte coincide con BalanceAsOf(to).
func TestPeriodReport_IdentidadDelPeriodo(t *testing.T) {
	uc, reports, _ := newReportEngine(t)
	ctx := context.Background()
	size := strPtr("330ml")
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	from := base.AddDate(0, 0, 10)
	to := base.AddDate(0, 0, 20)

	// Antes del período: saldo inicial 100
	_, err := uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", size, "100", base))
	require.NoError(t, err)

	// Dentro del período: +40, -15
	_, err = uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", size, "40", from.Add(time.Hour)))
	require.NoError(t, err)
	_, err = uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionOut, "cerveza-rubia", size, "15", from.Add(2*time.Hour)))
	require.NoError(t, err)

	// Después del período: no debe afectar el reporte
	_, err = uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionOut, "cerveza-rubia", size, "99", to.Add(time.Hour)))
	require.NoError(t, err)

	report, err := reports.PeriodReport(entity.LedgerKindStock, from, to)
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.Equal(t, "cerveza-rubia", row.ProductID)
	assert.True(t, row.Initial.Equal(dec("100")), "inicial: %s", row.Initial)
	assert.True(t, row.Inward.Equal(dec("40")), "entradas: %s", row.Inward)
	assert.True(t, row.Outward.Equal(dec("15")), "salidas: %s", row.Outward)
	assert.True(t, row.Final.Equal(dec("125")), "final: %s", row.Final)

	// final = inicial + entradas - salidas
	assert.True(t, row.Final.Equal(row.Initial.Add(row.Inward).Sub(row.Outward)))

	// y coincide con la reconstrucción a `to`
	asOf, err := reports.BalanceAsOf(entity.LedgerKindStock, "cerveza-rubia", size, to)
	require.NoError(t, err)
	assert.True(t, row.Final.Equal(asOf),
		"el final del reporte debe coincidir con BalanceAsOf(to)")
}

// Claves sin movimientos en el rango pero con saldo materializado aparecen con
// entradas y salidas en cero.
func TestPeriodReport_IncluyeClavesSinMovimientosEnElRango(t *testing.T) {
	uc, reports, _ := newReportEngine(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-negra", strPtr("750ml"), "8", base))
	require.NoError(t, err)

	from := base.AddDate(0, 1, 0)
	to := from.AddDate(0, 1, 0)
	report, err := reports.PeriodReport(entity.LedgerKindStock, from, to)
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.True(t, row.Inward.IsZero())
	assert.True(t, row.Outward.IsZero())
	assert.True(t, row.Initial.Equal(dec("8")))
	assert.True(t, row.Final.Equal(dec("8")))
}

func TestPeriodReport_RangoInvalido(t *testing.T) {
	_, reports, _ := newReportEngine(t)
	at := time.Now()
	_, err := reports.PeriodReport(entity.LedgerKindStock, at, at)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "from debe ser estrictamente menor que to")
}

// ──────────────────────────────────────────────────────────────────────────────
// CurrentBalances / CheckAvailability
// ──────────────────────────────────────────────────────────────────────────────

// Modo solo-actual: lee el almacén de saldos sin reconstruir nada.
func TestCurrentBalances_ListaOrdenada(t *testing.T) {
	uc, reports, _ := newReportEngine(t)
	ctx := context.Background()

	_, err := uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", strPtr("330ml"), "10", time.Now()))
	require.NoError(t, err)
	_, err = uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-negra", strPtr("750ml"), "4", time.Now()))
	require.NoError(t, err)

	balances, err := reports.CurrentBalances(entity.LedgerKindStock)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "cerveza-negra", balances[0].ProductID, "ordenado por producto")
	assert.Equal(t, "cerveza-rubia", balances[1].ProductID)
}

func TestCheckAvailability(t *testing.T) {
	uc, reports, _ := newReportEngine(t)
	size := strPtr("330ml")

	_, err := uc.RecordMovement(context.Background(),
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", size, "10", time.Now()))
	require.NoError(t, err)

	resp, err := reports.CheckAvailability(entity.LedgerKindStock, "cerveza-rubia", size, dec("8"))
	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.True(t, resp.OnHand.Equal(dec("10")))

	resp, err = reports.CheckAvailability(entity.LedgerKindStock, "cerveza-rubia", size, dec("12"))
	require.NoError(t, err)
	assert.False(t, resp.Available, "pedir más de lo disponible reporta no-disponible")

	_, err = reports.CheckAvailability(entity.LedgerKindStock, "cerveza-rubia", size, dec("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la cantidad solicitada debe ser positiva")
}
