package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerapp "github.com/p-perotti/gobrewery-sub000/internal/application/ledger"
	"github.com/p-perotti/gobrewery-sub000/internal/domain"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
	"github.com/p-perotti/gobrewery-sub000/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testActor = "00000000-0000-0000-0000-0000000000aa"

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newEngine arma el motor sobre el almacén en memoria.
func newEngine(t *testing.T) (*ledgerapp.UseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	uc := ledgerapp.NewUseCase(store, store.MovementRepository())
	return uc, store
}

// movementOf construye la entrada de un movimiento de una sola línea.
func movementOf(kind, direction, productID string, sizeID *string, qty string, at time.Time) ledgerapp.MovementInput {
	return ledgerapp.MovementInput{
		Kind:          kind,
		Direction:     direction,
		OccurredAt:    at,
		DeclaredTotal: dec(qty),
		UserID:        testActor,
		Lines: []ledgerapp.LineInput{
			{ProductID: productID, SizeID: sizeID, Quantity: dec(qty)},
		},
	}
}

// balanceOf lee el saldo commiteado de una clave.
func balanceOf(t *testing.T, store *memory.Store, kind, productID string, sizeID *string) decimal.Decimal {
	t.Helper()
	b, err := store.BalanceRepository().Get(kind, productID, sizeID)
	require.NoError(t, err)
	return b.Quantity
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_EntradaActualizaSaldo(t *testing.T) {
	uc, store := newEngine(t)
	size := strPtr("330ml")

	mov, err := uc.RecordMovement(context.Background(),
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", size, "60", time.Now()))
	require.NoError(t, err)
	require.NotEmpty(t, mov.ID)
	assert.False(t, mov.Canceled)

	got := balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", size)
	assert.True(t, got.Equal(dec("60")), "saldo esperado 60, obtenido %s", got)
}

// Escenario de referencia: entrada de 60, salida de 30, saldo final 30.
func TestRecordMovement_EntradaYSalida(t *testing.T) {
	uc, store := newEngine(t)
	size := strPtr("330ml")
	ctx := context.Background()

	_, err := uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", size, "60", time.Now()))
	require.NoError(t, err)

	_, err = uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionOut, "cerveza-rubia", size, "30", time.Now()))
	require.NoError(t, err)

	got := balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", size)
	assert.True(t, got.Equal(dec("30")), "saldo esperado 30, obtenido %s", got)
}

// Un movimiento multilínea ajusta cada clave (producto, tamaño) por separado.
func TestRecordMovement_MultilineaAjustaCadaClave(t *testing.T) {
	uc, store := newEngine(t)
	ctx := context.Background()

	in := ledgerapp.MovementInput{
		Kind:          entity.LedgerKindStock,
		Direction:     entity.DirectionIn,
		OccurredAt:    time.Now(),
		DeclaredTotal: dec("36"),
		UserID:        testActor,
		Lines: []ledgerapp.LineInput{
			{ProductID: "cerveza-rubia", SizeID: strPtr("330ml"), Quantity: dec("24")},
			{ProductID: "cerveza-negra", SizeID: strPtr("750ml"), Quantity: dec("12")},
		},
	}
	_, err := uc.RecordMovement(ctx, in)
	require.NoError(t, err)

	assert.True(t, balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", strPtr("330ml")).Equal(dec("24")))
	assert.True(t, balanceOf(t, store, entity.LedgerKindStock, "cerveza-negra", strPtr("750ml")).Equal(dec("12")))
}

// Los dos libros son independientes: la misma clave de producto en STOCK y en
// INVENTORY lleva saldos separados.
func TestRecordMovement_LibrosIndependientes(t *testing.T) {
	uc, store := newEngine(t)
	ctx := context.Background()

	_, err := uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", strPtr("330ml"), "10", time.Now()))
	require.NoError(t, err)

	_, err = uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindInventory, entity.DirectionIn, "cerveza-rubia", strPtr("330ml"), "4", time.Now()))
	require.NoError(t, err)

	assert.True(t, balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", strPtr("330ml")).Equal(dec("10")))
	assert.True(t, balanceOf(t, store, entity.LedgerKindInventory, "cerveza-rubia", strPtr("330ml")).Equal(dec("4")))
}

// No se rechaza la salida que deja el saldo negativo: el ledger registra lo que
// pasó en el mundo físico, no lo que debería haber pasado.
func TestRecordMovement_PermiteSaldoNegativo(t *testing.T) {
	uc, store := newEngine(t)
	size := strPtr("330ml")

	_, err := uc.RecordMovement(context.Background(),
		movementOf(entity.LedgerKindStock, entity.DirectionOut, "cerveza-rubia", size, "5", time.Now()))
	require.NoError(t, err)

	got := balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", size)
	assert.True(t, got.Equal(dec("-5")))
}

// Total declarado distinto de la suma de líneas: rechazo sin ninguna escritura,
// ni en el log ni en los saldos.
func TestRecordMovement_TotalInconsistente_CeroEscrituras(t *testing.T) {
	uc, store := newEngine(t)
	size := strPtr("330ml")

	in := movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", size, "10", time.Now())
	in.DeclaredTotal = dec("11")

	_, err := uc.RecordMovement(context.Background(), in)

	var totalErr *domain.InconsistentTotalError
	require.ErrorAs(t, err, &totalErr)
	assert.True(t, totalErr.Declared.Equal(dec("11")))
	assert.True(t, totalErr.Sum.Equal(dec("10")))

	movs, err := store.MovementRepository().List(entity.LedgerKindStock, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, movs, "un movimiento rechazado no debe quedar en el log")
	assert.True(t, balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", size).IsZero(),
		"un movimiento rechazado no debe tocar los saldos")
}

func TestRecordMovement_LineaInvalida_CeroEscrituras(t *testing.T) {
	uc, store := newEngine(t)

	in := ledgerapp.MovementInput{
		Kind:          entity.LedgerKindStock,
		Direction:     entity.DirectionIn,
		OccurredAt:    time.Now(),
		DeclaredTotal: dec("10"),
		UserID:        testActor,
		Lines: []ledgerapp.LineInput{
			{ProductID: "cerveza-rubia", SizeID: strPtr("330ml"), Quantity: dec("10")},
			{ProductID: "cerveza-negra", SizeID: strPtr("330ml"), Quantity: dec("0")},
		},
	}
	_, err := uc.RecordMovement(context.Background(), in)

	var lineErr *domain.InvalidLineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 1, lineErr.Index)

	movs, err := store.MovementRepository().List(entity.LedgerKindStock, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestRecordMovement_EntradaInvalida(t *testing.T) {
	uc, _ := newEngine(t)
	ctx := context.Background()
	size := strPtr("330ml")

	casos := []struct {
		nombre string
		mutar  func(*ledgerapp.MovementInput)
	}{
		{"kind desconocido", func(in *ledgerapp.MovementInput) { in.Kind = "LEDGER_X" }},
		{"direccion desconocida", func(in *ledgerapp.MovementInput) { in.Direction = "X" }},
		{"sin usuario", func(in *ledgerapp.MovementInput) { in.UserID = "" }},
		{"sin fecha", func(in *ledgerapp.MovementInput) { in.OccurredAt = time.Time{} }},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			in := movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", size, "1", time.Now())
			tc.mutar(&in)
			_, err := uc.RecordMovement(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CancelMovement
// ──────────────────────────────────────────────────────────────────────────────

// La cancelación es una reversión compensada: el saldo vuelve bit a bit al
// valor previo al movimiento.
func TestCancelMovement_RestauraSaldoExacto(t *testing.T) {
	uc, store := newEngine(t)
	ctx := context.Background()
	size := strPtr("330ml")

	_, err := uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", size, "17.25", time.Now()))
	require.NoError(t, err)
	antes := balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", size)

	mov, err := uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionOut, "cerveza-rubia", size, "4.75", time.Now()))
	require.NoError(t, err)

	canceled, err := uc.CancelMovement(ctx, mov.ID, testActor)
	require.NoError(t, err)
	assert.True(t, canceled.Canceled)
	require.NotNil(t, canceled.CanceledAt)
	require.NotNil(t, canceled.CanceledBy)
	assert.Equal(t, testActor, *canceled.CanceledBy)

	despues := balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", size)
	assert.True(t, despues.Equal(antes),
		"cancelar debe restaurar el saldo exacto: antes %s, después %s", antes, despues)
}

// Cancelar una entrada resta; cancelar una salida suma.
func TestCancelMovement_InversaSegunDireccion(t *testing.T) {
	uc, store := newEngine(t)
	ctx := context.Background()
	size := strPtr("330ml")

	entrada, err := uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", size, "60", time.Now()))
	require.NoError(t, err)
	salida, err := uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionOut, "cerveza-rubia", size, "30", time.Now()))
	require.NoError(t, err)

	_, err = uc.CancelMovement(ctx, salida.ID, testActor)
	require.NoError(t, err)
	assert.True(t, balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", size).Equal(dec("60")),
		"cancelar la salida devuelve las 30 unidades")

	_, err = uc.CancelMovement(ctx, entrada.ID, testActor)
	require.NoError(t, err)
	assert.True(t, balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", size).IsZero(),
		"cancelar también la entrada deja el saldo en cero")
}

// La segunda cancelación es benigna: ErrAlreadyCanceled y ningún efecto sobre
// el saldo (la inversa no se aplica dos veces).
func TestCancelMovement_Idempotente(t *testing.T) {
	uc, store := newEngine(t)
	ctx := context.Background()
	size := strPtr("330ml")

	mov, err := uc.RecordMovement(ctx,
		movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", size, "60", time.Now()))
	require.NoError(t, err)

	_, err = uc.CancelMovement(ctx, mov.ID, testActor)
	require.NoError(t, err)
	saldo := balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", size)

	_, err = uc.CancelMovement(ctx, mov.ID, testActor)
	assert.ErrorIs(t, err, domain.ErrAlreadyCanceled)

	assert.True(t, balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", size).Equal(saldo),
		"la segunda cancelación no debe volver a aplicar la inversa")
}

func TestCancelMovement_NoExiste(t *testing.T) {
	uc, _ := newEngine(t)
	_, err := uc.CancelMovement(context.Background(), "no-existe", testActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

// Conservación: tras cualquier secuencia de operaciones, el saldo materializado
// de una clave es igual a la suma con signo de sus movimientos no cancelados.
func TestConservacion_SaldoIgualaSumaDelLog(t *testing.T) {
	uc, store := newEngine(t)
	ctx := context.Background()
	size := strPtr("330ml")

	var aCancelar string
	secuencia := []struct {
		direction string
		qty       string
		cancelar  bool
	}{
		{entity.DirectionIn, "100", false},
		{entity.DirectionOut, "12.5", false},
		{entity.DirectionIn, "7.25", true},
		{entity.DirectionOut, "40", false},
		{entity.DirectionIn, "3", false},
	}
	for _, paso := range secuencia {
		mov, err := uc.RecordMovement(ctx,
			movementOf(entity.LedgerKindStock, paso.direction, "cerveza-rubia", size, paso.qty, time.Now()))
		require.NoError(t, err)
		if paso.cancelar {
			aCancelar = mov.ID
		}
	}
	_, err := uc.CancelMovement(ctx, aCancelar, testActor)
	require.NoError(t, err)

	desdeLog, err := store.MovementRepository().SumSignedAsOf(
		entity.LedgerKindStock, "cerveza-rubia", size, time.Now().Add(time.Hour))
	require.NoError(t, err)

	materializado := balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", size)
	assert.True(t, materializado.Equal(desdeLog),
		"saldo materializado %s debe igualar la suma del log %s", materializado, desdeLog)
	assert.True(t, materializado.Equal(dec("50.5")), "100 - 12.5 - 40 + 3 = 50.5")
}

// Dos escritores concurrentes sobre la misma clave no pierden actualizaciones:
// 2 goroutines x 10 entradas de 1 deben terminar en saldo 20.
func TestConcurrencia_SinLostUpdates(t *testing.T) {
	uc, store := newEngine(t)
	size := strPtr("330ml")

	const (
		escritores    = 2
		porEscritor   = 10
		esperadoTotal = "20"
	)

	var wg sync.WaitGroup
	errs := make(chan error, escritores*porEscritor)
	for w := 0; w < escritores; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < porEscritor; i++ {
				_, err := uc.RecordMovement(context.Background(),
					movementOf(entity.LedgerKindStock, entity.DirectionIn, "cerveza-rubia", size, "1", time.Now()))
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got := balanceOf(t, store, entity.LedgerKindStock, "cerveza-rubia", size)
	assert.True(t, got.Equal(dec(esperadoTotal)),
		"saldo esperado %s, obtenido %s (hubo lost update)", esperadoTotal, got)
}
