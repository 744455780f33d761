package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/p-perotti/gobrewery-sub000/internal/application/dto"
	"github.com/p-perotti/gobrewery-sub000/internal/domain"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/repository"
)

// ReportUseCase consultas de solo lectura sobre el ledger: saldo actual,
// reconstrucción punto-en-el-tiempo y reportes de período. Nunca escribe.
type ReportUseCase struct {
	movRepo repository.MovementRepository
	balRepo repository.BalanceRepository
	pdfGen  ReportPDFGenerator
}

// NewReportUseCase construye el caso de uso de reportes. pdfGen puede ser nil
// si el caller no necesita salida PDF.
func NewReportUseCase(
	movRepo repository.MovementRepository,
	balRepo repository.BalanceRepository,
	pdfGen ReportPDFGenerator,
) *ReportUseCase {
	return &ReportUseCase{movRepo: movRepo, balRepo: balRepo, pdfGen: pdfGen}
}

// CurrentBalance devuelve el saldo materializado de la clave; cero si la
// entrada no existe. O(1): lee el almacén de saldos, no el log.
func (uc *ReportUseCase) CurrentBalance(kind, productID string, sizeID *string) (decimal.Decimal, error) {
	if !entity.ValidKind(kind) || productID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	bal, err := uc.balRepo.Get(kind, productID, sizeID)
	if err != nil {
		return decimal.Zero, err
	}
	return bal.Quantity, nil
}

// BalanceAsOf reconstruye el saldo de la clave al instante dado sumando las
// cantidades con signo de movimientos no cancelados con occurred_at < instant.
// Consulta el log de movimientos: el almacén de saldos solo guarda el total
// actual, no instantáneas históricas.
func (uc *ReportUseCase) BalanceAsOf(kind, productID string, sizeID *string, instant time.Time) (decimal.Decimal, error) {
	if !entity.ValidKind(kind) || productID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return uc.movRepo.SumSignedAsOf(kind, productID, sizeID, instant)
}

// PeriodReport arma el reporte de rango semiabierto [from, to): por clave,
// saldo inicial reconstruido a from, entradas, salidas y final = inicial +
// entradas - salidas. Incluye claves sin movimientos en el rango pero con
// entrada de saldo existente (se reportan con entradas/salidas en cero).
func (uc *ReportUseCase) PeriodReport(kind string, from, to time.Time) (*dto.PeriodReportResponse, error) {
	if !entity.ValidKind(kind) || !from.Before(to) {
		return nil, domain.ErrInvalidInput
	}

	totals, err := uc.movRepo.PeriodTotals(kind, from, to)
	if err != nil {
		return nil, err
	}

	type key struct {
		productID string
		sizeID    string
	}
	byKey := make(map[key]*dto.PeriodReportRow)
	keyOf := func(productID string, sizeID *string) key {
		k := key{productID: productID}
		if sizeID != nil {
			k.sizeID = *sizeID
		}
		return k
	}

	for _, t := range totals {
		byKey[keyOf(t.ProductID, t.SizeID)] = &dto.PeriodReportRow{
			ProductID: t.ProductID,
			SizeID:    t.SizeID,
			Inward:    t.Inward,
			Outward:   t.Outward,
		}
	}

	// Claves con saldo materializado pero sin movimientos en el rango.
	balances, err := uc.balRepo.List(kind)
	if err != nil {
		return nil, err
	}
	for _, b := range balances {
		k := keyOf(b.ProductID, b.SizeID)
		if _, ok := byKey[k]; !ok {
			byKey[k] = &dto.PeriodReportRow{
				ProductID: b.ProductID,
				SizeID:    b.SizeID,
				Inward:    decimal.Zero,
				Outward:   decimal.Zero,
			}
		}
	}

	rows := make([]dto.PeriodReportRow, 0, len(byKey))
	for _, row := range byKey {
		initial, err := uc.movRepo.SumSignedAsOf(kind, row.ProductID, row.SizeID, from)
		if err != nil {
			return nil, err
		}
		row.Initial = initial
		row.Final = initial.Add(row.Inward).Sub(row.Outward)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ProductID != rows[j].ProductID {
			return rows[i].ProductID < rows[j].ProductID
		}
		return sizeKey(rows[i].SizeID) < sizeKey(rows[j].SizeID)
	})

	return &dto.PeriodReportResponse{Kind: kind, From: from, To: to, Rows: rows}, nil
}

// PeriodReportPDF renderiza el reporte de período como PDF (Maroto).
func (uc *ReportUseCase) PeriodReportPDF(ctx context.Context, kind string, from, to time.Time) ([]byte, error) {
	report, err := uc.PeriodReport(kind, from, to)
	if err != nil {
		return nil, err
	}
	return uc.pdfGen.GeneratePeriodReportPDF(ctx, kind, from, to, report.Rows)
}

// CurrentBalances modo "solo actual" del reporte: lee el almacén de saldos
// directamente, sin reconstrucción desde el log.
func (uc *ReportUseCase) CurrentBalances(kind string) ([]dto.BalanceResponse, error) {
	if !entity.ValidKind(kind) {
		return nil, domain.ErrInvalidInput
	}
	balances, err := uc.balRepo.List(kind)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, dto.BalanceResponse{
			Kind:      b.Kind,
			ProductID: b.ProductID,
			SizeID:    b.SizeID,
			Quantity:  b.Quantity,
		})
	}
	return out, nil
}

// CheckAvailability pre-chequeo consultivo usado por el flujo de venta antes
// de una salida: compara la cantidad solicitada contra el saldo actual.
// No bloquea nada y es carrera-propenso frente a movimientos concurrentes;
// la garantía real sigue siendo el bloqueo de fila dentro de RecordMovement.
func (uc *ReportUseCase) CheckAvailability(kind, productID string, sizeID *string, requested decimal.Decimal) (*dto.AvailabilityResponse, error) {
	if !requested.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	onHand, err := uc.CurrentBalance(kind, productID, sizeID)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityResponse{
		ProductID: productID,
		SizeID:    sizeID,
		Requested: requested,
		OnHand:    onHand,
		Available: onHand.GreaterThanOrEqual(requested),
	}, nil
}

// ListMovements lista movimientos de un libro en un rango de fechas, más
// recientes primero. Solo lectura; incluye los cancelados (el log nunca borra).
func (uc *ReportUseCase) ListMovements(kind string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	if !entity.ValidKind(kind) {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.List(kind, from, to, limit, offset)
}

func sizeKey(sizeID *string) string {
	if sizeID == nil {
		return ""
	}
	return *sizeID
}
