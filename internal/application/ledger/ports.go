package ledger

import (
	"context"
	"time"

	"github.com/p-perotti/gobrewery-sub000/internal/application/dto"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Commit si fn retorna nil, Rollback en cualquier
// otro camino de salida. Es el único punto donde el motor adquiere atomicidad;
// la serialización entre movimientos concurrentes sobre la misma clave la da
// el bloqueo de fila de BalanceRepository.GetForUpdate.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		balRepo repository.BalanceRepository,
	) error) error
}

// ReportPDFGenerator renderiza el reporte de período como PDF.
// Implementado en infrastructure/pdf con Maroto.
type ReportPDFGenerator interface {
	GeneratePeriodReportPDF(ctx context.Context, kind string, from, to time.Time, rows []dto.PeriodReportRow) ([]byte, error)
}
