package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceResponse saldo actual de una clave (producto, tamaño).
type BalanceResponse struct {
	Kind      string          `json:"kind"`
	ProductID string          `json:"product_id"`
	SizeID    *string         `json:"size_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// PeriodReportRow fila del reporte de período para una clave:
// saldo inicial (reconstruido a from), entradas y salidas en [from, to)
// y saldo final = inicial + entradas - salidas.
type PeriodReportRow struct {
	ProductID string          `json:"product_id"`
	SizeID    *string         `json:"size_id,omitempty"`
	Initial   decimal.Decimal `json:"initial"`
	Inward    decimal.Decimal `json:"inward"`
	Outward   decimal.Decimal `json:"outward"`
	Final     decimal.Decimal `json:"final"`
}

// PeriodReportResponse reporte de período completo.
type PeriodReportResponse struct {
	Kind string            `json:"kind"`
	From time.Time         `json:"from"`
	To   time.Time         `json:"to"`
	Rows []PeriodReportRow `json:"rows"`
}

// AvailabilityResponse resultado del pre-chequeo de disponibilidad.
// Consultivo: no bloquea el registro de salidas y es carrera-propenso frente
// a movimientos concurrentes, igual que en el sistema original.
type AvailabilityResponse struct {
	ProductID string          `json:"product_id"`
	SizeID    *string         `json:"size_id,omitempty"`
	Requested decimal.Decimal `json:"requested"`
	OnHand    decimal.Decimal `json:"on_hand"`
	Available bool            `json:"available"`
}
