package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
)

// MovementLineRequest una línea producto+tamaño+cantidad del movimiento.
type MovementLineRequest struct {
	ProductID string          `json:"product_id"`
	SizeID    *string         `json:"size_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// RecordMovementRequest body para POST /api/{stock|inventory}/movements.
// DeclaredTotal debe ser exactamente igual a la suma de las líneas.
type RecordMovementRequest struct {
	Direction     string                `json:"direction"` // "E" | "S"
	OccurredAt    time.Time             `json:"occurred_at"`
	DeclaredTotal decimal.Decimal       `json:"declared_total"`
	Lines         []MovementLineRequest `json:"lines"`
}

// MovementLineResponse línea persistida.
type MovementLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	SizeID    *string         `json:"size_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// MovementResponse movimiento persistido con sus líneas.
type MovementResponse struct {
	ID            string                 `json:"id"`
	Kind          string                 `json:"kind"`
	Direction     string                 `json:"direction"`
	OccurredAt    time.Time              `json:"occurred_at"`
	DeclaredTotal decimal.Decimal        `json:"declared_total"`
	Canceled      bool                   `json:"canceled"`
	CanceledAt    *time.Time             `json:"canceled_at,omitempty"`
	CanceledBy    *string                `json:"canceled_by,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	CreatedBy     string                 `json:"created_by"`
	Lines         []MovementLineResponse `json:"lines"`
}

// ToMovementResponse mapea la entidad al DTO de respuesta.
func ToMovementResponse(m *entity.Movement) *MovementResponse {
	if m == nil {
		return nil
	}
	lines := make([]MovementLineResponse, 0, len(m.Lines))
	for _, li := range m.Lines {
		lines = append(lines, MovementLineResponse{
			ID:        li.ID,
			ProductID: li.ProductID,
			SizeID:    li.SizeID,
			Quantity:  li.Quantity,
		})
	}
	return &MovementResponse{
		ID:            m.ID,
		Kind:          m.Kind,
		Direction:     m.Direction,
		OccurredAt:    m.OccurredAt,
		DeclaredTotal: m.DeclaredTotal,
		Canceled:      m.Canceled,
		CanceledAt:    m.CanceledAt,
		CanceledBy:    m.CanceledBy,
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
		Lines:         lines,
	}
}
