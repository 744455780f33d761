package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/p-perotti/gobrewery-sub000/internal/application/dto"
	ledgerapp "github.com/p-perotti/gobrewery-sub000/internal/application/ledger"
	"github.com/p-perotti/gobrewery-sub000/internal/domain"
)

// LedgerHandler maneja las peticiones HTTP de movimientos de los dos libros
// (stock e inventario). El kind llega fijado por la ruta.
type LedgerHandler struct {
	uc      *ledgerapp.UseCase
	reports *ledgerapp.ReportUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledgerapp.UseCase, reports *ledgerapp.ReportUseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc, reports: reports}
}

// RecordMovement godoc
// @Summary      Registrar movimiento (entrada/salida)
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "direction (E/S), occurred_at, declared_total, lines"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *LedgerHandler) RecordMovement(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
		}
		var in dto.RecordMovementRequest
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
		input := ledgerapp.MovementInput{
			Kind:          kind,
			Direction:     in.Direction,
			OccurredAt:    in.OccurredAt,
			DeclaredTotal: in.DeclaredTotal,
			UserID:        userID,
		}
		for _, l := range in.Lines {
			input.Lines = append(input.Lines, ledgerapp.LineInput{
				ProductID: l.ProductID,
				SizeID:    l.SizeID,
				Quantity:  l.Quantity,
			})
		}
		mov, err := h.uc.RecordMovement(c.Context(), input)
		if err != nil {
			return ledgerError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(mov))
	}
}

// CancelMovement godoc
// @Summary      Cancelar movimiento (reversión compensada)
// @Description  Marca el movimiento como cancelado y deshace su efecto sobre
//	los saldos. Cancelar un movimiento ya cancelado es benigno: responde 200
//	con already_canceled=true para que el doble click en la UI sea seguro.
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id}/cancel [post]
func (h *LedgerHandler) CancelMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	mov, err := h.uc.CancelMovement(c.Context(), c.Params("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyCanceled) {
			// Resultado definido, no excepción: nada que hacer.
			return c.JSON(fiber.Map{"already_canceled": true, "message": "el movimiento ya estaba cancelado"})
		}
		return ledgerError(c, err)
	}
	return c.JSON(dto.ToMovementResponse(mov))
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Fecha inicial (RFC3339)"
// @Param        to      query  string  false  "Fecha final exclusiva (RFC3339)"
// @Param        limit   query  int     false  "Límite"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/stock/movements [get]
func (h *LedgerHandler) ListMovements(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var page dto.PageRequest
		if err := c.QueryParser(&page); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
		}
		page.DefaultPage()
		from, err := parseTimeQuery(c, "from")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from inválido (RFC3339)"})
		}
		to, err := parseTimeQuery(c, "to")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to inválido (RFC3339)"})
		}
		movements, err := h.reports.ListMovements(kind, from, to, page.Limit, page.Offset)
		if err != nil {
			return ledgerError(c, err)
		}
		out := make([]*dto.MovementResponse, 0, len(movements))
		for _, m := range movements {
			out = append(out, dto.ToMovementResponse(m))
		}
		return c.JSON(fiber.Map{"total": len(out), "movements": out})
	}
}

// ledgerError mapea errores del motor a códigos HTTP. Los errores tipados
// llevan el detalle (línea ofensora, montos en conflicto) en el mensaje.
func ledgerError(c *fiber.Ctx, err error) error {
	var totalErr *domain.InconsistentTotalError
	if errors.As(err, &totalErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INCONSISTENT_TOTAL", Message: totalErr.Error()})
	}
	var lineErr *domain.InvalidLineError
	if errors.As(err, &lineErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_LINE", Message: lineErr.Error()})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "movimiento no encontrado"})
	case errors.Is(err, domain.ErrTransactionConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TX_CONFLICT", Message: "conflicto de transacción, reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func parseTimeQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
