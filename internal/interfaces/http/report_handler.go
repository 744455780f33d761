package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/p-perotti/gobrewery-sub000/internal/application/dto"
	ledgerapp "github.com/p-perotti/gobrewery-sub000/internal/application/ledger"
	"github.com/p-perotti/gobrewery-sub000/internal/domain"
)

// ReportHandler consultas de solo lectura: saldos, reportes de período y
// disponibilidad.
type ReportHandler struct {
	reports *ledgerapp.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(reports *ledgerapp.ReportUseCase) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// CurrentBalances godoc
// @Summary      Saldos actuales (modo solo-actual, sin reconstrucción)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/stock/balances [get]
func (h *ReportHandler) CurrentBalances(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		balances, err := h.reports.CurrentBalances(kind)
		if err != nil {
			return ledgerError(c, err)
		}
		return c.JSON(fiber.Map{"total": len(balances), "balances": balances})
	}
}

// BalanceAsOf godoc
// @Summary      Saldo reconstruido a un instante
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true   "Producto"
// @Param        size_id     query  string  false  "Tamaño"
// @Param        at          query  string  true   "Instante (RFC3339)"
// @Success      200  {object}  dto.BalanceResponse
// @Router       /api/stock/balances/as-of [get]
func (h *ReportHandler) BalanceAsOf(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID := c.Query("product_id")
		sizeID := optionalQuery(c, "size_id")
		at, err := time.Parse(time.RFC3339, c.Query("at"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "at inválido (RFC3339)"})
		}
		qty, err := h.reports.BalanceAsOf(kind, productID, sizeID, at)
		if err != nil {
			return ledgerError(c, err)
		}
		return c.JSON(dto.BalanceResponse{Kind: kind, ProductID: productID, SizeID: sizeID, Quantity: qty})
	}
}

// PeriodReport godoc
// @Summary      Reporte de período [from, to): inicial, entradas, salidas, final
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  true   "Inicio (RFC3339)"
// @Param        to      query  string  true   "Fin exclusivo (RFC3339)"
// @Param        format  query  string  false  "json (default) | pdf"
// @Success      200  {object}  dto.PeriodReportResponse
// @Router       /api/stock/reports/period [get]
func (h *ReportHandler) PeriodReport(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := time.Parse(time.RFC3339, c.Query("from"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from inválido (RFC3339)"})
		}
		to, err := time.Parse(time.RFC3339, c.Query("to"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to inválido (RFC3339)"})
		}

		if c.Query("format") == "pdf" {
			pdfBytes, err := h.reports.PeriodReportPDF(c.Context(), kind, from, to)
			if err != nil {
				return ledgerError(c, err)
			}
			c.Set(fiber.HeaderContentType, "application/pdf")
			return c.Send(pdfBytes)
		}

		report, err := h.reports.PeriodReport(kind, from, to)
		if err != nil {
			return ledgerError(c, err)
		}
		return c.JSON(report)
	}
}

// Availability godoc
// @Summary      Pre-chequeo de disponibilidad antes de una salida
// @Description  Consultivo y best-effort: compara contra el saldo actual sin
//	tomar bloqueos; un movimiento concurrente puede invalidarlo. El registro de
//	la salida no lo exige.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true   "Producto"
// @Param        size_id     query  string  false  "Tamaño"
// @Param        quantity    query  string  true   "Cantidad solicitada"
// @Success      200  {object}  dto.AvailabilityResponse
// @Router       /api/stock/availability [get]
func (h *ReportHandler) Availability(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID := c.Query("product_id")
		sizeID := optionalQuery(c, "size_id")
		qty, err := decimal.NewFromString(c.Query("quantity"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "quantity inválida"})
		}
		resp, err := h.reports.CheckAvailability(kind, productID, sizeID, qty)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
			}
			return ledgerError(c, err)
		}
		return c.JSON(resp)
	}
}

func optionalQuery(c *fiber.Ctx, name string) *string {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	return &v
}
