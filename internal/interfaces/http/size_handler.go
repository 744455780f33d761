package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/p-perotti/gobrewery-sub000/internal/application/dto"
	"github.com/p-perotti/gobrewery-sub000/internal/application/usecase"
)

// SizeHandler CRUD de tamaños/presentaciones.
type SizeHandler struct {
	uc *usecase.SizeUseCase
}

// NewSizeHandler construye el handler.
func NewSizeHandler(uc *usecase.SizeUseCase) *SizeHandler {
	return &SizeHandler{uc: uc}
}

// Create godoc
// @Summary      Crear tamaño
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SizeRequest  true  "name, description"
// @Success      201   {object}  dto.SizeResponse
// @Router       /api/sizes [post]
func (h *SizeHandler) Create(c *fiber.Ctx) error {
	var in dto.SizeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	s, err := h.uc.Create(in)
	if err != nil {
		return catalogError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s)
}

// GetByID godoc
// @Summary      Obtener tamaño
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Success      200  {object}  dto.SizeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sizes/{id} [get]
func (h *SizeHandler) GetByID(c *fiber.Ctx) error {
	s, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(s)
}

// Update godoc
// @Summary      Actualizar tamaño
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID"
// @Param        body  body  dto.SizeRequest  true  "name, description"
// @Success      200   {object}  dto.SizeResponse
// @Router       /api/sizes/{id} [put]
func (h *SizeHandler) Update(c *fiber.Ctx) error {
	var in dto.SizeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	s, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(s)
}

// List godoc
// @Summary      Listar tamaños
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SizeResponse
// @Router       /api/sizes [get]
func (h *SizeHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	list, err := h.uc.List(page)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "sizes": list})
}
