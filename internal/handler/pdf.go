package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bernardev/good-trip-api/internal/pdf"
	"github.com/bernardev/good-trip-api/internal/repository"
)

// PDFHandler renders cached ticket bundles as printable PDFs. The bundle
// is read as-is; issuance must have completed before a PDF exists.
type PDFHandler struct {
	Tickets *repository.TicketStore
}

// NewPDFHandler constructs a PDFHandler.
func NewPDFHandler(tickets *repository.TicketStore) *PDFHandler {
	return &PDFHandler{Tickets: tickets}
}

// Render handles POST /v1/tickets/pdf. The body carries the order id;
// the response is the binary PDF with one page per issued ticket.
func (h *PDFHandler) Render(c echo.Context) error {
	var body struct {
		OrderID string `json:"orderId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corpo da requisição inválido"})
	}
	if body.OrderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "orderId é obrigatório"})
	}

	bundle, err := h.Tickets.Get(c.Request().Context(), body.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bilhetes não encontrados"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao carregar bilhetes"})
	}

	data, err := pdf.RenderBundle(bundle)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao gerar o PDF"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="bilhetes-`+body.OrderID+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", data)
}
