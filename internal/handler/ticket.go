package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bernardev/good-trip-api/internal/repository"
	"github.com/bernardev/good-trip-api/internal/service"
)

// TicketHandler exposes ticket issuance and re-display. Issuance is
// idempotent per order id: a second call for an already-issued order is a
// pure cache hit.
type TicketHandler struct {
	Issuer  *service.TicketIssuer
	Tickets *repository.TicketStore
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(issuer *service.TicketIssuer, tickets *repository.TicketStore) *TicketHandler {
	return &TicketHandler{Issuer: issuer, Tickets: tickets}
}

// Issue handles POST /v1/tickets/issue. The body must contain the order
// id and the payment status reported by the processor; any status other
// than an approval sentinel is rejected with no side effects. On partial
// issuance failure the response carries the compensating-refund outcome
// alongside the error message.
func (h *TicketHandler) Issue(c echo.Context) error {
	var body struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corpo da requisição inválido"})
	}
	if body.OrderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "orderId é obrigatório"})
	}

	bundle, err := h.Issuer.Issue(c.Request().Context(), body.OrderID, body.Status)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotApproved) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":  "pagamento não aprovado",
				"status": "NEGADO",
			})
		}
		if errors.Is(err, service.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reserva não encontrada"})
		}
		var se *service.SettlementError
		if errors.As(err, &se) {
			resp := echo.Map{
				"error":             se.Reason,
				"status":            "NEGADO",
				"estornoProcessado": se.Refund.Processed,
			}
			if se.Refund.Status != "" {
				resp["estornoStatus"] = se.Refund.Status
			}
			if se.Refund.Amount.IsPositive() {
				resp["valorEstornado"] = se.Refund.Amount.StringFixed(2)
			}
			return c.JSON(http.StatusBadGateway, resp)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao emitir bilhete"})
	}
	return c.JSON(http.StatusOK, bundle)
}

// Get handles GET /v1/tickets/:orderId. It returns the cached ticket
// bundle for re-display, or 404 when none exists (never issued or TTL
// expired).
func (h *TicketHandler) Get(c echo.Context) error {
	orderID := c.Param("orderId")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "orderId é obrigatório"})
	}
	bundle, err := h.Tickets.Get(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bilhetes não encontrados"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao carregar bilhetes"})
	}
	return c.JSON(http.StatusOK, bundle)
}
