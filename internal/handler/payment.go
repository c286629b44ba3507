package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/bernardev/good-trip-api/internal/model"
	"github.com/bernardev/good-trip-api/internal/payment"
	"github.com/bernardev/good-trip-api/internal/repository"
)

// PaymentHandler begins a purchase: it creates the processor order and
// caches the reservation under the processor-assigned order id. This is
// the single writer for each reservation entry.
type PaymentHandler struct {
	Processor      *payment.Client
	Reservations   *repository.ReservationStore
	ReservationTTL time.Duration
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(processor *payment.Client, reservations *repository.ReservationStore, ttl time.Duration) *PaymentHandler {
	return &PaymentHandler{Processor: processor, Reservations: reservations, ReservationTTL: ttl}
}

type createPaymentRequest struct {
	Method     string               `json:"metodo"` // "credit_card" or "pix"
	Trip       model.TripRef        `json:"viagem"`
	Seats      []string             `json:"poltronas"`
	Passengers []model.Passenger    `json:"passageiros"`
	Total      decimal.Decimal      `json:"valorTotal"`
	Card       *payment.CardDetails `json:"cartao,omitempty"`
}

func (r *createPaymentRequest) validate() string {
	switch {
	case r.Method != "credit_card" && r.Method != "pix":
		return "metodo deve ser credit_card ou pix"
	case r.Method == "credit_card" && r.Card == nil:
		return "dados do cartão são obrigatórios"
	case len(r.Seats) == 0:
		return "poltronas é obrigatório"
	case len(r.Passengers) == 0:
		return "passageiros é obrigatório"
	case !r.Total.IsPositive():
		return "valorTotal deve ser positivo"
	}
	return ""
}

// Create handles POST /v1/payments. It shapes the processor order
// request, creates the charge and stores the pending reservation with
// the charge reference attached. For PIX orders the response carries the
// copy-paste QR payload returned by the processor.
func (h *PaymentHandler) Create(c echo.Context) error {
	var body createPaymentRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corpo da requisição inválido"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	lead := body.Passengers[0]
	ord, err := h.Processor.CreateOrder(c.Request().Context(), payment.OrderRequest{
		Method:           body.Method,
		AmountCents:      body.Total.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		Description:      body.Trip.OriginName + " -> " + body.Trip.DestinationName,
		CustomerName:     lead.Name,
		CustomerDocument: lead.DocumentNumber,
		CustomerEmail:    lead.Email,
		CustomerPhone:    lead.Phone,
		Card:             body.Card,
	})
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}

	res := &model.Reservation{
		OrderID:    ord.ID,
		Trip:       body.Trip,
		Seats:      body.Seats,
		Passengers: body.Passengers,
		Total:      body.Total,
		ChargeID:   ord.ChargeID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Reservations.Put(c.Request().Context(), ord.ID, res, h.ReservationTTL); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "falha ao registrar a reserva"})
	}

	resp := echo.Map{
		"orderId": ord.ID,
		"status":  ord.Status,
	}
	if ord.PixQRCode != "" {
		resp["pix"] = echo.Map{
			"qrCode":   ord.PixQRCode,
			"expiraEm": ord.PixExpiresAt,
		}
	}
	return c.JSON(http.StatusCreated, resp)
}
