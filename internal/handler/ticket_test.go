package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bernardev/good-trip-api/internal/carrier"
	"github.com/bernardev/good-trip-api/internal/model"
	"github.com/bernardev/good-trip-api/internal/queue"
	"github.com/bernardev/good-trip-api/internal/repository"
	"github.com/bernardev/good-trip-api/internal/service"
)

type fakeReservations struct{ res *model.Reservation }

func (f *fakeReservations) Get(ctx context.Context, orderID string) (*model.Reservation, error) {
	if f.res == nil {
		return nil, repository.ErrNotFound
	}
	return f.res, nil
}

type fakeTickets struct{ bundle *model.TicketBundle }

func (f *fakeTickets) Get(ctx context.Context, orderID string) (*model.TicketBundle, error) {
	if f.bundle == nil {
		return nil, repository.ErrNotFound
	}
	return f.bundle, nil
}

func (f *fakeTickets) Put(ctx context.Context, orderID string, b *model.TicketBundle, ttl time.Duration) error {
	f.bundle = b
	return nil
}

type fakeCarrier struct{ blockErr error }

func (f *fakeCarrier) LookupCategories(ctx context.Context, trip model.TripRef) (string, error) {
	return "", nil
}

func (f *fakeCarrier) BlockSeat(ctx context.Context, trip model.TripRef, seat string) (carrier.Block, error) {
	if f.blockErr != nil {
		return carrier.Block{}, f.blockErr
	}
	return carrier.Block{TransactionID: "tx-" + seat, Locator: "LOC" + seat, Seat: seat}, nil
}

func (f *fakeCarrier) ConfirmSale(ctx context.Context, blk carrier.Block, p model.Passenger) (model.IssuedTicket, error) {
	return model.IssuedTicket{
		Locator: blk.Locator, TicketNumber: "0001", Seat: blk.Seat, Passenger: p,
		Fare: model.FareBreakdown{Fare: decimal.NewFromInt(90)},
	}, nil
}

type fakeRefunder struct{ out service.RefundOutcome }

func (f *fakeRefunder) Refund(ctx context.Context, orderID string, seatsIssued int, reason string) (service.RefundOutcome, error) {
	return f.out, nil
}

type noopNotifier struct{}

func (noopNotifier) PublishTicketIssued(ctx context.Context, ev queue.TicketIssuedEvent) error {
	return nil
}

func (noopNotifier) PublishRefundProcessed(ctx context.Context, ev queue.RefundProcessedEvent) error {
	return nil
}

func issueRequest(t *testing.T, h *TicketHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets/issue", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Issue(e.NewContext(req, rec)))
	return rec
}

func newHandler(res *fakeReservations, car *fakeCarrier, ref *fakeRefunder) *TicketHandler {
	issuer := service.NewTicketIssuer(res, &fakeTickets{}, car, ref, noopNotifier{}, zap.NewNop(), 30*24*time.Hour)
	return NewTicketHandler(issuer, nil)
}

func TestIssueHandler_RejectedPaymentStatus(t *testing.T) {
	h := newHandler(&fakeReservations{}, &fakeCarrier{}, &fakeRefunder{})

	rec := issueRequest(t, h, `{"orderId":"or_1","status":"pending"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NEGADO", resp["status"])
}

func TestIssueHandler_MissingOrderID(t *testing.T) {
	h := newHandler(&fakeReservations{}, &fakeCarrier{}, &fakeRefunder{})

	rec := issueRequest(t, h, `{"status":"paid"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIssueHandler_ReservationNotFound(t *testing.T) {
	h := newHandler(&fakeReservations{}, &fakeCarrier{}, &fakeRefunder{})

	rec := issueRequest(t, h, `{"orderId":"or_miss","status":"paid"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIssueHandler_Success(t *testing.T) {
	res := &fakeReservations{res: &model.Reservation{
		OrderID:    "or_ok",
		Seats:      []string{"07"},
		Passengers: []model.Passenger{{Name: "Maria Souza"}},
		Total:      decimal.NewFromInt(90),
		ChargeID:   "ch_ok",
	}}
	h := newHandler(res, &fakeCarrier{}, &fakeRefunder{})

	rec := issueRequest(t, h, `{"orderId":"or_ok","status":"paid"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var bundle model.TicketBundle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bundle))
	assert.Equal(t, "or_ok", bundle.OrderID)
	require.Len(t, bundle.Tickets, 1)
	assert.Equal(t, "LOC07", bundle.Tickets[0].Locator)
}

func TestIssueHandler_SettlementReportsRefund(t *testing.T) {
	res := &fakeReservations{res: &model.Reservation{
		OrderID:    "or_half",
		Seats:      []string{"07", "08"},
		Passengers: []model.Passenger{{Name: "Maria Souza"}, {Name: "João Lima"}},
		Total:      decimal.NewFromInt(200),
		ChargeID:   "ch_half",
	}}
	car := &fakeCarrier{blockErr: errors.New("poltrona ocupada")}
	ref := &fakeRefunder{out: service.RefundOutcome{
		Processed: true,
		Status:    model.RefundCompleted,
		Amount:    decimal.NewFromInt(200),
	}}
	h := newHandler(res, car, ref)

	rec := issueRequest(t, h, `{"orderId":"or_half","status":"paid"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NEGADO", resp["status"])
	assert.Equal(t, true, resp["estornoProcessado"])
	assert.Equal(t, string(model.RefundCompleted), resp["estornoStatus"])
	assert.Equal(t, "200.00", resp["valorEstornado"])
	assert.Contains(t, resp["error"], "poltrona")
}
