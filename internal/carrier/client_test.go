package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bernardev/good-trip-api/internal/model"
)

var testTrip = model.TripRef{
	ServiceID:     "1234",
	OriginID:      10,
	DestinationID: 20,
	DepartureDate: "2026-09-10",
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, TenantID: "tenant-1", AuthToken: "dG9rZW4="}, srv.Client())
}

func TestBlockSeat_SendsAuthAndParsesResponse(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bloqueioPoltrona", r.URL.Path)
		assert.Equal(t, "Basic dG9rZW4=", r.Header.Get("Authorization"))
		assert.Equal(t, "tenant-1", r.Header.Get("X-Tenant-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"transacao":      "tx-988",
			"numeroOperacao": "77",
			"localizador":    "ABC123",
		})
	})

	blk, err := c.BlockSeat(context.Background(), testTrip, "07")
	require.NoError(t, err)

	assert.Equal(t, "tx-988", blk.TransactionID)
	assert.Equal(t, "77", blk.OperationNumber)
	assert.Equal(t, "ABC123", blk.Locator)
	assert.Equal(t, "07", blk.Seat, "seat label filled from the request when absent")

	assert.Equal(t, "07", gotBody["poltrona"])
	assert.Equal(t, "1234", gotBody["servico"])
	assert.Equal(t, float64(10), gotBody["origemId"])
}

func TestBlockSeat_CarrierErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"mensagem": "poltrona ocupada"})
	})

	_, err := c.BlockSeat(context.Background(), testTrip, "07")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poltrona ocupada")
}

func TestConfirmSale_MapsFareBreakdown(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/confirmaVenda", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tx-988", body["transacao"])
		assert.Equal(t, "Maria Souza", body["nome"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"localizador":   "ABC123",
			"numeroBilhete": "000451",
			"poltrona":      "07",
			"tarifa":        80.5,
			"pedagio":       4.25,
			"taxaEmbarque":  3.1,
			"seguro":        2,
			"outros":        0.15,
		})
	})

	blk := Block{TransactionID: "tx-988", OperationNumber: "77", Locator: "ABC123", Seat: "07"}
	p := model.Passenger{Name: "Maria Souza", DocumentNumber: "123", DocumentType: "RG", Phone: "+55119999"}
	tkt, err := c.ConfirmSale(context.Background(), blk, p)
	require.NoError(t, err)

	assert.Equal(t, "ABC123", tkt.Locator)
	assert.Equal(t, "000451", tkt.TicketNumber)
	assert.Equal(t, "07", tkt.Seat)
	assert.Equal(t, "Maria Souza", tkt.Passenger.Name)
	assert.Equal(t, "80.50", tkt.Fare.Fare.StringFixed(2))
	assert.Equal(t, "4.25", tkt.Fare.Toll.StringFixed(2))
	assert.Equal(t, "3.10", tkt.Fare.BoardingTax.StringFixed(2))
	assert.Equal(t, "2.00", tkt.Fare.Insurance.StringFixed(2))
	assert.Equal(t, "0.15", tkt.Fare.Other.StringFixed(2))
	assert.Equal(t, "90.00", tkt.Fare.Total().StringFixed(2))
}

func TestLookupCategories_ReturnsRegulatoryID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categorias", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"orgaoRegulador": "ANTT-123"})
	})

	id, err := c.LookupCategories(context.Background(), testTrip)
	require.NoError(t, err)
	assert.Equal(t, "ANTT-123", id)
}

func TestLookupCategories_StatusErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.LookupCategories(context.Background(), testTrip)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
