package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightsurety/api/server"
	"flightsurety/types/ids"
	"flightsurety/types/units"
)

func TestCredit(t *testing.T) {
	passenger := ids.AddressFromSeed(201)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/credits/"+passenger.String(), r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"credit": 1_500_000_000})
	}))
	defer srv.Close()

	credit, err := New(srv.URL, "").Credit(context.Background(), passenger)
	require.NoError(t, err)
	assert.Equal(t, units.Amount(1_500_000_000), credit)
}

func TestTokenAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(server.ErrorResponse{Error: "no funds to withdraw"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "tok").Withdraw(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "no funds to withdraw", apiErr.Message)
}

func TestEventsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("after"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"seq":8,"type":"FlightStatusInfo"}]`))
	}))
	defer srv.Close()

	evts, err := New(srv.URL, "").Events(context.Background(), 7, 20)
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, uint64(8), evts[0].Seq)
}
