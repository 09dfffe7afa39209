package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightsurety/core/audit"
	"flightsurety/core/auth"
	"flightsurety/core/genesis"
	"flightsurety/core/oracle"
	"flightsurety/core/state"
	"flightsurety/core/storage"
	"flightsurety/core/surety"
	"flightsurety/types/ids"
)

var (
	secret    = []byte("test-secret")
	operator  = ids.AddressFromSeed(1)
	airline1  = ids.AddressFromSeed(101)
	passenger = ids.AddressFromSeed(201)
)

const flightPath = "/api/flights/%s/ND1309/1700000000"

type testAPI struct {
	t       *testing.T
	srv     *httptest.Server
	chainID string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := storage.NewMemStorage()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cs, err := state.NewChainState(db)
	require.NoError(t, err)

	cfg := genesis.Default(operator, airline1)
	cfg.AuthorizedCallers = []ids.Address{passenger}
	c, err := surety.Open(cs, cfg,
		surety.WithAuditLogger(audit.NopAuditLogger{}),
		surety.WithIndexSource(oracle.NewSequenceSource(4)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	v := &auth.Verifier{KeyProvider: &auth.SecretKeyProvider{Secret: secret}, ChainID: c.ChainID()}
	srv := httptest.NewServer(NewServer(c, v, "").Handler())
	t.Cleanup(srv.Close)
	return &testAPI{t: t, srv: srv, chainID: c.ChainID()}
}

func (a *testAPI) token(addr ids.Address) string {
	tok, err := auth.IssueToken(secret, addr, a.chainID, 0)
	require.NoError(a.t, err)
	return tok
}

// call sends body as JSON and decodes the reply into out when non-nil.
func (a *testAPI) call(method, path string, as *ids.Address, body interface{}, out interface{}) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+a.token(*as))
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestProbes(t *testing.T) {
	api := newTestAPI(t)

	var live LivenessResponse
	assert.Equal(t, http.StatusOK, api.call(http.MethodGet, "/health/liveness", nil, nil, &live))
	assert.True(t, live.Alive)

	var status StatusResponse
	assert.Equal(t, http.StatusOK, api.call(http.MethodGet, "/status", nil, nil, &status))
	assert.Equal(t, api.chainID, status.ChainID)
	assert.Equal(t, 1, status.Metrics.Airlines)
	assert.Equal(t, "healthy", status.Status)
}

func TestMutationsNeedToken(t *testing.T) {
	api := newTestAPI(t)

	var e ErrorResponse
	code := api.call(http.MethodPost, "/api/airlines/fund", nil, map[string]string{"amount": "10"}, &e)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, e.Error)

	req, err := http.NewRequest(http.MethodPost, api.srv.URL+"/api/airlines/fund", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestInvalidPayload(t *testing.T) {
	api := newTestAPI(t)
	var e ErrorResponse
	code := api.call(http.MethodPost, "/api/flights", &airline1, map[string]interface{}{"flight": ""}, &e)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, e.Error, "register_flight")
}

func TestOperatingSwitch(t *testing.T) {
	api := newTestAPI(t)
	off := map[string]bool{"operational": false}

	assert.Equal(t, http.StatusForbidden, api.call(http.MethodPost, "/api/operational", &airline1, off, nil))
	assert.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/operational", &operator, off, nil))

	var ready ReadinessResponse
	assert.Equal(t, http.StatusServiceUnavailable, api.call(http.MethodGet, "/health/readiness", nil, nil, &ready))
	assert.False(t, ready.Ready)

	assert.Equal(t, http.StatusServiceUnavailable,
		api.call(http.MethodPost, "/api/airlines/fund", &airline1, map[string]string{"amount": "10"}, nil))
}

func TestInsuranceLifecycle(t *testing.T) {
	api := newTestAPI(t)
	flightBody := map[string]interface{}{"airline": airline1.String(), "flight": "ND1309", "timestamp": 1700000000}

	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/airlines/fund", &airline1, map[string]string{"amount": "10"}, nil))
	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/flights", &airline1,
		map[string]interface{}{"flight": "ND1309", "timestamp": 1700000000}, nil))

	buy := map[string]interface{}{"airline": airline1.String(), "flight": "ND1309", "timestamp": 1700000000, "premium": "1"}
	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/insurance", &passenger, buy, nil))
	assert.Equal(t, http.StatusConflict, api.call(http.MethodPost, "/api/insurance", &passenger, buy, nil))

	over := map[string]interface{}{"airline": airline1.String(), "flight": "ND1309", "timestamp": 1700000000, "premium": "1.5"}
	assert.Equal(t, http.StatusBadRequest, api.call(http.MethodPost, "/api/insurance", &passenger, over, nil))
	over["premium"] = "18446744073.9"
	assert.Equal(t, http.StatusBadRequest, api.call(http.MethodPost, "/api/insurance", &passenger, over, nil))

	oracles := []ids.Address{ids.AddressFromSeed(301), ids.AddressFromSeed(302), ids.AddressFromSeed(303)}
	for i := range oracles {
		require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/oracles", &oracles[i], map[string]string{"fee": "1"}, nil))
	}
	var idx struct {
		Indexes []uint8 `json:"indexes"`
	}
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/oracles/indexes", &oracles[0], nil, &idx))
	assert.Equal(t, []uint8{4, 4, 4}, idx.Indexes)

	var fetched struct {
		Result oracle.Request `json:"result"`
	}
	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/flights/status", &passenger, flightBody, &fetched))
	assert.Equal(t, uint8(4), fetched.Result.Index)

	for i := range oracles {
		resp := map[string]interface{}{
			"airline": airline1.String(), "flight": "ND1309", "timestamp": 1700000000,
			"index": 4, "statusCode": 20,
		}
		require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/oracles/responses", &oracles[i], resp, nil))
	}

	var got map[string]interface{}
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, fmt.Sprintf(flightPath, airline1), nil, nil, &got))
	assert.Equal(t, "LATE_AIRLINE", got["status"])
	assert.Regexp(t, "^[0-9a-f]{64}$", got["id"])

	var credit map[string]interface{}
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/credits/"+passenger.String(), nil, nil, &credit))
	assert.Equal(t, "1.5 ETH", credit["display"])

	assert.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/credits/withdraw", &passenger, nil, nil))
	assert.Equal(t, http.StatusConflict, api.call(http.MethodPost, "/api/credits/withdraw", &passenger, nil, nil))

	var evts []map[string]interface{}
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/events?after=0&limit=1000", nil, nil, &evts))
	assert.NotEmpty(t, evts)
}

func TestUnknownFlight(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusNotFound, api.call(http.MethodGet, fmt.Sprintf(flightPath, airline1), nil, nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.call(http.MethodGet, "/api/flights/nope/ND1309/1", nil, nil, nil))
}

func TestRelayCompatibleEndpoints(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/airlines/fund", &airline1, map[string]string{"amount": "10"}, nil))
	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/flights", &airline1,
		map[string]interface{}{"flight": "ND1309", "timestamp": 1700000000}, nil))

	var info map[string]string
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api", nil, nil, &info))
	assert.Equal(t, api.chainID, info["chainId"])

	var idx struct {
		Flights map[string][]interface{} `json:"flights"`
	}
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/flights", nil, nil, &idx))
	require.Contains(t, idx.Flights, "ND1309")
	assert.Equal(t, airline1.String(), idx.Flights["ND1309"][0])
	assert.EqualValues(t, 1700000000, idx.Flights["ND1309"][1])

	var evts []map[string]interface{}
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/events?limit=2", nil, nil, &evts))
	assert.Len(t, evts, 2)
	assert.Equal(t, http.StatusBadRequest, api.call(http.MethodGet, "/events?limit=0", nil, nil, nil))
}
