package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"flightsurety/api/server"
	"flightsurety/core/airline"
	"flightsurety/core/events"
	"flightsurety/core/flight"
	"flightsurety/core/treasury"
	"flightsurety/types/ids"
	"flightsurety/types/units"
)

const DefaultURL = "http://localhost:8080"

// Client talks to a flightsurety node.
type Client struct {
	BaseURL string
	// Token is sent as a bearer token on every request when set.
	Token string
	HTTP  *http.Client
}

func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// APIError is a non-2xx reply.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode/100 != 2 {
		var e server.ErrorResponse
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = string(raw)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (c *Client) Status(ctx context.Context) (server.StatusResponse, error) {
	var s server.StatusResponse
	err := c.do(ctx, http.MethodGet, "/status", nil, &s)
	return s, err
}

func (c *Client) Health(ctx context.Context) (server.NodeHealthResponse, error) {
	var h server.NodeHealthResponse
	err := c.do(ctx, http.MethodGet, "/nodehealth", nil, &h)
	return h, err
}

func (c *Client) Airlines(ctx context.Context) ([]airline.Airline, error) {
	var out []airline.Airline
	err := c.do(ctx, http.MethodGet, "/api/airlines", nil, &out)
	return out, err
}

func (c *Client) Flights(ctx context.Context) ([]flight.Flight, error) {
	var out []flight.Flight
	err := c.do(ctx, http.MethodGet, "/api/flights", nil, &out)
	return out, err
}

func (c *Client) Credit(ctx context.Context, passenger ids.Address) (units.Amount, error) {
	var out struct {
		Credit units.Amount `json:"credit"`
	}
	err := c.do(ctx, http.MethodGet, "/api/credits/"+passenger.String(), nil, &out)
	return out.Credit, err
}

func (c *Client) Treasury(ctx context.Context) (treasury.Treasury, error) {
	var t treasury.Treasury
	err := c.do(ctx, http.MethodGet, "/api/treasury", nil, &t)
	return t, err
}

// Events pages through committed events with Seq > after.
func (c *Client) Events(ctx context.Context, after uint64, limit int) ([]events.Event, error) {
	q := url.Values{}
	q.Set("after", strconv.FormatUint(after, 10))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []events.Event
	err := c.do(ctx, http.MethodGet, "/api/events?"+q.Encode(), nil, &out)
	return out, err
}

// Withdraw pays out the caller's credit. Needs a token.
func (c *Client) Withdraw(ctx context.Context) (treasury.Payout, error) {
	var out struct {
		Result treasury.Payout `json:"result"`
	}
	err := c.do(ctx, http.MethodPost, "/api/credits/withdraw", nil, &out)
	return out.Result, err
}
