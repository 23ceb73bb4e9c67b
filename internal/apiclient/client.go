// Package apiclient wraps the outbound calls to the WashLink API. Every call
// attaches the stored bearer credential, normalizes failures to a single
// human-readable error, and reacts to a rejected credential by clearing the
// credential store and notifying the subscriber. It carries no UI concerns.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/washlink/app/internal/api"
	"github.com/washlink/app/internal/credstore"
)

// Fallback messages per operation, used when the server does not supply a
// detail string. Wording matches the production client.
const (
	msgRequestOTPFailed  = "Failed to send OTP"
	msgInvalidOTP        = "Invalid OTP"
	msgLogoutFailed      = "Logout failed"
	msgCurrentUserFailed = "Failed to get user info"
	msgItemsFailed       = "Failed to fetch items"
	msgCreateOrderFailed = "Failed to create order"
	msgMyOrdersFailed    = "Failed to fetch orders"
	msgOrderFailed       = "Failed to fetch order"
)

// APIError is the normalized failure of a single call. Detail is always
// human-readable: the server-supplied detail when present, the per-operation
// fallback otherwise. Status is zero when the request never reached a
// response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string { return e.Detail }

// IsNameRequired reports whether err is the verify-OTP rejection that asks a
// first-time registrant for a full name. The wire contract is only the detail
// text, so this is a substring match by necessity.
func IsNameRequired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Detail, "Full name is required")
}

// Client is the gateway to the remote API. Safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	creds   *credstore.Store
	log     *logrus.Logger

	onUnauthorized func()
}

// New creates a gateway for the API rooted at baseURL. Credentials read from
// and written to creds survive restarts.
func New(baseURL string, creds *credstore.Store, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		creds:   creds,
		log:     log,
	}
}

// OnUnauthorized registers the callback invoked after the server rejects the
// stored credential. By the time it runs the credential store is already
// cleared. Must be set before the client is shared between goroutines.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// RequestOTP asks the server to issue a one-time code for phone. The returned
// code is only populated in environments that skip SMS delivery.
func (c *Client) RequestOTP(ctx context.Context, phone string) (string, error) {
	var resp api.OTPResponse
	err := c.do(ctx, http.MethodPost, "/auth/request-otp", nil,
		api.OTPRequest{PhoneNumber: phone}, &resp, msgRequestOTPFailed)
	if err != nil {
		return "", err
	}
	return resp.OTP, nil
}

// VerifyOTP exchanges phone + code (and, for first-time registrants, a full
// name) for a bearer token. On success the token and identity snapshot are
// persisted before the response is returned, so a restart can restore the
// session offline.
func (c *Client) VerifyOTP(ctx context.Context, phone, code, fullName string) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/verify-otp", nil,
		api.LoginRequest{PhoneNumber: phone, OTPCode: code, FullName: fullName}, &resp, msgInvalidOTP)
	if err != nil {
		return nil, err
	}

	if resp.AccessToken != "" {
		if err := c.creds.Save(credstore.Credentials{AccessToken: resp.AccessToken, User: resp.User}); err != nil {
			c.log.WithError(err).Warn("failed to persist credentials")
		}
	}
	return &resp, nil
}

// Logout informs the server and clears the stored credential pair. The local
// clear happens whether or not the server call succeeds.
func (c *Client) Logout(ctx context.Context) error {
	var resp api.MessageResponse
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, struct{}{}, &resp, msgLogoutFailed)
	if clearErr := c.creds.Clear(); clearErr != nil {
		c.log.WithError(clearErr).Warn("failed to clear credentials on logout")
	}
	return err
}

// CurrentUser fetches the identity the stored credential belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*api.User, error) {
	var user api.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &user, msgCurrentUserFailed); err != nil {
		return nil, err
	}
	return &user, nil
}

// Items fetches the public catalog, optionally filtered by category.
func (c *Client) Items(ctx context.Context, category string) ([]api.Item, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}
	var items []api.Item
	if err := c.do(ctx, http.MethodGet, "/items/public", query, nil, &items, msgItemsFailed); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateOrder submits a composed order.
func (c *Client) CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*api.Order, error) {
	var order api.Order
	if err := c.do(ctx, http.MethodPost, "/orders", nil, req, &order, msgCreateOrderFailed); err != nil {
		return nil, err
	}
	return &order, nil
}

// MyOrders lists the caller's orders, newest first, paged by skip/limit.
func (c *Client) MyOrders(ctx context.Context, skip, limit int) ([]api.Order, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))
	var orders []api.Order
	if err := c.do(ctx, http.MethodGet, "/orders/my-orders", query, nil, &orders, msgMyOrdersFailed); err != nil {
		return nil, err
	}
	return orders, nil
}

// Order fetches a single order by ID.
func (c *Client) Order(ctx context.Context, id string) (*api.Order, error) {
	var order api.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &order, msgOrderFailed); err != nil {
		return nil, err
	}
	return &order, nil
}

// --- Transport ---

type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// do performs one call: marshal body, attach bearer, decode out on success,
// normalize everything else to *APIError with fallback as the last-resort
// detail. A 401 additionally clears the credential store and fires the
// unauthorized callback before returning.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, fallback string) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.log.WithError(err).WithField("path", path).Error("failed to encode request")
			return &APIError{Detail: fallback}
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Error("failed to build request")
		return &APIError{Detail: fallback}
	}
	req.Header.Set("Content-Type", "application/json")
	if creds, ok, _ := c.creds.Load(); ok {
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{"method": method, "path": path}).Warn("request failed")
		return &APIError{Detail: fallback}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(path)
		return &APIError{Status: resp.StatusCode, Detail: c.errorDetail(resp, fallback)}
	}

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Detail: c.errorDetail(resp, fallback)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.log.WithError(err).WithField("path", path).Error("failed to decode response")
			return &APIError{Status: resp.StatusCode, Detail: fallback}
		}
	}
	return nil
}

// errorDetail extracts the server-supplied detail string, falling back to the
// per-operation default.
func (c *Client) errorDetail(resp *http.Response, fallback string) string {
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fallback
}

// handleUnauthorized is the unconditional teardown on a rejected credential:
// erase the persisted pair, then notify the subscriber. Runs even when the
// failing call was not user-initiated.
func (c *Client) handleUnauthorized(path string) {
	c.log.WithField("path", path).Info("credential rejected, clearing session")
	if err := c.creds.Clear(); err != nil {
		c.log.WithError(err).Warn("failed to clear credentials after 401")
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}
