package attackforge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/tphakala/go-attackforge/internal/api"
)

// requester is shared by the client and its services.
type requester struct {
	transport *api.Transport
	logger    *slog.Logger
}

// do sends req and returns the body of a successful response.
func (r *requester) do(ctx context.Context, req *api.Request, opts []RequestOption) ([]byte, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)
	req.Headers = reqCfg.headers

	resp, err := r.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	return resp.Body, nil
}

// fetch GETs rawURL and parses the JSON body.
func (r *requester) fetch(ctx context.Context, rawURL, resource string, opts []RequestOption) (gjson.Result, error) {
	body, err := r.do(ctx, &api.Request{Method: http.MethodGet, URL: rawURL}, opts)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &MalformedResponseError{Resource: resource, Err: errInvalidJSON}
	}
	return gjson.ParseBytes(body), nil
}

var errInvalidJSON = errors.New("body is not valid JSON")

// scalarField reads path from res as a string. Numbers are accepted and
// rendered in their JSON form; anything else is a MissingFieldError.
func scalarField(res gjson.Result, path string) (string, error) {
	v := res.Get(path)
	switch v.Type {
	case gjson.String:
		return v.String(), nil
	case gjson.Number:
		return v.Raw, nil
	default:
		return "", &MissingFieldError{Path: path}
	}
}

// intField reads path from res as an integer.
func intField(res gjson.Result, path string) (int64, error) {
	v := res.Get(path)
	if v.Type != gjson.Number {
		return 0, &MissingFieldError{Path: path}
	}
	return v.Int(), nil
}

// compactJSON re-serializes a JSON body as compact text.
func compactJSON(body []byte, resource string) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return "", &MalformedResponseError{Resource: resource, Err: err}
	}
	return buf.String(), nil
}

// Get fetches rawURL, relative to the base URL, and returns the JSON body.
// rawURL is usually produced by BuildURL.
func (c *Client) Get(ctx context.Context, rawURL string, opts ...RequestOption) (json.RawMessage, error) {
	return c.req.do(ctx, &api.Request{Method: http.MethodGet, URL: rawURL}, opts)
}

// Post sends payload as JSON to rawURL and returns the JSON body.
func (c *Client) Post(ctx context.Context, rawURL string, payload any, opts ...RequestOption) (json.RawMessage, error) {
	return c.req.do(ctx, &api.Request{Method: http.MethodPost, URL: rawURL, Body: payload}, opts)
}

// Put sends payload as JSON to rawURL and returns the JSON body.
func (c *Client) Put(ctx context.Context, rawURL string, payload any, opts ...RequestOption) (json.RawMessage, error) {
	return c.req.do(ctx, &api.Request{Method: http.MethodPut, URL: rawURL, Body: payload}, opts)
}

// SendEmail asks AttackForge to send an email. The acknowledgement is
// returned as JSON text, unmodified apart from whitespace.
func (c *Client) SendEmail(ctx context.Context, payload any, opts ...RequestOption) (string, error) {
	if payload == nil {
		return "", &ValidationError{APIError: APIError{Message: "email payload cannot be nil"}}
	}
	body, err := c.Post(ctx, "email", payload, opts...)
	if err != nil {
		return "", err
	}
	return compactJSON(body, "email")
}
