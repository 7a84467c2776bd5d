package goClient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request is the replayable descriptor of an outgoing API call. Body is
// marshaled fresh on every attempt, so a replay after refresh never reuses a
// consumed reader.
//
// Request instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is JSON-marshaled when non-nil.
	Body any
}

// Response defines a public type used by goClient APIs.
//
// Response instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

const requestIDHeader = "X-Request-ID"

// send performs one attempt of req: resolve the URL, stamp the bearer
// credential if an access token is present at this moment, and execute with
// the configured send timeout. The token read happens at send time so a
// replay after refresh always carries the latest committed token.
func (c *Client) send(ctx context.Context, req *Request, requestID string) (*Response, error) {
	httpReq, err := c.buildHTTPRequest(ctx, req, requestID)
	if err != nil {
		return nil, err
	}

	if token := c.store.AccessToken(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
		c.metricInc(MetricRequestAuthenticated)
	} else {
		// Absence of a token is not a failure; the request goes out
		// unauthenticated and any rejection is handled downstream.
		c.metricInc(MetricRequestAnonymous)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metricInc(MetricTransportFailure)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metricInc(MetricTransportFailure)
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *Client) buildHTTPRequest(ctx context.Context, req *Request, requestID string) (*http.Request, error) {
	endpoint := c.resolve(req.Path)
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if requestID != "" {
		httpReq.Header.Set(requestIDHeader, requestID)
	}

	return httpReq, nil
}

func (c *Client) resolve(path string) string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
