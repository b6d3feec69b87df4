package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

type requestOptions struct {
	Method  string
	Body    any
	Headers http.Header
	Query   url.Values
}

func (c *Client) headers(ctx context.Context, includeAuth bool) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if includeAuth {
		if token := c.tokens.Token(ctx); token != "" {
			h.Set("Authorization", "Bearer "+token)
		}
	}
	return h
}

// request performs exactly one call: no retries, no implicit timeout.
func (c *Client) request(ctx context.Context, endpoint string, opts requestOptions, requiresAuth bool) (*Envelope, error) {
	const op = "backend.Client.request"
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	log := c.log.With("op", op, "method", method, "endpoint", endpoint)

	target := c.baseURL + endpoint
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}
	var body io.Reader
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header = c.headers(ctx, requiresAuth)
	for key, values := range opts.Headers {
		req.Header[http.CanonicalHeaderKey(key)] = values
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Debug("request cancelled", "errMsg", ctxErr.Error())
			return nil, ctxErr
		}
		log.Error("Error reaching backend", "errMsg", err.Error())
		return nil, &ConnectionError{Endpoint: endpoint, Cause: err}
	}
	defer resp.Body.Close()

	raw, readErr := readBody(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := newRequestError(endpoint, method, resp.StatusCode, raw)
		log.Error("Error", "status", resp.StatusCode, "errMsg", reqErr.Message)
		return nil, reqErr
	}
	if readErr != nil {
		log.Error("Error reading response body", "status", resp.StatusCode, "errMsg", readErr.Error())
		return nil, readErr
	}
	env, err := normalize(raw)
	if err != nil {
		log.Error("Error decoding response body", "errMsg", err.Error())
		return nil, err
	}
	log.Debug("request done", "status", resp.StatusCode, "success", env.Success)
	return env, nil
}

// readBody returns nil for 204 and for non-JSON content; otherwise the raw JSON.
func readBody(resp *http.Response) (json.RawMessage, error) {
	if resp.StatusCode == http.StatusNoContent || !isJSON(resp.Header.Get("Content-Type")) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	if !json.Valid(b) {
		return nil, errors.New("response body is not valid JSON")
	}
	return b, nil
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func newRequestError(endpoint, method string, status int, raw json.RawMessage) *RequestError {
	msg := MsgGeneric
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var env Envelope
		if err := json.Unmarshal(raw, &env); err == nil && env.Text() != "" {
			msg = env.Text()
		}
	}
	return &RequestError{Endpoint: endpoint, Method: method, Status: status, Message: msg}
}

func (c *Client) encodeQuery(params any) (url.Values, error) {
	values := url.Values{}
	if err := c.query.Encode(params, values); err != nil {
		return nil, err
	}
	return values, nil
}

func segment(s string) string {
	return "/" + url.PathEscape(s)
}
