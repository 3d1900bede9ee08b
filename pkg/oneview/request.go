/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package oneview

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
)

// Request is a single API call built with the fluent helpers of Client.
type Request struct {
	client *Client

	ctx     context.Context
	method  string
	path    string
	query   map[string]string
	headers map[string]string
	body    []byte
	noAuth  bool
	err     error
}

func (c *Client) newRequest(ctx context.Context, method, path string) *Request {
	return &Request{
		client:  c,
		ctx:     ctx,
		method:  method,
		path:    path,
		query:   make(map[string]string),
		headers: make(map[string]string),
	}
}

func (c *Client) GET(ctx context.Context, path string) *Request {
	return c.newRequest(ctx, http.MethodGet, path)
}

func (c *Client) POST(ctx context.Context, path string) *Request {
	return c.newRequest(ctx, http.MethodPost, path)
}

func (c *Client) PUT(ctx context.Context, path string) *Request {
	return c.newRequest(ctx, http.MethodPut, path)
}

func (c *Client) PATCH(ctx context.Context, path string) *Request {
	return c.newRequest(ctx, http.MethodPatch, path)
}

func (c *Client) DELETE(ctx context.Context, path string) *Request {
	return c.newRequest(ctx, http.MethodDelete, path)
}

// WithQueryParams adds query parameters, overriding the ones already set.
func (r *Request) WithQueryParams(params map[string]string) *Request {
	for k, v := range params {
		r.query[k] = v
	}
	return r
}

// WithJSONBody encodes body as the request payload.
func (r *Request) WithJSONBody(body interface{}) *Request {
	if body == nil {
		return r
	}
	data, err := json.Marshal(body)
	if err != nil {
		r.err = fmt.Errorf("encoding request body failed, error: %w", err)
		return r
	}
	r.body = data
	return r
}

// WithIfMatch sets the If-Match header to the given eTag.
// When eTag validation is disabled the header is always '*'.
func (r *Request) WithIfMatch(eTag string) *Request {
	switch {
	case !r.client.cfg.ValidateETag:
		r.headers[ifMatchHeader] = "*"
	case eTag != "":
		r.headers[ifMatchHeader] = eTag
	}
	return r
}

func (r *Request) withoutAuth() *Request {
	r.noAuth = true
	return r
}

// Execute sends the request and decodes the response into target.
// Asynchronous responses are followed until the task finishes, then
// the associated resource is decoded into target.
func (r *Request) Execute(target interface{}) error {
	status, header, body, err := r.do()
	if err != nil {
		return err
	}

	if status == http.StatusAccepted {
		task, err := r.client.followTask(r.ctx, header, body)
		if err != nil {
			return err
		}
		if target == nil || r.method == http.MethodDelete || task == nil || task.AssociatedResource.ResourceURI == "" {
			return nil
		}
		return r.client.GET(r.ctx, task.AssociatedResource.ResourceURI).Execute(target)
	}

	if target == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decoding %s %s response failed, error: %w", r.method, r.path, err)
	}
	return nil
}

func (r *Request) do() (int, http.Header, []byte, error) {
	if r.err != nil {
		return 0, nil, nil, r.err
	}

	reqURL, err := r.buildURL()
	if err != nil {
		return 0, nil, nil, err
	}

	if err := r.client.limiter.Wait(r.ctx); err != nil {
		return 0, nil, nil, fmt.Errorf("%s %s rate limiter wait failed, error: %w", r.method, r.path, err)
	}

	var bodyReader io.Reader
	if r.body != nil {
		bodyReader = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(r.ctx, r.method, reqURL.String(), bodyReader)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("creating %s %s request failed, error: %w", r.method, r.path, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiVersionHeader, strconv.Itoa(r.client.cfg.APIVersion))
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !r.noAuth {
		if session := r.client.SessionID(); session != "" {
			req.Header.Set(authHeader, session)
		}
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := r.client.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%s %s failed, error: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("reading %s %s response failed, error: %w", r.method, r.path, err)
	}

	r.client.log.V(1).Info("request",
		"method", r.method, "path", reqURL.Path, "status", resp.StatusCode, "duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, resp.Header, body, r.newHTTPError(resp.StatusCode, body)
	}

	return resp.StatusCode, resp.Header, body, nil
}

func (r *Request) buildURL() (*url.URL, error) {
	ref, err := url.Parse(r.path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path '%s', error: %w", r.path, err)
	}

	u := r.client.baseURL.ResolveReference(ref)
	if len(r.query) > 0 {
		q := u.Query()
		for k, v := range r.query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func (r *Request) newHTTPError(status int, body []byte) error {
	httpErr := &HTTPError{
		StatusCode: status,
		Method:     r.method,
		Path:       r.path,
	}
	if err := json.Unmarshal(body, httpErr); err != nil {
		httpErr.Body = string(bytes.TrimSpace(body))
	}
	return httpErr
}
