// Package lambdaproxy serves API Gateway proxy events through an http.Handler
// so the same router runs as a function and as a long-lived server.
package lambdaproxy

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/abduss/filevault/internal/auth"
	"github.com/aws/aws-lambda-go/events"
)

// Adapter converts proxy events to requests for handler.
type Adapter struct {
	handler http.Handler
}

// New wraps handler.
func New(handler http.Handler) *Adapter {
	return &Adapter{handler: handler}
}

// Proxy serves one event. The authorizer's verified sub claim, when present,
// is attached to the request context for auth.UpstreamClaims.
func (a *Adapter) Proxy(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := NewRequest(ctx, event)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	w := newResponseWriter()
	a.handler.ServeHTTP(w, req)
	return w.response(), nil
}

// NewRequest builds the http.Request equivalent of event.
func NewRequest(ctx context.Context, event events.APIGatewayProxyRequest) (*http.Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		body = decoded
	}

	if sub := SubjectFromEvent(event); sub != "" {
		ctx = auth.WithUpstreamSubject(ctx, sub)
	}

	path := event.Path
	if path == "" {
		path = "/"
	}
	target := &url.URL{Path: path, RawQuery: queryString(event)}

	method := event.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.ContentLength = int64(len(body))
	req.RequestURI = target.RequestURI()

	for key, values := range event.MultiValueHeaders {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	for key, v := range event.Headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, v)
		}
	}
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}
	if ip := event.RequestContext.Identity.SourceIP; ip != "" {
		req.RemoteAddr = net.JoinHostPort(ip, "0")
	}
	return req, nil
}

// SubjectFromEvent returns requestContext.authorizer.claims.sub, or "".
func SubjectFromEvent(event events.APIGatewayProxyRequest) string {
	claims, ok := event.RequestContext.Authorizer["claims"].(map[string]any)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}

func queryString(event events.APIGatewayProxyRequest) string {
	values := url.Values{}
	for key, vs := range event.MultiValueQueryStringParameters {
		for _, v := range vs {
			values.Add(key, v)
		}
	}
	for key, v := range event.QueryStringParameters {
		if _, ok := values[key]; !ok {
			values.Set(key, v)
		}
	}
	return values.Encode()
}

type responseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: http.Header{}}
}

func (w *responseWriter) Header() http.Header { return w.header }

func (w *responseWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(p)
}

func (w *responseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *responseWriter) response() events.APIGatewayProxyResponse {
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}

	resp := events.APIGatewayProxyResponse{
		StatusCode:        status,
		Headers:           map[string]string{},
		MultiValueHeaders: map[string][]string{},
	}
	for key, values := range w.header {
		if len(values) == 0 {
			continue
		}
		resp.Headers[key] = values[len(values)-1]
		resp.MultiValueHeaders[key] = values
	}

	data := w.body.Bytes()
	if isText(w.header.Get("Content-Type")) && utf8.Valid(data) {
		resp.Body = string(data)
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(data)
		resp.IsBase64Encoded = true
	}
	return resp
}

func isText(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/") ||
		strings.Contains(ct, "json") ||
		strings.Contains(ct, "xml") ||
		strings.Contains(ct, "javascript")
}
