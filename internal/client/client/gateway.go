package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/booknest/internal/common"
	"github.com/dmitrijs2005/booknest/internal/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// SessionSource is the gateway's read accessor into session state.
type SessionSource interface {
	// Credential returns the committed credential, or "" when anonymous.
	Credential() string
	// Expire tears the session down if it still holds credential and
	// reports whether it did.
	Expire(ctx context.Context, credential string) bool
}

// LoginRequired is emitted once per torn-down session.
type LoginRequired struct {
	Reason error
	At     time.Time
}

type GatewayOption func(*Gateway)

func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) { g.http = c }
}

func WithLogger(l logging.Logger) GatewayOption {
	return func(g *Gateway) { g.log = l }
}

type Gateway struct {
	baseURL *url.URL
	http    *http.Client
	log     logging.Logger

	source atomic.Value // sourceBox

	mu        sync.Mutex
	listeners []func(LoginRequired)
}

type sourceBox struct{ s SessionSource }

// NewGateway builds a gateway for the backend rooted at baseURL,
// e.g. "http://localhost:8081/api".
func NewGateway(baseURL string, opts ...GatewayOption) (*Gateway, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	g := &Gateway{baseURL: u, http: &http.Client{}, log: logging.Nop()}
	for _, o := range opts {
		o(g)
	}
	g.log = g.log.With("component", "gateway")
	return g, nil
}

// Bind attaches the session source. Until it is called every request is
// sent anonymously.
func (g *Gateway) Bind(src SessionSource) {
	g.source.Store(sourceBox{s: src})
}

func (g *Gateway) sessionSource() SessionSource {
	box, _ := g.source.Load().(sourceBox)
	return box.s
}

// Subscribe registers fn for LoginRequired events. fn runs synchronously on
// the goroutine whose request detected the expiry.
func (g *Gateway) Subscribe(fn func(LoginRequired)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// NotifyLoginRequired delivers ev to every subscriber. The session
// controller calls it when it detects an expiry on its own requests.
func (g *Gateway) NotifyLoginRequired(ctx context.Context, ev LoginRequired) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	g.mu.Lock()
	listeners := slices.Clone(g.listeners)
	g.mu.Unlock()

	g.log.Info(ctx, "login required", "reason", ev.Reason)
	for _, fn := range listeners {
		fn(ev)
	}
}

type callOptions struct {
	credential  *string
	query       url.Values
	body        io.Reader
	contentType string
}

type CallOption func(*callOptions)

// WithCredential sends token instead of the session credential. A 401
// answer to such a call never expires the session.
func WithCredential(token string) CallOption {
	return func(o *callOptions) { o.credential = &token }
}

// WithoutCredential sends the call with no Authorization header.
func WithoutCredential() CallOption {
	return WithCredential("")
}

func WithQuery(q url.Values) CallOption {
	return func(o *callOptions) { o.query = q }
}

// WithRawBody sends r as-is with the given content type; the body argument
// of Do is then ignored.
func WithRawBody(r io.Reader, contentType string) CallOption {
	return func(o *callOptions) {
		o.body = r
		o.contentType = contentType
	}
}

// Do sends method path with body JSON-encoded (unless nil) and decodes a
// 2xx JSON answer into out (unless nil).
func (g *Gateway) Do(ctx context.Context, method, path string, body, out any, opts ...CallOption) error {
	var co callOptions
	for _, o := range opts {
		o(&co)
	}

	req, err := g.newRequest(ctx, method, path, body, &co)
	if err != nil {
		return err
	}

	credential, sessionBound := g.resolveCredential(&co)
	if credential != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+credential)
	}

	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := g.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		g.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	g.log.Debug(ctx, "request done",
		"method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := readStatusError(resp)
		if resp.StatusCode == http.StatusUnauthorized && sessionBound {
			return g.expire(ctx, credential, statusErr)
		}
		return statusErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (g *Gateway) newRequest(ctx context.Context, method, path string, body any, co *callOptions) (*http.Request, error) {
	u := *g.baseURL
	u.Path = g.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if len(co.query) > 0 {
		u.RawQuery = co.query.Encode()
	}

	reader := co.body
	contentType := co.contentType
	if reader == nil && body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// resolveCredential picks the credential to attach and whether it came from
// the session.
func (g *Gateway) resolveCredential(co *callOptions) (string, bool) {
	if co.credential != nil {
		return *co.credential, false
	}
	src := g.sessionSource()
	if src == nil {
		return "", false
	}
	cred := src.Credential()
	return cred, cred != ""
}

func (g *Gateway) expire(ctx context.Context, credential string, statusErr *StatusError) error {
	src := g.sessionSource()
	// The caller may have given up on the request; teardown still has to finish.
	if src.Expire(context.WithoutCancel(ctx), credential) {
		g.NotifyLoginRequired(ctx, LoginRequired{Reason: statusErr})
	}
	return fmt.Errorf("%w: %w", ErrAuthenticationExpired, statusErr)
}

// readStatusError decodes the backend's error body, which is either
// {"message": "..."} or {"field": ["msg", ...], ...}.
func readStatusError(resp *http.Response) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return se
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		se.Message = strings.TrimSpace(string(raw))
		return se
	}

	if m, ok := obj["message"]; ok {
		_ = json.Unmarshal(m, &se.Message)
		return se
	}

	for name, v := range obj {
		var msgs []string
		if err := json.Unmarshal(v, &msgs); err != nil {
			continue
		}
		if se.Fields == nil {
			se.Fields = make(map[string][]string)
		}
		se.Fields[name] = msgs
	}
	if len(se.Fields) > 0 {
		se.Message = "validation failed"
	}
	return se
}
