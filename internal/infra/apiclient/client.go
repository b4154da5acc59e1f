// Package apiclient talks to the helpdesk backend. Client is the single
// HTTP wrapper (auth header, forced logout on 401, network retries,
// circuit breaker); the adapters on top of it own the wire formats.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/resilience"
	"github.com/boddenberg/helpdesk-admin-go/internal/session"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("apiclient")

const serviceName = "helpdesk-api"

// LoginPath is where a forced logout navigates to.
const LoginPath = "/login"

// Navigator moves the console to another route.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Out receives the decoded JSON response. Nil discards the body.
	Out any
	// SkipAuthRedirect surfaces a 401 to the caller without logging the
	// session out. Used by the login call.
	SkipAuthRedirect bool
}

// Client is the HTTP wrapper every adapter goes through.
type Client struct {
	httpClient *http.Client
	baseURL    string
	session    *session.Session
	nav        Navigator
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
	metrics    *observability.Metrics
	logger     *zap.Logger

	loggingOut atomic.Bool
}

// NewClient creates a Client. nav may be nil when nothing needs to react
// to a forced logout.
func NewClient(httpClient *http.Client, baseURL string, sess *session.Session, nav Navigator,
	cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *Client {
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    sess,
		nav:        nav,
		cb:         resilience.NewCircuitBreaker(serviceName, countsAsSuccess),
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}

	// A fresh login re-arms the forced-logout guard.
	sess.Subscribe(func(st *session.State) {
		if st != nil && st.Token != "" {
			c.loggingOut.Store(false)
		}
	})
	return c
}

// Do performs req and decodes a 2xx JSON body into req.Out.
func (c *Client) Do(ctx context.Context, req Request) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if req.Out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, req.Out); err != nil {
		return &domain.ErrExternalService{Service: serviceName, Err: fmt.Errorf("decode %s %s: %w", req.Method, req.Path, err)}
	}
	return nil
}

// Download performs a GET and returns the raw body together with the
// filename the backend suggested in Content-Disposition.
func (c *Client) Download(ctx context.Context, path string, query url.Values) ([]byte, string, error) {
	resp, err := c.send(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, "", err
	}
	return resp.body, filenameFrom(resp.header.Get("Content-Disposition")), nil
}

// Ping checks that the backend answers its health route. A 401 never
// logs the session out.
func (c *Client) Ping(ctx context.Context) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: "/health", SkipAuthRedirect: true})
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// networkFailure marks a transport error that may be retried.
type networkFailure struct {
	err error
}

func (n *networkFailure) Error() string { return n.err.Error() }
func (n *networkFailure) Unwrap() error { return n.err }

func isNetworkFailure(err error) bool {
	var nf *networkFailure
	return errors.As(err, &nf)
}

// countsAsSuccess keeps backend answers (4xx/5xx) and caller
// cancellations out of the breaker's failure counts.
func countsAsSuccess(err error) bool {
	var netErr *domain.ErrNetwork
	return !errors.As(err, &netErr)
}

func (c *Client) send(ctx context.Context, req Request) (*response, error) {
	ctx, span := tracer.Start(ctx, "apiclient."+req.Method)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.path", req.Path),
	)

	target, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if req.Body != nil {
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.Method, req.Path, err)
		}
	}

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	requestID := uuid.NewString()

	result, err := c.cb.Execute(func() (any, error) {
		var resp *response
		attempts, innerErr := resilience.Retry(ctx, c.cfg, isNetworkFailure, func(attempt int) error {
			if attempt > 0 {
				c.metrics.IncrNetworkRetry()
				c.logger.Debug("apiclient: retrying after network failure",
					zap.String("path", req.Path),
					zap.Int("attempt", attempt+1),
				)
			}
			r, err := c.attempt(ctx, req.Method, target, payload, requestID)
			if err != nil {
				return err
			}
			resp = r
			return nil
		})
		if innerErr != nil {
			if isNetworkFailure(innerErr) {
				return nil, &domain.ErrNetwork{Attempts: attempts, Err: errors.Unwrap(innerErr)}
			}
			return nil, innerErr
		}
		return resp, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &domain.ErrCircuitOpen{Service: serviceName}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("apiclient: request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, err
	}

	resp := result.(*response)
	span.SetAttributes(attribute.Int("http.status_code", resp.status))

	if resp.status >= 200 && resp.status < 300 {
		return resp, nil
	}

	detail := parseDetail(resp.body)
	if resp.status == http.StatusUnauthorized {
		if !req.SkipAuthRedirect {
			c.forceLogout(ctx)
		}
		err = &domain.ErrUnauthorized{Message: detail}
	} else {
		err = &domain.ErrAPI{Status: resp.status, Detail: detail}
	}
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

// attempt sends one HTTP request. Transport errors come back as
// *networkFailure unless the caller's context ended.
func (c *Client) attempt(ctx context.Context, method, target string, payload []byte, requestID string) (*response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if token := c.session.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.RecordRequest(method, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &networkFailure{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.RecordRequest(method, resp.StatusCode, time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &networkFailure{err: err}
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// forceLogout clears the session and navigates to the login route.
// Concurrent 401s trigger it once until the next login.
func (c *Client) forceLogout(ctx context.Context) {
	if !c.loggingOut.CompareAndSwap(false, true) {
		return
	}
	c.metrics.IncrForcedLogout()
	c.logger.Info("apiclient: session rejected by backend, logging out")

	if err := c.session.Clear(context.WithoutCancel(ctx)); err != nil {
		c.logger.Warn("apiclient: failed to clear session", zap.Error(err))
	}
	if c.nav != nil {
		c.nav.Navigate(LoginPath)
	}
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// parseDetail extracts the backend error message: {"detail": "..."} or
// the msg entries of a validation list.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}

	if len(envelope.Detail) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Detail, &text); err == nil {
			return text
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(envelope.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return envelope.Message
}

func filenameFrom(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
