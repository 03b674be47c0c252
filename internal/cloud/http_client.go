package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/moviestitch/moviestitch-client/internal/logging"
	"github.com/moviestitch/moviestitch-client/internal/metrics"
)

const (
	// RequestIDHeader is set on every call to the remote API.
	RequestIDHeader = "X-Request-Id"

	maxResponseBytes = 16 << 20
	maxErrorBody     = 4096
	uploadTimeout    = 10 * time.Minute
)

// TokenSource supplies the bearer token for authenticated endpoints. An empty
// token with a nil error means nobody is logged in.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// HTTPClient talks to the moviestitch REST API.
type HTTPClient struct {
	baseURL      string
	tokens       TokenSource
	httpClient   *http.Client
	uploadClient *http.Client
	logger       *slog.Logger
	tracer       trace.Tracer
}

func NewHTTPClient(baseURL string, tokens TokenSource, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		uploadClient: &http.Client{
			Timeout: uploadTimeout,
		},
		logger: logging.WithComponent(logger, "cloud"),
		tracer: otel.Tracer("github.com/moviestitch/moviestitch-client/internal/cloud"),
	}
}

func (c *HTTPClient) Catalog() CatalogService {
	return c
}

func (c *HTTPClient) Auth() AuthService {
	return c
}

func (c *HTTPClient) Submissions() SubmissionService {
	return c
}

func (c *HTTPClient) Stitch() StitchService {
	return c
}

// call describes one JSON request to the remote API.
type call struct {
	op     string
	method string
	path   string
	auth   bool
	body   any
	// statusMessage picks the message of a non-2xx response whose body has
	// no "message" field. Defaults to defaultStatusMessage.
	statusMessage func(status int) string
}

// do sends a call and returns the raw 2xx body.
func (c *HTTPClient) do(ctx context.Context, cl call) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "cloud."+cl.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", cl.method),
			attribute.String("http.route", cl.path),
		),
	)
	defer span.End()

	start := time.Now()
	body, err := c.roundTrip(ctx, cl)
	metrics.ObserveGateway(cl.op, outcome(err), time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return body, err
}

func (c *HTTPClient) roundTrip(ctx context.Context, cl call) ([]byte, error) {
	var reader io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", cl.op, err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.baseURL + cl.path
	req, err := http.NewRequestWithContext(ctx, cl.method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if cl.auth {
		token, err := c.token(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger := logging.WithTrace(ctx, logging.WithRequestID(c.logger, requestID))
	logger.Debug("cloud request", "op", cl.op, "method", cl.method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("cloud request failed", "op", cl.op, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrNetwork, cl.op, err)
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", ErrNetwork, cl.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := newStatusError(resp.StatusCode, respBody, cl.statusMessage)
		logger.Warn("cloud request rejected",
			"op", cl.op,
			"status", resp.StatusCode,
			"message", statusErr.Message,
		)
		return nil, statusErr
	}

	logger.Debug("cloud request succeeded", "op", cl.op, "status", resp.StatusCode, "body_bytes", len(respBody))
	return respBody, nil
}

func (c *HTTPClient) token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", ErrNotAuthenticated
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("read auth token: %w", err)
	}
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

func newStatusError(status int, body []byte, statusMessage func(int) string) *StatusError {
	if statusMessage == nil {
		statusMessage = defaultStatusMessage
	}

	trimmed := body
	if len(trimmed) > maxErrorBody {
		trimmed = trimmed[:maxErrorBody]
	}

	msg := messageField(body)
	if msg == "" {
		msg = statusMessage(status)
	}
	return &StatusError{StatusCode: status, Message: msg, Body: string(trimmed)}
}

// messageField returns the "message" field of a JSON object body, if any.
func messageField(body []byte) string {
	var envelope struct {
		Message FlexString `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return strings.TrimSpace(string(envelope.Message))
}

// decodeStrict decodes a 2xx body whose shape the caller depends on.
func decodeStrict(op string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrMalformedResponse, op, err)
	}
	return nil
}

// decodeLenient decodes a body whose fields are all optional; bodies that
// are not JSON leave out untouched.
func decodeLenient(body []byte, out any) {
	_ = json.Unmarshal(body, out)
}

func outcome(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &statusErr):
		return "http_error"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrNotAuthenticated):
		return "unauthenticated"
	default:
		return "error"
	}
}
