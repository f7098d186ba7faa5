package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/pkg/form"
)

// IdempotencyHeader carries the per-submission key so retried POSTs are
// deduplicated by the receiver.
const IdempotencyHeader = "Idempotency-Key"

// HTTPOption configures an HTTPSubmitter.
type HTTPOption func(*HTTPSubmitter)

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSubmitter) {
		if client != nil {
			s.client = client
		}
	}
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) HTTPOption {
	return func(s *HTTPSubmitter) {
		s.headers.Set(key, value)
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(log *zap.Logger) HTTPOption {
	return func(s *HTTPSubmitter) {
		if log != nil {
			s.log = log
		}
	}
}

// HTTPSubmitter POSTs the record as JSON.
type HTTPSubmitter struct {
	endpoint string
	client   *http.Client
	headers  http.Header
	log      *zap.Logger
	now      func() time.Time
}

// NewHTTP returns a submitter posting to endpoint.
func NewHTTP(endpoint string, opts ...HTTPOption) (*HTTPSubmitter, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("submit: endpoint required")
	}
	s := &HTTPSubmitter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		headers:  http.Header{},
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

type receiptBody struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Submit sends one request. The idempotency key is taken from ctx when a
// retrying wrapper set one, so every attempt shares it.
func (s *HTTPSubmitter) Submit(ctx context.Context, record form.Record) (Receipt, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: encode record: %v", ErrRejected, err)
	}

	key := IdempotencyKey(ctx)
	if key == "" {
		key = uuid.NewString()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: build request: %v", ErrRejected, err)
	}
	for k, values := range s.headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(IdempotencyHeader, key)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Receipt{}, ctx.Err()
		}
		return Receipt{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		s.log.Warn("submission endpoint unavailable", zap.Int("status", resp.StatusCode))
		return Receipt{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return Receipt{}, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	receipt := Receipt{ID: key, SubmittedAt: s.now().UTC(), Status: StatusAccepted}
	var decoded receiptBody
	if len(bytes.TrimSpace(body)) > 0 && json.Unmarshal(body, &decoded) == nil {
		if decoded.ID != "" {
			receipt.ID = decoded.ID
		}
		if decoded.Status != "" {
			receipt.Status = decoded.Status
		}
	}
	return receipt, nil
}

type idempotencyKey struct{}

// WithIdempotencyKey returns a context carrying key.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

// IdempotencyKey returns the key stored on ctx, if any.
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKey{}).(string)
	return key
}
