package submit_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/submit"
)

type recordedRequest struct {
	key  string
	body form.Record
}

func newServer(t *testing.T, statuses ...int) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body form.Record
		_ = json.NewDecoder(r.Body).Decode(&body)

		mu.Lock()
		idx := len(requests)
		requests = append(requests, recordedRequest{key: r.Header.Get(submit.IdempotencyHeader), body: body})
		mu.Unlock()

		status := http.StatusOK
		if idx < len(statuses) {
			status = statuses[idx]
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"id":"srv-1","status":"stored"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func fastRetry(next submit.Submitter, attempts int) *submit.Retrying {
	return submit.NewRetrying(next,
		submit.WithMaxAttempts(attempts),
		submit.WithIntervals(time.Millisecond, 2*time.Millisecond),
		submit.WithAttemptTimeout(time.Second),
	)
}

func TestHTTPSubmitter_Success(t *testing.T) {
	srv, requests := newServer(t)
	s, err := submit.NewHTTP(srv.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	receipt, err := s.Submit(context.Background(), form.Record{"email": "a@b.co"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.ID != "srv-1" || receipt.Status != "stored" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	got := requests()
	if len(got) != 1 || got[0].key == "" {
		t.Fatalf("expected one keyed request, got %+v", got)
	}
	if diff := cmp.Diff(form.Record{"email": "a@b.co"}, got[0].body); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPSubmitter_ClassifiesStatus(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadRequest, http.StatusServiceUnavailable)
	s, _ := submit.NewHTTP(srv.URL)

	_, err := s.Submit(context.Background(), form.Record{})
	if !errors.Is(err, submit.ErrRejected) || submit.IsRetryable(err) {
		t.Fatalf("4xx should be a permanent rejection, got %v", err)
	}

	_, err = s.Submit(context.Background(), form.Record{})
	if !errors.Is(err, submit.ErrUnavailable) || !submit.IsRetryable(err) {
		t.Fatalf("5xx should be retryable, got %v", err)
	}
}

func TestNewHTTP_RequiresEndpoint(t *testing.T) {
	if _, err := submit.NewHTTP("  "); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}

func TestRetrying_RetriesTransientFailures(t *testing.T) {
	srv, requests := newServer(t, http.StatusBadGateway, http.StatusServiceUnavailable)
	s, _ := submit.NewHTTP(srv.URL)

	receipt, err := fastRetry(s, 3).Submit(context.Background(), form.Record{"a": "1"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.ID != "srv-1" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	got := requests()
	if len(got) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(got))
	}
	for _, r := range got[1:] {
		if r.key != got[0].key {
			t.Fatalf("idempotency key changed between attempts: %q vs %q", got[0].key, r.key)
		}
	}
}

func TestRetrying_GivesUp(t *testing.T) {
	srv, requests := newServer(t, 500, 500, 500, 500)
	s, _ := submit.NewHTTP(srv.URL)

	_, err := fastRetry(s, 2).Submit(context.Background(), form.Record{})
	var serr *submit.Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *submit.Error, got %T %v", err, err)
	}
	if serr.Attempts != 2 || !serr.Retryable {
		t.Fatalf("unexpected error %+v", serr)
	}
	if len(requests()) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests()))
	}
}

func TestRetrying_PermanentStopsImmediately(t *testing.T) {
	srv, requests := newServer(t, http.StatusUnprocessableEntity)
	s, _ := submit.NewHTTP(srv.URL)

	_, err := fastRetry(s, 5).Submit(context.Background(), form.Record{})
	var serr *submit.Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *submit.Error, got %v", err)
	}
	if serr.Attempts != 1 || serr.Retryable || !errors.Is(err, submit.ErrRejected) {
		t.Fatalf("unexpected error %+v", serr)
	}
	if len(requests()) != 1 {
		t.Fatalf("expected a single request")
	}
}

func TestSimulated_HonoursCancel(t *testing.T) {
	s := submit.NewSimulated(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Submit(ctx, form.Record{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSimulated_Accepts(t *testing.T) {
	s := submit.NewSimulated(time.Millisecond)
	receipt, err := s.Submit(context.Background(), form.Record{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.Status != submit.StatusSimulated || receipt.ID == "" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if submit.NewSimulated(0).Delay != submit.DefaultSimulatedDelay {
		t.Fatalf("zero delay should fall back to default")
	}
}
