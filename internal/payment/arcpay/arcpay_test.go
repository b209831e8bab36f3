package arcpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{APIURL: server.URL + "/", APIKey: " sk_test "}, server.Client())
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return client
}

func writeCapture(w http.ResponseWriter, id, status string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":         id,
		"live":       false,
		"amount":     "2100",
		"currency":   "USDC",
		"method":     map[string]string{"type": "wallet"},
		"status":     status,
		"created_at": "2026-10-14T09:00:00Z",
	})
}

func testCaptureRequest() CaptureRequest {
	return CaptureRequest{Amount: FormatAmount(2100), Currency: StablecoinCurrency("usd"), GrantedMandateSecret: "mandate_secret"}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, nil)
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected config invalid, got %v", err)
	}
}

func TestCreateCaptureSendsHeadersAndBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payment_captures" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("unexpected authorization: %q", got)
		}
		if got := r.Header.Get(IdempotencyHeader); got != "order_abc" {
			t.Errorf("unexpected idempotency key: %q", got)
		}
		var body CaptureRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body failed: %v", err)
		}
		if body.Amount != "2100" || body.Currency != "USDC" || body.GrantedMandateSecret != "mandate_secret" {
			t.Errorf("unexpected body: %+v", body)
		}
		writeCapture(w, "cap_1", "succeeded")
	})

	capture, err := client.CreateCapture(context.Background(), testCaptureRequest(), "order_abc")
	if err != nil {
		t.Fatalf("create capture failed: %v", err)
	}
	if capture.ID != "cap_1" || !capture.IsTerminal() {
		t.Fatalf("unexpected capture: %+v", capture)
	}
}

func TestCaptureGeneratesIdempotencyKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(IdempotencyHeader) == "" {
			t.Errorf("expected generated idempotency key")
		}
		writeCapture(w, "cap_1", "failed")
	})
	if _, err := client.CreateCapture(context.Background(), testCaptureRequest(), ""); err != nil {
		t.Fatalf("create capture failed: %v", err)
	}
}

func TestCapturePollsUntilSucceeded(t *testing.T) {
	var gets int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeCapture(w, "cap_poll", "processing")
			return
		}
		if r.URL.Path != "/payment_captures/cap_poll" {
			t.Errorf("unexpected poll path: %s", r.URL.Path)
		}
		if atomic.AddInt32(&gets, 1) < 2 {
			writeCapture(w, "cap_poll", "processing")
			return
		}
		writeCapture(w, "cap_poll", "succeeded")
	})

	result, err := client.Capture(context.Background(), testCaptureRequest(), "order_1", PollOptions{Interval: 5 * time.Millisecond, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if result.TimedOut {
		t.Fatalf("expected terminal result before timeout")
	}
	if result.Capture.Status != "succeeded" {
		t.Fatalf("unexpected status: %s", result.Capture.Status)
	}
	if result.Polls != 2 {
		t.Fatalf("unexpected poll count: %d", result.Polls)
	}
}

func TestCaptureTimeoutReturnsLastResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeCapture(w, "cap_slow", "processing")
	})

	result, err := client.Capture(context.Background(), testCaptureRequest(), "order_1", PollOptions{Interval: 5 * time.Millisecond, Timeout: 30 * time.Millisecond})
	if err != nil {
		t.Fatalf("timeout must not be an error: %v", err)
	}
	if !result.TimedOut {
		t.Fatalf("expected timed out result")
	}
	if result.Capture == nil || result.Capture.Status != "processing" {
		t.Fatalf("expected last processing capture, got %+v", result.Capture)
	}
}

func TestCaptureContextCancelStopsPolling(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeCapture(w, "cap_slow", "requires_capture")
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := client.Capture(ctx, testCaptureRequest(), "order_1", PollOptions{Interval: time.Second, Timeout: time.Minute})
	if err != nil {
		t.Fatalf("cancelled polling must not be an error: %v", err)
	}
	if !result.TimedOut || !result.Interrupted {
		t.Fatalf("expected interrupted pending result, got %+v", result)
	}
	if result.Capture == nil || result.Capture.ID != "cap_slow" || result.Capture.Status != "requires_capture" {
		t.Fatalf("expected created capture to be kept, got %+v", result.Capture)
	}
}

func TestCapturePollLookupFailureKeepsCapture(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeCapture(w, "cap_flaky", "processing")
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	result, err := client.Capture(context.Background(), testCaptureRequest(), "order_1", PollOptions{Interval: 5 * time.Millisecond, Timeout: time.Second})
	if err != nil {
		t.Fatalf("lookup failure after create must not be an error: %v", err)
	}
	if !result.Interrupted || result.Capture.ID != "cap_flaky" || result.Polls != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestGetCaptureDecodesErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type":"not_found","title":"Payment capture not found","status":404,"detail":"cap_x"}`))
	})

	_, err := client.GetCapture(context.Background(), "cap_x")
	if !errors.Is(err, ErrRequestRejected) {
		t.Fatalf("expected rejected error, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected api error, got %T", err)
	}
	if apiErr.HTTPStatus != http.StatusNotFound || apiErr.Title != "Payment capture not found" || apiErr.Detail != "cap_x" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestGetCaptureAcceptsEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"payment_capture","data":{"id":"cap_env","status":"cancelled","cancellation_reason":"mandate revoked"}}`))
	})

	capture, err := client.GetCapture(context.Background(), "cap_env")
	if err != nil {
		t.Fatalf("get capture failed: %v", err)
	}
	if capture.ID != "cap_env" || capture.Reason() != "mandate revoked" {
		t.Fatalf("unexpected capture: %+v", capture)
	}
}

func TestBreakerOpensAfterServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < defaultBreakerFailures; i++ {
		_, err := client.GetCapture(context.Background(), "cap_x")
		if !errors.Is(err, ErrRequestRejected) {
			t.Fatalf("attempt %d: expected rejected error, got %v", i, err)
		}
	}
	_, err := client.GetCapture(context.Background(), "cap_x")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != defaultBreakerFailures {
		t.Fatalf("unexpected upstream calls: %d", got)
	}
}

func TestStablecoinCurrency(t *testing.T) {
	cases := map[string]string{"USD": "USDC", "eur": "EURC", "gbp": "GBP"}
	for in, want := range cases {
		if got := StablecoinCurrency(in); got != want {
			t.Fatalf("currency %s: got %s want %s", in, got, want)
		}
	}
}
