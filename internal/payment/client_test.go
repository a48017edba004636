package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"seoscout/internal/config"
)

// --- helpers ---

func paymentServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(handler)
}

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) *HTTPClient {
	t.Helper()
	return NewHTTPClient(config.PaymentConfig{
		BaseURL: baseURL,
		APIKey:  "pk-test",
		Amount:  5.0,
		Timeout: timeout,
	})
}

// --- Create tests ---

func TestCreate_Success(t *testing.T) {
	jobID := uuid.New()

	ts := paymentServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/create_payment" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer pk-test" {
			t.Errorf("unexpected auth header: %s", got)
		}

		var req createPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Amount != 5.0 {
			t.Errorf("unexpected amount: %f", req.Amount)
		}
		if req.JobID != jobID.String() {
			t.Errorf("unexpected job id: %s", req.JobID)
		}
		if req.ServiceType != "seo_analysis" {
			t.Errorf("unexpected service type: %s", req.ServiceType)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Payment{
			PaymentID: "pay_" + jobID.String(),
			JobID:     jobID.String(),
			Status:    "pending",
			Amount:    5.0,
		})
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL, 5*time.Second)
	payment, err := c.Create(context.Background(), jobID, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.PaymentID != "pay_"+jobID.String() {
		t.Errorf("unexpected payment id: %s", payment.PaymentID)
	}
	if payment.Status != "pending" {
		t.Errorf("unexpected status: %s", payment.Status)
	}
}

func TestCreate_ServerError(t *testing.T) {
	ts := paymentServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL, 5*time.Second)
	_, err := c.Create(context.Background(), uuid.New(), 5.0)
	if !errors.Is(err, ErrPaymentRequestFailed) {
		t.Fatalf("expected ErrPaymentRequestFailed, got %v", err)
	}
}

func TestCreate_Unreachable(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", 5*time.Second)
	_, err := c.Create(context.Background(), uuid.New(), 5.0)
	if !errors.Is(err, ErrPaymentUnreachable) {
		t.Fatalf("expected ErrPaymentUnreachable, got %v", err)
	}
}

func TestCreate_Timeout(t *testing.T) {
	ts := paymentServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects the client abort and
		// cancels the request context; otherwise ts.Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL, 50*time.Millisecond)
	_, err := c.Create(context.Background(), uuid.New(), 5.0)
	if !errors.Is(err, ErrPaymentTimeout) {
		t.Fatalf("expected ErrPaymentTimeout, got %v", err)
	}
}

// --- Status tests ---

func TestStatus_Success(t *testing.T) {
	ts := paymentServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status/pay_123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer pk-test" {
			t.Errorf("unexpected auth header: %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Payment{PaymentID: "pay_123", Status: "paid", Amount: 5.0})
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL, 5*time.Second)
	payment, err := c.Status(context.Background(), "pay_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.Status != "paid" {
		t.Errorf("unexpected status: %s", payment.Status)
	}
	if payment.Amount != 5.0 {
		t.Errorf("unexpected amount: %f", payment.Amount)
	}
}

func TestStatus_NotFound(t *testing.T) {
	ts := paymentServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL, 5*time.Second)
	_, err := c.Status(context.Background(), "pay_missing")
	if !errors.Is(err, ErrPaymentRequestFailed) {
		t.Fatalf("expected ErrPaymentRequestFailed, got %v", err)
	}
}

// --- FallbackID tests ---

func TestFallbackID(t *testing.T) {
	jobID := uuid.MustParse("3d7f9a5e-1f24-4ea9-8c1c-30ce9c742b41")
	got := FallbackID(jobID)
	want := "pay_3d7f9a5e-1f24-4ea9-8c1c-30ce9c742b41"
	if got != want {
		t.Errorf("FallbackID = %q, want %q", got, want)
	}
}
