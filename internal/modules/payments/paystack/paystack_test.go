package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/payments"
)

const testSecret = "sk_test_1234567890"

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestInitialize(t *testing.T) {
	var gotBody initializeBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transaction/initialize" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer "+testSecret {
			t.Errorf("unexpected auth header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]any{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         gotBody.Reference,
			},
		})
	}))
	defer srv.Close()

	c := New(testSecret, srv.URL, 5*time.Second)
	res, err := c.Initialize(context.Background(), payments.InitializeRequest{
		Reference:    "PMT-1-aaaa",
		Amount:       decimal.RequireFromString("50000.00"),
		Currency:     "NGN",
		PayerContact: "member@example.com",
		CallbackURL:  "https://app.example.com/payments/callback",
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if res.AuthorizationURL != "https://checkout.paystack.com/abc123" {
		t.Errorf("authorization url: %q", res.AuthorizationURL)
	}
	if res.GatewayRef != "abc123" {
		t.Errorf("gateway ref: %q", res.GatewayRef)
	}
	// 50000.00 NGN -> 5000000 kobo
	if gotBody.Amount != "5000000" {
		t.Errorf("expected amount in kobo 5000000, got %q", gotBody.Amount)
	}
	if gotBody.Email != "member@example.com" {
		t.Errorf("email: %q", gotBody.Email)
	}
}

func TestInitialize_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  false,
			"message": "Invalid email address",
		})
	}))
	defer srv.Close()

	c := New(testSecret, srv.URL, 5*time.Second)
	_, err := c.Initialize(context.Background(), payments.InitializeRequest{
		Reference:    "PMT-1-aaaa",
		Amount:       decimal.RequireFromString("50000.00"),
		Currency:     "NGN",
		PayerContact: "not-an-email",
	})
	if !errors.Is(err, payments.ErrGatewayRejected) {
		t.Fatalf("expected ErrGatewayRejected, got %v", err)
	}
}

func TestInitialize_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(testSecret, srv.URL, 5*time.Second)
	_, err := c.Initialize(context.Background(), payments.InitializeRequest{
		Reference: "PMT-1-aaaa",
		Amount:    decimal.RequireFromString("50000.00"),
		Currency:  "NGN",
	})
	if !errors.Is(err, payments.ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestInitialize_Unreachable(t *testing.T) {
	c := New(testSecret, "http://127.0.0.1:1", time.Second)
	_, err := c.Initialize(context.Background(), payments.InitializeRequest{
		Reference: "PMT-1-aaaa",
		Amount:    decimal.RequireFromString("50000.00"),
		Currency:  "NGN",
	})
	if !errors.Is(err, payments.ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	cases := []struct {
		name      string
		status    string
		succeeded bool
	}{
		{"success", "success", true},
		{"failed", "failed", false},
		{"abandoned", "abandoned", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/transaction/verify/PMT-1-aaaa" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status":  true,
					"message": "Verification successful",
					"data": map[string]any{
						"id":        987654321,
						"status":    tc.status,
						"reference": "PMT-1-aaaa",
					},
				})
			}))
			defer srv.Close()

			c := New(testSecret, srv.URL, 5*time.Second)
			res, err := c.Verify(context.Background(), "PMT-1-aaaa")
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if res.Succeeded != tc.succeeded {
				t.Errorf("succeeded = %v, want %v", res.Succeeded, tc.succeeded)
			}
			if len(res.RawPayload) == 0 {
				t.Error("expected raw payload to be captured")
			}
		})
	}
}

func TestVerifySignature(t *testing.T) {
	c := New(testSecret, "", 0)
	body := []byte(`{"event":"charge.success","data":{"reference":"PMT-1-aaaa"}}`)

	if !c.VerifySignature(body, sign(testSecret, body)) {
		t.Fatal("valid signature rejected")
	}
	if c.VerifySignature(body, sign("sk_test_other", body)) {
		t.Fatal("signature under wrong secret accepted")
	}
	if c.VerifySignature(body, "") {
		t.Fatal("empty signature accepted")
	}

	// any single flipped byte in the signed portion must invalidate
	sig := sign(testSecret, body)
	for i := range body {
		tampered := make([]byte, len(body))
		copy(tampered, body)
		tampered[i] ^= 0x01
		if c.VerifySignature(tampered, sig) {
			t.Fatalf("tampered byte %d accepted", i)
		}
	}
}

func TestExtractReference(t *testing.T) {
	c := New(testSecret, "", 0)

	if got := c.ExtractReference([]byte(`{"event":"charge.success","data":{"reference":"PMT-1-aaaa"}}`)); got != "PMT-1-aaaa" {
		t.Errorf("got %q", got)
	}
	if got := c.ExtractReference([]byte(`{"event":"charge.success","data":{}}`)); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
	if got := c.ExtractReference([]byte(`not json`)); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
