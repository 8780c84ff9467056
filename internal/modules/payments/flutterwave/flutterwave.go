package flutterwave

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/payments"
)

const DefaultBaseURL = "https://api.flutterwave.com/v3"

type Client struct {
	secretKey  string
	secretHash string // webhook verif-hash value
	baseURL    string
	httpc      *http.Client
}

func New(secretKey, secretHash, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		secretKey:  secretKey,
		secretHash: secretHash,
		baseURL:    baseURL,
		httpc:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return payments.GatewayFlutterwave }

func (c *Client) SignatureHeader() string { return "verif-hash" }

type paymentBody struct {
	TxRef       string          `json:"tx_ref"`
	Amount      string          `json:"amount"`
	Currency    string          `json:"currency"`
	RedirectURL string          `json:"redirect_url,omitempty"`
	Customer    paymentCustomer `json:"customer"`
}

type paymentCustomer struct {
	Email string `json:"email"`
}

type apiEnvelope struct {
	Status  string          `json:"status"` // "success" | "error"
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) Initialize(ctx context.Context, req payments.InitializeRequest) (payments.InitializeResponse, error) {
	body := paymentBody{
		TxRef:       req.Reference,
		Amount:      req.Amount.StringFixed(2),
		Currency:    req.Currency,
		RedirectURL: req.CallbackURL,
		Customer:    paymentCustomer{Email: req.PayerContact},
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := c.call(ctx, http.MethodPost, "/payments", body, &data, nil); err != nil {
		return payments.InitializeResponse{}, err
	}
	if data.Link == "" {
		return payments.InitializeResponse{}, fmt.Errorf("%w: missing payment link", payments.ErrGatewayRejected)
	}
	return payments.InitializeResponse{AuthorizationURL: data.Link}, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (payments.VerifyResponse, error) {
	var data struct {
		ID     int64  `json:"id"`
		TxRef  string `json:"tx_ref"`
		Status string `json:"status"` // successful|failed|pending
	}
	var raw []byte
	path := "/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(reference)
	if err := c.call(ctx, http.MethodGet, path, nil, &data, &raw); err != nil {
		return payments.VerifyResponse{}, err
	}
	res := payments.VerifyResponse{
		Succeeded:  data.Status == "successful",
		RawPayload: raw,
	}
	if data.ID != 0 {
		res.GatewayRef = fmt.Sprintf("%d", data.ID)
	}
	return res, nil
}

// VerifySignature compares the verif-hash header against the configured
// secret hash. Flutterwave signs with a static shared secret, not an HMAC of
// the body. Constant-time comparison.
func (c *Client) VerifySignature(_ []byte, signatureHeader string) bool {
	if signatureHeader == "" || c.secretHash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(signatureHeader), []byte(c.secretHash)) == 1
}

func (c *Client) ExtractReference(payload []byte) string {
	var ev struct {
		Data struct {
			TxRef string `json:"tx_ref"`
		} `json:"data"`
		TxRef string `json:"txRef"` // legacy event shape
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ""
	}
	if ev.Data.TxRef != "" {
		return ev.Data.TxRef
	}
	return ev.TxRef
}

func (c *Client) call(ctx context.Context, method, path string, body, out any, rawOut *[]byte) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", payments.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", payments.ErrGatewayUnavailable, err)
	}
	if rawOut != nil {
		*rawOut = respBody
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: http %d", payments.ErrGatewayUnavailable, resp.StatusCode)
	}

	var env apiEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("%w: malformed response: %v", payments.ErrGatewayUnavailable, err)
	}
	if resp.StatusCode >= 400 || env.Status != "success" {
		return fmt.Errorf("%w: %s", payments.ErrGatewayRejected, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: malformed data: %v", payments.ErrGatewayUnavailable, err)
		}
	}
	return nil
}
