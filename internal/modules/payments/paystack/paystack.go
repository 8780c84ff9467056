package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/payments"
)

const DefaultBaseURL = "https://api.paystack.co"

// amounts go over the wire in kobo
var subunitFactor = decimal.NewFromInt(100)

type Client struct {
	secretKey string
	baseURL   string
	httpc     *http.Client
}

func New(secretKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		secretKey: secretKey,
		baseURL:   baseURL,
		httpc:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return payments.GatewayPaystack }

func (c *Client) SignatureHeader() string { return "X-Paystack-Signature" }

type initializeBody struct {
	Email       string `json:"email"`
	Amount      string `json:"amount"` // subunits (kobo)
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Status    string `json:"status"` // success|failed|abandoned|...
	Reference string `json:"reference"`
	ID        int64  `json:"id"`
}

func (c *Client) Initialize(ctx context.Context, req payments.InitializeRequest) (payments.InitializeResponse, error) {
	body := initializeBody{
		Email:       req.PayerContact,
		Amount:      req.Amount.Mul(subunitFactor).StringFixed(0),
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
	}

	var data initializeData
	if err := c.call(ctx, http.MethodPost, "/transaction/initialize", body, &data, nil); err != nil {
		return payments.InitializeResponse{}, err
	}
	if data.AuthorizationURL == "" {
		return payments.InitializeResponse{}, fmt.Errorf("%w: missing authorization url", payments.ErrGatewayRejected)
	}
	return payments.InitializeResponse{
		GatewayRef:       data.AccessCode,
		AuthorizationURL: data.AuthorizationURL,
	}, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (payments.VerifyResponse, error) {
	var data verifyData
	var raw []byte
	if err := c.call(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data, &raw); err != nil {
		return payments.VerifyResponse{}, err
	}
	res := payments.VerifyResponse{
		Succeeded:  data.Status == "success",
		RawPayload: raw,
	}
	if data.ID != 0 {
		res.GatewayRef = fmt.Sprintf("%d", data.ID)
	}
	return res, nil
}

// VerifySignature checks the HMAC-SHA512 body signature Paystack sends in
// X-Paystack-Signature. Constant-time comparison.
func (c *Client) VerifySignature(payload []byte, signatureHeader string) bool {
	if signatureHeader == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}

func (c *Client) ExtractReference(payload []byte) string {
	var ev struct {
		Data struct {
			Reference string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ""
	}
	return ev.Data.Reference
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
	if resp.StatusCode >= 400 || !env.Status {
		return fmt.Errorf("%w: %s", payments.ErrGatewayRejected, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: malformed data: %v", payments.ErrGatewayUnavailable, err)
		}
	}
	return nil
}
