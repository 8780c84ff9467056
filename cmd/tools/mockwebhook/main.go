package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
)

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Status    string `json:"status"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

func main() {
	url := flag.String("url", "http://localhost:8080/payments/webhook/paystack", "Webhook URL")
	secret := flag.String("secret", os.Getenv("PAYSTACK_SECRET_KEY"), "Gateway secret key")
	event := flag.String("event", "charge.success", "Event type (charge.success, charge.failed)")
	reference := flag.String("reference", "", "Payment reference (PMT-...)")
	amount := flag.Int64("amount", 5000000, "Amount in subunits (kobo)")
	status := flag.String("status", "success", "Charge status in the payload")
	currency := flag.String("currency", "NGN", "Currency")
	tamper := flag.Bool("tamper", false, "Flip one byte of the body after signing (signature test)")
	dryRun := flag.Bool("dry-run", false, "Only print signature header, don't send")

	flag.Parse()

	if *secret == "" {
		fmt.Fprintf(os.Stderr, "Error: secret not provided and PAYSTACK_SECRET_KEY not set\n")
		os.Exit(1)
	}
	if *reference == "" {
		*reference = "PMT-0-" + randomHex(6)
	}

	payload := webhookPayload{Event: *event}
	payload.Data.Reference = *reference
	payload.Data.Amount = *amount
	payload.Data.Status = *status
	payload.Data.Currency = *currency

	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
		os.Exit(1)
	}

	mac := hmac.New(sha512.New, []byte(*secret))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	if *tamper {
		body[len(body)/2] ^= 0x01
	}

	fmt.Printf("X-Paystack-Signature: %s\n", sig)
	fmt.Printf("Body: %s\n", string(body))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	fmt.Printf("\nSending to %s...\n", *url)
	req, err := http.NewRequest("POST", *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating request: %v\n", err)
		os.Exit(1)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Paystack-Signature", sig)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", string(respBody))

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

func randomHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
