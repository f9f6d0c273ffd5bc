package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"easyticket/config"
	"easyticket/helper"
	"easyticket/model"
)

const stripeAPIBase = "https://api.stripe.com"

// signatureTolerance bounds how stale a webhook timestamp may be.
const signatureTolerance = 5 * time.Minute

// Stripe talks to the payment gateway's REST API with form-encoded requests.
// It implements helper.PaymentGateway.
type Stripe struct {
	Config model.StripeConfig
	client *http.Client
}

func NewStripe() *Stripe {
	base := config.ConfigOr("STRIPE_API_BASE", stripeAPIBase)
	return &Stripe{
		Config: model.StripeConfig{
			SecretKey:     config.Config("STRIPE_SECRET_KEY"),
			WebhookSecret: config.Config("STRIPE_WEBHOOK_SECRET"),
			BaseURL:       base,
		},
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateIntent opens a payment intent for the order's total, tagging it with
// the order id so webhook events can be correlated back.
func (s *Stripe) CreateIntent(order *model.Order) (*model.PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(helper.AmountCents(order), 10))
	form.Set("currency", strings.ToLower(order.Currency))
	form.Set("metadata[order_id]", strconv.FormatUint(uint64(order.ID), 10))
	form.Set("metadata[order_number]", order.OrderNumber)
	form.Set("automatic_payment_methods[enabled]", "true")

	var intent model.PaymentIntent
	if err := s.post("/v1/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// RetrieveIntent polls the gateway for the current intent status.
func (s *Stripe) RetrieveIntent(intentID string) (*model.PaymentIntent, error) {
	var intent model.PaymentIntent
	if err := s.get("/v1/payment_intents/"+url.PathEscape(intentID), &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// CreateRefund returns money on a captured intent. amount 0 refunds in full.
func (s *Stripe) CreateRefund(intentID string, amount int64) (*model.Refund, error) {
	form := url.Values{}
	form.Set("payment_intent", intentID)
	if amount > 0 {
		form.Set("amount", strconv.FormatInt(amount, 10))
	}

	var refund model.Refund
	if err := s.post("/v1/refunds", form, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

// VerifySignature checks the Stripe-Signature header against the raw payload:
// "t=<unix>,v1=<hmac>" where the hmac covers "<t>.<payload>".
func (s *Stripe) VerifySignature(payload []byte, header string) error {
	if s.Config.WebhookSecret == "" {
		return fmt.Errorf("webhook secret not configured")
	}
	var ts string
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts = kv[1]
		case "v1":
			sigs = append(sigs, kv[1])
		}
	}
	if ts == "" || len(sigs) == 0 {
		return fmt.Errorf("malformed signature header")
	}
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed signature timestamp")
	}
	if d := time.Since(time.Unix(sec, 0)); d > signatureTolerance || d < -signatureTolerance {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(s.Config.WebhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range sigs {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return fmt.Errorf("no matching signature")
}

// SignPayload produces a Stripe-Signature header value; used by tests.
func (s *Stripe) SignPayload(payload []byte, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(s.Config.WebhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

func (s *Stripe) post(path string, form url.Values, out any) error {
	req, err := http.NewRequest(http.MethodPost, s.Config.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req, out)
}

func (s *Stripe) get(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, s.Config.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *Stripe) do(req *http.Request, out any) error {
	req.SetBasicAuth(s.Config.SecretKey, "")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("stripe %s: status %d: %s", req.URL.Path, resp.StatusCode, truncate(body, 200))
	}
	return json.Unmarshal(body, out)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
