package model

import "encoding/json"

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string
}

// PaymentIntent mirrors the fields of a gateway payment intent this system
// cares about. Metadata carries the order correlation.
type PaymentIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
}

type Refund struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// WebhookEnvelope is the integrity-verified event the gateway delivers.
type WebhookEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object WebhookObject `json:"object"`
	} `json:"data"`
}

// WebhookObject is the event payload object; depending on the event type it
// is a payment intent (with metadata) or a charge (with payment_intent).
type WebhookObject struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"`
	Metadata      map[string]string `json:"metadata"`
	PaymentIntent string            `json:"payment_intent"`
}

func ParseWebhookEnvelope(payload []byte) (*WebhookEnvelope, error) {
	var ev WebhookEnvelope
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
