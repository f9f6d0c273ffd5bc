package handler

import (
	"testing"
	"time"

	"easyticket/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStripe() *Stripe {
	return &Stripe{Config: model.StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test",
		BaseURL:       "https://stripe.invalid",
	}}
}

func TestVerifySignatureRoundTrip(t *testing.T) {
	s := testStripe()
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	header := s.SignPayload(payload, time.Now())
	require.NoError(t, s.VerifySignature(payload, header))
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	s := testStripe()
	payload := []byte(`{"id":"evt_1"}`)
	header := s.SignPayload(payload, time.Now())

	err := s.VerifySignature([]byte(`{"id":"evt_2"}`), header)
	assert.Error(t, err)
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	s := testStripe()
	payload := []byte(`{}`)
	header := s.SignPayload(payload, time.Now())

	other := testStripe()
	other.Config.WebhookSecret = "whsec_other"
	assert.Error(t, other.VerifySignature(payload, header))
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	s := testStripe()
	payload := []byte(`{}`)
	header := s.SignPayload(payload, time.Now().Add(-10*time.Minute))

	err := s.VerifySignature(payload, header)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tolerance")
}

func TestVerifySignatureMalformedHeader(t *testing.T) {
	s := testStripe()
	assert.Error(t, s.VerifySignature([]byte(`{}`), ""))
	assert.Error(t, s.VerifySignature([]byte(`{}`), "t=abc,v1=def"))
}

func TestVerifySignatureMissingSecret(t *testing.T) {
	s := testStripe()
	s.Config.WebhookSecret = ""
	err := s.VerifySignature([]byte(`{}`), "t=1,v1=deadbeef")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
